// Package ledger owns the expense collection and its state transitions.
//
// Every change is expressed as a Command and applied by the pure Apply
// function, which returns a new snapshot and never edits the old one. The
// Ledger type wraps Apply with the load lifecycle, id generation and
// persistence hand-off.
package ledger

import (
	"strings"
	"time"

	"dailyspend/internal/core"
)

// Command is one of AddExpense, DeleteExpense, AddCustomCategory or
// UpdateSettings.
type Command interface {
	command()
}

type (
	// AddExpense carries the draft together with the id and creation time
	// chosen for it, so that applying it stays deterministic.
	AddExpense struct {
		Draft     core.Draft
		ID        string
		CreatedAt time.Time
	}

	DeleteExpense struct {
		ID string
	}

	AddCustomCategory struct {
		Name string
	}

	UpdateSettings struct {
		Patch core.SettingsPatch
	}
)

func (AddExpense) command()        {}
func (DeleteExpense) command()     {}
func (AddCustomCategory) command() {}
func (UpdateSettings) command()    {}

// Apply computes the snapshot that follows s under cmd. The bool reports
// whether anything changed; no-op commands return s itself. A validation
// failure returns s and a *core.ValidationError.
func Apply(s core.Snapshot, cmd Command) (core.Snapshot, bool, error) {
	switch c := cmd.(type) {
	case AddExpense:
		return applyAddExpense(s, c)
	case DeleteExpense:
		return applyDeleteExpense(s, c)
	case AddCustomCategory:
		return applyAddCustomCategory(s, c)
	case UpdateSettings:
		if err := c.Patch.Validate(); err != nil {
			return s, false, err
		}
		next := s
		next.Settings = s.Settings.Merge(c.Patch)
		return next, true, nil
	default:
		return s, false, nil
	}
}

func applyAddExpense(s core.Snapshot, c AddExpense) (core.Snapshot, bool, error) {
	if err := c.Draft.Validate(s.AllCategories()); err != nil {
		return s, false, err
	}
	e := core.Expense{
		ID:        c.ID,
		Amount:    c.Draft.Amount,
		Category:  strings.TrimSpace(c.Draft.Category),
		Date:      c.Draft.Date,
		Notes:     c.Draft.Notes,
		CreatedAt: c.CreatedAt,
	}
	if err := e.Validate(); err != nil {
		return s, false, &core.ValidationError{Field: "expense", Err: err}
	}

	next := s
	next.Expenses = make([]core.Expense, 0, len(s.Expenses)+1)
	next.Expenses = append(next.Expenses, e)
	next.Expenses = append(next.Expenses, s.Expenses...)
	return next, true, nil
}

func applyDeleteExpense(s core.Snapshot, c DeleteExpense) (core.Snapshot, bool, error) {
	if _, ok := s.Find(c.ID); !ok {
		return s, false, nil
	}
	next := s
	next.Expenses = make([]core.Expense, 0, len(s.Expenses)-1)
	for _, e := range s.Expenses {
		if e.ID != c.ID {
			next.Expenses = append(next.Expenses, e)
		}
	}
	return next, true, nil
}

// applyAddCustomCategory checks the name against built-in and custom
// categories alike. A custom "Food" next to the built-in one would list the
// category twice in AllCategories and could never be told apart on an
// expense.
func applyAddCustomCategory(s core.Snapshot, c AddCustomCategory) (core.Snapshot, bool, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return s, false, &core.ValidationError{Field: "category", Err: core.ErrEmptyCategory}
	}
	if s.HasCategory(name) {
		return s, false, nil
	}
	next := s
	next.CustomCategories = make([]string, 0, len(s.CustomCategories)+1)
	next.CustomCategories = append(next.CustomCategories, s.CustomCategories...)
	next.CustomCategories = append(next.CustomCategories, name)
	return next, true, nil
}

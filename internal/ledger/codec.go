package ledger

import (
	"encoding/json"
	"fmt"

	"dailyspend/internal/core"
)

// StorageKey is the single key the snapshot blob lives under.
const StorageKey = "@expense_tracker_data"

// persisted is the on-disk shape. Built-in categories are a constant and
// are not written.
type persisted struct {
	Expenses         []core.Expense `json:"expenses"`
	CustomCategories []string       `json:"customCategories"`
	Settings         core.Settings  `json:"settings"`
}

// Encode serialises the persistent part of s.
func Encode(s core.Snapshot) ([]byte, error) {
	p := persisted{
		Expenses:         s.Expenses,
		CustomCategories: s.CustomCategories,
		Settings:         s.Settings,
	}
	if p.Expenses == nil {
		p.Expenses = []core.Expense{}
	}
	if p.CustomCategories == nil {
		p.CustomCategories = []string{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// Decode parses a blob written by Encode. Missing fields take their
// defaults; settings are merged over DefaultSettings.
func Decode(b []byte) (core.Snapshot, error) {
	p := persisted{Settings: core.DefaultSettings()}
	if err := json.Unmarshal(b, &p); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	s := core.EmptySnapshot()
	s.Settings = p.Settings
	if p.Expenses != nil {
		s.Expenses = p.Expenses
	}
	if p.CustomCategories != nil {
		s.CustomCategories = p.CustomCategories
	}
	for i, e := range s.Expenses {
		if err := e.Validate(); err != nil {
			return core.Snapshot{}, fmt.Errorf("decode snapshot: expense %d: %w", i, err)
		}
	}
	return s, nil
}

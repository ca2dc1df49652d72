package ledger

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dailyspend/internal/core"
)

func draft(amount int64, category string, d core.Date) core.Draft {
	return core.Draft{Amount: decimal.NewFromInt(amount), Category: category, Date: d}
}

func addCmd(id string, d core.Draft) AddExpense {
	return AddExpense{Draft: d, ID: id, CreatedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func TestApplyAddExpensePrepends(t *testing.T) {
	s := core.EmptySnapshot()
	day := core.NewDate(2025, 3, 10)

	for i, id := range []string{"a", "b", "c"} {
		next, changed, err := Apply(s, addCmd(id, draft(10, "Food", day)))
		if err != nil || !changed {
			t.Fatalf("add %s: changed=%v err=%v", id, changed, err)
		}
		if len(next.Expenses) != i+1 {
			t.Fatalf("len = %d, want %d", len(next.Expenses), i+1)
		}
		if next.Expenses[0].ID != id {
			t.Fatalf("head = %s, want %s", next.Expenses[0].ID, id)
		}
		s = next
	}
}

func TestApplyDoesNotMutatePrevious(t *testing.T) {
	day := core.NewDate(2025, 3, 10)
	s0 := core.EmptySnapshot()
	s1, _, _ := Apply(s0, addCmd("a", draft(10, "Food", day)))
	s2, _, _ := Apply(s1, addCmd("b", draft(20, "Bills", day)))
	s3, _, _ := Apply(s2, DeleteExpense{ID: "a"})
	s4, _, _ := Apply(s3, AddCustomCategory{Name: "Pets"})
	s5, _, _ := Apply(s4, UpdateSettings{Patch: core.SettingsPatch{NotificationsEnabled: core.Bool(false)}})

	if len(s0.Expenses) != 0 || len(s1.Expenses) != 1 || len(s2.Expenses) != 2 || len(s3.Expenses) != 1 {
		t.Fatalf("snapshots were modified: %d %d %d %d",
			len(s0.Expenses), len(s1.Expenses), len(s2.Expenses), len(s3.Expenses))
	}
	if s2.Expenses[0].ID != "b" || s2.Expenses[1].ID != "a" {
		t.Fatalf("s2 order changed: %v", s2.Expenses)
	}
	if len(s3.CustomCategories) != 0 || len(s4.CustomCategories) != 1 {
		t.Fatal("custom categories shared between snapshots")
	}
	if !s4.Settings.NotificationsEnabled || s5.Settings.NotificationsEnabled {
		t.Fatal("settings shared between snapshots")
	}
}

func TestApplyAddExpenseValidation(t *testing.T) {
	day := core.NewDate(2025, 3, 10)
	tests := []struct {
		name string
		cmd  AddExpense
		want error
	}{
		{"zero amount", addCmd("a", draft(0, "Food", day)), core.ErrInvalidAmount},
		{"negative amount", addCmd("a", draft(-3, "Food", day)), core.ErrInvalidAmount},
		{"empty category", addCmd("a", draft(1, "", day)), core.ErrEmptyCategory},
		{"unknown category", addCmd("a", draft(1, "Pets", day)), core.ErrUnknownCategory},
		{"missing date", addCmd("a", draft(1, "Food", core.Date{})), core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := core.EmptySnapshot()
			next, changed, err := Apply(s, tt.cmd)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !core.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if changed || len(next.Expenses) != 0 {
				t.Fatal("state changed on invalid input")
			}
		})
	}
}

func TestApplyAddExpenseWithCustomCategory(t *testing.T) {
	s, _, _ := Apply(core.EmptySnapshot(), AddCustomCategory{Name: "Pets"})
	next, changed, err := Apply(s, addCmd("a", draft(5, " Pets ", core.NewDate(2025, 3, 10))))
	if err != nil || !changed {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	if next.Expenses[0].Category != "Pets" {
		t.Fatalf("category = %q", next.Expenses[0].Category)
	}
}

func TestApplyDeleteIsIdempotent(t *testing.T) {
	day := core.NewDate(2025, 3, 10)
	s, _, _ := Apply(core.EmptySnapshot(), addCmd("a", draft(10, "Food", day)))
	s, _, _ = Apply(s, addCmd("b", draft(10, "Food", day)))

	s1, changed, err := Apply(s, DeleteExpense{ID: "a"})
	if err != nil || !changed || len(s1.Expenses) != 1 || s1.Expenses[0].ID != "b" {
		t.Fatalf("first delete: changed=%v err=%v expenses=%v", changed, err, s1.Expenses)
	}
	s2, changed, err := Apply(s1, DeleteExpense{ID: "a"})
	if err != nil || changed || len(s2.Expenses) != 1 {
		t.Fatalf("second delete: changed=%v err=%v", changed, err)
	}
	if _, changed, _ := Apply(s2, DeleteExpense{ID: "nope"}); changed {
		t.Fatal("unknown id changed state")
	}
}

func TestApplyAddCustomCategory(t *testing.T) {
	tests := []struct {
		name        string
		names       []string
		wantCustom  []string
		wantInvalid bool
	}{
		{"twice yields one", []string{"Pets", "Pets"}, []string{"Pets"}, false},
		{"case sensitive", []string{"Pets", "pets"}, []string{"Pets", "pets"}, false},
		{"trimmed", []string{"  Pets  ", "Pets"}, []string{"Pets"}, false},
		{"builtin is already present", []string{"Food"}, []string{}, false},
		{"empty rejected", []string{"   "}, []string{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := core.EmptySnapshot()
			var lastErr error
			for _, n := range tt.names {
				next, _, err := Apply(s, AddCustomCategory{Name: n})
				s, lastErr = next, err
			}
			if tt.wantInvalid != core.IsValidation(lastErr) {
				t.Fatalf("err = %v", lastErr)
			}
			if len(s.CustomCategories) != len(tt.wantCustom) {
				t.Fatalf("custom = %v, want %v", s.CustomCategories, tt.wantCustom)
			}
			for i := range tt.wantCustom {
				if s.CustomCategories[i] != tt.wantCustom[i] {
					t.Fatalf("custom = %v, want %v", s.CustomCategories, tt.wantCustom)
				}
			}
		})
	}
}

func TestApplyUpdateSettingsShallowMerge(t *testing.T) {
	s, _, _ := Apply(core.EmptySnapshot(), UpdateSettings{Patch: core.SettingsPatch{
		Extra: map[string]json.RawMessage{"currency": json.RawMessage(`"EUR"`)},
	}})
	s, _, _ = Apply(s, UpdateSettings{Patch: core.SettingsPatch{NotificationsEnabled: core.Bool(false)}})

	if s.Settings.NotificationsEnabled {
		t.Fatal("notifications still enabled")
	}
	if string(s.Settings.Extra["currency"]) != `"EUR"` {
		t.Fatalf("currency lost: %v", s.Settings.Extra)
	}
}

func TestApplyUpdateSettingsRejectsMalformedValues(t *testing.T) {
	base, _, _ := Apply(core.EmptySnapshot(), UpdateSettings{Patch: core.SettingsPatch{
		Extra: map[string]json.RawMessage{"currency": json.RawMessage(`"EUR"`)},
	}})

	tests := []struct {
		name  string
		extra map[string]json.RawMessage
	}{
		{"not json", map[string]json.RawMessage{"theme": json.RawMessage(`dark`)}},
		{"flag is not a bool", map[string]json.RawMessage{core.SettingNotificationsEnabled: json.RawMessage(`"off"`)}},
		{"one bad value among good ones", map[string]json.RawMessage{
			"lang":  json.RawMessage(`"it"`),
			"theme": json.RawMessage(`{`),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, changed, err := Apply(base, UpdateSettings{Patch: core.SettingsPatch{
				NotificationsEnabled: core.Bool(false),
				Extra:                tt.extra,
			}})
			if !errors.Is(err, core.ErrInvalidSetting) || !core.IsValidation(err) {
				t.Fatalf("err = %v, want ValidationError wrapping ErrInvalidSetting", err)
			}
			if changed || !next.Settings.NotificationsEnabled || len(next.Settings.Extra) != 1 {
				t.Fatalf("state changed on invalid input: %+v", next.Settings)
			}
			if _, err := Encode(next); err != nil {
				t.Fatalf("snapshot no longer encodes: %v", err)
			}
		})
	}
}

type unknownCommand struct{ Command }

func TestApplyUnknownCommandIsNoop(t *testing.T) {
	s := core.EmptySnapshot()
	_, changed, err := Apply(s, unknownCommand{})
	if changed || err != nil {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
}

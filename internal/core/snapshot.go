package core

import (
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var builtinCategories = []string{"Food", "Transport", "Shopping", "Entertainment", "Bills", "Others"}

// BuiltinCategories returns the fixed category list. The slice is a copy.
func BuiltinCategories() []string {
	return append([]string(nil), builtinCategories...)
}

// Snapshot is the full application state at one point in time. Snapshots are
// values: transitions build new slices rather than editing these.
type Snapshot struct {
	Expenses         []Expense // newest insertion first
	Categories       []string
	CustomCategories []string
	Settings         Settings
}

// EmptySnapshot is the state of a fresh install.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Expenses:         []Expense{},
		Categories:       BuiltinCategories(),
		CustomCategories: []string{},
		Settings:         DefaultSettings(),
	}
}

// AllCategories returns built-in categories followed by custom ones.
func (s Snapshot) AllCategories() []string {
	out := make([]string, 0, len(s.Categories)+len(s.CustomCategories))
	out = append(out, s.Categories...)
	return append(out, s.CustomCategories...)
}

// HasCategory reports whether name is in the category set.
func (s Snapshot) HasCategory(name string) bool {
	return containsString(s.Categories, name) || containsString(s.CustomCategories, name)
}

// Find returns the expense with the given id.
func (s Snapshot) Find(id string) (Expense, bool) {
	for _, e := range s.Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return Expense{}, false
}

const idSuffixLen = 9

// NewID returns an expense id made of the creation time in milliseconds and
// nine random base36 characters.
func NewID(now time.Time) string {
	var n *big.Int
	if u, err := uuid.NewRandom(); err == nil {
		n = new(big.Int).SetBytes(u[:])
	} else {
		n = big.NewInt(now.UnixNano())
	}
	suffix := n.Text(36)
	if len(suffix) < idSuffixLen {
		suffix = strings.Repeat("0", idSuffixLen-len(suffix)) + suffix
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + suffix[len(suffix)-idSuffixLen:]
}

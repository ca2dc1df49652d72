package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSettingsUnmarshalMergesOverDefaults(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantEnabled bool
		wantExtra   map[string]string
	}{
		{"empty object keeps default", `{}`, true, nil},
		{"explicit false", `{"notificationsEnabled":false}`, false, nil},
		{"unknown keys preserved", `{"theme": "dark", "reminder":{"hour": 21}}`, true,
			map[string]string{"theme": `"dark"`, "reminder": `{"hour":21}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			if err := json.Unmarshal([]byte(tt.in), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if s.NotificationsEnabled != tt.wantEnabled {
				t.Fatalf("NotificationsEnabled = %v, want %v", s.NotificationsEnabled, tt.wantEnabled)
			}
			if len(s.Extra) != len(tt.wantExtra) {
				t.Fatalf("extra = %v, want %v", s.Extra, tt.wantExtra)
			}
			for k, v := range tt.wantExtra {
				if string(s.Extra[k]) != v {
					t.Errorf("extra[%s] = %s, want %s", k, s.Extra[k], v)
				}
			}
		})
	}
}

func TestSettingsMarshalIncludesExtra(t *testing.T) {
	s := DefaultSettings().Merge(SettingsPatch{Extra: map[string]json.RawMessage{"theme": json.RawMessage(`"dark"`)}})
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"notificationsEnabled":true,"theme":"dark"}` {
		t.Fatalf("unexpected json %s", b)
	}
}

func TestSettingsMergeIsShallowAndPure(t *testing.T) {
	base := DefaultSettings().Merge(SettingsPatch{Extra: map[string]json.RawMessage{
		"theme": json.RawMessage(`"dark"`),
		"lang":  json.RawMessage(`"en"`),
	}})

	next := base.Merge(SettingsPatch{
		NotificationsEnabled: Bool(false),
		Extra:                map[string]json.RawMessage{"lang": json.RawMessage(`"it"`)},
	})

	if next.NotificationsEnabled {
		t.Error("expected notifications disabled")
	}
	if string(next.Extra["theme"]) != `"dark"` {
		t.Errorf("unspecified key changed: %s", next.Extra["theme"])
	}
	if string(next.Extra["lang"]) != `"it"` {
		t.Errorf("lang = %s", next.Extra["lang"])
	}
	if !base.NotificationsEnabled || string(base.Extra["lang"]) != `"en"` {
		t.Errorf("base settings were modified: %+v", base)
	}
}

func TestSettingsMergeRoutesKnownKeyFromExtra(t *testing.T) {
	s := DefaultSettings().Merge(SettingsPatch{Extra: map[string]json.RawMessage{
		SettingNotificationsEnabled: json.RawMessage(`false`),
	}})
	if s.NotificationsEnabled {
		t.Fatal("expected notificationsEnabled=false")
	}
	if _, ok := s.Extra[SettingNotificationsEnabled]; ok {
		t.Fatal("known key must not be duplicated in Extra")
	}
}

func TestSettingsPatchValidate(t *testing.T) {
	tests := []struct {
		name  string
		extra map[string]json.RawMessage
		ok    bool
	}{
		{"nil patch", nil, true},
		{"valid values", map[string]json.RawMessage{"theme": json.RawMessage(`"dark"`), "n": json.RawMessage(`3`)}, true},
		{"bool flag via extra", map[string]json.RawMessage{SettingNotificationsEnabled: json.RawMessage(`false`)}, true},
		{"bare word", map[string]json.RawMessage{"theme": json.RawMessage(`dark`)}, false},
		{"empty value", map[string]json.RawMessage{"theme": nil}, false},
		{"non-bool flag", map[string]json.RawMessage{SettingNotificationsEnabled: json.RawMessage(`"no"`)}, false},
		{"null flag", map[string]json.RawMessage{SettingNotificationsEnabled: json.RawMessage(`null`)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SettingsPatch{Extra: tt.extra}.Validate()
			if tt.ok != (err == nil) {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && (!errors.Is(err, ErrInvalidSetting) || !IsValidation(err)) {
				t.Fatalf("Validate() = %v, want a ValidationError wrapping ErrInvalidSetting", err)
			}
		})
	}
}

func TestSettingsMergeSkipsMalformedValues(t *testing.T) {
	s := DefaultSettings().Merge(SettingsPatch{Extra: map[string]json.RawMessage{
		"theme": json.RawMessage(`dark`),
	}})
	if _, ok := s.Extra["theme"]; ok {
		t.Fatalf("malformed value kept: %s", s.Extra["theme"])
	}
	if _, err := json.Marshal(s); err != nil {
		t.Fatalf("marshal after merge: %v", err)
	}
}

func TestNewIDFormatAndUniqueness(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewID(now)
		if !strings.HasPrefix(id, "1700000000123") {
			t.Fatalf("id %q does not start with the timestamp", id)
		}
		if len(id) != len("1700000000123")+idSuffixLen {
			t.Fatalf("id %q has unexpected length", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSnapshotCategories(t *testing.T) {
	s := EmptySnapshot()
	s.CustomCategories = []string{"Pets"}
	all := s.AllCategories()
	if len(all) != 7 || all[6] != "Pets" {
		t.Fatalf("unexpected categories %v", all)
	}
	if !s.HasCategory("Food") || !s.HasCategory("Pets") || s.HasCategory("food") {
		t.Fatal("HasCategory is wrong")
	}
}

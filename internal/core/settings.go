package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// SettingNotificationsEnabled is the only settings key the core interprets.
const SettingNotificationsEnabled = "notificationsEnabled"

// Settings is an open key/value bag. Keys the core does not know about are
// kept verbatim in Extra so that a load/save cycle never drops them.
type Settings struct {
	NotificationsEnabled bool
	Extra                map[string]json.RawMessage
}

// SettingsPatch is a partial settings update. Nil fields keep their value.
type SettingsPatch struct {
	NotificationsEnabled *bool
	Extra                map[string]json.RawMessage
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	return Settings{NotificationsEnabled: true}
}

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool {
	return &b
}

// Validate checks that every value in p is well-formed JSON and that a
// notificationsEnabled carried in Extra is a boolean.
func (p SettingsPatch) Validate() error {
	for k, v := range p.Extra {
		if !json.Valid(v) {
			return &ValidationError{Field: "settings", Err: fmt.Errorf("%w: %q is not valid JSON", ErrInvalidSetting, k)}
		}
		if k == SettingNotificationsEnabled {
			if _, ok := parseBool(v); !ok {
				return &ValidationError{Field: "settings", Err: fmt.Errorf("%w: %q must be a boolean", ErrInvalidSetting, k)}
			}
		}
	}
	return nil
}

// Merge shallow-merges p over s and returns the result. s is not modified.
// Values that are not valid JSON are skipped; callers that need to reject
// them run p.Validate first.
func (s Settings) Merge(p SettingsPatch) Settings {
	out := Settings{NotificationsEnabled: s.NotificationsEnabled, Extra: cloneRaw(s.Extra)}
	for k, v := range p.Extra {
		if k == SettingNotificationsEnabled {
			if b, ok := parseBool(v); ok {
				out.NotificationsEnabled = b
			}
			continue
		}
		raw, ok := compactRaw(v)
		if !ok {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage, len(p.Extra))
		}
		out.Extra[k] = raw
	}
	if p.NotificationsEnabled != nil {
		out.NotificationsEnabled = *p.NotificationsEnabled
	}
	return out
}

func (s Settings) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(s.Extra)+1)
	maps.Copy(m, s.Extra)
	enabled, err := json.Marshal(s.NotificationsEnabled)
	if err != nil {
		return nil, err
	}
	m[SettingNotificationsEnabled] = enabled
	return json.Marshal(m)
}

// UnmarshalJSON merges the decoded keys over the receiver, so decoding into
// DefaultSettings() yields defaults for any key the blob leaves out.
func (s *Settings) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*s = s.Merge(SettingsPatch{Extra: m})
	return nil
}

// parseBool accepts a JSON true or false; null and anything else fail.
func parseBool(v json.RawMessage) (bool, bool) {
	var b *bool
	if err := json.Unmarshal(v, &b); err != nil || b == nil {
		return false, false
	}
	return *b, true
}

func cloneRaw(in map[string]json.RawMessage) map[string]json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func compactRaw(v json.RawMessage) (json.RawMessage, bool) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

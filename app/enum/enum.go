// Package enum provides enumerated types shared across the application.
package enum

import (
	"fmt"
	"strings"
)

// Theme is a named visual mode. Exactly two values are valid application
// state; anything else read from an untrusted medium must be rejected at
// parse time and treated as absent.
type Theme int

// Theme values. The zero value is light, matching the implicit default.
const (
	ThemeLight Theme = iota
	ThemeDark
)

// String returns the wire representation of the theme.
func (t Theme) String() string {
	if t == ThemeDark {
		return "dark"
	}
	return "light"
}

// MarshalText implements encoding.TextMarshaler.
func (t Theme) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, strict on input.
func (t *Theme) UnmarshalText(text []byte) error {
	parsed, err := ParseTheme(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTheme converts a string to a Theme. Only "light" and "dark" are
// accepted; any other value is an error so callers fall back to their
// default instead of propagating garbage into the applied theme.
func ParseTheme(s string) (Theme, error) {
	switch s {
	case "light":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	}
	return ThemeLight, fmt.Errorf("unknown theme %q", s)
}

// Signal is the platform's ambient color-scheme preference as reported by
// the client. Read-only for this application, used only when no stored
// preference exists.
type Signal int

// Signal values. Unknown covers an absent or unparseable hint.
const (
	SignalUnknown Signal = iota
	SignalLight
	SignalDark
)

// String returns the wire representation of the signal.
func (s Signal) String() string {
	switch s {
	case SignalLight:
		return "light"
	case SignalDark:
		return "dark"
	}
	return "unknown"
}

// ParseSignal converts a Sec-CH-Prefers-Color-Scheme header value to a
// Signal. The hint is a structured-field string, so quotes are stripped.
// Anything unrecognized maps to SignalUnknown, never an error.
func ParseSignal(s string) Signal {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), `"`))
	switch s {
	case "light":
		return SignalLight
	case "dark":
		return SignalDark
	}
	return SignalUnknown
}

// Source identifies where a resolved theme came from, surfaced in the API
// and logs to make resolution decisions observable.
type Source int

// Source values in ascending precedence order.
const (
	SourceDefault Source = iota
	SourceSignal
	SourceStored
)

// String returns the wire representation of the source.
func (s Source) String() string {
	switch s {
	case SourceSignal:
		return "signal"
	case SourceStored:
		return "stored"
	}
	return "default"
}

// Package types provides type definitions for the content records used throughout teamverse.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Audience is the target readership of a piece of content.
type Audience string

const (
	AudienceUK     Audience = "uk"
	AudienceUS     Audience = "us"
	AudienceGlobal Audience = "global"
)

// Audiences lists every valid audience in display order.
var Audiences = []Audience{AudienceUK, AudienceUS, AudienceGlobal}

// ParseAudience converts a string into an Audience. Matching is case-insensitive.
func ParseAudience(s string) (Audience, error) {
	a := Audience(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", &InvalidAudienceError{Value: s}
	}
	return a, nil
}

// Valid reports whether a is one of the enumerated audiences.
func (a Audience) Valid() bool {
	switch a {
	case AudienceUK, AudienceUS, AudienceGlobal:
		return true
	}
	return false
}

func (a Audience) String() string {
	return string(a)
}

// Flags returns the emoji flags shown on social images for the audience.
func (a Audience) Flags() string {
	if a == AudienceUK {
		return "🇬🇧"
	}
	return "🇺🇸 🇬🇧"
}

// UnmarshalJSON rejects any value outside the enumeration.
func (a *Audience) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("audience must be a string: %w", err)
	}
	parsed, err := ParseAudience(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalText lets Audience be used as a JSON object key.
func (a Audience) MarshalText() ([]byte, error) {
	return []byte(a), nil
}

// UnmarshalText validates map keys the same way as values.
func (a *Audience) UnmarshalText(text []byte) error {
	parsed, err := ParseAudience(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// InvalidAudienceError is returned when a value is not a known audience.
type InvalidAudienceError struct {
	Value string
}

func (e *InvalidAudienceError) Error() string {
	names := make([]string, len(Audiences))
	for i, a := range Audiences {
		names[i] = string(a)
	}
	return fmt.Sprintf("invalid audience %q: must be one of %s", e.Value, strings.Join(names, ", "))
}

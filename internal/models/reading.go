package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Reading is a lab value as the client sent it. Numbers and strings are
// both accepted and kept as text so that an empty value stays distinct
// from zero.
type Reading string

func (r *Reading) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Reading(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = Reading(n.String())
	return nil
}

// Empty reports whether nothing was sent. Only the empty string counts;
// whitespace is a value like any other.
func (r Reading) Empty() bool {
	return r == ""
}

// Float parses the reading; anything non-numeric is 0.
func (r Reading) Float() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(r)), 64)
	if err != nil {
		return 0
	}
	return f
}

// Numeric reports whether the reading parses as a number.
func (r Reading) Numeric() bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(string(r)), 64)
	return err == nil
}

// Screen is a screen-size breakdown keyed by sieve ("16+", "15", ...).
type Screen map[string]Reading

// EmptyScreen returns the default skeleton with every size blank.
func EmptyScreen() Screen {
	s := make(Screen, len(ScreenSizes))
	for _, size := range ScreenSizes {
		s[size] = ""
	}
	return s
}

package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Options is a free-form option bag (parser.options). Values arrive as
// whatever the layer produced: YAML gives bools and numbers, env vars and
// flags often give strings. The accessors convert and fall back to def when a
// key is missing or unconvertible.
type Options map[string]any

func (o Options) lookup(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Bool returns key as a bool. Strings accept strconv.ParseBool forms.
func (o Options) Bool(key string, def bool) bool {
	v, ok := o.lookup(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	}
	return def
}

// Int returns key as an int.
func (o Options) Int(key string, def int) int {
	v, ok := o.lookup(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

// String returns key as a string; non-string scalars are formatted.
func (o Options) String(key string, def string) string {
	v, ok := o.lookup(key)
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Rune returns key as a single rune. The spellings `\t` and "tab" mean a
// tab character, so TSV input can be configured from a shell or YAML.
// A value that is not exactly one rune returns def.
func (o Options) Rune(key string, def rune) rune {
	v, ok := o.lookup(key)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	r, err := ParseRune(s)
	if err != nil {
		return def
	}
	return r
}

// ParseRune parses a single-character option value.
func ParseRune(s string) (rune, error) {
	switch strings.ToLower(s) {
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("want exactly one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

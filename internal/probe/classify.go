package probe

import (
	"fmt"
	"regexp"
	"strings"
)

// SemanticType is the inferred meaning of a column.
//
// The set is closed. Text is the zero value and the universal fallback.
type SemanticType int

const (
	Text SemanticType = iota
	Boolean
	Integer
	Float
	Date
)

var typeNames = [...]string{
	Text:    "text",
	Boolean: "boolean",
	Integer: "integer",
	Float:   "float",
	Date:    "date",
}

// String returns the lower-case type name ("integer", "text", ...).
func (t SemanticType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("SemanticType(%d)", int(t))
	}
	return typeNames[t]
}

// MarshalText renders the type name, so SemanticType prints cleanly in JSON.
func (t SemanticType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(typeNames) {
		return nil, fmt.Errorf("probe: invalid semantic type %d", int(t))
	}
	return []byte(typeNames[t]), nil
}

var (
	integerPattern = regexp.MustCompile(`^-?[0-9]+$`)
	floatPattern   = regexp.MustCompile(`^-?[0-9]*\.[0-9]+$`)
	datePattern    = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
)

var booleanWords = map[string]struct{}{
	"true": {}, "false": {}, "yes": {}, "no": {}, "0": {}, "1": {},
}

func looksBoolean(s string) bool {
	_, ok := booleanWords[strings.ToLower(s)]
	return ok
}

func looksInteger(s string) bool { return integerPattern.MatchString(s) }

// looksFloat requires a decimal point: "42" is not float-looking.
func looksFloat(s string) bool { return floatPattern.MatchString(s) }

// looksDate checks the YYYY-MM-DD shape only; "9999-99-99" passes.
func looksDate(s string) bool { return datePattern.MatchString(s) }

// candidate pairs a SemanticType with the predicate every non-empty sample
// must satisfy for the column to be classified as that type.
type candidate struct {
	Type    SemanticType
	Matches func(string) bool
}

// precedence is the resolution order; the first candidate that survives all
// samples wins. Several candidates can survive at once ("0"/"1" are both
// boolean- and integer-looking), so the order is part of the contract.
var precedence = []candidate{
	{Type: Boolean, Matches: looksBoolean},
	{Type: Integer, Matches: looksInteger},
	{Type: Float, Matches: looksFloat},
	{Type: Date, Matches: looksDate},
}

// Classify infers the SemanticType of a column from its normalized samples.
//
// Empty samples neither confirm nor disqualify a candidate. A column with no
// non-empty sample, or one no candidate survives, is Text.
func Classify(samples []string) SemanticType {
	alive := make([]bool, len(precedence))
	for i := range alive {
		alive[i] = true
	}
	remaining := len(precedence)

	seen := false
	for _, s := range samples {
		if s == "" {
			continue
		}
		seen = true
		for i, c := range precedence {
			if alive[i] && !c.Matches(s) {
				alive[i] = false
				remaining--
			}
		}
		if remaining == 0 {
			return Text
		}
	}

	if !seen {
		return Text
	}
	for i, c := range precedence {
		if alive[i] {
			return c.Type
		}
	}
	return Text
}

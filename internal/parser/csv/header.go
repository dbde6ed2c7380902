package csv

import (
	"bufio"
	"bytes"

	"csvload/internal/probe"
)

// LooksLikeHeader reports whether rec reads as column names: at least one
// field is non-empty after normalization and none would classify as a typed
// value on its own. Empty fields are allowed, so index-first exports
// (",name,age") are detected. "name,age" is a header; "Alice,30" and "1,2,3"
// are data.
func LooksLikeHeader(rec []string) bool {
	named := 0
	for _, f := range rec {
		v := probe.Normalize(f)
		if v == "" {
			continue
		}
		if probe.Classify([]string{v}) != probe.Text {
			return false
		}
		named++
	}
	return named > 0
}

// sniffCandidates are tried in order; ties go to the earlier one.
var sniffCandidates = []rune{',', ';', '\t', '|'}

// sniffWindow bounds how much of the first line is inspected. Source sizes
// its read buffer to match so Peek can see the whole window.
const sniffWindow = 64 << 10

// sniffComma picks the delimiter that occurs most often, outside double
// quotes, on the first line of the input. It never consumes input.
func sniffComma(br *bufio.Reader) rune {
	b, _ := br.Peek(sniffWindow)
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}

	counts := make(map[rune]int, len(sniffCandidates))
	inQuotes := false
	for _, c := range string(b) {
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[c]++
		}
	}

	best, bestN := ',', 0
	for _, c := range sniffCandidates {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}

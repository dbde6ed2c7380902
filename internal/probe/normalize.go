package probe

import "strings"

// edgeSpace is the set of characters trimmed from both ends of a field.
const edgeSpace = " \t\r\n"

// Normalize trims edge whitespace (space, tab, CR, LF) and then strips exactly
// one pair of enclosing double quotes when the trimmed value is at least two
// characters long and both starts and ends with '"'.
//
// Inner quotes are left untouched and doubled quotes are not unescaped.
func Normalize(raw string) string {
	s := strings.Trim(raw, edgeSpace)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

package probe

import (
	"fmt"
	"strings"
)

// ResolveNames turns detected header fields into width column names.
//
// With no header every column gets its positional name (COL1..COLn). With a
// header, each field is normalized; an empty field falls back to the
// positional name and a case-insensitive duplicate gets a numeric suffix
// ("name", "name_2"). Header fields beyond width are dropped and missing ones
// are synthesized, so the result always has exactly width entries.
func ResolveNames(header []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]struct{}, width)

	for i := 0; i < width; i++ {
		n := ""
		if i < len(header) {
			n = Normalize(header[i])
		}
		if n == "" {
			n = SyntheticName(i)
		}

		base := n
		for k := 2; ; k++ {
			if _, dup := used[strings.ToLower(n)]; !dup {
				break
			}
			n = fmt.Sprintf("%s_%d", base, k)
		}
		used[strings.ToLower(n)] = struct{}{}
		names[i] = n
	}
	return names
}

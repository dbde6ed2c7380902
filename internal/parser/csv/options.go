package csv

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"csvload/internal/config"
)

// ErrInvalidOption marks a reader option that cannot be honoured.
var ErrInvalidOption = errors.New("csv: invalid option")

// HeaderMode controls how the first record is treated.
type HeaderMode int

const (
	// HeaderAuto treats the first record as a header when every field is
	// non-empty and none looks like a typed value (number, boolean, date).
	HeaderAuto HeaderMode = iota
	HeaderPresent
	HeaderAbsent
)

func (m HeaderMode) String() string {
	switch m {
	case HeaderPresent:
		return "true"
	case HeaderAbsent:
		return "false"
	}
	return "auto"
}

// ParseHeaderMode accepts auto, true/yes or false/no (any case).
func ParseHeaderMode(s string) (HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return HeaderAuto, nil
	case "true", "yes":
		return HeaderPresent, nil
	case "false", "no":
		return HeaderAbsent, nil
	}
	return HeaderAuto, fmt.Errorf("%w: header %q (want auto, true or false)", ErrInvalidOption, s)
}

// Options configures a Source.
type Options struct {
	Header HeaderMode
	// Comma is the field delimiter; 0 sniffs it from the first line.
	Comma            rune
	LazyQuotes       bool
	TrimLeadingSpace bool
	// Encoding names the input charset ("utf-8", "windows-1250", "latin1", ...).
	Encoding string
}

// DefaultOptions reads comma-separated UTF-8 with header auto-detection.
func DefaultOptions() Options {
	return Options{Header: HeaderAuto, Comma: ',', Encoding: "utf-8"}
}

// OptionsFrom reads parser options from a config option bag:
//
//	header              auto | true | false        (default auto)
//	comma               one character, tab, or auto (default ",")
//	encoding            charset name               (default utf-8)
//	lazy_quotes         bool                       (default false)
//	trim_leading_space  bool                       (default false)
func OptionsFrom(opt config.Options) (Options, error) {
	out := DefaultOptions()

	h, err := ParseHeaderMode(opt.String("header", "auto"))
	if err != nil {
		return out, err
	}
	out.Header = h

	switch raw := opt.String("comma", ","); {
	case strings.EqualFold(raw, "auto"):
		out.Comma = 0
	default:
		r, err := config.ParseRune(raw)
		if err != nil {
			return out, fmt.Errorf("%w: comma: %v", ErrInvalidOption, err)
		}
		out.Comma = r
	}

	out.LazyQuotes = opt.Bool("lazy_quotes", false)
	out.TrimLeadingSpace = opt.Bool("trim_leading_space", false)
	out.Encoding = opt.String("encoding", "utf-8")

	if _, err := LookupEncoding(out.Encoding); err != nil {
		return out, err
	}
	return out, nil
}

var namedEncodings = map[string]encoding.Encoding{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin2":       charmap.ISO8859_2,
	"iso-8859-2":   charmap.ISO8859_2,
	"cp1250":       charmap.Windows1250,
	"windows-1250": charmap.Windows1250,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"utf-16":       unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

// LookupEncoding resolves a charset name. UTF-8 (and the empty name) return a
// nil Encoding: the input is read as-is. Names not in the short list are
// looked up in the IANA registry.
func LookupEncoding(name string) (encoding.Encoding, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	if e, ok := namedEncodings[n]; ok {
		return e, nil
	}
	e, err := ianaindex.IANA.Encoding(n)
	if err != nil || e == nil {
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrInvalidOption, name)
	}
	if e == unicode.UTF8 {
		return nil, nil
	}
	return e, nil
}

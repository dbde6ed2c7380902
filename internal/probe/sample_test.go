package probe

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "abc", "abc"},
		{"edge whitespace", " \t abc \r\n", "abc"},
		{"all whitespace", " \t\r\n ", ""},
		{"empty", "", ""},
		{"one quote pair", `"abc"`, "abc"},
		{"quotes after trim", `  "a b"  `, "a b"},
		{"only one layer", `""abc""`, `"abc"`},
		{"no unescape", `"a""b"`, `a""b`},
		{"lone quote", `"`, `"`},
		{"empty quoted", `""`, ""},
		{"unbalanced", `"abc`, `"abc`},
		{"inner space kept", `" x "`, " x "},
		{"single quotes untouched", `'abc'`, `'abc'`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSampler_CapPadAndTruncate(t *testing.T) {
	t.Parallel()

	s := NewSampler(2, 3)
	if !s.Add([]string{" 30 ", `"Alice"`, "extra"}) {
		t.Fatalf("first Add rejected")
	}
	s.Add([]string{""})
	s.Add([]string{"  "})
	if !s.Full() {
		t.Fatalf("sampler not full after 3 rows")
	}
	if s.Add([]string{"40", "Bob"}) {
		t.Fatalf("Add accepted a row beyond the cap")
	}

	if got, want := s.Samples(0), []string{"30", "", ""}; !reflect.DeepEqual(got, want) {
		t.Fatalf("col0 = %q, want %q", got, want)
	}
	if got, want := s.Samples(1), []string{"Alice", "", ""}; !reflect.DeepEqual(got, want) {
		t.Fatalf("col1 = %q, want %q", got, want)
	}
	if s.Rows() != 3 || s.Width() != 2 {
		t.Fatalf("rows=%d width=%d", s.Rows(), s.Width())
	}
}

func TestSampler_DefaultLimit(t *testing.T) {
	t.Parallel()

	s := NewSampler(1, 0)
	for i := 0; i < DefaultSampleLimit+10; i++ {
		s.Add([]string{"x"})
	}
	if s.Rows() != DefaultSampleLimit {
		t.Fatalf("rows=%d, want %d", s.Rows(), DefaultSampleLimit)
	}
}

// TestSampler_ClassifyNameAge is the name/age scenario: "Bob," leaves age
// empty, which is skipped, so age stays Integer.
func TestSampler_ClassifyNameAge(t *testing.T) {
	t.Parallel()

	s := NewSampler(2, 100)
	s.Add([]string{"Alice", "30"})
	s.Add([]string{"Bob", ""})

	cols := s.Classify([]string{"name", "age"})
	want := []Column{
		{Position: 0, Name: "name", Type: Text},
		{Position: 1, Name: "age", Type: Integer},
	}
	if !reflect.DeepEqual(cols, want) {
		t.Fatalf("Classify = %+v, want %+v", cols, want)
	}
}

func TestResolveNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []string
		width  int
		want   []string
	}{
		{"no header", nil, 3, []string{"COL1", "COL2", "COL3"}},
		{"plain", []string{"name", "age"}, 2, []string{"name", "age"}},
		{"normalized", []string{` "first name" `, "age "}, 2, []string{"first name", "age"}},
		{"empty falls back", []string{"a", "", "c"}, 3, []string{"a", "COL2", "c"}},
		{"duplicates", []string{"id", "ID", "id"}, 3, []string{"id", "ID_2", "id_3"}},
		{"synthetic clash", []string{"COL2", ""}, 2, []string{"COL2", "COL2_2"}},
		{"short header padded", []string{"a"}, 2, []string{"a", "COL2"}},
		{"long header cut", []string{"a", "b", "c"}, 2, []string{"a", "b"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveNames(tt.header, tt.width); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ResolveNames(%q,%d) = %q, want %q", tt.header, tt.width, got, tt.want)
			}
		})
	}
}

func TestProfile_CountsAndReport(t *testing.T) {
	t.Parallel()

	s := NewSampler(2, 10)
	s.Add([]string{"DE", "1"})
	s.Add([]string{"DE", ""})
	s.Add([]string{"FR", "3"})
	s.Add([]string{"", "4"})

	cols := s.Classify([]string{"country", "n"})
	profiles := Profile(s, cols)

	if p := profiles[0]; p.Samples != 4 || p.NonEmpty != 3 || p.Distinct != 2 || p.Capped {
		t.Fatalf("country profile = %+v", p)
	}
	if p := profiles[1]; p.NonEmpty != 3 || p.Distinct != 3 || p.Uniqueness() != 1 {
		t.Fatalf("n profile = %+v", p)
	}
	if u := (ColumnProfile{}).Uniqueness(); u != 0 {
		t.Fatalf("empty uniqueness = %v", u)
	}

	var buf bytes.Buffer
	WriteReport(&buf, profiles)
	out := buf.String()
	for _, want := range []string{"country", "text", "integer", "3/4", "0.67"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

package probe

import "fmt"

// DefaultSampleLimit is the number of data rows read during the sampling pass
// when no limit is configured.
const DefaultSampleLimit = 100

// Column is one destination column: its position, its name and, once
// sampling is complete, its inferred type.
type Column struct {
	Position int          `json:"position"` // 0-based
	Name     string       `json:"name"`
	Type     SemanticType `json:"type"`
}

// SyntheticName returns the positional name used for header-less inputs
// ("COL1" for position 0).
func SyntheticName(position int) string {
	return fmt.Sprintf("COL%d", position+1)
}

// Sampler accumulates bounded per-column Sample Sets.
//
// The column count is fixed at construction. Rows shorter than the column
// count contribute empty values for the missing fields; fields beyond the
// column count are ignored. Empty values are stored (they count toward the
// row cap) but are not classification evidence.
type Sampler struct {
	limit   int
	rows    int
	samples [][]string
}

// NewSampler returns a Sampler for width columns and at most limit rows.
// A non-positive limit selects DefaultSampleLimit.
func NewSampler(width, limit int) *Sampler {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	s := &Sampler{
		limit:   limit,
		samples: make([][]string, width),
	}
	for i := range s.samples {
		s.samples[i] = make([]string, 0, min(limit, 1024))
	}
	return s
}

// Full reports whether the row cap has been reached.
func (s *Sampler) Full() bool { return s.rows >= s.limit }

// Rows returns the number of rows accepted so far.
func (s *Sampler) Rows() int { return s.rows }

// Width returns the fixed column count.
func (s *Sampler) Width() int { return len(s.samples) }

// Add normalizes and records one raw row. It returns false, recording
// nothing, once the sampler is full.
func (s *Sampler) Add(raw []string) bool {
	if s.Full() {
		return false
	}
	for i := range s.samples {
		v := ""
		if i < len(raw) {
			v = Normalize(raw[i])
		}
		s.samples[i] = append(s.samples[i], v)
	}
	s.rows++
	return true
}

// Samples returns the Sample Set of column i. The slice must not be modified.
func (s *Sampler) Samples(i int) []string {
	return s.samples[i]
}

// Classify assigns a type to every column in names order and returns the
// resulting columns. It is called once, after sampling completes.
func (s *Sampler) Classify(names []string) []Column {
	cols := make([]Column, len(s.samples))
	for i := range s.samples {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		cols[i] = Column{
			Position: i,
			Name:     name,
			Type:     Classify(s.samples[i]),
		}
	}
	return cols
}

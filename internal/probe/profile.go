package probe

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

const distinctCapPerColumn = 10000

// ColumnProfile summarizes the Sample Set of one column.
//
// NonEmpty is the per-column denominator: only samples with a value count.
// Distinct is bounded by distinctCapPerColumn; Capped reports that the cap was hit.
type ColumnProfile struct {
	Column   Column `json:"column"`
	Samples  int    `json:"samples"`
	NonEmpty int    `json:"non_empty"`
	Distinct int    `json:"distinct"`
	Capped   bool   `json:"capped,omitempty"`
}

// Uniqueness returns Distinct/NonEmpty, or 0 for an all-empty column.
func (p ColumnProfile) Uniqueness() float64 {
	if p.NonEmpty == 0 {
		return 0
	}
	return float64(p.Distinct) / float64(p.NonEmpty)
}

// Profile computes bounded per-column statistics from a sampler's Sample Sets.
// cols must come from s.Classify so positions line up.
//
// Distinct counting drops a column's set once the cap is reached to keep
// memory bounded for high-cardinality columns (ids, UUIDs).
func Profile(s *Sampler, cols []Column) []ColumnProfile {
	out := make([]ColumnProfile, len(cols))
	for i, c := range cols {
		p := ColumnProfile{Column: c}
		if c.Position < 0 || c.Position >= s.Width() {
			out[i] = p
			continue
		}

		set := make(map[string]struct{})
		for _, v := range s.Samples(c.Position) {
			p.Samples++
			if v == "" {
				continue
			}
			p.NonEmpty++
			if p.Capped {
				continue
			}
			set[v] = struct{}{}
			if len(set) >= distinctCapPerColumn {
				p.Capped = true
				set = nil
			}
		}
		if p.Capped {
			p.Distinct = distinctCapPerColumn
		} else {
			p.Distinct = len(set)
		}
		out[i] = p
	}
	return out
}

// WriteReport renders profiles as a table: position, name, inferred type,
// non-empty count, distinct count and uniqueness ratio.
func WriteReport(w io.Writer, profiles []ColumnProfile) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "column", "type", "non-empty", "distinct", "uniqueness"})

	for _, p := range profiles {
		distinct := fmt.Sprintf("%d", p.Distinct)
		if p.Capped {
			distinct = fmt.Sprintf(">=%d", p.Distinct)
		}
		t.AppendRow(table.Row{
			p.Column.Position + 1,
			p.Column.Name,
			p.Column.Type.String(),
			fmt.Sprintf("%d/%d", p.NonEmpty, p.Samples),
			distinct,
			fmt.Sprintf("%.2f", p.Uniqueness()),
		})
	}
	t.Render()
}

/*
table.go - Ordered scale-line container and lower-bound lookup

PURPOSE:
  Holds a converter's scale lines sorted ascending by MaxQuantity and answers
  "smallest upper bound >= quantity" queries. The table is built once when a
  converter's configuration is loaded; lookups are pure reads over that
  snapshot, so the hot path performs no I/O and needs no locking.

TIE-BREAK:
  MaxQuantity values need not be unique. When several lines share the
  matching bound, the FIRST INSERTED of them wins. NewLineTable uses a
  stable sort and Lookup returns the first entry of the run, which makes
  the choice deterministic across loads (the store preserves insertion
  order via an explicit position column).

SEE ALSO:
  - types.go:   ScaleLine definition
  - convert.go: Uses Lookup during Convert
*/
package scale

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LINE TABLE
// =============================================================================

// LineTable is an immutable, ascending-ordered collection of scale lines.
type LineTable struct {
	lines []ScaleLine
}

// NewLineTable copies and sorts the given lines by MaxQuantity ascending.
// The sort is stable so equal bounds keep their insertion order.
func NewLineTable(lines []ScaleLine) *LineTable {
	sorted := make([]ScaleLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MaxQuantity.LessThan(sorted[j].MaxQuantity)
	})
	return &LineTable{lines: sorted}
}

// Len returns the number of lines.
func (t *LineTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.lines)
}

// Lines returns a copy of the ordered lines.
func (t *LineTable) Lines() []ScaleLine {
	if t == nil {
		return nil
	}
	out := make([]ScaleLine, len(t.lines))
	copy(out, t.lines)
	return out
}

// Lookup returns the line with the smallest MaxQuantity >= quantity.
// Binary search over the sorted slice: O(log n). The boolean is false when
// the quantity exceeds every configured bound.
func (t *LineTable) Lookup(quantity decimal.Decimal) (ScaleLine, bool) {
	if t == nil || len(t.lines) == 0 {
		return ScaleLine{}, false
	}
	i := sort.Search(len(t.lines), func(i int) bool {
		return t.lines[i].MaxQuantity.GreaterThanOrEqual(quantity)
	})
	if i == len(t.lines) {
		return ScaleLine{}, false
	}
	return t.lines[i], true
}

// MaxBound returns the largest configured MaxQuantity, for diagnostics.
func (t *LineTable) MaxBound() decimal.Decimal {
	if t == nil || len(t.lines) == 0 {
		return decimal.Zero
	}
	return t.lines[len(t.lines)-1].MaxQuantity
}

package quirks

import "chartables/internal/rangeindex"

// GB18030 range-map special cases (spec.md §4.5): an interior region with
// no valid mapping at all, an upper bound past which nothing is valid, and
// one singular exception pointer/scalar pair handled outside the general
// monotone search.
const (
	GB18030InvalidLo   = 39419
	GB18030InvalidHi   = 189000
	GB18030MaxPointer  = 1237575
	GB18030SingularPtr = 7457
	GB18030SingularVal = 0xE7C7
)

// GB18030RangesForward evaluates spec.md §4.6's forward direction with
// the GB 18030 quirks layered on top of the plain range-lbound search:
// the singular exception is checked first, then the invalid interior and
// upper-bound regions are rejected before falling back to r.
func GB18030RangesForward(r rangeindex.Result, pointer uint32) (scalar uint32, ok bool) {
	if pointer == GB18030SingularPtr {
		return GB18030SingularVal, true
	}
	if (pointer > GB18030InvalidLo && pointer < GB18030InvalidHi) || pointer > GB18030MaxPointer {
		return 0, false
	}
	return rangeindex.Lookup(r, pointer)
}

// GB18030RangesBackward evaluates spec.md §4.6's backward direction. r
// must be built from the scalar-to-pointer inverse of the map passed to
// the forward direction's rangeindex.Build (rangeindex's search is
// symmetric in its two spaces, so the same Build serves either
// direction once given the appropriately-oriented map).
func GB18030RangesBackward(r rangeindex.Result, scalar uint32) (pointer uint32, ok bool) {
	if scalar == GB18030SingularVal {
		return GB18030SingularPtr, true
	}
	return rangeindex.Lookup(r, scalar)
}

// Package rangeindex implements the range-lower-bound index of spec.md
// §4.6 (used for GB 18030-style monotone range maps), ported from
// rust-encoding's generate_multi_byte_range_lbound_index
// (original_source/src/index/gen_index.py).
package rangeindex

import (
	"sort"

	"github.com/pkg/errors"
)

// Entry is one (pointer, scalar) breakpoint: for any pointer p >= Pointer
// (and below the next entry's Pointer), the mapped scalar is
// Scalar + (p - Pointer).
type Entry struct {
	Pointer uint32
	Scalar  uint32
}

// Result holds the sorted breakpoints plus the branch-unrolled binary
// search depth needed to scan them (spec.md §4.6 "branch-unrolled
// descent").
type Result struct {
	Entries []Entry
	Depth   int
	// MinKey is the true minimum pointer among the caller's ranges, kept
	// separately from Entries[0].Pointer (which may be a synthetic (0, 0)
	// breakpoint added only to seed the binary descent), matching
	// generate_multi_byte_range_lbound_index's separate `minkey` (spec.md
	// §8 "Forward totality... outside the declared input range").
	MinKey uint32
}

// Build sorts ranges by Pointer, prepends a synthetic (0, 0) breakpoint if
// the caller didn't supply one, and rejects duplicate pointer breakpoints.
func Build(ranges map[uint32]uint32) (Result, error) {
	if len(ranges) == 0 {
		return Result{}, errors.New("rangeindex: no ranges given")
	}

	entries := make([]Entry, 0, len(ranges)+1)
	for p, s := range ranges {
		entries = append(entries, Entry{Pointer: p, Scalar: s})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Pointer < entries[j].Pointer })

	for i := 1; i < len(entries); i++ {
		if entries[i].Pointer == entries[i-1].Pointer {
			return Result{}, errors.Errorf("rangeindex: duplicate breakpoint at pointer %#x", entries[i].Pointer)
		}
	}

	minKey := entries[0].Pointer
	if entries[0].Pointer != 0 {
		entries = append([]Entry{{Pointer: 0, Scalar: 0}}, entries...)
	}

	depth := 0
	for (1 << uint(depth)) < len(entries) {
		depth++
	}

	return Result{Entries: entries, Depth: depth, MinKey: minKey}, nil
}

// Lookup finds the greatest entry with Pointer <= p via a branch-unrolled
// binary descent of r.Depth steps, then returns its scalar offset by the
// distance from that breakpoint. Pointers below the true minimum
// (r.MinKey) are rejected even though a synthetic (0, 0) breakpoint may
// put Entries[0].Pointer at 0.
func Lookup(r Result, p uint32) (scalar uint32, ok bool) {
	if len(r.Entries) == 0 || p < r.MinKey {
		return 0, false
	}

	lo := 0
	step := 0
	if r.Depth > 0 {
		step = 1 << uint(r.Depth-1)
	}
	for ; step > 0; step >>= 1 {
		if lo+step < len(r.Entries) && r.Entries[lo+step].Pointer <= p {
			lo += step
		}
	}

	e := r.Entries[lo]
	return e.Scalar + (p - e.Pointer), true
}

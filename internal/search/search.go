// Package search implements the sparse-search index builder of spec.md
// §4.3, ported from rust-encoding's make_minimal_search
// (original_source/src/index/gen_index.py).
package search

import (
	"sort"

	"github.com/pkg/errors"
)

// rangeTag marks an Entry.Start as a singular-exception witness rather
// than a range start (spec.md §9 "Tag bit for search entries").
const rangeTag = 0x8000

// Entry is one (start, end) pair of the emitted BACKWARD_SEARCH_LOWER
// table. If Start&rangeTag == 0, it is a half-open range [Start, End) in
// pointer space. Otherwise it is a singular exception: the witness pointer
// is Start&0x7FFF and End holds the low 16 bits of the mapped scalar.
type Entry struct {
	Start uint32
	End   uint32
}

// IsException reports whether e is a singular-exception witness rather
// than a range.
func (e Entry) IsException() bool { return e.Start&rangeTag != 0 }

// Result is the (super_bits, lower, upper) triple of spec.md §4.3.
type Result struct {
	SuperBits int
	Lower     []Entry
	Upper     []int
	// FullLinearSearch is true when the index degenerates to one
	// super-block holding a single entry, range or exception (spec.md
	// §4.3 "Degenerate case"): the caller should use
	// a plain linear scan of the forward table instead of this structure.
	FullLinearSearch bool
	// MinKey is the minimum pre-mapped pointer across data, subtracted
	// from every emitted Start/End.
	MinKey uint32
}

// Premap maps an original (un-pre-mapped) pointer to its pre-mapped
// counterpart. ok is false if the pointer has no pre-mapped image (which
// should not occur for pointers already present in invData, since invData
// was built only from entries data's pre-map already accepted).
type Premap func(pointer uint32) (mapped uint32, ok bool)

// Build sweeps super_bits in [0, 21) and returns the candidate minimizing
// len(Lower) + 2*len(Upper). Ties resolve to the smaller super_bits.
//
// data maps pre-mapped pointer -> scalar. invData maps scalar -> original
// (un-pre-mapped) pointer. maxSearch bounds the worst-case linear-scan
// work within any single super-block.
func Build(data map[uint32]uint32, invData map[uint32]uint32, premap Premap, maxSearch int) (Result, error) {
	if len(data) == 0 {
		return Result{}, errors.New("search: data is empty")
	}
	if len(invData) == 0 {
		return Result{}, errors.New("search: invData is empty")
	}

	var minKey uint32 = ^uint32(0)
	for p := range data {
		if p < minKey {
			minKey = p
		}
	}

	var maxValue uint32
	for s := range invData {
		if s > maxValue {
			maxValue = s
		}
	}
	maxValue++

	best := -1
	var bestResult Result

	for superBits := 0; superBits <= 20; superBits++ {
		blockLen := uint32(1) << uint(superBits)
		var lower []Entry
		var upper []int

		for base := uint32(0); base < maxValue; base += blockLen {
			block, err := buildSuperBlock(base, blockLen, data, invData, premap, minKey, maxSearch)
			if err != nil {
				return Result{}, errors.Wrapf(err, "search: super_bits %d", superBits)
			}
			upper = append(upper, len(lower))
			lower = append(lower, block...)
		}
		upper = append(upper, len(lower))

		total := len(lower) + 2*len(upper)
		if best == -1 || total < best {
			best = total
			bestResult = Result{
				SuperBits: superBits,
				Lower:     lower,
				Upper:     upper,
				MinKey:    minKey,
			}
		}
	}

	bestResult.FullLinearSearch = len(bestResult.Upper) == 2 && bestResult.Upper[0] == 0 && bestResult.Upper[1] == 1
	return bestResult, nil
}

func buildSuperBlock(base, blockLen uint32, data, invData map[uint32]uint32, premap Premap, minKey uint32, maxSearch int) ([]Entry, error) {
	var v []uint32
	for s := base; s < base+blockLen; s++ {
		orig, ok := invData[s]
		if !ok {
			continue
		}
		mapped, ok := premap(orig)
		if !ok {
			return nil, errors.Errorf("pointer %#x has no pre-mapped image", orig)
		}
		v = append(v, mapped)
	}
	if len(v) == 0 {
		return nil, nil
	}
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })

	boundaries := []uint32{v[0], v[len(v)-1]}
	work := int(v[len(v)-1] - v[0])

	type gap struct {
		delta int
		j     int
	}
	gaps := make([]gap, 0, len(v)-1)
	for j := 0; j < len(v)-1; j++ {
		gaps = append(gaps, gap{delta: int(v[j+1] - v[j]), j: j})
	}
	sort.Slice(gaps, func(i, k int) bool {
		if gaps[i].delta != gaps[k].delta {
			return gaps[i].delta < gaps[k].delta
		}
		return gaps[i].j < gaps[k].j
	})

	for i := len(gaps) - 1; i >= 0; i-- {
		if work <= maxSearch {
			break
		}
		g := gaps[i]
		work -= g.delta
		boundaries = append(boundaries, v[g.j], v[g.j+1])
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i] < boundaries[j] })

	if boundaries[0] < minKey {
		return nil, errors.Errorf("boundary %#x below minKey %#x", boundaries[0], minKey)
	}
	if boundaries[len(boundaries)-1] >= 0x7FFF {
		return nil, errors.Errorf("boundary %#x would collide with the exception tag bit", boundaries[len(boundaries)-1])
	}

	entries := make([]Entry, 0, len(boundaries)/2)
	for i := 0; i < len(boundaries); i += 2 {
		a, b := boundaries[i], boundaries[i+1]
		var e Entry
		if a < b {
			e = Entry{Start: a - minKey, End: b - minKey + 1}
		} else {
			scalar, ok := data[a]
			if !ok {
				return nil, errors.Errorf("pre-mapped pointer %#x absent from data", a)
			}
			e = Entry{Start: rangeTag | (a - minKey), End: scalar & 0xFFFF}
		}
		if len(entries) > 0 {
			prev := entries[len(entries)-1]
			if prev.Start == e.Start && prev.End == e.End {
				return nil, errors.Errorf("search: degenerate duplicate entry at pointer %#x", a)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Lookup evaluates the §4.3 lookup contract for a non-degenerate result:
// it picks the super-block from scalar >> SuperBits and linearly scans that
// super-block's entries, matching against the scalar's low 16 bits. forwardLow16 looks up the pre-mapped pointer's
// scalar low 16 bits (FORWARD_TABLE[i] in the original); it is used only to
// resolve range entries.
func Lookup(r Result, scalar uint32, forwardLow16 func(pointer uint32) (uint16, bool)) (pointer uint32, ok bool) {
	codeLo := uint16(scalar & 0xFFFF)
	off := int(scalar >> uint(r.SuperBits))
	if off+1 >= len(r.Upper) {
		return 0, false
	}
	start, end := r.Upper[off], r.Upper[off+1]
	for _, e := range r.Lower[start:end] {
		if e.IsException() {
			if uint16(e.End) == codeLo {
				return (e.Start & 0x7FFF) + r.MinKey, true
			}
			continue
		}
		for i := e.Start; i < e.End; i++ {
			v, ok := forwardLow16(i + r.MinKey)
			if ok && v == codeLo {
				return i + r.MinKey, true
			}
		}
	}
	return 0, false
}

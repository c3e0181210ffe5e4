// Package trie implements the two-level trie builder of spec.md §4.2,
// ported from rust-encoding's make_minimal_trie
// (original_source/src/index/gen_index.py).
package trie

import (
	"github.com/pkg/errors"

	"chartables/internal/model"
	"chartables/internal/packer"
)

// Result is the trie triple (stride, lower, upper) of spec.md §4.2.
type Result struct {
	Stride int
	Lower  []model.Slot
	Upper  []int
}

// Build sweeps stride in [0, 21) and returns the triple minimizing
// len(Lower)+len(Upper) subject to len(Lower) < lowerLimit. Ties resolve to
// the smaller stride, since strides are tried in ascending order and a
// later candidate only replaces the best on a strict improvement.
//
// invData maps scalar -> pointer, and Build stores those pointer values as
// given. registry.BuildMultiByte passes original, non-pre-mapped pointers,
// so the trie does not hold pre-mapped pointers and its lookup applies no
// pre-map inverse.
func Build(invData map[uint32]uint32, lowerLimit int) (Result, error) {
	if len(invData) == 0 {
		return Result{}, errors.New("trie: invData is empty")
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

	for stride := 0; stride <= 20; stride++ {
		blockLen := 1 << uint(stride)
		var blocks []model.Block
		blockIdx := make(map[string]int)
		emptyKey := model.Block(make([]model.Slot, blockLen)).Key()
		blockIdx[emptyKey] = -1

		var upperIdx []int
		for base := uint32(0); base < maxValue; base += uint32(blockLen) {
			blk := make(model.Block, blockLen)
			for j := 0; j < blockLen; j++ {
				if p, ok := invData[base+uint32(j)]; ok {
					blk[j] = model.Slot{Value: p, Present: true}
				}
			}
			key := blk.Key()
			idx, ok := blockIdx[key]
			if !ok {
				idx = len(blocks)
				blockIdx[key] = idx
				blocks = append(blocks, blk)
			}
			upperIdx = append(upperIdx, idx)
		}

		lower, upperOffset, err := packBlocks(blocks, blockLen)
		if err != nil {
			return Result{}, errors.Wrapf(err, "trie: stride %d", stride)
		}

		upper := make([]int, len(upperIdx))
		for i, idx := range upperIdx {
			if idx == -1 {
				upper[i] = 0
				continue
			}
			upper[i] = upperOffset[idx]
		}

		total := len(lower) + len(upper)
		if len(lower) < lowerLimit && (best == -1 || total < best) {
			best = total
			bestResult = Result{Stride: stride, Lower: lower, Upper: upper}
		}
	}

	if best == -1 {
		return Result{}, errors.Errorf("trie: no stride kept lower table under %d entries", lowerLimit)
	}
	return bestResult, nil
}

// packBlocks overlap-packs the given unique blocks against a leading
// blockLen-wide synthetic empty block (it occupies offsets [0, blockLen);
// Build gives it the block index -1, so every genuinely-empty super-block
// resolves to upper[i]=0) and returns the concatenated lower array plus, per real
// block index, its emission offset. Ported from make_minimal_trie's
// `lower = [None] * (1<<triebits)` seed (gen_index.py lines 169-198).
func packBlocks(blocks []model.Block, blockLen int) ([]model.Slot, []int, error) {
	offsets := make([]int, len(blocks))
	lower := make([]model.Slot, blockLen)
	if len(blocks) == 0 {
		return lower, offsets, nil
	}

	placements, err := packer.Pack(blocks)
	if err != nil {
		return nil, nil, err
	}

	for _, p := range placements {
		blk := blocks[p.Index]
		shift := p.Shift
		if shift > len(lower) || shift > len(blk) {
			return nil, nil, errors.Errorf("packer returned an invalid shift %d for block %d", shift, p.Index)
		}
		overlapStart := len(lower) - shift
		for j := 0; j < shift; j++ {
			existing := lower[overlapStart+j]
			incoming := blk[j]
			if existing.Present && incoming.Present && existing.Value != incoming.Value {
				return nil, nil, errors.Errorf("packer produced inconsistent overlap for block %d", p.Index)
			}
			if incoming.Present {
				lower[overlapStart+j] = incoming
			}
		}
		offsets[p.Index] = len(lower) - shift
		lower = append(lower, blk[shift:]...)
	}
	return lower, offsets, nil
}

// Lookup evaluates the trie contract of spec.md §4.2: given scalar s,
// return the stored pointer and whether s was in range. Out-of-range
// scalars (s>>stride >= len(upper)) resolve to offset 0, the synthetic
// empty block, and report !ok.
func Lookup(r Result, s uint32) (pointer uint32, ok bool) {
	mask := uint32(1)<<uint(r.Stride) - 1
	off := int(s >> uint(r.Stride))
	var base int
	if off < len(r.Upper) {
		base = r.Upper[off]
	}
	idx := base + int(s&mask)
	if idx < 0 || idx >= len(r.Lower) {
		return 0, false
	}
	slot := r.Lower[idx]
	return slot.Value, slot.Present
}

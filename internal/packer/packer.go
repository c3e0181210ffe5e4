// Package packer implements the overlapping-block packer described in
// spec.md §4.1: a conservative greedy approximation of the longest
// Hamiltonian path over blocks, joined by shared leading/trailing empty
// runs, ported from rust-encoding's optimize_overlapping_blocks
// (original_source/src/index/gen_index.py).
package packer

import (
	"container/heap"

	"github.com/pkg/errors"

	"chartables/internal/model"
)

// Placement is one entry of the packer's output ordering: block Index is
// emitted with overlap Shift against its predecessor in the concatenation
// (or, for the first placement, Shift is the block's own leading empty-slot
// count).
type Placement struct {
	Index int
	Shift int
}

// gapItem is a heap element: a block index plus its relevant gap length.
// Larger gaps sort first; ties break toward the smaller index, matching
// Python's (-gap, idx) tuple ordering under heapq.
type gapItem struct {
	gap int
	idx int
}

type gapHeap []gapItem

func (h gapHeap) Len() int { return len(h) }
func (h gapHeap) Less(i, j int) bool {
	if h[i].gap != h[j].gap {
		return h[i].gap > h[j].gap
	}
	return h[i].idx < h[j].idx
}
func (h gapHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *gapHeap) Push(x any)        { *h = append(*h, x.(gapItem)) }
func (h *gapHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// unionFind is a disjoint-set structure with path compression and union by
// rank, used to reject joins that would close a cycle in the predecessor/
// successor chain (spec.md §9 "Cycle avoidance in the packer").
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(i, j int) {
	ri, rj := uf.find(i), uf.find(j)
	if ri == rj {
		return
	}
	switch {
	case uf.rank[ri] < uf.rank[rj]:
		uf.parent[ri] = rj
	case uf.rank[ri] > uf.rank[rj]:
		uf.parent[rj] = ri
	default:
		uf.parent[rj] = ri
		uf.rank[ri]++
	}
}

// Pack computes an overlap-maximizing ordering of blocks. Every block must
// have at least one non-empty slot; an all-empty block is a programming
// error (spec.md §4.1 "Failure semantics").
func Pack(blocks []model.Block) ([]Placement, error) {
	n := len(blocks)
	if n == 0 {
		return nil, nil
	}

	preGaps := make(gapHeap, 0, n)
	postGaps := make(gapHeap, 0, n)
	for idx, blk := range blocks {
		if blk.Empty() {
			return nil, errors.Errorf("packer: block %d has no non-empty slot", idx)
		}
		preGaps = append(preGaps, gapItem{gap: blk.LeadGap(), idx: idx})
		postGaps = append(postGaps, gapItem{gap: blk.TrailGap(), idx: idx})
	}
	heap.Init(&preGaps)
	heap.Init(&postGaps)

	uf := newUnionFind(n)
	next := make(map[int]Placement, n)
	hasNext := make(map[int]bool, n) // preblk -> used as a predecessor already
	isSuccessor := make(map[int]bool, n)

	for i := 0; i < n-1; i++ {
		post := heap.Pop(&postGaps).(gapItem)
		pre := heap.Pop(&preGaps).(gapItem)

		preGroup := uf.find(post.idx)
		var rejected []gapItem
		for preGroup == uf.find(pre.idx) {
			rejected = append(rejected, pre)
			pre = heap.Pop(&preGaps).(gapItem)
		}
		for _, r := range rejected {
			heap.Push(&preGaps, r)
		}

		if hasNext[post.idx] {
			return nil, errors.Errorf("packer: block %d assigned a successor twice", post.idx)
		}
		shift := pre.gap
		if post.gap < shift {
			shift = post.gap
		}
		next[post.idx] = Placement{Index: pre.idx, Shift: shift}
		hasNext[post.idx] = true
		isSuccessor[pre.idx] = true
		uf.union(post.idx, pre.idx)
	}

	start := preGaps[0]
	result := make([]Placement, 0, n)
	result = append(result, Placement{Index: start.idx, Shift: start.gap})

	blk := start.idx
	for {
		placement, ok := next[blk]
		if !ok {
			break
		}
		result = append(result, placement)
		blk = placement.Index
	}

	if len(result) != n {
		return nil, errors.Errorf("packer: produced %d placements for %d blocks (not Hamiltonian)", len(result), n)
	}
	return result, nil
}

package packer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartables/internal/model"
)

// mkBlock builds a model.Block from a slice where a nil-marker -1 means
// "empty slot" and any other value is a present pointer value.
func mkBlock(vals ...int) model.Block {
	b := make(model.Block, len(vals))
	for i, v := range vals {
		if v < 0 {
			continue
		}
		b[i] = model.Slot{Value: uint32(v), Present: true}
	}
	return b
}

// emit reconstructs the concatenated lower array from a packing, asserting
// overlap consistency exactly as spec.md §4.1 requires of the emission
// step (not the packer itself).
func emit(t *testing.T, blocks []model.Block, placements []Placement) []model.Slot {
	t.Helper()
	var lower []model.Slot
	for i, p := range placements {
		blk := blocks[p.Index]
		if i == 0 {
			lower = append(lower, blk...)
			continue
		}
		shift := p.Shift
		require.LessOrEqual(t, shift, len(lower))
		require.LessOrEqual(t, shift, len(blk))
		overlapStart := len(lower) - shift
		for j := 0; j < shift; j++ {
			existing := lower[overlapStart+j]
			incoming := blk[j]
			if existing.Present && incoming.Present {
				require.Equal(t, existing.Value, incoming.Value, "overlap conflict at placement %d", i)
			}
			if incoming.Present {
				lower[overlapStart+j] = incoming
			}
		}
		lower = append(lower, blk[shift:]...)
	}
	return lower
}

func TestPackIsPermutation(t *testing.T) {
	blocks := []model.Block{
		mkBlock(-1, -1, 1, 2, 3, -1, -1, -1),
		mkBlock(4, -1, -1, 5, -1, -1, -1, -1),
		mkBlock(-1, -1, -1, -1, -1, -1, -1, 6),
	}
	placements, err := Pack(blocks)
	require.NoError(t, err)
	require.Len(t, placements, len(blocks))

	seen := make(map[int]bool)
	for _, p := range placements {
		assert.False(t, seen[p.Index], "block %d placed twice", p.Index)
		seen[p.Index] = true
	}
	assert.Len(t, seen, len(blocks))
}

func TestPackDocstringExample(t *testing.T) {
	// The three-block example from gen_index.py's
	// optimize_overlapping_blocks docstring: concatenating naively costs
	// 24 slots; the greedy overlaps the second block's trailing gap with
	// the third block's leading gap by 4, bringing it down to 20.
	blocks := []model.Block{
		mkBlock(-1, -1, 1, 2, 3, -1, -1, -1),
		mkBlock(4, -1, -1, 5, -1, -1, -1, -1),
		mkBlock(-1, -1, -1, -1, -1, -1, -1, 6),
	}
	placements, err := Pack(blocks)
	require.NoError(t, err)

	lower := emit(t, blocks, placements)
	assert.LessOrEqual(t, len(lower), 20)
}

func TestPackOverlapConsistencySixBlocks(t *testing.T) {
	blocks := []model.Block{
		mkBlock(-1, -1, -1, 7, 8, -1, -1, -1),
		mkBlock(-1, -1, 9, -1, -1, -1, -1, -1),
		mkBlock(-1, -1, -1, -1, -1, 1, 2, -1),
		mkBlock(3, -1, -1, -1, -1, -1, -1, -1),
		mkBlock(-1, -1, -1, -1, -1, -1, -1, 5),
		mkBlock(-1, 6, -1, -1, -1, -1, -1, -1),
	}
	placements, err := Pack(blocks)
	require.NoError(t, err)
	require.Len(t, placements, len(blocks))
	_ = emit(t, blocks, placements) // panics/fails via require on any conflict
}

func TestPackSingleBlock(t *testing.T) {
	blocks := []model.Block{mkBlock(-1, -1, 1, 2)}
	placements, err := Pack(blocks)
	require.NoError(t, err)
	require.Len(t, placements, 1)
	assert.Equal(t, 0, placements[0].Index)
	assert.Equal(t, 2, placements[0].Shift) // leading empty-slot count
}

func TestPackEmptyBlockRejected(t *testing.T) {
	blocks := []model.Block{
		mkBlock(1, 2),
		mkBlock(-1, -1),
	}
	_, err := Pack(blocks)
	require.Error(t, err)
}

func TestPackNoInput(t *testing.T) {
	placements, err := Pack(nil)
	require.NoError(t, err)
	assert.Nil(t, placements)
}

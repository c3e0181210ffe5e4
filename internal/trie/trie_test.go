package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLookupRoundTrip(t *testing.T) {
	// A small, sparse backward map: scalar -> pointer.
	invData := map[uint32]uint32{
		0x20AC: 0x80,
		0x0041: 0x41,
		0x00FF: 0xA0,
		0x1234: 0x55,
	}

	result, err := Build(invData, 0x10000)
	require.NoError(t, err)

	for scalar, pointer := range invData {
		got, ok := Lookup(result, scalar)
		require.True(t, ok, "scalar %#x should be present", scalar)
		assert.Equal(t, pointer, got)
	}
}

func TestBuildRejectsAbsentScalars(t *testing.T) {
	invData := map[uint32]uint32{0x41: 1, 0x42: 2}
	result, err := Build(invData, 0x10000)
	require.NoError(t, err)

	_, ok := Lookup(result, 0x99)
	assert.False(t, ok)
}

func TestBuildOutOfRangeScalar(t *testing.T) {
	invData := map[uint32]uint32{0x41: 1}
	result, err := Build(invData, 0x10000)
	require.NoError(t, err)

	_, ok := Lookup(result, 0x10FFFF)
	assert.False(t, ok)
}

func TestBuildEmptyInvDataErrors(t *testing.T) {
	_, err := Build(nil, 0x10000)
	require.Error(t, err)
}

func TestBuildDenseMapRoundTrip(t *testing.T) {
	// A perfectly dense map of 16 entries: whichever stride Build picks,
	// every scalar must resolve to its pointer.
	invData := map[uint32]uint32{}
	for i := uint32(0); i < 16; i++ {
		invData[i] = i + 1
	}
	result, err := Build(invData, 0x10000)
	require.NoError(t, err)
	for s, p := range invData {
		got, ok := Lookup(result, s)
		require.True(t, ok)
		assert.Equal(t, p, got)
	}
}

func TestBuildLowerLimitExceeded(t *testing.T) {
	// Stride 0 already needs 3 lower slots (the 1-slot empty seed plus two
	// blocks), and every larger stride needs more.
	invData := map[uint32]uint32{0x41: 1, 0x100000: 2}
	_, err := Build(invData, 3)
	require.Error(t, err)
}

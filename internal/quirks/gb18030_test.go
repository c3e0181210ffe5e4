package quirks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartables/internal/rangeindex"
)

func TestGB18030RangesSingularException(t *testing.T) {
	r, err := rangeindex.Build(map[uint32]uint32{0: 0x10000, 100: 0x20000})
	require.NoError(t, err)

	scalar, ok := GB18030RangesForward(r, GB18030SingularPtr)
	require.True(t, ok)
	assert.Equal(t, uint32(GB18030SingularVal), scalar)

	rb, err := rangeindex.Build(map[uint32]uint32{0x10000: 0, 0x20000: 100})
	require.NoError(t, err)
	pointer, ok := GB18030RangesBackward(rb, GB18030SingularVal)
	require.True(t, ok)
	assert.Equal(t, uint32(GB18030SingularPtr), pointer)
}

func TestGB18030RangesInvalidInterior(t *testing.T) {
	r, err := rangeindex.Build(map[uint32]uint32{0: 0x10000, 200000: 0x20000})
	require.NoError(t, err)

	_, ok := GB18030RangesForward(r, 50000)
	assert.False(t, ok)
}

func TestGB18030RangesAboveMaxPointer(t *testing.T) {
	r, err := rangeindex.Build(map[uint32]uint32{0: 0x10000})
	require.NoError(t, err)

	_, ok := GB18030RangesForward(r, GB18030MaxPointer+1)
	assert.False(t, ok)
}

func TestGB18030RangesFallsThroughToSearch(t *testing.T) {
	r, err := rangeindex.Build(map[uint32]uint32{0: 0x10000, 100: 0x20000})
	require.NoError(t, err)

	scalar, ok := GB18030RangesForward(r, 50)
	require.True(t, ok)
	assert.Equal(t, uint32(0x10000+50), scalar)
}

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartables/internal/model"
	"chartables/internal/quirks"
)

func TestSingleByteWindows1252Euro(t *testing.T) {
	rec := model.NewRecord()
	// A sparse stand-in for windows-1252: pointer 0x20 (byte 0xA0) is
	// given U+20AC EURO SIGN, and pointer 0 (byte 0x80) U+0041.
	rec.Data[0x20] = 0x20AC
	rec.InvData[0x20AC] = 0x20
	rec.Data[0x00] = 0x0041
	rec.InvData[0x0041] = 0x00

	r, stats, err := BuildSingleByte(rec)
	require.NoError(t, err)
	assert.Equal(t, 2*128, stats.ForwardBytes)

	scalar, ok := SingleByteForward(r, 0x20)
	require.True(t, ok)
	assert.Equal(t, uint32(0x20AC), scalar)

	pointer, ok := SingleByteBackwardOptimized(r, 0x20AC)
	require.True(t, ok)
	assert.Equal(t, uint32(0x20), pointer)

	pointer, ok = SingleByteBackwardUnoptimized(r, 0x20AC)
	require.True(t, ok)
	assert.Equal(t, uint32(0x20), pointer)

	_, ok = SingleByteBackwardUnoptimized(r, 0x9999)
	assert.False(t, ok)
}

func TestMultiByteEUCKRHoleRejected(t *testing.T) {
	rec := model.NewRecord()
	rec.Data[0] = 0x4E00
	rec.Data[1] = 0x4E01
	rec.InvData[0x4E00] = 0
	rec.InvData[0x4E01] = 1

	r, stats, err := BuildMultiByte("euc-kr", rec, DefaultConfig())
	require.NoError(t, err)
	assert.Positive(t, stats.ForwardBytes)

	scalar, ok := MultiByteForward(r, 0)
	require.True(t, ok)
	assert.Equal(t, uint32(0x4E00), scalar)

	// Pointer row 44, high column: inside EUC-KR's premap "hole" and
	// never a registered entry.
	_, ok = MultiByteForward(r, 44*190+100)
	assert.False(t, ok)

	pointer, ok := MultiByteBackwardOptimized(r, 0x4E00)
	require.True(t, ok)
	assert.Equal(t, uint32(0), pointer)
}

func TestMultiByteBig5CanonicalSwap(t *testing.T) {
	rec := model.NewRecord()
	first := quirks.Big5HKSCSLimit + 1
	second := quirks.Big5HKSCSLimit + 2
	scalar := uint32(0x5341) // in quirks.Big5SwappedCanon

	rec.Data[first] = scalar
	rec.Data[second] = scalar
	rec.InvData[scalar] = first
	rec.Dups = []uint32{second}

	err := quirks.ApplyBig5Quirks(rec)
	require.NoError(t, err)

	r, _, err := BuildMultiByte("big5", rec, DefaultConfig())
	require.NoError(t, err)

	pointer, ok := MultiByteBackwardOptimized(r, scalar)
	require.True(t, ok)
	assert.Equal(t, second, pointer, "the later-read pointer must be canonical")

	for value, p := range quirks.Big5SpecialPointers {
		got, ok := MultiByteForward(r, p)
		require.True(t, ok)
		assert.Equal(t, uint32(value), got)
	}
}

func TestMultiByteBig5HKSCSForwardOnly(t *testing.T) {
	rec := model.NewRecord()
	below := uint32(5)
	above := quirks.Big5HKSCSLimit + 1
	rec.Data[below] = 0x4E10
	rec.InvData[0x4E10] = below
	rec.Data[above] = 0x4E11
	rec.InvData[0x4E11] = above

	err := quirks.ApplyBig5Quirks(rec)
	require.NoError(t, err)

	r, _, err := BuildMultiByte("big5", rec, DefaultConfig())
	require.NoError(t, err)

	scalar, ok := MultiByteForward(r, below)
	require.True(t, ok)
	assert.Equal(t, uint32(0x4E10), scalar)

	_, ok = MultiByteBackwardOptimized(r, 0x4E10)
	assert.False(t, ok, "HKSCS-only entries must not round-trip backward")
}

func TestMultiByteJIS0208BackwardRemapped(t *testing.T) {
	rec := model.NewRecord()
	const insideRemap = 8300
	const outsideCounterpart = 100
	rec.Data[insideRemap] = 0x4E00
	rec.Data[outsideCounterpart] = 0x4E00
	rec.InvData[0x4E00] = insideRemap // default backward favors the EUC-JP pointer

	r, _, err := BuildMultiByte("jis0208", rec, DefaultConfig())
	require.NoError(t, err)

	defaultPointer, ok := MultiByteBackwardOptimized(r, 0x4E00)
	require.True(t, ok)
	assert.Equal(t, uint32(insideRemap), defaultPointer)

	remapped, ok := MultiByteBackwardRemapped(r, 0x4E00)
	require.True(t, ok)
	assert.Equal(t, uint32(outsideCounterpart), remapped, "Shift_JIS should prefer the counterpart outside the remap range")
}

func TestRangeLBoundGB18030Singular(t *testing.T) {
	rec := model.NewRecord()
	rec.Data[0] = 0x80
	rec.Data[100] = 0x180
	rec.Data[40000] = 0x10000

	r, stats, err := BuildRangeLBound("gb18030-ranges", rec)
	require.NoError(t, err)
	assert.Positive(t, stats.ForwardBytes)

	scalar, ok := RangeLBoundForward(r, quirks.GB18030SingularPtr)
	require.True(t, ok)
	assert.Equal(t, uint32(quirks.GB18030SingularVal), scalar)

	pointer, ok := RangeLBoundBackward(r, quirks.GB18030SingularVal)
	require.True(t, ok)
	assert.Equal(t, uint32(quirks.GB18030SingularPtr), pointer)

	_, ok = RangeLBoundForward(r, 50000)
	assert.False(t, ok, "the invalid interior region must be rejected")
}

func TestIndicesRegisterAllKinds(t *testing.T) {
	var single, multi, ranged int
	for _, s := range Indices {
		switch s.Kind {
		case SingleByte:
			single++
		case MultiByte:
			multi++
		case RangeLBound:
			ranged++
		}
	}
	assert.Equal(t, 28, single)
	assert.Equal(t, 5, multi)
	assert.Equal(t, 1, ranged)
}

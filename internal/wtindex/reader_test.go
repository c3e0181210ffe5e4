package wtindex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBasic(t *testing.T) {
	src := `# Windows-1252
# second line
0 0x20AC

128 8364
`
	lines, comments, err := Read("windows-1252.txt", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{" Windows-1252", " second line"}, comments)
	require.Len(t, lines, 2)
	assert.Equal(t, Line{Pointer: 0, Scalar: 0x20AC}, lines[0])
	assert.Equal(t, Line{Pointer: 128, Scalar: 8364}, lines[1])
}

func TestReadTrailingTextIgnored(t *testing.T) {
	lines, _, err := Read("t.txt", strings.NewReader("10 0x41 some comment here\n"))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, uint32(0x41), lines[0].Scalar)
}

func TestReadDuplicatePointer(t *testing.T) {
	_, _, err := Read("t.txt", strings.NewReader("1 2\n1 3\n"))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestReadScalarOutOfRange(t *testing.T) {
	_, _, err := Read("t.txt", strings.NewReader("1 0xFFFF\n"))
	require.Error(t, err)
}

func TestReadScalarAboveBMPMustBeSIP(t *testing.T) {
	_, _, err := Read("t.txt", strings.NewReader("1 0x30000\n"))
	require.Error(t, err)

	_, _, err = Read("t.txt", strings.NewReader("1 0x20000\n"))
	require.NoError(t, err)
}

func TestReadMalformedNumber(t *testing.T) {
	_, _, err := Read("t.txt", strings.NewReader("abc 1\n"))
	require.Error(t, err)
}

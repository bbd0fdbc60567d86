package tiff

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackBitsEncodeRowMixedRunAndLiteral(t *testing.T) {
	src := []byte{0xAA, 0xAA, 0xAA, 0xBB}
	got := packBitsEncodeRow(src)
	want := []byte{0xFE, 0xAA, 0x00, 0xBB}
	if !assert.Equal(t, want, got) {
		t.Log(spew.Sdump(got))
	}
}

func TestPackBitsEncodeRowAllLiteral(t *testing.T) {
	src := []byte{0x01, 0x02, 0x03, 0x04}
	got := packBitsEncodeRow(src)
	want := []byte{0x03, 0x01, 0x02, 0x03, 0x04}
	assert.Equal(t, want, got)
}

func TestPackBitsEncodeRowSingleByte(t *testing.T) {
	got := packBitsEncodeRow([]byte{0x42})
	assert.Equal(t, []byte{0x00, 0x42}, got)
}

func TestPackBitsEncodeRowLongRunSplits(t *testing.T) {
	src := make([]byte, 130)
	for i := range src {
		src[i] = 0x7F
	}
	got := packBitsEncodeRow(src)
	// 128-byte run (header 0x81 = -127) then a 2-byte run (header 0xFF = -1).
	require.Equal(t, []byte{0x81, 0x7F, 0xFF, 0x7F}, got)
}

func TestPackBitsWorstCaseRowLen(t *testing.T) {
	assert.Equal(t, 1+128, packBitsWorstCaseRowLen(128))
	assert.Equal(t, 2+256, packBitsWorstCaseRowLen(256))
}

func TestPackBitsEncodeTileConcatenatesPerRow(t *testing.T) {
	rowBytes := 4
	rows := 2
	packed := []byte{
		0xAA, 0xAA, 0xAA, 0xBB, // row 0
		0x01, 0x02, 0x03, 0x04, // row 1
	}
	got := packBitsEncodeTile(packed, rowBytes, rows)
	want := append(
		append([]byte{}, packBitsEncodeRow(packed[:4])...),
		packBitsEncodeRow(packed[4:])...,
	)
	assert.Equal(t, want, got)
}

func TestRunLengthAt(t *testing.T) {
	src := []byte{0x01, 0x01, 0x01, 0x02}
	assert.Equal(t, 3, runLengthAt(src, 0))
	assert.Equal(t, 1, runLengthAt(src, 3))
	assert.Equal(t, 0, runLengthAt(src, 4))
}

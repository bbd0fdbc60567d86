package tiff

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingJPEGEncoder captures the Bounds() and first sample of every
// raster it is handed, so a test can assert the page writer feeds it one
// tile at a time, translated to origin (0,0), rather than the whole image.
type recordingJPEGEncoder struct {
	bounds      []Rectangle
	firstSample []int64
}

func (r *recordingJPEGEncoder) EncodeTile(sink io.Writer, raster RasterSource, params JPEGParams) (int, error) {
	b := raster.Bounds()
	r.bounds = append(r.bounds, b)
	view, err := raster.GetTile(b.MinX, b.MinY, 1, 1)
	if err != nil {
		return 0, err
	}
	r.firstSample = append(r.firstSample, view.Pixels(0)[0])
	return sink.Write([]byte{0xFF, 0xD8, 0xFF, 0xD9})
}

func (r *recordingJPEGEncoder) EncodeTables(sink io.Writer, params JPEGParams) (int, error) {
	return 0, nil
}

func grayRows(w, h int) [][]int64 {
	rows := make([][]int64, h)
	for y := 0; y < h; y++ {
		row := make([]int64, w)
		for x := range row {
			row[x] = int64(y)
		}
		rows[y] = row
	}
	return rows
}

func TestWritePayloadJPEGFeedsOneTileTranslatedToOrigin(t *testing.T) {
	r := &testRaster{
		w: 4, h: 16, bands: 1, depth: 8, dataType: DTByte,
		rows:  grayRows(4, 16),
		hasCM: true,
		cm:    ColorModel{Space: ColorSpaceGray},
	}
	enc := &recordingJPEGEncoder{}

	var buf bytes.Buffer
	err := Encode(&buf, r, Options{
		Compression: CompressionJPEG,
		JPEGEncoder: enc,
	})
	require.NoError(t, err)

	require.Len(t, enc.bounds, 2, "a 16-row image at the default rounded 8-row strip height is two strips")
	for _, b := range enc.bounds {
		assert.Equal(t, Rectangle{Width: 4, Height: 8}, b, "every JPEG tile raster must be translated to origin (0,0)")
	}
	assert.Equal(t, []int64{0, 8}, enc.firstSample, "each tile must see its own rows, not the whole image")
}

func TestBuildFieldTableEmitsT6Options(t *testing.T) {
	r := &testRaster{
		w: 8, h: 8, bands: 1, depth: 1, dataType: DTByte,
		rows: [][]int64{{0, 1, 0, 1, 0, 1, 0, 1}, {0, 0, 0, 0, 0, 0, 0, 0}, {1, 1, 1, 1, 1, 1, 1, 1}, {0, 1, 0, 1, 0, 1, 0, 1}, {0, 0, 0, 0, 0, 0, 0, 0}, {1, 1, 1, 1, 1, 1, 1, 1}, {0, 1, 0, 1, 0, 1, 0, 1}, {0, 0, 0, 0, 0, 0, 0, 0}},
	}
	geom := planGeometry(8, 8, 1, 1, false, 0, 0, 8, 1)
	table, err := buildFieldTable(context.Background(), r, Options{Compression: CompressionT6}, KindBilevelBlackZero, 1, 1, &geom)
	require.NoError(t, err)

	f, ok := table.Get(tT6Options)
	require.True(t, ok, "T6Options must be present for CompressionT6")
	assert.Equal(t, []uint32{0}, f.Long)
}

func TestWriteIFDPadsOddLengthOverflowToEvenOffset(t *testing.T) {
	table := NewFieldTable()
	// "abcd" encodes to 5 bytes (4 chars + NUL): an odd, overflowing length.
	table.Set(AsciiField(tImageDescription, "abcd"))
	table.Set(LongField(tStripOffsets, 10, 20, 30))

	require.EqualValues(t, table.SizeOnDisk(), sizeOfWrittenIFD(t, table))

	var buf bytes.Buffer
	sink := NewWriterSink(&buf, binary.LittleEndian)
	require.NoError(t, writeIFD(sink, binary.LittleEndian, table, 0))

	out := buf.Bytes()
	entries := table.Entries()
	for i, f := range entries {
		if f.inline() {
			continue
		}
		entryOff := 2 + i*ifdEntryLen
		valueOffset := binary.LittleEndian.Uint32(out[entryOff+8:])
		assert.Zero(t, valueOffset%2, "overflow value offset for tag %d must be word-aligned", f.Tag)
	}
}

// sizeOfWrittenIFD writes table to a throwaway buffer and returns the actual
// byte count, so a test can confirm it matches FieldTable.SizeOnDisk's
// prediction exactly -- the invariant patchOffsets/layout planning depends on.
func sizeOfWrittenIFD(t *testing.T, table *FieldTable) uint32 {
	t.Helper()
	var buf bytes.Buffer
	sink := NewWriterSink(&buf, binary.LittleEndian)
	require.NoError(t, writeIFD(sink, binary.LittleEndian, table, 0))
	return uint32(buf.Len())
}

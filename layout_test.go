package tiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanGeometryStripedShortLastStrip(t *testing.T) {
	g := planGeometry(10, 10, 8, 1, false, 0, 0, 4, 1)
	require.Len(t, g.TileByteCounts, 3) // rows 4,4,2
	assert.EqualValues(t, 40, g.TileByteCounts[0])
	assert.EqualValues(t, 40, g.TileByteCounts[1])
	assert.EqualValues(t, 20, g.TileByteCounts[2], "last strip is shorter")
}

func TestPlanGeometryStripedSingleRow(t *testing.T) {
	g := planGeometry(5, 1, 8, 1, false, 0, 0, 8, 1)
	require.Len(t, g.TileByteCounts, 1)
	assert.EqualValues(t, 5, g.TileByteCounts[0])
}

func TestPlanGeometryTiledUniformAcrossEdges(t *testing.T) {
	g := planGeometry(300, 300, 8, 1, true, 256, 256, 0, 1)
	require.Equal(t, 2, g.NumTilesX)
	require.Equal(t, 2, g.NumTilesY)
	for _, c := range g.TileByteCounts {
		assert.EqualValues(t, 256*256, c, "every tile, including edge tiles, reports the full tile size")
	}
}

func TestPlanGeometryTiledJPEGSubsampleRounding(t *testing.T) {
	g := planGeometry(100, 100, 8, 3, true, 100, 100, 0, 2)
	// factor = 8*2 = 16; 100 rounds up to 112.
	assert.Equal(t, 112, g.TileW)
	assert.Equal(t, 112, g.TileH)
}

func TestPropagateOffsetsUncompressed(t *testing.T) {
	g := planGeometry(4, 4, 8, 1, false, 0, 0, 2, 1)
	g.propagateOffsetsUncompressed(100)
	require.Len(t, g.TileOffsets, 2)
	assert.EqualValues(t, 100, g.TileOffsets[0])
	assert.EqualValues(t, 100+g.TileByteCounts[0], g.TileOffsets[1])
}

func TestAlignmentPaddingForDepth(t *testing.T) {
	assert.EqualValues(t, 0, alignmentPaddingForDepth(10, 8))
	assert.EqualValues(t, 0, alignmentPaddingForDepth(10, 16))
	assert.EqualValues(t, 1, alignmentPaddingForDepth(11, 16))
	assert.EqualValues(t, 0, alignmentPaddingForDepth(12, 32))
	assert.EqualValues(t, 2, alignmentPaddingForDepth(10, 32))
}

func TestRoundUp(t *testing.T) {
	assert.Equal(t, 16, roundUp(10, 16))
	assert.Equal(t, 16, roundUp(16, 16))
	assert.Equal(t, 5, roundUp(5, 0), "multiple <= 0 is a no-op")
}

func TestTotalPayload(t *testing.T) {
	g := TileGeometry{TileByteCounts: []uint32{10, 20, 5}}
	assert.EqualValues(t, 35, g.totalPayload())
}

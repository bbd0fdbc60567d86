package tiff

// TileGeometry describes the strip/tile grid for one page.
type TileGeometry struct {
	TileW, TileH       int
	NumTilesX, NumTilesY int
	BytesPerRow        int
	BytesPerTile       int
	TileByteCounts     []uint32
	TileOffsets        []uint32
	Tiled              bool
}

// planGeometry implements the following: decide strip/tile dimensions and
// compute the initial (pre-compression) byte counts. For an untiled layout,
// tileW == imageWidth and the final strip may be shorter.
func planGeometry(width, height, depth, bands int, writeTiled bool, tileW, tileH, rowsPerStrip int, jpegSubsampleMax int) TileGeometry {
	g := TileGeometry{Tiled: writeTiled}

	if writeTiled {
		if tileW <= 0 {
			tileW = 256
		}
		if tileH <= 0 {
			tileH = 256
		}
		if jpegSubsampleMax > 1 {
			factor := 8 * jpegSubsampleMax
			tileW = roundUp(tileW, factor)
			tileH = roundUp(tileH, factor)
			if tileW < factor {
				tileW = factor
			}
			if tileH < factor {
				tileH = factor
			}
		}
		g.TileW, g.TileH = tileW, tileH
		g.NumTilesX = (width + tileW - 1) / tileW
		g.NumTilesY = (height + tileH - 1) / tileH
		g.BytesPerRow = bytesPerPackedRow(tileW, bands, depth)
		g.BytesPerTile = g.BytesPerRow * tileH

		n := g.NumTilesX * g.NumTilesY
		g.TileByteCounts = make([]uint32, n)
		g.TileOffsets = make([]uint32, n)
		for i := range g.TileByteCounts {
			g.TileByteCounts[i] = uint32(g.BytesPerTile)
		}
		return g
	}

	if rowsPerStrip <= 0 {
		rowsPerStrip = 8
	}
	if jpegSubsampleMax > 1 {
		factor := 8 * jpegSubsampleMax
		rowsPerStrip = roundUp(rowsPerStrip, factor)
		if rowsPerStrip < factor {
			rowsPerStrip = factor
		}
	}
	g.TileW = width
	g.TileH = rowsPerStrip
	g.NumTilesX = 1
	g.NumTilesY = (height + rowsPerStrip - 1) / rowsPerStrip
	g.BytesPerRow = bytesPerPackedRow(width, bands, depth)
	g.BytesPerTile = g.BytesPerRow * rowsPerStrip

	g.TileByteCounts = make([]uint32, g.NumTilesY)
	g.TileOffsets = make([]uint32, g.NumTilesY)
	remaining := height
	for i := range g.TileByteCounts {
		rows := rowsPerStrip
		if remaining < rows {
			rows = remaining
		}
		g.TileByteCounts[i] = uint32(g.BytesPerRow * rows)
		remaining -= rows
	}
	return g
}

func roundUp(v, multiple int) int {
	if multiple <= 0 {
		return v
	}
	return ((v + multiple - 1) / multiple) * multiple
}

// totalPayload sums the tile byte counts.
func (g TileGeometry) totalPayload() uint32 {
	var total uint32
	for _, c := range g.TileByteCounts {
		total += c
	}
	return total
}

// rowsInTile returns the number of rows the tile/strip at index i actually
// holds.
func (g TileGeometry) rowsInTile(i int) int {
	if g.Tiled {
		return g.TileH
	}
	if g.BytesPerRow == 0 {
		return 0
	}
	return int(g.TileByteCounts[i]) / g.BytesPerRow
}

// propagateOffsetsUncompressed fills TileOffsets sequentially from a known
// first offset (only valid when byte counts are already final, i.e.
// compression == None).
func (g *TileGeometry) propagateOffsetsUncompressed(first uint32) {
	offset := first
	for i := range g.TileOffsets {
		g.TileOffsets[i] = offset
		offset += g.TileByteCounts[i]
	}
}

// alignmentPaddingForDepth returns the number of pad bytes needed so that
// offset becomes a multiple of the sample size, for uncompressed 16/32-bit
// data.
func alignmentPaddingForDepth(offset uint32, depth int) uint32 {
	var align uint32
	switch depth {
	case 16:
		align = 2
	case 32:
		align = 4
	default:
		return 0
	}
	if offset%align == 0 {
		return 0
	}
	return align - offset%align
}

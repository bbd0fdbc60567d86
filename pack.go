package tiff

// packTile dispatches to the depth-specific packer, converting a
// rows×tileWidth×bands region read from src into a contiguous byte buffer
// in TIFF row-major order. The packer is pure: it never touches a ByteSink.
// Each depth class gets its own file, the same way decode-side photometric
// modes are typically split one-file-per-mode.
func packTile(view RasterView, rows, tileWidth, bands, depth int, dataType DataType) []byte {
	switch depth {
	case 1:
		return pack1Bit(view, rows, tileWidth)
	case 4:
		return pack4Bit(view, rows, tileWidth)
	case 8:
		return pack8Bit(view, rows, tileWidth, bands)
	case 16:
		return pack16Bit(view, rows, tileWidth, bands)
	case 32:
		return pack32Bit(view, rows, tileWidth, bands, dataType == DTFloat)
	}
	return nil
}

// bytesPerPackedRow returns the number of bytes one packed row occupies for
// the given depth/band/width combination.
func bytesPerPackedRow(tileWidth, bands, depth int) int {
	switch depth {
	case 1:
		return (tileWidth + 7) / 8
	case 4:
		return (tileWidth + 1) / 2
	case 8:
		return tileWidth * bands
	case 16:
		return tileWidth * bands * 2
	case 32:
		return tileWidth * bands * 4
	}
	return 0
}

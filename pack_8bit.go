package tiff

// pack8Bit packs an 8-bit-per-sample, multi-band region in
// band-interleaved-by-pixel order: P0B0 P0B1 ... P0B{k-1} P1B0 ....
// When the source already exposes a contiguous, band-interleaved byte
// buffer of the right size via RasterView.Bytes (the common case for a Go
// image.RGBA/NRGBA/Gray/CMYK/Paletted source), rows are copied verbatim.
func pack8Bit(view RasterView, rows, tileWidth, bands int) []byte {
	rowBytes := tileWidth * bands
	out := make([]byte, rowBytes*rows)

	if raw, ok := view.Bytes(); ok && len(raw) == rowBytes*rows {
		copy(out, raw)
		return out
	}

	for r := 0; r < rows; r++ {
		px := view.Pixels(r)
		dst := out[r*rowBytes : (r+1)*rowBytes]
		for i := 0; i < rowBytes && i < len(px); i++ {
			dst[i] = byte(px[i])
		}
	}
	return out
}

package tiff

import (
	"bytes"
	"io"
)

// Deflater is the external Deflate/zlib collaborator. Deflate finishes
// and resets its internal state on every call, matching the "Finish" +
// "reset" semantics required per tile.
type Deflater interface {
	Deflate(dst io.Writer, src []byte, level int) (int, error)
}

// FaxEncoder is the external CCITT T.4/T.6 collaborator. No bundled
// implementation ships with this package — these encoders are genuinely
// external, the way CCITT and LZW codecs commonly live in their own
// packages (golang.org/x/image/tiff/lzw) rather than the core format package.
type FaxEncoder interface {
	EncodeRLE(row []byte, rowOffset, bitOffset, width int, out []byte) (int, error)
	EncodeT4(is1D, padEOLs bool, tile []byte, rowBytes, bitOffset, width, height int, out []byte) (int, error)
	EncodeT6(tile []byte, rowBytes, bitOffset, width, height int, out []byte) (int, error)
}

// compressParams bundles the per-page knobs the compression dispatcher
// needs beyond the packed byte buffer itself.
type compressParams struct {
	compression Compression
	deflater    Deflater
	deflateLvl  int
	fax         FaxEncoder
	t4PadEOLs   bool
	reverseFill bool
}

// compressTile dispatches packed to the configured compression scheme,
// returning the bytes to write for this tile/strip. JPEG is handled
// separately by the page writer because it writes straight to the sink
// rather than returning a buffer.
func compressTile(packed []byte, rowBytes, rows int, p compressParams) ([]byte, error) {
	switch p.compression {
	case CompressionNone:
		return packed, nil

	case CompressionPackBits:
		return packBitsEncodeTile(packed, rowBytes, rows), nil

	case CompressionDeflate:
		if p.deflater == nil {
			return nil, wrap(ErrIncompatibleCompression, "no Deflater configured")
		}
		var buf bytes.Buffer
		if _, err := p.deflater.Deflate(&buf, packed, p.deflateLvl); err != nil {
			return nil, ioError("deflate", err)
		}
		return buf.Bytes(), nil

	case CompressionT4_1D:
		if p.fax == nil {
			return nil, wrap(ErrIncompatibleCompression, "no FaxEncoder configured")
		}
		out := make([]byte, 0, packBitsWorstCaseRowLen(rowBytes)*rows)
		scratch := make([]byte, rowBytes*2+16)
		for r := 0; r < rows; r++ {
			row := packed[r*rowBytes : (r+1)*rowBytes]
			n, err := p.fax.EncodeRLE(row, 0, 0, rowBytes*8, scratch)
			if err != nil {
				return nil, ioError("fax encode RLE", err)
			}
			out = append(out, scratch[:n]...)
		}
		return out, nil

	case CompressionT4_2D:
		if p.fax == nil {
			return nil, wrap(ErrIncompatibleCompression, "no FaxEncoder configured")
		}
		scratch := make([]byte, rowBytes*rows*2+64)
		n, err := p.fax.EncodeT4(false, p.t4PadEOLs, packed, rowBytes, 0, rowBytes*8, rows, scratch)
		if err != nil {
			return nil, ioError("fax encode T4", err)
		}
		return scratch[:n], nil

	case CompressionT6:
		if p.fax == nil {
			return nil, wrap(ErrIncompatibleCompression, "no FaxEncoder configured")
		}
		scratch := make([]byte, rowBytes*rows*2+64)
		n, err := p.fax.EncodeT6(packed, rowBytes, 0, rowBytes*8, rows, scratch)
		if err != nil {
			return nil, ioError("fax encode T6", err)
		}
		return scratch[:n], nil
	}

	return nil, wrap(ErrIncompatibleCompression, "unknown compression")
}

// validateCompressionForKind enforces the compatibility rules between a
// compression scheme and the classified ImageKind/sample depth.
func validateCompressionForKind(c Compression, k ImageKind, depth int) error {
	switch c {
	case CompressionT4_1D, CompressionT4_2D, CompressionT6:
		if k != KindBilevelWhiteZero && k != KindBilevelBlackZero {
			return ErrIncompatibleCompression
		}
	case CompressionJPEG:
		if k == KindPalette {
			return ErrJpegPalette
		}
		if (k != KindGray && k != KindRGB && k != KindYCbCr) || depth != 8 {
			return ErrJpegUnsupportedKind
		}
	}
	return nil
}

// t4OptionsValue computes the T4Options tag value from the dispatcher
// configuration.
func t4OptionsValue(compression Compression, padEOLs bool) uint32 {
	var v uint32
	if compression == CompressionT4_2D {
		v |= t4Options2DEncoding
	}
	if padEOLs {
		v |= t4OptionsFillBits
	}
	return v
}

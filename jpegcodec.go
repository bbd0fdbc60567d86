package tiff

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"

	"golang.org/x/sync/semaphore"
)

// JPEGParams configures the JPEG-TTN2 compression dispatch.
type JPEGParams struct {
	Quality        int // 1..100, passed to the JPEG encoder.
	WriteImageOnly bool // abbreviated stream: tables written once, not per tile.
	Subsampling    [2]int // horizontal/vertical subsampling factor, one pair for the whole image.
}

// JpegEncoder is the external JPEG baseline collaborator. It must write
// directly to sink and report the number of bytes written. Implementations
// are not assumed to be re-entrant; the package serializes every call
// through jpegSemaphore.
type JpegEncoder interface {
	// EncodeTile encodes one strip/tile's worth of raster, already
	// translated so raster.Bounds() starts at (0,0) -- the page writer
	// never hands EncodeTile the whole page's raster.
	EncodeTile(sink io.Writer, raster RasterSource, params JPEGParams) (int, error)

	// EncodeTables writes a tables-only (abbreviated) JPEG stream -- SOI,
	// the quantization/Huffman table segments, EOI -- for the JPEGTables
	// field. It is only called when JPEGParams.WriteImageOnly is set, and
	// every EncodeTile call for the same page is then expected to omit its
	// own copies of those segments.
	EncodeTables(sink io.Writer, params JPEGParams) (int, error)
}

// jpegSemaphore is the process-wide critical section guarding JPEG encoder
// invocations: a weighted semaphore of capacity 1, behaving like a mutex
// while documenting the contract as "at most one caller" rather than
// "exclusive lock holder".
var jpegSemaphore = semaphore.NewWeighted(1)

// withJPEGLock serializes fn against every other JPEG encode call in this
// process, released even if fn panics or errors.
func withJPEGLock(ctx context.Context, fn func() (int, error)) (int, error) {
	if err := jpegSemaphore.Acquire(ctx, 1); err != nil {
		return 0, ioError("acquire jpeg lock", err)
	}
	defer jpegSemaphore.Release(1)
	return fn()
}

// countingWriter tracks bytes written so the page writer can compute a
// JPEG-TTN2 tile's byte count as position_after - position_before.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// StdlibJPEGEncoder is the package-provided default JpegEncoder, wrapping
// the standard library's image/jpeg. It encodes one whole raster per tile
// call and, when asked for an abbreviated stream, derives JPEGTables and the
// per-tile image-only streams from the same encoder output; callers needing
// real TTN2 multi-tile JPEG semantics (independent per-tile entropy coding)
// supply their own JpegEncoder.
type StdlibJPEGEncoder struct{}

func (StdlibJPEGEncoder) EncodeTile(sink io.Writer, raster RasterSource, params JPEGParams) (int, error) {
	img, err := rasterToGoImage(raster)
	if err != nil {
		return 0, err
	}
	q := params.Quality
	if q <= 0 {
		q = 75
	}

	if !params.WriteImageOnly {
		cw := &countingWriter{w: sink}
		if err := jpeg.Encode(cw, img, &jpeg.Options{Quality: q}); err != nil {
			return cw.n, ioError("jpeg encode", err)
		}
		return cw.n, nil
	}

	var buf ioBuffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return 0, ioError("jpeg encode", err)
	}
	_, rest, err := splitJPEGStream(buf.b)
	if err != nil {
		return 0, wrap(err, "split jpeg tile from tables")
	}
	cw := &countingWriter{w: sink}
	for _, seg := range rest {
		if _, err := cw.Write(seg); err != nil {
			return cw.n, ioError("write jpeg tile", err)
		}
	}
	return cw.n, nil
}

// EncodeTables produces the abbreviated table-specification stream written
// once into JPEGTables: a throwaway image is encoded at the same quality to
// obtain a full set of quantization/Huffman segments, which are then lifted
// out and wrapped in their own SOI/EOI.
func (StdlibJPEGEncoder) EncodeTables(sink io.Writer, params JPEGParams) (int, error) {
	q := params.Quality
	if q <= 0 {
		q = 75
	}
	stub := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf ioBuffer
	if err := jpeg.Encode(&buf, stub, &jpeg.Options{Quality: q}); err != nil {
		return 0, ioError("jpeg encode tables", err)
	}
	tables, _, err := splitJPEGStream(buf.b)
	if err != nil {
		return 0, wrap(err, "split jpeg tables")
	}

	cw := &countingWriter{w: sink}
	if _, err := cw.Write([]byte{0xFF, 0xD8}); err != nil {
		return cw.n, ioError("write jpeg tables", err)
	}
	for _, seg := range tables {
		if _, err := cw.Write(seg); err != nil {
			return cw.n, ioError("write jpeg tables", err)
		}
	}
	if _, err := cw.Write([]byte{0xFF, 0xD9}); err != nil {
		return cw.n, ioError("write jpeg tables", err)
	}
	return cw.n, nil
}

// splitJPEGStream walks a complete JPEG stream (SOI..EOI) produced by
// image/jpeg and separates its DQT/DHT table segments from every other
// marker segment. image/jpeg always emits a single scan with no restart
// markers, so everything from SOS up to (but not including) the trailing
// EOI can be treated as one opaque entropy-coded blob.
func splitJPEGStream(data []byte) (tables [][]byte, rest [][]byte, err error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, nil, ErrMalformedJPEG
	}
	rest = append(rest, data[0:2]) // SOI

	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return nil, nil, ErrMalformedJPEG
		}
		marker := data[i+1]
		if marker == 0xDA { // SOS: header, entropy data, then EOI
			rest = append(rest, data[i:len(data)-2])
			rest = append(rest, data[len(data)-2:]) // EOI
			return tables, rest, nil
		}
		length := int(data[i+2])<<8 | int(data[i+3])
		seg := data[i : i+2+length]
		if marker == 0xDB || marker == 0xC4 { // DQT, DHT
			tables = append(tables, seg)
		} else {
			rest = append(rest, seg)
		}
		i += 2 + length
	}
	return nil, nil, ErrMalformedJPEG
}

// rasterToGoImage materializes a RasterSource's current bounds into a Go
// image.Image the stdlib JPEG encoder can consume.
func rasterToGoImage(raster RasterSource) (image.Image, error) {
	if src, ok := raster.(GoImageSource); ok {
		return src.Img, nil
	}
	b := raster.Bounds()
	sm := raster.SampleModel()
	rect := image.Rect(b.MinX, b.MinY, b.MinX+b.Width, b.MinY+b.Height)
	view, err := raster.GetTile(b.MinX, b.MinY, b.Width, b.Height)
	if err != nil {
		return nil, err
	}

	if sm.Bands == 1 {
		img := image.NewGray(rect)
		for r := 0; r < b.Height; r++ {
			px := view.Pixels(r)
			for x := 0; x < b.Width && x < len(px); x++ {
				img.SetGray(b.MinX+x, b.MinY+r, grayFromSample(px[x]))
			}
		}
		return img, nil
	}

	img := image.NewRGBA(rect)
	for r := 0; r < b.Height; r++ {
		px := view.Pixels(r)
		for x := 0; x < b.Width; x++ {
			i := x * sm.Bands
			if i+2 >= len(px) {
				break
			}
			img.SetRGBA(b.MinX+x, b.MinY+r, rgbaFromSamples(px[i], px[i+1], px[i+2], 255))
		}
	}
	return img, nil
}

func grayFromSample(v int64) color.Gray {
	return color.Gray{Y: uint8(v)}
}

func rgbaFromSamples(r, g, b, a int64) color.RGBA {
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}
}

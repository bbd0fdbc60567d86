package tiff

import (
	"context"
	"encoding/binary"
	"io"
)

// Endianness selects the byte order of the file header and every multi-byte
// IFD value. It does not affect 16/32-bit sample packing, which is
// always written most-significant-byte-first regardless.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

func byteOrderOf(e Endianness) binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Page pairs an additional raster with the Options that should govern it, for
// multi-page files. The Endianness and Context fields of a Page's
// Options are ignored -- every page in one file shares the first page's
// byte order and cancellation context.
type Page struct {
	Image   RasterSource
	Options Options
}

// Options configures one call to Encode. The zero value is a valid,
// minimal configuration: little-endian, uncompressed, striped, 72 dpi,
// silent.
type Options struct {
	Endianness Endianness
	Compression Compression

	WriteTiled   bool
	TileWidth    int
	TileHeight   int
	RowsPerStrip int

	ReverseFillOrder bool

	DeflateLevel int
	Deflater     Deflater

	FaxEncoder FaxEncoder
	T4PadEOLs  bool

	JPEGParams             JPEGParams
	JPEGEncoder            JpegEncoder
	JPEGCompressRGBToYCbCr bool

	// AssociatedAlpha selects the ExtraSamples code for a single alpha
	// band: true for associated/premultiplied alpha (image.RGBA), false
	// for unassociated/straight alpha (image.NRGBA). GoImageSource reports
	// HasAlpha for both but cannot itself tell the encoder which of the two
	// the caller's image uses, so this is the caller's responsibility.
	AssociatedAlpha bool

	ExtraFields []Field
	ExtraImages []Page

	XResolution, YResolution uint32
	ResolutionUnit           int
	Software                 string
	ImageDescription         string
	DateTime                 string

	// SpillDir overrides the directory used for the file-cache deferred-offset
	// strategy; empty uses os.TempDir().
	SpillDir string

	Logger  Logger
	Context context.Context
}

// Encode writes img, and any Options.ExtraImages, to w as a single
// multi-page TIFF 6.0 file. w may optionally implement io.WriteSeeker; if it
// does, a compressed page is written with the seek-and-patch strategy,
// otherwise it spills to a temp file or memory.
func Encode(w io.Writer, img RasterSource, opts Options) error {
	logger := loggerOrNoop(opts.Logger)
	bo := byteOrderOf(opts.Endianness)

	var sink ByteSink
	if ws, ok := w.(io.WriteSeeker); ok {
		sink = NewSeekableSink(ws, bo)
	} else {
		sink = NewWriterSink(w, bo)
	}

	header := leHeader
	if opts.Endianness == BigEndian {
		header = beHeader
	}
	if err := sink.WriteBytes([]byte(header)); err != nil {
		return wrap(err, "write header")
	}
	if err := sink.WriteU32(8); err != nil {
		return wrap(err, "write first ifd offset")
	}

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pages := make([]Page, 0, 1+len(opts.ExtraImages))
	pages = append(pages, Page{Image: img, Options: opts})
	pages = append(pages, opts.ExtraImages...)

	ifdOffset := uint32(8)
	for i, pg := range pages {
		isLast := i == len(pages)-1
		pageOpts := pg.Options
		pageOpts.Endianness = opts.Endianness
		pageOpts.Context = ctx
		pageOpts = withDefaults(pageOpts)

		logger.Debugf("encode: page %d/%d", i+1, len(pages))
		next, err := writePage(ctx, sink, pg.Image, pageOpts, ifdOffset, isLast, logger)
		if err != nil {
			logger.Errorf("encode: page %d failed: %v", i+1, err)
			return wrapf(err, "encode page %d", i)
		}
		ifdOffset = next
	}
	return nil
}

// withDefaults fills in the package-provided collaborators a page needs when
// the caller configured a compression scheme but supplied no corresponding
// codec.
func withDefaults(o Options) Options {
	if o.Compression == CompressionDeflate && o.Deflater == nil {
		o.Deflater = DefaultDeflater{}
	}
	if o.Compression == CompressionJPEG && o.JPEGEncoder == nil {
		o.JPEGEncoder = StdlibJPEGEncoder{}
	}
	return o
}

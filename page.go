package tiff

import (
	"context"
	"encoding/binary"
	"io"
)

// pageState names the states of the per-page write state machine:
// Planning derives the classification, field table and geometry; WritingIFD
// and WritingPayload emit bytes; PatchingOffsets only runs for the two
// strategies that cannot know payload sizes in advance; Done/Failed are
// terminal.
type pageState int

const (
	statePlanning pageState = iota
	stateWritingIFD
	stateWritingPayload
	statePatchingOffsets
	stateDone
	stateFailed
)

func (s pageState) String() string {
	switch s {
	case statePlanning:
		return "Planning"
	case stateWritingIFD:
		return "WritingIFD"
	case stateWritingPayload:
		return "WritingPayload"
	case statePatchingOffsets:
		return "PatchingOffsets"
	case stateDone:
		return "Done"
	default:
		return "Failed"
	}
}

// pagePlan is everything the Planning state derives before any byte of this
// page is written: the classified kind, the strip/tile geometry and the
// field table.
type pagePlan struct {
	kind  ImageKind
	depth int
	bands int
	sm    SampleModel

	geometry TileGeometry
	table    *FieldTable
	bo       binary.ByteOrder

	ifdOffset    uint32
	payloadStart uint32
	alignPad     uint32
}

// planPage implements the following: classify, validate the compression
// choice against the classification, plan the strip/tile grid and assemble
// the field table with placeholder offset/count arrays sized correctly (so
// FieldTable.SizeOnDisk is already final even though the values aren't).
func planPage(ctx context.Context, raster RasterSource, opts Options, ifdOffset uint32) (*pagePlan, error) {
	sm := raster.SampleModel()
	cm, hasCM := raster.ColorModel()
	kind, depth, err := classify(sm, cm, hasCM, opts.JPEGCompressRGBToYCbCr)
	if err != nil {
		return nil, wrap(err, "classify image")
	}
	if err := validateCompressionForKind(opts.Compression, kind, depth); err != nil {
		return nil, wrap(err, "validate compression for image kind")
	}

	b := raster.Bounds()
	jpegMaxSub := 1
	if opts.Compression == CompressionJPEG {
		jpegMaxSub = maxInt(opts.JPEGParams.Subsampling[0], opts.JPEGParams.Subsampling[1])
		if jpegMaxSub < 1 {
			jpegMaxSub = 1
		}
	}
	tileW, tileH, rowsPerStrip := opts.TileWidth, opts.TileHeight, opts.RowsPerStrip
	if opts.Compression == CompressionJPEG && jpegMaxSub == 1 {
		// planGeometry only rounds for factors above 1; without subsampling
		// the 8-pixel JPEG block size still applies.
		tileW, tileH, rowsPerStrip = roundUp(tileW, 8), roundUp(tileH, 8), roundUp(rowsPerStrip, 8)
	}
	geom := planGeometry(b.Width, b.Height, depth, sm.Bands, opts.WriteTiled, tileW, tileH, rowsPerStrip, jpegMaxSub)

	table, err := buildFieldTable(ctx, raster, opts, kind, depth, sm.Bands, &geom)
	if err != nil {
		return nil, wrap(err, "build field table")
	}
	bo := byteOrderOf(opts.Endianness)

	dirSize := table.SizeOnDisk()
	payloadStart := ifdOffset + dirSize
	var alignPad uint32
	if opts.Compression == CompressionNone {
		alignPad = alignmentPaddingForDepth(payloadStart, depth)
		payloadStart += alignPad
	}

	return &pagePlan{
		kind: kind, depth: depth, bands: sm.Bands, sm: sm,
		geometry: geom, table: table, bo: bo,
		ifdOffset: ifdOffset, payloadStart: payloadStart, alignPad: alignPad,
	}, nil
}

// buildFieldTable derives every standard tag this page needs from the
// classification, the reverse of a decoder that consumes tags to derive a
// mode. Strip/TileOffsets and ByteCounts are written with placeholder values
// of the right length; patchOffsets replaces them once real values are
// known.
func buildFieldTable(ctx context.Context, raster RasterSource, opts Options, kind ImageKind, depth, bands int, geom *TileGeometry) (*FieldTable, error) {
	t := NewFieldTable()
	b := raster.Bounds()
	sm := raster.SampleModel()

	t.Set(LongField(tImageWidth, uint32(b.Width)))
	t.Set(LongField(tImageLength, uint32(b.Height)))

	bps := make([]uint16, bands)
	for i := range bps {
		bps[i] = uint16(depth)
	}
	t.Set(ShortField(tBitsPerSample, bps...))

	t.Set(ShortField(tCompression, uint16(opts.Compression.tag())))
	t.Set(ShortField(tPhotometricInterpretation, uint16(kind.photometric())))

	sf := make([]uint16, bands)
	for i := range sf {
		sf[i] = uint16(sm.DataType.sampleFormat())
	}
	t.Set(ShortField(tSampleFormat, sf...))

	if opts.ReverseFillOrder {
		t.Set(ShortField(tFillOrder, fillOrderLSB2MSB))
	}

	t.Set(ShortField(tSamplesPerPixel, uint16(bands)))

	if extra := bands - componentsOf(kind); extra > 0 {
		cm, _ := raster.ColorModel()
		codes := make([]uint16, extra)
		if extra == 1 && cm.HasAlpha {
			codes[0] = uint16(extraSamplesCode(opts.AssociatedAlpha))
		} else {
			for i := range codes {
				codes[i] = esUnspecified
			}
		}
		t.Set(ShortField(tExtraSamples, codes...))
	}

	if opts.Compression == CompressionJPEG && opts.JPEGParams.WriteImageOnly {
		enc := opts.JPEGEncoder
		if enc == nil {
			enc = StdlibJPEGEncoder{}
		}
		var tables ioBuffer
		if _, err := withJPEGLock(ctx, func() (int, error) {
			return enc.EncodeTables(&tables, opts.JPEGParams)
		}); err != nil {
			return nil, wrap(err, "encode jpeg tables")
		}
		t.Set(UndefinedField(tJPEGTables, tables.b))
	}

	if kind == KindPalette {
		if cm, ok := raster.ColorModel(); ok {
			n := len(cm.Palette)
			cmap := make([]uint16, 3*n)
			for i, c := range cm.Palette {
				cmap[i] = uint16(c[0]) * 257
				cmap[n+i] = uint16(c[1]) * 257
				cmap[2*n+i] = uint16(c[2]) * 257
			}
			t.Set(ShortField(tColorMap, cmap...))
		}
	}

	placeholderCounts := make([]uint32, len(geom.TileByteCounts))
	copy(placeholderCounts, geom.TileByteCounts)
	placeholderOffsets := make([]uint32, len(geom.TileOffsets))

	if geom.Tiled {
		t.Set(LongField(tTileWidth, uint32(geom.TileW)))
		t.Set(LongField(tTileLength, uint32(geom.TileH)))
		t.Set(LongField(tTileOffsets, placeholderOffsets...))
		t.Set(LongField(tTileByteCounts, placeholderCounts...))
	} else {
		t.Set(LongField(tRowsPerStrip, uint32(geom.TileH)))
		t.Set(LongField(tStripOffsets, placeholderOffsets...))
		t.Set(LongField(tStripByteCounts, placeholderCounts...))
	}

	t.Set(ShortField(tPlanarConfiguration, 1))

	resUnit := opts.ResolutionUnit
	if resUnit == 0 {
		resUnit = resPerInch
	}
	xres, yres := opts.XResolution, opts.YResolution
	if xres == 0 {
		xres = 72
	}
	if yres == 0 {
		yres = 72
	}
	t.Set(RationalField(tXResolution, xres, 1))
	t.Set(RationalField(tYResolution, yres, 1))
	t.Set(ShortField(tResolutionUnit, uint16(resUnit)))

	if opts.Software != "" {
		t.Set(AsciiField(tSoftware, opts.Software))
	}
	if opts.ImageDescription != "" {
		t.Set(AsciiField(tImageDescription, opts.ImageDescription))
	}
	if opts.DateTime != "" {
		t.Set(AsciiField(tDateTime, opts.DateTime))
	}

	if opts.Compression == CompressionT4_1D || opts.Compression == CompressionT4_2D {
		t.Set(LongField(tT4Options, t4OptionsValue(opts.Compression, opts.T4PadEOLs)))
	}
	if opts.Compression == CompressionT6 {
		t.Set(LongField(tT6Options, 0))
	}

	for _, f := range opts.ExtraFields {
		t.InsertIfAbsent(f)
	}

	return t, nil
}

// patchOffsets copies the plan's now-final geometry byte counts/offsets into
// the field table's Strip/TileOffsets and ByteCounts fields. The slice
// lengths never change, so FieldTable.SizeOnDisk (and therefore every offset
// already computed from it) stays valid.
func (p *pagePlan) patchOffsets() {
	counts := make([]uint32, len(p.geometry.TileByteCounts))
	copy(counts, p.geometry.TileByteCounts)
	offsets := make([]uint32, len(p.geometry.TileOffsets))
	copy(offsets, p.geometry.TileOffsets)

	if p.geometry.Tiled {
		p.table.Set(LongField(tTileOffsets, offsets...))
		p.table.Set(LongField(tTileByteCounts, counts...))
	} else {
		p.table.Set(LongField(tStripOffsets, offsets...))
		p.table.Set(LongField(tStripByteCounts, counts...))
	}
}

// writePayload writes the page body: for each tile/strip, fetch its raster
// view, pack it to bytes, dispatch to the configured compression scheme (or,
// for JPEG, hand a sub-raster for just that tile, translated to origin
// (0,0), to the external JPEG collaborator under the process-wide lock) and
// stream the result to w. Byte counts and offsets are recorded into
// p.geometry as they become known, relative to baseOffset.
func (p *pagePlan) writePayload(ctx context.Context, w io.Writer, raster RasterSource, opts Options, baseOffset uint32) error {
	bounds := raster.Bounds()
	n := len(p.geometry.TileByteCounts)
	cp := compressParams{
		compression: opts.Compression,
		deflater:    opts.Deflater,
		deflateLvl:  opts.DeflateLevel,
		fax:         opts.FaxEncoder,
		t4PadEOLs:   opts.T4PadEOLs,
		reverseFill: opts.ReverseFillOrder,
	}

	var offset uint32
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var tx, ty, tw, th int
		if p.geometry.Tiled {
			col := i % p.geometry.NumTilesX
			row := i / p.geometry.NumTilesX
			tx, ty = col*p.geometry.TileW, row*p.geometry.TileH
			tw, th = p.geometry.TileW, p.geometry.TileH
		} else {
			tx, ty = 0, i*p.geometry.TileH
			tw, th = bounds.Width, p.geometry.rowsInTile(i)
		}

		var written int
		if opts.Compression == CompressionJPEG {
			cw := &countingWriter{w: w}
			enc := opts.JPEGEncoder
			if enc == nil {
				enc = StdlibJPEGEncoder{}
			}
			sub := newSubRasterSource(raster, bounds.MinX+tx, bounds.MinY+ty, tw, th)
			jn, err := withJPEGLock(ctx, func() (int, error) {
				return enc.EncodeTile(cw, sub, opts.JPEGParams)
			})
			if err != nil {
				return wrapf(err, "jpeg encode tile %d", i)
			}
			written = jn
		} else {
			view, err := raster.GetTile(bounds.MinX+tx, bounds.MinY+ty, tw, th)
			if err != nil {
				return wrapf(err, "get tile %d", i)
			}
			packed := packTile(view, th, tw, p.bands, p.depth, p.sm.DataType)
			out, err := compressTile(packed, p.geometry.BytesPerRow, th, cp)
			if err != nil {
				return wrapf(err, "compress tile %d", i)
			}
			if _, err := w.Write(out); err != nil {
				return ioError("write tile payload", err)
			}
			written = len(out)
		}

		p.geometry.TileByteCounts[i] = uint32(written)
		p.geometry.TileOffsets[i] = baseOffset + offset
		offset += uint32(written)
	}
	return nil
}

// computeNextIfdOffset implements the following: zero for the
// last page, otherwise the offset right after the payload, bumped by one and
// flagged for a trailing pad byte if that would be odd (TIFF requires every
// IFD to start at a word boundary).
func computeNextIfdOffset(payloadStart, total uint32, isLast bool) (next uint32, pad bool) {
	if isLast {
		return 0, false
	}
	end := payloadStart + total
	if end%2 != 0 {
		return end + 1, true
	}
	return end, false
}

// writeIFD serializes table's entries in ascending-tag order followed by
// nextIfdOffset and the overflow value blob — the write-direction
// counterpart of parsing this same layout back off disk. Each overflow
// value is padded to an even length so every Value Offset lands on a word
// boundary, matching FieldTable.SizeOnDisk's accounting.
func writeIFD(sink ByteSink, bo binary.ByteOrder, table *FieldTable, nextIfdOffset uint32) error {
	entries := table.Entries()
	if err := sink.WriteU16(uint16(len(entries))); err != nil {
		return err
	}

	overflowOffset := uint32(sink.Position()) + ifdEntryLen*uint32(len(entries)) + 4
	var overflow [][]byte

	for _, f := range entries {
		if err := sink.WriteU16(f.Tag); err != nil {
			return err
		}
		if err := sink.WriteU16(uint16(f.Type)); err != nil {
			return err
		}
		if err := sink.WriteU32(f.count()); err != nil {
			return err
		}
		if f.inline() {
			v := f.inlineValue(bo)
			if err := sink.WriteBytes(v[:4]); err != nil {
				return err
			}
			continue
		}
		if err := sink.WriteU32(overflowOffset); err != nil {
			return err
		}
		buf := make([]byte, f.overflowBytes())
		f.writeValue(buf[:f.encodedBytes()], bo)
		overflow = append(overflow, buf)
		overflowOffset += uint32(len(buf))
	}

	if err := sink.WriteU32(nextIfdOffset); err != nil {
		return err
	}
	for _, buf := range overflow {
		if err := sink.WriteBytes(buf); err != nil {
			return err
		}
	}
	return nil
}

// writePage runs the per-page state machine end to end, picking one of three
// deferred-offset strategies: write-then-stream when compression is off
// (byte counts are fully known up front), seek-and-patch when the sink
// supports it, or spill-then-copy otherwise.
func writePage(ctx context.Context, sink ByteSink, raster RasterSource, opts Options, ifdOffset uint32, isLast bool, logger Logger) (uint32, error) {
	logger.Debugf("page: state=%s ifdOffset=%d", statePlanning, ifdOffset)
	plan, err := planPage(ctx, raster, opts, ifdOffset)
	if err != nil {
		logger.Errorf("page: state=%s err=%v", stateFailed, err)
		return 0, err
	}

	if opts.Compression == CompressionNone {
		return writeUncompressedPage(ctx, sink, raster, opts, plan, isLast, logger)
	}
	if sink.Seekable() {
		return writeCompressedPageSeekable(ctx, sink, raster, opts, plan, isLast, logger)
	}
	return writeCompressedPageSpill(ctx, sink, raster, opts, plan, isLast, logger)
}

// writeUncompressedPage handles Compression == None:
// byte counts are deterministic from geometry alone, so the IFD is correct
// before a single payload byte is written and no seek is ever required --
// this is the only strategy that works against a plain io.Writer with
// compression off.
func writeUncompressedPage(ctx context.Context, sink ByteSink, raster RasterSource, opts Options, plan *pagePlan, isLast bool, logger Logger) (uint32, error) {
	plan.geometry.propagateOffsetsUncompressed(plan.payloadStart)
	plan.patchOffsets()

	total := plan.geometry.totalPayload()
	nextIfd, pad := computeNextIfdOffset(plan.payloadStart, total, isLast)

	logger.Debugf("page: state=%s entries=%d offset=%d", stateWritingIFD, plan.table.Len(), plan.ifdOffset)
	if err := writeIFD(sink, plan.bo, plan.table, nextIfd); err != nil {
		logger.Errorf("page: state=%s err=%v", stateFailed, err)
		return 0, err
	}

	if plan.alignPad > 0 {
		if err := sink.WriteBytes(make([]byte, plan.alignPad)); err != nil {
			return 0, err
		}
	}

	logger.Debugf("page: state=%s bytes=%d offset=%d", stateWritingPayload, total, plan.payloadStart)
	if err := plan.writePayload(ctx, sink, raster, opts, plan.payloadStart); err != nil {
		logger.Errorf("page: state=%s err=%v", stateFailed, err)
		return 0, err
	}

	if pad {
		if err := sink.WriteU8(0); err != nil {
			return 0, err
		}
	}
	logger.Debugf("page: state=%s nextIfdOffset=%d", stateDone, nextIfd)
	return nextIfd, nil
}

// writeCompressedPageSeekable handles a compressed page against a seekable
// sink: the payload is written first (to the offset already reserved for it,
// leaving a hole where the IFD will go), then the sink seeks back and writes
// the now-fully-known IFD, then seeks forward to leave the sink positioned
// for whatever comes next.
func writeCompressedPageSeekable(ctx context.Context, sink ByteSink, raster RasterSource, opts Options, plan *pagePlan, isLast bool, logger Logger) (uint32, error) {
	if err := sink.Seek(int64(plan.payloadStart)); err != nil {
		return 0, err
	}
	logger.Debugf("page: state=%s offset=%d (seekable)", stateWritingPayload, plan.payloadStart)
	if err := plan.writePayload(ctx, sink, raster, opts, plan.payloadStart); err != nil {
		logger.Errorf("page: state=%s err=%v", stateFailed, err)
		return 0, err
	}

	total := plan.geometry.totalPayload()
	nextIfd, pad := computeNextIfdOffset(plan.payloadStart, total, isLast)
	plan.patchOffsets()

	logger.Debugf("page: state=%s offset=%d", statePatchingOffsets, plan.ifdOffset)
	if err := sink.Seek(int64(plan.ifdOffset)); err != nil {
		return 0, err
	}
	if err := writeIFD(sink, plan.bo, plan.table, nextIfd); err != nil {
		logger.Errorf("page: state=%s err=%v", stateFailed, err)
		return 0, err
	}

	if err := sink.Seek(int64(plan.payloadStart + total)); err != nil {
		return 0, err
	}
	if pad {
		if err := sink.WriteU8(0); err != nil {
			return 0, err
		}
	}
	logger.Debugf("page: state=%s nextIfdOffset=%d", stateDone, nextIfd)
	return nextIfd, nil
}

// writeCompressedPageSpill handles a compressed page against a non-seekable
// sink: payload is written to a spill sink first (a temp file, falling back
// to an in-memory buffer if a temp file cannot be created), then the IFD is
// written directly to the real sink, followed by a copy of the spilled
// payload.
func writeCompressedPageSpill(ctx context.Context, sink ByteSink, raster RasterSource, opts Options, plan *pagePlan, isLast bool, logger Logger) (uint32, error) {
	spill, cleanup, err := NewFileSpillSink(opts.SpillDir, plan.bo)
	if err == nil {
		defer cleanup()
		logger.Debugf("page: state=%s (file spill)", stateWritingPayload)
		if perr := plan.writePayload(ctx, spill, raster, opts, plan.payloadStart); perr == nil {
			var buf ioBuffer
			if _, cerr := spill.CopyInto(&buf); cerr != nil {
				logger.Errorf("page: state=%s err=%v", stateFailed, cerr)
				return 0, cerr
			}
			return finishSpillPage(sink, buf.b, plan, isLast, logger)
		} else {
			logger.Errorf("page: file spill payload failed, falling back to memory: %v", perr)
		}
	} else {
		logger.Debugf("page: file spill unavailable (%v), using memory spill", err)
	}

	mem := NewMemorySpillSink(plan.bo)
	logger.Debugf("page: state=%s (memory spill)", stateWritingPayload)
	if err := plan.writePayload(ctx, mem, raster, opts, plan.payloadStart); err != nil {
		logger.Errorf("page: state=%s err=%v", stateFailed, err)
		return 0, err
	}
	return finishSpillPage(sink, mem.Bytes(), plan, isLast, logger)
}

// ioBuffer is a minimal io.Writer sink for draining a spill file, avoiding a
// bytes.Buffer import for one call site.
type ioBuffer struct{ b []byte }

func (b *ioBuffer) Write(p []byte) (int, error) {
	b.b = append(b.b, p...)
	return len(p), nil
}

// finishSpillPage writes the real IFD (now final, since payload is fully
// known) followed by the spilled payload bytes and an optional trailing pad.
func finishSpillPage(sink ByteSink, payload []byte, plan *pagePlan, isLast bool, logger Logger) (uint32, error) {
	total := uint32(len(payload))
	nextIfd, pad := computeNextIfdOffset(plan.payloadStart, total, isLast)
	plan.patchOffsets()

	logger.Debugf("page: state=%s offset=%d", stateWritingIFD, plan.ifdOffset)
	if err := writeIFD(sink, plan.bo, plan.table, nextIfd); err != nil {
		logger.Errorf("page: state=%s err=%v", stateFailed, err)
		return 0, err
	}
	if err := sink.WriteBytes(payload); err != nil {
		return 0, err
	}
	if pad {
		if err := sink.WriteU8(0); err != nil {
			return 0, err
		}
	}
	logger.Debugf("page: state=%s nextIfdOffset=%d", stateDone, nextIfd)
	return nextIfd, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

package tiff

// A TIFF image file contains one or more images. The metadata of each image
// is contained in an Image File Directory (IFD), which holds entries of 12
// bytes each, as described on page 14-16 of the TIFF 6.0 specification. An
// IFD entry consists of
//
//  - a tag, which describes the signification of the entry,
//  - the data type and length of the entry,
//  - the data itself or a pointer to it if it is more than 4 bytes.
//
// The presence of a length means that each IFD is effectively an array.

const (
	leHeader = "II\x2A\x00" // Header for little-endian files.
	beHeader = "MM\x00\x2A" // Header for big-endian files.

	ifdEntryLen = 12 // Length of an IFD entry in bytes, on disk.
)

// Data types (p. 14-16 of the spec).
const (
	dtByte      = 1
	dtASCII     = 2
	dtShort     = 3
	dtLong      = 4
	dtRational  = 5
	dtSByte     = 6
	dtUndefined = 7
	dtSShort    = 8
	dtSLong     = 9
	dtSRational = 10
	dtFloat     = 11
	dtDouble    = 12
)

// typeSizes holds the length, in bytes, of one instance of each data type
// above. Index 0 is unused so the table can be indexed directly by datatype.
var typeSizes = [...]uint32{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// Tags (see p. 28-41 of the spec, plus TTN2 and the Adobe Deflate note).
const (
	tImageWidth                = 256
	tImageLength               = 257
	tBitsPerSample             = 258
	tCompression               = 259
	tPhotometricInterpretation = 262
	tFillOrder                 = 266
	tImageDescription          = 270

	tStripOffsets    = 273
	tSamplesPerPixel = 277
	tRowsPerStrip    = 278
	tStripByteCounts = 279

	tXResolution         = 282
	tYResolution         = 283
	tPlanarConfiguration = 284
	tResolutionUnit      = 296
	tSoftware            = 305
	tDateTime            = 306

	tT4Options = 292
	tT6Options = 293

	tTileWidth      = 322
	tTileLength     = 323
	tTileOffsets    = 324
	tTileByteCounts = 325

	tColorMap     = 320
	tExtraSamples = 338
	tSampleFormat = 339

	tJPEGTables = 347

	tYCbCrSubSampling    = 530
	tYCbCrPositioning    = 531
	tReferenceBlackWhite = 532
)

// Compression types (defined in various places in the spec and supplements).
const (
	cNone     = 1
	cG3       = 3 // Group 3 Fax (T.4, 1-D or 2-D per T4Options).
	cG4       = 4 // Group 4 Fax (T.6).
	cJPEG     = 7 // TTN2 JPEG-in-TIFF.
	cDeflate  = 8 // Adobe zlib/Deflate.
	cPackBits = 32773
)

// T4Options bit flags (page 51 of the spec).
const (
	t4Options2DEncoding       = 1 << 0
	t4OptionsUncompressedMode = 1 << 1
	t4OptionsFillBits         = 1 << 2
)

// Photometric interpretation values (see p. 37 of the spec).
const (
	pWhiteIsZero = 0
	pBlackIsZero = 1
	pRGB         = 2
	pPaletted    = 3
	pTransMask   = 4 // Transparency mask.
	pCMYK        = 5
	pYCbCr       = 6
	pCIELab      = 8
)

// FillOrder values (page 18).
const (
	fillOrderMSB2LSB = 1
	fillOrderLSB2MSB = 2
)

// ResolutionUnit values (page 18).
const (
	resNone    = 1
	resPerInch = 2
	resPerCM   = 3
)

// ExtraSamples values (page 31).
const (
	esUnspecified  = 0
	esAssocAlpha   = 1
	esUnassocAlpha = 2
)

// SampleFormat values (TIFF 6.0 supplement 1).
const (
	sfUnsignedInt = 1
	sfSignedInt   = 2
	sfFloat       = 3
)

// ImageKind is the encoder's internal classification of a raster, derived by
// the image classifier from a SampleModel and an optional ColorModel.
// It drives the PhotometricInterpretation tag and the packer/compression
// compatibility checks.
type ImageKind int

const (
	KindBilevelWhiteZero ImageKind = iota
	KindBilevelBlackZero
	KindGray
	KindPalette
	KindRGB
	KindCMYK
	KindYCbCr
	KindCIELab
	KindGeneric
)

// photometric returns the PhotometricInterpretation tag value for k.
func (k ImageKind) photometric() int {
	switch k {
	case KindBilevelWhiteZero:
		return pWhiteIsZero
	case KindBilevelBlackZero:
		return pBlackIsZero
	case KindGray:
		return pBlackIsZero
	case KindPalette:
		return pPaletted
	case KindRGB:
		return pRGB
	case KindCMYK:
		return pCMYK
	case KindYCbCr:
		return pYCbCr
	case KindCIELab:
		return pCIELab
	default: // KindGeneric
		return pBlackIsZero
	}
}

// String implements fmt.Stringer for debug output.
func (k ImageKind) String() string {
	switch k {
	case KindBilevelWhiteZero:
		return "BilevelWhiteZero"
	case KindBilevelBlackZero:
		return "BilevelBlackZero"
	case KindGray:
		return "Gray"
	case KindPalette:
		return "Palette"
	case KindRGB:
		return "RGB"
	case KindCMYK:
		return "CMYK"
	case KindYCbCr:
		return "YCbCr"
	case KindCIELab:
		return "CIELab"
	default:
		return "Generic"
	}
}

// Compression identifies the compression scheme used for a page's payload.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionPackBits
	CompressionDeflate
	CompressionT4_1D
	CompressionT4_2D
	CompressionT6
	CompressionJPEG
)

// tag returns the on-disk Compression tag value.
func (c Compression) tag() int {
	switch c {
	case CompressionNone:
		return cNone
	case CompressionPackBits:
		return cPackBits
	case CompressionDeflate:
		return cDeflate
	case CompressionT4_1D, CompressionT4_2D:
		return cG3
	case CompressionT6:
		return cG4
	case CompressionJPEG:
		return cJPEG
	}
	return cNone
}

// DataType is the sample storage type of a SampleModel band, as reported by
// a RasterSource.
type DataType int

const (
	DTByte DataType = iota
	DTShort
	DTUShort
	DTInt
	DTFloat
)

// sampleFormat returns the SampleFormat tag value for dt.
func (dt DataType) sampleFormat() int {
	switch dt {
	case DTShort, DTInt:
		return sfSignedInt
	case DTFloat:
		return sfFloat
	default: // DTByte, DTUShort
		return sfUnsignedInt
	}
}

package tiff

import "image"

// Rectangle is the bounds of a raster source, in the same half-open
// convention as image.Rectangle.
type Rectangle struct {
	MinX, MinY, Width, Height int
}

// ColorSpaceType enumerates the colorspace families the classifier
// recognizes on a ColorModel.
type ColorSpaceType int

const (
	ColorSpaceGray ColorSpaceType = iota
	ColorSpaceRGB
	ColorSpaceYCbCr
	ColorSpaceCMYK
	ColorSpaceLab
	ColorSpaceOther
)

// ColorModel describes how a raster's samples map to color, as reported by
// a RasterSource. Indexed is true for palette images; Palette then
// holds one RGB byte-triple per palette entry. HasAlpha reports whether one
// of the raster's bands beyond the photometric components carries alpha;
// it is what lets the field builder distinguish an alpha channel from some
// other extra band (a spot color, a depth channel) that just happens to be
// the only extra one. HasAlpha does not by itself say whether that alpha is
// associated (premultiplied, as in image.RGBA) or unassociated (straight, as
// in image.NRGBA); callers using GoImageSource with an alpha-carrying image
// set Options.AssociatedAlpha to match the concrete image type they pass in.
type ColorModel struct {
	Space    ColorSpaceType
	Indexed  bool
	Palette  [][3]byte
	HasAlpha bool
}

// SampleModel describes a raster's sample storage: its data type, band
// count, and per-band bit depth. Most rasters carry a uniform bit depth
// across bands, but the type reports one value per band so the classifier
// can detect violations.
type SampleModel struct {
	DataType      DataType
	Bands         int
	BitsPerSample []int
}

// RasterView provides pixel access to one tile/strip region, either as a
// contiguous byte buffer or as per-pixel
// integer/float sample slices.
type RasterView interface {
	// Bytes returns the region as a contiguous band-interleaved byte buffer
	// when the underlying storage already matches that layout, and ok=true.
	// Returns ok=false when no such fast path exists.
	Bytes() (p []byte, ok bool)
	// Pixels returns the samples of one row, band-interleaved, for integer
	// sample models (byte/short/ushort/int).
	Pixels(row int) []int64
	// FloatPixels returns the samples of one row, band-interleaved, for
	// float sample models.
	FloatPixels(row int) []float32
}

// RasterSource is the external raster/image collaborator the core consumes.
type RasterSource interface {
	Bounds() Rectangle
	SampleModel() SampleModel
	ColorModel() (ColorModel, bool)
	GetTile(x, y, w, h int) (RasterView, error)
}

// subRasterSource presents a rectangular region of base, translated so its
// own Bounds() starts at (0,0). Used to hand a JPEG collaborator one
// strip/tile at a time, per the "translated to origin (0,0)" contract,
// without requiring every RasterSource implementation to support that
// translation itself.
type subRasterSource struct {
	base   RasterSource
	ox, oy int
	w, h   int
}

// newSubRasterSource returns a RasterSource whose Bounds() is {0, 0, w, h},
// backed by base's region starting at (x, y).
func newSubRasterSource(base RasterSource, x, y, w, h int) *subRasterSource {
	return &subRasterSource{base: base, ox: x, oy: y, w: w, h: h}
}

func (s *subRasterSource) Bounds() Rectangle {
	return Rectangle{Width: s.w, Height: s.h}
}

func (s *subRasterSource) SampleModel() SampleModel { return s.base.SampleModel() }

func (s *subRasterSource) ColorModel() (ColorModel, bool) { return s.base.ColorModel() }

func (s *subRasterSource) GetTile(x, y, w, h int) (RasterView, error) {
	return s.base.GetTile(s.ox+x, s.oy+y, w, h)
}

// goImageView adapts a rectangular region of a stdlib image.Image to
// RasterView.
type goImageView struct {
	img  image.Image
	rect image.Rectangle
	bands int
}

func (v *goImageView) Bytes() (p []byte, ok bool) {
	switch m := v.img.(type) {
	case *image.Gray:
		if m.Stride == m.Rect.Dx() && v.rect == m.Rect {
			return m.Pix, true
		}
	case *image.Gray16:
		if m.Stride == m.Rect.Dx()*2 && v.rect == m.Rect {
			return m.Pix, true
		}
	case *image.NRGBA:
		if m.Stride == m.Rect.Dx()*4 && v.rect == m.Rect {
			return m.Pix, true
		}
	case *image.RGBA:
		if m.Stride == m.Rect.Dx()*4 && v.rect == m.Rect {
			return m.Pix, true
		}
	case *image.CMYK:
		if m.Stride == m.Rect.Dx()*4 && v.rect == m.Rect {
			return m.Pix, true
		}
	case *image.Paletted:
		if m.Stride == m.Rect.Dx() && v.rect == m.Rect {
			return m.Pix, true
		}
	}
	return nil, false
}

func (v *goImageView) Pixels(row int) []int64 {
	y := v.rect.Min.Y + row
	out := make([]int64, 0, v.rect.Dx()*v.bands)
	for x := v.rect.Min.X; x < v.rect.Max.X; x++ {
		switch m := v.img.(type) {
		case *image.Paletted:
			out = append(out, int64(m.ColorIndexAt(x, y)))
			continue
		case *image.Gray16:
			out = append(out, int64(m.Gray16At(x, y).Y))
			continue
		case *image.CMYK:
			c := m.CMYKAt(x, y)
			out = append(out, int64(c.C), int64(c.M), int64(c.Y), int64(c.K))
			continue
		case *image.NRGBA:
			c := m.NRGBAAt(x, y)
			out = append(out, int64(c.R), int64(c.G), int64(c.B), int64(c.A))
			continue
		}
		r, g, b, a := v.img.At(x, y).RGBA()
		switch v.bands {
		case 1:
			out = append(out, int64(r>>8))
		case 2:
			out = append(out, int64(r>>8), int64(a>>8))
		case 3:
			out = append(out, int64(r>>8), int64(g>>8), int64(b>>8))
		default:
			out = append(out, int64(r>>8), int64(g>>8), int64(b>>8), int64(a>>8))
		}
	}
	return out
}

func (v *goImageView) FloatPixels(row int) []float32 {
	ints := v.Pixels(row)
	out := make([]float32, len(ints))
	for i, n := range ints {
		out[i] = float32(n)
	}
	return out
}

// GoImageSource adapts the standard library's image.Image to RasterSource,
// so callers encoding ordinary Go images don't need to implement the
// interface themselves.
type GoImageSource struct {
	Img image.Image
}

func (s GoImageSource) Bounds() Rectangle {
	b := s.Img.Bounds()
	return Rectangle{MinX: b.Min.X, MinY: b.Min.Y, Width: b.Dx(), Height: b.Dy()}
}

func (s GoImageSource) SampleModel() SampleModel {
	switch s.Img.(type) {
	case *image.Gray:
		return SampleModel{DataType: DTByte, Bands: 1, BitsPerSample: []int{8}}
	case *image.Gray16:
		return SampleModel{DataType: DTUShort, Bands: 1, BitsPerSample: []int{16}}
	case *image.CMYK:
		return SampleModel{DataType: DTByte, Bands: 4, BitsPerSample: []int{8, 8, 8, 8}}
	case *image.Paletted:
		return SampleModel{DataType: DTByte, Bands: 1, BitsPerSample: []int{8}}
	case *image.NRGBA, *image.RGBA:
		return SampleModel{DataType: DTByte, Bands: 4, BitsPerSample: []int{8, 8, 8, 8}}
	default:
		return SampleModel{DataType: DTByte, Bands: 3, BitsPerSample: []int{8, 8, 8}}
	}
}

func (s GoImageSource) ColorModel() (ColorModel, bool) {
	switch m := s.Img.(type) {
	case *image.Gray, *image.Gray16:
		return ColorModel{Space: ColorSpaceGray}, true
	case *image.CMYK:
		return ColorModel{Space: ColorSpaceCMYK}, true
	case *image.Paletted:
		pal := make([][3]byte, len(m.Palette))
		for i, c := range m.Palette {
			r, g, b, _ := c.RGBA()
			pal[i] = [3]byte{byte(r >> 8), byte(g >> 8), byte(b >> 8)}
		}
		return ColorModel{Space: ColorSpaceRGB, Indexed: true, Palette: pal}, true
	case *image.NRGBA, *image.RGBA:
		return ColorModel{Space: ColorSpaceRGB, HasAlpha: true}, true
	default:
		return ColorModel{Space: ColorSpaceRGB}, true
	}
}

func (s GoImageSource) GetTile(x, y, w, h int) (RasterView, error) {
	rect := image.Rect(x, y, x+w, y+h)
	return &goImageView{img: s.Img, rect: rect, bands: s.SampleModel().Bands}, nil
}

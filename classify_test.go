package tiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyHeterogeneousBitDepth(t *testing.T) {
	sm := SampleModel{DataType: DTByte, Bands: 2, BitsPerSample: []int{8, 4}}
	_, _, err := classify(sm, ColorModel{}, false, false)
	assert.ErrorIs(t, err, ErrHeterogeneousBitDepth)
}

func TestClassifySubByteMultiband(t *testing.T) {
	sm := SampleModel{DataType: DTByte, Bands: 3, BitsPerSample: []int{4, 4, 4}}
	_, _, err := classify(sm, ColorModel{}, false, false)
	assert.ErrorIs(t, err, ErrSubByteMultiband)
}

func TestClassifyDataTypeDepthMismatch(t *testing.T) {
	sm := SampleModel{DataType: DTShort, Bands: 1, BitsPerSample: []int{8}}
	_, _, err := classify(sm, ColorModel{}, false, false)
	assert.ErrorIs(t, err, ErrDataTypeDepthMismatch)
}

func TestClassifyPaletteRequiresByte(t *testing.T) {
	sm := SampleModel{DataType: DTShort, Bands: 1, BitsPerSample: []int{16}}
	cm := ColorModel{Indexed: true, Palette: [][3]byte{{0, 0, 0}, {1, 1, 1}}}
	_, _, err := classify(sm, cm, true, false)
	assert.ErrorIs(t, err, ErrPaletteOnlyByte)
}

func TestClassifyBilevelBlackZeroFromPalette(t *testing.T) {
	sm := SampleModel{DataType: DTByte, Bands: 1, BitsPerSample: []int{1}}
	cm := ColorModel{Indexed: true, Palette: [][3]byte{{0, 0, 0}, {255, 255, 255}}}
	kind, depth, err := classify(sm, cm, true, false)
	require.NoError(t, err)
	assert.Equal(t, KindBilevelBlackZero, kind)
	assert.Equal(t, 1, depth)
}

func TestClassifyBilevelWhiteZeroFromPalette(t *testing.T) {
	sm := SampleModel{DataType: DTByte, Bands: 1, BitsPerSample: []int{1}}
	cm := ColorModel{Indexed: true, Palette: [][3]byte{{255, 255, 255}, {0, 0, 0}}}
	kind, _, err := classify(sm, cm, true, false)
	require.NoError(t, err)
	assert.Equal(t, KindBilevelWhiteZero, kind)
}

func TestClassifyGenericPaletteFallsBackToPalette(t *testing.T) {
	sm := SampleModel{DataType: DTByte, Bands: 1, BitsPerSample: []int{8}}
	cm := ColorModel{Indexed: true, Palette: [][3]byte{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}}
	kind, _, err := classify(sm, cm, true, false)
	require.NoError(t, err)
	assert.Equal(t, KindPalette, kind)
}

func TestClassifyNoColorModelBilevel(t *testing.T) {
	sm := SampleModel{DataType: DTByte, Bands: 1, BitsPerSample: []int{1}}
	kind, _, err := classify(sm, ColorModel{}, false, false)
	require.NoError(t, err)
	assert.Equal(t, KindBilevelBlackZero, kind)
}

func TestClassifyNoColorModelGeneric(t *testing.T) {
	sm := SampleModel{DataType: DTByte, Bands: 3, BitsPerSample: []int{8, 8, 8}}
	kind, _, err := classify(sm, ColorModel{}, false, false)
	require.NoError(t, err)
	assert.Equal(t, KindGeneric, kind)
}

func TestClassifyColorSpaces(t *testing.T) {
	depth8 := SampleModel{DataType: DTByte, Bands: 3, BitsPerSample: []int{8, 8, 8}}
	cmyk := SampleModel{DataType: DTByte, Bands: 4, BitsPerSample: []int{8, 8, 8, 8}}

	cases := []struct {
		name string
		sm   SampleModel
		cm   ColorModel
		want ImageKind
	}{
		{"rgb", depth8, ColorModel{Space: ColorSpaceRGB}, KindRGB},
		{"ycbcr", depth8, ColorModel{Space: ColorSpaceYCbCr}, KindYCbCr},
		{"lab", depth8, ColorModel{Space: ColorSpaceLab}, KindCIELab},
		{"cmyk", cmyk, ColorModel{Space: ColorSpaceCMYK}, KindCMYK},
		{"gray", SampleModel{DataType: DTByte, Bands: 1, BitsPerSample: []int{8}}, ColorModel{Space: ColorSpaceGray}, KindGray},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			kind, _, err := classify(c.sm, c.cm, true, false)
			require.NoError(t, err)
			assert.Equal(t, c.want, kind)
		})
	}
}

func TestClassifyRGBToYCbCrForJPEG(t *testing.T) {
	sm := SampleModel{DataType: DTByte, Bands: 3, BitsPerSample: []int{8, 8, 8}}
	kind, _, err := classify(sm, ColorModel{Space: ColorSpaceRGB}, true, true)
	require.NoError(t, err)
	assert.Equal(t, KindYCbCr, kind)
}

func TestComponentsOf(t *testing.T) {
	assert.Equal(t, 1, componentsOf(KindGray))
	assert.Equal(t, 3, componentsOf(KindRGB))
	assert.Equal(t, 4, componentsOf(KindCMYK))
}

package tiff

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCompressionForKindFax(t *testing.T) {
	assert.NoError(t, validateCompressionForKind(CompressionT6, KindBilevelBlackZero, 1))
	assert.ErrorIs(t, validateCompressionForKind(CompressionT4_1D, KindGray, 8), ErrIncompatibleCompression)
}

func TestValidateCompressionForKindJPEG(t *testing.T) {
	assert.NoError(t, validateCompressionForKind(CompressionJPEG, KindRGB, 8))
	assert.ErrorIs(t, validateCompressionForKind(CompressionJPEG, KindPalette, 8), ErrJpegPalette)
	assert.ErrorIs(t, validateCompressionForKind(CompressionJPEG, KindCMYK, 8), ErrJpegUnsupportedKind)
	assert.ErrorIs(t, validateCompressionForKind(CompressionJPEG, KindRGB, 16), ErrJpegUnsupportedKind)
}

func TestCompressTileNone(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	out, err := compressTile(src, 2, 2, compressParams{compression: CompressionNone})
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestCompressTilePackBits(t *testing.T) {
	src := []byte{0xAA, 0xAA, 0xAA, 0xBB}
	out, err := compressTile(src, 4, 1, compressParams{compression: CompressionPackBits})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xAA, 0x00, 0xBB}, out)
}

type stubDeflater struct{ prefix byte }

func (d stubDeflater) Deflate(dst io.Writer, src []byte, level int) (int, error) {
	_, err := dst.Write(append([]byte{d.prefix}, src...))
	return len(src) + 1, err
}

func TestCompressTileDeflateDispatch(t *testing.T) {
	out, err := compressTile([]byte{9, 9}, 2, 1, compressParams{
		compression: CompressionDeflate,
		deflater:    stubDeflater{prefix: 0xAB},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB, 9, 9}, out)
}

func TestCompressTileDeflateMissingCollaborator(t *testing.T) {
	_, err := compressTile([]byte{1}, 1, 1, compressParams{compression: CompressionDeflate})
	assert.ErrorIs(t, err, ErrIncompatibleCompression)
}

type stubFax struct{}

func (stubFax) EncodeRLE(row []byte, rowOffset, bitOffset, width int, out []byte) (int, error) {
	n := copy(out, row)
	return n, nil
}

func (stubFax) EncodeT4(is1D, padEOLs bool, tile []byte, rowBytes, bitOffset, width, height int, out []byte) (int, error) {
	n := copy(out, tile)
	return n, nil
}

func (stubFax) EncodeT6(tile []byte, rowBytes, bitOffset, width, height int, out []byte) (int, error) {
	n := copy(out, tile)
	return n, nil
}

func TestCompressTileT4_1D(t *testing.T) {
	out, err := compressTile([]byte{1, 2, 3, 4}, 2, 2, compressParams{
		compression: CompressionT4_1D,
		fax:         stubFax{},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, out)
}

func TestCompressTileT6MissingCollaborator(t *testing.T) {
	_, err := compressTile([]byte{1}, 1, 1, compressParams{compression: CompressionT6})
	assert.ErrorIs(t, err, ErrIncompatibleCompression)
}

func TestT4OptionsValue(t *testing.T) {
	assert.EqualValues(t, 0, t4OptionsValue(CompressionT4_1D, false))
	assert.EqualValues(t, t4Options2DEncoding, t4OptionsValue(CompressionT4_2D, false))
	assert.EqualValues(t, t4OptionsFillBits, t4OptionsValue(CompressionT4_1D, true))
}

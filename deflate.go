package tiff

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// DefaultDeflater is the package-provided Deflater, backed by
// klauspost/compress/zlib. Each call opens a fresh zlib stream, writes src,
// and closes it, so every tile/strip gets its own independent Adobe-Deflate
// stream rather than sharing compressor state across tiles.
type DefaultDeflater struct{}

func (DefaultDeflater) Deflate(dst io.Writer, src []byte, level int) (int, error) {
	if level == 0 {
		level = zlib.DefaultCompression
	}
	zw, err := zlib.NewWriterLevel(dst, level)
	if err != nil {
		return 0, ioError("new zlib writer", err)
	}
	n, err := zw.Write(src)
	if err != nil {
		zw.Close()
		return n, ioError("zlib write", err)
	}
	if err := zw.Close(); err != nil {
		return n, ioError("zlib close", err)
	}
	return n, nil
}

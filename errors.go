package tiff

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors returned by the classifier, the compression dispatcher and
// the page writer. Callers compare against these with errors.Is; the
// package itself always raises them through wrap/wrapf below so a returned
// error carries both the sentinel and call-site context.
var (
	ErrHeterogeneousBitDepth  = errors.New("tiff: bands do not share a single bit depth")
	ErrSubByteMultiband       = errors.New("tiff: sub-byte bit depth requires a single band")
	ErrDataTypeDepthMismatch  = errors.New("tiff: sample data type is incompatible with bit depth")
	ErrUnsupportedDataType    = errors.New("tiff: unsupported sample data type")
	ErrPaletteOnlyByte        = errors.New("tiff: palette images must use byte sample data")
	ErrUnsupportedImageKind   = errors.New("tiff: classifier found no conforming image kind")
	ErrJpegPalette            = errors.New("tiff: JPEG compression does not support palette images")
	ErrJpegUnsupportedKind    = errors.New("tiff: JPEG compression requires Gray, RGB or YCbCr at 8 bits per sample")
	ErrIncompatibleCompression = errors.New("tiff: compression scheme is incompatible with image kind")
	ErrUnseekable             = errors.New("tiff: sink does not support seeking and no spill strategy is available")
	ErrTempFileUnavailable    = errors.New("tiff: temporary spill file could not be created")
	ErrOutOfMemory            = errors.New("tiff: memory spill buffer could not be allocated")
	ErrDuplicateTag           = errors.New("tiff: field table already has an entry for this tag")
	ErrMalformedJPEG          = errors.New("tiff: jpeg stream has no SOS/EOI to split for tables")
)

// IOError wraps any failure surfaced by a ByteSink, a spill file, or an
// external codec while writing a page's payload. It implements Unwrap
// so callers can still reach the underlying error.
type IOError struct {
	Op    string
	Inner error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("tiff: i/o error during %s: %v", e.Op, e.Inner)
}

func (e *IOError) Unwrap() error {
	return e.Inner
}

func ioError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Inner: err}
}

// wrap annotates err with a call-site message while preserving it for
// errors.Is/errors.As (errors.Wrap from github.com/pkg/errors).
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

func wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

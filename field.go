package tiff

import (
	"encoding/binary"
	"math"
	"sort"
)

// Field is a single IFD entry awaiting serialization: a tag together with
// its declared type and value. Only one of the value slices is populated,
// matching the declared Type. A Field holds a value to be *written*, the
// inverse of a decoded tag value read from disk.
type Field struct {
	Tag   uint16
	Type  int // one of the dt* constants in const.go
	Bytes []byte    // dtByte, dtSByte, dtUndefined
	Ascii []string  // dtASCII: one or more NUL-terminated strings
	Short []uint16  // dtShort, dtSShort (signed values stored bit-for-bit)
	Long  []uint32  // dtLong, dtSLong (signed values stored bit-for-bit)
	Rat   [][2]uint32 // dtRational, dtSRational: {numerator, denominator}
	Flt   []float32 // dtFloat
	Dbl   []float64 // dtDouble
}

// ByteField builds a Field of type dtByte.
func ByteField(tag uint16, v ...byte) Field { return Field{Tag: tag, Type: dtByte, Bytes: v} }

// UndefinedField builds a Field of type dtUndefined, for tags whose value is
// an opaque byte blob (e.g. JPEGTables).
func UndefinedField(tag uint16, v []byte) Field { return Field{Tag: tag, Type: dtUndefined, Bytes: v} }

// ShortField builds a Field of type dtShort.
func ShortField(tag uint16, v ...uint16) Field { return Field{Tag: tag, Type: dtShort, Short: v} }

// LongField builds a Field of type dtLong.
func LongField(tag uint16, v ...uint32) Field { return Field{Tag: tag, Type: dtLong, Long: v} }

// RationalField builds a Field of type dtRational.
func RationalField(tag uint16, num, denom uint32) Field {
	return Field{Tag: tag, Type: dtRational, Rat: [][2]uint32{{num, denom}}}
}

// AsciiField builds a Field of type dtASCII from a single Go string.
func AsciiField(tag uint16, s string) Field { return Field{Tag: tag, Type: dtASCII, Ascii: []string{s}} }

// count returns the element count to encode in the IFD entry: the number of
// declared-type elements, except for Ascii where it is the on-disk byte
// count including NUL terminators.
func (f Field) count() uint32 {
	switch f.Type {
	case dtByte, dtSByte, dtUndefined:
		return uint32(len(f.Bytes))
	case dtASCII:
		return f.asciiByteLen()
	case dtShort, dtSShort:
		return uint32(len(f.Short))
	case dtLong, dtSLong:
		return uint32(len(f.Long))
	case dtRational, dtSRational:
		return uint32(len(f.Rat))
	case dtFloat:
		return uint32(len(f.Flt))
	case dtDouble:
		return uint32(len(f.Dbl))
	}
	return 0
}

// asciiByteLen sums len(s)+1 for every string, unless a string is already
// NUL-terminated.
func (f Field) asciiByteLen() uint32 {
	var n uint32
	for _, s := range f.Ascii {
		n += uint32(len(s))
		if len(s) == 0 || s[len(s)-1] != 0x00 {
			n++
		}
	}
	return n
}

// encodedBytes is the total on-disk size of the value itself, ignoring the
// 12-byte entry header.
func (f Field) encodedBytes() uint32 {
	if f.Type == dtASCII {
		return f.asciiByteLen()
	}
	return f.count() * typeSizes[f.Type]
}

// inline reports whether the value fits in the 4-byte value/offset slot.
func (f Field) inline() bool {
	return f.encodedBytes() <= 4
}

// overflowBytes is the footprint f's value occupies in the overflow blob
// when it doesn't fit inline: encodedBytes() rounded up to an even length,
// so the Value Offset of whatever overflow field follows it stays on a word
// boundary, per TIFF 6.0's "the Value Offset will thus be an even number".
func (f Field) overflowBytes() uint32 {
	n := f.encodedBytes()
	if n%2 != 0 {
		n++
	}
	return n
}

// writeValue serializes f's value into dst, which must be exactly
// encodedBytes() long, in byte order bo.
func (f Field) writeValue(dst []byte, bo binary.ByteOrder) {
	switch f.Type {
	case dtByte, dtSByte, dtUndefined:
		copy(dst, f.Bytes)
	case dtASCII:
		var o int
		for _, s := range f.Ascii {
			o += copy(dst[o:], s)
			if len(s) == 0 || s[len(s)-1] != 0x00 {
				dst[o] = 0x00
				o++
			}
		}
	case dtShort, dtSShort:
		for i, v := range f.Short {
			bo.PutUint16(dst[i*2:], v)
		}
	case dtLong, dtSLong:
		for i, v := range f.Long {
			bo.PutUint32(dst[i*4:], v)
		}
	case dtRational, dtSRational:
		for i, v := range f.Rat {
			bo.PutUint32(dst[i*8:], v[0])
			bo.PutUint32(dst[i*8+4:], v[1])
		}
	case dtFloat:
		for i, v := range f.Flt {
			bo.PutUint32(dst[i*4:], math.Float32bits(v))
		}
	case dtDouble:
		for i, v := range f.Dbl {
			bo.PutUint64(dst[i*8:], math.Float64bits(v))
		}
	}
}

// inlineValue returns the 4-byte value/offset slot contents for an inline
// field: the value is left-justified in the slot and the unused trailing
// bytes are zero, as TIFF requires for values shorter than 4 bytes.
func (f Field) inlineValue(bo binary.ByteOrder) [4]byte {
	var buf [4]byte
	f.writeValue(buf[:f.encodedBytes()], bo)
	return buf
}

// sortFieldsByTag sorts Fields in ascending tag order, the ordering required
// of the on-disk IFD (ported from golang-image's sort.Interface
// `ifd` type, generalized to sort.Slice).
func sortFieldsByTag(fields []Field) {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Tag < fields[j].Tag })
}

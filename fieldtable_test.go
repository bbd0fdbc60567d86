package tiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTableSetReplaces(t *testing.T) {
	ft := NewFieldTable()
	ft.Set(ShortField(tCompression, 1))
	ft.Set(ShortField(tCompression, 5))

	require.Equal(t, 1, ft.Len())
	f, ok := ft.Get(tCompression)
	require.True(t, ok)
	assert.Equal(t, []uint16{5}, f.Short)
}

func TestFieldTableInsertIfAbsent(t *testing.T) {
	ft := NewFieldTable()
	ft.Set(AsciiField(tSoftware, "tiffenc"))

	inserted := ft.InsertIfAbsent(AsciiField(tSoftware, "caller-supplied"))
	assert.False(t, inserted, "ExtraFields must never override a field the encoder itself derived")

	f, _ := ft.Get(tSoftware)
	assert.Equal(t, []string{"tiffenc"}, f.Ascii)

	inserted = ft.InsertIfAbsent(AsciiField(tImageDescription, "a scan"))
	assert.True(t, inserted)
}

func TestFieldTableEntriesAreSorted(t *testing.T) {
	ft := NewFieldTable()
	ft.Set(LongField(tStripOffsets, 100))
	ft.Set(ShortField(tCompression, 1))
	ft.Set(LongField(tImageWidth, 4))

	entries := ft.Entries()
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Tag, entries[i].Tag)
	}
}

func TestFieldTableSizeOnDisk(t *testing.T) {
	ft := NewFieldTable()
	ft.Set(ShortField(tCompression, 1))          // inline
	ft.Set(LongField(tStripOffsets, 1, 2, 3, 4)) // 16 bytes, overflow

	// 2 (count) + 12*2 (entries) + 4 (next-ifd) + 16 (overflow) = 46
	assert.EqualValues(t, 46, ft.SizeOnDisk())
}

func TestFieldTableHas(t *testing.T) {
	ft := NewFieldTable()
	assert.False(t, ft.Has(tCompression))
	ft.Set(ShortField(tCompression, 1))
	assert.True(t, ft.Has(tCompression))
}

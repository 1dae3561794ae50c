package FAT32

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirEntry(t *testing.T) {
	slot := shortSlot("REPORT", "PDF", AttrArchive, 65538, 123456, false)

	entry, err := ParseDirEntry(slot)
	require.NoError(t, err)
	assert.Equal(t, "REPORT.PDF", entry.ShortName())
	assert.Equal(t, uint32(65538), entry.StartCluster())
	assert.Equal(t, uint32(123456), entry.FileSize)
	assert.False(t, entry.IsDirectory())
	assert.False(t, entry.IsLongName())
	assert.False(t, entry.IsVolumeLabel())
}

func TestParseDirEntryShortData(t *testing.T) {
	_, err := ParseDirEntry(make([]byte, 12))
	assert.Error(t, err)
}

func TestShortNameMarkers(t *testing.T) {
	deleted, err := ParseDirEntry(shortSlot("REPORT", "PDF", AttrArchive, 100, 10, true))
	require.NoError(t, err)
	assert.Equal(t, "_EPORT.PDF", deleted.ShortName())

	slot := shortSlot("REPORT", "PDF", AttrArchive, 100, 10, false)
	slot[0] = KanjiLeadByte
	kanji, err := ParseDirEntry(slot)
	require.NoError(t, err)
	assert.Equal(t, byte(0xE5), kanji.ShortName()[0])
}

func TestShortNameWithoutExtension(t *testing.T) {
	entry, err := ParseDirEntry(shortSlot("NOTES", "", AttrArchive, 100, 10, false))
	require.NoError(t, err)
	assert.Equal(t, "NOTES", entry.ShortName())
}

func TestNameValidation(t *testing.T) {
	entry, err := ParseDirEntry(shortSlot("REPORT", "PDF", AttrArchive, 100, 10, true))
	require.NoError(t, err)
	assert.True(t, entry.HasValidName())
	assert.True(t, entry.HasValidExtension())

	// lowercase and control bytes are outside the 8.3 character set
	entry.Name[3] = 'a'
	assert.False(t, entry.HasValidName())

	entry.Name[3] = 'R'
	entry.Extension[1] = 0x01
	assert.False(t, entry.HasValidExtension())

	// the first name byte carries the deletion marker and is never judged
	entry.Extension[1] = 'D'
	entry.Name[0] = DeletedMarker
	assert.True(t, entry.HasValidName())
}

func TestDirEntryAttributes(t *testing.T) {
	folder, err := ParseDirEntry(shortSlot("DIR", "", AttrDirectory, 3, 0, false))
	require.NoError(t, err)
	assert.True(t, folder.IsDirectory())

	label, err := ParseDirEntry(shortSlot("VOLUME", "", AttrVolumeID, 0, 0, false))
	require.NoError(t, err)
	assert.True(t, label.IsVolumeLabel())
	assert.False(t, label.IsDirectory())

	lfn, err := ParseDirEntry(lfnSlot(0x01, "part", false))
	require.NoError(t, err)
	assert.True(t, lfn.IsLongName())
	assert.False(t, lfn.IsVolumeLabel())
}

func TestDecodeFATTimestamp(t *testing.T) {
	date := uint16(44<<9 | 6<<5 | 15) // 2024-06-15
	tm := uint16(14<<11 | 30<<5 | 5)  // 14:30:10

	decoded := DecodeFATTimestamp(date, tm)
	assert.Equal(t, time.Date(2024, time.June, 15, 14, 30, 10, 0, time.UTC), decoded)
}

func TestLFNEntryName(t *testing.T) {
	full, err := ParseLFNEntry(lfnSlot(0x01, "longfilename.", false))
	require.NoError(t, err)
	assert.Equal(t, "longfilename.", full.Name())

	partial, err := ParseLFNEntry(lfnSlot(0x42, "txt", false))
	require.NoError(t, err)
	assert.Equal(t, "txt", partial.Name())
}

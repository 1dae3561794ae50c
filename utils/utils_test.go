package utils

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleHeader struct {
	Marker   uint8
	Small    uint16
	Medium   uint32
	Large    uint64
	Label    [4]byte
	Leftover []byte
}

func TestUnmarshal(t *testing.T) {
	data := make([]byte, 19)
	data[0] = 0xE5
	binary.LittleEndian.PutUint16(data[1:3], 0xAA55)
	binary.LittleEndian.PutUint32(data[3:7], 2048)
	binary.LittleEndian.PutUint64(data[7:15], 204800)
	copy(data[15:19], "FAT3")

	var header sampleHeader
	require.NoError(t, Unmarshal(data, &header))

	assert.Equal(t, uint8(0xE5), header.Marker)
	assert.Equal(t, uint16(0xAA55), header.Small)
	assert.Equal(t, uint32(2048), header.Medium)
	assert.Equal(t, uint64(204800), header.Large)
	assert.Equal(t, "FAT3", string(header.Label[:]))
	assert.Nil(t, header.Leftover)
}

func TestUnmarshalShortData(t *testing.T) {
	var header sampleHeader
	err := Unmarshal([]byte{0xE5, 0x55}, &header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Small")
}

func TestHexify(t *testing.T) {
	assert.Equal(t, "55aa", Hexify([]byte{0x55, 0xAA}))
	assert.Equal(t, "", Hexify(nil))
}

func TestGetEntries(t *testing.T) {
	assert.Equal(t, []string{"report.doc", "img.jpg"}, GetEntries("report.doc, img.jpg"))
	assert.Nil(t, GetEntries(""))
	assert.Equal(t, []string{"a"}, GetEntries("a,,"))
}

func TestGetEntriesInt(t *testing.T) {
	assert.Equal(t, []int{100, 105, 102}, GetEntriesInt("100,105,102"))
	assert.Nil(t, GetEntriesInt("abc"))
}

func TestDecodeUTF16(t *testing.T) {
	data := []byte{'B', 0x00, 'a', 0x00, 's', 0x00, 'i', 0x00, 'c', 0x00, 0x00, 0x00, 0xFF, 0xFF}
	assert.Equal(t, "Basic", DecodeUTF16(data))
	assert.Equal(t, "", DecodeUTF16(nil))
}

func TestFilter(t *testing.T) {
	evens := Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4}, evens)
}

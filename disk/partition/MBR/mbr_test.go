package MBR

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func partitionEntry(ptype uint8, startLBA uint32, sizeSectors uint32) []byte {
	entry := make([]byte, 16)
	entry[4] = ptype
	binary.LittleEndian.PutUint32(entry[8:], startLBA)
	binary.LittleEndian.PutUint32(entry[12:], sizeSectors)
	return entry
}

func buildMBRSector(entries ...[]byte) []byte {
	data := make([]byte, 512)
	for idx, entry := range entries {
		copy(data[446+idx*16:], entry)
	}
	data[510] = 0x55
	data[511] = 0xAA
	return data
}

func TestParseMBRSinglePartition(t *testing.T) {
	var mbr MBR
	require.NoError(t, mbr.Parse(buildMBRSector(partitionEntry(0x0b, 2048, 204800))))

	assert.True(t, mbr.HasValidSignature())
	require.Len(t, mbr.Partitions, 1)

	partition := mbr.GetPartition(0)
	assert.Equal(t, "W95 FAT32", partition.GetPartitionType())
	assert.Equal(t, "FAT32", partition.GetFilesystemType())
	assert.Equal(t, uint64(2048), partition.GetOffset())
	assert.Equal(t, uint32(204800), partition.Size)
	assert.False(t, mbr.IsProtective())
}

func TestLocatePartitionsSkipsEmptySlots(t *testing.T) {
	// slot 1 is all zero, slot 3 carries a type byte but no sectors
	data := buildMBRSector(
		partitionEntry(0x0c, 2048, 204800),
		make([]byte, 16),
		partitionEntry(0x07, 206848, 409600),
		partitionEntry(0x83, 616448, 0))

	var mbr MBR
	require.NoError(t, mbr.Parse(data))

	require.Len(t, mbr.Partitions, 2)
	assert.Equal(t, uint64(2048), mbr.Partitions[0].GetOffset())
	assert.Equal(t, uint64(206848), mbr.Partitions[1].GetOffset())
}

func TestPartitionFilesystemClassification(t *testing.T) {
	tests := []struct {
		ptype  uint8
		fsType string
	}{
		{0x0b, "FAT32"},
		{0x0c, "FAT32"},
		{0x07, "NTFS"},
		{0x83, "EXT4"},
		{0x42, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%#02x", tt.ptype), func(t *testing.T) {
			partition := Partition{Type: tt.ptype}
			assert.Equal(t, tt.fsType, partition.GetFilesystemType())
		})
	}
}

func TestProtectiveMBR(t *testing.T) {
	var mbr MBR
	require.NoError(t, mbr.Parse(buildMBRSector(partitionEntry(0xEE, 1, 0xFFFFFFFF))))
	assert.True(t, mbr.IsProtective())
}

func TestInvalidSignature(t *testing.T) {
	data := buildMBRSector(partitionEntry(0x0b, 2048, 204800))
	data[510] = 0x00

	var mbr MBR
	require.NoError(t, mbr.Parse(data))
	assert.False(t, mbr.HasValidSignature())
}

func TestPopulatePseudoMBR(t *testing.T) {
	var mbr MBR
	mbr.PopulatePseudoMBR("FAT32")

	require.Len(t, mbr.Partitions, 1)
	assert.Equal(t, uint8(0x0c), mbr.Partitions[0].Type)
	assert.Equal(t, "FAT32", mbr.Partitions[0].GetFilesystemType())

	mbr.PopulatePseudoMBR("NTFS")
	assert.Equal(t, uint8(0x07), mbr.Partitions[0].Type)
}

type diskImage struct {
	data []byte
}

func (r diskImage) CreateHandler() error { return nil }
func (r diskImage) CloseHandler()        {}

func (r diskImage) ReadFile(offset int64, size int) ([]byte, error) {
	if offset < 0 || offset+int64(size) > int64(len(r.data)) {
		return nil, fmt.Errorf("read past end at offset %d", offset)
	}
	return r.data[offset : offset+int64(size)], nil
}

func (r diskImage) GetDiskSize() int64    { return int64(len(r.data)) }
func (r diskImage) GetSectorSize() uint32 { return 512 }

func fat32BootSector() []byte {
	data := make([]byte, 512)
	binary.LittleEndian.PutUint16(data[11:], 512)
	data[13] = 8
	binary.LittleEndian.PutUint16(data[14:], 32)
	data[16] = 2
	binary.LittleEndian.PutUint32(data[32:], 204800)
	binary.LittleEndian.PutUint32(data[36:], 200)
	binary.LittleEndian.PutUint32(data[44:], 2)
	copy(data[82:90], "FAT32   ")
	binary.LittleEndian.PutUint16(data[510:], 0xAA55)
	return data
}

func TestLocateVolumeProbesFAT32(t *testing.T) {
	const partitionLBA = 2048
	image := make([]byte, (partitionLBA+1)*512)
	copy(image, buildMBRSector(partitionEntry(0x0c, partitionLBA, 204800)))
	copy(image[partitionLBA*512:], fat32BootSector())

	var mbr MBR
	require.NoError(t, mbr.Parse(image[:512]))

	partition := &mbr.Partitions[0]
	require.NoError(t, partition.LocateVolume(diskImage{data: image}))
	require.NotNil(t, partition.GetVolume())
	assert.Contains(t, partition.GetVolInfo(), "FAT32")
	assert.Contains(t, partition.GetInfo(), "W95 FAT32 (LBA)")
}

func TestLocateVolumeLeavesForeignTypesUnprobed(t *testing.T) {
	partition := &Partition{Type: 0x83, StartLBA: 2048, Size: 100}

	// an empty image would fail any read, so no probe may happen
	require.NoError(t, partition.LocateVolume(diskImage{}))
	assert.Nil(t, partition.GetVolume())
	assert.Empty(t, partition.GetVolInfo())
}

func TestExtendedPartitionOffsets(t *testing.T) {
	var mbr MBR
	require.NoError(t, mbr.Parse(buildMBRSector(
		partitionEntry(0x0c, 2048, 204800),
		partitionEntry(0x0f, 206848, 1024))))

	offset, err := mbr.GetExtendedPartitionOffset()
	require.NoError(t, err)
	assert.Equal(t, 206848, offset)

	mbr.UpdateExtendedPartitionsOffsets(1024)
	assert.Equal(t, uint64(207872), mbr.Partitions[1].GetOffset())
	assert.Equal(t, uint64(2048), mbr.Partitions[0].GetOffset())
}

func TestDiscoverExtendedPartitions(t *testing.T) {
	table := buildMBRSector(partitionEntry(0x0b, 63, 2048))

	var mbr MBR
	require.NoError(t, mbr.DiscoverExtendedPartitions(table, 206848))

	require.Len(t, mbr.ExtendedPartitions, 1)
	assert.Equal(t, uint64(63+206848), mbr.ExtendedPartitions[0].GetOffset())
	assert.Contains(t, mbr.ExtendedPartitions[0].GetInfo(), "W95 FAT32")
}

func TestMissingExtendedPartition(t *testing.T) {
	var mbr MBR
	require.NoError(t, mbr.Parse(buildMBRSector(partitionEntry(0x0b, 2048, 204800))))

	_, err := mbr.GetExtendedPartitionOffset()
	assert.Error(t, err)
}

package MBR

import (
	"errors"
	"fmt"

	volume "github.com/fsforensics/FAT32Recovery/disk/volume"
	"github.com/fsforensics/FAT32Recovery/logger"
	"github.com/fsforensics/FAT32Recovery/readers"
	"github.com/fsforensics/FAT32Recovery/utils"
)

var PartitionTypes = map[uint8]string{
	0x0b: "W95 FAT32",
	0x0c: "W95 FAT32 (LBA)",
	0x07: "HPFS/NTFS/exFAT",
	0x0f: "Extended",
	0x27: "Hidden NTFS Win",
	0x83: "Linux",
	0xee: "GPT protective"}

// mapping of the partition type byte to the filesystem enumeration used by the
// recovery dispatcher
var filesystemTypes = map[uint8]string{
	0x0b: "FAT32",
	0x0c: "FAT32",
	0x07: "NTFS",
	0x17: "NTFS",
	0x83: "EXT4",
}

type MBR struct {
	BootCode           [446]byte //0-445
	Partitions         []Partition
	ExtendedPartitions []ExtendedPartition
	Signature          []byte //510-511
}

type ExtendedPartition struct {
	Partition   *Partition
	TableOffset int
}

type Partition struct {
	Flag     uint8
	StartCHS [3]byte
	Type     uint8
	EndCHS   [3]byte
	StartLBA uint32
	Size     uint32 //sectors
	Volume   volume.Volume
}

func (partition Partition) GetOffset() uint64 {
	return uint64(partition.StartLBA)
}

func (partition Partition) GetPartitionType() string {
	return PartitionTypes[partition.Type]
}

func (partition Partition) GetFilesystemType() string {
	if fsType, found := filesystemTypes[partition.Type]; found {
		return fsType
	}
	return "Unknown"
}

// LocateVolume probes the partition boot sector when the type byte maps to
// FAT32. Other filesystems are left without a volume and the dispatcher skips
// them.
func (partition *Partition) LocateVolume(hD readers.DiskReader) error {
	if partition.GetFilesystemType() != "FAT32" {
		logger.RecoveryLogger.Info(fmt.Sprintf("partition type %#02x at %d left unprobed",
			partition.Type, partition.GetOffset()))
		return nil
	}

	partitionOffsetB := int64(partition.GetOffset()) * int64(hD.GetSectorSize())
	data, err := hD.ReadFile(partitionOffsetB, 512)
	if err != nil {
		return err
	}

	fat32 := new(volume.FAT32)
	if err := fat32.AddVolume(data); err != nil {
		return err
	}
	if fat32.HasValidSignature() {
		partition.Volume = fat32
	} else {
		logger.RecoveryLogger.Warning(fmt.Sprintf("partition at %d typed FAT32 carries label %s",
			partition.GetOffset(), fat32.GetSignature()))
	}
	return nil
}

func (extPartition ExtendedPartition) GetOffset() uint64 {
	return uint64(extPartition.Partition.StartLBA) + uint64(extPartition.TableOffset)
}

func (extPartition *ExtendedPartition) LocateVolume(hD readers.DiskReader) error {
	return extPartition.Partition.LocateVolume(hD)
}

func (mbr MBR) IsProtective() bool {
	return len(mbr.Partitions) > 0 && mbr.Partitions[0].Type == 0xEE // 1st partition flag
}

func (mbr MBR) HasValidSignature() bool {
	return utils.Hexify(mbr.Signature) == "55aa"
}

func (mbr MBR) GetPartition(partitionNum int) Partition {
	return mbr.Partitions[partitionNum]
}

// LocatePartitions walks all four table slots and keeps entries with a non
// zero sector count, preserving table order.
func LocatePartitions(data []byte) ([]Partition, error) {
	pos := 0
	var partitions []Partition
	for pos+16 <= len(data) {
		var partition *Partition = new(Partition) //explicit is better
		if err := utils.Unmarshal(data[pos:pos+16], partition); err != nil {
			return nil, err
		}
		if partition.Size != 0 {
			partitions = append(partitions, *partition)
		}
		pos += 16
	}

	return partitions, nil
}

// PopulatePseudoMBR builds a single partition table for a logical drive whose
// volume was classified straight from its boot sector.
func (mbr *MBR) PopulatePseudoMBR(voltype string) {
	partition := new(Partition)

	switch voltype {
	case "FAT32":
		partition.Type = 0x0c
	case "NTFS":
		partition.Type = 0x07
	}
	partition.Size = 1 // non zero keeps the entry enumerable
	mbr.Partitions = []Partition{*partition}
}

func (mbr *MBR) DiscoverExtendedPartitions(buffer []byte, offset int) error {
	var extPartitions []ExtendedPartition
	partitions, err := LocatePartitions(buffer[446:510])
	if err != nil {
		return err
	}
	for idx := range partitions {
		extPartitions = append(extPartitions, ExtendedPartition{Partition: &partitions[idx], TableOffset: offset})
	}
	mbr.ExtendedPartitions = extPartitions
	return nil
}

func (mbr *MBR) Parse(buffer []byte) error {

	if err := utils.Unmarshal(buffer, mbr); err != nil {
		return err
	}
	partitions, err := LocatePartitions(buffer[446:510])
	if err != nil {
		return err
	}
	mbr.Partitions = partitions
	mbr.Signature = buffer[510:512]
	return nil
}

func (mbr MBR) GetExtendedPartitionOffset() (int, error) {
	for _, partition := range mbr.Partitions {
		if partition.Type == 0x0f {
			return int(partition.GetOffset()), nil
		}
	}
	return -1, errors.New("extended partition not found")
}

func (mbr *MBR) UpdateExtendedPartitionsOffsets(extendedTableSectorOffset uint32) {
	for idx := range mbr.Partitions {
		if mbr.Partitions[idx].Type != 0x0f {
			continue
		}
		mbr.Partitions[idx].StartLBA += extendedTableSectorOffset
	}
}

func (partition Partition) GetVolInfo() string {
	if partition.Volume == nil {
		return ""
	}
	return partition.Volume.GetInfo()
}

func (partiton Partition) GetVolume() volume.Volume {
	return partiton.Volume
}

func (extPartition ExtendedPartition) GetVolume() volume.Volume {
	return extPartition.Partition.Volume
}

func (partition Partition) GetInfo() string {
	return fmt.Sprintf(" %s at %d size %d sectors", partition.GetPartitionType(), partition.GetOffset(), partition.Size)

}

func (extPartition ExtendedPartition) GetInfo() string {

	return fmt.Sprintf("\textended partition  %s at %d size %d sectors",
		extPartition.Partition.GetPartitionType(), extPartition.Partition.GetOffset(), extPartition.Partition.Size)
}

func (extpartition ExtendedPartition) GetVolInfo() string {
	if extPartitionVolume := extpartition.GetVolume(); extPartitionVolume != nil {
		return extPartitionVolume.GetInfo()
	}
	return ""
}

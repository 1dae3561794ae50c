package GPT

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	volume "github.com/fsforensics/FAT32Recovery/disk/volume"
	"github.com/fsforensics/FAT32Recovery/logger"
	"github.com/fsforensics/FAT32Recovery/readers"
	"github.com/fsforensics/FAT32Recovery/utils"
)

var ErrNoEFISignature = errors.New("gpt header signature mismatch")

// display names for well known partition type GUIDs
var PartitionTypeGUIDs = map[string]string{
	"c12a7328-f81f-11d2-ba4b-00a0c93ec93b": "EFI System",
	"ebd0a0a2-b9e5-4433-87c0-68b6b72699c7": "Microsoft basic data",
	"e3c9e316-0b5c-4db8-817d-f92df00215ae": "Microsoft reserved",
	"0fc63daf-8483-4772-8e79-3d69d8477de4": "Linux filesystem",
	"de94bba4-06d1-4d40-a16a-bfd50179d6ac": "Windows RE",
}

type GPT struct {
	Header     *GPTHeader
	Partitions []Partition
}

type GPTHeader struct {
	Signature          [8]byte  //0-7 "EFI PART"
	Revision           uint32   //8-11
	HeaderSize         uint32   //12-15
	HeaderCRC32        uint32   //16-19
	Reserved           uint32   //20-23
	CurrentLBA         uint64   //24-31
	BackupLBA          uint64   //32-39
	FirstUsableLBA     uint64   //40-47
	LastUsableLBA      uint64   //48-55
	DiskGUID           [16]byte //56-71
	PartitionsStartLBA uint64   //72-79
	NofPartitions      uint32   //80-83
	PartitionSize      uint32   //84-87
	PartitionArrayCRC  uint32   //88-91
}

type Partition struct {
	PartitionTypeGUID [16]byte //0-15
	PartitionGUID     [16]byte //16-31
	StartLBA          uint64   //32-39
	EndLBA            uint64   //40-47
	Attributes        uint64   //48-55
	Name              [72]byte //56-127 UTF16LE
	Volume            volume.Volume
}

func (gpt *GPT) ParseHeader(buffer []byte) error {
	var header GPTHeader
	if err := utils.Unmarshal(buffer, &header); err != nil {
		return err
	}
	if string(header.Signature[:]) != "EFI PART" {
		return ErrNoEFISignature
	}
	gpt.Header = &header
	return nil
}

func (gpt GPT) GetPartitionArraySize() uint32 {
	return gpt.Header.NofPartitions * gpt.Header.PartitionSize
}

// ParsePartitions walks the entry array keeping slots whose type GUID is non
// zero. Slots beyond NofPartitions are never examined.
func (gpt *GPT) ParsePartitions(data []byte) error {
	entrySize := int(gpt.Header.PartitionSize)
	if entrySize == 0 {
		return errors.New("gpt partition entry size is zero")
	}

	var partitions []Partition
	for count := 0; count < int(gpt.Header.NofPartitions); count++ {
		pos := count * entrySize
		if pos+entrySize > len(data) {
			break
		}
		var partition *Partition = new(Partition)
		if err := utils.Unmarshal(data[pos:pos+entrySize], partition); err != nil {
			return err
		}
		if partition.IsEmpty() {
			continue
		}
		partitions = append(partitions, *partition)
	}
	gpt.Partitions = partitions
	return nil
}

func (gpt GPT) GetPartition(partitionNum int) Partition {
	return gpt.Partitions[partitionNum]
}

func (partition Partition) IsEmpty() bool {
	return partition.PartitionTypeGUID == [16]byte{}
}

func (partition Partition) GetOffset() uint64 {
	return partition.StartLBA
}

func (partition Partition) GetSizeSectors() uint64 {
	if partition.EndLBA < partition.StartLBA {
		return 0
	}
	return partition.EndLBA - partition.StartLBA + 1
}

func (partition Partition) GetTypeGUID() string {
	return mixedEndianGUID(partition.PartitionTypeGUID)
}

func (partition Partition) GetGUID() string {
	return mixedEndianGUID(partition.PartitionGUID)
}

func (partition Partition) GetPartitionType() string {
	if name, found := PartitionTypeGUIDs[partition.GetTypeGUID()]; found {
		return name
	}
	return partition.GetTypeGUID()
}

func (partition Partition) GetName() string {
	return utils.DecodeUTF16(partition.Name[:])
}

// LocateVolume probes the partition boot sector. The filesystem is judged
// from the sector content, the type GUID alone does not decide it.
func (partition *Partition) LocateVolume(hD readers.DiskReader) error {
	partitionOffsetB := int64(partition.StartLBA) * int64(hD.GetSectorSize())
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
		logger.RecoveryLogger.Info(fmt.Sprintf("partition %s at %d carries label %s, left unprobed",
			partition.GetName(), partition.GetOffset(), fat32.GetSignature()))
	}
	return nil
}

func (partition Partition) GetVolume() volume.Volume {
	return partition.Volume
}

func (partition Partition) GetVolInfo() string {
	if partition.Volume == nil {
		return ""
	}
	return partition.Volume.GetInfo()
}

func (partition Partition) GetInfo() string {
	return fmt.Sprintf(" %s %q at %d size %d sectors",
		partition.GetPartitionType(), partition.GetName(), partition.GetOffset(), partition.GetSizeSectors())
}

// first three GUID fields are little endian on disk, the rest keep byte order
func mixedEndianGUID(raw [16]byte) string {
	order := [16]int{3, 2, 1, 0, 5, 4, 7, 6, 8, 9, 10, 11, 12, 13, 14, 15}
	var rearranged [16]byte
	for idx, pos := range order {
		rearranged[idx] = raw[pos]
	}
	id, err := uuid.FromBytes(rearranged[:])
	if err != nil {
		return ""
	}
	return id.String()
}

package volume

import (
	"fmt"
	"strings"

	metadata "github.com/fsforensics/FAT32Recovery/FS"
	fat32 "github.com/fsforensics/FAT32Recovery/FS/FAT32"
	"github.com/fsforensics/FAT32Recovery/logger"
	"github.com/fsforensics/FAT32Recovery/readers"
	"github.com/fsforensics/FAT32Recovery/utils"
)

// filesystems recognisable from the boot sector label
var knownFilesystems = map[string]string{
	"FAT32": "FAT32",
	"NTFS":  "NTFS",
	"exFAT": "exFAT",
	"EXT4":  "EXT4",
}

type FAT32 struct {
	BootSector     *BootSector
	DirectoryTable *fat32.DirectoryTable
}

type BootSector struct { // BIOS parameter block
	JumpInstruction     [3]byte  //0-2
	OEMName             [8]byte  //3-10
	BytesPerSector      uint16   //11-12
	SectorsPerCluster   uint8    //13
	ReservedSectorCount uint16   //14-15
	NumberOfFATs        uint8    //16
	RootEntryCount      uint16   //17-18
	TotalSectors16      uint16   //19-20
	Media               uint8    //21
	FATSize16           uint16   //22-23
	SectorsPerTrack     uint16   //24-25
	NumberOfHeads       uint16   //26-27
	HiddenSectors       uint32   //28-31
	TotalSectors32      uint32   //32-35
	FATSize32           uint32   //36-39
	ExtFlags            uint16   //40-41
	FSVersion           uint16   //42-43
	RootCluster         uint32   //44-47
	FSInfoSector        uint16   //48-49
	BackupBootSector    uint16   //50-51
	Reserved            [12]byte //52-63
	DriveNumber         uint8    //64
	Reserved1           uint8    //65
	BootSignature       uint8    //66
	VolumeID            uint32   //67-70
	VolumeLabel         [11]byte //71-81
	FilesystemType      [8]byte  //82-89
}

func (fs *FAT32) AddVolume(data []byte) error {
	fs.BootSector = new(BootSector)
	return fs.BootSector.Parse(data)
}

func (bootSector *BootSector) Parse(data []byte) error {
	return utils.Unmarshal(data, bootSector)
}

// GetSignature returns the 8 byte filesystem label trimmed at the first space
// or terminator.
func (bootSector BootSector) GetSignature() string {
	label := string(bootSector.FilesystemType[:])
	if cut := strings.IndexAny(label, " \x00"); cut != -1 {
		label = label[:cut]
	}
	return label
}

// GetFilesystemType classifies the boot sector label without needing a
// partition table, used for logical drives addressed directly.
func (bootSector BootSector) GetFilesystemType() string {
	if fsType, found := knownFilesystems[bootSector.GetSignature()]; found {
		return fsType
	}
	return "Unknown"
}

func (bootSector BootSector) GetVolumeLabel() string {
	return strings.TrimRight(string(bootSector.VolumeLabel[:]), " \x00")
}

func (bootSector BootSector) GetVolumeSerial() string {
	return fmt.Sprintf("%04X-%04X", bootSector.VolumeID>>16, bootSector.VolumeID&0xFFFF)
}

// GetGeometry derives the cluster translation values. The data region starts
// after the reserved sectors and every allocation table copy.
func (bootSector BootSector) GetGeometry() fat32.Geometry {
	totalSectors := uint64(bootSector.TotalSectors32)
	if totalSectors == 0 {
		totalSectors = uint64(bootSector.TotalSectors16)
	}
	fatStart := uint64(bootSector.ReservedSectorCount)
	return fat32.Geometry{
		BytesPerSector:    uint32(bootSector.BytesPerSector),
		SectorsPerCluster: uint32(bootSector.SectorsPerCluster),
		FATStartSector:    fatStart,
		FATSizeSectors:    uint64(bootSector.FATSize32),
		NumberOfFATs:      uint32(bootSector.NumberOfFATs),
		DataStartSector:   fatStart + uint64(bootSector.NumberOfFATs)*uint64(bootSector.FATSize32),
		RootCluster:       bootSector.RootCluster,
		TotalSectors:      totalSectors,
	}
}

// Process runs the recovery pass over this volume through a sector reader
// biased at the partition start.
func (fs *FAT32) Process(hD readers.DiskReader, partitionOffsetB int64, gapThreshold int, scanSubdirs bool) error {
	geometry := fs.BootSector.GetGeometry()

	msg := fmt.Sprintf("Processing FAT32 volume at offset %d cluster size %d B", partitionOffsetB, geometry.ClusterSizeB())
	fmt.Printf("%s\n", msg)
	logger.RecoveryLogger.Info(msg)

	startLBA := uint64(partitionOffsetB) / uint64(geometry.BytesPerSector)
	volReader := readers.NewVolumeSectorReader(hD, geometry.BytesPerSector, startLBA)

	fs.DirectoryTable = fat32.NewDirectoryTable(geometry, uint32(gapThreshold))
	return fs.DirectoryTable.Process(volReader, scanSubdirs)
}

func (fs FAT32) GetFS() []metadata.Record {
	return metadata.WrapFAT32Records(fs.DirectoryTable.Records)
}

func (fs FAT32) GetInfo() string {
	geometry := fs.BootSector.GetGeometry()
	return fmt.Sprintf("%s label %s serial %s size %d cluster size %d", fs.GetSignature(),
		fs.BootSector.GetVolumeLabel(), fs.BootSector.GetVolumeSerial(),
		geometry.TotalSectors*uint64(geometry.BytesPerSector), geometry.ClusterSizeB())
}

func (fs FAT32) GetSignature() string {
	return fs.BootSector.GetSignature()
}

func (fs FAT32) HasValidSignature() bool {
	return fs.BootSector.GetSignature() == "FAT32"
}

func (fs FAT32) GetSectorsPerCluster() int {
	return int(fs.BootSector.SectorsPerCluster)
}

func (fs FAT32) GetBytesPerSector() uint64 {
	return uint64(fs.BootSector.BytesPerSector)
}

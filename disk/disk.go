package disk

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	metadata "github.com/fsforensics/FAT32Recovery/FS"
	gptLib "github.com/fsforensics/FAT32Recovery/disk/partition/GPT"
	mbrLib "github.com/fsforensics/FAT32Recovery/disk/partition/MBR"
	"github.com/fsforensics/FAT32Recovery/disk/volume"
	"github.com/fsforensics/FAT32Recovery/logger"
	"github.com/fsforensics/FAT32Recovery/readers"
	"github.com/fsforensics/FAT32Recovery/utils"
)

var (
	ErrFAT32Vol          = errors.New("FAT32 volume discovered instead of MBR")
	ErrUnsupportedVol    = errors.New("unsupported volume discovered instead of MBR")
	ErrNoBootRecord      = errors.New("no valid boot record at sector 0")
	ErrUnrecognizedDrive = errors.New("unrecognized drive designator")
)

type DriveKind int

const (
	DriveUnknown DriveKind = iota
	DrivePhysical
	DriveLogical
)

func (kind DriveKind) String() string {
	switch kind {
	case DrivePhysical:
		return "physical"
	case DriveLogical:
		return "logical"
	}
	return "unknown"
}

type Partition interface {
	GetOffset() uint64
	LocateVolume(readers.DiskReader) error
	GetVolume() volume.Volume
	GetInfo() string
	GetVolInfo() string
}

type Disk struct {
	MBR        *mbrLib.MBR
	GPT        *gptLib.GPT
	Handler    readers.DiskReader
	Partitions []Partition
	Kind       DriveKind
}

// ParseDriveDesignator turns user input into a device path. A bare number or
// any PhysicalDriveN spelling selects a physical drive keeping the number
// verbatim, a letter with optional colon selects the logical drive uppercased.
func ParseDriveDesignator(designator string) (DriveKind, string, error) {
	trimmed := strings.TrimSpace(designator)
	if trimmed == "" {
		return DriveUnknown, "", fmt.Errorf("%w: empty", ErrUnrecognizedDrive)
	}

	if isAllDigits(trimmed) {
		return DrivePhysical, "\\\\.\\PHYSICALDRIVE" + trimmed, nil
	}

	lowered := strings.ToLower(trimmed)
	if idx := strings.Index(lowered, "physicaldrive"); idx != -1 {
		number := trimmed[idx+len("physicaldrive"):]
		if isAllDigits(number) {
			return DrivePhysical, "\\\\.\\PHYSICALDRIVE" + number, nil
		}
	}

	if len(trimmed) == 1 || (len(trimmed) == 2 && trimmed[1] == ':') {
		letter := trimmed[0]
		if 'a' <= letter && letter <= 'z' {
			letter -= 'a' - 'A'
		}
		if 'A' <= letter && letter <= 'Z' {
			return DriveLogical, "\\\\.\\" + string(letter) + ":", nil
		}
	}

	return DriveUnknown, "", fmt.Errorf("%w %q", ErrUnrecognizedDrive, designator)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (disk *Disk) Initialize(driveDesignator string, evidencefile string) error {
	if evidencefile != "" {
		extension := path.Ext(evidencefile)
		mode := "raw"
		if strings.EqualFold(extension, ".e01") {
			mode = "ewf"
		}
		hD, err := readers.GetHandler(evidencefile, mode)
		if err != nil {
			return err
		}
		disk.Kind = DrivePhysical
		disk.Handler = hD
		return nil
	}

	kind, devicePath, err := ParseDriveDesignator(driveDesignator)
	if err != nil {
		return err
	}
	mode := "physicalDrive"
	if kind == DriveLogical {
		mode = "logicalDrive"
	}
	hD, err := readers.GetHandler(devicePath, mode)
	if err != nil {
		return err
	}
	disk.Kind = kind
	disk.Handler = hD
	logger.RecoveryLogger.Info(fmt.Sprintf("opened %s drive %s", kind, devicePath))
	return nil
}

// Process discovers partitions and runs the recovery pass over every FAT32
// volume. Content anomalies degrade to per file status, only device faults
// during discovery abort.
func (disk *Disk) Process(partitionNum int, gapThreshold int, scanSubdirs bool) (map[int][]metadata.Record, error) {

	err := disk.DiscoverPartitions()
	if errors.Is(err, ErrFAT32Vol) {
		msg := "No MBR discovered, instead FAT32 volume found at 1st sector"
		fmt.Printf("%s\n", msg)
		logger.RecoveryLogger.Warning(msg)

		disk.CreatePseudoMBR("FAT32")
	} else if errors.Is(err, ErrUnsupportedVol) || errors.Is(err, ErrNoBootRecord) {
		msg := fmt.Sprintf("%v, nothing to recover", err)
		fmt.Printf("%s\n", msg)
		logger.RecoveryLogger.Warning(msg)
		return map[int][]metadata.Record{}, nil
	} else if err != nil {
		return nil, err
	}

	// the partition table pass is over, each partition reopens its own handle
	disk.Handler.CloseHandler()

	disk.ProcessPartitions(partitionNum, gapThreshold, scanSubdirs)
	return disk.GetFileSystemMetadata(), nil
}

func (disk Disk) Close() {
	disk.Handler.CloseHandler()
}

func (disk Disk) hasProtectiveMBR() bool {
	return disk.MBR != nil && disk.MBR.IsProtective()
}

func (disk *Disk) populateMBR() error {
	physicalOffset := int64(0)
	length := int(512) // MBR always at first sector

	data, err := disk.Handler.ReadFile(physicalOffset, length) // read 1st sector
	if err != nil {
		return err
	}

	probe := new(volume.FAT32)
	if err := probe.AddVolume(data); err == nil {
		switch voltype := probe.BootSector.GetFilesystemType(); voltype {
		case "FAT32":
			return ErrFAT32Vol
		case "Unknown":
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedVol, voltype)
		}
	}
	if string(data[3:7]) == "NTFS" {
		return fmt.Errorf("%w: NTFS", ErrUnsupportedVol)
	}

	var mbr mbrLib.MBR
	if err := mbr.Parse(data); err != nil {
		return err
	}
	if !mbr.HasValidSignature() {
		return ErrNoBootRecord
	}

	offset, err := mbr.GetExtendedPartitionOffset()
	if err == nil {
		sectorSize := int64(disk.Handler.GetSectorSize())
		data, err := disk.Handler.ReadFile(int64(offset)*sectorSize, length)
		if err != nil {
			return err
		}
		if err := mbr.DiscoverExtendedPartitions(data, offset); err != nil {
			return err
		}
	}
	disk.MBR = &mbr
	return nil
}

func (disk *Disk) populateGPT() error {
	sectorSize := int64(disk.Handler.GetSectorSize())

	data, err := disk.Handler.ReadFile(sectorSize, 512) // gpt header at 2nd sector
	if err != nil {
		return err
	}

	var gpt gptLib.GPT
	if err := gpt.ParseHeader(data); err != nil {
		return err
	}
	length := gpt.GetPartitionArraySize()

	data, err = disk.Handler.ReadFile(int64(gpt.Header.PartitionsStartLBA)*sectorSize, int(length))
	if err != nil {
		return err
	}

	if err := gpt.ParsePartitions(data); err != nil {
		return err
	}
	disk.GPT = &gpt
	return nil
}

func (disk *Disk) CreatePseudoMBR(voltype string) {
	var mbr mbrLib.MBR

	mbr.PopulatePseudoMBR(voltype)
	disk.MBR = &mbr
	for idx := range disk.MBR.Partitions {
		disk.Partitions = append(disk.Partitions, &disk.MBR.Partitions[idx])
	}
}

// DiscoverPartitions reads the partition scheme. A readable GPT wins over the
// MBR even when the protective entry is missing.
func (disk *Disk) DiscoverPartitions() error {

	err := disk.populateMBR()
	if err != nil {
		return err
	}

	gptErr := disk.populateGPT()
	if gptErr == nil {
		for idx := range disk.GPT.Partitions {

			disk.Partitions = append(disk.Partitions, &disk.GPT.Partitions[idx])

		}
		return nil
	}
	if disk.hasProtectiveMBR() {
		return gptErr // protective entry with no usable GPT behind it
	}
	if !errors.Is(gptErr, gptLib.ErrNoEFISignature) {
		return gptErr
	}

	for idx := range disk.MBR.Partitions {
		disk.Partitions = append(disk.Partitions, &disk.MBR.Partitions[idx])
	}
	for idx := range disk.MBR.ExtendedPartitions {
		disk.Partitions = append(disk.Partitions, &disk.MBR.ExtendedPartitions[idx])
	}
	return nil
}

// ProcessPartitions probes and processes each partition under its own short
// lived handle. A failing partition never stops its siblings.
func (disk *Disk) ProcessPartitions(partitionNum int, gapThreshold int, scanSubdirs bool) {

	for idx := range disk.Partitions {
		if partitionNum != -1 && partitionNum != idx {
			continue
		}
		if err := disk.Handler.CreateHandler(); err != nil {
			msg := fmt.Sprintf("partition %d: %v", idx+1, err)
			fmt.Printf("%s\n", msg)
			logger.RecoveryLogger.Error(msg)
			continue
		}
		disk.processPartition(idx, gapThreshold, scanSubdirs)
		disk.Handler.CloseHandler()
	}

}

func (disk *Disk) processPartition(idx int, gapThreshold int, scanSubdirs bool) {
	if err := disk.Partitions[idx].LocateVolume(disk.Handler); err != nil {
		msg := fmt.Sprintf("partition %d volume probe failed: %v", idx+1, err)
		fmt.Printf("%s\n", msg)
		logger.RecoveryLogger.Error(msg)
		return
	}

	partitionOffset := disk.Partitions[idx].GetOffset()
	vol := disk.Partitions[idx].GetVolume()
	if vol == nil {
		msg := fmt.Sprintf("No FAT32 volume at partition %d.", idx+1)
		logger.RecoveryLogger.Warning(msg)
		return //fs not found
	}
	msg := "Partition %d  %s at %d sector"
	fmt.Printf(msg+"\n", idx+1, vol.GetSignature(), partitionOffset)
	logger.RecoveryLogger.Info(fmt.Sprintf(msg, idx+1, vol.GetSignature(), partitionOffset))

	partitionOffsetB := int64(partitionOffset) * int64(disk.Handler.GetSectorSize())
	if err := vol.Process(disk.Handler, partitionOffsetB, gapThreshold, scanSubdirs); err != nil {
		msg := fmt.Sprintf("partition %d processing failed: %v", idx+1, err)
		fmt.Printf("%s\n", msg)
		logger.RecoveryLogger.Error(msg)
	}
}

func (disk Disk) GetFileSystemMetadata() map[int][]metadata.Record {

	recordsPerPartition := map[int][]metadata.Record{}
	for idx, partition := range disk.Partitions {

		vol := partition.GetVolume()
		if vol == nil {
			continue
		}
		recordsPerPartition[idx] = vol.GetFS()

	}
	return recordsPerPartition
}

// Worker pulls the payload of each record and feeds the results channel, to be
// consumed by the exporter.
func (disk Disk) Worker(wg *sync.WaitGroup, records []metadata.Record, results chan<- utils.RecoveredFile, partitionNum int) {
	defer wg.Done()
	defer close(results)

	partition := disk.Partitions[partitionNum]
	vol := partition.GetVolume()
	if vol == nil {
		logger.RecoveryLogger.Error(fmt.Sprintf("No volume for partition %d, nothing to pull.", partitionNum))
		return
	}

	if err := disk.Handler.CreateHandler(); err != nil {
		logger.RecoveryLogger.Error(fmt.Sprintf("partition %d: %v", partitionNum, err))
		return
	}
	defer disk.Handler.CloseHandler()

	bytesPerSector := uint32(vol.GetBytesPerSector())
	partitionOffsetB := int64(partition.GetOffset()) * int64(disk.Handler.GetSectorSize())
	volReader := readers.NewVolumeSectorReader(disk.Handler, bytesPerSector,
		uint64(partitionOffsetB)/uint64(bytesPerSector))

	for _, record := range records {

		if record.IsFolder() {
			msg := fmt.Sprintf("Record %s Id %d is folder! No data to export.", record.GetFname(), record.GetID())
			logger.RecoveryLogger.Warning(msg)
			continue
		}
		if record.IsSkipped() {
			msg := fmt.Sprintf("Record %s Id %d has nothing to recover.", record.GetFname(), record.GetID())
			logger.RecoveryLogger.Warning(msg)
			continue
		}

		fmt.Printf("pulling data file %s Id %d\n", record.GetFname(), record.GetID())
		record.LocateData(volReader, results)
	}

}

func (disk Disk) ShowVolumeInfo() {
	for _, partition := range disk.Partitions {
		if volInfo := partition.GetVolInfo(); volInfo != "" {
			fmt.Printf("%s \n", volInfo)
		}
	}
}

func (disk Disk) ListPartitions() {
	if disk.GPT != nil {
		fmt.Printf("GPT:\n")
	} else {
		fmt.Printf("MBR:\n")
	}

	for _, partition := range disk.Partitions {
		fmt.Printf("%s\n", partition.GetInfo())
	}

}

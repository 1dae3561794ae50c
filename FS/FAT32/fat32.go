package FAT32

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/fsforensics/FAT32Recovery/logger"
	"github.com/fsforensics/FAT32Recovery/readers"
	"github.com/fsforensics/FAT32Recovery/utils"
)

// directory chains carry no declared size, walks stop at this many clusters
const maxDirectoryClusters = 1 << 16

// file chain walks stop at twice the declared cluster count plus this margin
const chainSafetyMargin = 8

// Geometry is the cluster to sector translation derived from the boot sector.
type Geometry struct {
	BytesPerSector    uint32
	SectorsPerCluster uint32
	FATStartSector    uint64
	FATSizeSectors    uint64
	NumberOfFATs      uint32
	DataStartSector   uint64
	RootCluster       uint32
	TotalSectors      uint64
}

func (geometry Geometry) ClusterSizeB() int {
	return int(geometry.SectorsPerCluster) * int(geometry.BytesPerSector)
}

func (geometry Geometry) ClusterToSector(cluster uint32) uint64 {
	return geometry.DataStartSector + uint64(cluster-2)*uint64(geometry.SectorsPerCluster)
}

// MaxCluster returns the highest addressable data region cluster. Data
// clusters are numbered from 2.
func (geometry Geometry) MaxCluster() uint32 {
	if geometry.TotalSectors <= geometry.DataStartSector {
		return 1
	}
	dataClusters := (geometry.TotalSectors - geometry.DataStartSector) / uint64(geometry.SectorsPerCluster)
	return uint32(dataClusters) + 1
}

func (geometry Geometry) IsValidCluster(cluster uint32) bool {
	return cluster >= 2 && cluster <= geometry.MaxCluster()
}

// DirectoryTable holds every directory entry located on one FAT32 volume
// together with the allocation table needed to rebuild cluster chains.
type DirectoryTable struct {
	Records      []Record
	Geometry     Geometry
	FAT          []uint32
	UsageMap     *UsageMap
	GapThreshold uint32
}

func NewDirectoryTable(geometry Geometry, gapThreshold uint32) *DirectoryTable {
	return &DirectoryTable{Geometry: geometry, UsageMap: NewUsageMap(), GapThreshold: gapThreshold}
}

// Process runs the full pass over one volume: allocation table load, directory
// scan, chain reconstruction and per file analysis.
func (dt *DirectoryTable) Process(volReader readers.VolumeReader, scanSubdirs bool) error {
	if err := dt.LoadFAT(volReader); err != nil {
		return err
	}
	if err := dt.ScanDirectories(volReader, scanSubdirs); err != nil {
		return err
	}
	dt.ReconstructChains()
	dt.AnalyzeRecords()
	return nil
}

// LoadFAT reads the first allocation table into memory. Deleting a file clears
// only the directory slot marker, the chain links survive in the table.
func (dt *DirectoryTable) LoadFAT(volReader readers.VolumeReader) error {
	size := int(dt.Geometry.FATSizeSectors) * int(dt.Geometry.BytesPerSector)
	data, err := volReader.ReadSectors(dt.Geometry.FATStartSector, size)
	if err != nil {
		return fmt.Errorf("reading allocation table: %w", err)
	}

	dt.FAT = make([]uint32, len(data)/4)
	for idx := range dt.FAT {
		dt.FAT[idx] = binary.LittleEndian.Uint32(data[idx*4:])
	}

	msg := fmt.Sprintf("Processing %d FAT entries", len(dt.FAT))
	fmt.Printf(" %s \n", msg)
	logger.RecoveryLogger.Info(msg)
	return nil
}

type directoryTask struct {
	cluster uint32
	path    string
}

// ScanDirectories walks the root directory chain and, when scanSubdirs is set,
// every reachable live subdirectory. Each 32 byte slot whose first byte
// carries the deletion marker becomes a candidate record. Deleted directories
// are listed but never descended into, their chains cannot be trusted.
func (dt *DirectoryTable) ScanDirectories(volReader readers.VolumeReader, scanSubdirs bool) error {
	visitedDirs := map[uint32]bool{dt.Geometry.RootCluster: true}
	stack := []directoryTask{{cluster: dt.Geometry.RootCluster, path: ""}}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		subdirs, err := dt.scanDirectory(volReader, task)
		if err != nil {
			return err
		}
		if !scanSubdirs {
			continue
		}
		for _, subdir := range subdirs {
			if visitedDirs[subdir.cluster] {
				continue
			}
			visitedDirs[subdir.cluster] = true
			stack = append(stack, subdir)
		}
	}

	deleted := 0
	for idx := range dt.Records {
		if dt.Records[idx].Deleted {
			deleted++
		}
	}
	msg := fmt.Sprintf("Located %d directory entries of which %d deleted", len(dt.Records), deleted)
	fmt.Printf(" %s \n", msg)
	logger.RecoveryLogger.Info(msg)
	return nil
}

// scanDirectory walks the cluster chain of one directory and collects its
// records. It returns the live subdirectories found so the caller can queue
// them. Scanning ends at the end of directory marker.
func (dt *DirectoryTable) scanDirectory(volReader readers.VolumeReader, task directoryTask) ([]directoryTask, error) {
	var subdirs []directoryTask
	var pendingLFN []LFNEntry

	clusterSizeB := dt.Geometry.ClusterSizeB()
	entriesPerCluster := clusterSizeB / DirEntrySize
	visited := map[uint32]bool{}
	cluster := task.cluster

	for count := 0; count < maxDirectoryClusters; count++ {
		if !dt.Geometry.IsValidCluster(cluster) || visited[cluster] {
			break
		}
		visited[cluster] = true

		data, err := volReader.ReadSectors(dt.Geometry.ClusterToSector(cluster), clusterSizeB)
		if err != nil {
			return nil, fmt.Errorf("reading directory cluster %d: %w", cluster, err)
		}

		for offset := 0; offset+DirEntrySize <= len(data); offset += DirEntrySize {
			slot := data[offset : offset+DirEntrySize]
			if slot[0] == EndOfDirMarker {
				return subdirs, nil
			}

			entry, err := ParseDirEntry(slot)
			if err != nil {
				return nil, err
			}

			if entry.IsLongName() {
				lfn, err := ParseLFNEntry(slot)
				if err != nil {
					return nil, err
				}
				pendingLFN = append(pendingLFN, lfn)
				continue
			}
			if entry.IsVolumeLabel() {
				pendingLFN = pendingLFN[:0]
				continue
			}

			longName := assembleLongName(pendingLFN)
			pendingLFN = pendingLFN[:0]

			deleted := slot[0] == DeletedMarker
			name := entry.ShortName()
			if !deleted && (name == "." || name == "..") {
				continue
			}

			record := Record{
				Id:            len(dt.Records),
				Entry:         entry,
				Fname:         name,
				LongName:      longName,
				ParentCluster: task.cluster,
				ParentPath:    task.path,
				SlotIndex:     count*entriesPerCluster + offset/DirEntrySize,
				Deleted:       deleted,
				Folder:        entry.IsDirectory(),
				Geometry:      dt.Geometry,
			}
			dt.Records = append(dt.Records, record)

			if !deleted && record.Folder {
				subdirs = append(subdirs, directoryTask{
					cluster: entry.StartCluster(),
					path:    task.path + "/" + record.GetFname(),
				})
			}
		}

		if int(cluster) >= len(dt.FAT) {
			break
		}
		next := dt.FAT[cluster] & EntryMask
		if next >= EOCThreshold {
			break
		}
		cluster = next
	}
	return subdirs, nil
}

// assembleLongName joins long filename parts, stored on disk in reverse order.
// The sequence byte of a deleted part is lost to the deletion marker so
// ordering relies on slot position alone.
func assembleLongName(parts []LFNEntry) string {
	if len(parts) == 0 {
		return ""
	}
	var builder strings.Builder
	for idx := len(parts) - 1; idx >= 0; idx-- {
		builder.WriteString(parts[idx].Name())
	}
	return builder.String()
}

// ReconstructChains walks the cluster chain of every located file and records
// each visited cluster in the volume wide usage map. Live files participate so
// that freed clusters reclaimed by live data show up as claimed during
// overwrite analysis. Zero sized files and files whose start cluster lies
// outside the data region are skipped without any read.
func (dt *DirectoryTable) ReconstructChains() {
	for idx := range dt.Records {
		record := &dt.Records[idx]
		if record.Folder || record.Entry.FileSize == 0 {
			continue
		}
		startCluster := record.Entry.StartCluster()
		if !dt.Geometry.IsValidCluster(startCluster) {
			logger.RecoveryLogger.Warning(fmt.Sprintf("record %d %s start cluster %d outside data region, skipped",
				record.Id, record.GetFname(), startCluster))
			continue
		}
		dt.reconstructChain(record)
	}
}

func (dt *DirectoryTable) reconstructChain(record *Record) {
	clusterSizeB := int64(dt.Geometry.ClusterSizeB())
	expected := expectedClusters(int64(record.Entry.FileSize), clusterSizeB)
	bound := 2*expected + chainSafetyMargin

	visited := map[uint32]bool{}
	current := record.Entry.StartCluster()

	record.Chain = append(record.Chain, current)
	visited[current] = true
	dt.UsageMap.Record(current, record.Id, record.Deleted, 0)

	for len(record.Chain) < bound {
		if int(current) >= len(dt.FAT) {
			return
		}
		next := dt.FAT[current] & EntryMask
		if next >= EOCThreshold {
			record.chainEndedAtEOC = true
			return
		}
		if next == BadClusterMark || !dt.Geometry.IsValidCluster(next) {
			return
		}

		writeOffset := int64(len(record.Chain)) * clusterSizeB
		record.Chain = append(record.Chain, next)
		dt.UsageMap.Record(next, record.Id, record.Deleted, writeOffset)

		if visited[next] {
			// loop, the revisited cluster stays appended for analysis
			return
		}
		visited[next] = true
		current = next
	}
}

// AnalyzeRecords computes the forensic status of every deleted file whose
// chain was reconstructed. Live files feed the usage map but carry no status.
func (dt *DirectoryTable) AnalyzeRecords() {
	clusterSizeB := int64(dt.Geometry.ClusterSizeB())

	analyzed := 0
	for idx := range dt.Records {
		record := &dt.Records[idx]
		if !record.Deleted || record.Folder || len(record.Chain) == 0 {
			continue
		}
		analysis := AnalyzeChain(record.Chain, dt.GapThreshold)
		overwrite := AnalyzeOverwrite(record.Chain, record.Id, dt.UsageMap)
		expected := expectedClusters(int64(record.Entry.FileSize), clusterSizeB)
		record.Status = buildStatus(record, analysis, overwrite, expected, clusterSizeB)
		analyzed++
	}

	msg := fmt.Sprintf("Analyzed %d deleted files", analyzed)
	fmt.Printf(" %s \n", msg)
	logger.RecoveryLogger.Info(msg)
}

func expectedClusters(sizeB int64, clusterSizeB int64) int {
	if sizeB <= 0 {
		return 0
	}
	return int((sizeB + clusterSizeB - 1) / clusterSizeB)
}

// GetDeletedRecords returns the deleted files, folders excluded.
func (dt DirectoryTable) GetDeletedRecords() []Record {
	return utils.Filter(dt.Records, func(record Record) bool {
		return record.Deleted && !record.Folder
	})
}

package FAT32

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/fsforensics/FAT32Recovery/logger"
	"github.com/fsforensics/FAT32Recovery/readers"
	"github.com/fsforensics/FAT32Recovery/utils"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Record is one located directory entry together with everything the recovery
// pass learned about it. Deleted files that were skipped carry a nil Status.
type Record struct {
	Id            int
	Entry         DirEntry
	Fname         string
	LongName      string
	ParentCluster uint32
	ParentPath    string
	SlotIndex     int
	Deleted       bool
	Folder        bool
	Chain         []uint32
	Status        *RecoveryStatus
	Geometry      Geometry

	chainEndedAtEOC bool
}

func (record Record) GetID() int {
	return record.Id
}

// GetFname prefers the long filename when its parts were present.
func (record Record) GetFname() string {
	if record.LongName != "" {
		return record.LongName
	}
	return record.Fname
}

func (record Record) GetFullPath() string {
	return record.ParentPath + "/" + record.GetFname()
}

func (record Record) GetLogicalFileSize() int64 {
	return int64(record.Entry.FileSize)
}

func (record Record) GetStartCluster() uint32 {
	return record.Entry.StartCluster()
}

func (record Record) GetParentCluster() uint32 {
	return record.ParentCluster
}

func (record Record) GetStatus() *RecoveryStatus {
	return record.Status
}

func (record Record) IsDeleted() bool {
	return record.Deleted
}

func (record Record) IsFolder() bool {
	return record.Folder
}

// IsSkipped reports whether a deleted file was left without a recovery
// attempt, zero size or a start cluster outside the data region.
func (record Record) IsSkipped() bool {
	return record.Deleted && !record.Folder && record.Status == nil
}

func (record Record) HasFilename(filename string) bool {
	return record.GetFname() == filename
}

func (record Record) HasFilenames(filenames []string) bool {
	for _, filename := range filenames {
		if record.HasFilename(filename) {
			return true
		}
	}
	return false
}

func (record Record) HasFilenameExtension(extension string) bool {
	extension = strings.TrimPrefix(extension, ".")
	if strings.HasSuffix(record.GetFname(), strings.ToUpper("."+extension)) ||
		strings.HasSuffix(record.GetFname(), strings.ToLower("."+extension)) {
		return true
	}
	return false
}

func (record Record) HasPath(filespath string) bool {
	return record.GetFullPath() == filespath
}

func (record Record) HasPrefix(prefix string) bool {
	return strings.HasPrefix(record.GetFname(), prefix)
}

func (record Record) HasSuffix(suffix string) bool {
	return strings.HasSuffix(record.GetFname(), suffix)
}

// UsesCluster reports whether the cluster belongs to this record, either as
// its start cluster or anywhere in its reconstructed chain.
func (record Record) UsesCluster(cluster uint32) bool {
	if record.GetStartCluster() == cluster {
		return true
	}
	for _, chainCluster := range record.Chain {
		if chainCluster == cluster {
			return true
		}
	}
	return false
}

func (record Record) GetCreationTime() time.Time {
	return DecodeFATTimestamp(record.Entry.CreateDate, record.Entry.CreateTime)
}

func (record Record) GetModificationTime() time.Time {
	return DecodeFATTimestamp(record.Entry.WriteDate, record.Entry.WriteTime)
}

func (record Record) GetAccessTime() time.Time {
	return DecodeFATTimestamp(record.Entry.AccessDate, 0)
}

func (record Record) getType() string {
	switch {
	case record.Deleted && record.Folder:
		return "Folder Deleted"
	case record.Deleted:
		return "File Deleted"
	case record.Folder:
		return "Folder Allocated"
	default:
		return "File Allocated"
	}
}

func (record Record) ShowInfo() {
	fmt.Printf("record %d %s size %d start cluster %d type %s\n", record.Id, record.GetFname(),
		record.Entry.FileSize, record.GetStartCluster(), record.getType())
}

func (record Record) ShowPath(partitionId int) {
	fmt.Printf("Partition%d%s/%s\n", partitionId, record.ParentPath, record.GetFname())
}

func (record Record) ShowTimestamps() {
	fmt.Printf("c %s m %s a %s ", record.GetCreationTime().Format(time.RFC3339),
		record.GetModificationTime().Format(time.RFC3339),
		record.GetAccessTime().Format("2006-01-02"))
}

func (record Record) ShowChain() {
	fmt.Printf("%s \n", record.GetFname())
	nofFragments := 0
	for idx, cluster := range record.Chain {
		fmt.Printf(" cl %d sector %d \n", cluster, record.Geometry.ClusterToSector(cluster))
		if idx > 0 && cluster != record.Chain[idx-1]+1 {
			nofFragments++
		}
	}
	fmt.Printf("Total Clusters %d Total Fragments %d\n", len(record.Chain), nofFragments)
}

// GetStatusSummary returns the one line verdict written to the recovery log.
func (record Record) GetStatusSummary() string {
	switch {
	case record.Folder:
		return "folder, no data to export"
	case !record.Deleted:
		return "allocated"
	case record.IsSkipped():
		return "skipped, nothing to recover"
	}
	status := record.Status
	verdict := "recoverable"
	if status.IsCorrupted {
		verdict = "corrupted"
	}
	return fmt.Sprintf("%s fragmentation %.2f overwritten %.1f%% recovered %d of %d bytes",
		verdict, status.Fragmentation, 100*status.OverwritePercentage,
		status.RecoveredBytes, record.Entry.FileSize)
}

func (record Record) ShowStatus() {
	if record.Status == nil {
		fmt.Printf("record %d %s no status\n", record.Id, record.GetFname())
		return
	}
	status := record.Status
	fmt.Printf("record %d %s corrupted %t fragmentation %.2f back jumps %d repeated %d large gaps %d overwritten %.1f%%\n",
		record.Id, record.GetFname(), status.IsCorrupted, status.Fragmentation,
		status.BackJumps, status.RepeatedClusters, status.LargeGaps, 100*status.OverwritePercentage)
	if status.HasInvalidFileName || status.HasInvalidExtension {
		fmt.Printf(" partially overwritten slot, name valid %t extension valid %t\n",
			!status.HasInvalidFileName, !status.HasInvalidExtension)
	}
	if len(status.ProblematicClusters) > 0 {
		fmt.Printf(" problematic clusters %v\n", status.ProblematicClusters)
	}
}

// LocateData reads the chain clusters in order and hands the content to the
// results channel truncated to the declared size. Overwritten clusters are
// still read, the status tells the caller which bytes not to trust.
func (record Record) LocateData(volReader readers.VolumeReader, results chan<- utils.RecoveredFile) {
	p := message.NewPrinter(language.Greek)

	lSize := int(record.GetLogicalFileSize())

	var buf bytes.Buffer
	buf.Grow(lSize)

	clusterSizeB := record.Geometry.ClusterSizeB()
	for _, cluster := range record.Chain {
		if buf.Len() >= lSize {
			break
		}
		data, err := volReader.ReadSectors(record.Geometry.ClusterToSector(cluster), clusterSizeB)
		if err != nil {
			msg := fmt.Sprintf("reading cluster %d of record %d: %v", cluster, record.Id, err)
			logger.RecoveryLogger.Warning(msg)
			break
		}
		buf.Write(data)
	}

	content := buf.Bytes()
	if len(content) > lSize {
		content = content[:lSize]
	}

	msg := p.Sprintf("recovered %d bytes in %d clusters for %s", len(content), len(record.Chain), record.GetFname())
	logger.RecoveryLogger.Info(msg)

	results <- utils.RecoveredFile{Id: record.Id, Fname: record.GetFname(), Content: content}
}

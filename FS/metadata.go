package metadata

import (
	"github.com/fsforensics/FAT32Recovery/readers"
	"github.com/fsforensics/FAT32Recovery/utils"
)

// Record is the filesystem independent view of one located directory entry.
type Record interface {
	HasFilenameExtension(string) bool
	HasFilenames([]string) bool
	HasPath(string) bool
	HasSuffix(string) bool
	HasPrefix(string) bool
	UsesCluster(uint32) bool
	IsDeleted() bool
	IsFolder() bool
	IsSkipped() bool
	GetFname() string
	GetFullPath() string
	GetID() int
	GetLogicalFileSize() int64
	GetStartCluster() uint32
	GetParentCluster() uint32
	GetStatusSummary() string
	ShowInfo()
	ShowTimestamps()
	ShowChain()
	ShowStatus()
	ShowPath(int)

	LocateData(readers.VolumeReader, chan<- utils.RecoveredFile)
}

func FilterByExtensions(records []Record, extensions []string) []Record {
	var filteredRecords []Record
	for _, extension := range extensions {
		filteredRecords = append(filteredRecords, FilterByExtension(records, extension)...)
	}
	return filteredRecords
}

func FilterByExtension(records []Record, extension string) []Record {

	return utils.Filter(records, func(record Record) bool {
		return record.HasFilenameExtension(extension)
	})

}

func FilterByNames(records []Record, filenames []string) []Record {

	return utils.Filter(records, func(record Record) bool {
		return record.HasFilenames(filenames)
	})

}

func FilterByPath(records []Record, filespath string) []Record {
	return utils.Filter(records, func(record Record) bool {
		return record.HasPath(filespath)
	})
}

func FilterByName(records []Record, filename string) []Record {
	return utils.Filter(records, func(record Record) bool {
		return record.HasFilenames([]string{filename})
	})

}

func FilterByIds(records []Record, ids []int) []Record {
	return utils.Filter(records, func(record Record) bool {
		for _, id := range ids {
			if record.GetID() == id {
				return true
			}
		}
		return false
	})
}

func FilterByCluster(records []Record, cluster uint32) []Record {
	return utils.Filter(records, func(record Record) bool {
		return record.UsesCluster(cluster)
	})
}

func FilterByPrefixSuffix(records []Record, prefix string, suffix string) []Record {

	return utils.Filter(records, func(record Record) bool {
		return record.HasPrefix(prefix) && record.HasSuffix(suffix)
	})

}

func FilterOutFiles(records []Record) []Record {
	return utils.Filter(records, func(record Record) bool {
		return record.IsFolder()
	})
}

func FilterOutFolders(records []Record) []Record {
	return utils.Filter(records, func(record Record) bool {
		return !record.IsFolder()
	})
}

func FilterBySize(records []Record, sizeB int64) []Record {
	return utils.Filter(records, func(record Record) bool {
		return record.GetLogicalFileSize() == sizeB
	})
}

func FilterDeleted(records []Record, includeDeleted bool) []Record {
	return utils.Filter(records, func(record Record) bool {
		if includeDeleted {
			return record.IsDeleted()
		} else {
			return !record.IsDeleted()
		}

	})
}

// FilterRecoverable drops folders and deleted files that were skipped, what
// remains can be handed to the export stage.
func FilterRecoverable(records []Record) []Record {
	return utils.Filter(records, func(record Record) bool {
		return record.IsDeleted() && !record.IsFolder() && !record.IsSkipped()
	})
}

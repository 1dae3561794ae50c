package filters

import (
	metadata "github.com/fsforensics/FAT32Recovery/FS"
)

type Filter interface {
	Execute(records []metadata.Record) []metadata.Record
}

type NameFilter struct {
	Filenames []string
}

func (nameFilter NameFilter) Execute(records []metadata.Record) []metadata.Record {
	return metadata.FilterByNames(records, nameFilter.Filenames)
}

type PathFilter struct {
	NamePath string
}

func (pathFilter PathFilter) Execute(records []metadata.Record) []metadata.Record {
	return metadata.FilterByPath(records, pathFilter.NamePath)
}

type ExtensionsFilter struct {
	Extensions []string
}

func (extensionsFilter ExtensionsFilter) Execute(records []metadata.Record) []metadata.Record {
	return metadata.FilterByExtensions(records, extensionsFilter.Extensions)
}

// IdsFilter keeps the records selected by the ids the info view prints.
type IdsFilter struct {
	Ids []int
}

func (idsFilter IdsFilter) Execute(records []metadata.Record) []metadata.Record {
	return metadata.FilterByIds(records, idsFilter.Ids)
}

// ClusterFilter keeps the files whose chain claims the given cluster, used to
// answer which file owned a cluster before deletion.
type ClusterFilter struct {
	Cluster uint32
}

func (clusterFilter ClusterFilter) Execute(records []metadata.Record) []metadata.Record {
	return metadata.FilterByCluster(records, clusterFilter.Cluster)
}

type SizeFilter struct {
	SizeB int64
}

func (sizeFilter SizeFilter) Execute(records []metadata.Record) []metadata.Record {
	return metadata.FilterBySize(records, sizeFilter.SizeB)
}

type DeletedFilter struct {
	Include bool
}

func (deletedFilter DeletedFilter) Execute(records []metadata.Record) []metadata.Record {
	if deletedFilter.Include {
		return metadata.FilterDeleted(records, deletedFilter.Include)
	}
	return records
}

// RecoverableFilter keeps deleted files that still have something to pull,
// folders and skipped entries are dropped.
type RecoverableFilter struct {
	Include bool
}

func (recoverableFilter RecoverableFilter) Execute(records []metadata.Record) []metadata.Record {
	if recoverableFilter.Include {
		return metadata.FilterRecoverable(records)
	}
	return records
}

type FoldersFilter struct {
	Include bool
}

func (foldersFilter FoldersFilter) Execute(records []metadata.Record) []metadata.Record {
	if !foldersFilter.Include {
		return metadata.FilterOutFolders(records)
	}
	return records
}

type PrefixesSuffixesFilter struct {
	Prefixes []string
	Suffixes []string
}

func (prefSufFilter PrefixesSuffixesFilter) Execute(records []metadata.Record) []metadata.Record {
	for idx, prefix := range prefSufFilter.Prefixes {
		records = metadata.FilterByPrefixSuffix(records, prefix, prefSufFilter.Suffixes[idx])
	}

	return records

}

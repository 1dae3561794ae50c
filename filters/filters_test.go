package filters

import (
	"strings"
	"testing"

	metadata "github.com/fsforensics/FAT32Recovery/FS"
	"github.com/fsforensics/FAT32Recovery/readers"
	"github.com/fsforensics/FAT32Recovery/utils"
	"github.com/stretchr/testify/assert"
)

type stubRecord struct {
	id      int
	name    string
	path    string
	sizeB   int64
	start   uint32
	chain   []uint32
	deleted bool
	folder  bool
	skipped bool
}

func (r stubRecord) HasFilenameExtension(extension string) bool {
	extension = strings.TrimPrefix(extension, ".")
	return strings.HasSuffix(strings.ToUpper(r.name), "."+strings.ToUpper(extension))
}

func (r stubRecord) HasFilenames(filenames []string) bool {
	for _, filename := range filenames {
		if r.name == filename {
			return true
		}
	}
	return false
}

func (r stubRecord) HasPath(namePath string) bool  { return r.path == namePath }
func (r stubRecord) HasSuffix(suffix string) bool  { return strings.HasSuffix(r.name, suffix) }
func (r stubRecord) HasPrefix(prefix string) bool  { return strings.HasPrefix(r.name, prefix) }
func (r stubRecord) IsDeleted() bool               { return r.deleted }
func (r stubRecord) IsFolder() bool                { return r.folder }
func (r stubRecord) IsSkipped() bool               { return r.skipped }
func (r stubRecord) GetFname() string              { return r.name }
func (r stubRecord) GetFullPath() string           { return r.path + "/" + r.name }
func (r stubRecord) GetID() int                    { return r.id }
func (r stubRecord) GetLogicalFileSize() int64     { return r.sizeB }
func (r stubRecord) GetStartCluster() uint32       { return r.start }
func (r stubRecord) GetParentCluster() uint32      { return 0 }
func (r stubRecord) GetStatusSummary() string      { return "" }
func (r stubRecord) ShowInfo()                     {}
func (r stubRecord) ShowTimestamps()               {}
func (r stubRecord) ShowChain()                    {}
func (r stubRecord) ShowStatus()                   {}
func (r stubRecord) ShowPath(partitionId int)      {}

func (r stubRecord) UsesCluster(cluster uint32) bool {
	if r.start == cluster {
		return true
	}
	for _, chainCluster := range r.chain {
		if chainCluster == cluster {
			return true
		}
	}
	return false
}

func (r stubRecord) LocateData(volReader readers.VolumeReader, results chan<- utils.RecoveredFile) {
}

func sampleRecords() []metadata.Record {
	return []metadata.Record{
		stubRecord{id: 0, name: "REPORT.TXT", path: "/DOCS", sizeB: 9000, start: 100,
			chain: []uint32{100, 101, 102}, deleted: true},
		stubRecord{id: 1, name: "PHOTO.JPG", path: "/MEDIA", sizeB: 50000, start: 200,
			chain: []uint32{200}, deleted: true},
		stubRecord{id: 2, name: "NOTES.TXT", path: "/DOCS", sizeB: 100, start: 101, deleted: false},
		stubRecord{id: 3, name: "ARCHIVE", path: "", folder: true, deleted: true},
		stubRecord{id: 4, name: "EMPTY.TXT", path: "/DOCS", sizeB: 0, deleted: true, skipped: true},
	}
}

func names(records []metadata.Record) []string {
	var out []string
	for _, record := range records {
		out = append(out, record.GetFname())
	}
	return out
}

func TestExtensionsFilter(t *testing.T) {
	filtered := ExtensionsFilter{Extensions: []string{"txt"}}.Execute(sampleRecords())
	assert.Equal(t, []string{"REPORT.TXT", "NOTES.TXT", "EMPTY.TXT"}, names(filtered))
}

func TestNameFilter(t *testing.T) {
	filtered := NameFilter{Filenames: []string{"PHOTO.JPG", "ARCHIVE"}}.Execute(sampleRecords())
	assert.Equal(t, []string{"PHOTO.JPG", "ARCHIVE"}, names(filtered))
}

func TestIdsFilter(t *testing.T) {
	filtered := IdsFilter{Ids: []int{0, 3}}.Execute(sampleRecords())
	assert.Equal(t, []string{"REPORT.TXT", "ARCHIVE"}, names(filtered))
}

func TestPathFilter(t *testing.T) {
	filtered := PathFilter{NamePath: "/DOCS"}.Execute(sampleRecords())
	assert.Equal(t, []string{"REPORT.TXT", "NOTES.TXT", "EMPTY.TXT"}, names(filtered))
}

func TestClusterFilter(t *testing.T) {
	// cluster 101 belongs to the deleted chain and is the live start cluster
	filtered := ClusterFilter{Cluster: 101}.Execute(sampleRecords())
	assert.Equal(t, []string{"REPORT.TXT", "NOTES.TXT"}, names(filtered))
}

func TestSizeFilter(t *testing.T) {
	filtered := SizeFilter{SizeB: 9000}.Execute(sampleRecords())
	assert.Equal(t, []string{"REPORT.TXT"}, names(filtered))
}

func TestDeletedFilter(t *testing.T) {
	filtered := DeletedFilter{Include: true}.Execute(sampleRecords())
	assert.NotContains(t, names(filtered), "NOTES.TXT")

	passthrough := DeletedFilter{}.Execute(sampleRecords())
	assert.Len(t, passthrough, 5)
}

func TestRecoverableFilter(t *testing.T) {
	filtered := RecoverableFilter{Include: true}.Execute(sampleRecords())
	assert.Equal(t, []string{"REPORT.TXT", "PHOTO.JPG"}, names(filtered))
}

func TestFoldersFilter(t *testing.T) {
	filtered := FoldersFilter{Include: false}.Execute(sampleRecords())
	assert.NotContains(t, names(filtered), "ARCHIVE")
}

func TestPrefixesSuffixesFilter(t *testing.T) {
	filtered := PrefixesSuffixesFilter{Prefixes: []string{"REP"}, Suffixes: []string{"TXT"}}.
		Execute(sampleRecords())
	assert.Equal(t, []string{"REPORT.TXT"}, names(filtered))
}

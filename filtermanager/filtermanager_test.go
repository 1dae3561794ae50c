package filtermanager

import (
	"testing"

	metadata "github.com/fsforensics/FAT32Recovery/FS"
	"github.com/fsforensics/FAT32Recovery/FS/FAT32"
	"github.com/fsforensics/FAT32Recovery/filters"
	"github.com/stretchr/testify/assert"
)

func TestApplyFiltersChainsInOrder(t *testing.T) {
	records := []metadata.Record{
		FAT32.Record{Id: 0, Fname: "REPORT.TXT", Deleted: true},
		FAT32.Record{Id: 1, Fname: "PHOTO.JPG", Deleted: true},
		FAT32.Record{Id: 2, Fname: "NOTES.TXT"},
	}

	flm := FilterManager{}
	flm.Register(filters.ExtensionsFilter{Extensions: []string{"txt"}})
	flm.Register(filters.DeletedFilter{Include: true})

	filtered := flm.ApplyFilters(records)

	assert.Len(t, filtered, 1)
	assert.Equal(t, "REPORT.TXT", filtered[0].GetFname())
}

func TestApplyFiltersNoFiltersKeepsAll(t *testing.T) {
	records := []metadata.Record{FAT32.Record{Fname: "A.TXT"}}

	flm := FilterManager{}

	assert.Equal(t, records, flm.ApplyFilters(records))
}

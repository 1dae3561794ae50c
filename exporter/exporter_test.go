package exporter

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	metadata "github.com/fsforensics/FAT32Recovery/FS"
	"github.com/fsforensics/FAT32Recovery/FS/FAT32"
	"github.com/fsforensics/FAT32Recovery/disk"
	"github.com/fsforensics/FAT32Recovery/utils"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestExportDataIdStrategy(t *testing.T) {
	fs := afero.NewMemMapFs()
	exp := Exporter{Location: "recovered", Strategy: "Id", Fs: fs}

	results := make(chan utils.RecoveredFile, 2)
	results <- utils.RecoveredFile{Id: 3, Fname: "REPORT.TXT", Content: []byte("first")}
	results <- utils.RecoveredFile{Id: 7, Fname: "REPORT.TXT", Content: []byte("second")}
	close(results)

	wg := new(sync.WaitGroup)
	wg.Add(1)
	exp.ExportData(wg, results)

	first, err := afero.ReadFile(fs, filepath.Join("recovered", "[3]REPORT.TXT"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("first"), first)

	second, err := afero.ReadFile(fs, filepath.Join("recovered", "[7]REPORT.TXT"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("second"), second)
}

func TestExportDataOverwriteStrategy(t *testing.T) {
	fs := afero.NewMemMapFs()
	exp := Exporter{Location: "recovered", Strategy: "overwrite", Fs: fs}

	results := make(chan utils.RecoveredFile, 2)
	results <- utils.RecoveredFile{Id: 3, Fname: "REPORT.TXT", Content: []byte("first")}
	results <- utils.RecoveredFile{Id: 7, Fname: "REPORT.TXT", Content: []byte("second")}
	close(results)

	wg := new(sync.WaitGroup)
	wg.Add(1)
	exp.ExportData(wg, results)

	data, err := afero.ReadFile(fs, filepath.Join("recovered", "REPORT.TXT"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	entries, err := afero.ReadDir(fs, "recovered")
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportRecordsGuards(t *testing.T) {
	fs := afero.NewMemMapFs()

	exp := Exporter{Location: "", Strategy: "Id", Fs: fs}
	exp.ExportRecords([]metadata.Record{FAT32.Record{Id: 1}}, disk.Disk{}, 0)

	exp = Exporter{Location: "recovered", Strategy: "Id", Fs: fs}
	exp.ExportRecords(nil, disk.Disk{}, 0)

	exists, err := afero.DirExists(fs, "recovered")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestWriteRecoveryLog(t *testing.T) {
	fs := afero.NewMemMapFs()
	exp := Exporter{Location: "recovered", Fs: fs}

	recovered := FAT32.Record{
		Id: 1, Fname: "REPORT.TXT", Deleted: true,
		Entry: FAT32.DirEntry{FileSize: 5000, FirstClusterLO: 100},
		Status: &FAT32.RecoveryStatus{IsCorrupted: true, Fragmentation: 0.5,
			OverwritePercentage: 0.25, RecoveredBytes: 4096},
	}
	skipped := FAT32.Record{Id: 2, Fname: "EMPTY.TXT", Deleted: true}
	folder := FAT32.Record{Id: 3, Fname: "DOCS", Folder: true}

	exp.WriteRecoveryLog([]metadata.Record{recovered, skipped, folder}, 0)

	data, err := afero.ReadFile(fs, filepath.Join("recovered", RecoveryLogName))
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "partition 0 records 3", lines[0])
	assert.Contains(t, lines[1], "record 1 /REPORT.TXT size 5000 start cluster 100 corrupted")
	assert.Contains(t, lines[1], "recovered 4096 of 5000 bytes")
	assert.Contains(t, lines[2], "skipped, nothing to recover")
	assert.Contains(t, lines[3], "folder, no data to export")
}

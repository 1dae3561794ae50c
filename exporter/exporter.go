package exporter

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	metadata "github.com/fsforensics/FAT32Recovery/FS"
	"github.com/fsforensics/FAT32Recovery/disk"
	"github.com/fsforensics/FAT32Recovery/logger"
	"github.com/fsforensics/FAT32Recovery/utils"
	"github.com/spf13/afero"
)

const RecoveryLogName = "recovery.log"

// Exporter writes recovered payloads under Location. Strategy "Id" prefixes
// each filename with the record id so two deleted files with the same name do
// not overwrite each other. Fs is swappable so tests run against an in memory
// filesystem.
type Exporter struct {
	Location string
	Hash     string
	Strategy string
	Fs       afero.Fs
}

func (exp Exporter) fs() afero.Fs {
	if exp.Fs == nil {
		return afero.NewOsFs()
	}
	return exp.Fs
}

func (exp Exporter) exportName(id int, fname string) string {
	if exp.Strategy == "Id" {
		return fmt.Sprintf("[%d]%s", id, fname)
	}
	return fname
}

func (exp Exporter) ExportData(wg *sync.WaitGroup, results <-chan utils.RecoveredFile) {
	defer wg.Done()

	for result := range results {
		exp.CreateFile(exp.exportName(result.Id, result.Fname), result.Content)
	}

}

func (exp Exporter) ExportRecords(records []metadata.Record, physicalDisk disk.Disk, partitionNum int) {
	if exp.Location == "" {
		msg := "No export location was set"
		logger.RecoveryLogger.Warning(msg)
		fmt.Printf("%s \n", msg)
		return
	}

	if len(records) == 0 {
		msg := "No records  found in Partition"
		logger.RecoveryLogger.Warning(msg)
		fmt.Printf("%s \n", msg)
		return
	}

	fmt.Printf("About to export %d files\n", len(records))
	results := make(chan utils.RecoveredFile, len(records))

	wg := new(sync.WaitGroup)
	wg.Add(2)

	go physicalDisk.Worker(wg, records, results, partitionNum) //producer
	go exp.ExportData(wg, results)                             //pipeline copies channel

	wg.Wait()
}

func (exp Exporter) HashFiles(records []metadata.Record) {
	hash := strings.ToUpper(exp.Hash)
	if hash != "MD5" && hash != "SHA1" {
		fmt.Printf("Only Supported Hashes are MD5 or SHA1 and not %s!\n", exp.Hash)
		return
	}
	fmt.Printf("Hashing Stage\n")
	for _, record := range records {
		if record.IsFolder() || record.IsSkipped() {
			continue
		}
		fname := exp.exportName(record.GetID(), record.GetFname())

		data, e := afero.ReadFile(exp.fs(), filepath.Join(exp.Location, fname))
		if e != nil {
			fmt.Printf("ERROR %s", e)
			continue
		}
		if hash == "MD5" {
			fmt.Printf("File %s has %s %s \n", fname, hash, utils.GetMD5(data))
		} else {
			fmt.Printf("File %s has %s %s \n", fname, hash, utils.GetSHA1(data))
		}

	}

}

// WriteRecoveryLog keeps the verdict of the pass next to the exported
// payloads, one status line per record.
func (exp Exporter) WriteRecoveryLog(records []metadata.Record, partitionNum int) {
	if exp.Location == "" {
		msg := "No export location was set, recovery log not written"
		logger.RecoveryLogger.Warning(msg)
		fmt.Printf("%s \n", msg)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("partition %d records %d\n", partitionNum, len(records)))
	for _, record := range records {
		sb.WriteString(fmt.Sprintf("record %d %s size %d start cluster %d %s\n",
			record.GetID(), record.GetFullPath(), record.GetLogicalFileSize(),
			record.GetStartCluster(), record.GetStatusSummary()))
	}

	exp.CreateFile(RecoveryLogName, []byte(sb.String()))

	msg := fmt.Sprintf("Recovery log for partition %d written to %s",
		partitionNum, filepath.Join(exp.Location, RecoveryLogName))
	logger.RecoveryLogger.Info(msg)
	fmt.Printf("%s\n", msg)
}

func (exp Exporter) CreateFile(fname string, data []byte) {
	fs := exp.fs()
	fullpath := filepath.Join(exp.Location, fname)
	err := fs.MkdirAll(exp.Location, 0750)
	if err != nil {
		fmt.Println(err)
	}

	err = afero.WriteFile(fs, fullpath, data, 0600)
	if err != nil {
		msg := fmt.Sprintf("writing %s: %v", fullpath, err)
		logger.RecoveryLogger.Error(msg)
		fmt.Printf("%s \n", msg)
	}

}

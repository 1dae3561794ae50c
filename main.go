package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"path/filepath"
	"strings"
	"time"

	EWFLogger "github.com/aarsakian/EWF_Reader/logger"
	metadata "github.com/fsforensics/FAT32Recovery/FS"
	"github.com/fsforensics/FAT32Recovery/config"
	"github.com/fsforensics/FAT32Recovery/disk"
	"github.com/fsforensics/FAT32Recovery/exporter"
	"github.com/fsforensics/FAT32Recovery/filtermanager"
	"github.com/fsforensics/FAT32Recovery/filters"
	RecoveryLogger "github.com/fsforensics/FAT32Recovery/logger"
	"github.com/fsforensics/FAT32Recovery/reporter"
	"github.com/fsforensics/FAT32Recovery/tree"
	"github.com/fsforensics/FAT32Recovery/utils"
)

func main() {
	var location string
	evidencefile := flag.String("evidence", "", "path to image file (EWF/Raw formats are supported)")
	drive := flag.String("drive", "", "drive to recover from, a letter (C) or a physical drive number (0)")
	configFile := flag.String("config", "fat32recovery.yml", "path to yaml file with default options")

	flag.StringVar(&location, "location", "", "the path to export recovered files")
	selectedEntries := flag.String("entries", "", "select records by id, use comma as a seperator")
	exportFiles := flag.String("filenames", "", "files to export use comma as a seperator")
	fileExtensions := flag.String("extensions", "", "search records by extensions use comma as a seperator")
	exportFilesPath := flag.String("path", "", "path of files to be exported e.g. /DOCS/REPORTS")
	targetCluster := flag.Int("cluster", -1, "locate the files whose chain claims the cluster")
	targetFileSize := flag.Int64("filesize", -1, "select files by their logical size in bytes")

	partitionNum := flag.Int("partition", 0, "select partition number")
	gapThreshold := flag.Int("gapthreshold", 64, "cluster distance before a chain jump counts as a large gap")
	nosubdirs := flag.Bool("nosubdirs", false, "scan only the root directory")
	norecover := flag.Bool("norecover", false, "analyze without exporting payloads")
	noanalyze := flag.Bool("noanalyze", false, "do not print the recovery status of each record")
	filelog := flag.Bool("filelog", false, "write a recovery log next to the exported files")

	deleted := flag.Bool("deleted", false, "show deleted records")
	recoverable := flag.Bool("recoverable", false, "keep only deleted records whose chain was rebuilt")
	buildtree := flag.Bool("tree", false, "reconstruct directory tree")

	showtree := flag.Bool("showtree", false, "show directory tree")
	showInfo := flag.Bool("showinfo", false, "show entry information of records")
	showTimestamps := flag.Bool("showtimestamps", false, "show all timestamps")
	showChain := flag.Bool("showchain", false, "show the cluster chain of each record")
	showStatus := flag.Bool("showstatus", false, "show the recovery status of each record")
	showFull := flag.Bool("showfull", false, "show full information about record")
	showPath := flag.Bool("showpath", false, "show the full path of the selected files")

	listPartitions := flag.Bool("listpartitions", false, "list partitions")
	volinfo := flag.Bool("volinfo", false, "show volume information")
	hashFiles := flag.String("hash", "", "hash exported files, enter md5 or sha1")
	strategy := flag.String("strategy", "overwrite", "what strategy will be used for files sharing the same name, default is ovewrite, or use Id")
	logactive := flag.Bool("log", false, "enable logging")

	profile := flag.Bool("profile", false, "profile memory usage")

	flag.Parse() //ready to parse

	cfg := config.Default()
	if err := config.Read(*configFile, &cfg); err != nil {
		log.Fatalln(err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "drive":
			cfg.Drive = *drive
		case "evidence":
			cfg.Evidence = *evidencefile
		case "location":
			cfg.OutputFolder = location
		case "cluster":
			cfg.TargetCluster = *targetCluster
		case "filesize":
			cfg.TargetFileSize = *targetFileSize
		case "gapthreshold":
			cfg.GapThreshold = *gapThreshold
		case "nosubdirs":
			cfg.ScanSubdirs = !*nosubdirs
		case "norecover":
			cfg.Recover = !*norecover
		case "noanalyze":
			cfg.Analyze = !*noanalyze
		case "filelog":
			cfg.CreateFileLog = *filelog
		case "log":
			cfg.LoggingActive = *logactive
		case "strategy":
			cfg.NamingStrategy = *strategy
		case "hash":
			cfg.HashExportedWith = *hashFiles
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		return
	}

	var err error
	var recordsPerPartition map[int][]metadata.Record

	recordsTree := tree.Tree{}
	if *profile {
		go func() {
			log.Println("pprof listening on :6060")
			log.Println(http.ListenAndServe("localhost:6060", nil))
		}()
	}

	rp := reporter.Reporter{
		ShowInfo:       *showInfo,
		ShowTimestamps: *showTimestamps,
		ShowChain:      *showChain,
		ShowStatus:     *showStatus || cfg.Analyze,
		ShowPath:       *showPath,
		ShowFull:       *showFull,
		ShowTree:       *showtree,
	}

	if cfg.LoggingActive {
		now := time.Now()
		logfilename := filepath.Join(cfg.LogFolder, "logs"+now.Format("2006-01-02T15_04_05")+".txt")
		RecoveryLogger.InitializeLogger(cfg.LoggingActive, logfilename)
		EWFLogger.InitializeLogger(cfg.LoggingActive, logfilename)

	}

	exp := exporter.Exporter{Location: cfg.OutputFolder, Hash: cfg.HashExportedWith, Strategy: cfg.NamingStrategy}

	flm := filtermanager.FilterManager{}

	if *selectedEntries != "" {
		flm.Register(filters.IdsFilter{Ids: utils.GetEntriesInt(*selectedEntries)})
	}

	if *exportFiles != "" {
		flm.Register(filters.NameFilter{Filenames: utils.GetEntries(*exportFiles)})
	}

	if *fileExtensions != "" {
		flm.Register(filters.ExtensionsFilter{Extensions: strings.Split(*fileExtensions, ",")})
	}

	if *exportFilesPath != "" {
		flm.Register(filters.PathFilter{NamePath: *exportFilesPath})
	}

	if cfg.TargetCluster != -1 {
		flm.Register(filters.ClusterFilter{Cluster: uint32(cfg.TargetCluster)})
	}

	if cfg.TargetFileSize != -1 {
		flm.Register(filters.SizeFilter{SizeB: cfg.TargetFileSize})
	}

	if *deleted {
		flm.Register(filters.DeletedFilter{Include: *deleted})
	}

	if *recoverable {
		flm.Register(filters.RecoverableFilter{Include: *recoverable})
	}

	dsk := new(disk.Disk)
	err = dsk.Initialize(cfg.Drive, cfg.Evidence)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer dsk.Close()

	recordsPerPartition, err = dsk.Process(*partitionNum-1, cfg.GapThreshold, cfg.ScanSubdirs)
	if err != nil {
		fmt.Println(err)
		return
	}

	if *listPartitions {
		dsk.ListPartitions()
	}

	if *volinfo {
		dsk.ShowVolumeInfo()
	}

	for partitionId, records := range recordsPerPartition {

		records = flm.ApplyFilters(records)

		if cfg.Recover && cfg.OutputFolder != "" {
			exp.ExportRecords(records, *dsk, partitionId)
			if cfg.HashExportedWith != "" {
				exp.HashFiles(records)
			}
		}

		if cfg.CreateFileLog {
			exp.WriteRecoveryLog(records, partitionId)
		}

		if *buildtree {
			recordsTree.Build(records)

		}

		rp.Show(records, partitionId, recordsTree)

	}

}

package volume

import (
	metadata "github.com/fsforensics/FAT32Recovery/FS"
	"github.com/fsforensics/FAT32Recovery/readers"
)

type Volume interface {
	Process(readers.DiskReader, int64, int, bool) error
	GetSectorsPerCluster() int
	GetBytesPerSector() uint64
	GetInfo() string
	GetFS() []metadata.Record
	GetSignature() string
	HasValidSignature() bool
}

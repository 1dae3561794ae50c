package readers

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedMode   = errors.New("unsupported reader mode")
	ErrReaderClosed      = errors.New("reader is closed")
	ErrInvalidReadSize   = errors.New("read size is not a multiple of the sector size")
	ErrShortRead         = errors.New("short read from device")
	ErrDeviceUnsupported = errors.New("direct device access requires windows")
)

type DiskReader interface {
	CreateHandler() error
	CloseHandler()
	ReadFile(int64, int) ([]byte, error)
	GetDiskSize() int64
	GetSectorSize() uint32
}

func GetHandler(pathToDisk string, mode string) (DiskReader, error) {

	var dr DiskReader
	switch mode {
	case "physicalDrive", "logicalDrive":
		deviceReader, err := newDeviceReader(pathToDisk)
		if err != nil {
			return nil, err
		}
		dr = deviceReader
	case "ewf":
		dr = &EWFReader{PathToEvidenceFiles: pathToDisk}
	case "raw":
		dr = &RawReader{PathToEvidenceFiles: pathToDisk}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedMode, mode)
	}
	if err := dr.CreateHandler(); err != nil {
		return nil, err
	}

	return dr, nil
}

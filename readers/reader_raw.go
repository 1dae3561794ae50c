package readers

import (
	"fmt"
	"os"

	"github.com/fsforensics/FAT32Recovery/logger"
)

// RawReader serves sector reads from a raw block image file.
type RawReader struct {
	PathToEvidenceFiles string
	fd                  *os.File
}

func (imgreader *RawReader) CreateHandler() error {
	file, err := os.Open(imgreader.PathToEvidenceFiles)
	if err != nil {
		return fmt.Errorf("opening image %q: %w", imgreader.PathToEvidenceFiles, err)
	}
	imgreader.fd = file
	return nil
}

func (imgreader RawReader) CloseHandler() {
	imgreader.fd.Close()
}

func (imgreader RawReader) ReadFile(physicalOffset int64, length int) ([]byte, error) {

	data := make([]byte, length)
	_, err := imgreader.fd.ReadAt(data, physicalOffset)
	logger.RecoveryLogger.Info(fmt.Sprintf("raw read: offset %d len %d", physicalOffset, length))
	if err != nil {
		msg := fmt.Sprintf("error %v reading image at offset %d", err, physicalOffset)
		logger.RecoveryLogger.Error(msg)
		return nil, fmt.Errorf("reading image at offset %d: %w", physicalOffset, err)
	}
	return data, nil

}

func (imgreader RawReader) GetDiskSize() int64 {
	finfo, err := os.Stat(imgreader.PathToEvidenceFiles)
	if err != nil {
		return -1
	}
	return finfo.Size()
}

func (imgreader RawReader) GetSectorSize() uint32 {
	return 512
}

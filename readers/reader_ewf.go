package readers

import (
	"fmt"
	"path"
	"strings"

	ewfLib "github.com/aarsakian/EWF_Reader/ewf"
	ewfutils "github.com/aarsakian/EWF_Reader/ewf/utils"
)

type EWFReader struct {
	PathToEvidenceFiles string
	fd                  ewfLib.EWF_Image
}

func (imgreader *EWFReader) CreateHandler() error {
	extension := path.Ext(imgreader.PathToEvidenceFiles)
	if strings.ToLower(extension) != ".e01" {
		return fmt.Errorf("%w: %q is not an E01 evidence file", ErrUnsupportedMode, imgreader.PathToEvidenceFiles)
	}
	filenames := ewfutils.FindEvidenceFiles(imgreader.PathToEvidenceFiles)
	if len(filenames) == 0 {
		return fmt.Errorf("no evidence segment files found for %q", imgreader.PathToEvidenceFiles)
	}

	imgreader.fd.ParseEvidence(filenames)

	return nil
}

func (imgreader *EWFReader) CloseHandler() {

}

func (imgreader *EWFReader) ReadFile(physicalOffset int64, length int) ([]byte, error) {
	data := imgreader.fd.RetrieveData(physicalOffset, int64(length))
	if len(data) < length {
		return nil, fmt.Errorf("%w: offset %d want %d got %d", ErrShortRead, physicalOffset, length, len(data))
	}
	return data, nil
}

func (imgreader *EWFReader) GetDiskSize() int64 {
	return int64(imgreader.fd.Chunksize) * int64(imgreader.fd.NofChunks)
}

func (imgreader *EWFReader) GetSectorSize() uint32 {
	return 512
}

package readers

import (
	"fmt"
)

// VolumeReader is the sector level capability filesystem parsers consume.
type VolumeReader interface {
	ReadSectors(sector uint64, size int) ([]byte, error)
	GetBytesPerSector() uint32
}

// SectorReader exposes sector addressed reads over a DiskReader. Sector indices
// are translated to absolute device offsets by a fixed start bias chosen at
// construction: zero for whole device readers, the partition start LBA for
// volume readers. Both variants share this one implementation.
type SectorReader struct {
	handler        DiskReader
	bytesPerSector uint32
	startLBA       uint64
	open           bool
}

// NewSectorReader addresses the whole device from sector 0.
func NewSectorReader(handler DiskReader, bytesPerSector uint32) *SectorReader {
	return newSectorReader(handler, bytesPerSector, 0)
}

// NewVolumeSectorReader addresses a partition window: sector 0 is the partition start.
func NewVolumeSectorReader(handler DiskReader, bytesPerSector uint32, startLBA uint64) *SectorReader {
	return newSectorReader(handler, bytesPerSector, startLBA)
}

func newSectorReader(handler DiskReader, bytesPerSector uint32, startLBA uint64) *SectorReader {
	if bytesPerSector == 0 {
		bytesPerSector = handler.GetSectorSize()
	}
	if bytesPerSector == 0 {
		bytesPerSector = 512
	}
	return &SectorReader{handler: handler, bytesPerSector: bytesPerSector, startLBA: startLBA, open: true}
}

// ReadSectors reads size bytes starting at the given volume relative sector.
// size must be a multiple of the sector size.
func (sr *SectorReader) ReadSectors(sector uint64, size int) ([]byte, error) {
	if !sr.open {
		return nil, ErrReaderClosed
	}
	if size <= 0 || size%int(sr.bytesPerSector) != 0 {
		return nil, fmt.Errorf("%w: size %d sector size %d", ErrInvalidReadSize, size, sr.bytesPerSector)
	}
	offset := int64((sr.startLBA + sector) * uint64(sr.bytesPerSector))
	data, err := sr.handler.ReadFile(offset, size)
	if err != nil {
		return nil, err
	}
	if len(data) < size {
		return nil, fmt.Errorf("%w: sector %d want %d got %d", ErrShortRead, sector, size, len(data))
	}
	return data[:size], nil
}

func (sr SectorReader) GetBytesPerSector() uint32 {
	return sr.bytesPerSector
}

func (sr SectorReader) GetStartLBA() uint64 {
	return sr.startLBA
}

func (sr SectorReader) IsOpen() bool {
	return sr.open
}

func (sr *SectorReader) Close() {
	if !sr.open {
		return
	}
	sr.handler.CloseHandler()
	sr.open = false
}

func (sr *SectorReader) Reopen() error {
	if sr.open {
		sr.handler.CloseHandler()
	}
	if err := sr.handler.CreateHandler(); err != nil {
		sr.open = false
		return err
	}
	sr.open = true
	return nil
}

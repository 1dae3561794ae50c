package readers

import (
	"bytes"
	"fmt"
	"unsafe"

	"github.com/fsforensics/FAT32Recovery/logger"
	"github.com/fsforensics/FAT32Recovery/utils"
	"golang.org/x/sys/windows"
)

const chunkSize = 512 * 1024 * 1024 // 512 MB

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procSetFilePointerEx = kernel32.NewProc("SetFilePointerEx")
)

type DISK_GEOMETRY struct {
	Cylinders         int64
	MediaType         int32
	TracksPerCylinder int32
	SectorsPerTrack   int32
	BytesPerSector    int32
}

// WindowsReader reads raw sectors from \\.\PHYSICALDRIVEn or \\.\X: device paths.
type WindowsReader struct {
	a_file string
	fd     windows.Handle
}

func newDeviceReader(pathToDisk string) (DiskReader, error) {
	return &WindowsReader{a_file: pathToDisk}, nil
}

func (winreader *WindowsReader) CreateHandler() error {
	file_ptr, err := windows.UTF16PtrFromString(winreader.a_file)
	if err != nil {
		return fmt.Errorf("device path %q: %w", winreader.a_file, err)
	}
	var templateHandle windows.Handle
	fd, err := windows.CreateFile(file_ptr, windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE, nil,
		windows.OPEN_EXISTING, windows.FILE_FLAG_SEQUENTIAL_SCAN, templateHandle)
	if err != nil {
		return fmt.Errorf("opening %q: %w", winreader.a_file, err)
	}
	winreader.fd = fd
	return nil
}

func (winreader WindowsReader) CloseHandler() {
	windows.Close(winreader.fd)
}

func (winreader WindowsReader) GetDiskSize() int64 {
	geometry, err := winreader.getDriveGeometry()
	if err != nil {
		logger.RecoveryLogger.Error(fmt.Sprintf("drive geometry query failed: %v", err))
		return -1
	}

	return geometry.Cylinders * int64(geometry.TracksPerCylinder) *
		int64(geometry.SectorsPerTrack) * int64(geometry.BytesPerSector)
}

func (winreader WindowsReader) GetSectorSize() uint32 {
	geometry, err := winreader.getDriveGeometry()
	if err != nil || geometry.BytesPerSector <= 0 {
		return 512
	}
	return uint32(geometry.BytesPerSector)
}

func (winreader WindowsReader) getDriveGeometry() (DISK_GEOMETRY, error) {
	const IOCTL_DISK_GET_DRIVE_GEOMETRY = 0x70000
	const nByte_DISK_GEOMETRY = 24
	disk_geometry := DISK_GEOMETRY{}

	var junk *uint32
	var inBuffer *byte
	err := windows.DeviceIoControl(winreader.fd, IOCTL_DISK_GET_DRIVE_GEOMETRY,
		inBuffer, 0, (*byte)(unsafe.Pointer(&disk_geometry)), nByte_DISK_GEOMETRY, junk, nil)
	return disk_geometry, err
}

func (winreader WindowsReader) ReadFile(startOffset int64, totalSize int) ([]byte, error) {
	var wholebuffer *bytes.Buffer

	// allocate only when requested to read more than chunksize
	if totalSize > chunkSize {
		wholebuffer = utils.GetBuffer()
		defer utils.PutBuffer(wholebuffer)

		wholebuffer.Grow(totalSize)
	}
	bufLen := chunkSize
	if totalSize < chunkSize {
		bufLen = totalSize
	}
	buffer := make([]byte, bufLen)
	bytesRead := uint32(0)
	offset := int64(0)

	for int(offset) < totalSize {

		err := setFilePointerEx(winreader.fd, offset+startOffset, windows.FILE_BEGIN)
		if err != nil {
			return nil, fmt.Errorf("seek failed at offset %d: %w", offset+startOffset, err)
		}

		toRead := bufLen
		if int64(totalSize)-offset < int64(bufLen) {
			toRead = int(int64(totalSize) - offset)
		}

		err = windows.ReadFile(winreader.fd, buffer[:toRead], &bytesRead, nil)
		if err != nil {
			logger.RecoveryLogger.Error(fmt.Sprintf("read failed at offset %d: %v", offset+startOffset, err))
			return nil, fmt.Errorf("read failed at offset %d: %w", offset+startOffset, err)
		}
		if bytesRead == 0 {
			return nil, fmt.Errorf("%w: offset %d", ErrShortRead, offset+startOffset)
		}
		if totalSize > chunkSize {
			wholebuffer.Write(buffer[:bytesRead])
		}

		logger.RecoveryLogger.Info(fmt.Sprintf("read %d bytes at offset %d", bytesRead, offset+startOffset))
		offset += int64(bytesRead)
	}
	if totalSize > chunkSize {
		return append([]byte(nil), wholebuffer.Bytes()...), nil
	}
	return buffer[:totalSize], nil

}

func setFilePointerEx(handle windows.Handle, distance int64, moveMethod uint32) error {
	var newPos int64
	r1, _, err := procSetFilePointerEx.Call(
		uintptr(handle),
		uintptr(distance),
		uintptr(unsafe.Pointer(&newPos)),
		uintptr(moveMethod),
	)
	if r1 == 0 {
		return err
	}
	return nil
}

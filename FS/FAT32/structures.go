package FAT32

import (
	"strings"
	"time"

	"github.com/fsforensics/FAT32Recovery/utils"
)

const DirEntrySize = 32

const (
	DeletedMarker  = 0xE5
	EndOfDirMarker = 0x00
	KanjiLeadByte  = 0x05 // stored in place of a real 0xE5 first character
)

const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrVolumeID  = 0x08
	AttrDirectory = 0x10
	AttrArchive   = 0x20
	AttrLongName  = 0x0F
	attrMask      = 0x3F
)

const (
	EntryMask      uint32 = 0x0FFFFFFF
	EOCThreshold   uint32 = 0x0FFFFFF8
	BadClusterMark uint32 = 0x0FFFFFF7
	FreeCluster    uint32 = 0x00000000
)

// DirEntry is the 32 byte FAT short directory entry.
type DirEntry struct {
	Name            [8]byte //0-7
	Extension       [3]byte //8-10
	Attribute       uint8   //11
	NTReserved      uint8   //12
	CreateTimeTenth uint8   //13
	CreateTime      uint16  //14-15
	CreateDate      uint16  //16-17
	AccessDate      uint16  //18-19
	FirstClusterHI  uint16  //20-21
	WriteTime       uint16  //22-23
	WriteDate       uint16  //24-25
	FirstClusterLO  uint16  //26-27
	FileSize        uint32  //28-31
}

// LFNEntry is a long filename part carrying 13 UTF-16 code units.
type LFNEntry struct {
	SequenceNumber uint8    //0
	Chars1         [10]byte //1-10
	Attribute      uint8    //11
	Type           uint8    //12
	Checksum       uint8    //13
	Chars2         [12]byte //14-25
	FirstCluster   uint16   //26-27
	Chars3         [4]byte  //28-31
}

func (entry DirEntry) StartCluster() uint32 {
	return uint32(entry.FirstClusterHI)<<16 | uint32(entry.FirstClusterLO)
}

func (entry DirEntry) IsLongName() bool {
	return entry.Attribute&attrMask == AttrLongName
}

func (entry DirEntry) IsVolumeLabel() bool {
	return entry.Attribute&AttrVolumeID != 0 && !entry.IsLongName()
}

func (entry DirEntry) IsDirectory() bool {
	return entry.Attribute&AttrDirectory != 0 && !entry.IsLongName()
}

// ShortName reconstructs the 8.3 name. The first character of a deleted entry
// is lost to the deletion marker and is rendered as an underscore.
func (entry DirEntry) ShortName() string {
	name := make([]byte, 8)
	copy(name, entry.Name[:])
	switch name[0] {
	case DeletedMarker:
		name[0] = '_'
	case KanjiLeadByte:
		name[0] = 0xE5
	}
	base := strings.TrimRight(string(name), " \x00")
	extension := strings.TrimRight(string(entry.Extension[:]), " \x00")
	if extension == "" {
		return base
	}
	return base + "." + extension
}

// shortNameCharset holds the characters permitted in 8.3 names beside letters,
// digits and bytes above 0x7F.
const shortNameCharset = "!#$%&'()-@^_`{}~ "

func validShortNameByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b >= 0x80:
		return true
	default:
		return strings.IndexByte(shortNameCharset, b) != -1
	}
}

// HasValidName reports whether the name bytes after the deletion marker stay
// within the permitted short name character set. A violation is evidence that
// the directory slot was partially overwritten.
func (entry DirEntry) HasValidName() bool {
	for idx, b := range entry.Name {
		if idx == 0 {
			// first byte carries the deletion marker or the kanji escape
			continue
		}
		if !validShortNameByte(b) {
			return false
		}
	}
	return true
}

func (entry DirEntry) HasValidExtension() bool {
	for _, b := range entry.Extension {
		if !validShortNameByte(b) {
			return false
		}
	}
	return true
}

// DecodeFATTimestamp converts the packed FAT date and time words.
// Date: bits 15-9 years since 1980, 8-5 month, 4-0 day.
// Time: bits 15-11 hours, 10-5 minutes, 4-0 two second steps.
func DecodeFATTimestamp(date uint16, tm uint16) time.Time {
	year := int(date>>9) + 1980
	month := time.Month(date >> 5 & 0x0F)
	day := int(date & 0x1F)
	hour := int(tm >> 11)
	minute := int(tm >> 5 & 0x3F)
	second := int(tm&0x1F) * 2
	return time.Date(year, month, day, hour, minute, second, 0, time.UTC)
}

// Name assembles the UTF-16 characters carried by this long filename part.
func (lfn LFNEntry) Name() string {
	var raw []byte
	raw = append(raw, lfn.Chars1[:]...)
	raw = append(raw, lfn.Chars2[:]...)
	raw = append(raw, lfn.Chars3[:]...)
	return strings.TrimRight(utils.DecodeUTF16(raw), "￿")
}

func ParseDirEntry(data []byte) (DirEntry, error) {
	var entry DirEntry
	err := utils.Unmarshal(data, &entry)
	return entry, err
}

func ParseLFNEntry(data []byte) (LFNEntry, error) {
	var entry LFNEntry
	err := utils.Unmarshal(data, &entry)
	return entry, err
}

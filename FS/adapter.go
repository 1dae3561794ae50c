package metadata

import "github.com/fsforensics/FAT32Recovery/FS/FAT32"

type FAT32Record struct {
	*FAT32.Record
}

// WrapFAT32Records adapts engine records to the filesystem independent view.
// The wrappers alias the backing slice, not copies of it.
func WrapFAT32Records(records []FAT32.Record) []Record {
	wrapped := make([]Record, len(records))
	for idx := range records {
		wrapped[idx] = FAT32Record{&records[idx]}
	}
	return wrapped
}

package filtermanager

import (
	metadata "github.com/fsforensics/FAT32Recovery/FS"
	"github.com/fsforensics/FAT32Recovery/filters"
)

// FilterManager applies the registered filters in registration order.
type FilterManager struct {
	filters []filters.Filter
}

func (flm *FilterManager) Register(filter filters.Filter) {
	flm.filters = append(flm.filters, filter)
}

func (flm FilterManager) ApplyFilters(records []metadata.Record) []metadata.Record {
	for _, filter := range flm.filters {
		records = filter.Execute(records)
	}
	return records
}

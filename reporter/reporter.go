package reporter

import (
	"fmt"

	metadata "github.com/fsforensics/FAT32Recovery/FS"
	"github.com/fsforensics/FAT32Recovery/tree"
)

// Reporter prints the requested views of each located record. ShowFull turns
// every per record view on at once.
type Reporter struct {
	ShowInfo       bool
	ShowTimestamps bool
	ShowChain      bool
	ShowStatus     bool
	ShowPath       bool
	ShowFull       bool
	ShowTree       bool
}

func (rp Reporter) Show(records []metadata.Record, partitionId int, recordsTree tree.Tree) {
	for _, record := range records {

		fmt.Printf("%d  --------------------------------------------------------------------\n", record.GetID())

		if rp.ShowInfo || rp.ShowFull {
			record.ShowInfo()

		}

		if rp.ShowTimestamps || rp.ShowFull {
			record.ShowTimestamps()

		}

		if rp.ShowChain || rp.ShowFull {
			record.ShowChain()

		}

		if rp.ShowStatus || rp.ShowFull {
			record.ShowStatus()

		}

		if rp.ShowPath || rp.ShowFull {
			record.ShowPath(partitionId)
		}
	}

	if rp.ShowTree {
		recordsTree.Show()
	}

}

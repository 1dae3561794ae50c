package tree

import (
	"fmt"
	"strings"

	metadata "github.com/fsforensics/FAT32Recovery/FS"
	"github.com/fsforensics/FAT32Recovery/logger"
)

// Node mirrors one directory entry. The root node is synthetic and stands for
// the volume root directory which has no entry of its own.
type Node struct {
	record   *metadata.Record
	parent   *Node
	children []*Node
}

type Tree struct {
	root *Node
}

// Build links records into a tree by parent cluster. Folders are indexed by
// their start cluster first, anything whose parent folder was not located
// hangs off the root.
func (t *Tree) Build(records []metadata.Record) {
	msg := fmt.Sprintf("Building tree from %d directory records ", len(records))
	fmt.Printf(msg + "\n")
	logger.RecoveryLogger.Info(msg)

	t.root = &Node{}
	nodes := make([]*Node, len(records))
	foldersByCluster := map[uint32]*Node{}

	for idx := range records {
		nodes[idx] = &Node{record: &records[idx]}
		if records[idx].IsFolder() {
			foldersByCluster[records[idx].GetStartCluster()] = nodes[idx]
		}
	}

	for idx := range records {
		parentNode, found := foldersByCluster[records[idx].GetParentCluster()]
		if !found || parentNode == nodes[idx] {
			parentNode = t.root
		}
		nodes[idx].parent = parentNode
		parentNode.children = append(parentNode.children, nodes[idx])
	}
}

func (t Tree) Show() {
	if t.root == nil {
		return
	}
	t.root.descend()
}

func (node Node) descend() {
	if node.children == nil {
		return

	}
	node.showChildrenInfo()
	for _, node := range node.children {

		node.descend()

	}
}

func (node Node) label() string {
	if node.record == nil {
		return "/"
	}
	return fmt.Sprintf("%s %d", (*node.record).GetFname(), (*node.record).GetID())
}

func (node Node) showChildrenInfo() {
	msgB := strings.Builder{}
	msgB.Grow(len(node.children) + 1) // for root

	msg := fmt.Sprintf(" %s |_> ", node.label())

	msgB.WriteString(msg)

	fmt.Print("\n" + msg)

	for _, childNode := range node.children {
		msg := fmt.Sprintf(" %s", childNode.label())

		fmt.Print(msg)
		msgB.WriteString(msg)

	}

	logger.RecoveryLogger.Info(msgB.String())

}

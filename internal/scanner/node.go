package scanner

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Node represents a file or directory in the scanned tree.
//
// A directory's Size is always the sum of its children's sizes; Aggregate
// re-establishes the invariant once the children slice is finalized.
type Node struct {
	// Name is just the file/dir name (e.g. "photo.jpg"), not the full path.
	// For the root node, this is the full starting path.
	Name string

	// Size is the logical data length for files, the recursive total for dirs.
	Size int64

	// Children stores sub-nodes. Empty for non-directories.
	Children []*Node

	// IsDir marks if this node can have children.
	IsDir bool
}

// NewDir creates an empty directory node.
func NewDir(name string) *Node {
	return &Node{Name: name, IsDir: true}
}

// NewFile creates a file node with its logical size.
func NewFile(name string, size int64) *Node {
	return &Node{Name: name, Size: size}
}

// Aggregate recomputes this directory's size as the sum of its children's
// sizes. Scanners call it once a directory's children slice is final.
func (n *Node) Aggregate() {
	if !n.IsDir {
		return
	}
	var total int64
	for _, c := range n.Children {
		total += c.Size
	}
	n.Size = total
}

// SortBySize sorts children by size descending, recursively through all
// descendants. Ties keep their insertion order.
func (n *Node) SortBySize() {
	slices.SortStableFunc(n.Children, func(a, b *Node) int {
		return cmp.Compare(b.Size, a.Size)
	})
	for _, child := range n.Children {
		if child.IsDir {
			child.SortBySize()
		}
	}
}

// SortByName sorts children alphabetically, case-insensitive, recursively.
func (n *Node) SortByName() {
	slices.SortStableFunc(n.Children, func(a, b *Node) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	for _, child := range n.Children {
		if child.IsDir {
			child.SortByName()
		}
	}
}

// Navigate follows a sequence of child indices from this node and returns the
// node it lands on. An out-of-range index at any step is an error.
func (n *Node) Navigate(indices []int) (*Node, error) {
	curr := n
	for step, idx := range indices {
		if idx < 0 || idx >= len(curr.Children) {
			return nil, fmt.Errorf("navigate: index %d out of range at step %d (%d children)", idx, step, len(curr.Children))
		}
		curr = curr.Children[idx]
	}
	return curr, nil
}

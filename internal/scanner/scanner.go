// Package scanner builds an in-memory size tree for a directory hierarchy.
//
// The entry point is Scan, which dispatches to the fastest enumeration path
// the platform offers — getattrlistbulk on macOS, a raw Master File Table
// read on NTFS volumes — and falls back to a portable parallel walker
// everywhere else. All paths produce the same tree shape: every directory
// node's size is the sum of its children's sizes.
//
// Scan never fails from the caller's point of view. Entries that cannot be
// read are skipped and counted on Progress; an unreachable root yields an
// empty directory node with Progress.Errors() > 0.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// maxDepth caps recursion against pathologically deep or looped trees.
	maxDepth = 512
)

// Scanner configures a scan. The zero value uses one worker per logical CPU.
type Scanner struct {
	// Workers bounds how many directories are read concurrently.
	Workers int
}

// New creates a Scanner with the given worker count. workers <= 0 selects
// the host logical-CPU count.
func New(workers int) *Scanner {
	return &Scanner{Workers: workers}
}

// Scan walks the tree rooted at root and returns the completed size tree,
// sorted by size descending. It blocks until the tree is complete; progress
// may be observed concurrently through p. A nil p is replaced by a throwaway
// Progress so scanners can update it unconditionally.
//
// Cancelling ctx stops descending into new directories; the tree built so
// far is still returned.
func (s *Scanner) Scan(ctx context.Context, root string, p *Progress) *Node {
	if p == nil {
		p = NewProgress()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		p.addError()
		return NewDir(absRoot)
	}

	if !info.IsDir() {
		p.addFile()
		return NewFile(absRoot, info.Size())
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	node := scanPlatform(ctx, absRoot, p, workers)
	node.SortBySize()
	return node
}

// Scan runs a scan with default settings. See Scanner.Scan.
func Scan(ctx context.Context, root string, p *Progress) *Node {
	return New(0).Scan(ctx, root, p)
}

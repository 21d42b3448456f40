package scanner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// The generic scanner is a portable parallel walker: semaphore-bounded walker
// goroutines list directories and emit flat (path, isDir, size) entries into
// a channel, a single collector drains them, and the tree is assembled
// bottom-up afterwards. It is the universal fallback when no platform fast
// path applies. The bulk scanner does not use it: its per-directory
// escalation is readDirFallback in bulk_darwin.go.

// walkEntry is one flat enumeration result. Size is 0 for directories.
type walkEntry struct {
	path  string
	size  int64
	isDir bool
}

// readDirBatchSize bounds how many entries are read from disk at once,
// capping peak memory for directories with millions of entries.
const readDirBatchSize = 1024

// genericWalker holds the shared state of one walk.
type genericWalker struct {
	ctx      context.Context
	progress *Progress
	rootDev  uint64
	devOK    bool

	wg      sync.WaitGroup
	sem     chan struct{}
	entryCh chan walkEntry
}

// scanGeneric walks root with the portable walker and builds the size tree.
// The returned root node's name is the requested root path.
func scanGeneric(ctx context.Context, root string, p *Progress, workers int) *Node {
	w := &genericWalker{
		ctx:      ctx,
		progress: p,
		sem:      make(chan struct{}, workers),
		entryCh:  make(chan walkEntry, 1024),
	}
	w.rootDev, w.devOK = deviceOf(root)

	// Single collector: drains the fan-in channel until all walkers finish.
	var entries []walkEntry
	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for e := range w.entryCh {
			entries = append(entries, e)
		}
	}()

	w.walkDirectory(root, 0)
	w.wg.Wait()
	close(w.entryCh)
	collectorWg.Wait()

	return buildTree(root, entries)
}

// walkDirectory spawns a walker goroutine for one directory. The semaphore
// bounds concurrent directory reads, not the number of pending goroutines,
// which is bounded by the directory count.
func (w *genericWalker) walkDirectory(dir string, depth int) {
	if depth >= maxDepth {
		return
	}
	w.wg.Add(1) // before spawn, so Wait cannot race the add
	go func() {
		defer w.wg.Done()

		if w.ctx.Err() != nil {
			return
		}

		w.sem <- struct{}{}
		subdirs := w.listDirectory(dir)
		<-w.sem

		for _, sub := range subdirs {
			w.walkDirectory(sub, depth+1)
		}
	}()
}

// listDirectory reads one directory, emits an entry per child, and returns
// the subdirectory paths to descend into. Children on a different device
// than the root are emitted but not returned for descent.
func (w *genericWalker) listDirectory(dir string) []string {
	w.progress.setCurrentPath(dir)

	f, err := os.Open(dir)
	if err != nil {
		w.progress.addError()
		return nil
	}
	defer func() { _ = f.Close() }()

	var subdirs []string
	for {
		// f.ReadDir bypasses os.ReadDir's mandatory alphabetical sort; order
		// is settled by the final sort pass over the tree.
		batch, err := f.ReadDir(readDirBatchSize)
		if len(batch) == 0 {
			if err != nil && err != io.EOF {
				w.progress.addError()
			}
			break
		}

		for _, entry := range batch {
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				w.progress.addDir()
				w.entryCh <- walkEntry{path: full, isDir: true}
				if w.sameDevice(full) {
					subdirs = append(subdirs, full)
				}
				continue
			}
			// Symlinks are never followed: ReadDir reports them as non-dirs
			// and Info returns the link's own metadata.
			info, err := entry.Info()
			if err != nil {
				w.progress.addError()
				continue
			}
			w.progress.addFile()
			w.entryCh <- walkEntry{path: full, size: info.Size()}
		}
	}
	return subdirs
}

// sameDevice reports whether path lives on the root's device. Mount points
// are kept as empty nodes but never descended.
func (w *genericWalker) sameDevice(path string) bool {
	if !w.devOK {
		return true
	}
	dev, ok := deviceOf(path)
	return !ok || dev == w.rootDev
}

// buildTree assembles the size tree from flat entries by grouping them under
// their parent directories, then aggregating sizes bottom-up.
func buildTree(root string, entries []walkEntry) *Node {
	children := make(map[string][]walkEntry, len(entries)/8+1)
	for _, e := range entries {
		parent := filepath.Dir(e.path)
		children[parent] = append(children[parent], e)
	}

	rootNode := NewDir(root)
	buildSubtree(rootNode, root, children)
	return rootNode
}

func buildSubtree(node *Node, path string, children map[string][]walkEntry) {
	for _, e := range children[path] {
		name := filepath.Base(e.path)
		if e.isDir {
			child := NewDir(name)
			buildSubtree(child, e.path, children)
			node.Children = append(node.Children, child)
		} else {
			node.Children = append(node.Children, NewFile(name, e.size))
		}
	}
	node.Aggregate()
}

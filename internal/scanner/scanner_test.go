package scanner_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/mobanhawi/duscan/internal/scanner"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

const (
	fileSizeSmall  = 10
	fileSizeMedium = 20
	fileSizeLarge  = 30
)

// makeTestDir creates a temporary directory tree and returns its root path.
// layout: map of relpath → content (if nil, it's a directory).
func makeTestDir(t *testing.T, layout map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range layout {
		fullPath := filepath.Join(root, rel)
		if content == nil {
			if err := os.MkdirAll(fullPath, 0o755); err != nil {
				t.Fatalf("makeTestDir: mkdir %s: %v", fullPath, err)
			}
		} else {
			if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
				t.Fatalf("makeTestDir: mkdir parent %s: %v", fullPath, err)
			}
			if err := os.WriteFile(fullPath, content, 0o644); err != nil {
				t.Fatalf("makeTestDir: write %s: %v", fullPath, err)
			}
		}
	}
	return root
}

func bytes(n int) []byte { return make([]byte, n) }

// findChild returns the direct child with the given name, or nil.
func findChild(n *scanner.Node, name string) *scanner.Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// checkAggregation fails the test if any directory's size is not the sum of
// its children's sizes.
func checkAggregation(t *testing.T, n *scanner.Node) {
	t.Helper()
	if !n.IsDir {
		return
	}
	var sum int64
	for _, c := range n.Children {
		checkAggregation(t, c)
		sum += c.Size
	}
	if n.Size != sum {
		t.Errorf("aggregation broken at %q: size=%d, children sum=%d", n.Name, n.Size, sum)
	}
}

// sumFiles totals the sizes of all file nodes in the tree.
func sumFiles(n *scanner.Node) int64 {
	if !n.IsDir {
		return n.Size
	}
	var sum int64
	for _, c := range n.Children {
		sum += sumFiles(c)
	}
	return sum
}

// ── Scan scenarios ───────────────────────────────────────────────────────────

func TestScanFlatDirectory(t *testing.T) {
	t.Run("GivenThreeFiles_WhenScanned_ThenSizesAggregateAndSortBySizeDescends", func(t *testing.T) {
		root := makeTestDir(t, map[string][]byte{
			"a": bytes(fileSizeSmall),
			"b": bytes(fileSizeMedium),
			"c": bytes(fileSizeLarge),
		})

		p := scanner.NewProgress()
		node := scanner.Scan(context.Background(), root, p)

		if node.Size != fileSizeSmall+fileSizeMedium+fileSizeLarge {
			t.Errorf("root size = %d, want %d", node.Size, fileSizeSmall+fileSizeMedium+fileSizeLarge)
		}
		want := []string{"c", "b", "a"} // Scan returns size-descending order
		for i, name := range want {
			if node.Children[i].Name != name {
				t.Errorf("children[%d].Name = %q, want %q", i, node.Children[i].Name, name)
			}
		}
		if got := p.FilesScanned(); got != 3 {
			t.Errorf("FilesScanned = %d, want 3", got)
		}
		if got := p.DirsScanned(); got != 0 {
			t.Errorf("DirsScanned = %d, want 0", got)
		}
		checkAggregation(t, node)
	})
}

func TestScanNested(t *testing.T) {
	t.Run("GivenOneNestedLevel_WhenScanned_ThenSubtreeAggregates", func(t *testing.T) {
		root := makeTestDir(t, map[string][]byte{
			"sub/x": bytes(100),
			"sub/y": bytes(50),
			"z":     bytes(25),
		})

		node := scanner.Scan(context.Background(), root, nil)

		sub := findChild(node, "sub")
		if sub == nil {
			t.Fatal("sub not found")
		}
		if sub.Size != 150 {
			t.Errorf("sub.Size = %d, want 150", sub.Size)
		}
		if node.Size != 175 {
			t.Errorf("root.Size = %d, want 175", node.Size)
		}
		// Sorted by size: sub (150) before z (25).
		if node.Children[0].Name != "sub" || node.Children[1].Name != "z" {
			t.Errorf("sorted children = [%s, %s], want [sub, z]", node.Children[0].Name, node.Children[1].Name)
		}
		checkAggregation(t, node)
	})
}

func TestScanEmptyDirectory(t *testing.T) {
	testCases := []struct {
		name     string
		layout   map[string][]byte
		wantSize int64
	}{
		{
			name:     "GivenEmptyRoot_WhenScanned_ThenZeroSizeNoChildren",
			layout:   map[string][]byte{},
			wantSize: 0,
		},
		{
			name: "GivenEmptySubdirAndFile_WhenScanned_ThenEmptyDirSortsLast",
			layout: map[string][]byte{
				"empty/": nil,
				"f":      bytes(5),
			},
			wantSize: 5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := makeTestDir(t, tc.layout)
			node := scanner.Scan(context.Background(), root, nil)

			if node.Size != tc.wantSize {
				t.Errorf("root.Size = %d, want %d", node.Size, tc.wantSize)
			}
			if len(tc.layout) == 0 {
				if len(node.Children) != 0 {
					t.Errorf("children = %d, want 0", len(node.Children))
				}
				return
			}
			empty := findChild(node, "empty")
			if empty == nil || !empty.IsDir {
				t.Fatal("empty dir missing from tree")
			}
			if empty.Size != 0 {
				t.Errorf("empty.Size = %d, want 0", empty.Size)
			}
			if node.Children[0].Name != "f" || node.Children[1].Name != "empty" {
				t.Errorf("size-sorted children = [%s, %s], want [f, empty]",
					node.Children[0].Name, node.Children[1].Name)
			}
		})
	}
}

func TestScanDeepChain(t *testing.T) {
	t.Run("GivenTenLevelChain_WhenScanned_ThenEveryLevelCarriesTheLeafSize", func(t *testing.T) {
		rel := ""
		for i := 1; i <= 10; i++ {
			rel = filepath.Join(rel, "d"+strconv.Itoa(i))
		}
		root := makeTestDir(t, map[string][]byte{
			filepath.Join(rel, "leaf"): bytes(1),
		})

		p := scanner.NewProgress()
		node := scanner.Scan(context.Background(), root, p)

		curr := node
		for i := 1; i <= 10; i++ {
			curr = findChild(curr, "d"+strconv.Itoa(i))
			if curr == nil {
				t.Fatalf("d%d missing", i)
			}
			if curr.Size != 1 {
				t.Errorf("d%d.Size = %d, want 1", i, curr.Size)
			}
		}
		if got := p.FilesScanned(); got != 1 {
			t.Errorf("FilesScanned = %d, want 1", got)
		}
		if got := p.DirsScanned(); got != 10 {
			t.Errorf("DirsScanned = %d, want 10", got)
		}
	})
}

func TestScanRootUnreachable(t *testing.T) {
	t.Run("GivenMissingRoot_WhenScanned_ThenEmptyNodeAndErrorCounted", func(t *testing.T) {
		p := scanner.NewProgress()
		node := scanner.Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), p)

		if node == nil {
			t.Fatal("node is nil")
		}
		if !node.IsDir || len(node.Children) != 0 || node.Size != 0 {
			t.Errorf("want empty dir node, got dir=%v children=%d size=%d",
				node.IsDir, len(node.Children), node.Size)
		}
		if p.Errors() == 0 {
			t.Error("Errors = 0, want > 0")
		}
	})
}

func TestScanFileRoot(t *testing.T) {
	root := makeTestDir(t, map[string][]byte{
		"file.bin": bytes(fileSizeMedium),
	})

	node := scanner.Scan(context.Background(), filepath.Join(root, "file.bin"), nil)
	if node == nil || node.IsDir {
		t.Fatal("expected file node, not dir")
	}
	if node.Size != fileSizeMedium {
		t.Errorf("Size = %d, want %d", node.Size, fileSizeMedium)
	}
}

func TestScanSymlinkNotFollowed(t *testing.T) {
	root := makeTestDir(t, map[string][]byte{
		"real_dir/file.bin": bytes(fileSizeMedium),
	})
	if err := os.Symlink(filepath.Join(root, "real_dir"), filepath.Join(root, "link_dir")); err != nil {
		t.Skipf("symlinks unsupported here: %v", err)
	}

	node := scanner.Scan(context.Background(), root, nil)

	link := findChild(node, "link_dir")
	if link == nil {
		t.Fatal("link_dir missing from tree")
	}
	if link.IsDir {
		t.Error("symlink classified as directory; it must not be followed")
	}
	real := findChild(node, "real_dir")
	if real == nil || real.Size != fileSizeMedium {
		t.Error("real_dir missing or wrong size")
	}
}

func TestScanRootSizeEqualsFileSum(t *testing.T) {
	root := makeTestDir(t, map[string][]byte{
		"a/b/one": bytes(11),
		"a/two":   bytes(22),
		"c/three": bytes(33),
		"four":    bytes(44),
	})

	node := scanner.Scan(context.Background(), root, nil)

	if got := sumFiles(node); got != node.Size {
		t.Errorf("root.Size = %d, sum of files = %d", node.Size, got)
	}
	checkAggregation(t, node)
}

func TestScanCancellation(t *testing.T) {
	t.Run("GivenCancelledContext_WhenScanned_ThenReturnsWithoutPanic", func(t *testing.T) {
		root := makeTestDir(t, map[string][]byte{
			"a/b/c/file.bin": bytes(fileSizeLarge),
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		node := scanner.Scan(ctx, root, nil)
		if node == nil {
			t.Fatal("node is nil; even a cancelled scan returns a root")
		}
	})
}

func TestScanProgressMonotonic(t *testing.T) {
	root := makeTestDir(t, map[string][]byte{})
	for i := range 50 {
		dir := filepath.Join("d"+strconv.Itoa(i), "f")
		if err := os.MkdirAll(filepath.Join(root, filepath.Dir(dir)), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(root, dir), bytes(8), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	p := scanner.NewProgress()
	scanDone := make(chan struct{})
	observerDone := make(chan struct{})
	var violated bool
	go func() {
		defer close(observerDone)
		var lastFiles, lastDirs uint64
		for {
			f, d := p.FilesScanned(), p.DirsScanned()
			if f < lastFiles || d < lastDirs {
				violated = true
				return
			}
			lastFiles, lastDirs = f, d
			select {
			case <-scanDone:
				return
			default:
			}
		}
	}()

	scanner.Scan(context.Background(), root, p)
	close(scanDone)
	<-observerDone

	if violated {
		t.Error("progress counters observed decreasing")
	}
	if p.FilesScanned() != 50 || p.DirsScanned() != 50 {
		t.Errorf("counters = %d files, %d dirs, want 50/50", p.FilesScanned(), p.DirsScanned())
	}
}

//go:build windows

package scanner

import "context"

// scanPlatform tries the MFT reader for drive-letter roots and falls back to
// the generic walker when the volume is not NTFS, the process lacks
// privileges, or the root is a plain directory, UNC path, or mount-point
// folder.
func scanPlatform(ctx context.Context, root string, p *Progress, workers int) *Node {
	if letter, ok := driveLetterRoot(root); ok {
		if node, err := scanMFT(ctx, letter, p); err == nil {
			return node
		}
	}
	return scanGeneric(ctx, root, p, workers)
}

// driveLetterRoot reports whether path names the root of a lettered volume
// ("C:\" or "C:").
func driveLetterRoot(path string) (byte, bool) {
	if len(path) < 2 || path[1] != ':' {
		return 0, false
	}
	c := path[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return 0, false
	}
	rest := path[2:]
	if rest == "" || rest == `\` || rest == "/" {
		return c, true
	}
	return 0, false
}

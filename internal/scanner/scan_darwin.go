//go:build darwin

package scanner

import "context"

// scanPlatform selects the bulk-attributes scanner on macOS. It degrades to
// readdir+stat per directory on its own, so there is no dispatcher-level
// fallback here.
func scanPlatform(ctx context.Context, root string, p *Progress, workers int) *Node {
	return scanBulk(ctx, root, p, workers)
}

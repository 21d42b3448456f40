//go:build !darwin && !windows

package scanner

import "context"

// scanPlatform uses the portable parallel walker where no platform fast path
// exists.
func scanPlatform(ctx context.Context, root string, p *Progress, workers int) *Node {
	return scanGeneric(ctx, root, p, workers)
}

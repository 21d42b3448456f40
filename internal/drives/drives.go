// Package drives enumerates mounted volumes for the picker shown when no
// path argument is given.
package drives

import (
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// Volume describes one mounted filesystem with its capacity.
type Volume struct {
	// Path is the mount point, used as the scan root when picked.
	Path string
	// Fstype is the filesystem type reported by the OS.
	Fstype string
	// Total and Free are capacity in bytes.
	Total uint64
	Free  uint64
}

// pseudoFS filters mounts that never hold user data.
var pseudoFS = map[string]bool{
	"proc": true, "sysfs": true, "devfs": true, "devtmpfs": true,
	"tmpfs": true, "overlay": true, "squashfs": true, "autofs": true,
	"cgroup": true, "cgroup2": true, "devpts": true, "fusectl": true,
	"securityfs": true, "tracefs": true, "debugfs": true, "mqueue": true,
	"hugetlbfs": true, "pstore": true, "binfmt_misc": true,
}

// List returns the mounted volumes worth offering in the picker: physical
// partitions with nonzero capacity, deduplicated by mount point, largest
// first.
func List() ([]Volume, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(parts))
	var vols []Volume
	for _, part := range parts {
		if seen[part.Mountpoint] || pseudoFS[strings.ToLower(part.Fstype)] {
			continue
		}
		seen[part.Mountpoint] = true

		usage, err := disk.Usage(part.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		vols = append(vols, Volume{
			Path:   part.Mountpoint,
			Fstype: part.Fstype,
			Total:  usage.Total,
			Free:   usage.Free,
		})
	}

	sort.Slice(vols, func(i, j int) bool {
		if vols[i].Total != vols[j].Total {
			return vols[i].Total > vols[j].Total
		}
		return vols[i].Path < vols[j].Path
	})
	return vols, nil
}

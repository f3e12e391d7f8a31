package zfs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pders01/zfs-tools/internal/models"
)

// parseDatasets parses `zfs list -Hp -o name,mountpoint` output. Fields are
// tab separated, so mount points may contain spaces.
func parseDatasets(lines []string) ([]models.Dataset, error) {
	datasets := make([]models.Dataset, 0, len(lines))
	for _, line := range lines {
		name, mountPoint, ok := strings.Cut(line, "\t")
		if !ok {
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, fmt.Errorf("invalid dataset line: %q", line)
			}
			name, mountPoint = fields[0], fields[1]
		}
		datasets = append(datasets, models.Dataset{
			Name:       strings.TrimSpace(name),
			MountPoint: strings.TrimSpace(mountPoint),
		})
	}
	return datasets, nil
}

// parseSnapshots parses `zfs list -Hp -o name,creation,used` output
func parseSnapshots(lines []string) ([]models.Snapshot, error) {
	snapshots := make([]models.Snapshot, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid snapshot line: %q", line)
		}

		dataset, name, ok := models.SplitSnapshotName(fields[0])
		if !ok {
			return nil, fmt.Errorf("not a snapshot: %q", fields[0])
		}

		created, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid creation time for %s: %w", fields[0], err)
		}

		used, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid used size for %s: %w", fields[0], err)
		}

		snapshots = append(snapshots, models.Snapshot{
			Dataset: dataset,
			Name:    name,
			Created: time.Unix(created, 0),
			Used:    used,
		})
	}
	return snapshots, nil
}

// ParseUsageLine parses one line of `zfs list -Ho name,used,usedbydataset`.
// usedbydataset is preferred; snapshots report it as "-" and fall back to
// used. ok is false for entries using no space.
func ParseUsageLine(line string) (u models.Usage, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return models.Usage{}, false, fmt.Errorf("failed to parse '%s'", line)
	}

	size := fields[2]
	if size == "-" {
		size = fields[1]
	}

	n, err := humanize.ParseBytes(size)
	if err != nil {
		return models.Usage{}, false, fmt.Errorf("failed to parse '%s': %w", line, err)
	}
	if n == 0 {
		return models.Usage{}, false, nil
	}

	return models.Usage{Name: fields[0], Bytes: n, Display: size}, true, nil
}

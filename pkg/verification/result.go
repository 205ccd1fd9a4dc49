package verification

import "sort"

type CheckName string

const (
	CheckVerifyDisk         CheckName = "verify_disk"
	CheckContentType        CheckName = "content_type"
	CheckWholeDiskPartition CheckName = "whole_disk_partition"
	CheckMountedVolumes     CheckName = "mounted_volumes"
)

// AllChecks lists every check that must pass, in report order.
var AllChecks = []CheckName{
	CheckVerifyDisk,
	CheckContentType,
	CheckWholeDiskPartition,
	CheckMountedVolumes,
}

// Result is the post-erase verdict for one disk.
type Result struct {
	DiskID  string             `json:"disk_id" yaml:"disk_id"`
	Checks  map[CheckName]bool `json:"checks" yaml:"checks"`
	Overall bool               `json:"overall" yaml:"overall"`
}

// NewResult computes Overall as the AND of every check in AllChecks. A check
// missing from checks counts as failed.
func NewResult(diskID string, checks map[CheckName]bool) Result {
	r := Result{DiskID: diskID, Checks: make(map[CheckName]bool, len(AllChecks)), Overall: true}
	for _, name := range AllChecks {
		passed := checks[name]
		r.Checks[name] = passed
		r.Overall = r.Overall && passed
	}
	return r
}

// Failed returns the names of failed checks, sorted.
func (r Result) Failed() []string {
	var failed []string
	for _, name := range AllChecks {
		if !r.Checks[name] {
			failed = append(failed, string(name))
		}
	}
	sort.Strings(failed)
	return failed
}

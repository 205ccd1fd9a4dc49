package diskutil

import (
	"fmt"
	"strings"

	cerr "github.com/cockroachdb/errors"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
)

// notCoreStorageMarker is the diskutil error text for a disk outside any LVG.
const notCoreStorageMarker = "is not a corestorage disk"

// CommandError is a failed disk-utility invocation. Output carries whatever the
// utility printed, which callers inspect for well-known error text.
type CommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if strings.TrimSpace(e.Output) == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, retire_err.ExtractSummary(e.Output, 1))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsNotCoreStorage reports whether err is diskutil refusing a cs query because
// the disk is not part of a logical volume group.
func IsNotCoreStorage(err error) bool {
	var cmdErr *CommandError
	if !cerr.As(err, &cmdErr) {
		return false
	}
	return strings.Contains(strings.ToLower(cmdErr.Output), notCoreStorageMarker)
}

// OutputOf returns the utility output carried by err, if any.
func OutputOf(err error) (string, bool) {
	var cmdErr *CommandError
	if !cerr.As(err, &cmdErr) {
		return "", false
	}
	return cmdErr.Output, true
}

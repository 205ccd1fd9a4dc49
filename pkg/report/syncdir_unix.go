//go:build unix

package report

import (
	cerr "github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// syncDir flushes a directory entry so a completed rename survives power loss.
func syncDir(dir string) error {
	fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return cerr.Wrapf(err, "open %s", dir)
	}
	defer func() { _ = unix.Close(fd) }()

	return cerr.Wrapf(unix.Fsync(fd), "fsync %s", dir)
}

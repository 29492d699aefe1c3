//go:build linux || darwin

package tailer

import (
	"os"

	"golang.org/x/sys/unix"
)

// sameFile reports whether the file currently at path is the same inode as
// the already-open f, using a raw unix.Stat/Fstat comparison rather than
// the stdlib's os.SameFile so that the dev/inode pair is available for
// logging and diagnostics if ever needed. This is a fast corroborating
// check only: a mismatch still needs the content-hash comparison in
// compareIdentity before rotation is declared; cross-filesystem inode
// tracking is out of scope.
func sameFile(path string, f *os.File) (bool, error) {
	var onDisk, open unix.Stat_t
	if err := unix.Stat(path, &onDisk); err != nil {
		return false, err
	}
	if err := unix.Fstat(int(f.Fd()), &open); err != nil {
		return false, err
	}
	return onDisk.Dev == open.Dev && onDisk.Ino == open.Ino, nil
}

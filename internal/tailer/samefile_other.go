//go:build !linux && !darwin

package tailer

import "os"

// sameFile is the portable fallback for platforms without the x/sys/unix
// raw stat fields wired in samefile_unix.go.
func sameFile(path string, f *os.File) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	heldFi, err := f.Stat()
	if err != nil {
		return false, err
	}
	return os.SameFile(fi, heldFi), nil
}

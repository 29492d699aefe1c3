// Package fingerprint provides file-identity helpers: size, modification
// time, and a prefix-hash digest stable across process restarts.
// Adapted from https://github.com/google/mtail/tree/main/internal
package fingerprint

import (
	"crypto/md5" //nolint:gosec // collision resistance is not required, only reasonable distinctness
	"encoding/hex"
	"io"
	"os"
)

// PrefixBytes is the default number of leading bytes hashed to form a file's
// identity. Appends past this many bytes never change the fingerprint.
const PrefixBytes = 512

// Attributes is an immutable snapshot of a file's size and modification
// time, relative to a caller-supplied "last checked" timestamp.
type Attributes struct {
	Length         int64
	LastModifiedMs int64
	Newer          bool
}

// Stat snapshots the attributes of the file at path. lastCheckedMs is the
// millisecond timestamp of the previous check; Newer is true iff this
// file's modification time strictly exceeds it.
func Stat(path string, lastCheckedMs int64) (Attributes, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Attributes{}, err
	}
	modMs := fi.ModTime().UnixNano() / int64(1e6)
	return Attributes{
		Length:         fi.Size(),
		LastModifiedMs: modMs,
		Newer:          modMs > lastCheckedMs,
	}, nil
}

// Of computes the hex-encoded MD5 digest of the first n bytes of the file at
// path. ok is false if the file is shorter than n bytes, in which case the
// fingerprint is considered absent: identity cannot yet be established.
func Of(path string, n int) (digest string, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()
	return OfReader(f, n)
}

// OfReader computes the fingerprint from an already-open reader, seeking no
// further than is necessary to read n bytes. Used both for on-disk files
// and in tests against in-memory readers.
func OfReader(r io.Reader, n int) (digest string, ok bool, err error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r, buf)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			// Short read: concurrent truncation or a file genuinely shorter
			// than the prefix window. The rotation detector falls back to
			// size/time signals in this case.
			return "", false, nil
		}
		return "", false, err
	}
	h := md5.Sum(buf[:read]) //nolint:gosec
	return hex.EncodeToString(h[:]), true, nil
}

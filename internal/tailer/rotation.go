package tailer

import (
	"os"

	"github.com/metricsdev/filetailer/internal/fingerprint"
)

// Decision is the rotation detector's verdict for the current poll.
type Decision int

const (
	// DecisionWait means there is nothing new; sleep until the next poll.
	DecisionWait Decision = iota
	// DecisionRead means there is unread data; attempt a framer read.
	DecisionRead
	// DecisionRotated means the file at the path is no longer the file
	// this tailer holds open; close it and reopen by name.
	DecisionRotated
)

// HashComparison is a three-way result for comparing a held file's identity
// hash against the path-on-disk's current prefix hash. Modeled as a tagged
// variant rather than a nullable bool per spec.md's design notes.
type HashComparison int

const (
	HashCannotDecide HashComparison = iota
	HashEqual
	HashDiffer
)

// Identity carries enough state for the rotation detector to corroborate
// that the path-on-disk is still the file this tailer has open.
type Identity struct {
	// Hash is the fingerprint computed over HashBytes leading bytes of the
	// currently-held file, or "" if one has never been computed (the file
	// was, and perhaps still is, shorter than the identity prefix window).
	Hash      string
	HashBytes int
}

// Detect runs one rotation-detection poll per spec.md §4.5. f is the
// currently held file (used only for a cheap SameFile corroboration; may be
// nil if nothing is currently held). position is the tailer's current read
// offset. lastCheckedMs is the millisecond timestamp of the previous poll.
func Detect(path string, f *os.File, position int64, lastCheckedMs int64, id Identity) (Decision, fingerprint.Attributes, error) {
	attrs, err := fingerprint.Stat(path, lastCheckedMs)
	if err != nil {
		if os.IsNotExist(err) {
			// FileNotFound on attribute read: treat as rotation, not as a
			// fatal error; the file loop will reopen by name.
			return DecisionRotated, fingerprint.Attributes{}, nil
		}
		return DecisionWait, fingerprint.Attributes{}, err
	}

	switch {
	case attrs.Length < position:
		// The file we hold cannot be the one now at the path: it has
		// shrunk below a position we have already read past.
		return DecisionRotated, attrs, nil
	case attrs.Length > position:
		return DecisionRead, attrs, nil
	case attrs.Newer:
		// Same length, same position, but the mtime moved: a periodic
		// process rewrote identical-length content.
		return DecisionRotated, attrs, nil
	}

	if f != nil {
		if same, err := sameFile(path, f); err == nil && same {
			return DecisionWait, attrs, nil
		}
	}

	cmp, err := compareIdentity(path, id)
	if err != nil {
		return DecisionWait, attrs, err
	}
	if cmp == HashDiffer {
		return DecisionRotated, attrs, nil
	}
	return DecisionWait, attrs, nil
}

// compareIdentity hashes the path-on-disk's leading id.HashBytes bytes and
// compares it against id.Hash. An absent reference hash, or a disk file too
// short to rehash, is reported as HashCannotDecide: the caller should take
// no action rather than guess.
func compareIdentity(path string, id Identity) (HashComparison, error) {
	if id.Hash == "" || id.HashBytes == 0 {
		return HashCannotDecide, nil
	}
	fresh, ok, err := fingerprint.Of(path, id.HashBytes)
	if err != nil {
		return HashCannotDecide, err
	}
	if !ok {
		return HashCannotDecide, nil
	}
	if fresh == id.Hash {
		return HashEqual, nil
	}
	return HashDiffer, nil
}

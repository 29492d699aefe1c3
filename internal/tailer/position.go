package tailer

// InitialPosition selects where a tailer starts reading a file the first
// time it opens it and finds no checkpoint for the file's fingerprint.
type InitialPosition int

const (
	// Start begins reading from byte offset 0.
	Start InitialPosition = iota
	// End begins reading from the file's current length, skipping
	// pre-existing content.
	End
)

package tailer

// Listener is the sink for produced lines, rotation events, not-found
// events, and fatal errors. All callbacks are invoked single-threaded from
// the tailer's own goroutine; a Listener must not assume any other thread.
type Listener interface {
	// Initialize is called once during construction, before the tailer
	// starts reading, with a handle the listener can use to address the
	// tailer (e.g. to call Stop).
	Initialize(handle *Tailer)

	// Handle is called once per line, in file order. line excludes the
	// terminating \n, \r, or \r\n.
	Handle(line []byte)

	// FileNotFound is emitted whenever an open attempt fails because the
	// path does not exist.
	FileNotFound()

	// FileRotated is emitted once per detected rotation, strictly before
	// any line from the replacement file is delivered.
	FileRotated()

	// HandleError is emitted on an unrecoverable error. After this call
	// returns, the tailer shuts down; HandleError is never called again
	// for the same tailer.
	HandleError(err error)
}

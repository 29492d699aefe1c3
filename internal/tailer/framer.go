// Package tailer implements the stateful file tailer: the rotation-aware
// read loop, its line framer, and the rotation detector.
// Adapted from https://github.com/google/mtail/tree/main/internal and from
// the teacher's decoder/breaker line-breaking style.
package tailer

import (
	"io"
	"os"
)

// DefaultReadBufferSize is the initial capacity of the framer's I/O buffer.
const DefaultReadBufferSize = 65536

// Framer pulls bytes from an open file into a reusable buffer and cuts them
// into lines at \n, \r, or \r\n boundaries. Bytes are forwarded as-is; no
// UTF-8 decoding happens here (that is a listener-boundary concern).
type Framer struct {
	lineBuffer []byte
	hasCR      bool
	readBuf    []byte
}

// NewFramer allocates a Framer with the default read-buffer size.
func NewFramer() *Framer {
	return &Framer{readBuf: make([]byte, DefaultReadBufferSize)}
}

// LineFunc is called once per framed line, in file order (bytes exclude the
// terminating \n, \r, or \r\n). endPosition is the offset immediately after
// that line's newline boundary: the value the durable checkpoint must
// record once the line has been handled, per spec.md §2 ("the position
// store is updated after every newline") and P3 (at most the single
// in-flight line may be re-emitted across an uncheckpointed crash).
// Returning a non-nil error aborts framing of the remainder of the current
// read immediately.
type LineFunc func(line []byte, endPosition int64) error

// ReadFrom seeks f to position, reads at most one buffer's worth of new
// bytes, and frames any complete lines found, invoking onLine once per
// line, immediately as each newline boundary is crossed, so the caller can
// checkpoint after every single line rather than once per batch.
//
// It returns the offset immediately after the last newline boundary crossed
// during this call (never mid-line) and whether any bytes were read at all.
// Because f is re-seeked to position on every call, a partial trailing line
// left over from a previous call is re-read rather than retained verbatim;
// this keeps the durable checkpoint (which is derived from the returned
// position) from ever advancing past a line that hasn't been fully framed.
func (fr *Framer) ReadFrom(f *os.File, position int64, onLine LineFunc) (newPosition int64, read bool, err error) {
	if _, err := f.Seek(position, io.SeekStart); err != nil {
		return position, false, err
	}
	n, rerr := f.Read(fr.readBuf)
	if n == 0 {
		if rerr != nil && rerr != io.EOF {
			return position, false, rerr
		}
		return position, false, nil
	}

	fr.lineBuffer = fr.lineBuffer[:0]
	fr.hasCR = false
	newPosition = position

	for i := 0; i < n; i++ {
		b := fr.readBuf[i]
		switch {
		case b == '\n':
			endPos := position + int64(i) + 1
			if err := fr.emit(onLine, endPos); err != nil {
				return endPos, true, err
			}
			fr.hasCR = false
			newPosition = endPos
		case b == '\r' && !fr.hasCR:
			fr.hasCR = true
		case b == '\r' && fr.hasCR:
			fr.lineBuffer = append(fr.lineBuffer, '\r')
		default:
			if fr.hasCR {
				endPos := position + int64(i)
				if err := fr.emit(onLine, endPos); err != nil {
					return endPos, true, err
				}
				fr.hasCR = false
				newPosition = endPos
			}
			fr.lineBuffer = append(fr.lineBuffer, b)
		}
	}
	return newPosition, true, nil
}

// emit delivers a copy of the accumulated line buffer to onLine along with
// the position the checkpoint should advance to, then resets the buffer.
func (fr *Framer) emit(onLine LineFunc, endPosition int64) error {
	line := make([]byte, len(fr.lineBuffer))
	copy(line, fr.lineBuffer)
	fr.lineBuffer = fr.lineBuffer[:0]
	return onLine(line, endPosition)
}

package tailer

import (
	"fmt"
	"strings"
)

// ConstructionError enumerates missing or invalid builder fields. New
// returns this, rather than panicking or accepting nils silently, so a
// missing required value fails construction deterministically.
type ConstructionError struct {
	Missing []string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("tailer: missing required fields: %s", strings.Join(e.Missing, ", "))
}

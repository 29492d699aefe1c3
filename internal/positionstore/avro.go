package positionstore

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/linkedin/goavro/v2"
)

// avroSchema is grounded in the commented-out goavro.NewOCFReader/Scan/Read
// plumbing the teacher staged in its audit driver but never finished wiring:
// this store finally exercises that codec path, using it to persist
// checkpoints instead of audit records.
const avroSchema = `
{
  "type": "record",
  "name": "Position",
  "fields": [
    {"name": "fingerprint", "type": "string"},
    {"name": "offset", "type": "long"},
    {"name": "recorded_at_ms", "type": "long"}
  ]
}`

// Avro is an alternate PositionStore backend that snapshots the whole
// fingerprint->offset map as an Avro object-container file on every Set.
// goavro's OCF writer only knows how to emit a fresh file, not append to an
// existing one, so each write rewrites the full snapshot to a temp file and
// renames it over the old one; the rename is what gives the same
// crash-consistency as the bbolt backend.
type Avro struct {
	mu        sync.Mutex
	path      string
	positions map[string]uint64
}

// OpenAvro opens (or creates) an Avro-backed PositionStore at path, replaying
// any existing OCF records into memory.
func OpenAvro(path string) (*Avro, error) {
	positions, err := loadAvroSnapshot(path)
	if err != nil {
		return nil, err
	}
	return &Avro{path: path, positions: positions}, nil
}

func loadAvroSnapshot(path string) (map[string]uint64, error) {
	positions := make(map[string]uint64)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return positions, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader, err := goavro.NewOCFReader(f)
	if err != nil {
		return nil, err
	}
	for reader.Scan() {
		rec, err := reader.Read()
		if err != nil {
			return nil, err
		}
		fields, ok := rec.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("positionstore: unexpected avro record shape %T", rec)
		}
		fp, _ := fields["fingerprint"].(string)
		off, _ := fields["offset"].(int64)
		positions[fp] = uint64(off)
	}
	return positions, nil
}

func (a *Avro) Get(fingerprint string) (offset uint64, ok bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	off, ok := a.positions[fingerprint]
	return off, ok, nil
}

func (a *Avro) Set(fingerprint string, offset uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.positions[fingerprint] = offset
	return a.flushLocked()
}

func (a *Avro) flushLocked() error {
	tmp := a.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	writer, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:      f,
		Schema: avroSchema,
	})
	if err != nil {
		f.Close()
		return err
	}

	now := time.Now().UnixNano() / int64(time.Millisecond)
	records := make([]interface{}, 0, len(a.positions))
	for fp, off := range a.positions {
		records = append(records, map[string]interface{}{
			"fingerprint":    fp,
			"offset":         int64(off),
			"recorded_at_ms": now,
		})
	}
	if err := writer.Append(records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, a.path)
}

func (a *Avro) Close() error { return nil }

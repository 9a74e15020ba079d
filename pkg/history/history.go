// Package history persists caption results so the server can show what
// it recently tagged. Records are stored newest-last under keys ordered
// by timestamp, encoded with MessagePack.
//
// The package includes a BadgerDB-backed implementation for durable
// deployments and an in-memory implementation for tests and ephemeral
// servers.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Record is one captioning result.
type Record struct {
	ID      string    `msgpack:"id" json:"id"`
	Time    time.Time `msgpack:"time" json:"time"`
	File    string    `msgpack:"file" json:"file"`
	Caption string    `msgpack:"caption" json:"caption"`
	Tags    []string  `msgpack:"tags" json:"tags"`
	Model   string    `msgpack:"model" json:"model"`
}

// Store persists caption records.
type Store interface {
	// Append stores a record. A zero ID or Time is filled in.
	Append(ctx context.Context, rec *Record) error

	// Recent returns up to n records, newest first.
	Recent(ctx context.Context, n int) ([]*Record, error)

	// Close releases resources held by the store.
	Close() error
}

// stamp fills in ID and Time if the caller left them zero.
func stamp(rec *Record) {
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
}

// recordKey builds a key that sorts lexicographically by time. The uuid
// suffix disambiguates records sharing a nanosecond.
func recordKey(rec *Record) string {
	return fmt.Sprintf("%020d-%s", rec.Time.UnixNano(), rec.ID)
}

func encodeRecord(rec *Record) ([]byte, error) {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("history: encode: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("history: decode: %w", err)
	}
	return &rec, nil
}

/**
 * @description
 * Append-only JSON-lines journal. Each record is one JSON document on its
 * own line, synced to stable storage on every append, so the file is both
 * human-greppable and machine-replayable after a crash.
 *
 * @notes
 * - The journal is record-agnostic: callers choose what to append. The
 *   terminal uses it as its electronic journal of committed transactions.
 * - Appends are serialized by an internal mutex; the journal is safe for
 *   use from the session loop and background jobs at the same time.
 */

package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const fileMode = 0o644

// ErrClosed is returned by appends after Close.
var ErrClosed = errors.New("journal is closed")

// Journal appends records to a single file, one JSON document per line.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// Open opens the journal file for appending, creating it if needed.
func Open(path string) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, fmt.Errorf("open journal file: %w", err)
	}
	return &Journal{file: file, enc: json.NewEncoder(file)}, nil
}

// Append writes one record and syncs it to disk before returning.
func (j *Journal) Append(v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return ErrClosed
	}
	if err := j.enc.Encode(v); err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("sync journal file: %w", err)
	}
	return nil
}

// Close syncs and closes the journal file. Further appends fail with
// ErrClosed.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	j.enc = nil
	if err != nil {
		return fmt.Errorf("close journal file: %w", err)
	}
	return nil
}

// ReadAll streams every record in the file at path to fn, in append order,
// as raw JSON. A missing file is an empty journal. fn errors stop the scan
// and are returned as-is.
func ReadAll(path string, fn func(raw json.RawMessage) error) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open journal file: %w", err)
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode journal record: %w", err)
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
}

/**
 * @description
 * File-backed implementation of the DeviceStateRepository port. Device
 * state is one small YAML document; every save rewrites the whole document
 * atomically (write to a temp file in the same directory, then rename over
 * the target), so a crash mid-write can never leave a torn file behind.
 *
 * @dependencies
 * - gopkg.in/yaml.v3: document codec.
 *
 * @notes
 * - After the first read the document is served from memory; saves mutate
 *   that copy and flush the full document. An internal mutex serializes
 *   the read-modify-write cycle.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Shyleen-m/ATMmachineV2/internal/domain"
)

const stateSchemaVersion = 1

// deviceStateDocument is the on-disk layout of the terminal state file.
// Vault and consumable levels are saved by different owners at different
// times, so each field is optional until its first save.
type deviceStateDocument struct {
	Schema    int       `yaml:"schema"`
	UpdatedAt time.Time `yaml:"updated_at"`
	Vault     *int64    `yaml:"vault_euros,omitempty"`
	Paper     *int      `yaml:"paper_level,omitempty"`
	Ink       *int      `yaml:"ink_level,omitempty"`
}

// FileDeviceStateRepository stores device state in a single YAML file.
type FileDeviceStateRepository struct {
	path string

	mu     sync.Mutex
	doc    deviceStateDocument
	loaded bool
}

var _ DeviceStateRepository = (*FileDeviceStateRepository)(nil)

// NewFileDeviceStateRepository returns a repository backed by the file at
// path. The file is created lazily on the first save.
func NewFileDeviceStateRepository(path string) *FileDeviceStateRepository {
	return &FileDeviceStateRepository{path: path}
}

// LoadConsumables returns the persisted paper and ink levels.
func (r *FileDeviceStateRepository) LoadConsumables(ctx context.Context) (domain.Consumables, error) {
	if err := ctx.Err(); err != nil {
		return domain.Consumables{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(); err != nil {
		return domain.Consumables{}, err
	}
	if r.doc.Paper == nil || r.doc.Ink == nil {
		return domain.Consumables{}, ErrStateNotFound
	}
	return domain.Consumables{Paper: *r.doc.Paper, Ink: *r.doc.Ink}, nil
}

// SaveConsumables persists the paper and ink levels, creating the state
// document on first use.
func (r *FileDeviceStateRepository) SaveConsumables(ctx context.Context, levels domain.Consumables) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(); err != nil && !errors.Is(err, ErrStateNotFound) {
		return err
	}
	r.doc.Paper = &levels.Paper
	r.doc.Ink = &levels.Ink
	r.loaded = true
	return r.flush()
}

// LoadVault returns the persisted vault total in whole euros.
func (r *FileDeviceStateRepository) LoadVault(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(); err != nil {
		return 0, err
	}
	if r.doc.Vault == nil {
		return 0, ErrStateNotFound
	}
	return *r.doc.Vault, nil
}

// SaveVault persists the vault total, creating the state document on first
// use.
func (r *FileDeviceStateRepository) SaveVault(ctx context.Context, total int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(); err != nil && !errors.Is(err, ErrStateNotFound) {
		return err
	}
	r.doc.Vault = &total
	r.loaded = true
	return r.flush()
}

// ensureLoaded reads the state file into memory once. Callers must hold
// the mutex.
func (r *FileDeviceStateRepository) ensureLoaded() error {
	if r.loaded {
		return nil
	}
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrStateNotFound
	}
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}
	var doc deviceStateDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode state file: %w", err)
	}
	r.doc = doc
	r.loaded = true
	return nil
}

// flush writes the in-memory document to disk atomically. Callers must
// hold the mutex.
func (r *FileDeviceStateRepository) flush() error {
	r.doc.Schema = stateSchemaVersion
	r.doc.UpdatedAt = time.Now().UTC()

	data, err := yaml.Marshal(r.doc)
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".atm-state-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

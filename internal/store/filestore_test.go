package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Shyleen-m/ATMmachineV2/internal/domain"
)

func TestFileDeviceStateRepositoryLoadBeforeFirstSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	repo := NewFileDeviceStateRepository(path)

	if _, err := repo.LoadConsumables(context.Background()); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
	if _, err := repo.LoadVault(context.Background()); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
}

func TestFileDeviceStateRepositorySurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	ctx := context.Background()

	repo := NewFileDeviceStateRepository(path)
	if err := repo.SaveConsumables(ctx, domain.Consumables{Paper: 64, Ink: 23}); err != nil {
		t.Fatalf("save consumables: %v", err)
	}
	if err := repo.SaveVault(ctx, 1520); err != nil {
		t.Fatalf("save vault: %v", err)
	}

	// A fresh repository instance reads the same document, as after a
	// terminal restart.
	reopened := NewFileDeviceStateRepository(path)
	levels, err := reopened.LoadConsumables(ctx)
	if err != nil {
		t.Fatalf("load consumables: %v", err)
	}
	if levels.Paper != 64 || levels.Ink != 23 {
		t.Fatalf("expected levels {64 23}, got %+v", levels)
	}
	vault, err := reopened.LoadVault(ctx)
	if err != nil {
		t.Fatalf("load vault: %v", err)
	}
	if vault != 1520 {
		t.Fatalf("expected vault 1520, got %d", vault)
	}
}

func TestFileDeviceStateRepositorySavePreservesOtherFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	ctx := context.Background()

	repo := NewFileDeviceStateRepository(path)
	if err := repo.SaveVault(ctx, 300); err != nil {
		t.Fatalf("save vault: %v", err)
	}
	if err := repo.SaveConsumables(ctx, domain.Consumables{Paper: 99, Ink: 98}); err != nil {
		t.Fatalf("save consumables: %v", err)
	}

	reopened := NewFileDeviceStateRepository(path)
	vault, err := reopened.LoadVault(ctx)
	if err != nil {
		t.Fatalf("load vault: %v", err)
	}
	if vault != 300 {
		t.Fatalf("saving consumables must not clobber the vault; got %d", vault)
	}
}

func TestFileDeviceStateRepositoryPartialDocumentReportsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	ctx := context.Background()

	// Only the consumables have ever been saved; the vault has not.
	repo := NewFileDeviceStateRepository(path)
	if err := repo.SaveConsumables(ctx, domain.Consumables{Paper: 100, Ink: 100}); err != nil {
		t.Fatalf("save consumables: %v", err)
	}

	reopened := NewFileDeviceStateRepository(path)
	if _, err := reopened.LoadVault(ctx); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound for never-saved vault, got %v", err)
	}
	if _, err := reopened.LoadConsumables(ctx); err != nil {
		t.Fatalf("expected consumables to load, got %v", err)
	}
}

func TestFileDeviceStateRepositoryRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	if err := os.WriteFile(path, []byte("\tnot yaml: ["), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	repo := NewFileDeviceStateRepository(path)
	if _, err := repo.LoadConsumables(context.Background()); err == nil {
		t.Fatalf("expected decode error for corrupt state file")
	}
}

func TestFileDeviceStateRepositoryHonorsCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	repo := NewFileDeviceStateRepository(path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := repo.SaveVault(ctx, 10); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

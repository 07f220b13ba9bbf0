/**
 * @description
 * This file defines the `DeviceStateRepository` interface, the persistence
 * port for terminal-local device state (consumable levels and the cash
 * vault), along with the sentinel errors shared by the store
 * implementations. The engine and printer depend on this contract only,
 * never on the on-disk layout, which keeps the device state swappable and
 * easy to stub in tests.
 *
 * @dependencies
 * - context: carried by every operation that may touch the filesystem.
 * - internal/domain: consumable level model.
 */

package store

import (
	"context"
	"errors"

	"github.com/Shyleen-m/ATMmachineV2/internal/domain"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStateNotFound     = errors.New("device state not found")
)

// DeviceStateRepository persists device state across terminal restarts.
// Implementations return ErrStateNotFound from loads until the first save
// has created the state document.
type DeviceStateRepository interface {
	LoadConsumables(ctx context.Context) (domain.Consumables, error)
	SaveConsumables(ctx context.Context, levels domain.Consumables) error
	LoadVault(ctx context.Context) (int64, error)
	SaveVault(ctx context.Context, total int64) error
}

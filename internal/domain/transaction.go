/**
 * @description
 * This file defines the core domain models for the ATM terminal: customer
 * accounts, the transactions recorded against them, printed receipts, and
 * the snapshot types reported to the technician panel and the electronic
 * journal.
 *
 * @notes
 * - Amounts are stored as `int64` whole euros. The terminal only moves
 *   banknotes, so there is no fractional currency anywhere in the domain.
 * - PINs are compared as exact strings and are never serialized.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind labels the two cash movements the terminal performs.
type TransactionKind string

const (
	KindDeposit  TransactionKind = "deposit"
	KindWithdraw TransactionKind = "withdraw"
)

// Account represents a customer known to this terminal. Accounts are keyed
// by the exact, case-sensitive owner name.
type Account struct {
	Owner        string        `json:"owner"`
	PIN          string        `json:"-"`
	Balance      int64         `json:"balance"` // whole euros
	Transactions []Transaction `json:"transactions"`
}

// Transaction is one committed cash movement against an account. Records
// are immutable once created and kept in insertion order.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	Kind         TransactionKind `json:"kind"`
	Amount       int64           `json:"amount"`        // whole euros
	BalanceAfter int64           `json:"balance_after"` // whole euros
	CreatedAt    time.Time       `json:"created_at"`
}

// Receipt carries the fields the printer renders after a committed
// transaction.
type Receipt struct {
	TerminalID  string
	Owner       string
	Transaction Transaction
}

// JournalEntry is one record in the terminal's append-only electronic
// journal, written after every committed transaction.
type JournalEntry struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	TerminalID    string          `json:"terminal_id"`
	Owner         string          `json:"owner"`
	Kind          TransactionKind `json:"kind"`
	Amount        int64           `json:"amount"`
	BalanceAfter  int64           `json:"balance_after"`
	VaultAfter    int64           `json:"vault_after"`
	RecordedAt    time.Time       `json:"recorded_at"`
}

// DeviceStatus is the technician-panel view of the terminal.
type DeviceStatus struct {
	TerminalID    string      `json:"terminal_id"`
	CashAvailable int64       `json:"cash_available"` // whole euros
	Supplies      Consumables `json:"supplies"`
	Band          SupplyBand  `json:"band"`
	Offline       bool        `json:"offline"`
	OutOfService  bool        `json:"out_of_service"`
}

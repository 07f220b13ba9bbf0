/**
 * @description
 * This file contains the core business logic for the terminal. The `Engine`
 * struct owns the cash vault and the session context, derives the
 * out-of-service state, and orchestrates every operation: authentication,
 * balance inquiry, deposits, withdrawals, and the technician maintenance
 * actions.
 *
 * Key features:
 * - All-or-nothing cash operations: limits are checked before any state
 *   changes, and account balance and vault always move together.
 * - Out-of-service derivation: empty paper, empty ink, or an explicit
 *   technician toggle block cash operations, while balance inquiry,
 *   history, and authentication stay available.
 * - Every committed transaction prints a receipt and lands in the
 *   electronic journal.
 *
 * @dependencies
 * - internal/domain, internal/store, internal/printer: models, account and
 *   device-state access, receipt printing.
 * - log/slog: structured logging.
 *
 * @notes
 * - A single mutex guards each logical transaction end to end, so the
 *   background state-sync job can never observe a vault that does not
 *   match its account movement.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Shyleen-m/ATMmachineV2/internal/config"
	"github.com/Shyleen-m/ATMmachineV2/internal/domain"
	"github.com/Shyleen-m/ATMmachineV2/internal/printer"
	"github.com/Shyleen-m/ATMmachineV2/internal/store"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrOutOfService         = errors.New("terminal is out of service")
)

// Journal is the sink for committed-transaction records. A nil Journal
// disables journaling; a failed append never unwinds a committed cash
// movement.
type Journal interface {
	Append(v any) error
}

// Result reports one committed cash operation back to the front end.
type Result struct {
	Transaction  domain.Transaction
	Account      domain.Account
	ReceiptText  string
	OutOfService bool
}

// Engine owns the cash vault, the session context, and the out-of-service
// derivation for one terminal.
type Engine struct {
	accounts *store.AccountStore
	printer  *printer.Printer
	state    store.DeviceStateRepository
	journal  Journal
	logger   *slog.Logger

	terminalID        string
	techID            string
	techSecret        string
	allowAutoRegister bool

	mu      sync.Mutex
	vault   int64
	offline bool
	session string
}

// NewEngine wires the engine and restores the vault total from the device
// state repository. A missing state document means a fresh device: the
// vault is seeded from configuration and saved immediately.
func NewEngine(ctx context.Context, accounts *store.AccountStore, prn *printer.Printer, state store.DeviceStateRepository, jrnl Journal, logger *slog.Logger, cfg config.Config) (*Engine, error) {
	vault, err := state.LoadVault(ctx)
	switch {
	case errors.Is(err, store.ErrStateNotFound):
		vault = cfg.VaultInitialEuros
		if err := state.SaveVault(ctx, vault); err != nil {
			return nil, fmt.Errorf("seed vault state: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load vault state: %w", err)
	}
	if vault < 0 {
		logger.Warn("negative vault total in state file; coercing to zero", "vault", vault)
		vault = 0
	}

	return &Engine{
		accounts:          accounts,
		printer:           prn,
		state:             state,
		journal:           jrnl,
		logger:            logger,
		terminalID:        cfg.TerminalID,
		techID:            cfg.TechnicianID,
		techSecret:        cfg.TechnicianSecret,
		allowAutoRegister: cfg.AllowAutoRegister,
		vault:             vault,
	}, nil
}

// AuthenticateUser checks name and pin against the account store. Unknown
// owners are auto-registered with a zero balance when the terminal's
// auto-register policy allows it. There is no lockout: a failed attempt
// changes nothing. Authentication works while out of service.
func (e *Engine) AuthenticateUser(name, pin string) (domain.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	acct, err := e.accounts.Find(name)
	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		if !e.allowAutoRegister {
			e.logger.Warn("login rejected for unknown owner", "owner", name)
			return domain.Account{}, ErrAuthenticationFailed
		}
		acct, err = e.accounts.Create(name, pin)
		if err != nil {
			return domain.Account{}, fmt.Errorf("auto-register account: %w", err)
		}
		e.logger.Info("auto-registered new account", "owner", name)
	case err != nil:
		return domain.Account{}, fmt.Errorf("find account: %w", err)
	default:
		if acct.PIN != pin {
			e.logger.Warn("pin mismatch", "owner", name)
			return domain.Account{}, ErrAuthenticationFailed
		}
	}

	e.session = name
	acct.PIN = ""
	return acct, nil
}

// AuthenticateTechnician checks the technician credentials with an exact
// match. It works while the terminal is out of service: a technician must
// be able to log in to fix it.
func (e *Engine) AuthenticateTechnician(id, secret string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id != e.techID || secret != e.techSecret {
		e.logger.Warn("technician authentication failed")
		return ErrAuthenticationFailed
	}
	e.logger.Info("technician authenticated", "technician", id)
	return nil
}

// Logout clears the tracked session owner.
func (e *Engine) Logout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endSessionLocked("logout")
}

// SessionOwner returns the owner of the current session, or the empty
// string when nobody is logged in.
func (e *Engine) SessionOwner() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// OutOfService reports whether cash operations are blocked: paper or ink
// at the depletion floor, or the terminal explicitly taken offline.
func (e *Engine) OutOfService() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outOfServiceLocked()
}

// Balance returns the current account balance. Pure read, available even
// when the terminal is out of service.
func (e *Engine) Balance(owner string) (int64, error) {
	acct, err := e.accounts.Find(owner)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// History returns the account's transactions in insertion order.
func (e *Engine) History(owner string) ([]domain.Transaction, error) {
	return e.accounts.History(owner)
}

// CashAvailable returns the current vault total.
func (e *Engine) CashAvailable() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vault
}

// SupplyBand classifies the printer supplies so the front end can warn the
// customer (low) or abort the operation (depleted) before cash moves.
func (e *Engine) SupplyBand() domain.SupplyBand {
	return e.printer.Band()
}

// Deposit credits the account and the vault with the exact value of a
// resolved note bundle, prints the receipt, and journals the movement.
func (e *Engine) Deposit(ctx context.Context, owner string, bundle domain.CashBundle) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// 1. A terminal that cannot print receipts accepts no cash.
	if e.outOfServiceLocked() {
		e.endSessionLocked("out of service")
		return nil, ErrOutOfService
	}

	// 2. Re-validate the resolved amount. The selection enforced this
	// already, but the engine is the last line of defense.
	amount := bundle.Total()
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	// 3. Credit account and vault together.
	acct, tx, err := e.accounts.Credit(owner, amount)
	if err != nil {
		return nil, fmt.Errorf("credit account: %w", err)
	}
	e.vault += amount
	e.persistVaultLocked(ctx)

	// 4. Print, journal, and detect depletion caused by this print.
	res := &Result{Transaction: tx, Account: acct}
	e.finishCashOpLocked(ctx, res, owner)
	e.logger.Info("deposit committed", "owner", owner, "amount", amount, "vault", e.vault)
	return res, nil
}

// Withdraw debits the account and the vault with the exact value of a
// resolved note bundle. The operation is all-or-nothing: the account
// balance is checked first, then the vault, before any state changes.
func (e *Engine) Withdraw(ctx context.Context, owner string, bundle domain.CashBundle) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// 1. Service and amount checks, before anything moves.
	if e.outOfServiceLocked() {
		e.endSessionLocked("out of service")
		return nil, ErrOutOfService
	}
	amount := bundle.Total()
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	// 2. Limits: the customer's balance, then the terminal's cash.
	acct, err := e.accounts.Find(owner)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if amount > acct.Balance {
		return nil, store.ErrInsufficientFunds
	}
	if amount > e.vault {
		return nil, domain.ErrInsufficientCash
	}

	// 3. Debit account and vault together.
	acct, tx, err := e.accounts.Debit(owner, amount)
	if err != nil {
		return nil, fmt.Errorf("debit account: %w", err)
	}
	e.vault -= amount
	e.persistVaultLocked(ctx)

	// 4. Print, journal, and detect depletion caused by this print.
	res := &Result{Transaction: tx, Account: acct}
	e.finishCashOpLocked(ctx, res, owner)
	e.logger.Info("withdrawal committed", "owner", owner, "amount", amount, "vault", e.vault)
	return res, nil
}

// RefillPaper restores the paper supply to capacity. If depletion was the
// only blocker, the terminal returns to service.
func (e *Engine) RefillPaper(ctx context.Context) error {
	if err := e.printer.RefillPaper(ctx); err != nil {
		return err
	}
	e.logger.Info("paper refilled")
	return nil
}

// RefillInk restores the ink supply to capacity. If depletion was the only
// blocker, the terminal returns to service.
func (e *Engine) RefillInk(ctx context.Context) error {
	if err := e.printer.RefillInk(ctx); err != nil {
		return err
	}
	e.logger.Info("ink refilled")
	return nil
}

// LoadCash adds notes to the vault. The amount must be a positive multiple
// of the smallest banknote, like any other cash movement.
func (e *Engine) LoadCash(ctx context.Context, amount int64) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.vault += amount
	e.persistVaultLocked(ctx)
	e.logger.Info("cash loaded", "amount", amount, "vault", e.vault)
	return nil
}

// SetOffline flips the explicit technician out-of-service switch.
func (e *Engine) SetOffline(offline bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.offline == offline {
		return
	}
	e.offline = offline
	e.logger.Info("service mode changed", "offline", offline)
}

// Status reports the device view shown on the technician panel.
func (e *Engine) Status() domain.DeviceStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	return domain.DeviceStatus{
		TerminalID:    e.terminalID,
		CashAvailable: e.vault,
		Supplies:      e.printer.Levels(),
		Band:          e.printer.Band(),
		Offline:       e.offline,
		OutOfService:  e.outOfServiceLocked(),
	}
}

// SyncState flushes the vault total and consumable levels to the device
// state repository. State is saved on every mutation as well; this is the
// backstop for saves that failed at commit time.
func (e *Engine) SyncState(ctx context.Context) error {
	e.mu.Lock()
	vault := e.vault
	e.mu.Unlock()

	if err := e.state.SaveVault(ctx, vault); err != nil {
		return fmt.Errorf("sync vault total: %w", err)
	}
	if err := e.printer.Sync(ctx); err != nil {
		return fmt.Errorf("sync consumable levels: %w", err)
	}
	return nil
}

func (e *Engine) outOfServiceLocked() bool {
	return e.offline || e.printer.Band() == domain.SupplyDepleted
}

func (e *Engine) endSessionLocked(reason string) {
	if e.session == "" {
		return
	}
	e.logger.Info("session ended by terminal", "owner", e.session, "reason", reason)
	e.session = ""
}

// persistVaultLocked pushes the vault total to the device state file. The
// in-memory total stays authoritative: a failed save is logged and retried
// by the next sync rather than unwinding a cash movement that has already
// happened.
func (e *Engine) persistVaultLocked(ctx context.Context) {
	if err := e.state.SaveVault(ctx, e.vault); err != nil {
		e.logger.Error("failed to persist vault total", "error", err, "vault", e.vault)
	}
}

// finishCashOpLocked prints the receipt, journals the committed movement,
// and ends the session when this print depleted the supplies.
func (e *Engine) finishCashOpLocked(ctx context.Context, res *Result, owner string) {
	receipt := domain.Receipt{TerminalID: e.terminalID, Owner: owner, Transaction: res.Transaction}
	text, err := e.printer.Print(ctx, receipt)
	switch {
	case errors.Is(err, printer.ErrSuppliesDepleted):
		e.logger.Error("receipt print refused", "error", err)
	case err != nil:
		e.logger.Error("consumable levels not persisted after print", "error", err)
	}
	res.ReceiptText = text

	if e.journal != nil {
		entry := domain.JournalEntry{
			TransactionID: res.Transaction.ID,
			TerminalID:    e.terminalID,
			Owner:         owner,
			Kind:          res.Transaction.Kind,
			Amount:        res.Transaction.Amount,
			BalanceAfter:  res.Transaction.BalanceAfter,
			VaultAfter:    e.vault,
			RecordedAt:    time.Now().UTC(),
		}
		if err := e.journal.Append(entry); err != nil {
			e.logger.Warn("failed to journal transaction", "error", err, "transaction_id", res.Transaction.ID)
		}
	}

	if e.printer.Band() == domain.SupplyDepleted {
		res.OutOfService = true
		e.endSessionLocked("supplies depleted")
	}
}

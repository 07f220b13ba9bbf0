/**
 * @description
 * In-memory account store for the terminal. The store is the sole owner of
 * Account and Transaction lifecycles: balances change and history grows
 * only through Credit and Debit, each inside one critical section, so a
 * balance can never be observed without the transaction that produced it.
 *
 * @notes
 * - Accounts live for the process lifetime only. A terminal restart starts
 *   from an empty store, matching the single-terminal deployment model.
 * - Every lookup returns a deep copy. Callers can never mutate store state
 *   through a returned value.
 * - The store does not validate amounts; the engine has already done that
 *   by the time a credit or debit reaches it.
 */

package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shyleen-m/ATMmachineV2/internal/domain"
)

// AccountStore keeps this terminal's customer accounts in memory, keyed by
// the exact, case-sensitive owner name.
type AccountStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

// NewAccountStore returns an empty store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]*domain.Account)}
}

// Create registers a new zero-balance account bound to pin.
func (s *AccountStore) Create(owner, pin string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[owner]; ok {
		return domain.Account{}, ErrAccountExists
	}
	acct := &domain.Account{Owner: owner, PIN: pin}
	s.accounts[owner] = acct
	return copyAccount(acct), nil
}

// Find returns a snapshot of the named account.
func (s *AccountStore) Find(owner string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[owner]
	if !ok {
		return domain.Account{}, ErrAccountNotFound
	}
	return copyAccount(acct), nil
}

// Credit increases the balance and appends the matching transaction record
// in one step. It returns the post-credit account snapshot and the new
// record.
func (s *AccountStore) Credit(owner string, amount int64) (domain.Account, domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[owner]
	if !ok {
		return domain.Account{}, domain.Transaction{}, ErrAccountNotFound
	}
	acct.Balance += amount
	tx := newTransaction(domain.KindDeposit, amount, acct.Balance)
	acct.Transactions = append(acct.Transactions, tx)
	return copyAccount(acct), tx, nil
}

// Debit decreases the balance and appends the matching transaction record.
// The account is left untouched when the balance cannot cover the amount.
func (s *AccountStore) Debit(owner string, amount int64) (domain.Account, domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[owner]
	if !ok {
		return domain.Account{}, domain.Transaction{}, ErrAccountNotFound
	}
	if acct.Balance < amount {
		return domain.Account{}, domain.Transaction{}, ErrInsufficientFunds
	}
	acct.Balance -= amount
	tx := newTransaction(domain.KindWithdraw, amount, acct.Balance)
	acct.Transactions = append(acct.Transactions, tx)
	return copyAccount(acct), tx, nil
}

// History returns a copy of the account's transactions in insertion order.
func (s *AccountStore) History(owner string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[owner]
	if !ok {
		return nil, ErrAccountNotFound
	}
	out := make([]domain.Transaction, len(acct.Transactions))
	copy(out, acct.Transactions)
	return out, nil
}

func newTransaction(kind domain.TransactionKind, amount, balanceAfter int64) domain.Transaction {
	return domain.Transaction{
		ID:           uuid.New(),
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now().UTC(),
	}
}

func copyAccount(acct *domain.Account) domain.Account {
	out := *acct
	out.Transactions = make([]domain.Transaction, len(acct.Transactions))
	copy(out.Transactions, acct.Transactions)
	return out
}

package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Shyleen-m/ATMmachineV2/internal/app"
	"github.com/Shyleen-m/ATMmachineV2/internal/config"
	"github.com/Shyleen-m/ATMmachineV2/internal/domain"
	"github.com/Shyleen-m/ATMmachineV2/internal/printer"
	"github.com/Shyleen-m/ATMmachineV2/internal/store"
)

type stateRepoStub struct {
	levels    domain.Consumables
	hasLevels bool
	vault     int64
	hasVault  bool
}

func (s *stateRepoStub) LoadConsumables(ctx context.Context) (domain.Consumables, error) {
	if !s.hasLevels {
		return domain.Consumables{}, store.ErrStateNotFound
	}
	return s.levels, nil
}

func (s *stateRepoStub) SaveConsumables(ctx context.Context, levels domain.Consumables) error {
	s.levels = levels
	s.hasLevels = true
	return nil
}

func (s *stateRepoStub) LoadVault(ctx context.Context) (int64, error) {
	if !s.hasVault {
		return 0, store.ErrStateNotFound
	}
	return s.vault, nil
}

func (s *stateRepoStub) SaveVault(ctx context.Context, total int64) error {
	s.vault = total
	s.hasVault = true
	return nil
}

type terminalFixture struct {
	engine   *app.Engine
	accounts *store.AccountStore
}

func newTerminalFixture(t *testing.T, repo *stateRepoStub, vaultInitial int64) *terminalFixture {
	t.Helper()

	if repo == nil {
		repo = &stateRepoStub{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prn, err := printer.New(context.Background(), repo, printer.Config{
		PaperCostPerPrint: 1,
		InkCostPerPrint:   2,
		LowThreshold:      10,
	}, logger)
	if err != nil {
		t.Fatalf("printer: %v", err)
	}

	accounts := store.NewAccountStore()
	cfg := config.Config{
		TerminalID:        "ATM-0001",
		TechnicianID:      "tech-7",
		TechnicianSecret:  "s3cret",
		VaultInitialEuros: vaultInitial,
		AllowAutoRegister: true,
	}
	engine, err := app.NewEngine(context.Background(), accounts, prn, repo, nil, logger, cfg)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return &terminalFixture{engine: engine, accounts: accounts}
}

// runSession scripts one full console session: each element is one line of
// operator input. The returned string is everything the terminal printed.
func (fx *terminalFixture) runSession(t *testing.T, lines ...string) string {
	t.Helper()

	var out bytes.Buffer
	script := strings.Join(lines, "\n") + "\n"
	term := New(fx.engine, strings.NewReader(script), &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := term.Run(context.Background()); err != nil {
		t.Fatalf("session ended with error: %v\noutput:\n%s", err, out.String())
	}
	return out.String()
}

func TestCustomerDepositSession(t *testing.T) {
	fx := newTerminalFixture(t, nil, 1000)

	out := fx.runSession(t,
		"1",     // customer login
		"alice", // name
		"1234",  // pin
		"2",     // deposit
		"35",    // desired total
		"3",     // EUR 20 (options for 35 are 5, 10, 20)
		"1",     // one note
		"2",     // EUR 10 (options for 15 are 5, 10)
		"1",     // one note
		"1",     // EUR 5
		"1",     // one note
		"5",     // logout
		"3",     // exit
	)

	for _, want := range []string{
		"CASHPOINT RECEIPT",
		"EUR 35",
		"Deposit complete. New balance: EUR 35",
		"Logged out.",
		"Goodbye.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	if balance, err := fx.engine.Balance("alice"); err != nil || balance != 35 {
		t.Fatalf("expected balance 35, got %d (err %v)", balance, err)
	}
	if got := fx.engine.CashAvailable(); got != 1035 {
		t.Fatalf("expected vault 1035, got %d", got)
	}
}

func TestDepositCancelLeavesStateUntouched(t *testing.T) {
	fx := newTerminalFixture(t, nil, 1000)

	out := fx.runSession(t,
		"1", "alice", "1234",
		"2",  // deposit
		"20", // desired total
		"0",  // cancel at the first selection step
		"5",  // logout
		"3",  // exit
	)

	if !strings.Contains(out, "Deposit cancelled.") {
		t.Fatalf("expected a cancellation notice, got:\n%s", out)
	}
	if balance, _ := fx.engine.Balance("alice"); balance != 0 {
		t.Fatalf("a cancelled deposit must not move money, balance = %d", balance)
	}
	if got := fx.engine.CashAvailable(); got != 1000 {
		t.Fatalf("expected vault unchanged at 1000, got %d", got)
	}
	if history, _ := fx.engine.History("alice"); len(history) != 0 {
		t.Fatalf("a cancelled deposit must not be recorded, got %v", history)
	}
}

func TestWithdrawBlockedByBalanceThenByVault(t *testing.T) {
	fx := newTerminalFixture(t, nil, 10)
	if _, err := fx.accounts.Create("alice", "1234"); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if _, _, err := fx.accounts.Credit("alice", 50); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	out := fx.runSession(t,
		"1", "alice", "1234",
		"3", "100", // withdrawal above the balance
		"3", "20", // withdrawal within balance but above the vault
		"5", "3",
	)

	if !strings.Contains(out, "Insufficient account balance.") {
		t.Fatalf("expected the balance rejection, got:\n%s", out)
	}
	if !strings.Contains(out, "Terminal does not have enough cash.") {
		t.Fatalf("expected the vault rejection, got:\n%s", out)
	}
	if balance, _ := fx.engine.Balance("alice"); balance != 50 {
		t.Fatalf("expected balance unchanged at 50, got %d", balance)
	}
}

func TestWithdrawSessionDispensesAndRecords(t *testing.T) {
	fx := newTerminalFixture(t, nil, 1000)
	if _, err := fx.accounts.Create("alice", "1234"); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if _, _, err := fx.accounts.Credit("alice", 100); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	out := fx.runSession(t,
		"1", "alice", "1234",
		"3",  // withdraw
		"40", // desired total
		"3",  // EUR 20 (options for 40 are 5, 10, 20)
		"2",  // two notes
		"4",  // history
		"5", "3",
	)

	if !strings.Contains(out, "Please take your cash. New balance: EUR 60") {
		t.Fatalf("expected the dispense notice, got:\n%s", out)
	}
	if !strings.Contains(out, "--- TRANSACTION HISTORY ---") || !strings.Contains(out, "balance EUR 60") {
		t.Fatalf("expected the withdrawal in the history listing, got:\n%s", out)
	}
	if got := fx.engine.CashAvailable(); got != 960 {
		t.Fatalf("expected vault 960, got %d", got)
	}
}

func TestInvalidMenuInputReprompts(t *testing.T) {
	fx := newTerminalFixture(t, nil, 1000)

	out := fx.runSession(t,
		"abc", // not a number
		"9",   // not an option
		"3",
	)

	if !strings.Contains(out, "Invalid input.") {
		t.Fatalf("expected the parse rejection, got:\n%s", out)
	}
	if !strings.Contains(out, "Invalid option.") {
		t.Fatalf("expected the range rejection, got:\n%s", out)
	}
}

func TestClosedInputEndsTheSessionCleanly(t *testing.T) {
	fx := newTerminalFixture(t, nil, 1000)

	// The script ends mid-login; Run must return nil as if Exit was chosen.
	out := fx.runSession(t, "1", "alice")
	if !strings.Contains(out, "PIN: ") {
		t.Fatalf("expected the session to end at the pin prompt, got:\n%s", out)
	}
}

func TestLowSuppliesWarnWithoutBlockingTheDeposit(t *testing.T) {
	repo := &stateRepoStub{levels: domain.Consumables{Paper: 8, Ink: 60}, hasLevels: true}
	fx := newTerminalFixture(t, repo, 1000)

	out := fx.runSession(t,
		"1", "alice", "1234",
		"2",  // deposit
		"20", // desired total
		"3",  // EUR 20 (options for 20 are 5, 10, 20)
		"1",  // one note
		"5", "3",
	)

	if !strings.Contains(out, "[!] Receipt supplies are running low.") {
		t.Fatalf("expected the low-supply warning, got:\n%s", out)
	}
	if !strings.Contains(out, "Deposit complete. New balance: EUR 20") {
		t.Fatalf("a low band must only warn, not block the deposit, got:\n%s", out)
	}
	if strings.Contains(out, "Terminal is now out of service.") {
		t.Fatalf("a low band must not force a logout, got:\n%s", out)
	}
	if balance, _ := fx.engine.Balance("alice"); balance != 20 {
		t.Fatalf("expected balance 20, got %d", balance)
	}
	if got := fx.engine.SupplyBand(); got != domain.SupplyLow {
		t.Fatalf("expected the band to stay low after the print, got %q", got)
	}
}

func TestDepletionDuringDepositForcesLogout(t *testing.T) {
	repo := &stateRepoStub{levels: domain.Consumables{Paper: 5, Ink: 2}, hasLevels: true}
	fx := newTerminalFixture(t, repo, 1000)

	out := fx.runSession(t,
		"1", "alice", "1234",
		"2",  // deposit
		"20", // desired total
		"3",  // EUR 20
		"1",  // one note; this print drains the ink
		"3",  // back at the home screen: exit
	)

	if !strings.Contains(out, "Terminal is now out of service. Logging out.") {
		t.Fatalf("expected the forced logout notice, got:\n%s", out)
	}
	if !strings.Contains(out, "[!] Terminal is out of service. Cash operations are unavailable.") {
		t.Fatalf("expected the home screen banner, got:\n%s", out)
	}
	if got := fx.engine.SessionOwner(); got != "" {
		t.Fatalf("expected the session ended, still %q", got)
	}
	if balance, _ := fx.engine.Balance("alice"); balance != 20 {
		t.Fatalf("the depleting deposit itself must commit, balance = %d", balance)
	}
}

func TestOutOfServiceBlocksCashEntryPointsButNotBalance(t *testing.T) {
	repo := &stateRepoStub{levels: domain.Consumables{Paper: 0, Ink: 50}, hasLevels: true}
	fx := newTerminalFixture(t, repo, 1000)

	out := fx.runSession(t,
		"1", "alice", "1234",
		"2", // deposit entry point: blocked
		"1", // balance: still available
		"5", "3",
	)

	if !strings.Contains(out, "Terminal is out of service. Operation unavailable.") {
		t.Fatalf("expected the entry-point block, got:\n%s", out)
	}
	if !strings.Contains(out, "Balance: EUR 0") {
		t.Fatalf("expected the balance inquiry to keep working, got:\n%s", out)
	}
}

func TestTechnicianPanelSession(t *testing.T) {
	fx := newTerminalFixture(t, nil, 1000)

	out := fx.runSession(t,
		"2",      // technician login
		"tech-7", // id
		"s3cret", // password
		"1",      // device status
		"4",      // load cash
		"200",    // amount
		"5",      // toggle offline
		"6",      // exit panel
		"3",      // exit
	)

	for _, want := range []string{
		"Terminal   : ATM-0001",
		"Cash loaded. Vault now holds EUR 1200.",
		"Terminal taken offline.",
		"[!] Terminal is out of service. Cash operations are unavailable.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	status := fx.engine.Status()
	if !status.Offline || !status.OutOfService {
		t.Fatalf("expected the terminal offline, got %+v", status)
	}
	if status.CashAvailable != 1200 {
		t.Fatalf("expected vault 1200, got %d", status.CashAvailable)
	}
}

func TestTechnicianLoginRejectsBadCredentials(t *testing.T) {
	fx := newTerminalFixture(t, nil, 1000)

	out := fx.runSession(t,
		"2", "tech-7", "wrong",
		"3",
	)

	if !strings.Contains(out, "Access denied.") {
		t.Fatalf("expected the rejection, got:\n%s", out)
	}
}

func TestTechnicianRefillRestoresService(t *testing.T) {
	repo := &stateRepoStub{levels: domain.Consumables{Paper: 0, Ink: 0}, hasLevels: true}
	fx := newTerminalFixture(t, repo, 1000)

	out := fx.runSession(t,
		"2", "tech-7", "s3cret",
		"2", // refill paper
		"3", // refill ink
		"1", // status
		"6", "3",
	)

	if !strings.Contains(out, "Paper refilled to 100.") || !strings.Contains(out, "Ink refilled to 100.") {
		t.Fatalf("expected both refill notices, got:\n%s", out)
	}
	if !strings.Contains(out, "In service : true") {
		t.Fatalf("expected the status to show the terminal back in service, got:\n%s", out)
	}
	if fx.engine.OutOfService() {
		t.Fatalf("expected the refills to restore service")
	}
}

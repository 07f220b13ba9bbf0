/**
 * @description
 * Interactive console front end for the terminal. `Terminal` renders the
 * home screen, the customer menu, and the technician panel on an injected
 * reader/writer pair and drives the engine: authentication, balance and
 * history reads, the denomination selection loops for deposits and
 * withdrawals, and the maintenance actions.
 *
 * Key features:
 * - Out-of-service awareness: a banner on the home screen, a hard block on
 *   the deposit and withdraw entry points, and a forced logout when an
 *   operation depletes the receipt supplies.
 * - The selection loops only offer denominations that still fit, with an
 *   exact max count per note, and can be cancelled at any step without
 *   moving money.
 *
 * @dependencies
 * - internal/app: the engine driven by the menus.
 * - internal/domain: selection algorithm and amount validation.
 * - log/slog: structured logging.
 *
 * @notes
 * - All reads and writes go through the injected reader and writer, so
 *   tests drive whole sessions through scripted input.
 * - A closed input stream ends the loop cleanly, like choosing Exit.
 */

package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Shyleen-m/ATMmachineV2/internal/app"
	"github.com/Shyleen-m/ATMmachineV2/internal/domain"
	"github.com/Shyleen-m/ATMmachineV2/internal/store"
)

var (
	errInputClosed = errors.New("input closed")
	errNotANumber  = errors.New("not a number")
)

// Terminal is the interactive session loop around the engine.
type Terminal struct {
	engine *app.Engine
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger
}

// New builds a terminal reading from in and writing to out.
func New(engine *app.Engine, in io.Reader, out io.Writer, logger *slog.Logger) *Terminal {
	return &Terminal{
		engine: engine,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// Run drives the home screen until the operator exits, the input stream
// closes, or the context is cancelled.
func (t *Terminal) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		t.say("")
		t.say("--- ATM HOME ---")
		if t.engine.OutOfService() {
			t.say("[!] Terminal is out of service. Cash operations are unavailable.")
		}
		t.say("1. Customer login")
		t.say("2. Technician login")
		t.say("3. Exit")

		choice, err := t.promptInt("Select: ")
		if errors.Is(err, errNotANumber) {
			t.say("Invalid input.")
			continue
		}
		if err != nil {
			return finish(err)
		}

		switch choice {
		case 1:
			err = t.customerLogin(ctx)
		case 2:
			err = t.technicianLogin(ctx)
		case 3:
			t.say("Goodbye.")
			return nil
		default:
			t.say("Invalid option.")
		}
		if err != nil {
			return finish(err)
		}
	}
}

// finish maps a closed input stream to a clean exit.
func finish(err error) error {
	if errors.Is(err, errInputClosed) {
		return nil
	}
	return err
}

func (t *Terminal) customerLogin(ctx context.Context) error {
	name, err := t.prompt("Name: ")
	if err != nil {
		return err
	}
	pin, err := t.prompt("PIN: ")
	if err != nil {
		return err
	}

	acct, err := t.engine.AuthenticateUser(name, pin)
	if errors.Is(err, app.ErrAuthenticationFailed) {
		t.say("Access denied.")
		return nil
	}
	if err != nil {
		t.logger.Error("customer login failed", "error", err)
		t.say("Login failed. Please try again.")
		return nil
	}

	return t.customerMenu(ctx, acct.Owner)
}

func (t *Terminal) customerMenu(ctx context.Context, owner string) error {
	for {
		t.say("")
		t.say("--- CUSTOMER MENU (%s) ---", owner)
		t.say("1. Check balance")
		t.say("2. Deposit")
		t.say("3. Withdraw")
		t.say("4. Transaction history")
		t.say("5. Logout")

		choice, err := t.promptInt("Action: ")
		if errors.Is(err, errNotANumber) {
			t.say("Invalid input.")
			continue
		}
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			balance, err := t.engine.Balance(owner)
			if err != nil {
				t.say("Balance unavailable.")
				continue
			}
			t.say("Balance: EUR %d", balance)
		case 2:
			stay, err := t.depositFlow(ctx, owner)
			if err != nil {
				return err
			}
			if !stay {
				return nil
			}
		case 3:
			stay, err := t.withdrawFlow(ctx, owner)
			if err != nil {
				return err
			}
			if !stay {
				return nil
			}
		case 4:
			t.printHistory(owner)
		case 5:
			t.engine.Logout()
			t.say("Logged out.")
			return nil
		default:
			t.say("Invalid option.")
		}
	}
}

func (t *Terminal) printHistory(owner string) {
	history, err := t.engine.History(owner)
	if err != nil {
		t.say("History unavailable.")
		return
	}
	if len(history) == 0 {
		t.say("No transactions yet.")
		return
	}

	t.say("")
	t.say("--- TRANSACTION HISTORY ---")
	for _, tx := range history {
		t.say("%s  %-9s EUR %-6d balance EUR %d",
			tx.CreatedAt.Format("2006-01-02 15:04"), tx.Kind, tx.Amount, tx.BalanceAfter)
	}
}

// depositFlow runs one deposit. The returned bool reports whether the
// customer session continues; it is false after a forced logout.
func (t *Terminal) depositFlow(ctx context.Context, owner string) (bool, error) {
	if !t.supplyCheck() {
		return true, nil
	}

	desired, err := t.promptInt("Desired total deposit (EUR): ")
	if errors.Is(err, errNotANumber) {
		t.say("Invalid amount.")
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if err := domain.ValidateAmount(desired); err != nil {
		t.say("Amount must be positive and a multiple of EUR %d.", domain.AmountStep)
		return true, nil
	}

	sel, err := domain.NewDepositSelection(desired)
	if err != nil {
		t.say("Amount must be positive and a multiple of EUR %d.", domain.AmountStep)
		return true, nil
	}

	bundle, confirmed, err := t.resolveBundle(sel, "Deposit")
	if err != nil || !confirmed {
		return true, err
	}

	res, err := t.engine.Deposit(ctx, owner, bundle)
	if err != nil {
		return t.reportCashOpError(err)
	}
	t.showReceipt(res)
	t.say("Deposit complete. New balance: EUR %d", res.Account.Balance)
	return t.afterCashOp(res), nil
}

// withdrawFlow runs one withdrawal with the balance and vault caps checked
// up front, before the customer starts picking notes.
func (t *Terminal) withdrawFlow(ctx context.Context, owner string) (bool, error) {
	if !t.supplyCheck() {
		return true, nil
	}

	desired, err := t.promptInt("Desired total withdrawal (EUR): ")
	if errors.Is(err, errNotANumber) {
		t.say("Invalid amount.")
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if err := domain.ValidateAmount(desired); err != nil {
		t.say("Amount must be positive and a multiple of EUR %d.", domain.AmountStep)
		return true, nil
	}

	balance, err := t.engine.Balance(owner)
	if err != nil {
		t.say("Balance unavailable.")
		return true, nil
	}
	if desired > balance {
		t.say("[!] Insufficient account balance.")
		return true, nil
	}

	sel, err := domain.NewWithdrawalSelection(desired, t.engine.CashAvailable())
	if errors.Is(err, domain.ErrInsufficientCash) {
		t.say("[!] Terminal does not have enough cash.")
		return true, nil
	}
	if err != nil {
		t.say("Amount must be positive and a multiple of EUR %d.", domain.AmountStep)
		return true, nil
	}

	bundle, confirmed, err := t.resolveBundle(sel, "Withdrawal")
	if err != nil || !confirmed {
		return true, err
	}

	res, err := t.engine.Withdraw(ctx, owner, bundle)
	if err != nil {
		return t.reportCashOpError(err)
	}
	t.showReceipt(res)
	t.say("Please take your cash. New balance: EUR %d", res.Account.Balance)
	return t.afterCashOp(res), nil
}

// supplyCheck applies the pre-operation consumable gate: depleted supplies
// or an offline terminal abort the operation, a low band only warns.
func (t *Terminal) supplyCheck() bool {
	if t.engine.OutOfService() {
		t.say("[!] Terminal is out of service. Operation unavailable.")
		return false
	}
	if t.engine.SupplyBand() == domain.SupplyLow {
		t.say("[!] Receipt supplies are running low.")
	}
	return true
}

// resolveBundle drives the note-by-note selection loop. The returned bool
// reports whether the customer confirmed the bundle; cancelling at any step
// leaves every balance untouched.
func (t *Terminal) resolveBundle(sel *domain.Selection, label string) (domain.CashBundle, bool, error) {
	for !sel.Done() {
		options := sel.Options()
		t.say("")
		t.say("Choose a banknote to add (remaining: EUR %d):", sel.Remaining())
		for i, d := range options {
			t.say("%d. EUR %d (max %d)", i+1, int64(d), sel.MaxCount(d))
		}
		t.say("0. Cancel")

		choice, err := t.promptInt("Select: ")
		if errors.Is(err, errNotANumber) {
			t.say("Invalid input.")
			continue
		}
		if err != nil {
			return nil, false, err
		}
		if choice == 0 {
			t.say("%s cancelled.", label)
			return nil, false, nil
		}
		if choice < 1 || choice > int64(len(options)) {
			t.say("Invalid selection.")
			continue
		}
		denom := options[choice-1]
		max := sel.MaxCount(denom)

		count, err := t.promptInt(fmt.Sprintf("How many EUR %d notes? (max %d): ", int64(denom), max))
		if errors.Is(err, errNotANumber) {
			t.say("Invalid number.")
			continue
		}
		if err != nil {
			return nil, false, err
		}
		if err := sel.Add(denom, int(count)); err != nil {
			t.say("Enter a count between 1 and %d.", max)
			continue
		}
		t.say("Added %d x EUR %d (total: EUR %d)", count, int64(denom), sel.Target()-sel.Remaining())
	}

	bundle, err := sel.Bundle()
	if err != nil {
		return nil, false, err
	}
	return bundle, true, nil
}

// reportCashOpError explains a rejected operation. The session continues
// for every recoverable failure; an out-of-service rejection ends it.
func (t *Terminal) reportCashOpError(err error) (bool, error) {
	switch {
	case errors.Is(err, app.ErrOutOfService):
		t.say("[!] Terminal is out of service. Returning to home.")
		return false, nil
	case errors.Is(err, store.ErrInsufficientFunds):
		t.say("[!] Insufficient account balance.")
	case errors.Is(err, domain.ErrInsufficientCash):
		t.say("[!] Terminal does not have enough cash.")
	case errors.Is(err, domain.ErrInvalidAmount):
		t.say("Amount must be positive and a multiple of EUR %d.", domain.AmountStep)
	default:
		t.logger.Error("cash operation failed", "error", err)
		t.say("Operation failed. Please try again.")
	}
	return true, nil
}

func (t *Terminal) showReceipt(res *app.Result) {
	if res.ReceiptText == "" {
		t.say("[!] Receipt could not be printed.")
		return
	}
	fmt.Fprintln(t.out, res.ReceiptText)
}

// afterCashOp handles the depletion caused by the operation itself: the
// engine has already ended the session, the console tells the customer.
func (t *Terminal) afterCashOp(res *app.Result) bool {
	if res.OutOfService {
		t.say("[!] Terminal is now out of service. Logging out.")
		return false
	}
	return true
}

func (t *Terminal) technicianLogin(ctx context.Context) error {
	id, err := t.prompt("Technician ID: ")
	if err != nil {
		return err
	}
	secret, err := t.prompt("Password: ")
	if err != nil {
		return err
	}

	if err := t.engine.AuthenticateTechnician(id, secret); err != nil {
		t.say("Access denied.")
		return nil
	}
	return t.technicianPanel(ctx)
}

func (t *Terminal) technicianPanel(ctx context.Context) error {
	for {
		t.say("")
		t.say("--- TECHNICIAN PANEL ---")
		t.say("1. Device status")
		t.say("2. Refill paper")
		t.say("3. Refill ink")
		t.say("4. Load cash")
		t.say("5. Toggle offline mode")
		t.say("6. Exit panel")

		choice, err := t.promptInt("Action: ")
		if errors.Is(err, errNotANumber) {
			t.say("Invalid input.")
			continue
		}
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			t.printStatus()
		case 2:
			if err := t.engine.RefillPaper(ctx); err != nil {
				t.say("Refill failed: %v", err)
				continue
			}
			t.say("Paper refilled to %d.", domain.SupplyCapacity)
		case 3:
			if err := t.engine.RefillInk(ctx); err != nil {
				t.say("Refill failed: %v", err)
				continue
			}
			t.say("Ink refilled to %d.", domain.SupplyCapacity)
		case 4:
			if err := t.loadCash(ctx); err != nil {
				return err
			}
		case 5:
			offline := !t.engine.Status().Offline
			t.engine.SetOffline(offline)
			if offline {
				t.say("Terminal taken offline.")
			} else {
				t.say("Terminal restored to service.")
			}
		case 6:
			t.say("Leaving technician panel.")
			return nil
		default:
			t.say("Invalid option.")
		}
	}
}

func (t *Terminal) printStatus() {
	status := t.engine.Status()
	t.say("")
	t.say("Terminal   : %s", status.TerminalID)
	t.say("Cash       : EUR %d", status.CashAvailable)
	t.say("Paper      : %d/%d", status.Supplies.Paper, domain.SupplyCapacity)
	t.say("Ink        : %d/%d", status.Supplies.Ink, domain.SupplyCapacity)
	t.say("Supplies   : %s", status.Band)
	t.say("Offline    : %t", status.Offline)
	t.say("In service : %t", !status.OutOfService)
}

func (t *Terminal) loadCash(ctx context.Context) error {
	amount, err := t.promptInt("Amount to load (EUR): ")
	if errors.Is(err, errNotANumber) {
		t.say("Invalid amount.")
		return nil
	}
	if err != nil {
		return err
	}

	if err := t.engine.LoadCash(ctx, amount); err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			t.say("Amount must be positive and a multiple of EUR %d.", domain.AmountStep)
			return nil
		}
		t.logger.Error("cash load failed", "error", err)
		t.say("Load failed. Please try again.")
		return nil
	}
	t.say("Cash loaded. Vault now holds EUR %d.", t.engine.CashAvailable())
	return nil
}

func (t *Terminal) say(format string, args ...any) {
	fmt.Fprintf(t.out, format+"\n", args...)
}

func (t *Terminal) prompt(label string) (string, error) {
	fmt.Fprint(t.out, label)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(t.in.Text()), nil
}

func (t *Terminal) promptInt(label string) (int64, error) {
	raw, err := t.prompt(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errNotANumber
	}
	return n, nil
}

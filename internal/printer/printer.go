/**
 * @description
 * Receipt printing and consumable supply tracking. The Printer owns the
 * paper and ink levels: every successful print consumes a fixed amount of
 * each, floored at zero, and the new levels are pushed through the device
 * state repository so they survive restarts.
 *
 * @dependencies
 * - internal/store: persistence port for consumable levels.
 * - log/slog: structured logging for supply events.
 *
 * @notes
 * - The printer is the only writer of consumable state. The engine reads
 *   supply bands through it and technicians refill through it.
 * - A failed state save after a print keeps the in-memory levels that were
 *   already applied; the wrapped error is returned so callers can surface
 *   it, but the print itself stands.
 */

package printer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Shyleen-m/ATMmachineV2/internal/domain"
	"github.com/Shyleen-m/ATMmachineV2/internal/store"
)

// ErrSuppliesDepleted rejects printing while paper or ink is exhausted.
var ErrSuppliesDepleted = errors.New("printer supplies depleted")

// Config carries the printer's fixed per-print costs and the level at or
// below which a supply counts as low.
type Config struct {
	PaperCostPerPrint int
	InkCostPerPrint   int
	LowThreshold      int
}

// Printer renders customer receipts and tracks supply consumption.
type Printer struct {
	repo      store.DeviceStateRepository
	logger    *slog.Logger
	paperCost int
	inkCost   int
	lowMark   int

	mu     sync.Mutex
	levels domain.Consumables
}

// New loads the persisted supply levels and returns a ready printer. A
// missing state document means a fresh device: both supplies start at
// capacity and are saved immediately.
func New(ctx context.Context, repo store.DeviceStateRepository, cfg Config, logger *slog.Logger) (*Printer, error) {
	levels, err := repo.LoadConsumables(ctx)
	switch {
	case errors.Is(err, store.ErrStateNotFound):
		levels = domain.Consumables{Paper: domain.SupplyCapacity, Ink: domain.SupplyCapacity}
		if err := repo.SaveConsumables(ctx, levels); err != nil {
			return nil, fmt.Errorf("seed consumable state: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load consumable state: %w", err)
	default:
		clamped := domain.Consumables{Paper: domain.ClampLevel(levels.Paper), Ink: domain.ClampLevel(levels.Ink)}
		if clamped != levels {
			logger.Warn("consumable levels out of range in state file; clamping", "paper", levels.Paper, "ink", levels.Ink)
			levels = clamped
		}
	}

	return &Printer{
		repo:      repo,
		logger:    logger,
		paperCost: cfg.PaperCostPerPrint,
		inkCost:   cfg.InkCostPerPrint,
		lowMark:   cfg.LowThreshold,
		levels:    levels,
	}, nil
}

// Levels returns the current supply levels.
func (p *Printer) Levels() domain.Consumables {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.levels
}

// Band classifies the current supply state.
func (p *Printer) Band() domain.SupplyBand {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.levels.Band(p.lowMark)
}

// Print renders the receipt and consumes one print's worth of supplies.
// The rendered text is valid even when an error is returned: a non-nil
// error alongside text means the new levels could not be persisted.
func (p *Printer) Print(ctx context.Context, r domain.Receipt) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.levels.Depleted() {
		return "", ErrSuppliesDepleted
	}

	p.levels = p.levels.Consume(p.paperCost, p.inkCost)
	text := render(r)

	if p.levels.Depleted() {
		p.logger.Warn("printer supplies depleted by this print", "paper", p.levels.Paper, "ink", p.levels.Ink)
	}
	if err := p.repo.SaveConsumables(ctx, p.levels); err != nil {
		return text, fmt.Errorf("persist consumable levels: %w", err)
	}
	return text, nil
}

// Sync persists the current levels unchanged. Used by the background
// state-sync job as a backstop for saves that failed at print time.
func (p *Printer) Sync(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.repo.SaveConsumables(ctx, p.levels); err != nil {
		return fmt.Errorf("persist consumable levels: %w", err)
	}
	return nil
}

// RefillPaper restores the paper level to capacity.
func (p *Printer) RefillPaper(ctx context.Context) error {
	return p.refill(ctx, true, false)
}

// RefillInk restores the ink level to capacity.
func (p *Printer) RefillInk(ctx context.Context) error {
	return p.refill(ctx, false, true)
}

// refill persists the new levels before applying them: a refill that did
// not reach disk must not report success to the technician.
func (p *Printer) refill(ctx context.Context, paper, ink bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.levels
	if paper {
		next.Paper = domain.SupplyCapacity
	}
	if ink {
		next.Ink = domain.SupplyCapacity
	}
	if err := p.repo.SaveConsumables(ctx, next); err != nil {
		return fmt.Errorf("persist consumable levels: %w", err)
	}
	p.levels = next
	p.logger.Info("consumable refilled", "paper", next.Paper, "ink", next.Ink)
	return nil
}

func render(r domain.Receipt) string {
	var b strings.Builder
	line := strings.Repeat("-", 40)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "            CASHPOINT RECEIPT")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Terminal : %s\n", r.TerminalID)
	fmt.Fprintf(&b, "Ref      : %s\n", r.Transaction.ID)
	fmt.Fprintf(&b, "Date     : %s\n", r.Transaction.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Customer : %s\n", r.Owner)
	fmt.Fprintf(&b, "%-9s: EUR %d\n", kindLabel(r.Transaction.Kind), r.Transaction.Amount)
	fmt.Fprintf(&b, "Balance  : EUR %d\n", r.Transaction.BalanceAfter)
	fmt.Fprintln(&b, line)
	return b.String()
}

func kindLabel(kind domain.TransactionKind) string {
	switch kind {
	case domain.KindDeposit:
		return "Deposit"
	case domain.KindWithdraw:
		return "Withdraw"
	default:
		return string(kind)
	}
}

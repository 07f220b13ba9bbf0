/**
 * @description
 * Denomination resolution for deposits and withdrawals. A Selection walks a
 * customer from a confirmed target amount to a concrete set of banknotes,
 * one denomination pick at a time, and guarantees the finished bundle sums
 * exactly to the target. The engine never sees a partial selection: callers
 * submit the finished bundle only.
 *
 * @notes
 * - A Selection is a plain value with no shared state. Abandoning one at
 *   any step is a complete cancellation; nothing needs to be undone.
 * - Withdrawal selections also respect the cash available in the terminal,
 *   so the customer is never offered notes the vault could not dispense.
 */

package domain

import "errors"

var (
	ErrDenominationUnavailable = errors.New("denomination cannot be added to this selection")
	ErrNoteCountOutOfRange     = errors.New("note count outside the allowed range")
	ErrSelectionIncomplete     = errors.New("selection does not cover the requested amount")
)

// Selection incrementally resolves a target amount into banknote counts.
// The zero value is not usable; construct one with NewDepositSelection or
// NewWithdrawalSelection.
type Selection struct {
	target   int64
	headroom int64
	capped   bool
	sum      int64
	notes    []NoteCount
}

// NewDepositSelection starts resolving the notes a customer will insert to
// reach target.
func NewDepositSelection(target int64) (*Selection, error) {
	if err := ValidateAmount(target); err != nil {
		return nil, err
	}
	return &Selection{target: target}, nil
}

// NewWithdrawalSelection starts resolving the notes the terminal will
// dispense to reach target. available is the vault total at the start of
// the selection; per-step offers never exceed what the vault could still
// pay out.
func NewWithdrawalSelection(target, available int64) (*Selection, error) {
	if err := ValidateAmount(target); err != nil {
		return nil, err
	}
	if target > available {
		return nil, ErrInsufficientCash
	}
	return &Selection{target: target, headroom: available, capped: true}, nil
}

// Target returns the amount the selection resolves toward.
func (s *Selection) Target() int64 { return s.target }

// Remaining reports how much of the target is still unresolved.
func (s *Selection) Remaining() int64 { return s.target - s.sum }

// Done reports whether the picked notes sum exactly to the target.
func (s *Selection) Done() bool { return s.sum == s.target }

// Options returns the denominations that can be offered at this step, in
// ascending value order. A denomination is offered only when at least one
// note of it fits the remaining amount and, for withdrawals, the cash the
// vault can still commit.
func (s *Selection) Options() []Denomination {
	opts := make([]Denomination, 0, len(Denominations))
	for _, d := range Denominations {
		if s.maxFor(d) > 0 {
			opts = append(opts, d)
		}
	}
	return opts
}

// MaxCount returns the highest note count currently allowed for d. Zero
// means d cannot be offered at this step.
func (s *Selection) MaxCount(d Denomination) int {
	if !KnownDenomination(d) {
		return 0
	}
	return s.maxFor(d)
}

// Add records count notes of denomination d. The running sum can never
// exceed the target: counts above MaxCount are rejected outright.
func (s *Selection) Add(d Denomination, count int) error {
	if !KnownDenomination(d) {
		return ErrUnknownDenomination
	}
	max := s.maxFor(d)
	if max == 0 {
		return ErrDenominationUnavailable
	}
	if count < 1 || count > max {
		return ErrNoteCountOutOfRange
	}
	s.sum += int64(d) * int64(count)
	s.notes = append(s.notes, NoteCount{Denomination: d, Count: count})
	return nil
}

// Bundle returns the resolved notes. It fails unless the selection is
// complete, so a submitted bundle can never undershoot or overshoot the
// target.
func (s *Selection) Bundle() (CashBundle, error) {
	if !s.Done() {
		return nil, ErrSelectionIncomplete
	}
	out := make(CashBundle, len(s.notes))
	copy(out, s.notes)
	return out, nil
}

func (s *Selection) maxFor(d Denomination) int {
	if d <= 0 {
		return 0
	}
	max := s.Remaining() / int64(d)
	if s.capped {
		if byCash := (s.headroom - s.sum) / int64(d); byCash < max {
			max = byCash
		}
	}
	if max < 0 {
		max = 0
	}
	return int(max)
}

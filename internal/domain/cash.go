/**
 * @description
 * Banknote denominations and cash bundles. The terminal accepts and
 * dispenses a fixed set of euro notes, so every amount it moves must be a
 * positive multiple of the smallest note.
 */

package domain

import "errors"

// AmountStep is the smallest amount the terminal can accept or pay out,
// equal to the face value of its smallest banknote.
const AmountStep = 5

// Denomination is the face value of a single euro banknote.
type Denomination int64

// Denominations lists the note values the terminal handles, in ascending
// order.
var Denominations = []Denomination{5, 10, 20, 50, 100}

var (
	ErrInvalidAmount       = errors.New("amount must be a positive multiple of 5 euros")
	ErrUnknownDenomination = errors.New("unsupported banknote denomination")
	ErrInsufficientCash    = errors.New("insufficient cash in terminal")
)

// ValidateAmount checks that an amount is expressible in the terminal's
// banknotes: strictly positive and a multiple of the smallest note.
func ValidateAmount(amount int64) error {
	if amount <= 0 || amount%AmountStep != 0 {
		return ErrInvalidAmount
	}
	return nil
}

// KnownDenomination reports whether d is one of the note values the
// terminal handles.
func KnownDenomination(d Denomination) bool {
	for _, k := range Denominations {
		if k == d {
			return true
		}
	}
	return false
}

// NoteCount pairs a denomination with how many notes of it move.
type NoteCount struct {
	Denomination Denomination `json:"denomination"`
	Count        int          `json:"count"`
}

// CashBundle is an ordered list of note counts, in the order the customer
// picked them. Bundles are produced by a Selection and always sum exactly
// to the amount the customer confirmed.
type CashBundle []NoteCount

// Total returns the bundle value in whole euros.
func (b CashBundle) Total() int64 {
	var sum int64
	for _, n := range b {
		sum += int64(n.Denomination) * int64(n.Count)
	}
	return sum
}

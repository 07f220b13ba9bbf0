package domain

import (
	"errors"
	"testing"
)

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		name    string
		amount  int64
		wantErr bool
	}{
		{name: "smallest note", amount: 5, wantErr: false},
		{name: "mixed notes", amount: 185, wantErr: false},
		{name: "zero", amount: 0, wantErr: true},
		{name: "negative", amount: -5, wantErr: true},
		{name: "not a multiple of five", amount: 42, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAmount(tc.amount)
			if tc.wantErr && !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("expected ErrInvalidAmount, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestCashBundleTotal(t *testing.T) {
	bundle := CashBundle{
		{Denomination: 20, Count: 1},
		{Denomination: 10, Count: 1},
		{Denomination: 5, Count: 1},
	}
	if got := bundle.Total(); got != 35 {
		t.Fatalf("expected total 35, got %d", got)
	}

	var empty CashBundle
	if got := empty.Total(); got != 0 {
		t.Fatalf("expected empty bundle total 0, got %d", got)
	}
}

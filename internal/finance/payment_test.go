package finance

import (
	"math"
	"testing"
)

func TestCalculateMonthlyPaymentZeroRate(t *testing.T) {
	got := CalculateMonthlyPayment(36000, 0, 36)
	if got != 1000 {
		t.Fatalf("expected 1000, got %v", got)
	}
}

func TestCalculateMonthlyPaymentNegativeRateDegrades(t *testing.T) {
	got := CalculateMonthlyPayment(1200, -0.05, 12)
	if got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestCalculateMonthlyPaymentAmortized(t *testing.T) {
	// 500k at 7.25% over 360 months is a well-known figure.
	got := CalculateMonthlyPayment(500000, 0.0725, 360)
	if math.Abs(got-3410.88) > 0.05 {
		t.Fatalf("expected ~3410.88, got %v", got)
	}
}

func TestCalculateMonthlyPaymentTotalRepaysPrincipal(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		term      int
	}{
		{100000, 0.05, 120},
		{250000, 0.0699, 240},
		{50000, 0.12, 60},
	}
	for _, tc := range cases {
		payment := CalculateMonthlyPayment(tc.principal, tc.rate, tc.term)
		total := payment * float64(tc.term)
		if total < tc.principal {
			t.Fatalf("principal %v rate %v term %d: total repaid %v below principal", tc.principal, tc.rate, tc.term, total)
		}
		// Total interest can never exceed rate*term worth of simple interest
		// on the full principal.
		ceiling := tc.principal * (1 + tc.rate*float64(tc.term)/12)
		if total > ceiling {
			t.Fatalf("principal %v rate %v term %d: total repaid %v above simple-interest ceiling %v", tc.principal, tc.rate, tc.term, total, ceiling)
		}
	}
}

func TestCalculateMonthlyPaymentInvalidInputs(t *testing.T) {
	if got := CalculateMonthlyPayment(0, 0.05, 12); got != 0 {
		t.Fatalf("zero principal: expected 0, got %v", got)
	}
	if got := CalculateMonthlyPayment(1000, 0.05, 0); got != 0 {
		t.Fatalf("zero term: expected 0, got %v", got)
	}
}

package finance

import (
	"math"
	"testing"
)

func TestIsDebtServiceByCategory(t *testing.T) {
	for _, cat := range []string{"debt", "loan", "mortgage", "Loan", " MORTGAGE "} {
		if !IsDebtService(RecurringPayment{Category: cat, Description: "misc"}) {
			t.Fatalf("category %q should classify as debt service", cat)
		}
	}
	if IsDebtService(RecurringPayment{Category: "utilities", Description: "city water"}) {
		t.Fatal("utilities should not classify as debt service")
	}
}

func TestIsDebtServiceByDescription(t *testing.T) {
	matches := []string{
		"WELLS FARGO AUTO LOAN",
		"Navient pmt",
		"Toyota Financial Services",
		"Main St Mortgage Co",
	}
	for _, desc := range matches {
		if !IsDebtService(RecurringPayment{Category: "other", Description: desc}) {
			t.Fatalf("description %q should classify as debt service", desc)
		}
	}
	if IsDebtService(RecurringPayment{Category: "other", Description: "NETFLIX.COM"}) {
		t.Fatal("streaming subscription should not classify as debt service")
	}
}

func TestMonthlyAmountFrequencyNormalization(t *testing.T) {
	cases := []struct {
		freq   string
		amount string
		want   float64
	}{
		{"monthly", "$600", 600},
		{"biweekly", "$600", 600 * 26.0 / 12.0},
		{"weekly", "$120", 120 * 52.0 / 12.0},
		{"quarterly", "$900", 300},
		{"annual", "$1,200", 100},
		{"fortnightly", "$600", 600}, // unrecognized defaults to monthly
	}
	for _, tc := range cases {
		got := MonthlyAmount(RecurringPayment{Frequency: tc.freq, Amount: tc.amount})
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("freq %q amount %q: got %v, want %v", tc.freq, tc.amount, got, tc.want)
		}
	}
}

func TestDetectExistingDebtFromBankStatements(t *testing.T) {
	payments := []RecurringPayment{
		{Category: "loan", Frequency: "monthly", Amount: "$450.00", Description: "auto"},
		{Category: "other", Frequency: "biweekly", Amount: "$300", Description: "SALLIE MAE STUDENT LN"},
		{Category: "utilities", Frequency: "monthly", Amount: "$180", Description: "electric"},
		{Category: "mortgage", Frequency: "monthly", Amount: "not parseable", Description: "rental prop"},
	}
	monthly, annual := DetectExistingDebtFromBankStatements(payments)
	want := RoundCents(450 + RoundCents(300*26.0/12.0))
	if monthly != want {
		t.Fatalf("monthly = %v, want %v", monthly, want)
	}
	if annual != RoundCents(want*12) {
		t.Fatalf("annual = %v, want %v", annual, RoundCents(want*12))
	}
}

func TestDetectExistingDebtEmpty(t *testing.T) {
	monthly, annual := DetectExistingDebtFromBankStatements(nil)
	if monthly != 0 || annual != 0 {
		t.Fatalf("expected zeros, got %v / %v", monthly, annual)
	}
}

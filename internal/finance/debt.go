package finance

import (
	"regexp"
	"strings"
)

// RecurringPayment is one recurring outflow detected in a borrower's bank
// statements by the extraction feed. Amount is kept as the raw extracted
// string because OCR output is not normalized.
type RecurringPayment struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Frequency   string `json:"frequency"` // monthly|biweekly|weekly|quarterly|annual
	Amount      string `json:"amount"`
}

var debtCategories = map[string]bool{
	"debt":     true,
	"loan":     true,
	"mortgage": true,
}

// Lender names and debt keywords seen in real statement descriptors. A miss
// here only understates existing debt service; the category field is the
// primary signal.
var debtDescriptionPattern = regexp.MustCompile(`(?i)(loan|mortgage|lending|financ|leasing|sba|navient|sallie mae|wells fargo|chase auto|capital one|ally bank|toyota financial|honda financial|us bank|citizens|regions|truist|pnc)`)

// IsDebtService reports whether a recurring payment should count toward
// existing annual debt service.
func IsDebtService(p RecurringPayment) bool {
	if debtCategories[strings.ToLower(strings.TrimSpace(p.Category))] {
		return true
	}
	return debtDescriptionPattern.MatchString(p.Description)
}

// MonthlyAmount normalizes a recurring payment to a monthly figure. An
// unrecognized frequency is treated as already monthly.
func MonthlyAmount(p RecurringPayment) float64 {
	amount, ok := ParseCurrency(p.Amount)
	if !ok {
		return 0
	}
	switch strings.ToLower(strings.TrimSpace(p.Frequency)) {
	case "biweekly":
		return amount * 26 / 12
	case "weekly":
		return amount * 52 / 12
	case "quarterly":
		return amount / 3
	case "annual", "annually", "yearly":
		return amount / 12
	default:
		return amount
	}
}

// DetectExistingDebtFromBankStatements sums the frequency-normalized monthly
// amounts of every debt-service payment and returns (monthly, annual), both
// rounded to cents.
func DetectExistingDebtFromBankStatements(payments []RecurringPayment) (float64, float64) {
	var monthly float64
	for _, p := range payments {
		if !IsDebtService(p) {
			continue
		}
		monthly += RoundCents(MonthlyAmount(p))
	}
	monthly = RoundCents(monthly)
	return monthly, RoundCents(monthly * 12)
}

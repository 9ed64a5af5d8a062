package finance

import "math"

// CalculateMonthlyPayment returns the amortized monthly payment for a loan
// using the standard annuity formula M = P*r*(1+r)^n / ((1+r)^n - 1).
// A non-positive rate degrades to straight principal/term, which is also the
// interest-free edge case.
func CalculateMonthlyPayment(principal, annualRate float64, termMonths int) float64 {
	if principal <= 0 || termMonths <= 0 {
		return 0
	}
	if annualRate <= 0 {
		return RoundCents(principal / float64(termMonths))
	}
	r := annualRate / 12
	n := float64(termMonths)
	factor := math.Pow(1+r, n)
	payment := principal * r * factor / (factor - 1)
	return RoundCents(payment)
}

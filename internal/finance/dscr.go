package finance

import "fmt"

const (
	RatingStrong        = "strong"
	RatingAdequate      = "adequate"
	RatingWeak          = "weak"
	RatingInsufficient  = "insufficient"
	RatingIndeterminate = "indeterminate"
)

// IncomeSource is one component of a borrower's qualifying income.
type IncomeSource struct {
	Name         string  `json:"name"`
	AnnualAmount float64 `json:"annual_amount"`
}

// QualifyingIncome is the underwritten annual income with its breakdown.
type QualifyingIncome struct {
	AnnualTotal float64        `json:"annual_total"`
	Sources     []IncomeSource `json:"sources,omitempty"`
}

// PropertyFinancials carries rental property figures as extracted. All
// amounts are raw strings from the extraction feed.
type PropertyFinancials struct {
	NetOperatingIncome string `json:"net_operating_income,omitempty"`
	GrossRents         string `json:"gross_rents,omitempty"`
	OperatingExpenses  string `json:"operating_expenses,omitempty"`
	MortgageInterest   string `json:"mortgage_interest,omitempty"`
}

// ProposedLoan describes the loan under analysis. MonthlyPayment wins when
// set; otherwise the payment is amortized from the triple.
type ProposedLoan struct {
	MonthlyPayment float64 `json:"monthly_payment,omitempty"`
	Principal      float64 `json:"principal,omitempty"`
	AnnualRate     float64 `json:"annual_rate,omitempty"`
	TermMonths     int     `json:"term_months,omitempty"`
}

type DscrInput struct {
	Income       QualifyingIncome    `json:"income"`
	BankPayments []RecurringPayment  `json:"bank_payments,omitempty"`
	Property     *PropertyFinancials `json:"property,omitempty"`
	Loan         ProposedLoan        `json:"loan"`
}

// DscrAnalysis is recomputed on every request; extraction data underneath it
// can change, so it is never cached or persisted on its own.
type DscrAnalysis struct {
	GlobalRatio               *float64 `json:"global_ratio"`
	PropertyRatio             *float64 `json:"property_ratio"`
	NetOperatingIncome        float64  `json:"net_operating_income"`
	TotalAnnualDebtService    float64  `json:"total_annual_debt_service"`
	ProposedAnnualDebtService float64  `json:"proposed_annual_debt_service"`
	ExistingAnnualDebtService float64  `json:"existing_annual_debt_service"`
	Rating                    string   `json:"rating"`
	Notes                     []string `json:"notes"`
}

// PropertyNOI extracts net operating income. An explicit NOI figure is
// preferred; otherwise gross rents minus operating expenses, with mortgage
// interest added back when it looks like it was bundled into the expense
// line, since NOI must be pre-debt-service.
func PropertyNOI(pf PropertyFinancials) (float64, string) {
	if noi, ok := ParseCurrency(pf.NetOperatingIncome); ok {
		return RoundCents(noi), "NOI taken from explicit figure in extracted financials"
	}
	rents, rentsOK := ParseCurrency(pf.GrossRents)
	opEx, _ := ParseCurrency(pf.OperatingExpenses)
	if !rentsOK {
		return 0, "no NOI or gross rent figures available; property NOI treated as zero"
	}
	noi := rents - opEx
	note := "NOI computed as gross rents minus operating expenses"
	mortgageInterest, miOK := ParseCurrency(pf.MortgageInterest)
	if miOK && opEx > 0 && mortgageInterest > 0 {
		noi += mortgageInterest
		note = "NOI computed as gross rents minus operating expenses, with mortgage interest added back"
	}
	return RoundCents(noi), note
}

// RateDSCR maps a coverage ratio to its qualitative band. The lower bound of
// each band is inclusive: exactly 1.25 rates adequate.
func RateDSCR(ratio *float64) string {
	if ratio == nil {
		return RatingIndeterminate
	}
	switch {
	case *ratio >= 1.50:
		return RatingStrong
	case *ratio >= 1.25:
		return RatingAdequate
	case *ratio >= 1.00:
		return RatingWeak
	default:
		return RatingInsufficient
	}
}

// AnalyzeDSCR computes the full debt-service-coverage picture. It never
// fails: missing inputs degrade to zero or nil fields with a note so the
// pipeline always has a usable result.
func AnalyzeDSCR(in DscrInput) DscrAnalysis {
	out := DscrAnalysis{Notes: []string{}}

	monthlyPayment := in.Loan.MonthlyPayment
	if monthlyPayment <= 0 {
		monthlyPayment = CalculateMonthlyPayment(in.Loan.Principal, in.Loan.AnnualRate, in.Loan.TermMonths)
		if monthlyPayment > 0 {
			out.Notes = append(out.Notes, fmt.Sprintf("proposed monthly payment %.2f amortized from principal %.2f at %.4f over %d months", monthlyPayment, in.Loan.Principal, in.Loan.AnnualRate, in.Loan.TermMonths))
		} else {
			out.Notes = append(out.Notes, "no proposed payment or loan terms provided; proposed debt service treated as zero")
		}
	} else {
		out.Notes = append(out.Notes, fmt.Sprintf("proposed monthly payment %.2f taken as provided", monthlyPayment))
	}
	out.ProposedAnnualDebtService = RoundCents(monthlyPayment * 12)

	monthlyExisting, annualExisting := DetectExistingDebtFromBankStatements(in.BankPayments)
	out.ExistingAnnualDebtService = annualExisting
	if annualExisting > 0 {
		out.Notes = append(out.Notes, fmt.Sprintf("existing debt service detected from bank statements: %.2f/month across recurring obligations", monthlyExisting))
	} else if len(in.BankPayments) > 0 {
		out.Notes = append(out.Notes, "no recurring payments classified as debt service")
	}

	out.TotalAnnualDebtService = RoundCents(out.ProposedAnnualDebtService + out.ExistingAnnualDebtService)

	var propertyNOI float64
	if in.Property != nil {
		noi, note := PropertyNOI(*in.Property)
		propertyNOI = noi
		out.NetOperatingIncome = noi
		out.Notes = append(out.Notes, note)
		if out.ProposedAnnualDebtService > 0 {
			ratio := noi / out.ProposedAnnualDebtService
			out.PropertyRatio = &ratio
			out.Notes = append(out.Notes, fmt.Sprintf("property DSCR %.3f = NOI %.2f / proposed annual debt service %.2f", ratio, noi, out.ProposedAnnualDebtService))
		} else {
			out.Notes = append(out.Notes, "property DSCR not computable: no proposed debt service")
		}
	}

	globalIncome := in.Income.AnnualTotal + propertyNOI
	if out.TotalAnnualDebtService > 0 {
		ratio := globalIncome / out.TotalAnnualDebtService
		out.GlobalRatio = &ratio
		out.Notes = append(out.Notes, fmt.Sprintf("global DSCR %.3f = qualifying income plus NOI %.2f / total annual debt service %.2f", ratio, globalIncome, out.TotalAnnualDebtService))
	} else {
		out.Notes = append(out.Notes, "global DSCR not computable: total annual debt service is zero")
	}

	ratingRatio := out.GlobalRatio
	if ratingRatio == nil {
		ratingRatio = out.PropertyRatio
	}
	out.Rating = RateDSCR(ratingRatio)

	return out
}

// Package amortization computes EMI and amortization schedules. It is pure:
// no storage, no clock, no configuration.
package amortization

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"croplend/pkg/money"
)

var ErrInvalidInput = errors.New("principal and term months must be positive")

var one = decimal.NewFromInt(1)

// Row is one month of the schedule. All amounts are rounded to 2 decimal
// places, half-up, at the step that produced them.
type Row struct {
	PaymentNumber  int             `json:"payment_number"`
	DueDate        time.Time       `json:"due_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Instalment     decimal.Decimal `json:"instalment"`
	Principal      decimal.Decimal `json:"principal"`
	Interest       decimal.Decimal `json:"interest"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

type Plan struct {
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	TotalRepayment decimal.Decimal `json:"total_repayment"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	Rows           []Row           `json:"rows"`
}

// MonthlyPayment computes the EMI: P*r*(1+r)^n / ((1+r)^n - 1) with
// r = annualRatePct/1200. A zero rate divides the principal evenly.
func MonthlyPayment(principal decimal.Decimal, annualRatePct float64, months int) (decimal.Decimal, error) {
	if months <= 0 || principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidInput
	}
	if annualRatePct == 0 {
		return money.Round2(principal.Div(decimal.NewFromInt(int64(months)))), nil
	}
	r := monthlyRate(annualRatePct)
	multiplier := one.Add(r).Pow(decimal.NewFromInt(int64(months)))
	emi := principal.Mul(r).Mul(multiplier).Div(multiplier.Sub(one))
	return money.Round2(emi), nil
}

// GenerateSchedule produces the month-by-month plan. Interest is
// round(balance*r) each month; the final month's principal portion is forced
// to the remaining balance and its instalment recomputed, so cumulative
// rounding drift lands in the last payment and the closing balance is exactly
// zero.
func GenerateSchedule(principal decimal.Decimal, annualRatePct float64, months int, startDate time.Time) (*Plan, error) {
	emi, err := MonthlyPayment(principal, annualRatePct, months)
	if err != nil {
		return nil, err
	}

	r := decimal.Zero
	if annualRatePct != 0 {
		r = monthlyRate(annualRatePct)
	}

	balance := principal
	totalInterest := decimal.Zero
	instalment := emi
	rows := make([]Row, 0, months)

	for m := 1; m <= months; m++ {
		interest := money.Round2(balance.Mul(r))
		principalPart := instalment.Sub(interest)

		if m == months {
			principalPart = balance
			instalment = principalPart.Add(interest)
		}

		opening := balance
		balance = balance.Sub(principalPart)
		// Guard against a residual cent from rounding.
		if balance.LessThan(decimal.NewFromFloat(0.01)) {
			balance = decimal.Zero
		}
		totalInterest = totalInterest.Add(interest)

		rows = append(rows, Row{
			PaymentNumber:  m,
			DueDate:        startDate.AddDate(0, m, 0),
			OpeningBalance: money.Round2(opening),
			Instalment:     money.Round2(instalment),
			Principal:      money.Round2(principalPart),
			Interest:       interest,
			ClosingBalance: money.Round2(balance),
		})
	}

	return &Plan{
		MonthlyPayment: emi,
		TotalInterest:  money.Round2(totalInterest),
		TotalRepayment: money.Round2(principal.Add(totalInterest)),
		StartDate:      startDate,
		EndDate:        startDate.AddDate(0, months, 0),
		Rows:           rows,
	}, nil
}

func monthlyRate(annualRatePct float64) decimal.Decimal {
	return decimal.NewFromFloat(annualRatePct).Div(decimal.NewFromInt(1200))
}

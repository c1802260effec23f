package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// LoanTermDays is the default distance between creation and due date.
	LoanTermDays = 365

	AutoApprovalNote = "Auto-approved: GPA >= 6.0 and no active loans"
)

// MonthlyInterestRate is the only rate used for interest. The stored
// LoanApplication.InterestRate is display only.
var MonthlyInterestRate = decimal.RequireFromString("0.10")

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// DefaultDueDate is the due date assigned to an approved loan that has none.
func DefaultDueDate(createdAt time.Time) time.Time {
	return DateOf(createdAt).AddDate(0, 0, LoanTermDays)
}

// RepaymentMonths counts whole calendar months from start to end. A trailing
// partial month counts as a full month, and the result is never below 1.
func RepaymentMonths(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() > start.Day() {
		months++
	}
	if months < 1 {
		return 1
	}
	return months
}

func (l *LoanApplication) accrues() bool {
	return l.Status == LoanApproved && l.RepaymentDueDate != nil
}

// RepaymentMonths is 0 while the loan has no due date.
func (l *LoanApplication) RepaymentMonths() int {
	if l.RepaymentDueDate == nil {
		return 0
	}
	return RepaymentMonths(DateOf(l.CreatedAt), DateOf(*l.RepaymentDueDate))
}

func (l *LoanApplication) Principal() decimal.Decimal {
	return decimal.NewFromInt(l.Amount)
}

func (l *LoanApplication) TotalInterest() decimal.Decimal {
	if !l.accrues() {
		return decimal.Zero
	}
	return l.Principal().Mul(MonthlyInterestRate).Mul(decimal.NewFromInt(int64(l.RepaymentMonths())))
}

// TotalAmountDue is principal plus simple interest. A loan that is not
// approved owes the principal only.
func (l *LoanApplication) TotalAmountDue() decimal.Decimal {
	if !l.accrues() {
		return l.Principal()
	}
	return l.Principal().Add(l.TotalInterest())
}

func (l *LoanApplication) MonthlyPayment() decimal.Decimal {
	months := l.RepaymentMonths()
	if months == 0 {
		return decimal.Zero
	}
	return l.TotalAmountDue().Div(decimal.NewFromInt(int64(months)))
}

func (l *LoanApplication) IsOverdue(today time.Time) bool {
	if !l.accrues() {
		return false
	}
	return DateOf(today).After(DateOf(*l.RepaymentDueDate))
}

func (l *LoanApplication) DaysOverdue(today time.Time) int {
	if !l.accrues() {
		return 0
	}
	return max(0, daysBetween(*l.RepaymentDueDate, today))
}

// DaysUntilDue is nil unless the loan is approved with a due date.
func (l *LoanApplication) DaysUntilDue(today time.Time) *int {
	if !l.accrues() {
		return nil
	}
	days := max(0, daysBetween(today, *l.RepaymentDueDate))
	return &days
}

// RemainingAmount never goes below zero.
func RemainingAmount(totalDue, paid decimal.Decimal) decimal.Decimal {
	rest := totalDue.Sub(paid)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// RepaymentProgress is the paid share of totalDue as a percentage, capped at 100.
func RepaymentProgress(totalDue, paid decimal.Decimal) decimal.Decimal {
	if !totalDue.IsPositive() {
		return decimal.Zero
	}
	progress := paid.Div(totalDue).Mul(hundred)
	if progress.GreaterThan(hundred) {
		return hundred
	}
	return progress.Round(2)
}

// EvaluateApplication decides the initial status of a new loan. A borrower
// applying for themselves is rejected when ineligible or already holding an
// active loan; staff filing on their behalf gets Pending instead.
func EvaluateApplication(gpa GPA, hasActiveLoan, onBehalf bool) (LoanStatus, error) {
	eligible := gpa.Eligible()
	if !onBehalf {
		if !eligible {
			return "", ErrIneligibleGPA
		}
		if hasActiveLoan {
			return "", ErrHasActiveLoan
		}
	}
	if eligible && !hasActiveLoan {
		return LoanApproved, nil
	}
	return LoanPending, nil
}

// ExpectedReturnAmount composes the investment return rate with the loan's
// display interest rate, both as percentages.
func (i *Investment) ExpectedReturnAmount(loanInterestRate decimal.Decimal) decimal.Decimal {
	return i.InvestmentAmount.
		Mul(i.ExpectedReturnRate.Div(hundred)).
		Mul(loanInterestRate.Div(hundred)).
		Round(2)
}

func (i *Investment) TotalReturnAmount(loanInterestRate decimal.Decimal) decimal.Decimal {
	return i.InvestmentAmount.Add(i.ExpectedReturnAmount(loanInterestRate))
}

func (i *Investment) PeriodDays() int {
	if i.MaturityDate == nil {
		return 0
	}
	return max(0, daysBetween(i.InvestmentDate, *i.MaturityDate))
}

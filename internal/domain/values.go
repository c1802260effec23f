package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinLoanAmount      int64 = 500
	MaxLoanAmount      int64 = 100000
	MaxAdminLoanAmount int64 = 5000

	// MaxDueDateDays bounds how far out a borrower may set the due date.
	MaxDueDateDays = 365
)

var (
	MinGPA              = decimal.Zero
	MaxGPA              = decimal.NewFromInt(10)
	EligibleGPA         = decimal.NewFromInt(6)
	MinWithdrawalAmount = decimal.NewFromInt(100)
	MinInvestmentAmount = decimal.NewFromInt(1000)
	MinReturnRate       = decimal.NewFromInt(1)
	MaxReturnRate       = decimal.NewFromInt(50)
	DefaultReturnRate   = decimal.NewFromInt(12)
	MaxDisplayRate      = decimal.NewFromInt(20)
	DefaultDisplayRate  = decimal.NewFromInt(10)

	hundred = decimal.NewFromInt(100)
)

// LoanAmount is a whole-number principal within the accepted range.
type LoanAmount int64

func NewLoanAmount(v int64) (LoanAmount, error) {
	if v < MinLoanAmount || v > MaxLoanAmount {
		return 0, NewValidationError(KindAmountOutOfRange, "amount",
			"loan amount must be between %d and %d", MinLoanAmount, MaxLoanAmount)
	}
	return LoanAmount(v), nil
}

// NewAdminLoanAmount applies the ceiling of the staff edit form, which is
// lower than the application ceiling.
func NewAdminLoanAmount(v int64) (LoanAmount, error) {
	if v < MinLoanAmount || v > MaxAdminLoanAmount {
		return 0, NewValidationError(KindAmountOutOfRange, "amount",
			"loan amount must be between %d and %d", MinLoanAmount, MaxAdminLoanAmount)
	}
	return LoanAmount(v), nil
}

func (a LoanAmount) Int64() int64 {
	return int64(a)
}

type GPA struct {
	value decimal.Decimal
}

func NewGPA(v decimal.Decimal) (GPA, error) {
	if v.LessThan(MinGPA) || v.GreaterThan(MaxGPA) {
		return GPA{}, NewValidationError(KindInvalidField, "gpa", "GPA must be between 0.00 and 10.00")
	}
	return GPA{value: v.Round(2)}, nil
}

func (g GPA) Decimal() decimal.Decimal {
	return g.value
}

// Eligible reports whether the GPA meets the loan threshold.
func (g GPA) Eligible() bool {
	return g.value.GreaterThanOrEqual(EligibleGPA)
}

// Money is a non-negative fixed-point amount with two fractional digits.
type Money struct {
	value decimal.Decimal
}

func (m Money) Decimal() decimal.Decimal {
	return m.value
}

// NewRepaymentAmount rounds to cents before the positivity check.
func NewRepaymentAmount(v decimal.Decimal) (Money, error) {
	v = v.Round(2)
	if !v.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	return Money{value: v}, nil
}

func NewWithdrawalAmount(v decimal.Decimal) (Money, error) {
	if v.LessThan(MinWithdrawalAmount) {
		return Money{}, NewValidationError(KindAmountOutOfRange, "amount",
			"minimum withdrawal amount is %s", MinWithdrawalAmount.StringFixed(2))
	}
	return Money{value: v.Round(2)}, nil
}

func NewInvestmentAmount(v decimal.Decimal) (Money, error) {
	if v.LessThan(MinInvestmentAmount) {
		return Money{}, NewValidationError(KindAmountOutOfRange, "investment_amount",
			"minimum investment amount is %s", MinInvestmentAmount.StringFixed(2))
	}
	return Money{value: v.Round(2)}, nil
}

// Rate is a percentage value.
type Rate struct {
	value decimal.Decimal
}

func (r Rate) Decimal() decimal.Decimal {
	return r.value
}

func NewReturnRate(v decimal.Decimal) (Rate, error) {
	if v.LessThan(MinReturnRate) || v.GreaterThan(MaxReturnRate) {
		return Rate{}, NewValidationError(KindInvalidField, "expected_return_rate",
			"expected return rate must be between 1 and 50 percent")
	}
	return Rate{value: v.Round(2)}, nil
}

// NewDisplayInterestRate validates the cosmetic loan interest rate.
func NewDisplayInterestRate(v decimal.Decimal) (Rate, error) {
	if v.IsNegative() || v.GreaterThan(MaxDisplayRate) {
		return Rate{}, NewValidationError(KindInvalidField, "interest_rate",
			"interest rate must be between 0.00 and 20.00 percent")
	}
	return Rate{value: v.Round(2)}, nil
}

// ValidateDueDate requires due to fall strictly after today and no later
// than MaxDueDateDays from today. Both are compared as calendar dates.
func ValidateDueDate(due, today time.Time) error {
	d, t := DateOf(due), DateOf(today)
	if !d.After(t) {
		return ErrDueDateInPast
	}
	if d.After(t.AddDate(0, 0, MaxDueDateDays)) {
		return ErrDueDateTooFar
	}
	return nil
}

package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoanAmount(t *testing.T) {
	tests := []struct {
		name      string
		amount    int64
		admin     bool
		expectErr bool
	}{
		{name: "Minimum", amount: 500},
		{name: "Maximum", amount: 100000},
		{name: "Below minimum", amount: 499, expectErr: true},
		{name: "Above maximum", amount: 100001, expectErr: true},
		{name: "Staff edit within ceiling", amount: 5000, admin: true},
		{name: "Staff edit above ceiling", amount: 5001, admin: true, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				amount LoanAmount
				err    error
			)
			if tt.admin {
				amount, err = NewAdminLoanAmount(tt.amount)
			} else {
				amount, err = NewLoanAmount(tt.amount)
			}
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrAmountOutOfRange)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.amount, amount.Int64())
		})
	}
}

func TestValidateDueDate(t *testing.T) {
	today := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		due       time.Time
		expectErr error
	}{
		{name: "Tomorrow", due: date(2024, 3, 2)},
		{name: "Exactly one year out", due: date(2025, 3, 1)},
		{name: "Today", due: date(2024, 3, 1), expectErr: ErrDueDateInPast},
		{name: "Yesterday", due: date(2024, 2, 29), expectErr: ErrDueDateInPast},
		{name: "Beyond one year", due: date(2025, 3, 2), expectErr: ErrDueDateTooFar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDueDate(tt.due, today)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValueObjects(t *testing.T) {
	_, err := NewGPA(decimal.RequireFromString("10.01"))
	assert.ErrorIs(t, err, ErrValidation)

	gpa, err := NewGPA(decimal.RequireFromString("8.456"))
	assert.NoError(t, err)
	assert.Equal(t, "8.46", gpa.Decimal().StringFixed(2))

	_, err = NewRepaymentAmount(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewWithdrawalAmount(decimal.RequireFromString("99.99"))
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = NewInvestmentAmount(decimal.NewFromInt(999))
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = NewReturnRate(decimal.NewFromInt(51))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewDisplayInterestRate(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewRepaymentAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "Whole amount", in: "500", want: "500.00"},
		{name: "Rounded to cents", in: "10.005", want: "10.01"},
		{name: "Smallest payable", in: "0.005", want: "0.01"},
		{name: "Rounds down to zero", in: "0.004", wantErr: true},
		{name: "Zero", in: "0", wantErr: true},
		{name: "Negative", in: "-1.50", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := NewRepaymentAmount(decimal.RequireFromString(tt.in))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, amount.Decimal().IsPositive())
			assert.Equal(t, tt.want, amount.Decimal().StringFixed(2))
		})
	}
}

func TestGatewayError(t *testing.T) {
	cause := errors.New("timeout")
	err := &GatewayError{Gateway: "razorpay", Op: "create order", Err: cause}

	assert.ErrorIs(t, err, ErrGateway)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "razorpay create order: timeout", err.Error())
}

func TestStatusTransitions(t *testing.T) {
	assert.NoError(t, LoanPending.TransitionTo(LoanApproved))
	assert.ErrorIs(t, LoanApproved.TransitionTo(LoanRejected), ErrInvalidTransition)
	assert.ErrorIs(t, LoanRejected.TransitionTo(LoanPending), ErrInvalidTransition)

	assert.NoError(t, RepaymentProcessing.TransitionTo(RepaymentPaid))
	assert.ErrorIs(t, RepaymentPaid.TransitionTo(RepaymentFailed), ErrInvalidTransition)

	assert.NoError(t, WithdrawalPending.TransitionTo(WithdrawalProcessing))
	assert.NoError(t, WithdrawalProcessing.TransitionTo(WithdrawalCompleted))
	assert.ErrorIs(t, WithdrawalPending.TransitionTo(WithdrawalCompleted), ErrInvalidTransition)
	assert.ErrorIs(t, WithdrawalCompleted.TransitionTo(WithdrawalFailed), ErrInvalidTransition)

	assert.NoError(t, InvestmentActive.TransitionTo(InvestmentDefaulted))
	assert.ErrorIs(t, InvestmentPending.TransitionTo(InvestmentActive), ErrInvalidTransition)
	assert.ErrorIs(t, InvestmentCancelled.TransitionTo(InvestmentActive), ErrInvalidTransition)
}

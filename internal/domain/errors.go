package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrGateway           = errors.New("payment gateway error")
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrLoanNotFound       = fmt.Errorf("loan %w", ErrNotFound)
	ErrRepaymentNotFound  = fmt.Errorf("repayment %w", ErrNotFound)
	ErrWithdrawalNotFound = fmt.Errorf("withdrawal %w", ErrNotFound)
	ErrInvestmentNotFound = fmt.Errorf("investment %w", ErrNotFound)
	ErrFinancierNotFound  = fmt.Errorf("financier profile %w", ErrNotFound)

	ErrUserExists       = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrInvestmentExists = fmt.Errorf("investment for this loan already exists: %w", ErrConflict)

	ErrInvalidCredentials = errors.New("invalid credentials")
)

type ValidationKind string

const (
	KindAmountOutOfRange ValidationKind = "amount_out_of_range"
	KindDueDateInPast    ValidationKind = "due_date_in_past"
	KindDueDateTooFar    ValidationKind = "due_date_too_far"
	KindIneligibleGPA    ValidationKind = "ineligible_gpa"
	KindHasActiveLoan    ValidationKind = "has_active_loan"
	KindLoanNotApproved  ValidationKind = "loan_not_approved"
	KindOverpayment      ValidationKind = "overpayment"
	KindInvalidAmount    ValidationKind = "invalid_amount"
	KindInvalidField     ValidationKind = "invalid_field"
)

// ValidationError is a recoverable rejection of caller input. errors.Is
// matches ErrValidation and any ValidationError of the same kind.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

func NewValidationError(kind ValidationKind, field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

var (
	ErrAmountOutOfRange = &ValidationError{Kind: KindAmountOutOfRange, Field: "amount", Message: "amount out of range"}
	ErrDueDateInPast    = &ValidationError{Kind: KindDueDateInPast, Field: "repayment_due_date", Message: "repayment due date must be in the future"}
	ErrDueDateTooFar    = &ValidationError{Kind: KindDueDateTooFar, Field: "repayment_due_date", Message: "repayment due date cannot be more than 1 year from now"}
	ErrIneligibleGPA    = &ValidationError{Kind: KindIneligibleGPA, Field: "gpa", Message: "you are not eligible for a loan, your GPA must be 6.0 or higher"}
	ErrHasActiveLoan    = &ValidationError{Kind: KindHasActiveLoan, Message: "you already have an active loan, please complete repayment before applying for a new one"}
	ErrLoanNotApproved  = &ValidationError{Kind: KindLoanNotApproved, Field: "loan", Message: "repayments can only be recorded against approved loans"}
	ErrOverpayment      = &ValidationError{Kind: KindOverpayment, Field: "amount_paid", Message: "payment exceeds remaining amount"}
	ErrInvalidAmount    = &ValidationError{Kind: KindInvalidAmount, Field: "amount", Message: "amount must be greater than zero"}
	ErrInvalidField     = &ValidationError{Kind: KindInvalidField, Message: "invalid field"}
)

// GatewayError wraps a failure reported by, or while talking to, a payment provider.
type GatewayError struct {
	Gateway string
	Op      string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Gateway, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() []error {
	return []error{ErrGateway, e.Err}
}

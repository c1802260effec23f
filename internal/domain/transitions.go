package domain

import "fmt"

var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanPending: {LoanApproved, LoanRejected},
}

var repaymentTransitions = map[RepaymentStatus][]RepaymentStatus{
	RepaymentPending:    {RepaymentPaid, RepaymentFailed},
	RepaymentProcessing: {RepaymentPaid, RepaymentFailed},
}

var withdrawalTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalPending:    {WithdrawalProcessing, WithdrawalFailed},
	WithdrawalProcessing: {WithdrawalCompleted, WithdrawalFailed},
}

var investmentTransitions = map[InvestmentStatus][]InvestmentStatus{
	InvestmentPending:  {InvestmentApproved, InvestmentCancelled, InvestmentDefaulted},
	InvestmentApproved: {InvestmentActive, InvestmentCancelled, InvestmentDefaulted},
	InvestmentActive:   {InvestmentCompleted, InvestmentCancelled, InvestmentDefaulted},
}

func allowed[S comparable](table map[S][]S, from, to S) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

func transitionError[S ~string](from, to S) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

func (s LoanStatus) TransitionTo(to LoanStatus) error {
	if !allowed(loanTransitions, s, to) {
		return transitionError(s, to)
	}
	return nil
}

func (s RepaymentStatus) TransitionTo(to RepaymentStatus) error {
	if !allowed(repaymentTransitions, s, to) {
		return transitionError(s, to)
	}
	return nil
}

func (s WithdrawalStatus) TransitionTo(to WithdrawalStatus) error {
	if !allowed(withdrawalTransitions, s, to) {
		return transitionError(s, to)
	}
	return nil
}

func (s InvestmentStatus) TransitionTo(to InvestmentStatus) error {
	if !allowed(investmentTransitions, s, to) {
		return transitionError(s, to)
	}
	return nil
}

func (s InvestmentStatus) Valid() bool {
	switch s {
	case InvestmentPending, InvestmentApproved, InvestmentActive,
		InvestmentCompleted, InvestmentCancelled, InvestmentDefaulted:
		return true
	}
	return false
}

func (s WithdrawalStatus) Valid() bool {
	switch s {
	case WithdrawalPending, WithdrawalProcessing, WithdrawalCompleted, WithdrawalFailed, WithdrawalCancelled:
		return true
	}
	return false
}

func (s LoanStatus) Valid() bool {
	return s == LoanPending || s == LoanApproved || s == LoanRejected
}

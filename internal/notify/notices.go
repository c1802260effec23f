package notify

import (
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

type LoanNotice struct {
	ID             int
	Amount         int64
	TotalAmountDue string
	MonthlyPayment string
	DueDate        string
	DaysOverdue    int
}

func NewLoanNotice(loan *domain.LoanApplication, today time.Time) LoanNotice {
	n := LoanNotice{
		ID:             loan.ID,
		Amount:         loan.Amount,
		TotalAmountDue: loan.TotalAmountDue().StringFixed(2),
		MonthlyPayment: loan.MonthlyPayment().StringFixed(2),
		DaysOverdue:    loan.DaysOverdue(today),
	}
	if loan.RepaymentDueDate != nil {
		n.DueDate = loan.RepaymentDueDate.Format(dateLayout)
	}
	return n
}

type PaymentNotice struct {
	LoanID          int
	Amount          string
	PaymentDate     string
	RemainingAmount string
}

func NewPaymentNotice(rp *domain.Repayment, remaining decimal.Decimal) PaymentNotice {
	return PaymentNotice{
		LoanID:          rp.LoanID,
		Amount:          rp.AmountPaid.StringFixed(2),
		PaymentDate:     rp.PaymentDate.Format(dateTimeLayout),
		RemainingAmount: remaining.StringFixed(2),
	}
}

type WithdrawalNotice struct {
	ID          int
	Amount      string
	Method      string
	Status      string
	CreatedAt   string
	ProcessedAt string
	ProcessedBy string
}

func NewWithdrawalNotice(wd *domain.Withdrawal, processedBy string) WithdrawalNotice {
	n := WithdrawalNotice{
		ID:          wd.ID,
		Amount:      wd.Amount.StringFixed(2),
		Method:      string(wd.Method),
		Status:      string(wd.Status),
		CreatedAt:   wd.CreatedAt.Format(dateTimeLayout),
		ProcessedBy: processedBy,
	}
	if wd.ProcessedAt != nil {
		n.ProcessedAt = wd.ProcessedAt.Format(dateTimeLayout)
	}
	return n
}

type WelcomeNotice struct {
	Name  string
	Email string
}

func NewWelcomeNotice(user *domain.User) WelcomeNotice {
	return WelcomeNotice{Name: user.FullName(), Email: user.Email}
}

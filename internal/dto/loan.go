package dto

import (
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateLoanRequestDTO struct {
	BorrowerID       int    `json:"borrower_id,omitempty" validate:"omitempty,gt=0" example:"0"`
	Amount           int64  `json:"amount" validate:"required" example:"1000"`
	Reason           string `json:"reason" validate:"required,max=2000" example:"Semester fees"`
	RepaymentDueDate *Date  `json:"repayment_due_date,omitempty" swaggertype:"string" example:"2025-06-10"`
}

type ApproveLoanRequestDTO struct {
	RepaymentDueDate *Date `json:"repayment_due_date,omitempty" swaggertype:"string" example:"2025-06-10"`
}

type UpdateLoanRequestDTO struct {
	Amount           *int64           `json:"amount,omitempty" example:"1500"`
	InterestRate     *decimal.Decimal `json:"interest_rate,omitempty" swaggertype:"string" example:"10.00"`
	RepaymentDueDate *Date            `json:"repayment_due_date,omitempty" swaggertype:"string" example:"2025-06-10"`
	AdminNotes       *string          `json:"admin_notes,omitempty"`
}

type LoanResponseDTO struct {
	ID               int       `json:"id"`
	BorrowerID       int       `json:"borrower_id"`
	Amount           int64     `json:"amount"`
	Reason           string    `json:"reason"`
	Status           string    `json:"status"`
	AdminNotes       string    `json:"admin_notes"`
	RepaymentDueDate *string   `json:"repayment_due_date"`
	InterestRate     string    `json:"interest_rate"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	TotalInterest    string    `json:"total_interest"`
	TotalAmountDue   string    `json:"total_amount_due"`
	MonthlyPayment   string    `json:"monthly_payment"`
	RepaymentMonths  int       `json:"repayment_months"`
	IsOverdue        bool      `json:"is_overdue"`
	DaysOverdue      int       `json:"days_overdue"`
	DaysUntilDue     *int      `json:"days_until_due"`
	TotalPaid        string    `json:"total_paid"`
	RemainingAmount  string    `json:"remaining_amount"`
}

// NewLoanResponse renders a loan with its derived amounts as of today.
func NewLoanResponse(loan *domain.LoanApplication, paid decimal.Decimal, today time.Time) LoanResponseDTO {
	totalDue := loan.TotalAmountDue()
	return LoanResponseDTO{
		ID:               loan.ID,
		BorrowerID:       loan.BorrowerID,
		Amount:           loan.Amount,
		Reason:           loan.Reason,
		Status:           string(loan.Status),
		AdminNotes:       loan.AdminNotes,
		RepaymentDueDate: formatDate(loan.RepaymentDueDate),
		InterestRate:     money(loan.InterestRate),
		CreatedAt:        loan.CreatedAt,
		UpdatedAt:        loan.UpdatedAt,
		TotalInterest:    money(loan.TotalInterest()),
		TotalAmountDue:   money(totalDue),
		MonthlyPayment:   money(loan.MonthlyPayment()),
		RepaymentMonths:  loan.RepaymentMonths(),
		IsOverdue:        loan.IsOverdue(today),
		DaysOverdue:      loan.DaysOverdue(today),
		DaysUntilDue:     loan.DaysUntilDue(today),
		TotalPaid:        money(paid),
		RemainingAmount:  money(domain.RemainingAmount(totalDue, paid)),
	}
}

type EligibilityResponseDTO struct {
	Eligible      bool   `json:"eligible"`
	HasActiveLoan bool   `json:"has_active_loan"`
	GPA           string `json:"gpa"`
	CanApply      bool   `json:"can_apply"`
}

type LoanStatisticsResponseDTO struct {
	Total          int   `json:"total_applications"`
	Pending        int   `json:"pending_applications"`
	Approved       int   `json:"approved_applications"`
	Rejected       int   `json:"rejected_applications"`
	Overdue        int   `json:"overdue_loans"`
	ApprovedAmount int64 `json:"total_approved_amount"`
	PendingAmount  int64 `json:"total_pending_amount"`
}

func NewLoanStatisticsResponse(s *domain.LoanStatistics) LoanStatisticsResponseDTO {
	return LoanStatisticsResponseDTO{
		Total:          s.Total,
		Pending:        s.Pending,
		Approved:       s.Approved,
		Rejected:       s.Rejected,
		Overdue:        s.Overdue,
		ApprovedAmount: s.ApprovedAmount,
		PendingAmount:  s.PendingAmount,
	}
}

package dto

import (
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateInvestmentRequestDTO struct {
	LoanID             int              `json:"loan_application" validate:"required,gt=0" example:"1"`
	InvestmentAmount   decimal.Decimal  `json:"investment_amount" swaggertype:"string" example:"5000.00"`
	ExpectedReturnRate *decimal.Decimal `json:"expected_return_rate,omitempty" swaggertype:"string" example:"12.00"`
	InvestmentMethod   string           `json:"investment_method" example:"Bank Transfer"`
	MaturityDate       *Date            `json:"maturity_date,omitempty" swaggertype:"string" example:"2026-01-10"`
	Notes              string           `json:"notes" validate:"max=2000"`
}

type InvestmentTransitionRequestDTO struct {
	Status string `json:"status" validate:"required" example:"Approved"`
}

type InvestmentResponseDTO struct {
	ID                   int        `json:"id"`
	FinancierID          int        `json:"financier_id"`
	LoanID               int        `json:"loan_application"`
	InvestmentAmount     string     `json:"investment_amount"`
	ExpectedReturnRate   string     `json:"expected_return_rate"`
	InvestmentMethod     string     `json:"investment_method"`
	Status               string     `json:"status"`
	InvestmentDate       time.Time  `json:"investment_date"`
	MaturityDate         *string    `json:"maturity_date"`
	TransactionID        string     `json:"transaction_id,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	ProcessedAt          *time.Time `json:"processed_at,omitempty"`
	ExpectedReturnAmount string     `json:"expected_return_amount,omitempty"`
	TotalReturnAmount    string     `json:"total_return_amount,omitempty"`
	PeriodDays           int        `json:"investment_period_days,omitempty"`
}

func NewInvestmentResponse(inv *domain.Investment) InvestmentResponseDTO {
	return InvestmentResponseDTO{
		ID:                 inv.ID,
		FinancierID:        inv.FinancierID,
		LoanID:             inv.LoanID,
		InvestmentAmount:   money(inv.InvestmentAmount),
		ExpectedReturnRate: money(inv.ExpectedReturnRate),
		InvestmentMethod:   string(inv.Method),
		Status:             string(inv.Status),
		InvestmentDate:     inv.InvestmentDate,
		MaturityDate:       formatDate(inv.MaturityDate),
		TransactionID:      inv.TransactionID,
		Notes:              inv.Notes,
		ProcessedAt:        inv.ProcessedAt,
	}
}

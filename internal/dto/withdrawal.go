package dto

import (
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateWithdrawalRequestDTO struct {
	Amount            decimal.Decimal `json:"amount" swaggertype:"string" example:"250.00"`
	WithdrawalMethod  string          `json:"withdrawal_method" example:"Bank Transfer"`
	BankName          string          `json:"bank_name" validate:"max=100"`
	AccountHolderName string          `json:"account_holder_name" validate:"max=100"`
	AccountNumber     string          `json:"account_number" validate:"max=50"`
	IFSCCode          string          `json:"ifsc_code" validate:"max=20"`
	UPIID             string          `json:"upi_id" validate:"max=100"`
	Notes             string          `json:"notes" validate:"max=2000"`
}

type WithdrawalResponseDTO struct {
	ID                int        `json:"id"`
	FinancierID       int        `json:"financier_id"`
	Amount            string     `json:"amount"`
	WithdrawalMethod  string     `json:"withdrawal_method"`
	Status            string     `json:"status"`
	BankName          string     `json:"bank_name,omitempty"`
	AccountHolderName string     `json:"account_holder_name,omitempty"`
	AccountNumber     string     `json:"account_number,omitempty"`
	IFSCCode          string     `json:"ifsc_code,omitempty"`
	UPIID             string     `json:"upi_id,omitempty"`
	TransactionID     string     `json:"transaction_id,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func NewWithdrawalResponse(wd *domain.Withdrawal) WithdrawalResponseDTO {
	return WithdrawalResponseDTO{
		ID:                wd.ID,
		FinancierID:       wd.FinancierID,
		Amount:            money(wd.Amount),
		WithdrawalMethod:  string(wd.Method),
		Status:            string(wd.Status),
		BankName:          wd.BankName,
		AccountHolderName: wd.AccountHolderName,
		AccountNumber:     wd.AccountNumber,
		IFSCCode:          wd.IFSCCode,
		UPIID:             wd.UPIID,
		TransactionID:     wd.TransactionID,
		Notes:             wd.Notes,
		ProcessedAt:       wd.ProcessedAt,
		CreatedAt:         wd.CreatedAt,
	}
}

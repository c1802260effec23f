package dto

import (
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateRepaymentRequestDTO struct {
	AmountPaid    decimal.Decimal `json:"amount_paid" swaggertype:"string" example:"500.00"`
	PaymentMethod string          `json:"payment_method" example:"UPI"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	TransactionID string          `json:"transaction_id" validate:"max=100"`
	UPIID         string          `json:"upi_id" validate:"max=100" example:"asha@okbank"`
	BankName      string          `json:"bank_name" validate:"max=100"`
	AccountNumber string          `json:"account_number" validate:"max=50"`
	IFSCCode      string          `json:"ifsc_code" validate:"max=20"`
	CardNumber    string          `json:"card_number" validate:"max=25"`
	Notes         string          `json:"notes" validate:"max=2000"`
	Gateway       string          `json:"gateway" example:"razorpay"`
}

type InitiatePaymentRequestDTO struct {
	Gateway string `json:"gateway" example:"razorpay"`
}

type VerifyPaymentRequestDTO struct {
	OrderID   string `json:"order_id" example:"order_9A33XWu170gUtm"`
	PaymentID string `json:"payment_id" validate:"required" example:"pay_29QQoUBi66xm2f"`
	Signature string `json:"signature" validate:"required"`
}

type RepaymentResponseDTO struct {
	ID                   int        `json:"id"`
	LoanID               int        `json:"loan_id"`
	AmountPaid           string     `json:"amount_paid"`
	PaymentDate          time.Time  `json:"payment_date"`
	Status               string     `json:"status"`
	PaymentMethod        string     `json:"payment_method"`
	TransactionID        string     `json:"transaction_id,omitempty"`
	Gateway              string     `json:"gateway,omitempty"`
	GatewayTransactionID string     `json:"gateway_transaction_id,omitempty"`
	UPIID                string     `json:"upi_id,omitempty"`
	BankName             string     `json:"bank_name,omitempty"`
	AccountNumber        string     `json:"account_number,omitempty"`
	IFSCCode             string     `json:"ifsc_code,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	ProcessedAt          *time.Time `json:"processed_at,omitempty"`
}

func NewRepaymentResponse(rp *domain.Repayment) RepaymentResponseDTO {
	return RepaymentResponseDTO{
		ID:                   rp.ID,
		LoanID:               rp.LoanID,
		AmountPaid:           money(rp.AmountPaid),
		PaymentDate:          rp.PaymentDate,
		Status:               string(rp.Status),
		PaymentMethod:        string(rp.PaymentMethod),
		TransactionID:        rp.TransactionID,
		Gateway:              rp.Gateway,
		GatewayTransactionID: rp.GatewayTransactionID,
		UPIID:                rp.UPIID,
		BankName:             rp.BankName,
		AccountNumber:        rp.AccountNumber,
		IFSCCode:             rp.IFSCCode,
		Notes:                rp.Notes,
		ProcessedAt:          rp.ProcessedAt,
	}
}

type GatewayOrderDTO struct {
	OrderID string `json:"order_id"`
}

type RepaymentResultDTO struct {
	Repayment       RepaymentResponseDTO `json:"repayment"`
	RemainingAmount string               `json:"remaining_amount"`
	Order           *GatewayOrderDTO     `json:"order,omitempty"`
}

type RepaymentSummaryResponseDTO struct {
	HasActiveLoan  bool   `json:"has_active_loan"`
	LoanID         int    `json:"loan_id,omitempty"`
	TotalAmountDue string `json:"total_amount_due"`
	TotalPaid      string `json:"total_paid"`
	Remaining      string `json:"remaining_amount"`
	IsOverdue      bool   `json:"is_overdue"`
	DaysUntilDue   *int   `json:"days_until_due"`
	Progress       string `json:"repayment_progress"`
}

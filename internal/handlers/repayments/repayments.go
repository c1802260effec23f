package repayments

import (
	"context"
	"fmt"
	"net/http"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/dto"
	"github.com/GlebRadaev/loanportal/internal/gateway"
	"github.com/GlebRadaev/loanportal/internal/handlers/httpio"
	"github.com/GlebRadaev/loanportal/internal/service/repaymentservice"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/utils"
)

type Service interface {
	RecordRepayment(ctx context.Context, actor auth.Actor, in repaymentservice.RecordRepaymentInput) (*repaymentservice.Result, error)
	InitiatePayment(ctx context.Context, actor auth.Actor, repaymentID int, gatewayName string) (*gateway.Order, error)
	VerifyPayment(ctx context.Context, actor auth.Actor, repaymentID int, v gateway.Verification) (*repaymentservice.Result, error)
	MarkPaid(ctx context.Context, actor auth.Actor, repaymentID int) (*repaymentservice.Result, error)
	MarkFailed(ctx context.Context, actor auth.Actor, repaymentID int) (*domain.Repayment, error)
	ListByLoan(ctx context.Context, actor auth.Actor, loanID int) ([]domain.Repayment, error)
	Summary(ctx context.Context, borrowerID int) (*repaymentservice.Summary, error)
}

type RepaymentHandler struct {
	repaymentService Service
}

func New(repaymentService Service) *RepaymentHandler {
	return &RepaymentHandler{
		repaymentService: repaymentService,
	}
}

func newResult(res *repaymentservice.Result) dto.RepaymentResultDTO {
	out := dto.RepaymentResultDTO{
		Repayment:       dto.NewRepaymentResponse(res.Repayment),
		RemainingAmount: res.Remaining.StringFixed(2),
	}
	if res.Order != nil {
		out.Order = &dto.GatewayOrderDTO{OrderID: res.Order.CorrelationID}
	}
	return out
}

// RecordRepayment godoc
//
//	@Summary		Record a repayment
//	@Description	Store a payment against an approved loan. Send Idempotency-Key to make retries safe.
//	@Tags			Repayments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id				path		int								true	"Loan ID"
//	@Param			Idempotency-Key	header		string							false	"Client generated key"
//	@Param			request			body		dto.CreateRepaymentRequestDTO	true	"Repayment"
//	@Success		201				{object}	dto.RepaymentResultDTO
//	@Failure		400				{object}	utils.Response	"Validation failed"
//	@Failure		404				{object}	utils.Response	"Loan not found"
//	@Failure		409				{object}	utils.Response	"Request with the same key in progress"
//	@Failure		502				{object}	utils.Response	"Payment gateway error"
//	@Router			/api/loans/{id}/repayments [post]
func (h *RepaymentHandler) RecordRepayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	var req dto.CreateRepaymentRequestDTO
	if err := httpio.Bind(r, &req); err != nil {
		httpio.Fail(w, err)
		return
	}
	res, err := h.repaymentService.RecordRepayment(r.Context(), httpio.Actor(r), repaymentservice.RecordRepaymentInput{
		LoanID:        loanID,
		Amount:        req.AmountPaid,
		Method:        domain.PaymentMethod(req.PaymentMethod),
		PaymentDate:   req.PaymentDate,
		TransactionID: req.TransactionID,
		UPIID:         req.UPIID,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		IFSCCode:      req.IFSCCode,
		CardNumber:    req.CardNumber,
		Notes:         req.Notes,
		Gateway:       req.Gateway,
	})
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.Response{
		Success: true,
		Message: fmt.Sprintf("Payment of %s recorded", res.Repayment.AmountPaid.StringFixed(2)),
		Data:    newResult(res),
	})
}

// ListByLoan godoc
//
//	@Summary		List repayments of a loan
//	@Tags			Repayments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Loan ID"
//	@Success		200	{array}		dto.RepaymentResponseDTO
//	@Failure		404	{object}	utils.Response	"Loan not found"
//	@Router			/api/loans/{id}/repayments [get]
func (h *RepaymentHandler) ListByLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	repayments, err := h.repaymentService.ListByLoan(r.Context(), httpio.Actor(r), loanID)
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	resp := make([]dto.RepaymentResponseDTO, 0, len(repayments))
	for i := range repayments {
		resp = append(resp, dto.NewRepaymentResponse(&repayments[i]))
	}
	utils.RespondWithData(w, http.StatusOK, resp)
}

// Summary godoc
//
//	@Summary		Repayment summary of the active loan
//	@Tags			Repayments
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.RepaymentSummaryResponseDTO
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/repayments/summary [get]
func (h *RepaymentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.repaymentService.Summary(r.Context(), httpio.Actor(r).UserID)
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.RepaymentSummaryResponseDTO{
		HasActiveLoan:  s.HasActiveLoan,
		LoanID:         s.LoanID,
		TotalAmountDue: s.TotalAmountDue.StringFixed(2),
		TotalPaid:      s.TotalPaid.StringFixed(2),
		Remaining:      s.Remaining.StringFixed(2),
		IsOverdue:      s.IsOverdue,
		DaysUntilDue:   s.DaysUntilDue,
		Progress:       s.Progress.StringFixed(2),
	})
}

// InitiatePayment godoc
//
//	@Summary		Start a gateway payment
//	@Description	Create a provider order for a pending or failed repayment
//	@Tags			Repayments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int								true	"Repayment ID"
//	@Param			request	body		dto.InitiatePaymentRequestDTO	false	"Gateway"
//	@Success		200		{object}	dto.GatewayOrderDTO
//	@Failure		404		{object}	utils.Response	"Repayment not found"
//	@Failure		409		{object}	utils.Response	"Invalid status transition"
//	@Failure		502		{object}	utils.Response	"Payment gateway error"
//	@Router			/api/repayments/{id}/initiate [post]
func (h *RepaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	var req dto.InitiatePaymentRequestDTO
	if err := httpio.BindOptional(r, &req); err != nil {
		httpio.Fail(w, err)
		return
	}
	order, err := h.repaymentService.InitiatePayment(r.Context(), httpio.Actor(r), id, req.Gateway)
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.GatewayOrderDTO{OrderID: order.CorrelationID})
}

// VerifyPayment godoc
//
//	@Summary		Verify a gateway payment
//	@Description	Check the provider signature and settle the repayment
//	@Tags			Repayments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int							true	"Repayment ID"
//	@Param			request	body		dto.VerifyPaymentRequestDTO	true	"Gateway callback"
//	@Success		200		{object}	dto.RepaymentResultDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		409		{object}	utils.Response	"Invalid status transition"
//	@Failure		502		{object}	utils.Response	"Payment gateway error"
//	@Router			/api/repayments/{id}/verify [post]
func (h *RepaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	var req dto.VerifyPaymentRequestDTO
	if err := httpio.Bind(r, &req); err != nil {
		httpio.Fail(w, err)
		return
	}
	res, err := h.repaymentService.VerifyPayment(r.Context(), httpio.Actor(r), id, gateway.Verification{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	message := "Payment verified"
	if res.Repayment.Status != domain.RepaymentPaid {
		message = "Payment verification failed"
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Success: true, Message: message, Data: newResult(res)})
}

// MarkPaid godoc
//
//	@Summary		Mark a repayment as paid
//	@Tags			Repayments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Repayment ID"
//	@Success		200	{object}	dto.RepaymentResultDTO
//	@Failure		400	{object}	utils.Response	"Payment exceeds remaining amount"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		409	{object}	utils.Response	"Invalid status transition"
//	@Router			/api/repayments/{id}/mark-paid [post]
func (h *RepaymentHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	res, err := h.repaymentService.MarkPaid(r.Context(), httpio.Actor(r), id)
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{
		Success: true,
		Message: fmt.Sprintf("Repayment #%d marked as paid", res.Repayment.ID),
		Data:    newResult(res),
	})
}

// MarkFailed godoc
//
//	@Summary		Mark a repayment as failed
//	@Tags			Repayments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Repayment ID"
//	@Success		200	{object}	dto.RepaymentResponseDTO
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		409	{object}	utils.Response	"Invalid status transition"
//	@Router			/api/repayments/{id}/mark-failed [post]
func (h *RepaymentHandler) MarkFailed(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	rp, err := h.repaymentService.MarkFailed(r.Context(), httpio.Actor(r), id)
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{
		Success: true,
		Message: fmt.Sprintf("Repayment #%d marked as failed", rp.ID),
		Data:    dto.NewRepaymentResponse(rp),
	})
}

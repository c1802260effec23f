package withdrawals

import (
	"context"
	"fmt"
	"net/http"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/dto"
	"github.com/GlebRadaev/loanportal/internal/handlers/httpio"
	"github.com/GlebRadaev/loanportal/internal/service/withdrawalservice"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/utils"
)

type Service interface {
	RequestWithdrawal(ctx context.Context, actor auth.Actor, in withdrawalservice.RequestInput) (*domain.Withdrawal, error)
	ListWithdrawals(ctx context.Context, actor auth.Actor, status domain.WithdrawalStatus) ([]domain.Withdrawal, error)
	Approve(ctx context.Context, actor auth.Actor, id int) (*domain.Withdrawal, error)
	Complete(ctx context.Context, actor auth.Actor, id int) (*domain.Withdrawal, error)
	Reject(ctx context.Context, actor auth.Actor, id int) (*domain.Withdrawal, error)
}

type WithdrawalHandler struct {
	withdrawalService Service
}

func New(withdrawalService Service) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
	}
}

// RequestWithdrawal godoc
//
//	@Summary		Request a withdrawal
//	@Tags			Withdrawals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.CreateWithdrawalRequestDTO	true	"Withdrawal request"
//	@Success		201		{object}	dto.WithdrawalResponseDTO
//	@Failure		400		{object}	utils.Response	"Validation failed"
//	@Failure		403		{object}	utils.Response	"Only financiers can withdraw"
//	@Failure		404		{object}	utils.Response	"Financier profile not found"
//	@Router			/api/withdrawals [post]
func (h *WithdrawalHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWithdrawalRequestDTO
	if err := httpio.Bind(r, &req); err != nil {
		httpio.Fail(w, err)
		return
	}
	wd, err := h.withdrawalService.RequestWithdrawal(r.Context(), httpio.Actor(r), withdrawalservice.RequestInput{
		Amount:            req.Amount,
		Method:            domain.WithdrawalMethod(req.WithdrawalMethod),
		BankName:          req.BankName,
		AccountHolderName: req.AccountHolderName,
		AccountNumber:     req.AccountNumber,
		IFSCCode:          req.IFSCCode,
		UPIID:             req.UPIID,
		Notes:             req.Notes,
	})
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.Response{
		Success: true,
		Message: "Withdrawal request submitted",
		Data:    dto.NewWithdrawalResponse(wd),
	})
}

// ListWithdrawals godoc
//
//	@Summary		List withdrawals
//	@Description	Staff see every withdrawal, financiers only their own
//	@Tags			Withdrawals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status	query		string	false	"Withdrawal status"
//	@Success		200		{array}		dto.WithdrawalResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid status"
//	@Router			/api/withdrawals [get]
func (h *WithdrawalHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := h.withdrawalService.ListWithdrawals(r.Context(), httpio.Actor(r),
		domain.WithdrawalStatus(r.URL.Query().Get("status")))
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	resp := make([]dto.WithdrawalResponseDTO, 0, len(withdrawals))
	for i := range withdrawals {
		resp = append(resp, dto.NewWithdrawalResponse(&withdrawals[i]))
	}
	utils.RespondWithData(w, http.StatusOK, resp)
}

// Approve godoc
//
//	@Summary		Approve a withdrawal
//	@Tags			Withdrawals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Withdrawal ID"
//	@Success		200	{object}	dto.WithdrawalResponseDTO
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		409	{object}	utils.Response	"Invalid status transition"
//	@Router			/api/withdrawals/{id}/approve [post]
func (h *WithdrawalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.withdrawalService.Approve, "Withdrawal #%d approved and set to processing")
}

// Complete godoc
//
//	@Summary		Complete a withdrawal
//	@Tags			Withdrawals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Withdrawal ID"
//	@Success		200	{object}	dto.WithdrawalResponseDTO
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		409	{object}	utils.Response	"Invalid status transition"
//	@Router			/api/withdrawals/{id}/complete [post]
func (h *WithdrawalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.withdrawalService.Complete, "Withdrawal #%d completed")
}

// Reject godoc
//
//	@Summary		Reject a withdrawal
//	@Tags			Withdrawals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Withdrawal ID"
//	@Success		200	{object}	dto.WithdrawalResponseDTO
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		409	{object}	utils.Response	"Invalid status transition"
//	@Router			/api/withdrawals/{id}/reject [post]
func (h *WithdrawalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.withdrawalService.Reject, "Withdrawal #%d rejected")
}

func (h *WithdrawalHandler) transition(w http.ResponseWriter, r *http.Request,
	action func(context.Context, auth.Actor, int) (*domain.Withdrawal, error), message string) {
	id, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	wd, err := action(r.Context(), httpio.Actor(r), id)
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{
		Success: true,
		Message: fmt.Sprintf(message, wd.ID),
		Data:    dto.NewWithdrawalResponse(wd),
	})
}

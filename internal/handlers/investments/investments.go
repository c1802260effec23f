package investments

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/dto"
	"github.com/GlebRadaev/loanportal/internal/handlers/httpio"
	"github.com/GlebRadaev/loanportal/internal/service/investmentservice"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/utils"
)

type Service interface {
	CreateInvestment(ctx context.Context, actor auth.Actor, in investmentservice.CreateInput) (*investmentservice.View, error)
	ListInvestments(ctx context.Context, actor auth.Actor, filter domain.InvestmentFilter) ([]investmentservice.View, error)
	Transition(ctx context.Context, actor auth.Actor, id int, to domain.InvestmentStatus) (*domain.Investment, error)
}

type InvestmentHandler struct {
	investmentService Service
}

func New(investmentService Service) *InvestmentHandler {
	return &InvestmentHandler{
		investmentService: investmentService,
	}
}

func newView(v investmentservice.View) dto.InvestmentResponseDTO {
	resp := dto.NewInvestmentResponse(v.Investment)
	resp.ExpectedReturnAmount = v.ExpectedReturnAmount.StringFixed(2)
	resp.TotalReturnAmount = v.TotalReturnAmount.StringFixed(2)
	resp.PeriodDays = v.PeriodDays
	return resp
}

// CreateInvestment godoc
//
//	@Summary		Invest in a loan
//	@Tags			Investments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.CreateInvestmentRequestDTO	true	"Investment"
//	@Success		201		{object}	dto.InvestmentResponseDTO
//	@Failure		400		{object}	utils.Response	"Validation failed"
//	@Failure		403		{object}	utils.Response	"Only financiers can invest"
//	@Failure		409		{object}	utils.Response	"Investment for this loan already exists"
//	@Router			/api/investments [post]
func (h *InvestmentHandler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateInvestmentRequestDTO
	if err := httpio.Bind(r, &req); err != nil {
		httpio.Fail(w, err)
		return
	}
	view, err := h.investmentService.CreateInvestment(r.Context(), httpio.Actor(r), investmentservice.CreateInput{
		LoanID:             req.LoanID,
		Amount:             req.InvestmentAmount,
		ExpectedReturnRate: req.ExpectedReturnRate,
		Method:             domain.InvestmentMethod(req.InvestmentMethod),
		MaturityDate:       req.MaturityDate.Ptr(),
		Notes:              req.Notes,
	})
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.Response{
		Success: true,
		Message: "Investment submitted",
		Data:    newView(*view),
	})
}

// ListInvestments godoc
//
//	@Summary		List investments
//	@Description	Staff see every investment, financiers only their own
//	@Tags			Investments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status	query		string	false	"Investment status"
//	@Param			loan	query		int		false	"Loan ID"
//	@Success		200		{array}		dto.InvestmentResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid filter"
//	@Router			/api/investments [get]
func (h *InvestmentHandler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	filter := domain.InvestmentFilter{Status: domain.InvestmentStatus(r.URL.Query().Get("status"))}
	if raw := r.URL.Query().Get("loan"); raw != "" {
		loanID, err := strconv.Atoi(raw)
		if err != nil || loanID <= 0 {
			httpio.Fail(w, httpio.ErrInvalidID)
			return
		}
		filter.LoanID = &loanID
	}
	views, err := h.investmentService.ListInvestments(r.Context(), httpio.Actor(r), filter)
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	resp := make([]dto.InvestmentResponseDTO, 0, len(views))
	for _, v := range views {
		resp = append(resp, newView(v))
	}
	utils.RespondWithData(w, http.StatusOK, resp)
}

// Transition godoc
//
//	@Summary		Change investment status
//	@Tags			Investments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int									true	"Investment ID"
//	@Param			request	body		dto.InvestmentTransitionRequestDTO	true	"Target status"
//	@Success		200		{object}	dto.InvestmentResponseDTO
//	@Failure		400		{object}	utils.Response	"Unknown status"
//	@Failure		403		{object}	utils.Response	"Forbidden"
//	@Failure		409		{object}	utils.Response	"Invalid status transition"
//	@Router			/api/investments/{id}/transition [post]
func (h *InvestmentHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	var req dto.InvestmentTransitionRequestDTO
	if err := httpio.Bind(r, &req); err != nil {
		httpio.Fail(w, err)
		return
	}
	inv, err := h.investmentService.Transition(r.Context(), httpio.Actor(r), id, domain.InvestmentStatus(req.Status))
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{
		Success: true,
		Message: fmt.Sprintf("Investment #%d is now %s", inv.ID, inv.Status),
		Data:    dto.NewInvestmentResponse(inv),
	})
}

package loans

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/dto"
	"github.com/GlebRadaev/loanportal/internal/handlers/httpio"
	"github.com/GlebRadaev/loanportal/internal/service/loanservice"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/utils"
	"github.com/shopspring/decimal"
)

type Service interface {
	Eligibility(ctx context.Context, borrowerID int) (*loanservice.Eligibility, error)
	CreateLoan(ctx context.Context, actor auth.Actor, in loanservice.CreateLoanInput) (*domain.LoanApplication, error)
	GetLoan(ctx context.Context, actor auth.Actor, id int) (*loanservice.LoanView, error)
	ListLoans(ctx context.Context, actor auth.Actor, status domain.LoanStatus) ([]loanservice.LoanView, error)
	Approve(ctx context.Context, actor auth.Actor, id int, dueDate *time.Time) (*domain.LoanApplication, error)
	Reject(ctx context.Context, actor auth.Actor, id int) (*domain.LoanApplication, error)
	UpdateLoan(ctx context.Context, actor auth.Actor, id int, in loanservice.UpdateLoanInput) (*domain.LoanApplication, error)
	Statistics(ctx context.Context, actor auth.Actor) (*domain.LoanStatistics, error)
}

type LoanHandler struct {
	loanService Service
	now         func() time.Time
}

func New(loanService Service) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Eligibility godoc
//
//	@Summary		Check loan eligibility
//	@Description	Report whether the caller may apply for a new loan
//	@Tags			Loans
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.EligibilityResponseDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/loans/eligibility [get]
func (h *LoanHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	actor := httpio.Actor(r)
	e, err := h.loanService.Eligibility(r.Context(), actor.UserID)
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.EligibilityResponseDTO{
		Eligible:      e.Eligible,
		HasActiveLoan: e.HasActiveLoan,
		GPA:           e.GPA.StringFixed(2),
		CanApply:      e.CanApply(),
	})
}

// CreateLoan godoc
//
//	@Summary		Apply for a loan
//	@Description	Eligible students are approved automatically, staff applications stay pending
//	@Tags			Loans
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.CreateLoanRequestDTO	true	"Loan application"
//	@Success		201		{object}	dto.LoanResponseDTO
//	@Failure		400		{object}	utils.Response	"Validation failed"
//	@Failure		403		{object}	utils.Response	"Forbidden"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/loans [post]
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequestDTO
	if err := httpio.Bind(r, &req); err != nil {
		httpio.Fail(w, err)
		return
	}
	loan, err := h.loanService.CreateLoan(r.Context(), httpio.Actor(r), loanservice.CreateLoanInput{
		BorrowerID: req.BorrowerID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		DueDate:    req.RepaymentDueDate.Ptr(),
	})
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	message := "Loan application submitted"
	if loan.Status == domain.LoanApproved {
		message = "Loan application approved automatically"
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.Response{
		Success: true,
		Message: message,
		Data:    dto.NewLoanResponse(loan, decimal.Zero, h.now()),
	})
}

// ListLoans godoc
//
//	@Summary		List loans
//	@Description	Staff see every loan, borrowers only their own
//	@Tags			Loans
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status	query		string	false	"Pending, Approved or Rejected"
//	@Success		200		{array}		dto.LoanResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid status"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/loans [get]
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	views, err := h.loanService.ListLoans(r.Context(), httpio.Actor(r), domain.LoanStatus(r.URL.Query().Get("status")))
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	today := h.now()
	resp := make([]dto.LoanResponseDTO, 0, len(views))
	for _, v := range views {
		resp = append(resp, dto.NewLoanResponse(v.Loan, v.TotalPaid, today))
	}
	utils.RespondWithData(w, http.StatusOK, resp)
}

// GetLoan godoc
//
//	@Summary		Get a loan
//	@Tags			Loans
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Loan ID"
//	@Success		200	{object}	dto.LoanResponseDTO
//	@Failure		404	{object}	utils.Response	"Loan not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/loans/{id} [get]
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	view, err := h.loanService.GetLoan(r.Context(), httpio.Actor(r), id)
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.NewLoanResponse(view.Loan, view.TotalPaid, h.now()))
}

// Statistics godoc
//
//	@Summary		Loan statistics
//	@Tags			Loans
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.LoanStatisticsResponseDTO
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/loans/statistics [get]
func (h *LoanHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.loanService.Statistics(r.Context(), httpio.Actor(r))
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.NewLoanStatisticsResponse(stats))
}

// Approve godoc
//
//	@Summary		Approve a pending loan
//	@Tags			Loans
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int							true	"Loan ID"
//	@Param			request	body		dto.ApproveLoanRequestDTO	false	"Optional due date"
//	@Success		200		{object}	dto.LoanResponseDTO
//	@Failure		403		{object}	utils.Response	"Forbidden"
//	@Failure		404		{object}	utils.Response	"Loan not found"
//	@Failure		409		{object}	utils.Response	"Invalid status transition"
//	@Router			/api/loans/{id}/approve [post]
func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	var req dto.ApproveLoanRequestDTO
	if err := httpio.BindOptional(r, &req); err != nil {
		httpio.Fail(w, err)
		return
	}
	loan, err := h.loanService.Approve(r.Context(), httpio.Actor(r), id, req.RepaymentDueDate.Ptr())
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	h.respondStaffAction(w, loan, fmt.Sprintf("Loan #%d approved successfully", loan.ID))
}

// Reject godoc
//
//	@Summary		Reject a pending loan
//	@Tags			Loans
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Loan ID"
//	@Success		200	{object}	dto.LoanResponseDTO
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Loan not found"
//	@Failure		409	{object}	utils.Response	"Invalid status transition"
//	@Router			/api/loans/{id}/reject [post]
func (h *LoanHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	loan, err := h.loanService.Reject(r.Context(), httpio.Actor(r), id)
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	h.respondStaffAction(w, loan, fmt.Sprintf("Loan #%d rejected successfully", loan.ID))
}

// UpdateLoan godoc
//
//	@Summary		Edit a loan
//	@Description	Staff may change the amount, display rate, due date and notes
//	@Tags			Loans
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int							true	"Loan ID"
//	@Param			request	body		dto.UpdateLoanRequestDTO	true	"Fields to change"
//	@Success		200		{object}	dto.LoanResponseDTO
//	@Failure		400		{object}	utils.Response	"Validation failed"
//	@Failure		403		{object}	utils.Response	"Forbidden"
//	@Failure		404		{object}	utils.Response	"Loan not found"
//	@Router			/api/loans/{id} [patch]
func (h *LoanHandler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	id, err := httpio.IDParam(r, "id")
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	var req dto.UpdateLoanRequestDTO
	if err := httpio.Bind(r, &req); err != nil {
		httpio.Fail(w, err)
		return
	}
	loan, err := h.loanService.UpdateLoan(r.Context(), httpio.Actor(r), id, loanservice.UpdateLoanInput{
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		DueDate:      req.RepaymentDueDate.Ptr(),
		AdminNotes:   req.AdminNotes,
	})
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	h.respondStaffAction(w, loan, fmt.Sprintf("Loan #%d updated", loan.ID))
}

func (h *LoanHandler) respondStaffAction(w http.ResponseWriter, loan *domain.LoanApplication, message string) {
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{
		Success: true,
		Message: message,
		Data:    dto.NewLoanResponse(loan, decimal.Zero, h.now()),
	})
}

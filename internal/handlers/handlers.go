package handlers

import (
	"net/http"

	_ "github.com/GlebRadaev/loanportal/docs"
	authhandlers "github.com/GlebRadaev/loanportal/internal/handlers/auth"
	investmenthandlers "github.com/GlebRadaev/loanportal/internal/handlers/investments"
	loanhandlers "github.com/GlebRadaev/loanportal/internal/handlers/loans"
	repaymenthandlers "github.com/GlebRadaev/loanportal/internal/handlers/repayments"
	withdrawalhandlers "github.com/GlebRadaev/loanportal/internal/handlers/withdrawals"
	"github.com/GlebRadaev/loanportal/internal/service"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/idempotency"
	"github.com/GlebRadaev/loanportal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type LoanHandler interface {
	Eligibility(w http.ResponseWriter, r *http.Request)
	CreateLoan(w http.ResponseWriter, r *http.Request)
	ListLoans(w http.ResponseWriter, r *http.Request)
	GetLoan(w http.ResponseWriter, r *http.Request)
	Statistics(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	UpdateLoan(w http.ResponseWriter, r *http.Request)
}

type RepaymentHandler interface {
	RecordRepayment(w http.ResponseWriter, r *http.Request)
	ListByLoan(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	InitiatePayment(w http.ResponseWriter, r *http.Request)
	VerifyPayment(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	MarkFailed(w http.ResponseWriter, r *http.Request)
}

type WithdrawalHandler interface {
	RequestWithdrawal(w http.ResponseWriter, r *http.Request)
	ListWithdrawals(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type InvestmentHandler interface {
	CreateInvestment(w http.ResponseWriter, r *http.Request)
	ListInvestments(w http.ResponseWriter, r *http.Request)
	Transition(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler       AuthHandler
	LoanHandler       LoanHandler
	RepaymentHandler  RepaymentHandler
	WithdrawalHandler WithdrawalHandler
	InvestmentHandler InvestmentHandler

	jwtService  auth.JWTServiceInterface
	metrics     *metrics.Metrics
	idempotency *idempotency.Store
}

// New wires the API handlers. A nil idempotency store disables request replay.
func New(s *service.Services, jwtService auth.JWTServiceInterface, m *metrics.Metrics, idem *idempotency.Store) *Handlers {
	return &Handlers{
		AuthHandler:       authhandlers.New(s.AuthService),
		LoanHandler:       loanhandlers.New(s.LoanService),
		RepaymentHandler:  repaymenthandlers.New(s.RepaymentService),
		WithdrawalHandler: withdrawalhandlers.New(s.WithdrawalService),
		InvestmentHandler: investmenthandlers.New(s.InvestmentService),
		jwtService:        jwtService,
		metrics:           m,
		idempotency:       idem,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Logger,
		h.metrics.Middleware,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.AuthHandler.Register)
			r.Post("/login", h.AuthHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(h.jwtService))
			staff := r.With(auth.RequireStaff)

			r.Route("/loans", func(r chi.Router) {
				r.Get("/", h.LoanHandler.ListLoans)
				r.Post("/", h.LoanHandler.CreateLoan)
				r.Get("/eligibility", h.LoanHandler.Eligibility)
				r.Get("/statistics", h.LoanHandler.Statistics)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.LoanHandler.GetLoan)
					r.With(auth.RequireStaff).Patch("/", h.LoanHandler.UpdateLoan)
					r.With(auth.RequireStaff).Post("/approve", h.LoanHandler.Approve)
					r.With(auth.RequireStaff).Post("/reject", h.LoanHandler.Reject)
					r.Get("/repayments", h.RepaymentHandler.ListByLoan)
					r.With(h.idempotency.Middleware).Post("/repayments", h.RepaymentHandler.RecordRepayment)
				})
			})

			r.Route("/repayments", func(r chi.Router) {
				r.Get("/summary", h.RepaymentHandler.Summary)
				r.Post("/{id}/initiate", h.RepaymentHandler.InitiatePayment)
				r.Post("/{id}/verify", h.RepaymentHandler.VerifyPayment)
				r.With(auth.RequireStaff).Post("/{id}/mark-paid", h.RepaymentHandler.MarkPaid)
				r.With(auth.RequireStaff).Post("/{id}/mark-failed", h.RepaymentHandler.MarkFailed)
			})

			r.Get("/withdrawals", h.WithdrawalHandler.ListWithdrawals)
			r.Post("/withdrawals", h.WithdrawalHandler.RequestWithdrawal)
			staff.Post("/withdrawals/{id}/approve", h.WithdrawalHandler.Approve)
			staff.Post("/withdrawals/{id}/complete", h.WithdrawalHandler.Complete)
			staff.Post("/withdrawals/{id}/reject", h.WithdrawalHandler.Reject)

			r.Get("/investments", h.InvestmentHandler.ListInvestments)
			r.Post("/investments", h.InvestmentHandler.CreateInvestment)
			staff.Post("/investments/{id}/transition", h.InvestmentHandler.Transition)
		})
	})

	return r
}

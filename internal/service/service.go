package service

import (
	"time"

	"github.com/GlebRadaev/loanportal/internal/gateway"
	"github.com/GlebRadaev/loanportal/internal/handlers/auth"
	"github.com/GlebRadaev/loanportal/internal/handlers/investments"
	"github.com/GlebRadaev/loanportal/internal/handlers/loans"
	"github.com/GlebRadaev/loanportal/internal/handlers/repayments"
	"github.com/GlebRadaev/loanportal/internal/handlers/withdrawals"
	"github.com/GlebRadaev/loanportal/internal/notify"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/GlebRadaev/loanportal/internal/repo"
	authservice "github.com/GlebRadaev/loanportal/internal/service/authservice"
	investmentservice "github.com/GlebRadaev/loanportal/internal/service/investmentservice"
	loanservice "github.com/GlebRadaev/loanportal/internal/service/loanservice"
	repaymentservice "github.com/GlebRadaev/loanportal/internal/service/repaymentservice"
	withdrawalservice "github.com/GlebRadaev/loanportal/internal/service/withdrawalservice"
	pkgauth "github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/metrics"
)

type Services struct {
	AuthService       auth.Service
	LoanService       loans.Service
	RepaymentService  repayments.Service
	WithdrawalService withdrawals.Service
	InvestmentService investments.Service
}

// Deps are the collaborators shared by the services.
type Deps struct {
	TxManager pg.TXManager
	Hash      pkgauth.HashServiceInterface
	JWT       pkgauth.JWTServiceInterface
	Notifier  notify.Notifier
	Gateways  *gateway.Manager
	Metrics   *metrics.Metrics
	TokenTTL  time.Duration
}

func New(repo *repo.Repositories, deps Deps) *Services {
	authService := authservice.New(repo.UserRepo, deps.TxManager, deps.Hash, deps.JWT, deps.Notifier, deps.TokenTTL)
	loanService := loanservice.New(repo.LoanRepo, repo.UserRepo, repo.RepaymentRepo, deps.TxManager,
		deps.Notifier, deps.Metrics)
	repaymentService := repaymentservice.New(repo.LoanRepo, repo.RepaymentRepo, repo.UserRepo, deps.TxManager,
		deps.Gateways, deps.Notifier, deps.Metrics)
	withdrawalService := withdrawalservice.New(repo.WithdrawalRepo, repo.UserRepo, deps.TxManager, deps.Notifier)
	investmentService := investmentservice.New(repo.InvestmentRepo, repo.LoanRepo, repo.UserRepo, deps.TxManager)

	return &Services{
		AuthService:       authService,
		LoanService:       loanService,
		RepaymentService:  repaymentService,
		WithdrawalService: withdrawalService,
		InvestmentService: investmentService,
	}
}

package repo

import (
	"github.com/GlebRadaev/loanportal/internal/pg"
	investmentrepo "github.com/GlebRadaev/loanportal/internal/repo/investment-repo"
	loanrepo "github.com/GlebRadaev/loanportal/internal/repo/loan-repo"
	repaymentrepo "github.com/GlebRadaev/loanportal/internal/repo/repayment-repo"
	userrepo "github.com/GlebRadaev/loanportal/internal/repo/user-repo"
	withdrawalrepo "github.com/GlebRadaev/loanportal/internal/repo/withdrawal-repo"
)

// Repositories are concrete so one repository can back several service ports.
type Repositories struct {
	UserRepo       *userrepo.Repository
	LoanRepo       *loanrepo.Repository
	RepaymentRepo  *repaymentrepo.Repository
	WithdrawalRepo *withdrawalrepo.Repository
	InvestmentRepo *investmentrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:       userrepo.New(conn),
		LoanRepo:       loanrepo.New(conn),
		RepaymentRepo:  repaymentrepo.New(conn),
		WithdrawalRepo: withdrawalrepo.New(conn),
		InvestmentRepo: investmentrepo.New(conn),
	}
}

package repo

import (
	"testing"

	investmentrepo "github.com/GlebRadaev/loanportal/internal/repo/investment-repo"
	loanrepo "github.com/GlebRadaev/loanportal/internal/repo/loan-repo"
	repaymentrepo "github.com/GlebRadaev/loanportal/internal/repo/repayment-repo"
	userrepo "github.com/GlebRadaev/loanportal/internal/repo/user-repo"
	withdrawalrepo "github.com/GlebRadaev/loanportal/internal/repo/withdrawal-repo"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.NotNil(t, repo.UserRepo)
	assert.NotNil(t, repo.LoanRepo)
	assert.NotNil(t, repo.RepaymentRepo)
	assert.NotNil(t, repo.WithdrawalRepo)
	assert.NotNil(t, repo.InvestmentRepo)

	assert.IsType(t, &userrepo.Repository{}, repo.UserRepo)
	assert.IsType(t, &loanrepo.Repository{}, repo.LoanRepo)
	assert.IsType(t, &repaymentrepo.Repository{}, repo.RepaymentRepo)
	assert.IsType(t, &withdrawalrepo.Repository{}, repo.WithdrawalRepo)
	assert.IsType(t, &investmentrepo.Repository{}, repo.InvestmentRepo)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unmet expectations: %v", err)
	}
}

package investmentrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var investmentCols = []string{"id", "financier_id", "loan_id", "investment_amount", "expected_return_rate", "method", "status",
	"investment_date", "maturity_date", "transaction_id", "notes", "processed_by", "processed_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func sampleInvestment(id int, at time.Time) domain.Investment {
	maturity := at.AddDate(1, 0, 0)
	return domain.Investment{
		ID:                 id,
		FinancierID:        2,
		LoanID:             1,
		InvestmentAmount:   decimal.RequireFromString("5000.00"),
		ExpectedReturnRate: decimal.RequireFromString("12.00"),
		Method:             domain.InvestmentBankTransfer,
		Status:             domain.InvestmentPending,
		InvestmentDate:     at,
		MaturityDate:       &maturity,
		ProcessedBy:        (*int)(nil),
		ProcessedAt:        (*time.Time)(nil),
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func()
		expectErr error
	}{
		{
			name: "Investment created",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO investments")).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(3))
			},
		},
		{
			name: "Duplicate financier and loan",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO investments")).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			expectErr: domain.ErrInvestmentExists,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO investments")).
					WillReturnError(errors.New("database error"))
			},
			expectErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			inv := sampleInvestment(0, now)
			result, err := repo.Create(context.Background(), &inv)
			if tt.expectErr != nil {
				assert.EqualError(t, err, tt.expectErr.Error())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 3, result.ID)
		})
	}
}

func TestRepository_FindAndList(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	inv := sampleInvestment(3, now)
	row := func(rows *pgxmock.Rows) *pgxmock.Rows {
		return rows.AddRow(inv.ID, inv.FinancierID, inv.LoanID, inv.InvestmentAmount, inv.ExpectedReturnRate, inv.Method,
			inv.Status, inv.InvestmentDate, inv.MaturityDate, inv.TransactionID, inv.Notes, inv.ProcessedBy, inv.ProcessedAt)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM investments WHERE id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(row(pgxmock.NewRows(investmentCols)))

	found, err := repo.FindByIDForUpdate(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, &inv, found)

	mock.ExpectQuery(regexp.QuoteMeta("FROM investments WHERE id = $1 FOR UPDATE")).
		WithArgs(4).
		WillReturnError(pgx.ErrNoRows)

	found, err = repo.FindByIDForUpdate(context.Background(), 4)
	assert.NoError(t, err)
	assert.Nil(t, found)

	financier, loan := 2, 1
	mock.ExpectQuery(regexp.QuoteMeta("WHERE financier_id = $1 AND loan_id = $2 AND status = $3 ORDER BY investment_date DESC")).
		WithArgs(2, 1, domain.InvestmentPending).
		WillReturnRows(row(pgxmock.NewRows(investmentCols)))

	list, err := repo.List(context.Background(), domain.InvestmentFilter{FinancierID: &financier, LoanID: &loan, Status: domain.InvestmentPending})
	assert.NoError(t, err)
	assert.Equal(t, []domain.Investment{inv}, list)
}

func TestRepository_Update(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	inv := sampleInvestment(3, now)
	inv.Status = domain.InvestmentApproved

	mock.ExpectExec(regexp.QuoteMeta("UPDATE investments")).
		WithArgs(domain.InvestmentApproved, "", "", (*int)(nil), (*time.Time)(nil), 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.Update(context.Background(), &inv))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE investments")).
		WillReturnError(errors.New("database error"))
	assert.Error(t, repo.Update(context.Background(), &inv))
}

package withdrawalrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var withdrawalCols = []string{"id", "financier_id", "amount", "method", "status", "bank_name", "account_holder_name",
	"account_number", "ifsc_code", "upi_id", "transaction_id", "notes", "processed_by", "processed_at", "created_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func withdrawalRow(rows *pgxmock.Rows, wd domain.Withdrawal) *pgxmock.Rows {
	return rows.AddRow(wd.ID, wd.FinancierID, wd.Amount, wd.Method, wd.Status, wd.BankName, wd.AccountHolderName,
		wd.AccountNumber, wd.IFSCCode, wd.UPIID, wd.TransactionID, wd.Notes, wd.ProcessedBy, wd.ProcessedAt, wd.CreatedAt)
}

func sampleWithdrawal(id int, at time.Time) domain.Withdrawal {
	return domain.Withdrawal{
		ID:          id,
		FinancierID: 2,
		Amount:      decimal.RequireFromString("250.00"),
		Method:      domain.WithdrawalUPI,
		Status:      domain.WithdrawalPending,
		UPIID:       "fin@okbank",
		ProcessedBy: (*int)(nil),
		ProcessedAt: (*time.Time)(nil),
		CreatedAt:   at,
	}
}

func TestRepository_CreateWithdrawal(t *testing.T) {
	ctx := context.Background()
	repo, mock := NewMock(t)
	now := time.Now()
	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Create withdrawal successfully",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO withdrawals")).
					WithArgs(2, pgxmock.AnyArg(), domain.WithdrawalUPI, domain.WithdrawalPending, "", "", "", "", "fin@okbank", "", now).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO withdrawals")).
					WithArgs(2, pgxmock.AnyArg(), domain.WithdrawalUPI, domain.WithdrawalPending, "", "", "", "", "fin@okbank", "", now).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			wd := sampleWithdrawal(0, now)
			result, err := repo.CreateWithdrawal(ctx, &wd)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, result.ID)
			}
		})
	}
}

func TestRepository_FindByIDForUpdate(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	wd := sampleWithdrawal(5, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM withdrawals WHERE id = $1 FOR UPDATE")).
		WithArgs(5).
		WillReturnRows(withdrawalRow(pgxmock.NewRows(withdrawalCols), wd))

	result, err := repo.FindByIDForUpdate(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, &wd, result)

	mock.ExpectQuery(regexp.QuoteMeta("FROM withdrawals WHERE id = $1 FOR UPDATE")).
		WithArgs(6).
		WillReturnError(pgx.ErrNoRows)

	result, err = repo.FindByIDForUpdate(context.Background(), 6)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestRepository_GetWithdrawals(t *testing.T) {
	ctx := context.Background()
	repo, mock := NewMock(t)
	now := time.Now()
	financier := 2

	tests := []struct {
		name      string
		filter    domain.WithdrawalFilter
		mockSetup func()
		expectErr bool
		result    []domain.Withdrawal
	}{
		{
			name:   "Withdrawals found",
			filter: domain.WithdrawalFilter{FinancierID: &financier},
			mockSetup: func() {
				rows := pgxmock.NewRows(withdrawalCols)
				withdrawalRow(rows, sampleWithdrawal(1, now))
				withdrawalRow(rows, sampleWithdrawal(2, now))
				mock.ExpectQuery(regexp.QuoteMeta("FROM withdrawals WHERE financier_id = $1 ORDER BY created_at DESC")).
					WithArgs(2).
					WillReturnRows(rows)
			},
			result: []domain.Withdrawal{sampleWithdrawal(1, now), sampleWithdrawal(2, now)},
		},
		{
			name:   "No withdrawals found",
			filter: domain.WithdrawalFilter{Status: domain.WithdrawalProcessing},
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM withdrawals WHERE status = $1")).
					WithArgs(domain.WithdrawalProcessing).
					WillReturnRows(pgxmock.NewRows(withdrawalCols))
			},
			result: nil,
		},
		{
			name:   "Database error",
			filter: domain.WithdrawalFilter{},
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM withdrawals ORDER BY created_at DESC")).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
		{
			name:   "Error scanning row",
			filter: domain.WithdrawalFilter{FinancierID: &financier},
			mockSetup: func() {
				rows := pgxmock.NewRows(withdrawalCols).
					AddRow("invalid_data", 2, "250", domain.WithdrawalUPI, domain.WithdrawalPending, "", "", "", "", "", "", "", nil, nil, now)
				mock.ExpectQuery(regexp.QuoteMeta("FROM withdrawals WHERE financier_id = $1")).
					WithArgs(2).
					WillReturnRows(rows)
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.GetWithdrawals(ctx, tt.filter)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, result)
			}
		})
	}
}

func TestRepository_UpdateWithdrawal(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	staff := 1
	wd := sampleWithdrawal(5, now)
	wd.Status = domain.WithdrawalProcessing
	wd.ProcessedBy = &staff
	wd.ProcessedAt = &now

	mock.ExpectExec(regexp.QuoteMeta("UPDATE withdrawals")).
		WithArgs(domain.WithdrawalProcessing, "", "", &staff, &now, 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.UpdateWithdrawal(context.Background(), &wd))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE withdrawals")).
		WithArgs(domain.WithdrawalProcessing, "", "", &staff, &now, 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.UpdateWithdrawal(context.Background(), &wd), domain.ErrWithdrawalNotFound)
}

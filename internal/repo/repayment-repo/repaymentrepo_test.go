package repaymentrepo

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

var repaymentCols = []string{"id", "loan_id", "amount_paid", "payment_date", "status", "payment_method", "transaction_id", "gateway",
	"gateway_transaction_id", "gateway_response", "upi_id", "bank_name", "account_number", "ifsc_code", "notes", "processed_by", "processed_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func repaymentRow(rows *pgxmock.Rows, rp domain.Repayment) *pgxmock.Rows {
	return rows.AddRow(rp.ID, rp.LoanID, rp.AmountPaid, rp.PaymentDate, rp.Status, rp.PaymentMethod, rp.TransactionID,
		rp.Gateway, rp.GatewayTransactionID, rp.GatewayResponse, rp.UPIID, rp.BankName, rp.AccountNumber, rp.IFSCCode,
		rp.Notes, rp.ProcessedBy, rp.ProcessedAt)
}

func sampleRepayment(id int, at time.Time) domain.Repayment {
	return domain.Repayment{
		ID:            id,
		LoanID:        1,
		AmountPaid:    decimal.RequireFromString("150.00"),
		PaymentDate:   at,
		Status:        domain.RepaymentPaid,
		PaymentMethod: domain.MethodUPI,
		UPIID:         "as***@okbank",
		ProcessedBy:   (*int)(nil),
		ProcessedAt:   (*time.Time)(nil),
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Repayment created",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO repayments")).
					WithArgs(1, pgxmock.AnyArg(), now, domain.RepaymentPaid, domain.MethodUPI, "", "", "", []byte(nil),
						"as***@okbank", "", "", "", "", (*int)(nil), (*time.Time)(nil)).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(10))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO repayments")).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			rp := sampleRepayment(0, now)
			result, err := repo.Create(context.Background(), &rp)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 10, result.ID)
		})
	}
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	rp := sampleRepayment(3, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM repayments WHERE id = $1")).
		WithArgs(3).
		WillReturnRows(repaymentRow(pgxmock.NewRows(repaymentCols), rp))

	result, err := repo.FindByID(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, &rp, result)

	mock.ExpectQuery(regexp.QuoteMeta("FROM repayments WHERE id = $1 FOR UPDATE")).
		WithArgs(4).
		WillReturnError(pgx.ErrNoRows)

	result, err = repo.FindByIDForUpdate(context.Background(), 4)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestRepository_ListByLoan(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		count     int
	}{
		{
			name: "Repayments found",
			mockSetup: func() {
				rows := pgxmock.NewRows(repaymentCols)
				repaymentRow(rows, sampleRepayment(1, now))
				repaymentRow(rows, sampleRepayment(2, now))
				mock.ExpectQuery(regexp.QuoteMeta("FROM repayments WHERE loan_id = $1 ORDER BY payment_date DESC")).
					WithArgs(1).
					WillReturnRows(rows)
			},
			count: 2,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM repayments WHERE loan_id = $1")).
					WithArgs(1).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.ListByLoan(context.Background(), 1)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, result, tt.count)
		})
	}
}

func TestRepository_SumPaid(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE loan_id = $1 AND status = 'Paid'")).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(decimal.RequireFromString("900.00")))

	sum, err := repo.SumPaid(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "900.00", sum.StringFixed(2))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE loan_id = $1 AND status = 'Paid'")).
		WithArgs(2).
		WillReturnError(errors.New("database error"))

	_, err = repo.SumPaid(context.Background(), 2)
	assert.Error(t, err)
}

func TestRepository_Update(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	staff := 99
	rp := sampleRepayment(3, now)
	rp.Status = domain.RepaymentFailed
	rp.ProcessedBy = &staff
	rp.ProcessedAt = &now

	mock.ExpectExec(regexp.QuoteMeta("UPDATE repayments")).
		WithArgs(domain.RepaymentFailed, "", []byte(nil), "", &staff, &now, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.Update(context.Background(), &rp))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE repayments")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.Update(context.Background(), &rp), domain.ErrRepaymentNotFound)
}

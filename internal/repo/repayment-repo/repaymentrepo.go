package repaymentrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const repaymentColumns = "id, loan_id, amount_paid, payment_date, status, payment_method, transaction_id, gateway, gateway_transaction_id, gateway_response, upi_id, bank_name, account_number, ifsc_code, notes, processed_by, processed_at"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanRepayment(row pgx.Row) (*domain.Repayment, error) {
	var rp domain.Repayment
	err := row.Scan(
		&rp.ID, &rp.LoanID, &rp.AmountPaid, &rp.PaymentDate, &rp.Status, &rp.PaymentMethod,
		&rp.TransactionID, &rp.Gateway, &rp.GatewayTransactionID, &rp.GatewayResponse,
		&rp.UPIID, &rp.BankName, &rp.AccountNumber, &rp.IFSCCode, &rp.Notes,
		&rp.ProcessedBy, &rp.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rp, nil
}

func (r *Repository) Create(ctx context.Context, rp *domain.Repayment) (*domain.Repayment, error) {
	query := `
		INSERT INTO repayments (loan_id, amount_paid, payment_date, status, payment_method, transaction_id, gateway,
			gateway_transaction_id, gateway_response, upi_id, bank_name, account_number, ifsc_code, notes, processed_by, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		rp.LoanID, rp.AmountPaid, rp.PaymentDate, rp.Status, rp.PaymentMethod, rp.TransactionID, rp.Gateway,
		rp.GatewayTransactionID, rp.GatewayResponse, rp.UPIID, rp.BankName, rp.AccountNumber, rp.IFSCCode,
		rp.Notes, rp.ProcessedBy, rp.ProcessedAt,
	).Scan(&rp.ID)
	if err != nil {
		zap.L().Error("can't save repayment", zap.Error(err))
		return nil, err
	}
	return rp, nil
}

func (r *Repository) findOne(ctx context.Context, query string, id int) (*domain.Repayment, error) {
	rp, err := scanRepayment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find repayment", zap.Error(err))
		return nil, err
	}
	return rp, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Repayment, error) {
	return r.findOne(ctx, "SELECT "+repaymentColumns+" FROM repayments WHERE id = $1", id)
}

func (r *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.Repayment, error) {
	return r.findOne(ctx, "SELECT "+repaymentColumns+" FROM repayments WHERE id = $1 FOR UPDATE", id)
}

func (r *Repository) ListByLoan(ctx context.Context, loanID int) ([]domain.Repayment, error) {
	rows, err := r.db.Query(ctx, "SELECT "+repaymentColumns+" FROM repayments WHERE loan_id = $1 ORDER BY payment_date DESC", loanID)
	if err != nil {
		zap.L().Error("can't get repayments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var repayments []domain.Repayment
	for rows.Next() {
		rp, err := scanRepayment(rows)
		if err != nil {
			zap.L().Error("can't scan repayment row", zap.Error(err))
			return nil, err
		}
		repayments = append(repayments, *rp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return repayments, nil
}

// SumPaid totals the Paid repayments of a loan.
func (r *Repository) SumPaid(ctx context.Context, loanID int) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount_paid), 0)
		FROM repayments
		WHERE loan_id = $1 AND status = 'Paid'
	`
	var sum decimal.Decimal
	if err := r.db.QueryRow(ctx, query, loanID).Scan(&sum); err != nil {
		zap.L().Error("can't sum repayments", zap.Error(err))
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *Repository) Update(ctx context.Context, rp *domain.Repayment) error {
	query := `
		UPDATE repayments
		SET status = $1, gateway_transaction_id = $2, gateway_response = $3, notes = $4, processed_by = $5, processed_at = $6
		WHERE id = $7
	`
	tag, err := r.db.Exec(ctx, query,
		rp.Status, rp.GatewayTransactionID, rp.GatewayResponse, rp.Notes, rp.ProcessedBy, rp.ProcessedAt, rp.ID,
	)
	if err != nil {
		zap.L().Error("can't update repayment", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRepaymentNotFound
	}
	return nil
}

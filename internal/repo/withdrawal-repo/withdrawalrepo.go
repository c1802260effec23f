package withdrawalrepo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const withdrawalColumns = "id, financier_id, amount, method, status, bank_name, account_holder_name, account_number, ifsc_code, upi_id, transaction_id, notes, processed_by, processed_at, created_at"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var wd domain.Withdrawal
	err := row.Scan(
		&wd.ID, &wd.FinancierID, &wd.Amount, &wd.Method, &wd.Status, &wd.BankName, &wd.AccountHolderName,
		&wd.AccountNumber, &wd.IFSCCode, &wd.UPIID, &wd.TransactionID, &wd.Notes,
		&wd.ProcessedBy, &wd.ProcessedAt, &wd.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wd, nil
}

func (r *Repository) CreateWithdrawal(ctx context.Context, wd *domain.Withdrawal) (*domain.Withdrawal, error) {
	query := `
		INSERT INTO withdrawals (financier_id, amount, method, status, bank_name, account_holder_name, account_number, ifsc_code, upi_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		wd.FinancierID, wd.Amount, wd.Method, wd.Status, wd.BankName, wd.AccountHolderName,
		wd.AccountNumber, wd.IFSCCode, wd.UPIID, wd.Notes, wd.CreatedAt,
	).Scan(&wd.ID)
	if err != nil {
		zap.L().Error("can't save withdrawal", zap.Error(err))
		return nil, err
	}
	return wd, nil
}

func (r *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.Withdrawal, error) {
	wd, err := scanWithdrawal(r.db.QueryRow(ctx, "SELECT "+withdrawalColumns+" FROM withdrawals WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find withdrawal", zap.Error(err))
		return nil, err
	}
	return wd, nil
}

func (r *Repository) GetWithdrawals(ctx context.Context, filter domain.WithdrawalFilter) ([]domain.Withdrawal, error) {
	var (
		conds []string
		args  []any
	)
	if filter.FinancierID != nil {
		args = append(args, *filter.FinancierID)
		conds = append(conds, "financier_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	query := "SELECT " + withdrawalColumns + " FROM withdrawals"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to fetch withdrawals", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var withdrawals []domain.Withdrawal
	for rows.Next() {
		wd, err := scanWithdrawal(rows)
		if err != nil {
			zap.L().Error("failed to scan withdrawal row", zap.Error(err))
			return nil, err
		}
		withdrawals = append(withdrawals, *wd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return withdrawals, nil
}

func (r *Repository) UpdateWithdrawal(ctx context.Context, wd *domain.Withdrawal) error {
	query := `
		UPDATE withdrawals
		SET status = $1, transaction_id = $2, notes = $3, processed_by = $4, processed_at = $5
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query, wd.Status, wd.TransactionID, wd.Notes, wd.ProcessedBy, wd.ProcessedAt, wd.ID)
	if err != nil {
		zap.L().Error("can't update withdrawal", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWithdrawalNotFound
	}
	return nil
}

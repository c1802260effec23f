package investmentrepo

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

const investmentColumns = "id, financier_id, loan_id, investment_amount, expected_return_rate, method, status, investment_date, maturity_date, transaction_id, notes, processed_by, processed_at"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanInvestment(row pgx.Row) (*domain.Investment, error) {
	var inv domain.Investment
	err := row.Scan(
		&inv.ID, &inv.FinancierID, &inv.LoanID, &inv.InvestmentAmount, &inv.ExpectedReturnRate, &inv.Method,
		&inv.Status, &inv.InvestmentDate, &inv.MaturityDate, &inv.TransactionID, &inv.Notes,
		&inv.ProcessedBy, &inv.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create fails with ErrInvestmentExists when the financier already invested in the loan.
func (r *Repository) Create(ctx context.Context, inv *domain.Investment) (*domain.Investment, error) {
	query := `
		INSERT INTO investments (financier_id, loan_id, investment_amount, expected_return_rate, method, status, investment_date, maturity_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		inv.FinancierID, inv.LoanID, inv.InvestmentAmount, inv.ExpectedReturnRate, inv.Method,
		inv.Status, inv.InvestmentDate, inv.MaturityDate, inv.Notes,
	).Scan(&inv.ID)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, domain.ErrInvestmentExists
		}
		zap.L().Error("can't save investment", zap.Error(err))
		return nil, err
	}
	return inv, nil
}

func (r *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.Investment, error) {
	inv, err := scanInvestment(r.db.QueryRow(ctx, "SELECT "+investmentColumns+" FROM investments WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find investment", zap.Error(err))
		return nil, err
	}
	return inv, nil
}

func (r *Repository) List(ctx context.Context, filter domain.InvestmentFilter) ([]domain.Investment, error) {
	var (
		conds []string
		args  []any
	)
	if filter.FinancierID != nil {
		args = append(args, *filter.FinancierID)
		conds = append(conds, "financier_id = $"+strconv.Itoa(len(args)))
	}
	if filter.LoanID != nil {
		args = append(args, *filter.LoanID)
		conds = append(conds, "loan_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	query := "SELECT " + investmentColumns + " FROM investments"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY investment_date DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get investments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var investments []domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			zap.L().Error("can't scan investment row", zap.Error(err))
			return nil, err
		}
		investments = append(investments, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return investments, nil
}

func (r *Repository) Update(ctx context.Context, inv *domain.Investment) error {
	query := `
		UPDATE investments
		SET status = $1, transaction_id = $2, notes = $3, processed_by = $4, processed_at = $5
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query, inv.Status, inv.TransactionID, inv.Notes, inv.ProcessedBy, inv.ProcessedAt, inv.ID)
	if err != nil {
		zap.L().Error("can't update investment", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvestmentNotFound
	}
	return nil
}

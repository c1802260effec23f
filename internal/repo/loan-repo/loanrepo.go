package loanrepo

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const loanColumns = "id, borrower_id, amount, reason, status, admin_notes, repayment_due_date, interest_rate, created_at, updated_at"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanLoan(row pgx.Row) (*domain.LoanApplication, error) {
	var loan domain.LoanApplication
	err := row.Scan(
		&loan.ID, &loan.BorrowerID, &loan.Amount, &loan.Reason, &loan.Status, &loan.AdminNotes,
		&loan.RepaymentDueDate, &loan.InterestRate, &loan.CreatedAt, &loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (*domain.LoanApplication, error) {
	loan, err := scanLoan(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find loan", zap.Error(err))
		return nil, err
	}
	return loan, nil
}

func (r *Repository) Create(ctx context.Context, loan *domain.LoanApplication) (*domain.LoanApplication, error) {
	query := `
		INSERT INTO loan_applications (borrower_id, amount, reason, status, admin_notes, repayment_due_date, interest_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		loan.BorrowerID, loan.Amount, loan.Reason, loan.Status, loan.AdminNotes,
		loan.RepaymentDueDate, loan.InterestRate, loan.CreatedAt,
	).Scan(&loan.ID, &loan.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save loan", zap.Error(err))
		return nil, err
	}
	return loan, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.LoanApplication, error) {
	return r.findOne(ctx, "SELECT "+loanColumns+" FROM loan_applications WHERE id = $1", id)
}

// FindByIDForUpdate locks the loan row, serialising every repayment write
// against it until the surrounding transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.LoanApplication, error) {
	return r.findOne(ctx, "SELECT "+loanColumns+" FROM loan_applications WHERE id = $1 FOR UPDATE", id)
}

// FindApprovedByBorrower returns the borrower's most recent approved loan.
func (r *Repository) FindApprovedByBorrower(ctx context.Context, borrowerID int) (*domain.LoanApplication, error) {
	return r.findOne(ctx,
		"SELECT "+loanColumns+" FROM loan_applications WHERE borrower_id = $1 AND status = 'Approved' ORDER BY created_at DESC LIMIT 1",
		borrowerID)
}

func (r *Repository) HasActiveLoan(ctx context.Context, borrowerID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM loan_applications
			WHERE borrower_id = $1 AND status IN ('Pending', 'Approved')
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, borrowerID).Scan(&exists); err != nil {
		zap.L().Error("can't check active loan", zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *Repository) List(ctx context.Context, filter domain.LoanFilter) ([]domain.LoanApplication, error) {
	var (
		conds []string
		args  []any
	)
	if filter.BorrowerID != nil {
		args = append(args, *filter.BorrowerID)
		conds = append(conds, "borrower_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}

	query := "SELECT " + loanColumns + " FROM loan_applications"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return r.list(ctx, query, args...)
}

// ListOverdue returns approved loans whose due date is before today.
func (r *Repository) ListOverdue(ctx context.Context, today time.Time) ([]domain.LoanApplication, error) {
	query := "SELECT " + loanColumns + " FROM loan_applications WHERE status = 'Approved' AND repayment_due_date < $1 ORDER BY repayment_due_date"
	return r.list(ctx, query, domain.DateOf(today))
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.LoanApplication, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get loans", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var loans []domain.LoanApplication
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			zap.L().Error("can't scan loan row", zap.Error(err))
			return nil, err
		}
		loans = append(loans, *loan)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate loan rows", zap.Error(err))
		return nil, err
	}
	return loans, nil
}

func (r *Repository) Update(ctx context.Context, loan *domain.LoanApplication) error {
	query := `
		UPDATE loan_applications
		SET amount = $1, status = $2, admin_notes = $3, repayment_due_date = $4, interest_rate = $5, updated_at = $6
		WHERE id = $7
	`
	tag, err := r.db.Exec(ctx, query,
		loan.Amount, loan.Status, loan.AdminNotes, loan.RepaymentDueDate, loan.InterestRate, loan.UpdatedAt, loan.ID,
	)
	if err != nil {
		zap.L().Error("can't update loan", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// Statistics aggregates over all loans, or over one borrower's loans when
// borrowerID is set.
func (r *Repository) Statistics(ctx context.Context, borrowerID *int, today time.Time) (*domain.LoanStatistics, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Pending'),
			COUNT(*) FILTER (WHERE status = 'Approved'),
			COUNT(*) FILTER (WHERE status = 'Rejected'),
			COUNT(*) FILTER (WHERE status = 'Approved' AND repayment_due_date < $1),
			COALESCE(SUM(amount) FILTER (WHERE status = 'Approved'), 0)::bigint,
			COALESCE(SUM(amount) FILTER (WHERE status = 'Pending'), 0)::bigint
		FROM loan_applications
		WHERE ($2::int IS NULL OR borrower_id = $2)
	`
	var stats domain.LoanStatistics
	err := r.db.QueryRow(ctx, query, domain.DateOf(today), borrowerID).Scan(
		&stats.Total, &stats.Pending, &stats.Approved, &stats.Rejected, &stats.Overdue,
		&stats.ApprovedAmount, &stats.PendingAmount,
	)
	if err != nil {
		zap.L().Error("can't get loan statistics", zap.Error(err))
		return nil, err
	}
	return &stats, nil
}

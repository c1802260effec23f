package userrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const userColumns = "id, email, password_hash, first_name, last_name, student_id, university, gpa, user_type, is_staff, is_active, created_at"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.StudentID, &user.University, &user.GPA, &user.UserType,
		&user.IsStaff, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) findOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return repo.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (repo *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	return repo.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

// FindByIDForUpdate locks the user row until the surrounding transaction ends.
func (repo *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.User, error) {
	return repo.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE", id)
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, student_id, university, gpa, user_type, is_staff, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := repo.db.QueryRow(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.StudentID,
		user.University, user.GPA, user.UserType, user.IsStaff, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) CreateFinancier(ctx context.Context, financier *domain.Financier) (*domain.Financier, error) {
	query := `
		INSERT INTO financiers (user_id, financier_code, company_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := repo.db.QueryRow(ctx, query, financier.UserID, financier.FinancierCode, financier.CompanyName).
		Scan(&financier.ID, &financier.CreatedAt)
	if err != nil {
		zap.L().Error("can't save financier", zap.Error(err))
		return nil, err
	}
	return financier, nil
}

func (repo *Repository) findFinancier(ctx context.Context, query string, arg int) (*domain.Financier, error) {
	var f domain.Financier
	err := repo.db.QueryRow(ctx, query, arg).Scan(&f.ID, &f.UserID, &f.FinancierCode, &f.CompanyName, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find financier", zap.Error(err))
		return nil, err
	}
	return &f, nil
}

func (repo *Repository) FindFinancierByUserID(ctx context.Context, userID int) (*domain.Financier, error) {
	return repo.findFinancier(ctx,
		"SELECT id, user_id, financier_code, company_name, created_at FROM financiers WHERE user_id = $1", userID)
}

func (repo *Repository) FindFinancierByID(ctx context.Context, id int) (*domain.Financier, error) {
	return repo.findFinancier(ctx,
		"SELECT id, user_id, financier_code, company_name, created_at FROM financiers WHERE id = $1", id)
}

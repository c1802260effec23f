package pg

import (
	"context"
	"fmt"

	"github.com/GlebRadaev/loanportal/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// gooseLogger sends goose output to the global zap logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	zap.S().Infof(format, v...)
}

func (gooseLogger) Fatalf(format string, v ...any) {
	zap.S().Fatalf(format, v...)
}

// RunMigrations applies the embedded goose migrations to the database behind pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	zap.L().Info("migrations applied", zap.Int64("version", version))
	return nil
}

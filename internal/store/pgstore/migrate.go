package pgstore

import (
	"context"
	"fmt"

	migrations "bookseed/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate runs a goose command ("up", "down" or "status") with the embedded
// migrations against pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, command string) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, sqlDB, migrations.MigrationsDir)
	case "down":
		err = goose.DownContext(ctx, sqlDB, migrations.MigrationsDir)
	case "status":
		err = goose.StatusContext(ctx, sqlDB, migrations.MigrationsDir)
	default:
		return fmt.Errorf("unknown migration command %q, use up, down or status", command)
	}
	if err != nil {
		return classify(err, "migrate "+command)
	}
	return nil
}

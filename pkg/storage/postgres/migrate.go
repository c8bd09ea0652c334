package postgres

import (
	"fmt"
	"io/fs"

	"meetpay/pkg/logger"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies embedded goose migrations before the service starts serving.
func (p *Postgres) Migrate(migrations fs.FS, dir string, log logger.Logger) error {
	const op = "storage.postgres.Migrate"

	goose.SetLogger(&gooseLogger{log: log})
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: set dialect: %w", op, err)
	}

	db := stdlib.OpenDBFromPool(p.Pool)
	defer db.Close()

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("%s: apply migrations: %w", op, err)
	}

	log.Infow("database migrations applied")
	return nil
}

type gooseLogger struct {
	log logger.Logger
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.log.Info(fmt.Sprintf(format, v...))
}

func (g *gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(fmt.Sprintf(format, v...))
}

package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/mmynk/formbuilder/internal/storage/sqlstore/migrations"
)

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

func (d Dialect) gooseDialect() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

func (d Dialect) migrationsDir() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// gooseLogger routes goose output to the default slog logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	slog.Info(gooseMessage(format, v...), "component", "migrations")
}

func (gooseLogger) Fatalf(format string, v ...any) {
	slog.Error(gooseMessage(format, v...), "component", "migrations")
	os.Exit(1)
}

func gooseMessage(format string, v ...any) string {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	return strings.TrimPrefix(msg, "goose: ")
}

func (s *Store) withGoose(fn func(dir string) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(gooseLogger{})
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(s.dialect.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return fn(s.dialect.migrationsDir())
}

// Migrate applies all pending migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return s.withGoose(func(dir string) error {
		return goose.UpContext(ctx, s.db, dir)
	})
}

// MigrateDown rolls back the most recent migration.
func (s *Store) MigrateDown(ctx context.Context) error {
	return s.withGoose(func(dir string) error {
		return goose.DownContext(ctx, s.db, dir)
	})
}

// MigrationStatus logs the state of every migration through goose's logger.
func (s *Store) MigrationStatus(ctx context.Context) error {
	return s.withGoose(func(dir string) error {
		return goose.StatusContext(ctx, s.db, dir)
	})
}

// Version returns the current schema version.
func (s *Store) Version(ctx context.Context) (int64, error) {
	var v int64
	err := s.withGoose(func(string) error {
		var err error
		v, err = goose.GetDBVersionContext(ctx, s.db)
		return err
	})
	return v, err
}

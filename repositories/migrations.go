package repositories

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

// embed migrations sql folder
//
//go:embed migrations/*.sql
var embedMigrations embed.FS

type Migrater struct {
	connectionString string
	logger           *slog.Logger
}

func NewMigrater(connectionString string, logger *slog.Logger) Migrater {
	return Migrater{
		connectionString: connectionString,
		logger:           logger,
	}
}

// Run applies the application schema with goose, then the river job tables.
func (m Migrater) Run(ctx context.Context) error {
	db, err := sql.Open("pgx", m.connectionString)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}

	m.logger.InfoContext(ctx, "Migrations starting to setup DB")
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("unable to run migrations: %w", err)
	}

	return m.runRiverMigrations(ctx)
}

func (m Migrater) runRiverMigrations(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, m.connectionString)
	if err != nil {
		return fmt.Errorf("unable to create pool for river migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("unable to create river migrator: %w", err)
	}

	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return fmt.Errorf("unable to run river migrations: %w", err)
	}
	for _, version := range res.Versions {
		m.logger.InfoContext(ctx, "Applied river migration", "version", version.Version)
	}
	return nil
}

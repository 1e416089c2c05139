package sqladapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

type migration struct {
	to    int
	stmts []string
}

var migrations = []migration{
	{to: 1, stmts: []string{
		`CREATE TABLE IF NOT EXISTS polls (
			team TEXT NOT NULL,
			channel TEXT NOT NULL,
			ts TEXT NOT NULL,
			question TEXT NOT NULL,
			options TEXT NOT NULL,
			anonymous BOOLEAN NOT NULL DEFAULT FALSE,
			limited BOOLEAN NOT NULL DEFAULT FALSE,
			vote_limit INTEGER NOT NULL DEFAULT 0,
			hidden BOOLEAN NOT NULL DEFAULT FALSE,
			creator TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL,
			PRIMARY KEY (team, channel, ts)
		)`,
		`CREATE TABLE IF NOT EXISTS votes (
			team TEXT NOT NULL,
			channel TEXT NOT NULL,
			ts TEXT NOT NULL,
			votes TEXT NOT NULL,
			PRIMARY KEY (team, channel, ts)
		)`,
		`CREATE TABLE IF NOT EXISTS flags (
			team TEXT NOT NULL,
			channel TEXT NOT NULL,
			ts TEXT NOT NULL,
			name TEXT NOT NULL,
			value BOOLEAN NOT NULL,
			PRIMARY KEY (team, channel, ts, name)
		)`,
	}},
	{to: 2, stmts: []string{
		`CREATE INDEX IF NOT EXISTS idx_polls_creator ON polls(creator)`,
	}},
}

// LatestVersion is the schema version Migrate brings the database to.
func LatestVersion() int {
	return migrations[len(migrations)-1].to
}

// Version reads the schema version from the properties table, recording 0 when it is missing.
func Version(ctx context.Context, db *sql.DB) (int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS properties (
		type TEXT PRIMARY KEY,
		version INTEGER NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("could not create properties: %w", err)
	}

	var version int
	err := db.QueryRowContext(ctx, "SELECT version FROM properties WHERE type = $1", "db").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err = db.ExecContext(ctx, "INSERT INTO properties (type, version) VALUES ($1, $2)", "db", 0); err != nil {
			return 0, fmt.Errorf("could not init db version: %w", err)
		}
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not read db version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration newer than the stored version and returns how many ran.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	current, err := Version(ctx, db)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.to <= current {
			continue
		}
		if err = apply(ctx, db, m); err != nil {
			return applied, fmt.Errorf("migration %d: %w", m.to, err)
		}
		applied++
		log.Info().Int("version", m.to).Msg("Database migrated")
	}
	return applied, nil
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, "UPDATE properties SET version = $1 WHERE type = $2", m.to, "db"); err != nil {
		return err
	}
	return tx.Commit()
}

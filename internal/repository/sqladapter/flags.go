package sqladapter

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/usecase"
)

type FlagRepository struct {
	db *sql.DB
}

func NewFlagRepository(db *sql.DB) *FlagRepository {
	return &FlagRepository{db: db}
}

func (r *FlagRepository) Get(ctx context.Context, id domain.PollID, flag domain.Flag) (bool, error) {
	var value bool
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM flags WHERE team = $1 AND channel = $2 AND ts = $3 AND name = $4",
		id.Team, id.Channel, id.TS, string(flag),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, usecase.ErrFlagNotFound
	}
	return value, err
}

func (r *FlagRepository) Set(ctx context.Context, id domain.PollID, flag domain.Flag, value bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO flags (team, channel, ts, name, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team, channel, ts, name) DO UPDATE SET value = excluded.value
	`, id.Team, id.Channel, id.TS, string(flag), value)
	return err
}

func (r *FlagRepository) DeleteByPoll(ctx context.Context, id domain.PollID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM flags WHERE team = $1 AND channel = $2 AND ts = $3",
		id.Team, id.Channel, id.TS,
	)
	return err
}

package sqladapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/usecase"
	"github.com/goccy/go-json"
)

type VoteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) Get(ctx context.Context, id domain.PollID) (domain.VoteTable, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		"SELECT votes FROM votes WHERE team = $1 AND channel = $2 AND ts = $3",
		id.Team, id.Channel, id.TS,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrVotesNotFound
	}
	if err != nil {
		return nil, err
	}

	votes := make(domain.VoteTable)
	if err = json.Unmarshal([]byte(raw), &votes); err != nil {
		return nil, fmt.Errorf("could not decode votes: %w", err)
	}
	return votes, nil
}

// Upsert replaces the whole table. Callers hold the poll lock.
func (r *VoteRepository) Upsert(ctx context.Context, id domain.PollID, votes domain.VoteTable) error {
	raw, err := json.Marshal(votes)
	if err != nil {
		return fmt.Errorf("could not encode votes: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO votes (team, channel, ts, votes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (team, channel, ts) DO UPDATE SET votes = excluded.votes
	`, id.Team, id.Channel, id.TS, string(raw))
	return err
}

func (r *VoteRepository) DeleteByPoll(ctx context.Context, id domain.PollID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM votes WHERE team = $1 AND channel = $2 AND ts = $3",
		id.Team, id.Channel, id.TS,
	)
	return err
}

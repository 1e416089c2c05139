package sqladapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/usecase"
	"github.com/goccy/go-json"
)

type PollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) *PollRepository {
	return &PollRepository{db: db}
}

type optionRow struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

func (r *PollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	rows := make([]optionRow, len(poll.Options))
	for i, option := range poll.Options {
		rows[i] = optionRow{ID: option.ID, Label: option.Label}
	}
	options, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("could not encode options: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO polls (team, channel, ts, question, options, anonymous, limited, vote_limit, hidden, creator, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (team, channel, ts) DO UPDATE SET
			question = excluded.question,
			options = excluded.options,
			anonymous = excluded.anonymous,
			limited = excluded.limited,
			vote_limit = excluded.vote_limit,
			hidden = excluded.hidden,
			creator = excluded.creator,
			created_at = excluded.created_at
	`,
		poll.ID.Team, poll.ID.Channel, poll.ID.TS,
		poll.Question, string(options),
		poll.Settings.Anonymous, poll.Settings.Limited, poll.Settings.Limit, poll.Settings.Hidden,
		poll.Creator, poll.CreatedAt.UnixMilli(),
	)
	return err
}

func (r *PollRepository) GetByID(ctx context.Context, id domain.PollID) (*domain.Poll, error) {
	var (
		poll      = domain.Poll{ID: id}
		options   string
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT question, options, anonymous, limited, vote_limit, hidden, creator, created_at
		FROM polls
		WHERE team = $1 AND channel = $2 AND ts = $3
	`, id.Team, id.Channel, id.TS).Scan(
		&poll.Question, &options,
		&poll.Settings.Anonymous, &poll.Settings.Limited, &poll.Settings.Limit, &poll.Settings.Hidden,
		&poll.Creator, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrPollNotFound
	}
	if err != nil {
		return nil, err
	}

	var rows []optionRow
	if err = json.Unmarshal([]byte(options), &rows); err != nil {
		return nil, fmt.Errorf("could not decode options: %w", err)
	}
	poll.Options = make([]domain.PollOption, len(rows))
	for i, row := range rows {
		poll.Options[i] = domain.PollOption{ID: row.ID, Label: row.Label}
	}
	poll.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &poll, nil
}

func (r *PollRepository) DeleteByID(ctx context.Context, id domain.PollID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM polls WHERE team = $1 AND channel = $2 AND ts = $3",
		id.Team, id.Channel, id.TS,
	)
	return err
}

package ttadapter

import (
	"context"
	"fmt"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/usecase"
	"github.com/tarantool/go-tarantool/v2"
)

const (
	pollSpace    = "polls"
	primaryIndex = "primary"
)

type PollRepository struct {
	conn tarantool.Doer
}

func NewPollRepository(conn tarantool.Doer) *PollRepository {
	return &PollRepository{
		conn: conn,
	}
}

func (r *PollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	if _, err := r.conn.Do(
		tarantool.NewReplaceRequest(pollSpace).
			Context(ctx).
			Tuple(NewPollModel(poll)),
	).Get(); err != nil {
		return fmt.Errorf("could not replace poll in tarantool: %w", err)
	}
	return nil
}

func (r *PollRepository) GetByID(ctx context.Context, id domain.PollID) (*domain.Poll, error) {
	var res []PollModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(pollSpace).
			Context(ctx).
			Index(primaryIndex).
			Limit(1).
			Iterator(tarantool.IterEq).
			Key(key(id)),
	).GetTyped(&res); err != nil {
		return nil, fmt.Errorf("could not select typed poll in tarantool: %w", err)
	}
	if len(res) == 0 {
		return nil, usecase.ErrPollNotFound
	}
	return res[0].ToPoll(), nil
}

func (r *PollRepository) DeleteByID(ctx context.Context, id domain.PollID) error {
	if _, err := r.conn.Do(
		tarantool.NewDeleteRequest(pollSpace).
			Context(ctx).
			Index(primaryIndex).
			Key(key(id)),
	).Get(); err != nil {
		return fmt.Errorf("could not delete poll in tarantool: %w", err)
	}
	return nil
}

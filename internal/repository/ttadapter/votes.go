package ttadapter

import (
	"context"
	"fmt"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/usecase"
	"github.com/tarantool/go-tarantool/v2"
)

const (
	voteSpace = "votes"
)

type VoteRepository struct {
	conn tarantool.Doer
}

func NewVoteRepository(conn tarantool.Doer) *VoteRepository {
	return &VoteRepository{
		conn: conn,
	}
}

func (r *VoteRepository) Get(ctx context.Context, id domain.PollID) (domain.VoteTable, error) {
	var res []VoteModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(voteSpace).
			Context(ctx).
			Index(primaryIndex).
			Limit(1).
			Iterator(tarantool.IterEq).
			Key(key(id)),
	).GetTyped(&res); err != nil {
		return nil, fmt.Errorf("could not select typed votes in tarantool: %w", err)
	}
	if len(res) == 0 {
		return nil, usecase.ErrVotesNotFound
	}
	return res[0].Votes, nil
}

// Upsert replaces the whole table. Callers hold the poll lock.
func (r *VoteRepository) Upsert(ctx context.Context, id domain.PollID, votes domain.VoteTable) error {
	if _, err := r.conn.Do(
		tarantool.NewReplaceRequest(voteSpace).
			Context(ctx).
			Tuple(NewVoteModel(id, votes)),
	).Get(); err != nil {
		return fmt.Errorf("could not replace votes in tarantool: %w", err)
	}
	return nil
}

func (r *VoteRepository) DeleteByPoll(ctx context.Context, id domain.PollID) error {
	if _, err := r.conn.Do(
		tarantool.NewDeleteRequest(voteSpace).
			Context(ctx).
			Index(primaryIndex).
			Key(key(id)),
	).Get(); err != nil {
		return fmt.Errorf("could not delete votes in tarantool: %w", err)
	}
	return nil
}

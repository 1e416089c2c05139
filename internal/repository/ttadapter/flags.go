package ttadapter

import (
	"context"
	"fmt"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/usecase"
	"github.com/tarantool/go-tarantool/v2"
)

const (
	flagSpace = "flags"
)

type FlagRepository struct {
	conn tarantool.Doer
}

func NewFlagRepository(conn tarantool.Doer) *FlagRepository {
	return &FlagRepository{
		conn: conn,
	}
}

func flagKey(id domain.PollID, flag domain.Flag) []interface{} {
	return append(key(id), string(flag))
}

func (r *FlagRepository) Get(ctx context.Context, id domain.PollID, flag domain.Flag) (bool, error) {
	var res []FlagModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(flagSpace).
			Context(ctx).
			Index(primaryIndex).
			Limit(1).
			Iterator(tarantool.IterEq).
			Key(flagKey(id, flag)),
	).GetTyped(&res); err != nil {
		return false, fmt.Errorf("could not select typed flag in tarantool: %w", err)
	}
	if len(res) == 0 {
		return false, usecase.ErrFlagNotFound
	}
	return res[0].Value, nil
}

func (r *FlagRepository) Set(ctx context.Context, id domain.PollID, flag domain.Flag, value bool) error {
	if _, err := r.conn.Do(
		tarantool.NewReplaceRequest(flagSpace).
			Context(ctx).
			Tuple(NewFlagModel(id, flag, value)),
	).Get(); err != nil {
		return fmt.Errorf("could not replace flag in tarantool: %w", err)
	}
	return nil
}

// DeleteByPoll deletes every known flag one by one, tarantool does not delete by a partial key.
func (r *FlagRepository) DeleteByPoll(ctx context.Context, id domain.PollID) error {
	for _, flag := range domain.Flags {
		if _, err := r.conn.Do(
			tarantool.NewDeleteRequest(flagSpace).
				Context(ctx).
				Index(primaryIndex).
				Key(flagKey(id, flag)),
		).Get(); err != nil {
			return fmt.Errorf("could not delete flag %s in tarantool: %w", flag, err)
		}
	}
	return nil
}

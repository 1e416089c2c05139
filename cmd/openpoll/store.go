package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Xausdorf/openpoll/internal/config"
	"github.com/Xausdorf/openpoll/internal/repository/memory"
	"github.com/Xausdorf/openpoll/internal/repository/sqladapter"
	"github.com/Xausdorf/openpoll/internal/repository/ttadapter"
	"github.com/Xausdorf/openpoll/internal/usecase"
	"github.com/rs/zerolog/log"
	"github.com/tarantool/go-tarantool/v2"
)

const (
	ttReconnectSeconds = 3
	ttMaxReconnects    = 5
)

type stores struct {
	polls usecase.PollRepository
	votes usecase.VoteRepository
	flags usecase.FlagRepository
	close func() error
}

func openStores(ctx context.Context, cfg config.Store) (*stores, error) {
	switch cfg.Driver {
	case config.StoreTarantool:
		conn, err := connectTarantool(ctx, cfg.Tarantool)
		if err != nil {
			return nil, fmt.Errorf("connection to tarantool refused: %w", err)
		}
		log.Info().Str("address", cfg.Tarantool.Address).Msg("Successfully connected to tarantool")
		return &stores{
			polls: ttadapter.NewPollRepository(conn),
			votes: ttadapter.NewVoteRepository(conn),
			flags: ttadapter.NewFlagRepository(conn),
			close: conn.Close,
		}, nil

	case config.StoreSQLite, config.StorePostgres:
		db, err := sqladapter.Open(cfg.Driver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if _, err = sqladapter.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("could not migrate database: %w", err)
		}
		log.Info().Str("driver", cfg.Driver).Msg("Database schema ready")
		return &stores{
			polls: sqladapter.NewPollRepository(db),
			votes: sqladapter.NewVoteRepository(db),
			flags: sqladapter.NewFlagRepository(db),
			close: db.Close,
		}, nil

	case config.StoreMemory:
		log.Warn().Msg("Poll state is kept in memory and will be lost on restart")
		return &stores{
			polls: memory.NewPollRepository(),
			votes: memory.NewVoteRepository(),
			flags: memory.NewFlagRepository(),
			close: func() error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
}

func connectTarantool(ctx context.Context, cfg config.Tarantool) (*tarantool.Connection, error) {
	dialer := tarantool.NetDialer{
		Address:  cfg.Address,
		User:     cfg.User,
		Password: cfg.Password,
	}
	opts := tarantool.Opts{
		Timeout:       time.Second,
		Reconnect:     ttReconnectSeconds * time.Second,
		MaxReconnects: ttMaxReconnects,
	}

	return tarantool.Connect(ctx, dialer, opts)
}

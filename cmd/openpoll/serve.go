package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Xausdorf/openpoll/internal/config"
	"github.com/Xausdorf/openpoll/internal/gateway/slackbot"
	"github.com/Xausdorf/openpoll/internal/lock"
	"github.com/Xausdorf/openpoll/internal/logger"
	"github.com/Xausdorf/openpoll/internal/usecase"
	"github.com/Xausdorf/openpoll/internal/view"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp/reuseport"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve Slack commands and poll interactions",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	logFile := logger.Configure(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("Could not open store")
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Error().Err(err).Msg("Could not close store")
		}
	}()

	messenger := slackbot.NewMessenger(slack.New(cfg.Slack.BotToken))
	if err = messenger.Check(ctx); err != nil {
		log.Fatal().Err(err).Msg("Could not log in to slack")
	}

	locks := lock.NewRegistry(lock.Options{
		Attempts:       cfg.Lock.Attempts,
		AttemptTimeout: cfg.Lock.AttemptTimeout,
	})
	go locks.RunJanitor(ctx, cfg.Lock.IdleTTL, func(removed int) {
		log.Debug().Int("removed", removed).Int("left", locks.Len()).Msg("Reclaimed idle poll locks")
	})

	polls := usecase.NewPoll(
		st.polls, st.votes, st.flags,
		messenger,
		locks,
		view.NewRenderer(view.Footer(cfg.HelpCommand)),
		usecase.Options{
			LimitBoundary: cfg.LimitBoundary,
			PurgeOnDelete: cfg.PurgeOnDelete,
			HelpCommand:   cfg.HelpCommand,
		},
	)

	secret := cfg.Slack.SigningSecret
	if cfg.Slack.SkipVerify {
		log.Warn().Msg("Slack request verification is disabled")
		secret = ""
	}
	handler := slackbot.NewHandler(polls)
	app := slackbot.NewFiber(slackbot.AppOptions{RateLimit: cfg.HTTP.RateLimit})
	handler.Register(app, secret)

	errc := make(chan error, 1)
	go func() {
		errc <- listen(app, cfg.HTTP)
	}()
	log.Info().
		Str("addr", cfg.HTTP.Addr).
		Str("store", cfg.Store.Driver).
		Stringer("limit_boundary", cfg.LimitBoundary).
		Msg("Openpoll listening")

	select {
	case err = <-errc:
		return fmt.Errorf("http server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	if err = app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("Could not stop http server")
	}
	handler.Wait()
	return nil
}

func listen(app *fiber.App, cfg config.HTTP) error {
	if !cfg.ReusePort {
		return app.Listen(cfg.Addr)
	}
	ln, err := reuseport.Listen("tcp4", cfg.Addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", cfg.Addr, err)
	}
	return app.Listener(ln)
}

// Package slackbot connects polls to Slack: slash commands and button clicks come in over HTTP,
// rendered polls go out through the Web API.
package slackbot

import (
	"context"
	"sync"
	"time"

	"github.com/Xausdorf/openpoll/internal/usecase"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	strconv2 "github.com/savsgio/gotils/strconv"
	"github.com/slack-go/slack"
)

const defaultActionTimeout = 30 * time.Second

type PollService interface {
	Handle(ctx context.Context, a usecase.Action) error
	HandleCommand(ctx context.Context, c usecase.Command) error
}

type AppOptions struct {
	// RateLimit - requests per minute per client ip, 0 disables the limiter.
	RateLimit int
}

func NewFiber(opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		Immutable:             true,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberzerolog.New(fiberzerolog.Config{
		Logger: &log.Logger,
	}))
	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: time.Minute,
		}))
	}
	return app
}

// Handler acknowledges Slack requests right away and processes them in the background.
type Handler struct {
	polls   PollService
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewHandler(polls PollService) *Handler {
	return &Handler{
		polls:   polls,
		timeout: defaultActionTimeout,
	}
}

// Register mounts the Slack endpoints. An empty signingSecret disables request verification.
func (h *Handler) Register(router fiber.Router, signingSecret string) {
	router.Get("/healthz", h.Health)

	api := router.Group("/slack")
	if signingSecret != "" {
		api.Use(Verify(signingSecret))
	}
	api.Post("/commands", h.Command)
	api.Post("/actions", h.Actions)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Command handles a slash command.
func (h *Handler) Command(c *fiber.Ctx) error {
	cmd := usecase.Command{
		TeamID:    c.FormValue("team_id"),
		ChannelID: c.FormValue("channel_id"),
		UserID:    c.FormValue("user_id"),
		Text:      c.FormValue("text"),
	}
	if cmd.ChannelID == "" || cmd.UserID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "channel_id and user_id are required")
	}

	h.run(func(ctx context.Context) {
		_ = h.polls.HandleCommand(ctx, cmd)
	})
	return c.SendStatus(fiber.StatusOK)
}

// Actions handles interactive payloads from poll messages.
func (h *Handler) Actions(c *fiber.Ctx) error {
	payload := c.FormValue("payload")
	if payload == "" {
		return fiber.NewError(fiber.StatusBadRequest, "payload is required")
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal(strconv2.S2B(payload), &callback); err != nil {
		log.Warn().Err(err).Msg("Could not decode interaction payload")
		return fiber.NewError(fiber.StatusBadRequest, "malformed payload")
	}
	if callback.Type != slack.InteractionTypeBlockActions {
		log.Debug().Str("type", string(callback.Type)).Msg("Ignoring interaction")
		return c.SendStatus(fiber.StatusOK)
	}

	actions, err := ParseActions(&callback)
	if err != nil {
		log.Warn().Err(err).Str("user", callback.User.ID).Msg("Could not read poll action")
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	for _, a := range actions {
		h.run(func(ctx context.Context) {
			_ = h.polls.Handle(ctx, a)
		})
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) run(fn func(ctx context.Context)) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until every accepted request has been processed.
func (h *Handler) Wait() {
	h.wg.Wait()
}

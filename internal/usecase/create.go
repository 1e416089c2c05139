package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xausdorf/openpoll/internal/command"
	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/view"
	"github.com/rs/zerolog/log"
)

// Command - a slash command invocation.
type Command struct {
	TeamID    string
	ChannelID string
	UserID    string
	Text      string
}

// HandleCommand answers help requests and creates polls, notifying the user on failure.
func (p *Poll) HandleCommand(ctx context.Context, c Command) error {
	if command.IsHelp(c.Text) {
		return p.messenger.PostEphemeral(ctx, c.ChannelID, c.UserID, view.Help(p.helpCommand()))
	}

	poll, err := p.CreatePoll(ctx, c)
	if err != nil {
		if errors.Is(err, ErrInvalidCommand) {
			log.Debug().Err(err).Str("user", c.UserID).Msg("Invalid poll command")
		} else {
			log.Error().Err(err).Str("user", c.UserID).Str("channel", c.ChannelID).Msg("Failed to create poll")
		}
		if nerr := p.messenger.PostEphemeral(ctx, c.ChannelID, c.UserID, p.Notice(err)); nerr != nil {
			log.Error().Err(nerr).Msg("Could not send notice")
		}
		return err
	}
	log.Info().Str("poll", poll.ID.String()).Str("user", c.UserID).Int("options", len(poll.Options)).Msg("Poll created")
	return nil
}

// CreatePoll posts a new poll and stores its definition, empty votes and flags.
func (p *Poll) CreatePoll(ctx context.Context, c Command) (*domain.Poll, error) {
	cmd, err := command.Parse(c.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	poll := domain.NewPoll(cmd.Question, cmd.Options, cmd.Settings, c.UserID)
	votes := domain.NewVoteTable(poll)
	state := domain.State{Hidden: poll.Settings.Hidden}

	ts, err := p.messenger.PostMessage(ctx, c.ChannelID, p.renderer.Render(poll, votes, state))
	if err != nil {
		return nil, fmt.Errorf("could not post poll: %w", err)
	}
	poll.ID = domain.PollID{Team: c.TeamID, Channel: c.ChannelID, TS: ts}

	h, err := p.acquire(ctx, poll.ID)
	if err == nil {
		defer h.Release()
		err = p.persistNew(ctx, poll, votes, state)
	}
	if err != nil {
		if derr := p.messenger.DeleteMessage(ctx, c.ChannelID, ts); derr != nil {
			log.Error().Err(derr).Str("poll", poll.ID.String()).Msg("Could not delete unsaved poll")
		}
		return nil, err
	}
	return poll, nil
}

// persistNew stores a freshly posted poll. Must be called under the poll lock.
// Votes stored by a click that won the lock before the creator are kept.
func (p *Poll) persistNew(ctx context.Context, poll *domain.Poll, votes domain.VoteTable, state domain.State) error {
	if err := p.pollRepo.Save(ctx, poll); err != nil {
		return storeErr("could not save poll", err)
	}
	_, err := p.voteRepo.Get(ctx, poll.ID)
	switch {
	case errors.Is(err, ErrVotesNotFound):
		if err = p.voteRepo.Upsert(ctx, poll.ID, votes); err != nil {
			return storeErr("could not save votes", err)
		}
	case err != nil:
		return storeErr("could not retrieve votes", err)
	default:
		log.Debug().Str("poll", poll.ID.String()).Msg("Votes arrived before the poll was stored")
	}
	if err = p.flagRepo.Set(ctx, poll.ID, domain.FlagHidden, state.Hidden); err != nil {
		return storeErr("could not save hidden flag", err)
	}
	if err = p.flagRepo.Set(ctx, poll.ID, domain.FlagClosed, state.Closed); err != nil {
		return storeErr("could not save closed flag", err)
	}
	return nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/view"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ActionType string

const (
	ActionVote         ActionType = view.ActionVote
	ActionVoteClosed   ActionType = view.ActionVoteClosed
	ActionToggleHidden ActionType = view.ActionToggleHidden
	ActionToggleClosed ActionType = view.ActionToggleClosed
	ActionDelete       ActionType = view.ActionDelete
	ActionMyVotes      ActionType = view.ActionMyVotes
)

// Action - one click on a poll message.
type Action struct {
	// ID - correlation id for logs, generated if empty.
	ID       string
	Type     ActionType
	UserID   string
	PollID   domain.PollID
	OptionID int
	// Displayed - the poll as scanned from the clicked message, nil if unavailable.
	Displayed *domain.DisplayedPoll
}

// Handle processes the action and tells the user about any rejection or failure.
func (p *Poll) Handle(ctx context.Context, a Action) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	logger := log.With().
		Str("action_id", a.ID).
		Str("action", string(a.Type)).
		Str("poll", a.PollID.String()).
		Str("user", a.UserID).
		Logger()

	var err error
	switch a.Type {
	case ActionVote:
		err = p.Vote(ctx, a)
	case ActionVoteClosed:
		err = ErrPollClosed
	case ActionToggleHidden:
		err = p.ToggleHidden(ctx, a)
	case ActionToggleClosed:
		err = p.ToggleClosed(ctx, a)
	case ActionDelete:
		err = p.Delete(ctx, a)
	case ActionMyVotes:
		err = p.MyVotes(ctx, a)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}

	if err == nil {
		logger.Debug().Msg("Action processed")
		return nil
	}
	if isRejection(err) {
		logger.Info().Err(err).Msg("Action rejected")
	} else {
		logger.Error().Err(err).Msg("Action failed")
	}
	if errors.Is(err, ErrNotDelivered) {
		return err
	}
	if nerr := p.messenger.PostEphemeral(ctx, a.PollID.Channel, a.UserID, p.Notice(err)); nerr != nil {
		logger.Error().Err(nerr).Msg("Could not send notice")
	}
	return err
}

// Vote toggles the user's vote for one option.
func (p *Poll) Vote(ctx context.Context, a Action) error {
	h, err := p.acquire(ctx, a.PollID)
	if err != nil {
		return err
	}
	defer h.Release()

	poll, err := p.loadPoll(ctx, a.PollID, a.Displayed)
	if err != nil {
		return err
	}
	if _, ok := poll.Option(a.OptionID); !ok {
		return ErrNoSuchOption
	}
	votes, err := p.loadVotes(ctx, poll, a.Displayed)
	if err != nil {
		return err
	}
	state, err := p.loadState(ctx, poll)
	if err != nil {
		return err
	}
	if state.Closed {
		return ErrPollClosed
	}

	updated := votes.Clone()
	added := updated.Toggle(a.OptionID, a.UserID)
	if added && poll.Settings.Limited {
		before, after := votes.CountFor(a.UserID), updated.CountFor(a.UserID)
		if p.opts.LimitBoundary.Exceeded(before, after, poll.Settings.Limit) {
			return fmt.Errorf("%w: %d of %d", ErrVoteLimitExceeded, before, poll.Settings.Limit)
		}
	}

	if err = p.voteRepo.Upsert(ctx, poll.ID, updated); err != nil {
		return storeErr("could not save votes", err)
	}
	return p.push(ctx, poll, updated, state)
}

// authorize returns the poll if the acting user created it.
func (p *Poll) authorize(ctx context.Context, a Action) (*domain.Poll, error) {
	poll, err := p.pollRepo.GetByID(ctx, a.PollID)
	if errors.Is(err, ErrPollNotFound) {
		if a.Displayed != nil {
			// Polls rebuilt from a message have no known creator.
			return nil, ErrUserIsNotPollAuthor
		}
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, storeErr("could not retrieve poll", err)
	}
	if poll.Creator == "" || poll.Creator != a.UserID {
		return nil, ErrUserIsNotPollAuthor
	}
	return poll, nil
}

// ToggleHidden reveals or hides the vote captions.
func (p *Poll) ToggleHidden(ctx context.Context, a Action) error {
	return p.toggleFlag(ctx, a, domain.FlagHidden)
}

// ToggleClosed closes or reopens the poll for voting.
func (p *Poll) ToggleClosed(ctx context.Context, a Action) error {
	return p.toggleFlag(ctx, a, domain.FlagClosed)
}

func (p *Poll) toggleFlag(ctx context.Context, a Action, flag domain.Flag) error {
	poll, err := p.authorize(ctx, a)
	if err != nil {
		return err
	}

	h, err := p.acquire(ctx, a.PollID)
	if err != nil {
		return err
	}
	defer h.Release()

	votes, err := p.loadVotes(ctx, poll, a.Displayed)
	if err != nil {
		return err
	}
	state, err := p.loadState(ctx, poll)
	if err != nil {
		return err
	}

	var value bool
	switch flag {
	case domain.FlagHidden:
		state.Hidden = !state.Hidden
		value = state.Hidden
	case domain.FlagClosed:
		state.Closed = !state.Closed
		value = state.Closed
	}
	if err = p.flagRepo.Set(ctx, poll.ID, flag, value); err != nil {
		return storeErr("could not save flag "+string(flag), err)
	}
	return p.push(ctx, poll, votes, state)
}

// Delete removes the poll message, then its stored state unless retention is configured.
func (p *Poll) Delete(ctx context.Context, a Action) error {
	poll, err := p.authorize(ctx, a)
	if err != nil {
		return err
	}
	if err = p.messenger.DeleteMessage(ctx, poll.ID.Channel, poll.ID.TS); err != nil {
		return fmt.Errorf("could not delete poll message: %w", err)
	}
	if !p.opts.PurgeOnDelete {
		return nil
	}

	h, err := p.acquire(ctx, a.PollID)
	if err != nil {
		return err
	}
	defer h.Release()

	if err = p.voteRepo.DeleteByPoll(ctx, poll.ID); err != nil {
		return storeErr("could not delete votes", err)
	}
	if err = p.flagRepo.DeleteByPoll(ctx, poll.ID); err != nil {
		return storeErr("could not delete flags", err)
	}
	if err = p.pollRepo.DeleteByID(ctx, poll.ID); err != nil {
		return storeErr("could not delete poll", err)
	}
	return nil
}

// MyVotes tells the user which options they voted for. Reads without the poll lock.
func (p *Poll) MyVotes(ctx context.Context, a Action) error {
	poll, err := p.pollRepo.GetByID(ctx, a.PollID)
	switch {
	case errors.Is(err, ErrPollNotFound):
		if a.Displayed == nil {
			return ErrPollNotFound
		}
		poll = a.Displayed.Poll(a.PollID)
	case err != nil:
		return storeErr("could not retrieve poll", err)
	}

	votes, err := p.voteRepo.Get(ctx, a.PollID)
	if errors.Is(err, ErrVotesNotFound) {
		votes = domain.VoteTable{}
		if a.Displayed != nil {
			votes = a.Displayed.Votes()
		}
	} else if err != nil {
		return storeErr("could not retrieve votes", err)
	}

	if err = p.messenger.PostEphemeral(ctx, a.PollID.Channel, a.UserID, myVotesText(poll, votes, a.UserID)); err != nil {
		return fmt.Errorf("%w: %w", ErrNotDelivered, err)
	}
	return nil
}

func myVotesText(poll *domain.Poll, votes domain.VoteTable, userID string) string {
	var labels []string
	for _, id := range votes.OptionsOf(userID) {
		if option, ok := poll.Option(id); ok {
			labels = append(labels, "*"+option.Label+"*")
		}
	}
	if len(labels) == 0 {
		return "You have not voted in this poll yet"
	}
	return "You voted for: " + strings.Join(labels, ", ")
}

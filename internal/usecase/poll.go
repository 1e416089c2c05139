package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/lock"
	"github.com/Xausdorf/openpoll/internal/view"
)

var (
	ErrInvalidCommand      = errors.New("invalid poll command")
	ErrUserIsNotPollAuthor = errors.New("user is not poll author")
	ErrPollNotFound        = errors.New("poll not found")
	ErrPollClosed          = errors.New("poll is closed")
	ErrPollBusy            = errors.New("poll is busy")
	ErrNoSuchOption        = errors.New("there is no such option in poll")
	ErrVoteLimitExceeded   = errors.New("vote limit exceeded")
	ErrVotesNotFound       = errors.New("votes not found")
	ErrFlagNotFound        = errors.New("flag not found")
	ErrStore               = errors.New("store failure")
	ErrUnknownAction       = errors.New("unknown action")
	ErrNotDelivered        = errors.New("ephemeral message not delivered")
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id domain.PollID) (*domain.Poll, error)
	DeleteByID(ctx context.Context, id domain.PollID) error
}

type VoteRepository interface {
	Get(ctx context.Context, id domain.PollID) (domain.VoteTable, error)
	Upsert(ctx context.Context, id domain.PollID, votes domain.VoteTable) error
	DeleteByPoll(ctx context.Context, id domain.PollID) error
}

type FlagRepository interface {
	Get(ctx context.Context, id domain.PollID, flag domain.Flag) (bool, error)
	Set(ctx context.Context, id domain.PollID, flag domain.Flag, value bool) error
	DeleteByPoll(ctx context.Context, id domain.PollID) error
}

// Messenger delivers rendered polls and notices to the chat surface.
type Messenger interface {
	PostMessage(ctx context.Context, channelID string, msg view.Message) (string, error)
	UpdateMessage(ctx context.Context, channelID, ts string, msg view.Message) error
	PostEphemeral(ctx context.Context, channelID, userID, text string) error
	DeleteMessage(ctx context.Context, channelID, ts string) error
}

type Locker interface {
	Acquire(ctx context.Context, key string) (*lock.Handle, error)
}

type Options struct {
	LimitBoundary domain.LimitBoundary
	// PurgeOnDelete - remove stored votes and flags once the poll message is deleted.
	PurgeOnDelete bool
	HelpCommand   string
}

type Poll struct {
	pollRepo  PollRepository
	voteRepo  VoteRepository
	flagRepo  FlagRepository
	messenger Messenger
	locks     Locker
	renderer  *view.Renderer
	opts      Options
}

func NewPoll(
	pollRepo PollRepository,
	voteRepo VoteRepository,
	flagRepo FlagRepository,
	messenger Messenger,
	locks Locker,
	renderer *view.Renderer,
	opts Options,
) *Poll {
	return &Poll{
		pollRepo:  pollRepo,
		voteRepo:  voteRepo,
		flagRepo:  flagRepo,
		messenger: messenger,
		locks:     locks,
		renderer:  renderer,
		opts:      opts,
	}
}

func (p *Poll) acquire(ctx context.Context, id domain.PollID) (*lock.Handle, error) {
	h, err := p.locks.Acquire(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPollBusy, err)
	}
	return h, nil
}

// loadPoll reads the poll definition, rebuilding and saving it from the
// displayed message for polls posted before definitions were stored.
func (p *Poll) loadPoll(ctx context.Context, id domain.PollID, displayed *domain.DisplayedPoll) (*domain.Poll, error) {
	poll, err := p.pollRepo.GetByID(ctx, id)
	if err == nil {
		return poll, nil
	}
	if !errors.Is(err, ErrPollNotFound) {
		return nil, storeErr("could not retrieve poll", err)
	}
	if displayed == nil || len(displayed.Options) == 0 {
		return nil, ErrPollNotFound
	}
	poll = displayed.Poll(id)
	if err = p.pollRepo.Save(ctx, poll); err != nil {
		return nil, storeErr("could not save legacy poll", err)
	}
	return poll, nil
}

// loadVotes reads the vote table, seeding it from the displayed message when absent.
func (p *Poll) loadVotes(ctx context.Context, poll *domain.Poll, displayed *domain.DisplayedPoll) (domain.VoteTable, error) {
	votes, err := p.voteRepo.Get(ctx, poll.ID)
	if err == nil {
		return votes, nil
	}
	if !errors.Is(err, ErrVotesNotFound) {
		return nil, storeErr("could not retrieve votes", err)
	}

	seed := domain.NewVoteTable(poll)
	if displayed != nil {
		for optionID, voters := range displayed.Votes() {
			if _, ok := seed[optionID]; ok {
				seed[optionID] = voters
			}
		}
	}
	if err = p.voteRepo.Upsert(ctx, poll.ID, seed); err != nil {
		return nil, storeErr("could not save seeded votes", err)
	}
	return seed, nil
}

func (p *Poll) loadState(ctx context.Context, poll *domain.Poll) (domain.State, error) {
	state := domain.State{Hidden: poll.Settings.Hidden}
	for _, flag := range domain.Flags {
		value, err := p.flagRepo.Get(ctx, poll.ID, flag)
		if errors.Is(err, ErrFlagNotFound) {
			continue
		}
		if err != nil {
			return state, storeErr("could not retrieve flag "+string(flag), err)
		}
		switch flag {
		case domain.FlagHidden:
			state.Hidden = value
		case domain.FlagClosed:
			state.Closed = value
		}
	}
	return state, nil
}

func (p *Poll) push(ctx context.Context, poll *domain.Poll, votes domain.VoteTable, state domain.State) error {
	msg := p.renderer.Render(poll, votes, state)
	if err := p.messenger.UpdateMessage(ctx, poll.ID.Channel, poll.ID.TS, msg); err != nil {
		return fmt.Errorf("could not update poll message: %w", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

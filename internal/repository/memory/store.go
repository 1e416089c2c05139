// Package memory keeps poll state in process memory.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/usecase"
)

type PollRepository struct {
	mu    sync.RWMutex
	polls map[domain.PollID]domain.Poll
}

func NewPollRepository() *PollRepository {
	return &PollRepository{polls: make(map[domain.PollID]domain.Poll)}
}

func (r *PollRepository) Save(_ context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *poll
	stored.Options = slices.Clone(poll.Options)
	r.polls[poll.ID] = stored
	return nil
}

func (r *PollRepository) GetByID(_ context.Context, id domain.PollID) (*domain.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.polls[id]
	if !ok {
		return nil, usecase.ErrPollNotFound
	}
	stored.Options = slices.Clone(stored.Options)
	return &stored, nil
}

func (r *PollRepository) DeleteByID(_ context.Context, id domain.PollID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.polls, id)
	return nil
}

type VoteRepository struct {
	mu    sync.RWMutex
	votes map[domain.PollID]domain.VoteTable
}

func NewVoteRepository() *VoteRepository {
	return &VoteRepository{votes: make(map[domain.PollID]domain.VoteTable)}
}

func (r *VoteRepository) Get(_ context.Context, id domain.PollID) (domain.VoteTable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	votes, ok := r.votes[id]
	if !ok {
		return nil, usecase.ErrVotesNotFound
	}
	return votes.Clone(), nil
}

func (r *VoteRepository) Upsert(_ context.Context, id domain.PollID, votes domain.VoteTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes[id] = votes.Clone()
	return nil
}

func (r *VoteRepository) DeleteByPoll(_ context.Context, id domain.PollID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.votes, id)
	return nil
}

type FlagRepository struct {
	mu    sync.RWMutex
	flags map[domain.PollID]map[domain.Flag]bool
}

func NewFlagRepository() *FlagRepository {
	return &FlagRepository{flags: make(map[domain.PollID]map[domain.Flag]bool)}
}

func (r *FlagRepository) Get(_ context.Context, id domain.PollID, flag domain.Flag) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.flags[id][flag]
	if !ok {
		return false, usecase.ErrFlagNotFound
	}
	return value, nil
}

func (r *FlagRepository) Set(_ context.Context, id domain.PollID, flag domain.Flag, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flags[id] == nil {
		r.flags[id] = make(map[domain.Flag]bool, len(domain.Flags))
	}
	r.flags[id][flag] = value
	return nil
}

func (r *FlagRepository) DeleteByPoll(_ context.Context, id domain.PollID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flags, id)
	return nil
}

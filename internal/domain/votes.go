package domain

import "slices"

// VoteTable - voters per option id, in the order they voted.
type VoteTable map[int][]string

func NewVoteTable(poll *Poll) VoteTable {
	table := make(VoteTable, len(poll.Options))
	for _, option := range poll.Options {
		table[option.ID] = []string{}
	}
	return table
}

func (t VoteTable) Clone() VoteTable {
	clone := make(VoteTable, len(t))
	for id, voters := range t {
		clone[id] = slices.Clone(voters)
	}
	return clone
}

func (t VoteTable) HasVoted(optionID int, userID string) bool {
	return slices.Contains(t[optionID], userID)
}

// Toggle adds the user to the option's voters or removes them if already present.
// Returns true if the vote was added.
func (t VoteTable) Toggle(optionID int, userID string) bool {
	voters := t[optionID]
	if i := slices.Index(voters, userID); i >= 0 {
		t[optionID] = slices.Delete(slices.Clone(voters), i, i+1)
		return false
	}
	t[optionID] = append(slices.Clone(voters), userID)
	return true
}

// CountFor returns the number of distinct options the user voted for.
func (t VoteTable) CountFor(userID string) int {
	count := 0
	for _, voters := range t {
		if slices.Contains(voters, userID) {
			count++
		}
	}
	return count
}

// OptionsOf returns option ids the user voted for, ascending.
func (t VoteTable) OptionsOf(userID string) []int {
	var ids []int
	for id, voters := range t {
		if slices.Contains(voters, userID) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// LimitBoundary - policy deciding whether an added vote goes over the limit.
type LimitBoundary int

const (
	// LimitBoundaryAbove rejects when the user holds more than limit options after the vote.
	LimitBoundaryAbove LimitBoundary = iota
	// LimitBoundaryAtOrAbove rejects when the user already held limit options before the vote.
	LimitBoundaryAtOrAbove
)

func (b LimitBoundary) String() string {
	switch b {
	case LimitBoundaryAtOrAbove:
		return "at_or_above"
	default:
		return "above"
	}
}

func ParseLimitBoundary(s string) (LimitBoundary, bool) {
	switch s {
	case "", "above":
		return LimitBoundaryAbove, true
	case "at_or_above":
		return LimitBoundaryAtOrAbove, true
	}
	return LimitBoundaryAbove, false
}

// Exceeded reports whether a vote that moved the user's count from before to after breaks limit.
func (b LimitBoundary) Exceeded(before, after, limit int) bool {
	if b == LimitBoundaryAtOrAbove {
		return before >= limit
	}
	return after > limit
}

package domain

import "slices"

// DisplayedPoll - poll as it was scanned from a posted message.
// Used to seed state for polls posted before votes were persisted.
type DisplayedPoll struct {
	Question string
	Options  []DisplayedOption
	// Settings - known only when the message carried them in its buttons.
	Settings    Settings
	HasSettings bool
}

type DisplayedOption struct {
	ID     int
	Label  string
	Voters []string
}

// Poll rebuilds a definition from the displayed message. The creator is unknown.
func (d *DisplayedPoll) Poll(id PollID) *Poll {
	poll := &Poll{
		ID:       id,
		Question: d.Question,
		Options:  make([]PollOption, len(d.Options)),
		Settings: d.Settings,
	}
	for i, option := range d.Options {
		poll.Options[i] = PollOption{ID: option.ID, Label: option.Label}
	}
	return poll
}

// Votes returns the vote table shown by the message.
func (d *DisplayedPoll) Votes() VoteTable {
	table := make(VoteTable, len(d.Options))
	for _, option := range d.Options {
		voters := make([]string, 0, len(option.Voters))
		for _, voter := range option.Voters {
			if !slices.Contains(voters, voter) {
				voters = append(voters, voter)
			}
		}
		table[option.ID] = voters
	}
	return table
}

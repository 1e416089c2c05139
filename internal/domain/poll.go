package domain

import (
	"errors"
	"strings"
	"time"
)

// PollID - composite identity of a posted poll message.
type PollID struct {
	Team    string
	Channel string
	// TS - timestamp of the poll message, assigned by the chat surface when the poll is posted.
	TS string
}

func (id PollID) String() string {
	return id.Team + "|" + id.Channel + "|" + id.TS
}

func (id PollID) Valid() bool {
	return id.Channel != "" && id.TS != ""
}

// ParsePollID is the inverse of PollID.String.
func ParsePollID(s string) (PollID, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 3 {
		return PollID{}, errors.New("poll id must have 3 parts")
	}
	return PollID{Team: parts[0], Channel: parts[1], TS: parts[2]}, nil
}

// Poll - structure for storing the definition of a poll.
type Poll struct {
	ID       PollID
	Question string
	Options  []PollOption
	Settings Settings
	// Creator - ID of poll's author.
	Creator   string
	CreatedAt time.Time
}

// PollOption - one choice of a poll.
type PollOption struct {
	// ID - stable index of the option, never reused within a poll.
	ID    int
	Label string
}

// Settings - options chosen at creation time.
type Settings struct {
	Anonymous bool
	Limited   bool
	// Limit - maximum number of options a user can vote for, meaningful only if Limited.
	Limit  int
	Hidden bool
}

func NewPoll(question string, labels []string, settings Settings, creator string) *Poll {
	options := make([]PollOption, len(labels))
	for i, label := range labels {
		options[i] = PollOption{ID: i, Label: label}
	}
	if settings.Limited && settings.Limit < 1 {
		settings.Limit = 1
	}
	return &Poll{
		Question:  question,
		Options:   options,
		Settings:  settings,
		Creator:   creator,
		CreatedAt: time.Now().UTC(),
	}
}

func (p *Poll) Option(id int) (PollOption, bool) {
	for _, option := range p.Options {
		if option.ID == id {
			return option, true
		}
	}
	return PollOption{}, false
}

// Flag - name of a boolean poll state stored apart from votes.
type Flag string

const (
	FlagHidden Flag = "hidden"
	FlagClosed Flag = "closed"
)

// Flags - every flag a poll can carry.
var Flags = []Flag{FlagHidden, FlagClosed}

// State - flag values of a poll as last persisted.
type State struct {
	Hidden bool
	Closed bool
}

// Package view turns canonical poll state into the message shown in the channel.
//
// Rendering is pure: the same poll, votes and flags always give the same Message,
// so a poll can be re-rendered after every mutation without drift.
package view

import (
	"strconv"
	"strings"

	"github.com/Xausdorf/openpoll/internal/domain"
)

// Interactive element ids carried back by the chat surface.
const (
	ActionVote         = "vote"
	ActionVoteClosed   = "vote_closed"
	ActionMenu         = "poll_menu"
	ActionMyVotes      = "my_votes"
	ActionToggleHidden = "toggle_hidden"
	ActionToggleClosed = "toggle_closed"
	ActionDelete       = "delete_poll"
)

const (
	CaptionNoVotes = "No votes"
	CaptionHidden  = "Wait for reveal"

	DefaultFooter = "Type `/openpoll help` to learn how to create polls"
)

// Message - typed layout of a poll message, addressed by option id.
type Message struct {
	Header   Header
	Info     []string
	Options  []Option
	Footer   string
	Actions  []Button
	Fallback string
}

type Header struct {
	Question string
	Menu     []MenuItem
}

type MenuItem struct {
	Text  string
	Value string
}

type Option struct {
	ID      int
	Label   string
	Button  Button
	Caption string
}

type Button struct {
	ActionID string
	Text     string
	Value    string
	Style    string
}

// Option returns the rendered option with the given id.
func (m Message) Option(id int) (Option, bool) {
	for _, option := range m.Options {
		if option.ID == id {
			return option, true
		}
	}
	return Option{}, false
}

type Renderer struct {
	Footer string
}

func NewRenderer(footer string) *Renderer {
	if footer == "" {
		footer = DefaultFooter
	}
	return &Renderer{Footer: footer}
}

// Render builds the message for poll with the given votes and flags.
func (r *Renderer) Render(poll *domain.Poll, votes domain.VoteTable, state domain.State) Message {
	msg := Message{
		Header: Header{
			Question: poll.Question,
			Menu:     menu(state),
		},
		Info:     info(poll, state),
		Options:  make([]Option, 0, len(poll.Options)),
		Footer:   r.Footer,
		Actions:  actions(poll, state),
		Fallback: poll.Question,
	}

	voteAction := ActionVote
	if state.Closed {
		voteAction = ActionVoteClosed
	}
	for _, option := range poll.Options {
		msg.Options = append(msg.Options, Option{
			ID:    option.ID,
			Label: option.Label,
			Button: Button{
				ActionID: voteAction,
				Text:     "Vote",
				Value:    strconv.Itoa(option.ID),
			},
			Caption: Caption(votes[option.ID], poll.Settings.Anonymous, state.Hidden),
		})
	}
	return msg
}

// Caption describes the voters of one option.
func Caption(voters []string, anonymous, hidden bool) string {
	if hidden {
		return CaptionHidden
	}
	if len(voters) == 0 {
		return CaptionNoVotes
	}

	var b strings.Builder
	if !anonymous {
		for _, voter := range voters {
			b.WriteString(Mention(voter))
			b.WriteByte(' ')
		}
	}
	b.WriteString(Plural(len(voters), "vote", "votes"))
	return b.String()
}

func Mention(userID string) string {
	return "<@" + userID + ">"
}

func Plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}

func menu(state domain.State) []MenuItem {
	hidden := MenuItem{Text: "Hide votes", Value: ActionToggleHidden}
	if state.Hidden {
		hidden.Text = "Reveal votes"
	}
	closed := MenuItem{Text: "Close poll", Value: ActionToggleClosed}
	if state.Closed {
		closed.Text = "Reopen poll"
	}
	return []MenuItem{hidden, closed, {Text: "Delete poll", Value: ActionDelete}}
}

func info(poll *domain.Poll, state domain.State) []string {
	var badges []string
	if poll.Settings.Anonymous {
		badges = append(badges, ":shushing_face: Anonymous poll")
	}
	if poll.Settings.Limited {
		badges = append(badges, ":warning: Limited to "+Plural(poll.Settings.Limit, "vote", "votes"))
	}
	if state.Hidden {
		badges = append(badges, ":see_no_evil: Votes hidden until reveal")
	}
	if state.Closed {
		badges = append(badges, ":lock: Poll closed")
	}
	if poll.Creator != "" {
		badges = append(badges, "Created by "+Mention(poll.Creator))
	}
	return badges
}

func actions(poll *domain.Poll, state domain.State) []Button {
	var buttons []Button
	if poll.Settings.Anonymous {
		buttons = append(buttons, Button{ActionID: ActionMyVotes, Text: "My votes", Value: ActionMyVotes})
	}
	if state.Hidden {
		buttons = append(buttons, Button{ActionID: ActionToggleHidden, Text: "Reveal votes", Value: ActionToggleHidden, Style: "primary"})
	}
	if poll.Creator != "" {
		buttons = append(buttons, Button{ActionID: ActionDelete, Text: "Delete poll", Value: ActionDelete, Style: "danger"})
	}
	return buttons
}

package view

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/goccy/go-json"
	"github.com/slack-go/slack"
)

func colorPoll(settings domain.Settings) *domain.Poll {
	poll := domain.NewPoll("Color?", []string{"Red", "Green"}, settings, "U0")
	poll.ID = domain.PollID{Team: "T1", Channel: "C1", TS: "1.1"}
	return poll
}

func TestCaption(t *testing.T) {
	tests := []struct {
		name      string
		voters    []string
		anonymous bool
		hidden    bool
		want      string
	}{
		{"empty", nil, false, false, "No votes"},
		{"one", []string{"U1"}, false, false, "<@U1> 1 vote"},
		{"many", []string{"U1", "U2"}, false, false, "<@U1> <@U2> 2 votes"},
		{"anonymous", []string{"U1", "U2"}, true, false, "2 votes"},
		{"hidden", []string{"U1"}, false, true, "Wait for reveal"},
		{"hidden empty", nil, false, true, "Wait for reveal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Caption(tt.voters, tt.anonymous, tt.hidden); got != tt.want {
				t.Errorf("Caption() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer("")
	poll := colorPoll(domain.Settings{Anonymous: true, Limited: true, Limit: 2})
	votes := domain.VoteTable{0: {"U1", "U2"}, 1: {"U3"}}
	state := domain.State{Hidden: true}

	first := r.Render(poll, votes, state)
	second := r.Render(poll, votes, state)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("renders differ:\n%+v\n%+v", first, second)
	}

	a, err := json.Marshal(first.Blocks())
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(second.Blocks())
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Fatalf("blocks differ:\n%s\n%s", a, b)
	}
}

func TestRenderCaptionsByOption(t *testing.T) {
	r := NewRenderer("")
	msg := r.Render(colorPoll(domain.Settings{}), domain.VoteTable{0: {"U1"}}, domain.State{})

	red, ok := msg.Option(0)
	if !ok {
		t.Fatal("option 0 not rendered")
	}
	if red.Caption != "<@U1> 1 vote" {
		t.Errorf("red caption = %q", red.Caption)
	}
	green, _ := msg.Option(1)
	if green.Caption != "No votes" {
		t.Errorf("green caption = %q", green.Caption)
	}
	if red.Button.ActionID != ActionVote || red.Button.Value != "0" {
		t.Errorf("unexpected vote button %+v", red.Button)
	}
}

func TestOptionLookupOnStoredMessage(t *testing.T) {
	r := NewRenderer("")
	posted := map[string]Message{
		"1700000000.1": r.Render(colorPoll(domain.Settings{}), domain.VoteTable{1: {"U2"}}, domain.State{}),
	}

	green, ok := posted["1700000000.1"].Option(1)
	if !ok || green.Caption != "<@U2> 1 vote" {
		t.Errorf("Option(1) = %+v, %v", green, ok)
	}
	if _, ok = posted["1700000000.1"].Option(9); ok {
		t.Error("Option(9) found on a two option poll")
	}
	if len(posted["1700000000.1"].Blocks()) == 0 {
		t.Error("no blocks for stored message")
	}
}

func TestRenderClosedMarksButtons(t *testing.T) {
	r := NewRenderer("")
	msg := r.Render(colorPoll(domain.Settings{}), domain.VoteTable{}, domain.State{Closed: true})
	for _, option := range msg.Options {
		if option.Button.ActionID != ActionVoteClosed {
			t.Errorf("option %d button action = %q", option.ID, option.Button.ActionID)
		}
	}
	if msg.Header.Menu[1].Text != "Reopen poll" {
		t.Errorf("menu label = %q, want Reopen poll", msg.Header.Menu[1].Text)
	}
}

func TestRenderMenuNamesOppositeAction(t *testing.T) {
	r := NewRenderer("")
	poll := colorPoll(domain.Settings{})

	shown := r.Render(poll, nil, domain.State{})
	if shown.Header.Menu[0].Text != "Hide votes" {
		t.Errorf("menu = %q, want Hide votes", shown.Header.Menu[0].Text)
	}
	hidden := r.Render(poll, nil, domain.State{Hidden: true})
	if hidden.Header.Menu[0].Text != "Reveal votes" {
		t.Errorf("menu = %q, want Reveal votes", hidden.Header.Menu[0].Text)
	}
}

func TestRenderInfoAndActions(t *testing.T) {
	r := NewRenderer("")
	msg := r.Render(colorPoll(domain.Settings{Anonymous: true, Limited: true, Limit: 1}), nil, domain.State{Hidden: true, Closed: true})

	wantInfo := []string{
		":shushing_face: Anonymous poll",
		":warning: Limited to 1 vote",
		":see_no_evil: Votes hidden until reveal",
		":lock: Poll closed",
		"Created by <@U0>",
	}
	if !reflect.DeepEqual(msg.Info, wantInfo) {
		t.Errorf("info = %v, want %v", msg.Info, wantInfo)
	}

	var ids []string
	for _, b := range msg.Actions {
		ids = append(ids, b.ActionID)
	}
	wantIDs := []string{ActionMyVotes, ActionToggleHidden, ActionDelete}
	if !reflect.DeepEqual(ids, wantIDs) {
		t.Errorf("actions = %v, want %v", ids, wantIDs)
	}
}

func TestBlocksOrder(t *testing.T) {
	r := NewRenderer("")
	msg := r.Render(colorPoll(domain.Settings{}), nil, domain.State{})
	blocks := msg.Blocks()

	want := []slack.MessageBlockType{
		slack.MBTSection, slack.MBTContext, slack.MBTDivider,
		slack.MBTSection, slack.MBTContext,
		slack.MBTSection, slack.MBTContext,
		slack.MBTDivider, slack.MBTContext, slack.MBTAction,
	}
	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(want))
	}
	for i, b := range blocks {
		if b.BlockType() != want[i] {
			t.Errorf("block %d type = %s, want %s", i, b.BlockType(), want[i])
		}
	}
	if id := blocks[3].(*slack.SectionBlock).BlockID; id != OptionBlockID(0) {
		t.Errorf("first option block id = %q", id)
	}
}

func TestHelpMentionsCommand(t *testing.T) {
	help := Help("/poll")
	for _, want := range []string{"/poll anonymous limit 2", "/poll hidden"} {
		if !strings.Contains(help, want) {
			t.Errorf("help does not contain %q", want)
		}
	}
}

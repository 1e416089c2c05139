package slackbot

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/view"
	"github.com/goccy/go-json"
	"github.com/slack-go/slack"
)

var (
	mentionRe = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|[^>]*)?>`)
	limitRe   = regexp.MustCompile(`Limited to (\d+) vote`)
)

// legacyValue - button value of polls posted before state was stored server-side.
type legacyValue struct {
	Anonymous bool            `json:"anonymous"`
	Limited   bool            `json:"limited"`
	Limit     json.RawMessage `json:"limit"`
	Voters    []string        `json:"voters"`
	ID        json.RawMessage `json:"id"`
}

type legacyButton struct {
	settings domain.Settings
	voters   []string
	id       int
}

func parseLegacyValue(value string) (legacyButton, bool) {
	if !strings.HasPrefix(strings.TrimSpace(value), "{") {
		return legacyButton{}, false
	}
	var v legacyValue
	if err := json.Unmarshal([]byte(value), &v); err != nil {
		return legacyButton{}, false
	}
	id, ok := looseInt(v.ID)
	if !ok {
		return legacyButton{}, false
	}
	limit, _ := looseInt(v.Limit)

	voters := v.Voters
	if voters == nil {
		voters = []string{}
	}
	return legacyButton{
		settings: domain.Settings{
			Anonymous: v.Anonymous,
			Limited:   v.Limited,
			Limit:     limit,
		},
		voters: voters,
		id:     id,
	}, true
}

// looseInt reads a number that may have been written as a JSON string.
func looseInt(raw json.RawMessage) (int, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Scan reads the poll shown by a posted message. It understands both the current layout
// and messages whose buttons still carry JSON state. Returns nil if no options are found.
func Scan(blocks []slack.Block) *domain.DisplayedPoll {
	var d domain.DisplayedPoll
	badges := false

	for i, block := range blocks {
		switch b := block.(type) {
		case *slack.ContextBlock:
			if len(d.Options) == 0 && readBadges(contextText(b), &d.Settings) {
				badges = true
			}
		case *slack.SectionBlock:
			if b.Accessory == nil || b.Accessory.ButtonElement == nil {
				if d.Question == "" {
					d.Question = textOf(b.Text)
				}
				continue
			}

			option, ok := scanOption(b, &d)
			if !ok {
				continue
			}
			if option.Voters == nil {
				option.Voters = []string{}
				if i+1 < len(blocks) {
					if caption, ok := blocks[i+1].(*slack.ContextBlock); ok {
						option.Voters = mentions(contextText(caption))
					}
				}
			}
			d.Options = append(d.Options, option)
		}
	}

	if len(d.Options) == 0 {
		return nil
	}
	if badges {
		d.HasSettings = true
	}
	return &d
}

func scanOption(b *slack.SectionBlock, d *domain.DisplayedPoll) (domain.DisplayedOption, bool) {
	button := b.Accessory.ButtonElement
	option := domain.DisplayedOption{Label: textOf(b.Text)}

	if legacy, ok := parseLegacyValue(button.Value); ok {
		option.ID = legacy.id
		option.Voters = legacy.voters
		if !d.HasSettings {
			d.Settings = legacy.settings
			d.HasSettings = true
		}
		return option, true
	}

	if button.ActionID != view.ActionVote && button.ActionID != view.ActionVoteClosed {
		return option, false
	}
	id, err := strconv.Atoi(button.Value)
	if err != nil {
		return option, false
	}
	option.ID = id
	return option, true
}

// readBadges picks anonymous and limit settings out of an info line.
func readBadges(text string, settings *domain.Settings) bool {
	found := false
	if strings.Contains(text, "Anonymous poll") {
		settings.Anonymous = true
		found = true
	}
	if m := limitRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			settings.Limited = true
			settings.Limit = n
			found = true
		}
	}
	if strings.Contains(text, "Votes hidden until reveal") {
		settings.Hidden = true
		found = true
	}
	return found
}

func mentions(text string) []string {
	matches := mentionRe.FindAllStringSubmatch(text, -1)
	voters := make([]string, 0, len(matches))
	for _, m := range matches {
		voters = append(voters, m[1])
	}
	return voters
}

func contextText(b *slack.ContextBlock) string {
	var parts []string
	for _, element := range b.ContextElements.Elements {
		if text, ok := element.(*slack.TextBlockObject); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, " ")
}

func textOf(t *slack.TextBlockObject) string {
	if t == nil {
		return ""
	}
	return t.Text
}

package view

import (
	"strconv"

	"github.com/slack-go/slack"
)

// Block ids of a rendered poll.
const (
	BlockHeader  = "header"
	BlockInfo    = "info"
	BlockFooter  = "footer"
	BlockActions = "actions"

	blockOptionPrefix  = "option_"
	blockCaptionPrefix = "caption_"
)

func OptionBlockID(id int) string {
	return blockOptionPrefix + strconv.Itoa(id)
}

func CaptionBlockID(id int) string {
	return blockCaptionPrefix + strconv.Itoa(id)
}

// Blocks converts the message into Block Kit blocks in display order:
// header, info, divider, label and caption per option, divider, footer, actions.
func (m Message) Blocks() []slack.Block {
	blocks := make([]slack.Block, 0, 2*len(m.Options)+6)

	menuOptions := make([]*slack.OptionBlockObject, len(m.Header.Menu))
	for i, item := range m.Header.Menu {
		menuOptions[i] = slack.NewOptionBlockObject(item.Value, plain(item.Text), nil)
	}
	blocks = append(blocks, slack.NewSectionBlock(
		markdown(m.Header.Question), nil,
		slack.NewAccessory(slack.NewOverflowBlockElement(ActionMenu, menuOptions...)),
		slack.SectionBlockOptionBlockID(BlockHeader),
	))

	if len(m.Info) > 0 {
		blocks = append(blocks, slack.NewContextBlock(BlockInfo, mixed(m.Info)...))
	}
	blocks = append(blocks, slack.NewDividerBlock())

	for _, option := range m.Options {
		blocks = append(blocks,
			slack.NewSectionBlock(
				markdown(option.Label), nil,
				slack.NewAccessory(button(option.Button)),
				slack.SectionBlockOptionBlockID(OptionBlockID(option.ID)),
			),
			slack.NewContextBlock(CaptionBlockID(option.ID), markdown(option.Caption)),
		)
	}

	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewContextBlock(BlockFooter, markdown(m.Footer)),
	)

	if len(m.Actions) > 0 {
		elements := make([]slack.BlockElement, len(m.Actions))
		for i, b := range m.Actions {
			elements[i] = button(b)
		}
		blocks = append(blocks, slack.NewActionBlock(BlockActions, elements...))
	}
	return blocks
}

func button(b Button) *slack.ButtonBlockElement {
	el := slack.NewButtonBlockElement(b.ActionID, b.Value, plain(b.Text))
	if b.Style != "" {
		el = el.WithStyle(slack.Style(b.Style))
	}
	return el
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func plain(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}

func mixed(texts []string) []slack.MixedElement {
	elements := make([]slack.MixedElement, len(texts))
	for i, text := range texts {
		elements[i] = markdown(text)
	}
	return elements
}

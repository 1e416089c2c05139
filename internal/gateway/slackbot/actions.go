package slackbot

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/usecase"
	"github.com/Xausdorf/openpoll/internal/view"
	"github.com/slack-go/slack"
)

var (
	errNoPoll    = errors.New("interaction does not point to a poll message")
	errNoActions = errors.New("interaction has no actions")
)

// ParseActions maps the block actions of a click to poll actions.
// The poll is identified by the message the click came from, never by the button value.
func ParseActions(callback *slack.InteractionCallback) ([]usecase.Action, error) {
	id := domain.PollID{
		Team:    callback.Team.ID,
		Channel: callback.Channel.ID,
		TS:      callback.Container.MessageTs,
	}
	if id.Channel == "" {
		id.Channel = callback.Container.ChannelID
	}
	if id.TS == "" {
		id.TS = callback.Message.Timestamp
	}
	if !id.Valid() {
		return nil, errNoPoll
	}

	blockActions := callback.ActionCallback.BlockActions
	if len(blockActions) == 0 {
		return nil, errNoActions
	}

	displayed := Scan(callback.Message.Blocks.BlockSet)
	actions := make([]usecase.Action, 0, len(blockActions))
	for _, ba := range blockActions {
		a := usecase.Action{
			UserID:    callback.User.ID,
			PollID:    id,
			Displayed: displayed,
		}

		switch ba.ActionID {
		case view.ActionMenu:
			a.Type = usecase.ActionType(ba.SelectedOption.Value)
		case view.ActionVote, view.ActionVoteClosed:
			optionID, err := strconv.Atoi(ba.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid option id %q: %w", ba.Value, err)
			}
			a.Type = usecase.ActionType(ba.ActionID)
			a.OptionID = optionID
		case view.ActionMyVotes, view.ActionToggleHidden, view.ActionToggleClosed, view.ActionDelete:
			a.Type = usecase.ActionType(ba.ActionID)
		default:
			// buttons of old messages carry no action id of ours, only their JSON value
			legacy, ok := parseLegacyValue(ba.Value)
			if !ok {
				return nil, fmt.Errorf("unknown action %q", ba.ActionID)
			}
			a.Type = usecase.ActionVote
			a.OptionID = legacy.id
		}
		actions = append(actions, a)
	}
	return actions, nil
}

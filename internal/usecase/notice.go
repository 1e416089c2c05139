package usecase

import "errors"

// Notice returns the text shown to the user whose request failed with err.
func (p *Poll) Notice(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCommand):
		return "I could not read your poll. Type `" + p.helpCommand() + " help` to see examples."
	case errors.Is(err, ErrUserIsNotPollAuthor):
		return "Only the poll creator can do that"
	case errors.Is(err, ErrPollBusy):
		return "The poll is busy right now, please try again"
	case errors.Is(err, ErrVoteLimitExceeded):
		return "You have reached the vote limit of this poll, remove a vote first"
	case errors.Is(err, ErrPollClosed):
		return "This poll is closed, you can not vote"
	case errors.Is(err, ErrPollNotFound):
		return "This poll does not exist anymore"
	case errors.Is(err, ErrNoSuchOption):
		return "There is no such option in this poll"
	default:
		return "Something went wrong, please try again"
	}
}

// isRejection reports whether err is an expected refusal rather than a failure.
func isRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidCommand,
		ErrUserIsNotPollAuthor,
		ErrPollBusy,
		ErrVoteLimitExceeded,
		ErrPollClosed,
		ErrPollNotFound,
		ErrNoSuchOption,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (p *Poll) helpCommand() string {
	if p.opts.HelpCommand == "" {
		return "/openpoll"
	}
	return p.opts.HelpCommand
}

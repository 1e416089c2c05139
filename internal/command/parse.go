// Package command parses the slash command text that creates a poll.
//
//	[anonymous] [limit N] [hidden] "question" "option 1" "option 2" ...
//
// Keywords may come in any order before the first quote. The first quote
// character decides the quoting of the whole command: "…", '…' or “…”.
// A backslash escapes the next character inside a quoted token.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Xausdorf/openpoll/internal/domain"
)

var ErrInvalidCommand = errors.New("invalid poll command")

const (
	keywordAnonymous = "anonymous"
	keywordLimit     = "limit"
	keywordHidden    = "hidden"
	keywordHelp      = "help"
)

// Command - a parsed poll creation request.
type Command struct {
	Question string
	Options  []string
	Settings domain.Settings
}

// IsHelp reports whether text asks for usage help.
func IsHelp(text string) bool {
	return strings.TrimSpace(text) == keywordHelp
}

func Parse(text string) (*Command, error) {
	start := strings.IndexAny(text, `"'“`)
	if start < 0 {
		return nil, fmt.Errorf("%w: no quoted question", ErrInvalidCommand)
	}

	cmd := &Command{Settings: parseKeywords(text[:start])}

	tokens, err := quoted(text[start:])
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 || strings.TrimSpace(tokens[0]) == "" {
		return nil, fmt.Errorf("%w: empty question", ErrInvalidCommand)
	}
	cmd.Question = tokens[0]
	for _, option := range tokens[1:] {
		if strings.TrimSpace(option) != "" {
			cmd.Options = append(cmd.Options, option)
		}
	}
	if len(cmd.Options) == 0 {
		return nil, fmt.Errorf("%w: no options", ErrInvalidCommand)
	}
	return cmd, nil
}

// parseKeywords reads settings from the words before the question.
// "limit" without a valid number means a limit of one.
func parseKeywords(prefix string) domain.Settings {
	var settings domain.Settings
	words := strings.Fields(prefix)
	for i := 0; i < len(words); i++ {
		switch words[i] {
		case keywordAnonymous:
			settings.Anonymous = true
		case keywordHidden:
			settings.Hidden = true
		case keywordLimit:
			if settings.Limited {
				continue
			}
			settings.Limited = true
			settings.Limit = 1
			if i+1 < len(words) {
				if n, err := strconv.Atoi(words[i+1]); err == nil {
					if n > 0 {
						settings.Limit = n
					}
					i++
				}
			}
		}
	}
	return settings
}

// quoted splits s into quoted tokens, s starting with the opening quote.
func quoted(s string) ([]string, error) {
	runes := []rune(s)
	open := runes[0]
	closing := open
	if open == '“' {
		closing = '”'
	}

	var tokens []string
	for i := 0; i < len(runes); i++ {
		if runes[i] != open {
			continue
		}
		var b strings.Builder
		closed := false
		for i++; i < len(runes); i++ {
			r := runes[i]
			if r == '\\' && i+1 < len(runes) {
				i++
				b.WriteRune(runes[i])
				continue
			}
			if r == closing {
				closed = true
				break
			}
			b.WriteRune(r)
		}
		if !closed {
			return nil, fmt.Errorf("%w: unterminated quote", ErrInvalidCommand)
		}
		tokens = append(tokens, b.String())
	}
	return tokens, nil
}

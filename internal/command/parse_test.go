package command

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Xausdorf/openpoll/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Command
	}{
		{
			name: "simple",
			text: `"Color?" "Red" "Green"`,
			want: Command{Question: "Color?", Options: []string{"Red", "Green"}},
		},
		{
			name: "single quotes",
			text: `'Lunch?' 'Pizza' 'Sushi'`,
			want: Command{Question: "Lunch?", Options: []string{"Pizza", "Sushi"}},
		},
		{
			name: "curly quotes",
			text: `“Lunch?” “Pizza” “Sushi”`,
			want: Command{Question: "Lunch?", Options: []string{"Pizza", "Sushi"}},
		},
		{
			name: "first quote wins",
			text: `"It's late?" "Don't" "Yes"`,
			want: Command{Question: "It's late?", Options: []string{"Don't", "Yes"}},
		},
		{
			name: "escaped quote",
			text: `"Say" "the \"word\"" "nothing"`,
			want: Command{Question: "Say", Options: []string{`the "word"`, "nothing"}},
		},
		{
			name: "all keywords any order",
			text: `hidden limit 2 anonymous "Q" "A" "B" "C"`,
			want: Command{
				Question: "Q",
				Options:  []string{"A", "B", "C"},
				Settings: domain.Settings{Anonymous: true, Limited: true, Limit: 2, Hidden: true},
			},
		},
		{
			name: "limit without number",
			text: `limit anonymous "Q" "A" "B"`,
			want: Command{
				Question: "Q",
				Options:  []string{"A", "B"},
				Settings: domain.Settings{Anonymous: true, Limited: true, Limit: 1},
			},
		},
		{
			name: "second limit ignored",
			text: `limit 3 limit 5 "Q" "A"`,
			want: Command{
				Question: "Q",
				Options:  []string{"A"},
				Settings: domain.Settings{Limited: true, Limit: 3},
			},
		},
		{
			name: "keywords after question ignored",
			text: `"Q" anonymous "A"`,
			want: Command{Question: "Q", Options: []string{"A"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.text, err)
			}
			if !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, *got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, text := range []string{
		``,
		`anonymous`,
		`"Only a question"`,
		`"Q" "unterminated`,
		`"" "A"`,
		`"Q" " "`,
	} {
		if _, err := Parse(text); !errors.Is(err, ErrInvalidCommand) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidCommand", text, err)
		}
	}
}

func TestIsHelp(t *testing.T) {
	if !IsHelp("  help ") {
		t.Error("expected help")
	}
	if IsHelp(`"help" "a"`) {
		t.Error("quoted help is a poll")
	}
}

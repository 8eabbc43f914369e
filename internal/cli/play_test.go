package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name string
		line string
		want input
	}{
		{"first choice", "1\n", input{kind: inputChoice, index: 0}},
		{"last choice", "3\n", input{kind: inputChoice, index: 2}},
		{"out of range high", "4\n", input{kind: inputInvalid}},
		{"out of range low", "0\n", input{kind: inputInvalid}},
		{"not a number", "left\n", input{kind: inputInvalid}},
		{"quit short", "q\n", input{kind: inputQuit}},
		{"quit long", "QUIT\n", input{kind: inputQuit}},
		{"exit", "exit\n", input{kind: inputQuit}},
		{"back short", "b\n", input{kind: inputBack}},
		{"back long", "Back\n", input{kind: inputBack}},
		{"whitespace", "  2  \n", input{kind: inputChoice, index: 1}},
		{"empty", "\n", input{kind: inputInvalid}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseInput(tt.line, 3))
		})
	}
}

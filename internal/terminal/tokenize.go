package terminal

import (
	"errors"
	"fmt"

	"github.com/google/shlex"
)

// ErrUnterminatedQuote is returned for input with an unclosed quote or a
// trailing escape.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Tokenize splits line with shell quoting rules: quotes group words into one
// token and a backslash escapes the next character. A token starting with #
// begins a comment.
func Tokenize(line string) ([]string, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnterminatedQuote, err)
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	return tokens, nil
}

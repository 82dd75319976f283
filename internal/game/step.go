package game

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/calkeo/calkeo-terminal-sub000/internal/style"
)

// Well-known steps shared by every game.
const (
	StepDifficulty = 2 // awaiting a difficulty choice
	StepPlay       = 3 // awaiting a move, guess or word
	StepGameOver   = 4 // awaiting a rematch answer
)

// Execute drives one step of cmd. With no tokens on a fresh interaction it
// prints the opening prompt; otherwise it routes the tokens to the handler
// registered for the current step.
func Execute(cmd Command, in *Interaction, tokens []string) (Response, error) {
	step := in.Step()
	logger := log.With().Str("command", cmd.Name()).Int("step", step).Logger()

	var (
		resp Response
		err  error
	)

	switch {
	case len(tokens) == 0 && step == FirstStep:
		resp, err = cmd.Begin(in)
	case step > FirstStep && isQuit(tokens):
		in.Reset()
		resp = Done(Info(fmt.Sprintf("%s ended. Thanks for playing!", cmd.Name())))
	default:
		handler, ok := cmd.Steps()[step]
		if !ok {
			logger.Warn().Msg("No handler registered for step")
			return Done(Error(fmt.Sprintf("Invalid step %d for %s", step, cmd.Name()))), nil
		}
		resp, err = handler(in, tokens)
	}

	if err != nil {
		logger.Error().Err(err).Msg("Step failed")
		return Response{}, err
	}
	if err := in.Err(); err != nil {
		logger.Error().Err(err).Msg("Failed to store interaction state")
		return Response{}, err
	}

	logger.Debug().Int("next_step", in.Step()).Bool("interactive", resp.Interactive).Msg("Step handled")
	return resp, nil
}

func isQuit(tokens []string) bool {
	return len(tokens) == 1 && (strings.EqualFold(tokens[0], "quit") || strings.EqualFold(tokens[0], "exit"))
}

// Difficulty selects the computer's strategy, and for the word games its
// vocabulary. It is chosen once at setup and never changes mid-game.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts a name, its initial, or a menu number.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "e", "easy":
		return Easy, true
	case "2", "m", "medium":
		return Medium, true
	case "3", "h", "hard":
		return Hard, true
	}
	return "", false
}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// DifficultyPrompt lists the tiers under a title.
func DifficultyPrompt(title string) []style.Line {
	return []style.Line{
		Success(title),
		Info("Choose a difficulty:"),
		Text("  1) easy"),
		Text("  2) medium"),
		Text("  3) hard"),
	}
}

// BeginWithDifficulty prints the difficulty menu and waits for a choice.
func BeginWithDifficulty(in *Interaction, title string) (Response, error) {
	in.Advance(StepDifficulty)
	return Prompt(DifficultyPrompt(title)...), nil
}

// ChooseDifficulty parses a difficulty from args and calls start with it.
// Invalid input re-prompts without touching state.
func ChooseDifficulty(in *Interaction, args []string, title string, start func(Difficulty) (Response, error)) (Response, error) {
	if len(args) == 1 {
		if d, ok := ParseDifficulty(args[0]); ok {
			return start(d)
		}
	}

	lines := DifficultyPrompt(title)
	lines = append(lines, Error("Please enter easy, medium or hard (or 1, 2, 3)."))
	return Prompt(lines...), nil
}

// RematchPrompt is appended to the last board of a finished game.
func RematchPrompt() style.Line {
	return Info("Play again? (y/n)")
}

// Rematch handles the game-over step. "y" restarts through cmd.Begin, "n"
// clears the game and ends the interaction.
func Rematch(cmd Command, in *Interaction, args []string) (Response, error) {
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "y", "yes":
			in.Reset()
			return cmd.Begin(in)
		case "n", "no":
			in.Reset()
			return Done(Info("Thanks for playing!")), nil
		}
	}
	return Prompt(RematchPrompt(), Error("Please answer y or n.")), nil
}

// DefaultNodeBudget bounds a single search when no budget is configured.
const DefaultNodeBudget = 250000

// Budget caps how many positions a search may visit within one request.
type Budget struct {
	limit int
	used  int
}

// NewBudget creates a budget of limit nodes; limit <= 0 uses
// DefaultNodeBudget.
func NewBudget(limit int) *Budget {
	if limit <= 0 {
		limit = DefaultNodeBudget
	}
	return &Budget{limit: limit}
}

// Spend consumes one node and reports whether the search may continue.
func (b *Budget) Spend() bool {
	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

// Exhausted reports whether the budget is used up.
func (b *Budget) Exhausted() bool {
	return b.used >= b.limit
}

// Used returns the number of nodes spent.
func (b *Budget) Used() int {
	return b.used
}

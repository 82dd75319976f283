// Package game defines the step protocol shared by every turn-based game and
// the registry the terminal uses to look games up.
//
// A game never keeps state between calls. Everything it needs lives in an
// Interaction, which reads and writes the user's session under the game's
// own namespace, so one request drives exactly one step transition.
package game

import (
	"github.com/calkeo/calkeo-terminal-sub000/internal/style"
)

// Response is what one step returns to the caller.
type Response struct {
	Lines []style.Line

	// Interactive asks the caller to route the next line of input back to
	// the same command instead of parsing it as a new command name.
	Interactive bool
}

// StepFunc handles one step of a game. It validates args, mutates state
// through in, and returns the output. The returned error is reserved for
// resource failures; invalid input is reported as an error line.
type StepFunc func(in *Interaction, args []string) (Response, error)

// Command defines the interface that all turn-based games must implement.
// Adding a new game only requires implementing this interface and
// registering it.
type Command interface {
	// Name returns the command that starts the game (e.g., "chess")
	Name() string

	// Description returns a one-line summary for the help listing
	Description() string

	// Keys returns the session keys the game owns, cleared on reset
	Keys() []string

	// Begin prints the initial prompt when the game starts without input
	Begin(in *Interaction) (Response, error)

	// Steps returns the step-number to handler table
	Steps() map[int]StepFunc
}

// Rand is the source of randomness every game draws from.
// *math/rand.Rand satisfies it; tests supply seeded or scripted sources.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Prompt builds an interactive response.
func Prompt(lines ...style.Line) Response {
	return Response{Lines: lines, Interactive: true}
}

// Done builds the final response of a finished interaction.
func Done(lines ...style.Line) Response {
	return Response{Lines: lines}
}

// Line constructors

func Text(text string) style.Line    { return style.Line{Kind: style.Normal, Text: text} }
func Info(text string) style.Line    { return style.Line{Kind: style.Info, Text: text} }
func Warn(text string) style.Line    { return style.Line{Kind: style.Warning, Text: text} }
func Error(text string) style.Line   { return style.Line{Kind: style.Error, Text: text} }
func Success(text string) style.Line { return style.Line{Kind: style.Success, Text: text} }
func Value(text string) style.Line   { return style.Line{Kind: style.Value, Text: text} }

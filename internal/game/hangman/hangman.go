// Package hangman implements the word guessing game.
package hangman

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
	"github.com/calkeo/calkeo-terminal-sub000/internal/style"
	"github.com/calkeo/calkeo-terminal-sub000/internal/words"
)

// MaxWrongGuesses is the number of misses allowed per word.
const MaxWrongGuesses = 6

// Errors for guesses
var (
	ErrInvalidLetter  = errors.New("guess a single letter a-z")
	ErrAlreadyGuessed = errors.New("you already guessed that letter")
)

const title = "Hangman"

const (
	keyWord       = "word"
	keyGuessed    = "guessed"
	keyRemaining  = "remaining"
	keyDifficulty = "difficulty"
)

// lengths are the word lengths drawn for each difficulty.
var lengths = map[game.Difficulty][2]int{
	game.Easy:   {3, 5},
	game.Medium: {6, 8},
	game.Hard:   {9, 20},
}

// fallback is used when the dictionary has no word of the right length.
var fallback = map[game.Difficulty][]string{
	game.Easy:   {"cat", "dog", "tree", "fish", "house"},
	game.Medium: {"garden", "picture", "elephant", "journey", "blanket"},
	game.Hard:   {"adventure", "chocolate", "dangerous", "happiness"},
}

// State is everything stored between guesses.
type State struct {
	Word       string
	Guessed    []string
	Remaining  int
	Difficulty game.Difficulty
}

// Guess records letter. A letter not in the word costs one remaining guess.
func (st *State) Guess(letter string) (hit bool, err error) {
	letter = strings.ToLower(letter)
	if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'z' {
		return false, ErrInvalidLetter
	}
	for _, g := range st.Guessed {
		if g == letter {
			return false, ErrAlreadyGuessed
		}
	}

	st.Guessed = append(st.Guessed, letter)
	hit = strings.Contains(st.Word, letter)
	if !hit && st.Remaining > 0 {
		st.Remaining--
	}
	return hit, nil
}

// Won reports whether every distinct letter of the word was guessed.
func (st *State) Won() bool {
	for _, r := range st.Word {
		if !st.guessed(string(r)) {
			return false
		}
	}
	return true
}

// Lost reports whether no guesses remain.
func (st *State) Lost() bool {
	return st.Remaining <= 0 && !st.Won()
}

func (st *State) guessed(letter string) bool {
	for _, g := range st.Guessed {
		if g == letter {
			return true
		}
	}
	return false
}

// Masked returns the word with unguessed letters hidden.
func (st *State) Masked() string {
	parts := make([]string, 0, len(st.Word))
	for _, r := range st.Word {
		if st.guessed(string(r)) {
			parts = append(parts, string(r))
		} else {
			parts = append(parts, "_")
		}
	}
	return strings.Join(parts, " ")
}

// Game implements game.Command for hangman.
type Game struct {
	words  *words.Source
	source string
}

// Config holds configuration for the hangman game.
type Config struct {
	Words      *words.Source
	Dictionary string
}

// New creates a new Game. Without a word source the embedded dictionary is
// used.
func New(cfg *Config) *Game {
	g := &Game{source: words.EmbeddedSource}
	if cfg != nil {
		g.words = cfg.Words
		if cfg.Dictionary != "" {
			g.source = cfg.Dictionary
		}
	}
	if g.words == nil {
		g.words = words.NewSource(words.FileLoader{}, words.DefaultCacheTTL)
	}
	return g
}

func (g *Game) Name() string { return "hangman" }

func (g *Game) Description() string {
	return "Guess the hidden word one letter at a time."
}

func (g *Game) Keys() []string {
	return []string{keyWord, keyGuessed, keyRemaining, keyDifficulty}
}

func (g *Game) Begin(in *game.Interaction) (game.Response, error) {
	return game.BeginWithDifficulty(in, title)
}

func (g *Game) Steps() map[int]game.StepFunc {
	return map[int]game.StepFunc{
		game.FirstStep:      g.chooseDifficulty,
		game.StepDifficulty: g.chooseDifficulty,
		game.StepPlay:       g.guess,
		game.StepGameOver: func(in *game.Interaction, args []string) (game.Response, error) {
			return game.Rematch(g, in, args)
		},
	}
}

func (g *Game) chooseDifficulty(in *game.Interaction, args []string) (game.Response, error) {
	return game.ChooseDifficulty(in, args, title, func(d game.Difficulty) (game.Response, error) {
		word, err := g.pickWord(in, d)
		if err != nil {
			return game.Response{}, err
		}

		st := State{Word: word, Guessed: []string{}, Remaining: MaxWrongGuesses, Difficulty: d}
		save(in, st)
		in.Advance(game.StepPlay)

		lines := []style.Line{game.Info(fmt.Sprintf("Difficulty: %s. The word has %d letters.", d, len(word)))}
		lines = append(lines, stateLines(st)...)
		lines = append(lines, guessPrompt())
		return game.Prompt(lines...), nil
	})
}

// pickWord draws a word of the difficulty's length range. A dictionary that
// cannot be loaded is returned as an error.
func (g *Game) pickWord(in *game.Interaction, d game.Difficulty) (string, error) {
	dict, err := g.words.Partition(in.Context(), g.source, words.ByLength)
	if err != nil {
		return "", fmt.Errorf("hangman: %w", err)
	}

	span := lengths[d]
	keys := make([]string, 0, span[1]-span[0]+1)
	for n := span[0]; n <= span[1]; n++ {
		keys = append(keys, words.LengthKey(n))
	}
	if w, ok := dict.Random(in.Rand(), keys, nil); ok {
		return w, nil
	}

	list := fallback[d]
	return list[in.Rand().Intn(len(list))], nil
}

func (g *Game) guess(in *game.Interaction, args []string) (game.Response, error) {
	st, ok := load(in)
	if !ok {
		in.Reset()
		return game.Done(game.Error("Game state was lost. Start a new game.")), nil
	}

	if len(args) != 1 {
		return reprompt(st, ErrInvalidLetter), nil
	}
	hit, err := st.Guess(args[0])
	if err != nil {
		return reprompt(st, err), nil
	}

	letter := strings.ToLower(args[0])
	var lines []style.Line
	if hit {
		lines = append(lines, game.Success("Yes! '"+letter+"' is in the word."))
	} else {
		lines = append(lines, game.Warn("No '"+letter+"'. "+strconv.Itoa(st.Remaining)+" guesses left."))
	}

	save(in, st)
	switch {
	case st.Won():
		in.Advance(game.StepGameOver)
		lines = append(lines, stateLines(st)...)
		lines = append(lines, game.Success("You win! The word was "+st.Word+"."), game.RematchPrompt())
	case st.Lost():
		in.Advance(game.StepGameOver)
		lines = append(lines, stateLines(st)...)
		lines = append(lines, game.Error("You lose. The word was "+st.Word+"."), game.RematchPrompt())
	default:
		lines = append(lines, stateLines(st)...)
		lines = append(lines, guessPrompt())
	}
	return game.Prompt(lines...), nil
}

func reprompt(st State, err error) game.Response {
	lines := stateLines(st)
	lines = append(lines, guessPrompt(), game.Error(err.Error()))
	return game.Prompt(lines...)
}

func guessPrompt() style.Line {
	return game.Info("Guess a letter:")
}

func stateLines(st State) []style.Line {
	var lines []style.Line
	for _, row := range gallows[MaxWrongGuesses-st.Remaining] {
		lines = append(lines, game.Text(row))
	}
	lines = append(lines, game.Value(st.Masked()))
	if len(st.Guessed) > 0 {
		guessed := append([]string(nil), st.Guessed...)
		sort.Strings(guessed)
		lines = append(lines, game.Info("Guessed: "+strings.Join(guessed, " ")))
	}
	return lines
}

var gallows = [MaxWrongGuesses + 1][]string{
	{"  +---+", "  |   |", "      |", "      |", "      |", "========"},
	{"  +---+", "  |   |", "  O   |", "      |", "      |", "========"},
	{"  +---+", "  |   |", "  O   |", "  |   |", "      |", "========"},
	{"  +---+", "  |   |", "  O   |", " /|   |", "      |", "========"},
	{"  +---+", "  |   |", "  O   |", " /|\\  |", "      |", "========"},
	{"  +---+", "  |   |", "  O   |", " /|\\  |", " /    |", "========"},
	{"  +---+", "  |   |", "  O   |", " /|\\  |", " / \\  |", "========"},
}

func load(in *game.Interaction) (State, bool) {
	var st State
	if !in.Value(keyWord, &st.Word) || st.Word == "" {
		return st, false
	}
	in.Value(keyGuessed, &st.Guessed)
	st.Remaining = MaxWrongGuesses
	in.Value(keyRemaining, &st.Remaining)
	in.Value(keyDifficulty, &st.Difficulty)
	st.Remaining = max(0, min(st.Remaining, MaxWrongGuesses))
	return st, true
}

func save(in *game.Interaction, st State) {
	in.SetValue(keyWord, st.Word)
	in.SetValue(keyGuessed, st.Guessed)
	in.SetValue(keyRemaining, st.Remaining)
	in.SetValue(keyDifficulty, st.Difficulty)
}

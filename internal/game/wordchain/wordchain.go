// Package wordchain implements the word-chain game: each word must start with
// the last letter of the previous one.
package wordchain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
	"github.com/calkeo/calkeo-terminal-sub000/internal/style"
	"github.com/calkeo/calkeo-terminal-sub000/internal/words"
)

// MinWordLength is the shortest word either side may play.
const MinWordLength = 3

// Errors for submitted words
var (
	ErrTooShort    = errors.New("words must be at least 3 letters long")
	ErrAlreadyUsed = errors.New("that word has already been used")
	ErrWrongLetter = errors.New("word does not start with the right letter")
	ErrUnknownWord = errors.New("that word is not in the dictionary")
)

const title = "Word Chain"

const (
	keyChain      = "chain"
	keyDifficulty = "difficulty"
)

// rarestEndings are preferred by the hard computer so the player has to
// find a word starting with an uncommon letter.
const rarestEndings = "qxzjv"

// Rules are the per-difficulty limits.
type Rules struct {
	// MaxComputerLength bounds the computer's words; 0 means no bound.
	MaxComputerLength int
	// Target is the chain length at which the player wins.
	Target int
	// PreferRare makes the computer favour words ending in rare letters.
	PreferRare bool
}

var rules = map[game.Difficulty]Rules{
	game.Easy:   {MaxComputerLength: 5, Target: 10},
	game.Medium: {MaxComputerLength: 7, Target: 16},
	game.Hard:   {Target: 24, PreferRare: true},
}

// RulesFor returns the limits for d.
func RulesFor(d game.Difficulty) Rules {
	if r, ok := rules[d]; ok {
		return r
	}
	return rules[game.Easy]
}

// State is everything stored between turns.
type State struct {
	Chain      []string
	Difficulty game.Difficulty
}

// Last returns the most recent word, or "" when the chain is empty.
func (st *State) Last() string {
	if len(st.Chain) == 0 {
		return ""
	}
	return st.Chain[len(st.Chain)-1]
}

// Used reports whether word was already played, ignoring case.
func (st *State) Used(word string) bool {
	word = strings.ToLower(word)
	for _, w := range st.Chain {
		if w == word {
			return true
		}
	}
	return false
}

// Validate checks word against the chain and dict, in the order: length,
// reuse, starting letter, dictionary.
func (st *State) Validate(word string, dict *words.Dictionary) error {
	word = strings.ToLower(word)
	if len(word) < MinWordLength {
		return ErrTooShort
	}
	if st.Used(word) {
		return ErrAlreadyUsed
	}
	if last := st.Last(); last != "" && word[0] != last[len(last)-1] {
		return fmt.Errorf("%w: it must start with %q", ErrWrongLetter, last[len(last)-1:])
	}
	if !dict.Contains(word) {
		return ErrUnknownWord
	}
	return nil
}

// Reply picks the computer's word starting with the last letter of the
// chain. It returns false when no eligible word exists.
func Reply(st *State, dict *words.Dictionary, r words.Rand) (string, bool) {
	last := st.Last()
	if last == "" {
		return "", false
	}
	rl := RulesFor(st.Difficulty)
	keys := []string{last[len(last)-1:]}

	eligible := func(w string) bool {
		if len(w) < MinWordLength {
			return false
		}
		if rl.MaxComputerLength > 0 && len(w) > rl.MaxComputerLength {
			return false
		}
		return !st.Used(w)
	}

	if rl.PreferRare {
		rare := func(w string) bool {
			return eligible(w) && strings.IndexByte(rarestEndings, w[len(w)-1]) >= 0
		}
		if w, ok := dict.Random(r, keys, rare); ok {
			return w, true
		}
	}
	return dict.Random(r, keys, eligible)
}

// Game implements game.Command for word-chain.
type Game struct {
	words  *words.Source
	source string
}

// Config holds configuration for the word-chain game.
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

func (g *Game) Name() string { return "wordchain" }

func (g *Game) Description() string {
	return "Take turns naming words that start with the last letter of the previous word."
}

func (g *Game) Keys() []string {
	return []string{keyChain, keyDifficulty}
}

func (g *Game) Begin(in *game.Interaction) (game.Response, error) {
	return game.BeginWithDifficulty(in, title)
}

func (g *Game) Steps() map[int]game.StepFunc {
	return map[int]game.StepFunc{
		game.FirstStep:      g.chooseDifficulty,
		game.StepDifficulty: g.chooseDifficulty,
		game.StepPlay:       g.play,
		game.StepGameOver: func(in *game.Interaction, args []string) (game.Response, error) {
			return game.Rematch(g, in, args)
		},
	}
}

func (g *Game) chooseDifficulty(in *game.Interaction, args []string) (game.Response, error) {
	return game.ChooseDifficulty(in, args, title, func(d game.Difficulty) (game.Response, error) {
		if _, err := g.dictionary(in); err != nil {
			return game.Response{}, err
		}

		st := State{Chain: []string{}, Difficulty: d}
		save(in, st)
		in.Advance(game.StepPlay)

		rl := RulesFor(d)
		return game.Prompt(
			game.Info(fmt.Sprintf("Difficulty: %s. Reach a chain of %d words to win.", d, rl.Target)),
			game.Text("Type 'pass' to give up."),
			game.Info("Say any word to start:"),
		), nil
	})
}

func (g *Game) dictionary(in *game.Interaction) (*words.Dictionary, error) {
	dict, err := g.words.Partition(in.Context(), g.source, words.ByFirstLetter)
	if err != nil {
		return nil, fmt.Errorf("wordchain: %w", err)
	}
	return dict, nil
}

func (g *Game) play(in *game.Interaction, args []string) (game.Response, error) {
	st, ok := load(in)
	if !ok {
		in.Reset()
		return game.Done(game.Error("Game state was lost. Start a new game.")), nil
	}

	if len(args) != 1 {
		return reprompt(st, errors.New("enter a single word")), nil
	}
	if strings.EqualFold(args[0], "pass") {
		return g.finish(in, st, nil, game.Error(fmt.Sprintf("You passed. The chain reached %d words.", len(st.Chain))))
	}

	dict, err := g.dictionary(in)
	if err != nil {
		return game.Response{}, err
	}
	word := strings.ToLower(args[0])
	if err := st.Validate(word, dict); err != nil {
		return reprompt(st, err), nil
	}

	st.Chain = append(st.Chain, word)
	lines := []style.Line{game.Info("You said " + word + ".")}
	target := RulesFor(st.Difficulty).Target
	if len(st.Chain) >= target {
		return g.finish(in, st, lines, game.Success(fmt.Sprintf("Chain of %d reached. You win!", target)))
	}

	reply, ok := Reply(&st, dict, in.Rand())
	if !ok {
		return g.finish(in, st, lines, game.Success(fmt.Sprintf("The computer can't think of a word starting with %q. You win!", word[len(word)-1:])))
	}
	st.Chain = append(st.Chain, reply)
	lines = append(lines, game.Value("Computer: "+reply))
	if len(st.Chain) >= target {
		return g.finish(in, st, lines, game.Success(fmt.Sprintf("Chain of %d reached. You win!", target)))
	}

	save(in, st)
	lines = append(lines, chainLine(st), nextPrompt(st))
	return game.Prompt(lines...), nil
}

func (g *Game) finish(in *game.Interaction, st State, lines []style.Line, result style.Line) (game.Response, error) {
	save(in, st)
	in.Advance(game.StepGameOver)
	if len(st.Chain) > 0 {
		lines = append(lines, chainLine(st))
	}
	lines = append(lines, result, game.RematchPrompt())
	return game.Prompt(lines...), nil
}

func reprompt(st State, err error) game.Response {
	var lines []style.Line
	if len(st.Chain) > 0 {
		lines = append(lines, chainLine(st))
	}
	lines = append(lines, nextPrompt(st), game.Error(err.Error()))
	return game.Prompt(lines...)
}

func chainLine(st State) style.Line {
	return game.Text("Chain (" + fmt.Sprint(len(st.Chain)) + "): " + strings.Join(st.Chain, " → "))
}

func nextPrompt(st State) style.Line {
	last := st.Last()
	if last == "" {
		return game.Info("Say any word to start:")
	}
	return game.Info(fmt.Sprintf("Your word must start with %q:", last[len(last)-1:]))
}

func load(in *game.Interaction) (State, bool) {
	var st State
	if !in.Value(keyDifficulty, &st.Difficulty) {
		return st, false
	}
	in.Value(keyChain, &st.Chain)
	return st, true
}

func save(in *game.Interaction, st State) {
	in.SetValue(keyChain, st.Chain)
	in.SetValue(keyDifficulty, st.Difficulty)
}

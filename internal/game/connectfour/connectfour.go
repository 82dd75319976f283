package connectfour

import (
	"errors"
	"strconv"

	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
	"github.com/calkeo/calkeo-terminal-sub000/internal/style"
)

// Errors for connect-four moves
var (
	ErrOutOfRange = errors.New("column must be between 1 and 7")
	ErrColumnFull = errors.New("that column is full")
	ErrNotTurn    = errors.New("it is not that player's turn")
)

const title = "Connect Four"

const (
	keyBoard      = "board"
	keyDifficulty = "difficulty"
	keyPlayer     = "player"
)

// State is everything stored between turns.
type State struct {
	Board      Board
	Difficulty game.Difficulty
	Player     Cell
}

// Apply drops a token for who in col and hands the turn to the opponent.
func (st *State) Apply(col int, who Cell) error {
	if st.Player != who {
		return ErrNotTurn
	}
	if _, err := st.Board.Drop(col, who); err != nil {
		return err
	}
	st.Player = who.Opponent()
	return nil
}

// Game implements game.Command for connect-four.
type Game struct {
	searchNodes int
}

// Config holds configuration for the connect-four game.
type Config struct {
	SearchNodes int
}

// New creates a new Game.
func New(cfg *Config) *Game {
	g := &Game{}
	if cfg != nil {
		g.searchNodes = cfg.SearchNodes
	}
	return g
}

func (g *Game) Name() string { return "connectfour" }

func (g *Game) Description() string {
	return "Drop tokens and connect four in a row."
}

func (g *Game) Keys() []string {
	return []string{keyBoard, keyDifficulty, keyPlayer}
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
		st := State{Board: NewBoard(), Difficulty: d, Player: Human}
		save(in, st)
		in.Advance(game.StepPlay)

		lines := []style.Line{game.Info("Difficulty: " + string(d) + ". You are X.")}
		lines = append(lines, boardLines(st.Board)...)
		lines = append(lines, movePrompt())
		return game.Prompt(lines...), nil
	})
}

// play applies the human drop, then the computer reply. A full board is
// checked before a win on both moves.
func (g *Game) play(in *game.Interaction, args []string) (game.Response, error) {
	st, ok := load(in)
	if !ok {
		in.Reset()
		return game.Done(game.Error("Game state was lost. Start a new game.")), nil
	}

	col, err := parseColumn(args)
	if err == nil {
		err = st.Apply(col, Human)
	}
	if err != nil {
		lines := boardLines(st.Board)
		lines = append(lines, movePrompt(), game.Error(err.Error()))
		return game.Prompt(lines...), nil
	}

	lines := []style.Line{game.Info("You dropped in column " + strconv.Itoa(col+1) + ".")}

	if Full(st.Board) {
		return g.finish(in, st, lines, game.Warn("It's a draw."))
	}
	if CheckWin(st.Board, Human) {
		return g.finish(in, st, lines, game.Success("You win!"))
	}

	budget := game.NewBudget(g.searchNodes)
	move, _ := ChooseMove(st.Board, st.Difficulty, in.Rand(), budget)
	if err := st.Apply(move, Computer); err != nil {
		return game.Response{}, err
	}
	lines = append(lines, game.Info("Computer dropped in column "+strconv.Itoa(move+1)+"."))

	if Full(st.Board) {
		return g.finish(in, st, lines, game.Warn("It's a draw."))
	}
	if CheckWin(st.Board, Computer) {
		return g.finish(in, st, lines, game.Error("The computer wins."))
	}

	save(in, st)
	lines = append(lines, boardLines(st.Board)...)
	lines = append(lines, movePrompt())
	return game.Prompt(lines...), nil
}

func (g *Game) finish(in *game.Interaction, st State, lines []style.Line, result style.Line) (game.Response, error) {
	save(in, st)
	in.Advance(game.StepGameOver)
	lines = append(lines, boardLines(st.Board)...)
	lines = append(lines, result, game.RematchPrompt())
	return game.Prompt(lines...), nil
}

func parseColumn(args []string) (int, error) {
	if len(args) != 1 {
		return 0, ErrOutOfRange
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > Columns {
		return 0, ErrOutOfRange
	}
	return n - 1, nil
}

func movePrompt() style.Line {
	return game.Info("Your move (column 1-7):")
}

func boardLines(b Board) []style.Line {
	rows := Render(b)
	out := make([]style.Line, 0, len(rows))
	for _, r := range rows {
		out = append(out, game.Value(r))
	}
	return out
}

func load(in *game.Interaction) (State, bool) {
	var st State
	if !in.Value(keyBoard, &st.Board) {
		return st, false
	}
	in.Value(keyDifficulty, &st.Difficulty)
	st.Player = Human
	in.Value(keyPlayer, &st.Player)
	return st, true
}

func save(in *game.Interaction, st State) {
	in.SetValue(keyBoard, st.Board)
	in.SetValue(keyDifficulty, st.Difficulty)
	in.SetValue(keyPlayer, st.Player)
}

package chess

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
	"github.com/calkeo/calkeo-terminal-sub000/internal/style"
)

// Errors for chess moves
var (
	ErrBadSquare   = errors.New("invalid square")
	ErrBadFormat   = errors.New("enter a move like e2 e4")
	ErrNoPiece     = errors.New("you have no piece on that square")
	ErrIllegalMove = errors.New("that piece cannot move there")
	ErrNotTurn     = errors.New("it is not that side's turn")
)

const title = "Chess"

const (
	keyBoard      = "board"
	keyDifficulty = "difficulty"
	keyPlayer     = "player"
)

// State is everything stored between turns.
type State struct {
	Board      Board
	Difficulty game.Difficulty
	Player     Color
}

// Apply plays m for who and hands the turn to the opponent.
func (st *State) Apply(m Move, who Color) (Piece, error) {
	if st.Player != who {
		return Piece{}, ErrNotTurn
	}
	if p := st.Board.At(m.From); p.Empty() || p.Color != who {
		return Piece{}, ErrNoPiece
	}
	if !IsLegal(&st.Board, m, who) {
		return Piece{}, ErrIllegalMove
	}
	captured := st.Board.Move(m)
	st.Player = who.Opponent()
	return captured, nil
}

// Game implements game.Command for chess. The human plays white.
type Game struct {
	searchNodes int
}

// Config holds configuration for the chess game.
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

func (g *Game) Name() string { return "chess" }

func (g *Game) Description() string {
	return "Play white against the computer. Attack the king to win."
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
		st := State{Board: NewBoard(), Difficulty: d, Player: White}
		save(in, st)
		in.Advance(game.StepPlay)

		lines := []style.Line{
			game.Info("Difficulty: " + string(d) + ". You are white (uppercase)."),
			game.Text("Type 'board' to redraw or 'resign' to give up."),
		}
		lines = append(lines, boardLines(st.Board)...)
		lines = append(lines, movePrompt())
		return game.Prompt(lines...), nil
	})
}

func (g *Game) play(in *game.Interaction, args []string) (game.Response, error) {
	st, ok := load(in)
	if !ok {
		in.Reset()
		return game.Done(game.Error("Game state was lost. Start a new game.")), nil
	}

	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "board":
			lines := boardLines(st.Board)
			return game.Prompt(append(lines, movePrompt())...), nil
		case "resign":
			return g.finish(in, st, nil, game.Error("You resigned. The computer wins."))
		}
	}

	m, err := ParseMove(args)
	var captured Piece
	if err == nil {
		captured, err = st.Apply(m, White)
	}
	if err != nil {
		lines := boardLines(st.Board)
		lines = append(lines, movePrompt(), game.Error(err.Error()))
		return game.Prompt(lines...), nil
	}

	lines := []style.Line{game.Info(describe("You moved", m, captured))}
	if InCheck(&st.Board, Black) {
		return g.finish(in, st, lines, game.Success("Checkmate! You win!"))
	}

	reply, ok := ChooseMove(st.Board, Black, st.Difficulty, in.Rand(), game.NewBudget(g.searchNodes))
	if !ok {
		return g.finish(in, st, lines, game.Warn("The computer has no moves. It's a draw."))
	}
	captured, err = st.Apply(reply, Black)
	if err != nil {
		return game.Response{}, fmt.Errorf("computer move %s: %w", reply, err)
	}
	lines = append(lines, game.Info(describe("Computer moved", reply, captured)))

	if InCheck(&st.Board, White) {
		return g.finish(in, st, lines, game.Error("Checkmate! The computer wins."))
	}
	if len(AllMoves(&st.Board, White)) == 0 {
		return g.finish(in, st, lines, game.Warn("You have no moves. It's a draw."))
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

// ParseMove reads "e2 e4" or "e2e4".
func ParseMove(args []string) (Move, error) {
	var from, to string
	switch len(args) {
	case 1:
		if len(args[0]) != 4 {
			return Move{}, ErrBadFormat
		}
		from, to = args[0][:2], args[0][2:]
	case 2:
		from, to = args[0], args[1]
	default:
		return Move{}, ErrBadFormat
	}

	f, err := ParseSquare(from)
	if err != nil {
		return Move{}, ErrBadFormat
	}
	t, err := ParseSquare(to)
	if err != nil {
		return Move{}, ErrBadFormat
	}
	return Move{From: f, To: t}, nil
}

func describe(prefix string, m Move, captured Piece) string {
	s := prefix + " " + m.String()
	if !captured.Empty() {
		s += fmt.Sprintf(", capturing a %s", captured.Type)
	}
	return s + "."
}

func movePrompt() style.Line {
	return game.Info("Your move (e.g. e2 e4):")
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
	st.Player = White
	in.Value(keyPlayer, &st.Player)
	return st, true
}

func save(in *game.Interaction, st State) {
	in.SetValue(keyBoard, st.Board)
	in.SetValue(keyDifficulty, st.Difficulty)
	in.SetValue(keyPlayer, st.Player)
}

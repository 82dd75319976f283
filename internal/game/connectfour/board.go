// Package connectfour implements connect-four against a computer opponent.
package connectfour

import (
	"fmt"
	"strings"

	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
)

// Board dimensions
const (
	Rows    = 6
	Columns = 7
	connect = 4
)

// MaxSearchDepth caps the hard minimax search in plies.
const MaxSearchDepth = 5

// Cell is one slot of the grid.
type Cell byte

const (
	Empty    Cell = '.'
	Human    Cell = 'X'
	Computer Cell = 'O'
)

// Opponent returns the other player's token.
func (c Cell) Opponent() Cell {
	if c == Human {
		return Computer
	}
	return Human
}

// MarshalText stores a cell as its character.
func (c Cell) MarshalText() ([]byte, error) {
	return []byte{byte(c)}, nil
}

// UnmarshalText reads a cell from its character.
func (c *Cell) UnmarshalText(b []byte) error {
	if len(b) == 1 {
		switch Cell(b[0]) {
		case Empty, Human, Computer:
			*c = Cell(b[0])
			return nil
		}
	}
	return fmt.Errorf("invalid cell %q", b)
}

// Board is the grid, row 0 at the top. Tokens fall to the lowest empty row,
// so a cell above an empty cell is always empty.
type Board [Rows][Columns]Cell

// NewBoard returns an empty board.
func NewBoard() Board {
	var b Board
	for r := range b {
		for c := range b[r] {
			b[r][c] = Empty
		}
	}
	return b
}

// Drop places player in col and returns the row it landed on.
func (b *Board) Drop(col int, player Cell) (int, error) {
	if col < 0 || col >= Columns {
		return 0, ErrOutOfRange
	}
	for r := Rows - 1; r >= 0; r-- {
		if b[r][col] == Empty {
			b[r][col] = player
			return r, nil
		}
	}
	return 0, ErrColumnFull
}

// Available returns the columns that still have room, left to right.
func Available(b Board) []int {
	out := make([]int, 0, Columns)
	for c := 0; c < Columns; c++ {
		if b[0][c] == Empty {
			out = append(out, c)
		}
	}
	return out
}

// Full reports whether every column is full.
func Full(b Board) bool {
	return len(Available(b)) == 0
}

var directions = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal down-right
	{1, -1}, // diagonal down-left
}

// CheckWin reports whether player has four in a row in any direction.
func CheckWin(b Board, player Cell) bool {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			if b[r][c] != player {
				continue
			}
			for _, d := range directions {
				if run(b, r, c, d[0], d[1], player) {
					return true
				}
			}
		}
	}
	return false
}

func run(b Board, r, c, dr, dc int, player Cell) bool {
	for i := 1; i < connect; i++ {
		rr, cc := r+dr*i, c+dc*i
		if rr < 0 || rr >= Rows || cc < 0 || cc >= Columns || b[rr][cc] != player {
			return false
		}
	}
	return true
}

// Render draws the grid with a column header.
func Render(b Board) []string {
	rows := make([]string, 0, Rows+1)
	header := make([]string, Columns)
	for c := range header {
		header[c] = fmt.Sprintf("%d", c+1)
	}
	rows = append(rows, strings.Join(header, " "))
	for r := 0; r < Rows; r++ {
		cells := make([]string, Columns)
		for c := 0; c < Columns; c++ {
			cells[c] = string(b[r][c])
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return rows
}

// centerColumn is preferred by the medium strategy.
const centerColumn = Columns / 2

// searchOrder tries central columns first so alpha-beta cuts earlier.
var searchOrder = [Columns]int{3, 2, 4, 1, 5, 0, 6}

// ChooseMove picks the computer's column for the given difficulty.
// Returns false when the board is full.
func ChooseMove(b Board, d game.Difficulty, r game.Rand, budget *game.Budget) (int, bool) {
	open := Available(b)
	if len(open) == 0 {
		return 0, false
	}

	switch d {
	case game.Hard:
		return bestMove(b, budget), true
	case game.Medium:
		if c, ok := winningMove(b, Computer); ok {
			return c, true
		}
		if c, ok := winningMove(b, Human); ok {
			return c, true
		}
		if b[0][centerColumn] == Empty {
			return centerColumn, true
		}
	}
	return open[r.Intn(len(open))], true
}

// winningMove finds a column that completes four for player.
func winningMove(b Board, player Cell) (int, bool) {
	for _, c := range Available(b) {
		next := b
		if _, err := next.Drop(c, player); err != nil {
			continue
		}
		if CheckWin(next, player) {
			return c, true
		}
	}
	return 0, false
}

const winScore = 10

// bestMove runs depth-limited minimax with alpha-beta pruning. The first
// column in search order with the maximal score wins ties.
func bestMove(b Board, budget *game.Budget) int {
	best, bestScore := -1, -winScore-1
	alpha, beta := -winScore-1, winScore+1
	for _, c := range searchOrder {
		next := b
		if _, err := next.Drop(c, Computer); err != nil {
			continue
		}
		score := minimax(next, 1, false, alpha, beta, budget)
		if score > bestScore {
			best, bestScore = c, score
		}
		if score > alpha {
			alpha = score
		}
	}
	return best
}

// minimax scores b from the computer's point of view. Terminal wins are
// worth 10-depth; draws and positions at the depth cap score 0.
func minimax(b Board, depth int, maximizing bool, alpha, beta int, budget *game.Budget) int {
	if CheckWin(b, Computer) {
		return winScore - depth
	}
	if CheckWin(b, Human) {
		return depth - winScore
	}
	if depth >= MaxSearchDepth || Full(b) || !budget.Spend() {
		return 0
	}

	player := Human
	best := winScore + 1
	if maximizing {
		player = Computer
		best = -winScore - 1
	}

	for _, c := range searchOrder {
		next := b
		if _, err := next.Drop(c, player); err != nil {
			continue
		}
		score := minimax(next, depth+1, !maximizing, alpha, beta, budget)
		if maximizing {
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if score < best {
				best = score
			}
			if best < beta {
				beta = best
			}
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

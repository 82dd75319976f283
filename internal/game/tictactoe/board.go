// Package tictactoe implements tic-tac-toe against a computer opponent.
package tictactoe

import (
	"fmt"
	"strings"

	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
)

// Cell is one square of the board.
type Cell byte

const (
	Empty    Cell = ' '
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
	if len(b) != 1 {
		return fmt.Errorf("invalid cell %q", b)
	}
	switch Cell(b[0]) {
	case Empty, Human, Computer:
		*c = Cell(b[0])
		return nil
	}
	return fmt.Errorf("invalid cell %q", b)
}

// Size is the number of cells.
const Size = 9

// Board is the flat 3x3 grid, index 0 top-left.
type Board [Size]Cell

// NewBoard returns an empty board.
func NewBoard() Board {
	var b Board
	for i := range b {
		b[i] = Empty
	}
	return b
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// CheckWin reports whether player owns a full row, column or diagonal.
func CheckWin(b Board, player Cell) bool {
	for _, l := range lines {
		if b[l[0]] == player && b[l[1]] == player && b[l[2]] == player {
			return true
		}
	}
	return false
}

// Full reports whether no empty cell remains.
func Full(b Board) bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Available returns the empty cell indexes in ascending order.
func Available(b Board) []int {
	out := make([]int, 0, Size)
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// Play places player at index i.
func (b *Board) Play(i int, player Cell) error {
	if i < 0 || i >= Size {
		return ErrOutOfRange
	}
	if b[i] != Empty {
		return ErrOccupied
	}
	b[i] = player
	return nil
}

// Render draws the board with position numbers in empty cells.
func Render(b Board) []string {
	rows := make([]string, 0, 5)
	for r := 0; r < 3; r++ {
		cells := make([]string, 3)
		for c := 0; c < 3; c++ {
			i := r*3 + c
			if b[i] == Empty {
				cells[c] = fmt.Sprintf("%d", i+1)
			} else {
				cells[c] = string(b[i])
			}
		}
		rows = append(rows, " "+strings.Join(cells, " | "))
		if r < 2 {
			rows = append(rows, "---+---+---")
		}
	}
	return rows
}

// ChooseMove picks the computer's cell for the given difficulty.
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
		if i, ok := winningMove(b, Computer); ok {
			return i, true
		}
		if i, ok := winningMove(b, Human); ok {
			return i, true
		}
		if b[4] == Empty {
			return 4, true
		}
	}
	return open[r.Intn(len(open))], true
}

// winningMove finds a cell that completes a line for player.
func winningMove(b Board, player Cell) (int, bool) {
	for _, i := range Available(b) {
		b[i] = player
		won := CheckWin(b, player)
		b[i] = Empty
		if won {
			return i, true
		}
	}
	return 0, false
}

const winScore = 10

// bestMove runs minimax with the computer maximizing. The first cell with
// the maximal score wins ties.
func bestMove(b Board, budget *game.Budget) int {
	best, bestScore := -1, -winScore-1
	for _, i := range Available(b) {
		b[i] = Computer
		score := minimax(b, 1, false, budget)
		b[i] = Empty
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// minimax scores b from the computer's point of view. Wins are worth
// 10-depth so faster wins and slower losses are preferred.
func minimax(b Board, depth int, maximizing bool, budget *game.Budget) int {
	if CheckWin(b, Computer) {
		return winScore - depth
	}
	if CheckWin(b, Human) {
		return depth - winScore
	}
	if Full(b) || !budget.Spend() {
		return 0
	}

	if maximizing {
		best := -winScore - 1
		for _, i := range Available(b) {
			b[i] = Computer
			if s := minimax(b, depth+1, false, budget); s > best {
				best = s
			}
			b[i] = Empty
		}
		return best
	}

	best := winScore + 1
	for _, i := range Available(b) {
		b[i] = Human
		if s := minimax(b, depth+1, true, budget); s < best {
			best = s
		}
		b[i] = Empty
	}
	return best
}

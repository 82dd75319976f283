// Package chess implements a simplified chess game against a computer
// opponent. Moves follow the basic movement rules of each piece; castling,
// en passant and promotion are not played, and a king under attack ends the
// game.
package chess

import (
	"fmt"
	"strings"
)

// Color identifies a side.
type Color int

const (
	NoColor Color = iota
	White
	Black
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return ""
}

// MarshalText stores a color by name.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText reads a color name.
func (c *Color) UnmarshalText(b []byte) error {
	switch string(b) {
	case "white":
		*c = White
	case "black":
		*c = Black
	case "":
		*c = NoColor
	default:
		return fmt.Errorf("invalid color %q", b)
	}
	return nil
}

// PieceType is the kind of a piece.
type PieceType int

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceLetters = map[PieceType]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

var pieceNames = map[PieceType]string{
	Pawn:   "pawn",
	Knight: "knight",
	Bishop: "bishop",
	Rook:   "rook",
	Queen:  "queen",
	King:   "king",
}

func (t PieceType) String() string {
	return pieceNames[t]
}

// MarshalText stores a piece type by name.
func (t PieceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText reads a piece type name.
func (t *PieceType) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = NoPiece
		return nil
	}
	for pt, name := range pieceNames {
		if name == string(b) {
			*t = pt
			return nil
		}
	}
	return fmt.Errorf("invalid piece %q", b)
}

// Piece is the content of a square. The zero value is an empty square.
type Piece struct {
	Color Color     `json:"color,omitempty"`
	Type  PieceType `json:"type,omitempty"`
}

// Empty reports whether the square holds no piece.
func (p Piece) Empty() bool {
	return p.Type == NoPiece
}

// Letter returns the piece letter, uppercase for white, '.' when empty.
func (p Piece) Letter() byte {
	l, ok := pieceLetters[p.Type]
	if !ok {
		return '.'
	}
	if p.Color == White {
		return l - 'a' + 'A'
	}
	return l
}

// Square is a board coordinate. Row 0 is rank 8, column 0 is file a.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// OnBoard reports whether s lies within the board.
func (s Square) OnBoard() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

// String returns the algebraic name, e.g. "e4".
func (s Square) String() string {
	if !s.OnBoard() {
		return "??"
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col, 8-s.Row)
}

// ParseSquare parses algebraic notation like "e2".
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	return Square{Row: 8 - int(s[1]-'0'), Col: int(s[0] - 'a')}, nil
}

// Board is the 8x8 grid indexed [row][col].
type Board [8][8]Piece

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position.
func NewBoard() Board {
	var b Board
	for c := 0; c < 8; c++ {
		b[0][c] = Piece{Color: Black, Type: backRank[c]}
		b[1][c] = Piece{Color: Black, Type: Pawn}
		b[6][c] = Piece{Color: White, Type: Pawn}
		b[7][c] = Piece{Color: White, Type: backRank[c]}
	}
	return b
}

// At returns the piece on s.
func (b *Board) At(s Square) Piece {
	return b[s.Row][s.Col]
}

// Move relocates the piece on m.From to m.To and returns what was captured.
// It does not check legality.
func (b *Board) Move(m Move) Piece {
	captured := b[m.To.Row][m.To.Col]
	b[m.To.Row][m.To.Col] = b[m.From.Row][m.From.Col]
	b[m.From.Row][m.From.Col] = Piece{}
	return captured
}

// Count returns the number of pieces of color c.
func (b *Board) Count(c Color) int {
	n := 0
	for r := 0; r < 8; r++ {
		for col := 0; col < 8; col++ {
			if !b[r][col].Empty() && b[r][col].Color == c {
				n++
			}
		}
	}
	return n
}

// Render draws the board from white's side with rank and file labels.
func Render(b Board) []string {
	rows := make([]string, 0, 10)
	for r := 0; r < 8; r++ {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d ", 8-r)
		for c := 0; c < 8; c++ {
			sb.WriteByte(' ')
			sb.WriteByte(b[r][c].Letter())
		}
		rows = append(rows, sb.String())
	}
	rows = append(rows, "   a b c d e f g h")
	return rows
}

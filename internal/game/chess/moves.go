package chess

// Move is a piece relocation.
type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

func (m Move) String() string {
	return m.From.String() + " " + m.To.String()
}

var (
	knightOffsets = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	rookDirs      = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopDirs    = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// forward is the row delta a pawn of color c advances by.
func forward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

func startRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

// Destinations returns the squares the piece on from may move to. Moves that
// leave the mover's own king attacked are included.
func Destinations(b *Board, from Square) []Square {
	p := b.At(from)
	if p.Empty() {
		return nil
	}

	switch p.Type {
	case Pawn:
		return pawnMoves(b, from, p.Color)
	case Knight:
		return stepMoves(b, from, p.Color, knightOffsets[:])
	case King:
		return stepMoves(b, from, p.Color, kingOffsets[:])
	case Rook:
		return slideMoves(b, from, p.Color, rookDirs[:])
	case Bishop:
		return slideMoves(b, from, p.Color, bishopDirs[:])
	case Queen:
		out := slideMoves(b, from, p.Color, rookDirs[:])
		return append(out, slideMoves(b, from, p.Color, bishopDirs[:])...)
	}
	return nil
}

func pawnMoves(b *Board, from Square, c Color) []Square {
	var out []Square
	dir := forward(c)

	one := Square{Row: from.Row + dir, Col: from.Col}
	if one.OnBoard() && b.At(one).Empty() {
		out = append(out, one)
		two := Square{Row: from.Row + 2*dir, Col: from.Col}
		if from.Row == startRow(c) && b.At(two).Empty() {
			out = append(out, two)
		}
	}

	for _, dc := range [2]int{-1, 1} {
		diag := Square{Row: from.Row + dir, Col: from.Col + dc}
		if !diag.OnBoard() {
			continue
		}
		if target := b.At(diag); !target.Empty() && target.Color != c {
			out = append(out, diag)
		}
	}
	return out
}

func stepMoves(b *Board, from Square, c Color, offsets [][2]int) []Square {
	var out []Square
	for _, o := range offsets {
		to := Square{Row: from.Row + o[0], Col: from.Col + o[1]}
		if !to.OnBoard() {
			continue
		}
		if target := b.At(to); target.Empty() || target.Color != c {
			out = append(out, to)
		}
	}
	return out
}

func slideMoves(b *Board, from Square, c Color, dirs [][2]int) []Square {
	var out []Square
	for _, d := range dirs {
		to := Square{Row: from.Row + d[0], Col: from.Col + d[1]}
		for to.OnBoard() {
			target := b.At(to)
			if target.Empty() {
				out = append(out, to)
			} else {
				if target.Color != c {
					out = append(out, to)
				}
				break
			}
			to = Square{Row: to.Row + d[0], Col: to.Col + d[1]}
		}
	}
	return out
}

// Pieces returns the squares holding pieces of color c in board order.
func Pieces(b *Board, c Color) []Square {
	var out []Square
	for r := 0; r < 8; r++ {
		for col := 0; col < 8; col++ {
			if p := b[r][col]; !p.Empty() && p.Color == c {
				out = append(out, Square{Row: r, Col: col})
			}
		}
	}
	return out
}

// AllMoves returns every move available to color c in board order.
func AllMoves(b *Board, c Color) []Move {
	var out []Move
	for _, from := range Pieces(b, c) {
		for _, to := range Destinations(b, from) {
			out = append(out, Move{From: from, To: to})
		}
	}
	return out
}

// IsLegal reports whether m moves a piece of color c to one of its
// destinations.
func IsLegal(b *Board, m Move, c Color) bool {
	if !m.From.OnBoard() || !m.To.OnBoard() {
		return false
	}
	if p := b.At(m.From); p.Empty() || p.Color != c {
		return false
	}
	for _, to := range Destinations(b, m.From) {
		if to == m.To {
			return true
		}
	}
	return false
}

// KingSquare locates the king of color c.
func KingSquare(b *Board, c Color) (Square, bool) {
	for r := 0; r < 8; r++ {
		for col := 0; col < 8; col++ {
			if p := b[r][col]; p.Type == King && p.Color == c {
				return Square{Row: r, Col: col}, true
			}
		}
	}
	return Square{}, false
}

// Attacked reports whether any piece of color by can move onto s.
func Attacked(b *Board, s Square, by Color) bool {
	for _, from := range Pieces(b, by) {
		for _, to := range Destinations(b, from) {
			if to == s {
				return true
			}
		}
	}
	return false
}

// InCheck reports whether the king of color c is attacked. A side without a
// king counts as checked. This is the game-over condition.
func InCheck(b *Board, c Color) bool {
	k, ok := KingSquare(b, c)
	if !ok {
		return true
	}
	return Attacked(b, k, c.Opponent())
}

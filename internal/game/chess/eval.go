package chess

// Evaluation weights
const (
	materialWeight    = 1.0
	positionWeight    = 0.1
	developmentWeight = 10.0
	kingSafetyWeight  = 5.0
	pawnWeight        = 5.0
	centerWeight      = 3.0
	mobilityWeight    = 1.0
	threatWeight      = 2.0
)

var pieceValues = map[PieceType]float64{
	Pawn:   100,
	Knight: 320,
	Bishop: 330,
	Rook:   500,
	Queen:  900,
}

// Piece-square tables from white's side, row 0 is rank 8.
var (
	pawnTable = [8][8]float64{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{50, 50, 50, 50, 50, 50, 50, 50},
		{10, 10, 20, 30, 30, 20, 10, 10},
		{5, 5, 10, 25, 25, 10, 5, 5},
		{0, 0, 0, 20, 20, 0, 0, 0},
		{5, -5, -10, 0, 0, -10, -5, 5},
		{5, 10, 10, -20, -20, 10, 10, 5},
		{0, 0, 0, 0, 0, 0, 0, 0},
	}
	knightTable = [8][8]float64{
		{-50, -40, -30, -30, -30, -30, -40, -50},
		{-40, -20, 0, 0, 0, 0, -20, -40},
		{-30, 0, 10, 15, 15, 10, 0, -30},
		{-30, 5, 15, 20, 20, 15, 5, -30},
		{-30, 0, 15, 20, 20, 15, 0, -30},
		{-30, 5, 10, 15, 15, 10, 5, -30},
		{-40, -20, 0, 5, 5, 0, -20, -40},
		{-50, -40, -30, -30, -30, -30, -40, -50},
	}
	bishopTable = [8][8]float64{
		{-20, -10, -10, -10, -10, -10, -10, -20},
		{-10, 0, 0, 0, 0, 0, 0, -10},
		{-10, 0, 5, 10, 10, 5, 0, -10},
		{-10, 5, 5, 10, 10, 5, 5, -10},
		{-10, 0, 10, 10, 10, 10, 0, -10},
		{-10, 10, 10, 10, 10, 10, 10, -10},
		{-10, 5, 0, 0, 0, 0, 5, -10},
		{-20, -10, -10, -10, -10, -10, -10, -20},
	}
	rookTable = [8][8]float64{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{5, 10, 10, 10, 10, 10, 10, 5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{0, 0, 0, 5, 5, 0, 0, 0},
	}
	queenTable = [8][8]float64{
		{-20, -10, -10, -5, -5, -10, -10, -20},
		{-10, 0, 0, 0, 0, 0, 0, -10},
		{-10, 0, 5, 5, 5, 5, 0, -10},
		{-5, 0, 5, 5, 5, 5, 0, -5},
		{0, 0, 5, 5, 5, 5, 0, -5},
		{-10, 5, 5, 5, 5, 5, 0, -10},
		{-10, 0, 5, 0, 0, 0, 0, -10},
		{-20, -10, -10, -5, -5, -10, -10, -20},
	}
	kingTable = [8][8]float64{
		{-30, -40, -40, -50, -50, -40, -40, -30},
		{-30, -40, -40, -50, -50, -40, -40, -30},
		{-30, -40, -40, -50, -50, -40, -40, -30},
		{-30, -40, -40, -50, -50, -40, -40, -30},
		{-20, -30, -30, -40, -40, -30, -30, -20},
		{-10, -20, -20, -20, -20, -20, -20, -10},
		{20, 20, 0, 0, 0, 0, 20, 20},
		{20, 30, 10, 0, 0, 10, 30, 20},
	}
)

var pieceTables = map[PieceType]*[8][8]float64{
	Pawn:   &pawnTable,
	Knight: &knightTable,
	Bishop: &bishopTable,
	Rook:   &rookTable,
	Queen:  &queenTable,
	King:   &kingTable,
}

var centerSquares = [4]Square{{Row: 3, Col: 3}, {Row: 3, Col: 4}, {Row: 4, Col: 3}, {Row: 4, Col: 4}}

// Evaluate scores b from c's point of view as a weighted sum of independent
// heuristics. Each heuristic is c's value minus the opponent's.
func Evaluate(b *Board, c Color) float64 {
	opp := c.Opponent()
	return materialWeight*(material(b, c)-material(b, opp)) +
		positionWeight*(position(b, c)-position(b, opp)) +
		developmentWeight*(development(b, c)-development(b, opp)) +
		kingSafetyWeight*(kingSafety(b, c)-kingSafety(b, opp)) +
		pawnWeight*(pawnStructure(b, c)-pawnStructure(b, opp)) +
		centerWeight*(center(b, c)-center(b, opp)) +
		mobilityWeight*float64(len(AllMoves(b, c))-len(AllMoves(b, opp))) +
		threatWeight*float64(threats(b, c)-threats(b, opp))
}

func material(b *Board, c Color) float64 {
	total := 0.0
	for _, s := range Pieces(b, c) {
		total += pieceValues[b.At(s).Type]
	}
	return total
}

// tableRow maps s to the row of a white-side table.
func tableRow(s Square, c Color) int {
	if c == Black {
		return 7 - s.Row
	}
	return s.Row
}

func position(b *Board, c Color) float64 {
	total := 0.0
	for _, s := range Pieces(b, c) {
		if t, ok := pieceTables[b.At(s).Type]; ok {
			total += t[tableRow(s, c)][s.Col]
		}
	}
	return total
}

// development is the fraction of non-pawn, non-king pieces that have left
// the two home ranks.
func development(b *Board, c Color) float64 {
	var pieces, moved int
	for _, s := range Pieces(b, c) {
		t := b.At(s).Type
		if t == Pawn || t == King {
			continue
		}
		pieces++
		if tableRow(s, c) < 6 {
			moved++
		}
	}
	if pieces == 0 {
		return 0
	}
	return float64(moved) / float64(pieces)
}

// kingSafety rewards a king on a castled square and friendly pawns
// directly in front of it.
func kingSafety(b *Board, c Color) float64 {
	k, ok := KingSquare(b, c)
	if !ok {
		return 0
	}
	score := 0.0
	if tableRow(k, c) == 7 && (k.Col == 6 || k.Col == 2) {
		score++
	}
	dir := forward(c)
	for dc := -1; dc <= 1; dc++ {
		s := Square{Row: k.Row + dir, Col: k.Col + dc}
		if s.OnBoard() {
			if p := b.At(s); p.Type == Pawn && p.Color == c {
				score++
			}
		}
	}
	return score
}

// pawnStructure penalizes doubled and isolated pawns and rewards passed
// pawns.
func pawnStructure(b *Board, c Color) float64 {
	var files, enemyFiles [8][]int
	for r := 0; r < 8; r++ {
		for col := 0; col < 8; col++ {
			p := b[r][col]
			if p.Type != Pawn {
				continue
			}
			if p.Color == c {
				files[col] = append(files[col], r)
			} else {
				enemyFiles[col] = append(enemyFiles[col], r)
			}
		}
	}

	score := 0.0
	dir := forward(c)
	for col := 0; col < 8; col++ {
		if n := len(files[col]); n > 1 {
			score -= float64(n - 1)
		}
		if len(files[col]) == 0 {
			continue
		}
		left, right := col > 0 && len(files[col-1]) > 0, col < 7 && len(files[col+1]) > 0
		if !left && !right {
			score -= float64(len(files[col]))
		}
		for _, row := range files[col] {
			if passed(row, col, dir, enemyFiles) {
				score++
			}
		}
	}
	return score
}

// passed reports whether no enemy pawn stands ahead of row on col or the
// adjacent files.
func passed(row, col, dir int, enemy [8][]int) bool {
	for c := col - 1; c <= col+1; c++ {
		if c < 0 || c > 7 {
			continue
		}
		for _, r := range enemy[c] {
			if (r-row)*dir > 0 {
				return false
			}
		}
	}
	return true
}

func center(b *Board, c Color) float64 {
	n := 0.0
	for _, s := range centerSquares {
		if p := b.At(s); !p.Empty() && p.Color == c {
			n++
		}
	}
	return n
}

// threats counts opposing pieces that c attacks.
func threats(b *Board, c Color) int {
	attacked := make(map[Square]bool)
	for _, m := range AllMoves(b, c) {
		if target := b.At(m.To); !target.Empty() {
			attacked[m.To] = true
		}
	}
	return len(attacked)
}

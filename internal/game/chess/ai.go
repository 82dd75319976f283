package chess

import (
	"math"

	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
)

// ChooseMove picks a move for color c. It returns false when c has no move.
func ChooseMove(b Board, c Color, d game.Difficulty, r game.Rand, budget *game.Budget) (Move, bool) {
	switch d {
	case game.Hard:
		return hardMove(&b, c, budget)
	case game.Medium:
		if m, ok := mediumMove(&b, c); ok {
			return m, true
		}
	}
	return easyMove(&b, c, r)
}

// easyMove visits c's pieces in random order and plays a random move of
// the first piece that can move.
func easyMove(b *Board, c Color, r game.Rand) (Move, bool) {
	pieces := Pieces(b, c)
	r.Shuffle(len(pieces), func(i, j int) { pieces[i], pieces[j] = pieces[j], pieces[i] })

	for _, from := range pieces {
		dests := Destinations(b, from)
		if len(dests) == 0 {
			continue
		}
		return Move{From: from, To: dests[r.Intn(len(dests))]}, true
	}
	return Move{}, false
}

// mediumMove takes the first capture found, otherwise the move that brings a
// piece closest to the center.
func mediumMove(b *Board, c Color) (Move, bool) {
	moves := AllMoves(b, c)
	for _, m := range moves {
		if !b.At(m.To).Empty() {
			return m, true
		}
	}

	var best Move
	bestGain := 0.0
	for _, m := range moves {
		if gain := centerDistance(m.From) - centerDistance(m.To); gain > bestGain {
			best, bestGain = m, gain
		}
	}
	return best, bestGain > 0
}

func centerDistance(s Square) float64 {
	return math.Max(math.Abs(float64(s.Row)-3.5), math.Abs(float64(s.Col)-3.5))
}

// hardMove plays any move that attacks the enemy king at once, otherwise the
// move with the best evaluation. Each evaluated move spends one node; once the
// budget runs out the best move so far is played.
func hardMove(b *Board, c Color, budget *game.Budget) (Move, bool) {
	moves := AllMoves(b, c)
	if len(moves) == 0 {
		return Move{}, false
	}

	best := moves[0]
	bestScore := math.Inf(-1)
	for _, m := range moves {
		next := *b
		next.Move(m)
		if InCheck(&next, c.Opponent()) {
			return m, true
		}
		if !budget.Spend() {
			break
		}
		if score := Evaluate(&next, c); score > bestScore {
			best, bestScore = m, score
		}
	}
	return best, true
}

package agent

import (
	"math/bits"
	"math/rand/v2"
	"sync"

	"github.com/dylhunn/dragontoothmg"
)

const (
	Minimax        = "minimax"
	MinimaxShallow = "minimax-1"

	defaultDepth = 3
	mateScore    = 100000
	infinity     = 1 << 30
)

// minimaxAgent is a fixed-depth alpha-beta search on material. Root moves are
// shuffled so equal lines are not always played the same way.
type minimaxAgent struct {
	name  string
	depth int

	mu  sync.Mutex
	rng *rand.Rand
}

func (a *minimaxAgent) Name() string { return a.name }

func (a *minimaxAgent) SelectMove(fen string) (string, bool, error) {
	b, moves, err := legalMoves(fen)
	if err != nil || len(moves) == 0 {
		return "", false, err
	}

	a.mu.Lock()
	a.rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
	a.mu.Unlock()

	best := moves[0]
	alpha := -infinity
	for _, m := range moves {
		unapply := b.Apply(m)
		score := -search(b, a.depth-1, -infinity, -alpha)
		unapply()
		if score > alpha {
			alpha = score
			best = m
		}
	}
	return uci(best), true, nil
}

// search is negamax: scores are from the side to move
func search(b *dragontoothmg.Board, depth, alpha, beta int) int {
	moves := b.GenerateLegalMoves()
	if len(moves) == 0 {
		if b.OurKingInCheck() {
			// Mates found with more depth left are closer
			return -mateScore - depth
		}
		return 0
	}
	if depth <= 0 {
		return material(b)
	}

	for _, m := range moves {
		unapply := b.Apply(m)
		score := -search(b, depth-1, -beta, -alpha)
		unapply()
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

func material(b *dragontoothmg.Board) int {
	score := sideMaterial(&b.White) - sideMaterial(&b.Black)
	if !b.Wtomove {
		return -score
	}
	return score
}

func sideMaterial(bb *dragontoothmg.Bitboards) int {
	return 100*bits.OnesCount64(bb.Pawns) +
		300*bits.OnesCount64(bb.Knights) +
		300*bits.OnesCount64(bb.Bishops) +
		500*bits.OnesCount64(bb.Rooks) +
		900*bits.OnesCount64(bb.Queens)
}

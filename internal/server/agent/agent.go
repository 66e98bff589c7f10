// Package agent holds the move pickers used by the reference move service.
package agent

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"chessbot/internal/rules"

	"github.com/dylhunn/dragontoothmg"
)

const (
	Random = "random"
	Greedy = "greedy"
)

// Agent picks a move for the side to move
type Agent interface {
	Name() string
	// SelectMove returns a UCI move, or false when the side to move has none
	SelectMove(fen string) (string, bool, error)
}

// Names lists the registered agents
func Names() []string {
	return []string{Random, Greedy, Minimax, MinimaxShallow}
}

// New returns the agent registered under name
func New(name string, seed uint64) (Agent, error) {
	src := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	switch strings.ToLower(name) {
	case Random:
		return &randomAgent{rng: src}, nil
	case Greedy:
		return &greedyAgent{rng: src}, nil
	case Minimax:
		return &minimaxAgent{name: Minimax, depth: defaultDepth, rng: src}, nil
	case MinimaxShallow:
		return &minimaxAgent{name: MinimaxShallow, depth: 1, rng: src}, nil
	}
	return nil, fmt.Errorf("unknown agent %q", name)
}

type randomAgent struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (a *randomAgent) Name() string { return Random }

func (a *randomAgent) SelectMove(fen string) (string, bool, error) {
	_, moves, err := legalMoves(fen)
	if err != nil || len(moves) == 0 {
		return "", false, err
	}
	a.mu.Lock()
	m := moves[a.rng.IntN(len(moves))]
	a.mu.Unlock()
	return uci(m), true, nil
}

// greedyAgent takes the most valuable capture on offer, prefers promotion
// otherwise, and falls back to a random move.
type greedyAgent struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (a *greedyAgent) Name() string { return Greedy }

func (a *greedyAgent) SelectMove(fen string) (string, bool, error) {
	b, moves, err := legalMoves(fen)
	if err != nil || len(moves) == 0 {
		return "", false, err
	}

	best := -1
	var candidates []dragontoothmg.Move
	for i := range moves {
		score := gain(b, &moves[i])
		switch {
		case score > best:
			best = score
			candidates = append(candidates[:0], moves[i])
		case score == best:
			candidates = append(candidates, moves[i])
		}
	}

	a.mu.Lock()
	m := candidates[a.rng.IntN(len(candidates))]
	a.mu.Unlock()
	return uci(m), true, nil
}

var pieceValue = map[dragontoothmg.Piece]int{
	dragontoothmg.Pawn:   1,
	dragontoothmg.Knight: 3,
	dragontoothmg.Bishop: 3,
	dragontoothmg.Rook:   5,
	dragontoothmg.Queen:  9,
}

// gain scores material won by m: the captured piece plus any promotion bonus
func gain(b *dragontoothmg.Board, m *dragontoothmg.Move) int {
	them := &b.Black
	if !b.Wtomove {
		them = &b.White
	}
	score := 0
	to := uint64(1) << m.To()
	switch {
	case them.Queens&to != 0:
		score = pieceValue[dragontoothmg.Queen]
	case them.Rooks&to != 0:
		score = pieceValue[dragontoothmg.Rook]
	case them.Bishops&to != 0:
		score = pieceValue[dragontoothmg.Bishop]
	case them.Knights&to != 0:
		score = pieceValue[dragontoothmg.Knight]
	case them.Pawns&to != 0:
		score = pieceValue[dragontoothmg.Pawn]
	}
	if p := m.Promote(); p > 0 {
		score += pieceValue[p] - pieceValue[dragontoothmg.Pawn]
	}
	return score
}

// legalMoves parses fen with dragontoothmg. The FEN is checked by the rules
// package first since dragontoothmg panics or misreads malformed input.
func legalMoves(fen string) (b *dragontoothmg.Board, moves []dragontoothmg.Move, err error) {
	if _, err := rules.ParsePosition(fen); err != nil {
		return nil, nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid FEN %q: %v", fen, r)
		}
	}()
	board := dragontoothmg.ParseFen(fen)
	return &board, board.GenerateLegalMoves(), nil
}

func uci(m dragontoothmg.Move) string {
	return strings.ToLower(m.String())
}

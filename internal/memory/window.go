// Package memory keeps a bounded window of recent conversation turns.
package memory

import "ragchat/internal/domain"

// DefaultMaxTurns is the number of question/answer pairs kept by default.
const DefaultMaxTurns = 10

// Window holds at most Cap() turns, oldest first.
type Window struct {
	turns    []domain.Turn
	maxTurns int
}

// NewWindow creates an empty window. A non-positive size falls back to DefaultMaxTurns.
func NewWindow(maxTurns int) *Window {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Window{turns: make([]domain.Turn, 0, maxTurns), maxTurns: maxTurns}
}

// Append records a completed turn, evicting the oldest one when full.
func (w *Window) Append(turn domain.Turn) {
	if len(w.turns) == w.maxTurns {
		copy(w.turns, w.turns[1:])
		w.turns = w.turns[:len(w.turns)-1]
	}
	w.turns = append(w.turns, turn)
}

// Turns returns a copy of the stored turns, oldest first.
func (w *Window) Turns() []domain.Turn {
	out := make([]domain.Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

// Len returns the number of stored turns.
func (w *Window) Len() int { return len(w.turns) }

// Cap returns the maximum number of turns kept.
func (w *Window) Cap() int { return w.maxTurns }

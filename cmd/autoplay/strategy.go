package main

import (
	"github.com/wricardo/mcp-training/jackaroo/game/engine"
)

// opponentWeight scales how much an opponent's progress counts against a play
const opponentWeight = 1.0 / 3

// Choice is the play the strategy settled on. Split is set for a two-marble
// Seven when a different split than the board's current one scored better.
type Choice struct {
	Play  engine.PlayOption
	Split *int
	Score float64
}

// GreedyStrategy simulates every legal play on a copy of the game and keeps
// the one that leaves the active colour furthest ahead of the others.
type GreedyStrategy struct{}

// Choose picks the best of plays for the active player. ok is false when no
// play could be simulated, in which case the caller should burn a card.
func (GreedyStrategy) Choose(state *engine.GameState, plays []engine.PlayOption) (choice Choice, ok bool) {
	colour := state.GetActivePlayerColour()
	hand := state.GetCurrentPlayer().Hand

	for _, play := range plays {
		splits := []*int{nil}
		if play.Card < len(hand) && hand[play.Card].Rank == engine.Seven && hand[play.Card].Kind == engine.KindStandard && len(play.Marbles) == 2 {
			for n := 0; n <= engine.SevenSteps; n++ {
				if n != state.Board.GetSplitDistance() {
					split := n
					splits = append(splits, &split)
				}
			}
		}

		for _, split := range splits {
			score, err := simulate(state, play, split, colour)
			if err != nil {
				continue
			}
			if !ok || score > choice.Score {
				choice = Choice{Play: play, Split: split, Score: score}
				ok = true
			}
		}
	}
	return choice, ok
}

func simulate(state *engine.GameState, play engine.PlayOption, split *int, colour engine.Colour) (float64, error) {
	sim := state.Clone()
	if split != nil {
		if err := sim.Board.SetSplitDistance(*split); err != nil {
			return 0, err
		}
	}
	if err := sim.PlayCard(play.Card, play.Marbles); err != nil {
		return 0, err
	}
	if sim.GameOver && sim.Winner == colour {
		return 1e9, nil
	}
	return Evaluate(sim.Board, colour), nil
}

// Evaluate scores a board for colour: its own marbles' progress minus a
// fraction of everyone else's.
func Evaluate(board *engine.Board, colour engine.Colour) float64 {
	var score float64
	for _, m := range board.Marbles {
		p := float64(progress(board, m))
		if m.Colour == colour {
			score += p
		} else {
			score -= p * opponentWeight
		}
	}
	return score
}

// progress counts the steps a marble has covered since leaving base. Safe
// zone cells rank above every track cell, deeper ones higher.
func progress(board *engine.Board, m engine.Marble) int {
	n := board.TrackLength()
	switch m.Location.Kind {
	case engine.OnTrack:
		return 1 + (m.Location.Index-board.BaseIndex(m.Colour)+n)%n
	case engine.InSafe:
		return n + 2 + m.Location.Index
	}
	return 0
}

package service

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/jackaroo/game/engine"
)

var boardEventTypes = map[engine.BoardEventKind]string{
	engine.EventMove:      "move",
	engine.EventCapture:   "capture",
	engine.EventFielded:   "fielded",
	engine.EventSafeEntry: "safe_entry",
	engine.EventSwap:      "swap",
	engine.EventTrap:      "trap",
}

// boardEvents turns the board's commit log of the last play into game events
func boardEvents(state *engine.GameState, now time.Time) []GameEvent {
	events := make([]GameEvent, 0, len(state.LastEvents))
	for _, ev := range state.LastEvents {
		if ev.Marble < 0 || ev.Marble >= len(state.Board.Marbles) {
			continue
		}
		m := state.Board.Marbles[ev.Marble]
		id := ev.Marble
		from, to := ev.From, ev.To

		var msg string
		switch ev.Kind {
		case engine.EventCapture:
			msg = fmt.Sprintf("%s marble %d was sent back to base from %s", m.Colour, m.Number, from)
		case engine.EventFielded:
			msg = fmt.Sprintf("%s marble %d entered the track at %s", m.Colour, m.Number, to)
		case engine.EventSafeEntry:
			msg = fmt.Sprintf("%s marble %d reached %s", m.Colour, m.Number, to)
		case engine.EventSwap:
			msg = fmt.Sprintf("%s marble %d swapped from %s to %s", m.Colour, m.Number, from, to)
		case engine.EventTrap:
			msg = fmt.Sprintf("%s marble %d fell into a trap at %s", m.Colour, m.Number, from)
		default:
			msg = fmt.Sprintf("%s marble %d moved from %s to %s", m.Colour, m.Number, from, to)
		}

		events = append(events, GameEvent{
			Type:      boardEventTypes[ev.Kind],
			Message:   msg,
			Timestamp: now,
			Colour:    m.Colour,
			Marble:    &id,
			From:      &from,
			To:        &to,
		})
	}
	return events
}

// turnEvents reports who acts next, or how the game ended
func turnEvents(state *engine.GameState, now time.Time) []GameEvent {
	if state.GameOver {
		ev := GameEvent{Type: "game_over", Message: state.Message, Timestamp: now}
		switch {
		case state.Winner != "":
			ev.Colour = state.Winner
		case state.Eliminated != "":
			ev.Colour = state.Eliminated
		}
		return []GameEvent{ev}
	}
	next := state.GetCurrentPlayer()
	return []GameEvent{{
		Type:      "turn",
		Message:   fmt.Sprintf("%s (%s) to play", next.Name, next.Colour),
		Timestamp: now,
		Colour:    next.Colour,
	}}
}

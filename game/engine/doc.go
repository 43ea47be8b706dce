// Package engine provides the rules engine for Jackaroo, a four-player marble
// race played with cards.
//
// The engine package implements the game mechanics including:
//   - Board topology: a circular track, per-colour safe zones and bases
//   - Path tracing and validation for marble movement, with captures
//   - Card rules dispatched through a table keyed by rank or wild kind
//   - The turn machine, hands, deck and fire pit
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState holds a whole game and implements the
// GameManager capability; Board implements BoardManager. Cards only reach the
// game through those two capabilities.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Play the first card in hand to field a marble
//	err = gameEngine.PlayCard(0, nil)
//	state := gameEngine.GetState()
//
// Errors:
//
// Every rule violation wraps one of the sentinels in errors.go. Match them with
// errors.Is against the specific sentinel, its family (ErrInvalidSelection or
// ErrAction) or ErrGame. A failed play leaves the game unchanged.
package engine

package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() (*GameState, error)
	IsGameOver() bool
	Winner() Colour

	// Card play
	PlayCard(cardIdx int, marbles []int) error
	PassTurn(cardIdx int) error
	CanPlay(cardIdx int, marbles []int) error
	SetSplitDistance(n int) error
	GetSelectableMarbles(cardIdx int) ([]int, error)
	GetLegalPlays() []PlayOption

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetPlayHistory() []PlayHistoryEntry
	GetLastPlay() *PlayHistoryEntry

	// Read-only projection for renderers
	GetBoardView() BoardView
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	state, err := NewGameState(config)
	if err != nil {
		return nil, err
	}
	return &GameEngine{config: config, state: state}, nil
}

// NewEngineWithDefaults creates a new game engine with the classic rules
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return engine
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Board == nil || state.Deck == nil || len(state.Players) == 0 {
		return fmt.Errorf("state is incomplete")
	}
	e.state = state
	return nil
}

// Reset deals a new game with the same configuration. The session id and the
// cumulative play history survive the reset.
func (e *GameEngine) Reset() (*GameState, error) {
	prevID := e.state.ID
	prevHistory := e.state.PlayHistory
	prevTotal := e.state.TotalPlays

	state, err := NewGameState(e.config)
	if err != nil {
		return nil, err
	}
	state.ID = prevID
	state.PlayHistory = prevHistory
	state.TotalPlays = prevTotal
	e.state = state
	return e.state, nil
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.IsGameOver()
}

// Winner returns the winning colour, empty while the game runs or when it
// ended without a winner.
func (e *GameEngine) Winner() Colour {
	return e.state.Winner
}

// PlayCard plays a card for the active player
func (e *GameEngine) PlayCard(cardIdx int, marbles []int) error {
	return e.state.PlayCard(cardIdx, marbles)
}

// PassTurn burns a card when no legal play exists
func (e *GameEngine) PassTurn(cardIdx int) error {
	return e.state.PassTurn(cardIdx)
}

// CanPlay dry-runs a play
func (e *GameEngine) CanPlay(cardIdx int, marbles []int) error {
	return e.state.CanPlay(cardIdx, marbles)
}

// SetSplitDistance configures the Seven split ahead of a play
func (e *GameEngine) SetSplitDistance(n int) error {
	return e.state.Board.SetSplitDistance(n)
}

// GetSelectableMarbles returns the marbles the card at cardIdx may target
func (e *GameEngine) GetSelectableMarbles(cardIdx int) ([]int, error) {
	return e.state.SelectableMarbles(cardIdx)
}

// GetLegalPlays lists every legal play of the active player
func (e *GameEngine) GetLegalPlays() []PlayOption {
	return e.state.LegalPlays()
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and starts a new game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	state, err := NewGameState(config)
	if err != nil {
		return err
	}
	e.config = config
	e.state = state
	return nil
}

// GetPlayHistory returns the complete play history
func (e *GameEngine) GetPlayHistory() []PlayHistoryEntry {
	return e.state.PlayHistory
}

// GetLastPlay returns the last play made, or nil if no plays
func (e *GameEngine) GetLastPlay() *PlayHistoryEntry {
	if len(e.state.PlayHistory) == 0 {
		return nil
	}
	return &e.state.PlayHistory[len(e.state.PlayHistory)-1]
}

// GetBoardView returns the read-only board projection
func (e *GameEngine) GetBoardView() BoardView {
	return BuildBoardView(e.state.Board)
}

package service

import (
	"time"

	"github.com/wricardo/mcp-training/jackaroo/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	CurrentPlayer  string             `json:"current_player"`
	CurrentColour  engine.Colour      `json:"current_colour"`
	Turn           int                `json:"turn"`
	GameOver       bool               `json:"game_over"`
	Winner         engine.Colour      `json:"winner,omitempty"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// PlayRequest selects a card from the active hand and the marbles it acts on.
// Split, when set, configures the Seven split before the play.
type PlayRequest struct {
	Card    int   `json:"card"`
	Marbles []int `json:"marbles,omitempty"`
	Split   *int  `json:"split,omitempty"`
}

// PlayResult contains the outcome of a committed play or pass
type PlayResult struct {
	Success    bool              `json:"success"`
	GameState  *engine.GameState `json:"game_state"`
	Message    string            `json:"message"`
	Player     string            `json:"player"`
	Colour     engine.Colour     `json:"colour"`
	Card       string            `json:"card"`
	Marbles    []int             `json:"marbles,omitempty"`
	Events     []GameEvent       `json:"events"`
	NextPlayer string            `json:"next_player,omitempty"`
	NextColour engine.Colour     `json:"next_colour,omitempty"`
	GameOver   bool              `json:"game_over"`
	Winner     engine.Colour     `json:"winner,omitempty"`
	Eliminated engine.Colour     `json:"eliminated,omitempty"`

	// Hand and legal plays of whoever acts next, so a client can continue
	// without another round trip.
	NextHand   []engine.Card       `json:"next_hand,omitempty"`
	LegalPlays []engine.PlayOption `json:"legal_plays,omitempty"`
}

// SelectableResult lists the marbles a card in the active hand may target
type SelectableResult struct {
	Card    int             `json:"card"`
	Name    string          `json:"name"`
	Summary string          `json:"summary"`
	Marbles []engine.Marble `json:"marbles"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"` // "card_played", "pass", "move", "capture", "fielded", "safe_entry", "swap", "trap", "discard", "turn", "game_over", "reset"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Colour    engine.Colour    `json:"colour,omitempty"`
	Marble    *int             `json:"marble,omitempty"`
	From      *engine.Location `json:"from,omitempty"`
	To        *engine.Location `json:"to,omitempty"`
}

// HistoryOptions configures play history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated play history
type HistoryResponse struct {
	Plays       []engine.PlayHistoryEntry `json:"plays"`
	TotalPlays  int                       `json:"total_plays"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a rule configuration
type ConfigInfo struct {
	Filename         string `json:"filename"`
	ConfigID         string `json:"config_id"` // The identifier to use for session creation
	Name             string `json:"name"`      // Display name
	Description      string `json:"description"`
	TrackLength      int    `json:"track_length"`
	SafeZoneLength   int    `json:"safe_zone_length"`
	MarblesPerPlayer int    `json:"marbles_per_player"`
	HandSize         int    `json:"hand_size"`
	DeckSize         int    `json:"deck_size"`
	TrapCount        int    `json:"trap_count"`
	WinCondition     string `json:"win_condition"`
	Replenish        string `json:"replenish"`
}

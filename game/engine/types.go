package engine

import "fmt"

// Colour identifies a player and every marble, base cell, entry cell and safe zone it owns
type Colour string

const (
	Red    Colour = "red"
	Green  Colour = "green"
	Blue   Colour = "blue"
	Yellow Colour = "yellow"
)

// Colours lists the seats in turn order
var Colours = []Colour{Red, Green, Blue, Yellow}

// CellType represents the role a cell plays on the board
type CellType string

const (
	Normal CellType = "normal"
	Safe   CellType = "safe"
	Base   CellType = "base"
	Entry  CellType = "entry"

	// Rule constants
	NumPlayers          = 4
	MinTrackSpan        = 6
	MaxTrackSpan        = 50
	MinSafeZoneLength   = 1
	MaxSafeZoneLength   = 8
	DefaultTrackSpan    = 25
	DefaultSafeZoneLen  = 4
	DefaultEntryGap     = 2
	DefaultHandSize     = 4
	DefaultMarbles      = 4
	DefaultSplitDist    = 3
	SevenSteps          = 7
	MaxHandSize         = 8
	MaxPlayHistory      = 1000
	WebSocketBufferSize = 256
)

// Cell is a single addressable board position. Occupant is an index into the
// board's marble arena, nil when the cell is empty.
type Cell struct {
	Type     CellType `json:"type"`
	Owner    Colour   `json:"owner,omitempty"` // For base, entry and safe cells
	Occupant *int     `json:"occupant,omitempty"`
	Trap     bool     `json:"trap,omitempty"`
}

// Empty reports whether no marble occupies the cell
func (c *Cell) Empty() bool {
	return c.Occupant == nil
}

// LocationKind tags where a marble currently is
type LocationKind string

const (
	InBase  LocationKind = "base"
	OnTrack LocationKind = "track"
	InSafe  LocationKind = "safe"
)

// Location is a marble's position. Index is the track index for OnTrack and the
// offset into the owner's safe zone for InSafe; it is unused for InBase.
type Location struct {
	Kind  LocationKind `json:"kind"`
	Index int          `json:"index"`
}

func (l Location) String() string {
	switch l.Kind {
	case OnTrack:
		return fmt.Sprintf("track[%d]", l.Index)
	case InSafe:
		return fmt.Sprintf("safe[%d]", l.Index)
	case InBase:
		return "base"
	}
	return "nowhere"
}

// Marble is a player-owned token. It carries no pointer back to its cell.
type Marble struct {
	ID       int      `json:"id"`
	Colour   Colour   `json:"colour"`
	Owner    int      `json:"owner"`
	Number   int      `json:"number"`
	Location Location `json:"location"`
}

// SameAs reports whether two marbles have the same identity (colour and number)
func (m Marble) SameAs(other Marble) bool {
	return m.Colour == other.Colour && m.Number == other.Number
}

func (m Marble) String() string {
	return fmt.Sprintf("%s#%d@%s", m.Colour, m.Number, m.Location)
}

// TurnPhase is the state of the turn machine
type TurnPhase string

const (
	AwaitingSelection TurnPhase = "awaiting_selection"
	CardPlayed        TurnPhase = "card_played"
	TurnAdvanced      TurnPhase = "turn_advanced"
	GameOverPhase     TurnPhase = "game_over"
)

// WinCondition selects how isGameOver reads a player's marble set
type WinCondition string

const (
	// WinHome ends the game when a player has every marble in their safe zone.
	WinHome WinCondition = "home"
	// WinFirepit ends the game when a player has lost every marble to captures
	// (all in base after having fielded at least once).
	WinFirepit WinCondition = "firepit"
)

// ReplenishPolicy selects when hands are refilled from the deck
type ReplenishPolicy string

const (
	ReplenishRound     ReplenishPolicy = "round"
	ReplenishEmptyHand ReplenishPolicy = "empty_hand"
)

// PlayHistoryEntry represents a single card play or pass in the game history
type PlayHistoryEntry struct {
	Player     string `json:"player"`
	Colour     Colour `json:"colour"`
	Card       string `json:"card"`
	Marbles    []int  `json:"marbles,omitempty"`
	Pass       bool   `json:"pass,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Turn       int    `json:"turn"`
	Timestamp  int64  `json:"timestamp"`
	PlayNumber int    `json:"play_number"`
}

// BoardView is the read-only projection consumed by renderers
type BoardView struct {
	Track     []CellView            `json:"track"`
	SafeZones map[Colour][]CellView `json:"safe_zones"`
	Bases     map[Colour][]int      `json:"bases"`
}

// CellView describes one cell and, when occupied, the marble on it
type CellView struct {
	Index  int      `json:"index"`
	Type   CellType `json:"type"`
	Owner  Colour   `json:"owner,omitempty"`
	Trap   bool     `json:"trap,omitempty"`
	Marble *Marble  `json:"marble,omitempty"`
}

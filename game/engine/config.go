package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GameConfig defines the rules and table of one game variant, loaded from JSON
type GameConfig struct {
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	TrackSpan        int              `json:"track_span"`
	SafeZoneLength   int              `json:"safe_zone_length"`
	EntryGap         int              `json:"entry_gap"`
	MarblesPerPlayer int              `json:"marbles_per_player"`
	HandSize         int              `json:"hand_size"`
	SplitDistance    int              `json:"split_distance"`
	TrapCount        int              `json:"trap_count,omitempty"`
	Replenish        ReplenishPolicy  `json:"replenish,omitempty"`
	WinCondition     WinCondition     `json:"win_condition,omitempty"`
	Seed             uint64           `json:"seed,omitempty"`
	Players          []string         `json:"players,omitempty"`
	Catalog          []CardDescriptor `json:"catalog,omitempty"`
}

// DefaultGameConfig returns the classic rules
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:             "classic",
		Description:      "Classic Jackaroo: four players, four marbles each, a 52 card deck plus wild cards",
		TrackSpan:        DefaultTrackSpan,
		SafeZoneLength:   DefaultSafeZoneLen,
		EntryGap:         DefaultEntryGap,
		MarblesPerPlayer: DefaultMarbles,
		HandSize:         DefaultHandSize,
		SplitDistance:    DefaultSplitDist,
		Replenish:        ReplenishRound,
		WinCondition:     WinHome,
		Catalog:          DefaultCatalog(),
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.TrackSpan < MinTrackSpan || config.TrackSpan > MaxTrackSpan {
		return fmt.Errorf("config validation: track_span must be between %d and %d, got %d", MinTrackSpan, MaxTrackSpan, config.TrackSpan)
	}
	if config.SafeZoneLength < MinSafeZoneLength || config.SafeZoneLength > MaxSafeZoneLength {
		return fmt.Errorf("config validation: safe_zone_length must be between %d and %d, got %d",
			MinSafeZoneLength, MaxSafeZoneLength, config.SafeZoneLength)
	}
	if config.EntryGap < 1 || config.EntryGap >= config.TrackSpan {
		return fmt.Errorf("config validation: entry_gap must be between 1 and track_span-1 (%d), got %d", config.TrackSpan-1, config.EntryGap)
	}
	if config.MarblesPerPlayer < 1 || config.MarblesPerPlayer > config.SafeZoneLength {
		return fmt.Errorf("config validation: marbles_per_player must be between 1 and safe_zone_length (%d), got %d",
			config.SafeZoneLength, config.MarblesPerPlayer)
	}
	if config.HandSize < 1 || config.HandSize > MaxHandSize {
		return fmt.Errorf("config validation: hand_size must be between 1 and %d, got %d", MaxHandSize, config.HandSize)
	}
	if config.SplitDistance < 0 || config.SplitDistance > SevenSteps {
		return fmt.Errorf("config validation: %w: split_distance %d", ErrSplitOutOfRange, config.SplitDistance)
	}
	if config.TrapCount < 0 || config.TrapCount > config.TrackSpan {
		return fmt.Errorf("config validation: trap_count must be between 0 and %d, got %d", config.TrackSpan, config.TrapCount)
	}

	switch config.Replenish {
	case "", ReplenishRound, ReplenishEmptyHand:
	default:
		return fmt.Errorf("config validation: unknown replenish policy %q", config.Replenish)
	}
	switch config.WinCondition {
	case "", WinHome, WinFirepit:
	default:
		return fmt.Errorf("config validation: unknown win_condition %q", config.WinCondition)
	}

	if len(config.Players) != 0 && len(config.Players) != NumPlayers {
		return fmt.Errorf("config validation: players must list exactly %d names, got %d", NumPlayers, len(config.Players))
	}
	seen := make(map[string]bool)
	for i, name := range config.Players {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("config validation: player %d has an empty name", i+1)
		}
		if seen[strings.ToLower(name)] {
			return fmt.Errorf("config validation: duplicate player name %q", name)
		}
		seen[strings.ToLower(name)] = true
	}

	cards, err := BuildCards(config.catalog())
	if err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if need := NumPlayers * config.HandSize; len(cards) < need {
		return fmt.Errorf("config validation: deck has %d cards but dealing needs at least %d", len(cards), need)
	}

	return nil
}

// DeckSize returns the number of cards the configured catalog builds, or 0
// when the catalog is invalid.
func (c *GameConfig) DeckSize() int {
	cards, err := BuildCards(c.catalog())
	if err != nil {
		return 0
	}
	return len(cards)
}

// Cards builds the full deck described by the configuration's catalog.
func (c *GameConfig) Cards() ([]Card, error) {
	return BuildCards(c.catalog())
}

func (c *GameConfig) catalog() []CardDescriptor {
	if len(c.Catalog) == 0 {
		return DefaultCatalog()
	}
	return c.Catalog
}

func (c *GameConfig) replenish() ReplenishPolicy {
	if c.Replenish == "" {
		return ReplenishRound
	}
	return c.Replenish
}

func (c *GameConfig) winCondition() WinCondition {
	if c.WinCondition == "" {
		return WinHome
	}
	return c.WinCondition
}

func (c *GameConfig) playerNames() []string {
	if len(c.Players) == NumPlayers {
		return c.Players
	}
	names := make([]string, NumPlayers)
	for i, col := range Colours {
		names[i] = strings.ToUpper(string(col[:1])) + string(col[1:])
	}
	return names
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

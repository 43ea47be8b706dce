package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/jackaroo/game/engine"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. A nil logger disables logging.
func NewGameService(sessions SessionManager, configs ConfigManager, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger.Named("service"),
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	state := sess.Engine.GetState().Clone()
	current := state.GetCurrentPlayer()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		CurrentPlayer:  current.Name,
		CurrentColour:  current.Colour,
		Turn:           state.Turn,
		GameOver:       state.GameOver,
		Winner:         state.Winner,
		GameState:      state,
		GameConfig:     sess.Config,
	}
}

// session looks a session up and marks it accessed
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, err)
		}
		return nil, fmt.Errorf("session %s: %w: %v", sessionID, ErrSessionNotFound, err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.logger.Debug("failed to update last access", zap.String("session", sessionID), zap.Error(err))
	}
	return sess, nil
}

// persist saves a session after a mutation. Failures are logged, not returned.
func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session",
			zap.String("session", sessionID), zap.String("after", after), zap.Error(err))
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created", zap.String("session", session.ID), zap.String("config", configID))
	return s.sessionInfo(session, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(session, s.getConfigID(session.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("session %s: %w", sessionID, err)
		}
		return err
	}
	s.logger.Info("session deleted", zap.String("session", sessionID))
	return nil
}

// PlayCard plays a card from the active player's hand. A rejected play leaves
// the game unchanged and is returned as an engine error.
func (s *gameServiceImpl) PlayCard(ctx context.Context, sessionID string, req PlayRequest) (*PlayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	if state.GameOver {
		return nil, engine.ErrGameOver
	}
	player := state.GetCurrentPlayer()
	name, colour := player.Name, player.Colour
	card, err := player.Card(req.Card)
	if err != nil {
		return nil, err
	}
	target := state.GetNextPlayerColour()

	// A per-play split only sticks if the play goes through
	previousSplit := state.Board.GetSplitDistance()
	if req.Split != nil {
		if err := sess.Engine.SetSplitDistance(*req.Split); err != nil {
			return nil, err
		}
	}

	if err := sess.Engine.PlayCard(req.Card, req.Marbles); err != nil {
		if req.Split != nil {
			_ = sess.Engine.SetSplitDistance(previousSplit)
		}
		s.logger.Info("play rejected",
			zap.String("session", sessionID),
			zap.String("player", name),
			zap.String("card", card.String()),
			zap.Ints("marbles", req.Marbles),
			zap.Error(err))
		// The failed attempt is part of the history
		s.persist(sessionID, "rejected play")
		return nil, fmt.Errorf("%s cannot play %s: %w", name, card, err)
	}

	now := time.Now()
	state = sess.Engine.GetState()
	events := []GameEvent{{
		Type:      "card_played",
		Message:   fmt.Sprintf("%s played %s", name, card),
		Timestamp: now,
		Colour:    colour,
	}}
	events = append(events, boardEvents(state, now)...)
	if len(req.Marbles) == 0 && card.Kind == engine.KindStandard {
		switch card.Rank {
		case engine.Ten:
			events = append(events, GameEvent{
				Type:      "discard",
				Message:   fmt.Sprintf("%s discarded a card", target),
				Timestamp: now,
				Colour:    target,
			})
		case engine.Queen:
			events = append(events, GameEvent{
				Type:      "discard",
				Message:   "a random opponent discarded a card",
				Timestamp: now,
			})
		}
	}
	events = append(events, turnEvents(state, now)...)

	result := s.result(state, name, colour, card, req.Marbles, events)
	s.logger.Info("card played",
		zap.String("session", sessionID),
		zap.String("player", name),
		zap.String("card", card.String()),
		zap.Ints("marbles", req.Marbles),
		zap.Int("events", len(events)),
		zap.Bool("game_over", result.GameOver))

	s.persist(sessionID, "play")
	return result, nil
}

// PassTurn burns a card when the active player has no legal play
func (s *gameServiceImpl) PassTurn(ctx context.Context, sessionID string, cardIdx int) (*PlayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	if state.GameOver {
		return nil, engine.ErrGameOver
	}
	player := state.GetCurrentPlayer()
	name, colour := player.Name, player.Colour
	card, err := player.Card(cardIdx)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.PassTurn(cardIdx); err != nil {
		return nil, fmt.Errorf("%s cannot pass: %w", name, err)
	}

	now := time.Now()
	state = sess.Engine.GetState()
	events := []GameEvent{{
		Type:      "pass",
		Message:   fmt.Sprintf("%s burned %s", name, card),
		Timestamp: now,
		Colour:    colour,
	}}
	events = append(events, turnEvents(state, now)...)

	s.logger.Info("turn passed", zap.String("session", sessionID), zap.String("player", name), zap.String("card", card.String()))
	s.persist(sessionID, "pass")
	return s.result(state, name, colour, card, nil, events), nil
}

func (s *gameServiceImpl) result(state *engine.GameState, name string, colour engine.Colour, card engine.Card, marbles []int, events []GameEvent) *PlayResult {
	result := &PlayResult{
		Success:    true,
		GameState:  state.Clone(),
		Message:    state.Message,
		Player:     name,
		Colour:     colour,
		Card:       card.String(),
		Marbles:    marbles,
		Events:     events,
		GameOver:   state.GameOver,
		Winner:     state.Winner,
		Eliminated: state.Eliminated,
	}
	if !state.GameOver {
		next := state.GetCurrentPlayer()
		result.NextPlayer = next.Name
		result.NextColour = next.Colour
		result.NextHand = append([]engine.Card(nil), next.Hand...)
		result.LegalPlays = state.LegalPlays()
	}
	return result
}

// SetSplitDistance configures how a two-marble Seven is divided
func (s *gameServiceImpl) SetSplitDistance(ctx context.Context, sessionID string, n int) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.SetSplitDistance(n); err != nil {
		return nil, err
	}
	s.persist(sessionID, "split")
	return sess.Engine.GetState().Clone(), nil
}

// Reset deals a new game in the same session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	state, err := sess.Engine.Reset()
	if err != nil {
		return nil, fmt.Errorf("failed to reset session %s: %w", sessionID, err)
	}

	s.logger.Info("session reset", zap.String("session", sessionID))
	s.persist(sessionID, "reset")
	return state.Clone(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState().Clone(), nil
}

// GetBoardView returns the renderer projection of the board
func (s *gameServiceImpl) GetBoardView(ctx context.Context, sessionID string) (*engine.BoardView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	view := sess.Engine.GetBoardView()
	return &view, nil
}

// GetSelectableMarbles lists the marbles the card at index card may target
func (s *gameServiceImpl) GetSelectableMarbles(ctx context.Context, sessionID string, card int) (*SelectableResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.GetState()
	c, err := state.GetCurrentPlayer().Card(card)
	if err != nil {
		return nil, err
	}
	ids, err := sess.Engine.GetSelectableMarbles(card)
	if err != nil {
		return nil, err
	}

	result := &SelectableResult{
		Card:    card,
		Name:    c.String(),
		Summary: c.Description,
		Marbles: make([]engine.Marble, 0, len(ids)),
	}
	for _, id := range ids {
		m, err := state.Board.Marble(id)
		if err != nil {
			return nil, err
		}
		result.Marbles = append(result.Marbles, m)
	}
	return result, nil
}

// GetLegalPlays lists every legal play of the active player
func (s *gameServiceImpl) GetLegalPlays(ctx context.Context, sessionID string) ([]engine.PlayOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	plays := sess.Engine.GetLegalPlays()
	if plays == nil {
		plays = []engine.PlayOption{}
	}
	return plays, nil
}

// GetPlayHistory returns paginated play history
func (s *gameServiceImpl) GetPlayHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetPlayHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	plays := []engine.PlayHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				plays = append(plays, history[i])
			}
		} else {
			plays = append(plays, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Plays:       plays,
		TotalPlays:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available rule configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific rule configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a rule configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	s.logger.Info("config saved", zap.String("config", configName))
	return nil
}

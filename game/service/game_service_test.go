package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/jackaroo/game/engine"
	"github.com/wricardo/mcp-training/jackaroo/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    map[string]int
	mu       sync.Mutex
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
		saves:    make(map[string]int),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = fmt.Sprintf("t%03d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, err := m.Get(id); err == nil {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

func (m *MockSessionManager) Save(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	m.saves[id]++
	return nil
}

func (m *MockSessionManager) saveCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[id]
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func createTestConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "test"
	config.Description = "Test configuration"
	config.TrackSpan = 13
	config.Seed = 42
	return config
}

func NewMockConfigManager() *MockConfigManager {
	config := createTestConfig()
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":    config,
			"default": config,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			HandSize:    config.HandSize,
			DeckSize:    config.DeckSize(),
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidConfig, err)
	}
	m.configs[name] = config
	return nil
}

func newTestService(t *testing.T) (service.GameService, *MockSessionManager, *service.SessionInfo) {
	t.Helper()
	sessions := NewMockSessionManager()
	svc := service.NewGameService(sessions, NewMockConfigManager(), nil)
	info, err := svc.CreateSession(context.Background(), "test")
	require.NoError(t, err)
	return svc, sessions, info
}

func card(t *testing.T, code int) engine.Card {
	t.Helper()
	c, err := engine.NewCard(engine.CardDescriptor{Code: code, Frequency: 1, Suit: engine.Hearts})
	require.NoError(t, err)
	return c
}

// giveHand replaces the active player's hand in a session
func giveHand(t *testing.T, sessions *MockSessionManager, id string, codes ...int) *engine.GameState {
	t.Helper()
	sess, err := sessions.Get(id)
	require.NoError(t, err)
	state := sess.Engine.GetState()
	hand := make([]engine.Card, len(codes))
	for i, code := range codes {
		hand[i] = card(t, code)
	}
	state.GetCurrentPlayer().Hand = hand
	return state
}

func eventTypes(events []service.GameEvent) []string {
	types := make([]string, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager(), nil)

	tests := []struct {
		name       string
		configName string
		wantErr    error
	}{
		{name: "create with default config", configName: ""},
		{name: "create with specific config", configName: "test"},
		{name: "create with unknown config", configName: "nonexistent", wantErr: service.ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, http.StatusNotFound, service.HTTPStatus(err))
				return
			}
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.Len(t, session.ID, 4)
			assert.Equal(t, "test", session.ConfigName)
			assert.Equal(t, engine.Red, session.CurrentColour)
			assert.False(t, session.GameOver)
			assert.Len(t, session.GameState.Players[0].Hand, 4)
		})
	}
}

func TestGameService_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, info := newTestService(t)

	got, err := svc.GetSession(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)

	list, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteSession(ctx, info.ID))

	_, err = svc.GetSession(ctx, info.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	err = svc.DeleteSession(ctx, info.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	assert.Equal(t, http.StatusNotFound, service.HTTPStatus(err))
}

func TestGameService_PlayCard(t *testing.T) {
	ctx := context.Background()
	svc, sessions, info := newTestService(t)
	giveHand(t, sessions, info.ID, engine.King)

	result, err := svc.PlayCard(ctx, info.ID, service.PlayRequest{Card: 0})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, engine.Red, result.Colour)
	assert.Equal(t, "King of hearts", result.Card)
	assert.Equal(t, []string{"card_played", "fielded", "turn"}, eventTypes(result.Events))
	require.NotNil(t, result.Events[1].To)
	assert.Equal(t, engine.Location{Kind: engine.OnTrack, Index: 0}, *result.Events[1].To)
	assert.Equal(t, engine.Green, result.NextColour)
	assert.Equal(t, result.GameState.GetCurrentPlayer().Hand, result.NextHand)
	assert.False(t, result.GameOver)

	last := result.GameState.PlayHistory[len(result.GameState.PlayHistory)-1]
	assert.True(t, last.Success)
	assert.Equal(t, engine.Red, last.Colour)
	assert.Equal(t, 1, sessions.saveCount(info.ID))
}

func TestGameService_PlayCardRejected(t *testing.T) {
	ctx := context.Background()
	svc, sessions, info := newTestService(t)

	tests := []struct {
		name       string
		hand       []int
		req        service.PlayRequest
		wantErr    error
		wantStatus int
	}{
		{"card index out of range", []int{engine.Two}, service.PlayRequest{Card: 3}, engine.ErrInvalidCard, http.StatusBadRequest},
		{"wrong marble count", []int{engine.Two}, service.PlayRequest{Card: 0}, engine.ErrInvalidMarble, http.StatusBadRequest},
		{"marble in base cannot move", []int{engine.Two}, service.PlayRequest{Card: 0, Marbles: []int{0}}, engine.ErrIllegalMovement, http.StatusConflict},
		{"unknown marble", []int{engine.Two}, service.PlayRequest{Card: 0, Marbles: []int{99}}, engine.ErrInvalidMarble, http.StatusBadRequest},
		{"bad split", []int{engine.Seven}, service.PlayRequest{Card: 0, Split: intPtr(8)}, engine.ErrSplitOutOfRange, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := giveHand(t, sessions, info.ID, tt.hand...)
			before := state.CurrentPlayerIndex

			_, err := svc.PlayCard(ctx, info.ID, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantStatus, service.HTTPStatus(err))
			assert.Equal(t, before, state.CurrentPlayerIndex, "turn must not advance")
			assert.Len(t, state.GetCurrentPlayer().Hand, len(tt.hand), "card must stay in hand")
		})
	}

	_, err := svc.PlayCard(ctx, "nope", service.PlayRequest{})
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestGameService_SevenSplit(t *testing.T) {
	ctx := context.Background()
	svc, sessions, info := newTestService(t)
	state := giveHand(t, sessions, info.ID, engine.Seven)
	require.NoError(t, state.Board.Place(0, engine.Location{Kind: engine.OnTrack, Index: 10}))
	require.NoError(t, state.Board.Place(1, engine.Location{Kind: engine.OnTrack, Index: 20}))

	split := 2
	_, err := svc.PlayCard(ctx, info.ID, service.PlayRequest{Card: 0, Marbles: []int{0, 1}, Split: &split})
	require.NoError(t, err)

	m0, _ := state.Board.Marble(0)
	m1, _ := state.Board.Marble(1)
	assert.Equal(t, 12, m0.Location.Index)
	assert.Equal(t, 25, m1.Location.Index)
}

func TestGameService_SevenSplitRejectedKeepsSplit(t *testing.T) {
	ctx := context.Background()
	svc, sessions, info := newTestService(t)
	_, err := svc.SetSplitDistance(ctx, info.ID, 3)
	require.NoError(t, err)

	// Marble 1 is still in base, so the split cannot be played
	state := giveHand(t, sessions, info.ID, engine.Seven)
	require.NoError(t, state.Board.Place(0, engine.Location{Kind: engine.OnTrack, Index: 10}))

	split := 5
	_, err = svc.PlayCard(ctx, info.ID, service.PlayRequest{Card: 0, Marbles: []int{0, 1}, Split: &split})
	require.Error(t, err)

	got, err := svc.GetGameState(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Board.GetSplitDistance())
	m0, _ := got.Board.Marble(0)
	assert.Equal(t, 10, m0.Location.Index)
}

func TestGameService_PassTurn(t *testing.T) {
	ctx := context.Background()
	svc, sessions, info := newTestService(t)

	giveHand(t, sessions, info.ID, engine.King)
	_, err := svc.PassTurn(ctx, info.ID, 0)
	require.ErrorIs(t, err, engine.ErrCannotDiscard)
	assert.Equal(t, http.StatusConflict, service.HTTPStatus(err))

	giveHand(t, sessions, info.ID, engine.Two)
	result, err := svc.PassTurn(ctx, info.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"pass", "turn"}, eventTypes(result.Events))
	assert.Equal(t, engine.Green, result.NextColour)

	last := result.GameState.PlayHistory[len(result.GameState.PlayHistory)-1]
	assert.True(t, last.Pass)
}

func TestGameService_GameOver(t *testing.T) {
	ctx := context.Background()
	svc, sessions, info := newTestService(t)
	state := giveHand(t, sessions, info.ID, engine.Ace)

	for i := 0; i < 3; i++ {
		require.NoError(t, state.Board.Place(i, engine.Location{Kind: engine.InSafe, Index: i + 1}))
	}
	require.NoError(t, state.Board.Place(3, engine.Location{Kind: engine.OnTrack, Index: state.Board.EntryIndex(engine.Red)}))

	result, err := svc.PlayCard(ctx, info.ID, service.PlayRequest{Card: 0, Marbles: []int{3}})
	require.NoError(t, err)
	assert.True(t, result.GameOver)
	assert.Equal(t, engine.Red, result.Winner)
	types := eventTypes(result.Events)
	assert.Contains(t, types, "safe_entry")
	assert.Equal(t, "game_over", types[len(types)-1])
	assert.Empty(t, result.LegalPlays)

	_, err = svc.PlayCard(ctx, info.ID, service.PlayRequest{Card: 0})
	assert.ErrorIs(t, err, engine.ErrGameOver)
	assert.Equal(t, http.StatusConflict, service.HTTPStatus(err))
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, sessions, info := newTestService(t)
	giveHand(t, sessions, info.ID, engine.King)
	_, err := svc.PlayCard(ctx, info.ID, service.PlayRequest{Card: 0})
	require.NoError(t, err)

	state, err := svc.Reset(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.GameState.ID, state.ID)
	assert.Equal(t, engine.Red, state.GetActivePlayerColour())
	assert.Equal(t, 4, engine.CountMarbles(state.Board, engine.Red, engine.InBase))
	assert.Len(t, state.PlayHistory, 1)

	_, err = svc.Reset(ctx, "nope")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestGameService_Queries(t *testing.T) {
	ctx := context.Background()
	svc, sessions, info := newTestService(t)
	state := giveHand(t, sessions, info.ID, engine.Five, 3)
	require.NoError(t, state.Board.Place(0, engine.Location{Kind: engine.OnTrack, Index: 5}))
	require.NoError(t, state.Board.Place(4, engine.Location{Kind: engine.OnTrack, Index: 20}))

	t.Run("selectable", func(t *testing.T) {
		sel, err := svc.GetSelectableMarbles(ctx, info.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, "Five of hearts", sel.Name)
		assert.NotEmpty(t, sel.Summary)
		ids := []int{}
		for _, m := range sel.Marbles {
			ids = append(ids, m.ID)
		}
		assert.ElementsMatch(t, []int{0, 4}, ids)

		_, err = svc.GetSelectableMarbles(ctx, info.ID, 7)
		assert.ErrorIs(t, err, engine.ErrInvalidCard)
	})

	t.Run("legal plays", func(t *testing.T) {
		plays, err := svc.GetLegalPlays(ctx, info.ID)
		require.NoError(t, err)
		assert.Contains(t, plays, engine.PlayOption{Card: 0, Marbles: []int{4}})
		assert.Contains(t, plays, engine.PlayOption{Card: 1, Marbles: []int{0}})
	})

	t.Run("board view", func(t *testing.T) {
		view, err := svc.GetBoardView(ctx, info.ID)
		require.NoError(t, err)
		require.Len(t, view.Track, 52)
		require.NotNil(t, view.Track[5].Marble)
		assert.Equal(t, engine.Red, view.Track[5].Marble.Colour)
		assert.Len(t, view.Bases[engine.Red], 3)
	})

	t.Run("split", func(t *testing.T) {
		got, err := svc.SetSplitDistance(ctx, info.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, got.Board.GetSplitDistance())

		_, err = svc.SetSplitDistance(ctx, info.ID, -1)
		assert.ErrorIs(t, err, engine.ErrSplitOutOfRange)
	})
}

func TestGameService_GetPlayHistory(t *testing.T) {
	ctx := context.Background()
	svc, sessions, info := newTestService(t)
	sess, err := sessions.Get(info.ID)
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		sess.Engine.GetState().AddPlayToHistory(engine.PlayHistoryEntry{Player: "Red", Card: "Two"})
	}

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantLen   int
		wantFirst int
		wantNext  bool
		wantPages int
	}{
		{"defaults are newest first", service.HistoryOptions{}, 20, 25, true, 2},
		{"second page desc", service.HistoryOptions{Page: 2, Limit: 10}, 10, 15, true, 3},
		{"last page desc", service.HistoryOptions{Page: 3, Limit: 10}, 5, 5, false, 3},
		{"ascending", service.HistoryOptions{Page: 1, Limit: 10, Order: "asc"}, 10, 1, true, 3},
		{"past the end", service.HistoryOptions{Page: 9, Limit: 10}, 0, 0, false, 3},
		{"limit is capped", service.HistoryOptions{Limit: 500, Order: "asc"}, 25, 1, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetPlayHistory(ctx, info.ID, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, 25, resp.TotalPlays)
			assert.Len(t, resp.Plays, tt.wantLen)
			assert.Equal(t, tt.wantNext, resp.HasNext)
			assert.Equal(t, tt.wantPages, resp.TotalPages)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, resp.Plays[0].PlayNumber)
			}
		})
	}
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	configs, err := svc.ListConfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, configs, 2)

	cfg, err := svc.LoadConfig(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, 13, cfg.TrackSpan)

	bad := createTestConfig()
	bad.HandSize = 0
	err = svc.SaveConfig(ctx, "bad", bad)
	assert.ErrorIs(t, err, service.ErrInvalidConfig)
	assert.Equal(t, http.StatusBadRequest, service.HTTPStatus(err))

	require.NoError(t, svc.SaveConfig(ctx, "good", createTestConfig()))
	_, err = svc.LoadConfig(ctx, "good")
	assert.NoError(t, err)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("x: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{service.ErrConfigNotFound, http.StatusNotFound},
		{service.ErrInvalidRequest, http.StatusBadRequest},
		{fmt.Errorf("x: %w", engine.ErrInvalidMarble), http.StatusBadRequest},
		{engine.ErrSplitOutOfRange, http.StatusBadRequest},
		{fmt.Errorf("x: %w", engine.ErrIllegalSwap), http.StatusConflict},
		{engine.ErrCannotField, http.StatusConflict},
		{engine.ErrGameOver, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, service.HTTPStatus(tt.err), "%v", tt.err)
	}
}

func intPtr(v int) *int { return &v }

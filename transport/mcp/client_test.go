package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/jackaroo/game/engine"
	"github.com/wricardo/mcp-training/jackaroo/game/service"
)

func newTestState(t *testing.T) *engine.GameState {
	t.Helper()
	eng, err := engine.NewEngine(engine.DefaultGameConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return eng.GetState()
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "healthy", "sessions": 2})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", response["status"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/api", nil, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}

	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_apiCall_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "invalid selection: no card at position 9",
			"kind":  "invalid_selection",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "POST", "/api/sessions/ab12/play", map[string]int{"card": 9}, nil)
	if err == nil || !strings.Contains(err.Error(), "no card at position 9") {
		t.Errorf("Expected server error message, got: %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	state := newTestState(t)
	var body map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "ab12",
			ConfigName: "quick",
			GameState:  state,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{
		"config_name": "quick",
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "ab12") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
	if !strings.Contains(text, "Config: quick") {
		t.Errorf("Expected config in result, got: %s", text)
	}
	if body["config_id"] != "quick" {
		t.Errorf("Expected config_id quick in request body, got %v", body)
	}
}

func TestClient_playCard(t *testing.T) {
	var got service.PlayRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions/ab12/play" {
			t.Errorf("Expected POST /api/sessions/ab12/play, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)

		marble := 0
		json.NewEncoder(w).Encode(service.PlayResult{
			Success: true,
			Player:  "Player 1",
			Colour:  engine.Red,
			Card:    "Seven of Hearts",
			Marbles: got.Marbles,
			Events: []service.GameEvent{
				{Type: "move", Message: "red marble 0 moved 3", Marble: &marble},
			},
			NextPlayer: "Player 2",
			NextColour: engine.Green,
			NextHand:   []engine.Card{{Name: "Five", Rank: 5, Suit: engine.Spades}},
			LegalPlays: []engine.PlayOption{{Card: 0, Marbles: []int{0}}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handlePlayCard(context.Background(), callTool("play_card", map[string]interface{}{
		"session_id": "ab12",
		"card":       float64(2),
		"marbles":    []interface{}{float64(0), float64(1)},
		"split":      float64(3),
		"intent":     "advance both marbles",
	}))
	if err != nil {
		t.Fatalf("playCard failed: %v", err)
	}

	if got.Card != 2 {
		t.Errorf("Expected card 2, got %d", got.Card)
	}
	if len(got.Marbles) != 2 || got.Marbles[0] != 0 || got.Marbles[1] != 1 {
		t.Errorf("Expected marbles [0 1], got %v", got.Marbles)
	}
	if got.Split == nil || *got.Split != 3 {
		t.Errorf("Expected split 3, got %v", got.Split)
	}

	text := resultText(t, result)
	for _, want := range []string{"Seven of Hearts", "red marble 0 moved 3", "Player 2 (green)", "1 legal plays"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_playCard_Validation(t *testing.T) {
	client := NewClient("http://localhost:0")
	ctx := context.Background()

	result, err := client.handlePlayCard(ctx, callTool("play_card", map[string]interface{}{"card": float64(0)}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "session_id") {
		t.Error("Expected session_id error")
	}

	result, _ = client.handlePlayCard(ctx, callTool("play_card", map[string]interface{}{"session_id": "ab12"}))
	if !result.IsError || !strings.Contains(resultText(t, result), "card is required") {
		t.Error("Expected card error")
	}

	// A missing arguments map must not panic
	result, _ = client.handleSetSplit(ctx, mcp.CallToolRequest{})
	if !result.IsError {
		t.Error("Expected error without arguments")
	}
}

func TestClient_playCard_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "illegal action: cannot pass a marble on its base cell", "kind": "illegal_action"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handlePlayCard(context.Background(), callTool("play_card", map[string]interface{}{
		"session_id": "ab12",
		"card":       float64(0),
		"marbles":    []interface{}{float64(0)},
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected an error result")
	}
	if !strings.Contains(resultText(t, result), "base cell") {
		t.Errorf("Expected server message, got: %s", resultText(t, result))
	}
}

func TestClient_playHistoryQuery(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		json.NewEncoder(w).Encode(service.HistoryResponse{
			Plays: []engine.PlayHistoryEntry{
				{PlayNumber: 1, Turn: 1, Colour: engine.Red, Card: "King of Spades", Success: true},
				{PlayNumber: 2, Turn: 2, Colour: engine.Green, Card: "Two of Hearts", Pass: true, Success: true},
			},
			TotalPlays: 3,
			Page:       1,
			PageSize:   2,
			TotalPages: 2,
			HasNext:    true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handlePlayHistory(context.Background(), callTool("play_history", map[string]interface{}{
		"session_id": "ab12",
		"limit":      float64(2),
	}))
	if err != nil {
		t.Fatalf("playHistory failed: %v", err)
	}

	if query != "limit=2" {
		t.Errorf("Expected query limit=2, got %q", query)
	}

	text := resultText(t, result)
	for _, want := range []string{"Page 1/2", "King of Spades", "burned Two of Hearts", "more on page 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in history, got: %s", want, text)
		}
	}
}

func TestFormatGameState(t *testing.T) {
	state := newTestState(t)
	state.Message = "Welcome to Jackaroo!"

	result := formatGameState(state)

	current := state.GetCurrentPlayer()
	expected := []string{
		"Turn ",
		current.Name,
		"Hand:",
		"[0] " + current.Hand[0].String(),
		"#0@base",
		"Welcome to Jackaroo!",
	}
	for _, field := range expected {
		if !strings.Contains(result, field) {
			t.Errorf("Expected %q in formatted output, got: %s", field, result)
		}
	}

	state.GameOver = true
	state.Winner = engine.Blue
	if !strings.Contains(formatGameState(state), "GAME OVER: blue wins") {
		t.Error("Expected game over line")
	}

	if formatGameState(nil) != "No game state available" {
		t.Error("Expected placeholder for nil state")
	}
}

func TestFormatBoardView(t *testing.T) {
	eng, err := engine.NewEngine(engine.DefaultGameConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	king, err := engine.NewCard(engine.CardDescriptor{Code: engine.King, Frequency: 1, Suit: engine.Spades})
	if err != nil {
		t.Fatalf("Failed to create King: %v", err)
	}
	eng.GetState().GetCurrentPlayer().Hand[0] = king
	if err := eng.PlayCard(0, nil); err != nil {
		t.Fatalf("Failed to field a marble: %v", err)
	}

	view := eng.GetBoardView()
	result := formatBoardView(&view)

	if !strings.Contains(result, "] red #") {
		t.Errorf("Expected red marble listing, got: %s", result)
	}
	for _, colour := range engine.Colours {
		if !strings.Contains(result, string(colour)+" ") {
			t.Errorf("Expected safe zone line for %s", colour)
		}
	}
}

func TestFormatLegalPlays(t *testing.T) {
	state := newTestState(t)
	hand := state.GetCurrentPlayer().Hand

	result := formatLegalPlays(state, []engine.PlayOption{
		{Card: 0},
		{Card: 1, Marbles: []int{2}},
	})
	if !strings.Contains(result, "[0] "+hand[0].String()+" with no marble") {
		t.Errorf("Unexpected legal play output: %s", result)
	}
	if !strings.Contains(result, "on marbles [2]") {
		t.Errorf("Unexpected legal play output: %s", result)
	}

	if !strings.Contains(formatLegalPlays(state, nil), "pass_turn") {
		t.Error("Expected pass hint when no play is legal")
	}
}

func TestGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callTool("game_instructions", nil))
	if err != nil {
		t.Fatalf("gameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, content := range []string{"GAME OBJECTIVE", "Seven", "Jack", "legal_plays", "safe zone"} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected %q in instructions", content)
		}
	}
}

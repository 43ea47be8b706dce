package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/jackaroo/game/engine"
	"github.com/wricardo/mcp-training/jackaroo/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Jackaroo",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Jackaroo - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Four players race their marbles from base, once around the track and into their safe zone.
Cards decide how marbles move; the first player to fill their safe zone wins.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage games
- game_state: hands, marbles and whose turn it is
- board_view: the track drawn cell by cell
- legal_plays: every card and marble combination the active player may play
- play_card: play a card from the active hand on zero, one or two marbles
- pass_turn: burn a card when no legal play exists
- set_split: choose how a two-marble Seven is divided
- reset_game: deal a new game in the same session
- play_history: view past plays
- list_configs: list rule variants
- game_instructions: full rules of every card`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "ID of the rule configuration to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state: whose turn it is, the active hand and where every marble is",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_view",
		Description: "Draw the track and safe zones cell by cell",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleBoardView)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_plays",
		Description: "List every legal card and marble combination for the active player",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleLegalPlays)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_card",
		Description: "Play the card at a hand index on the selected marbles. An empty selection fields a marble (Ace, King) or discards (Ten, Queen).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"card": map[string]interface{}{
					"type":        "integer",
					"description": "Index of the card in the active player's hand (0-based)",
				},
				"marbles": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "integer"},
					"description": "Marble IDs to act on (zero, one or two)",
				},
				"split": map[string]interface{}{
					"type":        "integer",
					"description": "Steps the first marble of a two-marble Seven takes (0-7, optional)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Why you are making this play",
				},
			},
			Required: []string{"session_id", "card", "intent"},
		},
	}, c.handlePlayCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pass_turn",
		Description: "Burn a card and end the turn. Only allowed when no legal play exists.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"card": map[string]interface{}{
					"type":        "integer",
					"description": "Index of the card to burn",
				},
			},
			Required: []string{"session_id", "card"},
		},
	}, c.handlePassTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_split",
		Description: "Set how many of a Seven's seven steps the first selected marble takes",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"distance": map[string]interface{}{
					"type":        "integer",
					"description": "Steps for the first marble (0-7)",
				},
			},
			Required: []string{"session_id", "distance"},
		},
	}, c.handleSetSplit)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Deal a new game in the same session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_history",
		Description: "View past plays with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Plays per page (default 20)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handlePlayHistory)

	// Configuration and help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rule configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules of Jackaroo",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func intsArg(args map[string]interface{}, name string) []int {
	raw, _ := args[name].([]interface{})
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configName, _ := arguments(request)["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := fmt.Sprintf("%s to play", s.CurrentPlayer)
		if s.GameOver {
			status = fmt.Sprintf("won by %s", s.Winner)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Turn %d, %s)\n", s.ID, s.ConfigName, s.Turn, status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleBoardView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view engine.BoardView
	if err := c.apiCall(ctx, "GET", path, nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardView(&view)), nil
}

func (c *Client) handleLegalPlays(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/legal")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Count int                 `json:"count"`
		Plays []engine.PlayOption `json:"plays"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The hand gives the plays readable card names
	var state engine.GameState
	statePath, _ := sessionPath(args, "/state")
	if err := c.apiCall(ctx, "GET", statePath, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLegalPlays(&state, response.Plays)), nil
}

func (c *Client) handlePlayCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/play")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, ok := intArg(args, "card")
	if !ok {
		return mcp.NewToolResultError("card is required"), nil
	}

	// intent is for the caller's own reasoning; the server ignores it
	body := service.PlayRequest{Card: card, Marbles: intsArg(args, "marbles")}
	if split, ok := intArg(args, "split"); ok {
		body.Split = &split
	}

	var result service.PlayResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlayResult(&result)), nil
}

func (c *Client) handlePassTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/pass")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, _ := intArg(args, "card")

	var result service.PlayResult
	if err := c.apiCall(ctx, "POST", path, map[string]int{"card": card}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlayResult(&result)), nil
}

func (c *Client) handleSetSplit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/split")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	distance, ok := intArg(args, "distance")
	if !ok {
		return mcp.NewToolResultError("distance is required"), nil
	}

	var response struct {
		SplitDistance int `json:"split_distance"`
	}
	if err := c.apiCall(ctx, "POST", path, map[string]int{"distance": distance}, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Seven split set: first marble moves %d, second moves %d",
		response.SplitDistance, engine.SevenSteps-response.SplitDistance)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handlePlayHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	suffix := "/history"
	if len(query) > 0 {
		suffix += "?" + query.Encode()
	}

	path, err := sessionPath(args, suffix)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s\n  %s\n  Track: %d cells, Safe zone: %d, Marbles: %d, Hand: %d, Deck: %d cards, Win: %s\n\n",
			config.ConfigID, config.Description, config.TrackLength, config.SafeZoneLength,
			config.MarblesPerPlayer, config.HandSize, config.DeckSize, config.WinCondition)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Jackaroo - Complete Instructions

GAME OBJECTIVE:
Four players (Red, Green, Blue, Yellow) each own a set of marbles that start in base. Bring every
marble onto the track, once around it and into your own safe zone. The first player whose safe
zone is full wins.

THE BOARD:
• Track: a ring of cells shared by everyone, walked clockwise
• BASE cell: where your marbles enter the track; a marble sitting on its own BASE cell cannot be
  passed, swapped or destroyed
• ENTRY cell: just behind your BASE cell; a marble that reaches it may turn into your safe zone.
  While any other marble sits on your ENTRY cell you cannot move onto or past it
• Safe zone: private cells only your own marbles can enter; they never leave it
• Traps (some variants): landing on one destroys the marble and the trap moves elsewhere

TURNS:
On your turn play one card from your hand on zero, one or two marbles. Use legal_plays to see
every option. If nothing is playable, burn a card with pass_turn. Hands are refilled from the deck
at the end of a round (or as soon as they run out, depending on the variant).

CARDS:
• Ace: field a marble from base, or move 1
• Two, Three, Six, Eight, Nine: move that many steps
• Four: move 4 steps backwards
• Five: move any marble (even an opponent's) 5 steps
• Seven: move 7 steps, or split the 7 between two of your marbles (set_split chooses the split)
• Ten: move 10, or with no marble make the next player discard a card
• Jack: swap one of your marbles with another player's marble on the track
• Queen: move 12, or with no marble make a random opponent discard a card
• King: field a marble, or move 13 destroying every marble in its path
• Burner: destroy an opponent's marble on the track
• Saver: send one of your marbles straight to the first free cell of your safe zone

CAPTURES AND BLOCKS:
• Landing on another marble sends it back to its base
• You cannot pass a marble sitting on its own BASE cell
• Two of your own marbles cannot share a cell
• Marbles in the safe zone cannot jump each other

PLAYING WELL:
1. Call game_state first: it shows your hand with indexes and every marble's ID
2. Call legal_plays to get the exact card index and marble IDs that will be accepted
3. Use play_card with those values and explain your intent
4. A rejected play changes nothing; read the error and pick another option

Good luck, and watch your back on the track!`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil || len(state.Players) == 0 {
		return "No game state available"
	}

	var b strings.Builder
	current := state.Players[state.CurrentPlayerIndex]
	fmt.Fprintf(&b, "Turn %d | %s (%s) to play | Deck: %d | Fire pit: %d\n",
		state.Turn, current.Name, current.Colour, deckSize(state), len(state.FirePit))
	if state.Board != nil {
		fmt.Fprintf(&b, "Seven split: %d/%d\n", state.Board.SplitDistance, engine.SevenSteps-state.Board.SplitDistance)
	}

	b.WriteString("\nHand:\n")
	for i, card := range current.Hand {
		fmt.Fprintf(&b, "  [%d] %s\n", i, card)
	}

	if state.Board != nil {
		b.WriteString("\nMarbles:\n")
		for _, p := range state.Players {
			fmt.Fprintf(&b, "  %-6s %s:", p.Colour, p.Name)
			for _, id := range p.Marbles {
				if id >= 0 && id < len(state.Board.Marbles) {
					m := state.Board.Marbles[id]
					fmt.Fprintf(&b, " #%d@%s", m.ID, m.Location)
				}
			}
			b.WriteString("\n")
		}
	}

	if n := len(state.FirePit); n > 0 {
		fmt.Fprintf(&b, "\nTop of fire pit: %s\n", state.FirePit[n-1])
	}

	if state.GameOver {
		if state.Eliminated != "" {
			fmt.Fprintf(&b, "\nGAME OVER: %s eliminated", state.Eliminated)
		} else {
			fmt.Fprintf(&b, "\nGAME OVER: %s wins", state.Winner)
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func deckSize(state *engine.GameState) int {
	if state.Deck == nil {
		return 0
	}
	return state.Deck.Size()
}

var colourInitial = map[engine.Colour]string{
	engine.Red: "R", engine.Green: "G", engine.Blue: "B", engine.Yellow: "Y",
}

// cellGlyph draws a cell: the owner's initial for a marble, b/e for a
// BASE/ENTRY cell, x for a trap, . otherwise
func cellGlyph(cell engine.CellView) string {
	switch {
	case cell.Marble != nil:
		return colourInitial[cell.Marble.Colour]
	case cell.Trap:
		return "x"
	case cell.Type == engine.Base:
		return "b"
	case cell.Type == engine.Entry:
		return "e"
	}
	return "."
}

func formatBoardView(view *engine.BoardView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Track (%d cells, clockwise from 0):\n", len(view.Track))
	for i, cell := range view.Track {
		if i > 0 && i%25 == 0 {
			b.WriteString("\n")
		}
		b.WriteString(cellGlyph(cell))
	}
	b.WriteString("\n\nOn the track:\n")
	for _, cell := range view.Track {
		if cell.Marble != nil {
			fmt.Fprintf(&b, "  [%d] %s #%d\n", cell.Index, cell.Marble.Colour, cell.Marble.ID)
		}
	}

	colours := make([]string, 0, len(view.SafeZones))
	for c := range view.SafeZones {
		colours = append(colours, string(c))
	}
	sort.Strings(colours)

	b.WriteString("\nSafe zones and bases:\n")
	for _, c := range colours {
		colour := engine.Colour(c)
		var zone strings.Builder
		for _, cell := range view.SafeZones[colour] {
			zone.WriteString(cellGlyph(cell))
		}
		fmt.Fprintf(&b, "  %-6s safe [%s] base %v\n", colour, zone.String(), view.Bases[colour])
	}
	b.WriteString("\nLegend: R/G/B/Y marble, b BASE cell, e ENTRY cell, x trap, . empty")
	return b.String()
}

func formatLegalPlays(state *engine.GameState, plays []engine.PlayOption) string {
	if len(plays) == 0 {
		return "No legal play: burn a card with pass_turn"
	}
	var hand []engine.Card
	if len(state.Players) > 0 {
		hand = state.Players[state.CurrentPlayerIndex].Hand
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Legal plays (%d):\n", len(plays))
	for _, p := range plays {
		name := fmt.Sprintf("card %d", p.Card)
		if p.Card >= 0 && p.Card < len(hand) {
			name = fmt.Sprintf("[%d] %s", p.Card, hand[p.Card])
		}
		if len(p.Marbles) == 0 {
			fmt.Fprintf(&b, "  %s with no marble\n", name)
		} else {
			fmt.Fprintf(&b, "  %s on marbles %v\n", name, p.Marbles)
		}
	}
	return b.String()
}

func formatPlayResult(result *service.PlayResult) string {
	var b strings.Builder
	if len(result.Marbles) > 0 {
		fmt.Fprintf(&b, "%s (%s) played %s on marbles %v\n", result.Player, result.Colour, result.Card, result.Marbles)
	} else {
		fmt.Fprintf(&b, "%s (%s) played %s\n", result.Player, result.Colour, result.Card)
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, ev := range result.Events {
			fmt.Fprintf(&b, "  - [%s] %s\n", ev.Type, ev.Message)
		}
	}

	if result.GameOver {
		if result.Eliminated != "" {
			fmt.Fprintf(&b, "\nGAME OVER: %s eliminated\n", result.Eliminated)
		} else {
			fmt.Fprintf(&b, "\nGAME OVER: %s wins\n", result.Winner)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "\nNext: %s (%s), %d legal plays\n", result.NextPlayer, result.NextColour, len(result.LegalPlays))
	for i, card := range result.NextHand {
		fmt.Fprintf(&b, "  [%d] %s\n", i, card)
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Play History (Page %d/%d), total plays: %d\n\n",
		history.Page, history.TotalPages, history.TotalPlays)

	for _, play := range history.Plays {
		status := "✓"
		if !play.Success {
			status = "✗ " + play.Error
		}
		action := play.Card
		if play.Pass {
			action = "burned " + play.Card
		} else if len(play.Marbles) > 0 {
			action = fmt.Sprintf("%s on %v", play.Card, play.Marbles)
		}
		fmt.Fprintf(&b, "%d. turn %d %s: %s %s\n", play.PlayNumber, play.Turn, play.Colour, action, status)
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\n(more on page %d)", history.Page+1)
	}
	return b.String()
}

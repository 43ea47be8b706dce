// Package mcp exposes Jackaroo to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API (see package api) and the JSON reply is rendered as
// plain text an agent can read. Rule violations come back as tool errors
// carrying the server's message, so an agent can pick another play.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: turn, active hand and every marble's location
//   - board_view: the track drawn cell by cell
//   - legal_plays: every accepted card and marble combination
//   - play_card: play a card on zero, one or two marbles (optional Seven split)
//   - pass_turn: burn a card when nothing is playable
//   - set_split: choose how a two-marble Seven is divided
//   - reset_game: deal a new game in the same session
//   - play_history: paginated play log
//   - list_configs: available rule variants
//   - game_instructions: full rules text
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// The same MCP server is mounted over streamable HTTP at /mcp in server mode.
package mcp

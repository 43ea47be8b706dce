// Package websocket pushes live game state to browser and agent clients.
//
// A central Hub owns every connection. Clients attach to one session with
// GET /ws?session=ID (IDs are case-insensitive) and only listen: the server
// sends a JSON Message after every committed play, pass, split change or
// reset:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "game_events", "data": [...]}
//
// Each client runs a read pump that services ping/pong and a write pump that
// drains its buffered send channel. A client that cannot keep up is dropped.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastToSession(sessionID, state)
package websocket

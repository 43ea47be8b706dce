// Package api serves the Jackaroo REST API over gorilla/mux.
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions             create a session ({"config_id": "classic"})
//   - GET    /api/sessions             list sessions (?sort=created|accessed&order=asc|desc&limit=N&config=ID)
//   - GET    /api/sessions/{id}        session summary
//   - DELETE /api/sessions/{id}        delete a session
//
// Game State:
//   - GET /api/sessions/{id}/state              full game state
//   - GET /api/sessions/{id}/board              read-only board projection
//   - GET /api/sessions/{id}/selectable?card=N  marbles the card at hand index N may target
//   - GET /api/sessions/{id}/legal              every legal card and marble combination
//   - GET /api/sessions/{id}/history            paginated plays (?page=1&limit=20&order=desc)
//
// Game Operations:
//   - POST /api/sessions/{id}/play   {"card": 0, "marbles": [2], "split": 3}
//   - POST /api/sessions/{id}/pass   {"card": 0}, only when no legal play exists
//   - POST /api/sessions/{id}/split  {"distance": 4}
//   - POST /api/sessions/{id}/reset
//
// Configuration:
//   - GET  /api/configs         list rule configurations
//   - POST /api/configs         save a configuration
//   - GET  /api/configs/{name}  load one configuration
//
// Live updates are served on GET /ws?session=ID (see package websocket) and
// GET /api/health reports liveness.
//
// Error Handling:
//
// Errors are JSON objects. Status codes come from service.HTTPStatus: 404 for
// unknown sessions or configs, 400 for invalid selections, 409 for illegal
// actions and plays after the game has ended. Rule violations also carry a
// kind:
//
//	{"error": "Red cannot play Five: illegal movement", "kind": "illegal_action"}
package api

// Package service provides the business logic layer for the Jackaroo server.
//
// The service package implements:
//   - Multi-session game management
//   - Card plays, passes and the Seven split setting
//   - Event extraction from the board's commit log
//   - Paginated play history
//   - Mapping of engine errors onto HTTP status codes
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages rule configuration loading and validation.
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the rules engine. Each session owns its own engine instance; a mutex
// serialises mutations so a play observes a consistent game. Sessions are
// saved through the SessionManager after every mutation.
//
// Usage:
//
//	sessionMgr := session.NewManagerWithPersistence(persistence, session.WithLogger(logger))
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, logger)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.PlayCard(ctx, info.ID, service.PlayRequest{Card: 0})
//	if err != nil {
//		status := service.HTTPStatus(err) // 400 selection, 409 action, 404 session
//	}
package service

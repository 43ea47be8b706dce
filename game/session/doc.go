// Package session provides session management for the Jackaroo server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique 4-character session ID generation
//   - Write-through persistence to files, Redis or a SQL database
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session manager that handles all session operations. It
// satisfies service.SessionManager. SessionPersistence is the storage
// contract; FilePersistence, RedisPersistence and SQLPersistence implement
// it. Every backend stores the same PersistedSessionData JSON document and
// rebuilds the engine from the rule configuration named in it.
//
// Session Identifiers:
//
// Generated IDs are four hex characters drawn from crypto/rand and retried
// on collision. Lookups are case-insensitive.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence, session.WithLogger(logger))
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", config)
//
// Cleanup:
//
// CleanupExpiredSessions evicts idle sessions from memory; a persisted copy
// is reloaded on the next Get. PruneMissing drops sessions whose stored
// copy was removed outside the server.
package session

// Package session provides session management for the greedy gnomes solver.
//
// A session binds one immutable grid to the history of searches run on it.
// Manager keeps sessions in memory and can write them through to a
// SessionPersistence backend:
//
//   - FilePersistence stores one JSON file per session
//   - RedisPersistence stores one key per session, optionally with a TTL
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters from crypto/rand. Lookups are
// case-insensitive.
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store, logger)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		logger.Warnw("could not restore sessions", "error", err)
//	}
//
//	sess, err := manager.Create("", "example", grid)
//
// Sessions evicted by CleanupExpiredSessions stay in persistence and are
// loaded again on the next Get.
package session

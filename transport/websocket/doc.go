// Package websocket pushes solver events to browser and agent clients.
//
// Clients subscribe to one session with GET /ws?session=<id>. Every solve,
// comparison or deletion on that session is pushed as a JSON message:
//
//	{"session_id": "a1b2", "event": "solve_completed", "data": {...}, "sent_at": "..."}
//
// A single Hub goroutine owns the subscription table. Callers only queue
// events with BroadcastEvent, which never blocks; clients that fall behind
// are dropped. Incoming frames are read and discarded so that pongs and
// close frames are processed.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.BroadcastEvent(sessionID, websocket.EventSolveCompleted, result)
package websocket

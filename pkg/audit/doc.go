// Package audit provides audit logging for incident operations.
//
// Every create, fetch and delete handled by the server produces an event
// written to stdout in RFC5424 syslog format and, when AUDIT_DATABASE_URL
// is set, persisted to the messages table of a PostgreSQL audit database.
//
// # Event Types
//
//   - CreateEvent: an incident was created (or creation was rejected)
//   - FetchEvent: a single incident was read
//   - DeleteEvent: an incident was deleted
//
// # Usage
//
//	auditor := audit.NewLogger(os.Stdout, store, logger)
//	auditor.Log(ctx, audit.CreateEvent{IncidentID: 1, ClientIP: ip, Success: true})
//
// A nil *Logger discards events, which is how auditing is disabled.
package audit

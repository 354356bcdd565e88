// Package events carries domain events from the services to loosely coupled
// handlers.
//
// Services emit an Event only after the transaction that produced it has
// committed. Handlers run synchronously in registration order; a failing
// handler is logged and never affects the operation that emitted the event.
//
// The package ships two handlers: AuditLogHandler records every event, and
// AlertHandler escalates ledger invariant violations.
package events

package events

import (
	"context"
	"log/slog"
)

// AuditLogHandler writes every event to the log at INFO.
type AuditLogHandler struct {
	logger *slog.Logger
}

// NewAuditLogHandler creates an audit handler writing to log.
func NewAuditLogHandler(log *slog.Logger) *AuditLogHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuditLogHandler{logger: log.With(slog.String("component", "audit_log"))}
}

// HandleEvent implements Handler.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.logger.InfoContext(ctx, "domain event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.String("user_id", event.UserID.String()),
		slog.String("payload", string(event.Payload)),
		slog.Time("created_at", event.CreatedAt))
	return nil
}

// AlertHandler escalates ledger invariant violations. Other events are ignored.
type AlertHandler struct {
	logger *slog.Logger
}

// NewAlertHandler creates an alert handler writing to log.
func NewAlertHandler(log *slog.Logger) *AlertHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AlertHandler{logger: log.With(slog.String("component", "alert"))}
}

// HandleEvent implements Handler.
func (h *AlertHandler) HandleEvent(ctx context.Context, event *Event) error {
	if event.Type != LedgerInvariantViolated {
		return nil
	}
	h.logger.ErrorContext(ctx, "ledger invariant violated",
		slog.Bool("alert", true),
		slog.String("event_id", event.ID.String()),
		slog.String("user_id", event.UserID.String()),
		slog.String("payload", string(event.Payload)))
	return nil
}

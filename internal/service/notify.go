package service

import (
	"context"

	"courseportal/internal/logger"
	"courseportal/internal/model"
)

// NotificationEvent describes new content a teacher's students may want to hear about.
type NotificationEvent struct {
	Type      model.NotificationType
	TeacherID string
	UnitID    string
	FileID    *string
}

// Notifier delivers content notifications. Delivery is best effort:
// callers log a failure and carry on.
type Notifier interface {
	Notify(ctx context.Context, ev NotificationEvent) error
}

// NewNotifier returns the log-only notifier when enabled, otherwise one that drops every event.
// Message delivery (email) is not wired; the log line is the integration point.
func NewNotifier(enabled bool, log *logger.Logger) Notifier {
	if !enabled {
		return disabledNotifier{}
	}
	return &logNotifier{log: log}
}

type disabledNotifier struct{}

func (disabledNotifier) Notify(context.Context, NotificationEvent) error { return nil }

type logNotifier struct {
	log *logger.Logger
}

func (n *logNotifier) Notify(_ context.Context, ev NotificationEvent) error {
	fields := map[string]any{
		"notification_type": string(ev.Type),
		"teacher_id":        ev.TeacherID,
		"unit_id":           ev.UnitID,
	}
	if ev.FileID != nil {
		fields["file_id"] = *ev.FileID
	}
	n.log.Info("notification_queued", fields)
	return nil
}

func (d deps) notify(ctx context.Context, ev NotificationEvent) {
	if err := d.notifier.Notify(ctx, ev); err != nil {
		d.log.Error("notification_failed", err, map[string]any{
			"notification_type": string(ev.Type),
			"unit_id":           ev.UnitID,
		})
	}
}

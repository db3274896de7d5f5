package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
)

type ActivityStore interface {
	RecordActivity(ctx context.Context, entry *models.ActivityEntry) error
}

// ActivityLogger appends audit entries for admin actions. Write failures are
// logged and swallowed so a broken audit trail never blocks the action that
// triggered it.
type ActivityLogger struct {
	Store ActivityStore
}

// Record appends one entry. userID and userName identify the acting admin;
// pass them empty for unauthenticated actors, which are recorded as "System".
func (l *ActivityLogger) Record(ctx context.Context, action, details, userID, userName, ip string) {
	if userName == "" {
		userName = "System"
	}
	entry := &models.ActivityEntry{
		Action:    action,
		Details:   details,
		UserID:    userID,
		UserName:  userName,
		Timestamp: time.Now().UTC(),
		IPAddress: ip,
	}
	if err := l.Store.RecordActivity(ctx, entry); err != nil {
		slog.Warn("Failed to write activity log entry", "action", action, "error", err)
	}
}

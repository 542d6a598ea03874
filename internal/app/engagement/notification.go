package engagement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ember-coach/ember/internal/domain"
	"github.com/ember-coach/ember/internal/infra/sqlite"
)

// NotificationService manages coaching notifications.
// Policy:
//   - Hard per-user daily cap
//   - No notifications between 22:00–08:00
//   - Only for: level up, achievement, streak milestone, risk intervention
//   - NEVER for: streak at risk, guilt trips
type NotificationService struct {
	db     *sqlite.DB
	policy domain.NotificationPolicy
}

// NewNotificationService creates a notification service with default policy.
func NewNotificationService(db *sqlite.DB) *NotificationService {
	return &NotificationService{
		db:     db,
		policy: domain.DefaultNotificationPolicy(),
	}
}

// NewNotificationServiceWithPolicy creates a notification service with custom policy.
func NewNotificationServiceWithPolicy(db *sqlite.DB, policy domain.NotificationPolicy) *NotificationService {
	return &NotificationService{db: db, policy: policy}
}

// Create creates a notification if policy allows it.
// Returns the notification ID (0 if suppressed by policy) and any error.
func (n *NotificationService) Create(notif domain.Notification) (int64, error) {
	todayCount, err := n.db.NotificationCountToday(notif.UserID)
	if err != nil {
		return 0, fmt.Errorf("count today: %w", err)
	}
	if todayCount >= n.policy.MaxPerDay {
		return 0, nil // Suppressed — daily limit reached
	}

	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}
	if n.isQuietHour(notif.CreatedAt) {
		return 0, nil // Suppressed — quiet hours
	}

	notif.Seen = false
	id, err := n.db.InsertNotification(notif)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

// Pending returns unseen notifications for a user.
func (n *NotificationService) Pending(userID string, limit int) ([]domain.Notification, error) {
	return n.db.ListPendingNotifications(userID, limit)
}

// MarkSeen marks a notification as seen.
func (n *NotificationService) MarkSeen(id int64) error {
	return n.db.MarkNotificationSeen(id)
}

// Policy returns the current notification policy.
func (n *NotificationService) Policy() domain.NotificationPolicy {
	return n.policy
}

// isQuietHour returns true if the given time falls within quiet hours.
func (n *NotificationService) isQuietHour(t time.Time) bool {
	startHour, startMin := parseHHMM(n.policy.QuietStart)
	endHour, endMin := parseHHMM(n.policy.QuietEnd)

	timeMinutes := t.Hour()*60 + t.Minute()
	startMinutes := startHour*60 + startMin
	endMinutes := endHour*60 + endMin

	if startMinutes > endMinutes {
		// Wraps midnight: e.g., 22:00 – 08:00
		return timeMinutes >= startMinutes || timeMinutes < endMinutes
	}
	return timeMinutes >= startMinutes && timeMinutes < endMinutes
}

// parseHHMM parses "HH:MM" into hour and minute.
func parseHHMM(s string) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m
}

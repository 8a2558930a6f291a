package services

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"redweb-backend/internal/apperr"
	"redweb-backend/internal/auth"
	"redweb-backend/internal/models"
	"redweb-backend/internal/policy"
)

type NotificationService struct {
	c   *collections
	log *zap.Logger
	now func() time.Time
}

type NotificationInput struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Link    string `json:"link"`
}

var (
	errNotificationNotFound = apperr.NotFound("Notification not found")
	errNotificationDenied   = apperr.Forbidden("Access denied")
)

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, caller auth.Identity) ([]models.Notification, error) {
	all, err := s.c.notifications.Load(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.Notification, 0)
	for _, n := range all {
		if n.UserID == caller.UserID {
			mine = append(mine, n)
		}
	}
	slices.SortStableFunc(mine, func(a, b models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return mine, nil
}

func (s *NotificationService) Get(ctx context.Context, caller auth.Identity, id string) (models.Notification, error) {
	all, err := s.c.notifications.Load(ctx)
	if err != nil {
		return models.Notification{}, err
	}
	i := findNotification(all, id)
	if i < 0 {
		return models.Notification{}, errNotificationNotFound
	}
	if !policy.CanAccessNotification(caller, &all[i]) {
		s.denied(caller, id)
		return models.Notification{}, errNotificationDenied
	}
	return all[i], nil
}

// Create stores a notification addressed to the caller.
func (s *NotificationService) Create(ctx context.Context, caller auth.Identity, in NotificationInput) (models.Notification, error) {
	title, message := cleanText(in.Title), cleanText(in.Message)
	if title == "" || message == "" {
		return models.Notification{}, apperr.Validation("Title and message are required")
	}
	typ := in.Type
	if typ == "" {
		typ = models.NotificationGeneral
	}
	return s.insert(ctx, caller.UserID, title, message, typ, in.Link)
}

// Notify delivers a system notification to userID. Failures are logged and
// swallowed; the action that triggered the notification has already happened.
func (s *NotificationService) Notify(ctx context.Context, userID, title, message, typ, link string) {
	if userID == "" {
		return
	}
	if _, err := s.insert(ctx, userID, title, message, typ, link); err != nil {
		s.log.Error("❌ failed to deliver notification", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.log.Debug("📨 notification delivered", zap.String("user_id", userID), zap.String("type", typ))
}

func (s *NotificationService) insert(ctx context.Context, userID, title, message, typ, link string) (models.Notification, error) {
	n := models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		Link:      link,
		CreatedAt: s.now(),
	}
	err := s.c.notifications.Update(ctx, func(all []models.Notification) ([]models.Notification, error) {
		return append(all, n), nil
	})
	return n, err
}

func (s *NotificationService) MarkRead(ctx context.Context, caller auth.Identity, id string) (models.Notification, error) {
	var out models.Notification
	err := s.c.notifications.Update(ctx, func(all []models.Notification) ([]models.Notification, error) {
		i := findNotification(all, id)
		if i < 0 {
			return nil, errNotificationNotFound
		}
		n := &all[i]
		if !policy.CanAccessNotification(caller, n) {
			s.denied(caller, id)
			return nil, errNotificationDenied
		}
		if !n.IsRead {
			now := s.now()
			n.IsRead = true
			n.ReadAt = &now
		}
		out = *n
		return all, nil
	})
	return out, err
}

// MarkAllRead marks every unread notification of the caller and returns how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, caller auth.Identity) (int, error) {
	changed := 0
	err := s.c.notifications.Update(ctx, func(all []models.Notification) ([]models.Notification, error) {
		now := s.now()
		for i := range all {
			if all[i].UserID == caller.UserID && !all[i].IsRead {
				all[i].IsRead = true
				all[i].ReadAt = &now
				changed++
			}
		}
		return all, nil
	})
	return changed, err
}

func (s *NotificationService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	return s.c.notifications.Update(ctx, func(all []models.Notification) ([]models.Notification, error) {
		i := findNotification(all, id)
		if i < 0 {
			return nil, errNotificationNotFound
		}
		if !policy.CanAccessNotification(caller, &all[i]) {
			s.denied(caller, id)
			return nil, errNotificationDenied
		}
		return append(all[:i], all[i+1:]...), nil
	})
}

func (s *NotificationService) denied(caller auth.Identity, id string) {
	s.log.Warn("⛔ notification access denied", zap.String("notification_id", id), zap.String("user_id", caller.UserID))
}

func findNotification(all []models.Notification, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}

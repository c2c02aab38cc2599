package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service handles notification logic
type Service struct {
	repo Repository
}

// NewService creates notification service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a notification
func (s *Service) Create(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, data *NotificationData) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}
	n.SetData(data)

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

// List returns notifications for user
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks the user's notification as read
func (s *Service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil || n.UserID != userID {
		return ErrNotificationNotFound
	}
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// --- Helper methods for creating specific notifications ---

// NotifyOfficePendingApproval tells an administrator an office entered
// the approval queue. Fire-and-forget: a failed insert is logged, never
// propagated to the edit that triggered it.
func (s *Service) NotifyOfficePendingApproval(ctx context.Context, adminID, officeID uuid.UUID, officeTitle string) {
	_, err := s.Create(ctx, adminID, TypeOfficePendingApproval,
		"Office pending approval",
		"\""+officeTitle+"\" is waiting for review",
		&NotificationData{OfficeID: &officeID},
	)
	if err != nil {
		log.Error().Err(err).Str("office_id", officeID.String()).Msg("approval notification failed")
	}
}

// NotifyReservationCancelled tells an office owner a booking was cancelled
func (s *Service) NotifyReservationCancelled(ctx context.Context, ownerID, reservationID uuid.UUID, officeTitle string) {
	_, err := s.Create(ctx, ownerID, TypeReservationCancelled,
		"Reservation cancelled",
		"A reservation at \""+officeTitle+"\" was cancelled",
		&NotificationData{ReservationID: &reservationID},
	)
	if err != nil {
		log.Error().Err(err).Str("reservation_id", reservationID.String()).Msg("cancellation notification failed")
	}
}

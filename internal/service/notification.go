package service

import (
	"context"
	"encoding/json"
	"log"

	"socialink/internal/model"
	"socialink/internal/realtime"
	"socialink/internal/repository"
)

// Notifier lets the mutation services (follow, like, comment) fan out
// notifications without depending on the full NotificationService.
type Notifier interface {
	// CreateNotification inserts a notification row for the recipient.
	// A sender notifying themselves is a no-op.
	CreateNotification(ctx context.Context, recipientID, senderID int64, notifType string, postID *int64) error
}

// NotificationService handles the notification inbox and the fan-out
// performed synchronously with follows, likes and comments. Live delivery
// goes through redis pub/sub to the websocket hub; the paginated list is the
// recovery path for recipients who were offline.
type NotificationService struct {
	notifRepo   repository.NotificationRepository
	profileRepo repository.ProfileRepository
	push        *realtime.Notifier // Can be nil if realtime not configured
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	profileRepo repository.ProfileRepository,
	push *realtime.Notifier,
) *NotificationService {
	return &NotificationService{
		notifRepo:   notifRepo,
		profileRepo: profileRepo,
		push:        push,
	}
}

// GetNotifications returns one reverse-chronological page plus the unread count.
func (s *NotificationService) GetNotifications(ctx context.Context, userID int64, page, limit int) (*model.NotificationListResponse, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	notifications, err := s.notifRepo.GetByRecipient(ctx, userID, limit, page*limit)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.notifRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unreadCount,
		Page:          page,
		HasMore:       len(notifications) == limit,
	}, nil
}

// MarkAsRead marks a single notification as read. Idempotent: re-marking a
// read notification succeeds without changing anything.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	return s.notifRepo.MarkAsRead(ctx, userID, notificationID)
}

// MarkAllAsRead marks all notifications for a user as read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the number of unread notifications (for badge display).
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.notifRepo.GetUnreadCount(ctx, userID)
}

// CreateNotification inserts a notification for the recipient and publishes
// it to the recipient's live channel. Called by the follow, post and comment
// services after their transaction commits.
func (s *NotificationService) CreateNotification(
	ctx context.Context,
	recipientID, senderID int64,
	notifType string,
	postID *int64,
) error {
	// Never notify yourself
	if recipientID == senderID {
		return nil
	}

	sender, err := s.profileRepo.GetByID(ctx, senderID)
	if err != nil {
		return err
	}

	message, err := model.NotificationMessage(notifType, sender.Username)
	if err != nil {
		return err
	}

	n := &model.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        notifType,
		Message:     message,
		PostID:      postID,
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return err
	}

	n.Sender = &model.ProfileSummary{
		ID:        sender.ID,
		Username:  sender.Username,
		FirstName: sender.FirstName,
		LastName:  sender.LastName,
		AvatarURL: sender.AvatarURL,
	}

	// Live push is best-effort; the inbox already has the row
	if s.push != nil {
		s.publishLive(ctx, n)
	}

	return nil
}

func (s *NotificationService) publishLive(ctx context.Context, n *model.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("[NotificationService] marshal live payload FAILED: notif=%d err=%v", n.ID, err)
		return
	}
	if err := s.push.PublishUser(ctx, n.RecipientID, string(payload)); err != nil {
		log.Printf("[NotificationService] publish live FAILED: recipient=%d err=%v", n.RecipientID, err)
	}
}

package model

import (
	"errors"
	"fmt"
	"time"
)

// Notification types
const (
	NotificationTypeFollow  = "follow"
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
)

// Notification represents a single notification record.
type Notification struct {
	ID          int64     `db:"id" json:"id"`
	RecipientID int64     `db:"recipient_id" json:"-"`
	SenderID    int64     `db:"sender_id" json:"sender_id"`
	Type        string    `db:"type" json:"type"`
	Message     string    `db:"message" json:"message"`
	PostID      *int64    `db:"post_id" json:"post_id,omitempty"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Joined field for display
	Sender *ProfileSummary `json:"sender,omitempty"`
}

// NotificationListResponse is the paginated notification list response.
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
	Page          int            `json:"page"`
	HasMore       bool           `json:"has_more"`
}

// UnreadCountResponse is the badge counter response.
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// NotificationMessage renders the display message for a notification type.
// The sender's username is baked into the stored row so the message survives
// later username changes the same way the activity did.
func NotificationMessage(notifType, senderUsername string) (string, error) {
	switch notifType {
	case NotificationTypeFollow:
		return fmt.Sprintf("@%s started following you", senderUsername), nil
	case NotificationTypeLike:
		return fmt.Sprintf("@%s liked your post", senderUsername), nil
	case NotificationTypeComment:
		return fmt.Sprintf("@%s commented on your post", senderUsername), nil
	default:
		return "", ErrUnknownNotificationType
	}
}

// Notification errors
var (
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrUnknownNotificationType = errors.New("unknown notification type")
)

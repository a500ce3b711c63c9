package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"socialink/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts a new notification row and fills in its id and created_at.
func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, sender_id, type, message, post_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_read, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		n.RecipientID, n.SenderID, n.Type, n.Message, n.PostID,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// GetByRecipient returns one reverse-chronological page with sender summaries.
func (r *notificationRepository) GetByRecipient(ctx context.Context, recipientID int64, limit, offset int) ([]model.Notification, error) {
	query := `
		SELECT n.id, n.recipient_id, n.sender_id, n.type, n.message, n.post_id, n.is_read, n.created_at,
		       s.username AS sender_username, s.first_name AS sender_first_name,
		       s.last_name AS sender_last_name, s.avatar_url AS sender_avatar_url
		FROM notifications n
		JOIN profiles s ON s.id = n.sender_id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2 OFFSET $3
	`

	type notifRow struct {
		ID              int64     `db:"id"`
		RecipientID     int64     `db:"recipient_id"`
		SenderID        int64     `db:"sender_id"`
		Type            string    `db:"type"`
		Message         string    `db:"message"`
		PostID          *int64    `db:"post_id"`
		IsRead          bool      `db:"is_read"`
		CreatedAt       time.Time `db:"created_at"`
		SenderUsername  string    `db:"sender_username"`
		SenderFirstName *string   `db:"sender_first_name"`
		SenderLastName  *string   `db:"sender_last_name"`
		SenderAvatarURL *string   `db:"sender_avatar_url"`
	}

	var rows []notifRow
	err := r.db.SelectContext(ctx, &rows, query, recipientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get notifications: %w", err)
	}

	notifications := make([]model.Notification, len(rows))
	for i, row := range rows {
		notifications[i] = model.Notification{
			ID:          row.ID,
			RecipientID: row.RecipientID,
			SenderID:    row.SenderID,
			Type:        row.Type,
			Message:     row.Message,
			PostID:      row.PostID,
			IsRead:      row.IsRead,
			CreatedAt:   row.CreatedAt,
			Sender: &model.ProfileSummary{
				ID:        row.SenderID,
				Username:  row.SenderUsername,
				FirstName: row.SenderFirstName,
				LastName:  row.SenderLastName,
				AvatarURL: row.SenderAvatarURL,
			},
		}
	}

	return notifications, nil
}

// MarkAsRead marks one notification as read, scoped to the recipient.
// The is_read = false predicate keeps the write monotonic and idempotent:
// a second call matches zero rows and changes nothing.
func (r *notificationRepository) MarkAsRead(ctx context.Context, recipientID, notificationID int64) error {
	checkQuery := `SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1 AND recipient_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, checkQuery, notificationID, recipientID); err != nil {
		return fmt.Errorf("check notification: %w", err)
	}
	if !exists {
		return model.ErrNotificationNotFound
	}

	query := `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1 AND recipient_id = $2 AND is_read = false
	`
	_, err := r.db.ExecContext(ctx, query, notificationID, recipientID)
	if err != nil {
		return fmt.Errorf("mark notification as read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks every unread notification for the recipient as read.
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID int64) error {
	query := `
		UPDATE notifications
		SET is_read = true
		WHERE recipient_id = $1 AND is_read = false
	`
	_, err := r.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		return fmt.Errorf("mark all notifications as read: %w", err)
	}
	return nil
}

// GetUnreadCount returns the count of unread notifications.
func (r *notificationRepository) GetUnreadCount(ctx context.Context, recipientID int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND is_read = false
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, recipientID)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("get unread count: %w", err)
	}
	return count, nil
}

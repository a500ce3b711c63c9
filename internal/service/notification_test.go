package service

import (
	"context"
	"errors"
	"testing"

	"socialink/internal/model"
)

func TestNotificationService_CreateNotification_SelfIsNoop(t *testing.T) {
	notifRepo := &mockNotificationRepository{}
	svc := NewNotificationService(notifRepo, &mockProfileRepository{}, nil)

	err := svc.CreateNotification(context.Background(), 1, 1, model.NotificationTypeLike, nil)
	if err != nil {
		t.Fatalf("self notification should be a silent no-op, got %v", err)
	}
	if len(notifRepo.created) != 0 {
		t.Errorf("self notification must not create a row, got %d", len(notifRepo.created))
	}
}

func TestNotificationService_CreateNotification_RendersTemplate(t *testing.T) {
	notifRepo := &mockNotificationRepository{}
	profileRepo := &mockProfileRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Profile, error) {
			return activeProfile(id, "bob"), nil
		},
	}
	svc := NewNotificationService(notifRepo, profileRepo, nil)

	postID := int64(7)
	if err := svc.CreateNotification(context.Background(), 1, 2, model.NotificationTypeComment, &postID); err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	if len(notifRepo.created) != 1 {
		t.Fatalf("expected 1 row, got %d", len(notifRepo.created))
	}
	n := notifRepo.created[0]
	if n.Message != "@bob commented on your post" {
		t.Errorf("message = %q", n.Message)
	}
	if n.RecipientID != 1 || n.SenderID != 2 {
		t.Errorf("recipient/sender = %d/%d, want 1/2", n.RecipientID, n.SenderID)
	}
	if n.PostID == nil || *n.PostID != 7 {
		t.Errorf("post id = %v, want 7", n.PostID)
	}
	if n.Sender == nil || n.Sender.Username != "bob" {
		t.Errorf("sender summary = %+v", n.Sender)
	}
}

func TestNotificationService_CreateNotification_UnknownType(t *testing.T) {
	profileRepo := &mockProfileRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Profile, error) {
			return activeProfile(id, "bob"), nil
		},
	}
	svc := NewNotificationService(&mockNotificationRepository{}, profileRepo, nil)

	err := svc.CreateNotification(context.Background(), 1, 2, "poke", nil)
	if !errors.Is(err, model.ErrUnknownNotificationType) {
		t.Errorf("expected ErrUnknownNotificationType, got %v", err)
	}
}

func TestNotificationService_GetNotifications(t *testing.T) {
	notifRepo := &mockNotificationRepository{
		getByRecipientFn: func(ctx context.Context, recipientID int64, limit, offset int) ([]model.Notification, error) {
			out := make([]model.Notification, limit)
			for i := range out {
				out[i] = model.Notification{ID: int64(offset + i + 1)}
			}
			return out, nil
		},
		getUnreadCountFn: func(ctx context.Context, recipientID int64) (int, error) {
			return 4, nil
		},
	}
	svc := NewNotificationService(notifRepo, &mockProfileRepository{}, nil)

	resp, err := svc.GetNotifications(context.Background(), 1, 2, 20)
	if err != nil {
		t.Fatalf("GetNotifications failed: %v", err)
	}
	if resp.UnreadCount != 4 {
		t.Errorf("unread = %d, want 4", resp.UnreadCount)
	}
	if resp.Page != 2 || !resp.HasMore {
		t.Errorf("page=%d hasMore=%v, want page=2 hasMore=true", resp.Page, resp.HasMore)
	}
}

func TestNotificationService_MarkAsRead_Idempotent(t *testing.T) {
	calls := 0
	notifRepo := &mockNotificationRepository{
		markAsReadFn: func(ctx context.Context, recipientID, notificationID int64) error {
			calls++
			return nil // already-read rows succeed without change
		},
	}
	svc := NewNotificationService(notifRepo, &mockProfileRepository{}, nil)

	for i := 0; i < 2; i++ {
		if err := svc.MarkAsRead(context.Background(), 1, 5); err != nil {
			t.Fatalf("MarkAsRead call %d failed: %v", i+1, err)
		}
	}
	if calls != 2 {
		t.Errorf("expected 2 repo calls, got %d", calls)
	}
}

func TestNotificationService_MarkAllAsRead_Idempotent(t *testing.T) {
	// Stateful mock: MarkAllAsRead flips every unread row, GetUnreadCount
	// counts what is left
	unread := map[int64]bool{1: true, 2: true, 3: false, 4: true}
	notifRepo := &mockNotificationRepository{
		markAllAsReadFn: func(ctx context.Context, recipientID int64) error {
			for id := range unread {
				unread[id] = false
			}
			return nil
		},
		getUnreadCountFn: func(ctx context.Context, recipientID int64) (int, error) {
			count := 0
			for _, u := range unread {
				if u {
					count++
				}
			}
			return count, nil
		},
	}
	svc := NewNotificationService(notifRepo, &mockProfileRepository{}, nil)
	ctx := context.Background()

	if err := svc.MarkAllAsRead(ctx, 1); err != nil {
		t.Fatalf("first MarkAllAsRead failed: %v", err)
	}
	if count, _ := svc.GetUnreadCount(ctx, 1); count != 0 {
		t.Errorf("unread after first call = %d, want 0", count)
	}

	// Second call succeeds and leaves the state unchanged
	if err := svc.MarkAllAsRead(ctx, 1); err != nil {
		t.Fatalf("second MarkAllAsRead failed: %v", err)
	}
	if count, _ := svc.GetUnreadCount(ctx, 1); count != 0 {
		t.Errorf("unread after second call = %d, want 0", count)
	}
}

func TestNotificationService_MarkAsRead_WrongRecipient(t *testing.T) {
	notifRepo := &mockNotificationRepository{
		markAsReadFn: func(ctx context.Context, recipientID, notificationID int64) error {
			return model.ErrNotificationNotFound
		},
	}
	svc := NewNotificationService(notifRepo, &mockProfileRepository{}, nil)

	err := svc.MarkAsRead(context.Background(), 99, 5)
	if !errors.Is(err, model.ErrNotificationNotFound) {
		t.Errorf("expected ErrNotificationNotFound, got %v", err)
	}
}

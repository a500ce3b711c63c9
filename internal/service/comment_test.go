package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"socialink/internal/model"
	"socialink/internal/queue"
)

func TestCommentService_Create_Success(t *testing.T) {
	db, mock := newMockDB(t)
	expectTxCommit(mock)

	var commentDelta int
	postRepo := &mockPostRepository{
		getAuthorIDFn: func(ctx context.Context, postID int64) (int64, error) {
			return 2, nil
		},
		incrementCommentCountFn: func(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
			commentDelta = delta
			return nil
		},
	}
	profileRepo := &mockProfileRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Profile, error) {
			return activeProfile(id, "alice"), nil
		},
	}
	notifier := &mockNotifier{}
	publisher := &mockPublisher{}

	svc := NewCommentService(&mockCommentRepository{}, postRepo, profileRepo, db, notifier, publisher)

	comment, err := svc.Create(context.Background(), 10, 1, model.CreateCommentRequest{Content: "nice"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if comment.Author == nil || comment.Author.Username != "alice" {
		t.Errorf("expected author summary attached, got %+v", comment.Author)
	}
	if commentDelta != 1 {
		t.Errorf("comment_count delta = %d, want +1", commentDelta)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	if notifier.calls[0].Type != model.NotificationTypeComment || notifier.calls[0].RecipientID != 2 {
		t.Errorf("unexpected notification: %+v", notifier.calls[0])
	}

	if len(publisher.events) != 1 || publisher.events[0].Type != queue.EventReconcileComments {
		t.Errorf("expected one reconcile_comments event, got %+v", publisher.events)
	}
}

func TestCommentService_Create_OwnPostDoesNotNotify(t *testing.T) {
	db, mock := newMockDB(t)
	expectTxCommit(mock)

	postRepo := &mockPostRepository{
		getAuthorIDFn: func(ctx context.Context, postID int64) (int64, error) {
			return 1, nil
		},
	}
	profileRepo := &mockProfileRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Profile, error) {
			return activeProfile(id, "alice"), nil
		},
	}
	notifier := &mockNotifier{}

	svc := NewCommentService(&mockCommentRepository{}, postRepo, profileRepo, db, notifier, &mockPublisher{})

	if _, err := svc.Create(context.Background(), 10, 1, model.CreateCommentRequest{Content: "self reply"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(notifier.calls) != 0 {
		t.Error("commenting on your own post must not notify")
	}
}

func TestCommentService_Create_Validation(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewCommentService(&mockCommentRepository{}, &mockPostRepository{}, &mockProfileRepository{}, db, nil, nil)

	_, err := svc.Create(context.Background(), 10, 1, model.CreateCommentRequest{Content: " "})
	if !errors.Is(err, model.ErrContentRequired) {
		t.Errorf("blank content: got %v, want ErrContentRequired", err)
	}

	_, err = svc.Create(context.Background(), 10, 1, model.CreateCommentRequest{Content: strings.Repeat("a", 201)})
	if !errors.Is(err, model.ErrCommentTooLong) {
		t.Errorf("201 chars: got %v, want ErrCommentTooLong", err)
	}
}

func TestCommentService_Create_PostMissing(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewCommentService(&mockCommentRepository{}, &mockPostRepository{}, &mockProfileRepository{}, db, nil, nil)

	_, err := svc.Create(context.Background(), 99, 1, model.CreateCommentRequest{Content: "hello"})
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestCommentService_Delete_OwnerOnly(t *testing.T) {
	db, mock := newMockDB(t)
	expectTxRollback(mock)

	commentRepo := &mockCommentRepository{
		deleteFn: func(ctx context.Context, tx *sqlx.Tx, commentID, authorID int64) (int64, error) {
			return 0, model.ErrNotCommentOwner
		},
	}
	svc := NewCommentService(commentRepo, &mockPostRepository{}, &mockProfileRepository{}, db, nil, &mockPublisher{})

	err := svc.Delete(context.Background(), 5, 1)
	if !errors.Is(err, model.ErrNotCommentOwner) {
		t.Errorf("expected ErrNotCommentOwner, got %v", err)
	}
}

func TestCommentService_Delete_DecrementsCounter(t *testing.T) {
	db, mock := newMockDB(t)
	expectTxCommit(mock)

	var commentDelta int
	var decrementedPost int64
	commentRepo := &mockCommentRepository{
		deleteFn: func(ctx context.Context, tx *sqlx.Tx, commentID, authorID int64) (int64, error) {
			return 10, nil
		},
	}
	postRepo := &mockPostRepository{
		incrementCommentCountFn: func(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
			decrementedPost, commentDelta = postID, delta
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewCommentService(commentRepo, postRepo, &mockProfileRepository{}, db, nil, publisher)

	if err := svc.Delete(context.Background(), 5, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if decrementedPost != 10 || commentDelta != -1 {
		t.Errorf("decrement = (post=%d delta=%d), want (10, -1)", decrementedPost, commentDelta)
	}
	if len(publisher.events) != 1 || publisher.events[0].PostID != 10 {
		t.Errorf("expected reconcile event for post 10, got %+v", publisher.events)
	}
}

func TestCommentService_GetByPostID_ThreadOrder(t *testing.T) {
	db, _ := newMockDB(t)

	postRepo := &mockPostRepository{
		getAuthorIDFn: func(ctx context.Context, postID int64) (int64, error) {
			return 2, nil
		},
	}
	commentRepo := &mockCommentRepository{
		getByPostIDFn: func(ctx context.Context, postID int64, limit, offset int) ([]model.Comment, error) {
			return []model.Comment{{ID: 1}, {ID: 2}, {ID: 3}}, nil
		},
	}
	svc := NewCommentService(commentRepo, postRepo, &mockProfileRepository{}, db, nil, nil)

	resp, err := svc.GetByPostID(context.Background(), 10, 0, 20)
	if err != nil {
		t.Fatalf("GetByPostID failed: %v", err)
	}
	if len(resp.Comments) != 3 || resp.HasMore {
		t.Errorf("got %d comments hasMore=%v, want 3 hasMore=false", len(resp.Comments), resp.HasMore)
	}
}

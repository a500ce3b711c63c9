package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"socialink/internal/model"
)

func TestProfileService_Register_Success(t *testing.T) {
	repo := &mockProfileRepository{
		createFn: func(ctx context.Context, profile *model.Profile) error {
			profile.ID = 1
			profile.IsActive = true
			return nil
		},
	}
	svc := NewProfileService(repo, &mockFollowRepository{}, "")

	profile, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if profile.PrivacySetting != model.PrivacyPublic {
		t.Errorf("privacy = %q, want default public", profile.PrivacySetting)
	}
	if profile.Role != model.RoleUser {
		t.Errorf("role = %q, want user", profile.Role)
	}
	if profile.PasswordHashed == "secret123" {
		t.Error("password must be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHashed), []byte("secret123")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestProfileService_Register_DefaultAvatar(t *testing.T) {
	svc := NewProfileService(&mockProfileRepository{}, &mockFollowRepository{}, "https://cdn.example.com/default.png")

	profile, err := svc.Register(context.Background(), &model.RegisterRequest{Username: "alice", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if profile.AvatarURL == nil || *profile.AvatarURL != "https://cdn.example.com/default.png" {
		t.Errorf("avatar = %v, want configured default", profile.AvatarURL)
	}
}

func TestProfileService_Register_DuplicateUsername(t *testing.T) {
	repo := &mockProfileRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	svc := NewProfileService(repo, &mockFollowRepository{}, "")

	_, err := svc.Register(context.Background(), &model.RegisterRequest{Username: "alice", Password: "x"})
	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
}

func TestProfileService_Login_DeactivatedAccount(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	repo := &mockProfileRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.Profile, error) {
			p := activeProfile(1, username)
			p.PasswordHashed = string(hash)
			p.IsActive = false
			return p, nil
		},
	}
	svc := NewProfileService(repo, &mockFollowRepository{}, "")

	_, err := svc.Login(context.Background(), &model.LoginRequest{Username: "alice", Password: "secret123"})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("deactivated login: got %v, want ErrInvalidCredentials", err)
	}
}

func TestProfileService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	repo := &mockProfileRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.Profile, error) {
			p := activeProfile(1, username)
			p.PasswordHashed = string(hash)
			return p, nil
		},
	}
	svc := NewProfileService(repo, &mockFollowRepository{}, "")

	_, err := svc.Login(context.Background(), &model.LoginRequest{Username: "alice", Password: "wrong"})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestProfileService_GetProfile_PrivateHidden(t *testing.T) {
	repo := &mockProfileRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.Profile, error) {
			p := activeProfile(1, username)
			p.PrivacySetting = model.PrivacyPrivate
			return p, nil
		},
	}
	svc := NewProfileService(repo, &mockFollowRepository{}, "")

	viewer := int64(2)
	_, err := svc.GetProfile(context.Background(), "alice", &viewer)
	if !errors.Is(err, model.ErrProfileHidden) {
		t.Errorf("expected ErrProfileHidden, got %v", err)
	}

	// Owner still sees their own private profile
	owner := int64(1)
	resp, err := svc.GetProfile(context.Background(), "alice", &owner)
	if err != nil {
		t.Fatalf("owner view failed: %v", err)
	}
	if resp.Profile.ID != 1 {
		t.Errorf("profile id = %d, want 1", resp.Profile.ID)
	}
}

func TestProfileService_GetProfile_EmailHiddenFromOthers(t *testing.T) {
	repo := &mockProfileRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.Profile, error) {
			p := activeProfile(1, username)
			p.Email = "alice@example.com"
			return p, nil
		},
	}
	svc := NewProfileService(repo, &mockFollowRepository{}, "")

	viewer := int64(2)
	resp, err := svc.GetProfile(context.Background(), "alice", &viewer)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if resp.Profile.Email != "" {
		t.Error("email must be stripped for non-owners")
	}
}

func TestProfileService_RestrictedProfile(t *testing.T) {
	repo := &mockProfileRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.Profile, error) {
			p := activeProfile(1, username)
			p.PrivacySetting = model.PrivacyFollowersOnly
			return p, nil
		},
	}
	svc := NewProfileService(repo, &mockFollowRepository{}, "")

	stub, err := svc.RestrictedProfile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("RestrictedProfile failed: %v", err)
	}
	if !stub.Restricted || stub.Username != "alice" || stub.PrivacySetting != model.PrivacyFollowersOnly {
		t.Errorf("unexpected stub: %+v", stub)
	}
}

func TestProfileService_UpdateProfile_Validation(t *testing.T) {
	repo := &mockProfileRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Profile, error) {
			return activeProfile(id, "alice"), nil
		},
	}
	svc := NewProfileService(repo, &mockFollowRepository{}, "")

	longBio := strings.Repeat("b", 501)
	_, err := svc.UpdateProfile(context.Background(), 1, &model.UpdateProfileRequest{Bio: &longBio})
	if !errors.Is(err, model.ErrBioTooLong) {
		t.Errorf("501-char bio: got %v, want ErrBioTooLong", err)
	}

	bad := "invisible"
	_, err = svc.UpdateProfile(context.Background(), 1, &model.UpdateProfileRequest{PrivacySetting: &bad})
	if !errors.Is(err, model.ErrInvalidPrivacySetting) {
		t.Errorf("bad privacy: got %v, want ErrInvalidPrivacySetting", err)
	}

	setting := model.PrivacyPrivate
	profile, err := svc.UpdateProfile(context.Background(), 1, &model.UpdateProfileRequest{PrivacySetting: &setting})
	if err != nil {
		t.Fatalf("valid update failed: %v", err)
	}
	if profile.PrivacySetting != model.PrivacyPrivate {
		t.Errorf("privacy = %q, want private", profile.PrivacySetting)
	}
}

func TestProfileService_Search(t *testing.T) {
	repo := &mockProfileRepository{
		searchFn: func(ctx context.Context, query string, limit int) ([]model.ProfileSummary, error) {
			return []model.ProfileSummary{{ID: 10, Username: "anna"}, {ID: 11, Username: "annette"}}, nil
		},
	}
	followRepo := &mockFollowRepository{
		checkFollowsFn: func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{11: true}, nil
		},
	}
	svc := NewProfileService(repo, followRepo, "")

	// Blank query short-circuits without touching the repo
	results, err := svc.Search(context.Background(), "   ", 10, nil)
	if err != nil || len(results) != 0 {
		t.Errorf("blank query: got (%v, %v), want empty result", results, err)
	}

	viewer := int64(5)
	results, err = svc.Search(context.Background(), "ann", 10, &viewer)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].IsFollowing || !results[1].IsFollowing {
		t.Errorf("follow enrichment wrong: %+v", results)
	}
}

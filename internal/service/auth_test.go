package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialink/internal/config"
	"socialink/internal/model"
)

func newAuthService(repo *mockRefreshTokenRepository) *AuthService {
	return NewAuthService(repo, &config.Config{
		JWTSecret:          "test-secret",
		AccessTokenMaxAge:  900,
		RefreshTokenMaxAge: 2592000,
	})
}

func TestAuthService_GenerateTokenPair_StoresHashOnly(t *testing.T) {
	var stored *model.RefreshToken
	repo := &mockRefreshTokenRepository{
		createFn: func(ctx context.Context, token *model.RefreshToken) error {
			token.ID = "row-1"
			stored = token
			return nil
		},
	}
	svc := newAuthService(repo)

	pair, err := svc.GenerateTokenPair(context.Background(), 1, "test-agent", "10.0.0.1")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be set")
	}
	if pair.ExpiresIn != 900 {
		t.Errorf("expires_in = %d, want 900", pair.ExpiresIn)
	}
	if stored == nil {
		t.Fatal("refresh token was not persisted")
	}
	if stored.TokenHash == pair.RefreshToken {
		t.Error("raw refresh token must not be stored")
	}
	if stored.TokenHash != hashToken(pair.RefreshToken) {
		t.Error("stored hash does not match the issued token")
	}
	if stored.DeviceInfo == nil || *stored.DeviceInfo != "test-agent" {
		t.Errorf("device info = %v, want test-agent", stored.DeviceInfo)
	}
}

func TestAuthService_RefreshTokens_RotationLinksSuccessor(t *testing.T) {
	var revokedID string
	var replacedBy *string
	repo := &mockRefreshTokenRepository{
		findByTokenHashFn: func(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
			return &model.RefreshToken{
				ID:        "old-token",
				UserID:    1,
				TokenHash: tokenHash,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
		createFn: func(ctx context.Context, token *model.RefreshToken) error {
			token.ID = "new-token"
			return nil
		},
		revokeFn: func(ctx context.Context, id string, rb *string) error {
			revokedID, replacedBy = id, rb
			return nil
		},
	}
	svc := newAuthService(repo)

	pair, userID, err := svc.RefreshTokens(context.Background(), "raw-token", "", "")
	if err != nil {
		t.Fatalf("RefreshTokens failed: %v", err)
	}
	if userID != 1 || pair.RefreshToken == "" {
		t.Errorf("got user=%d pair=%+v", userID, pair)
	}
	if revokedID != "old-token" {
		t.Errorf("revoked token = %q, want old-token", revokedID)
	}
	if replacedBy == nil || *replacedBy != "new-token" {
		t.Errorf("replaced_by = %v, want new-token", replacedBy)
	}
}

func TestAuthService_RefreshTokens_ReuseRevokesFamily(t *testing.T) {
	revokedAt := time.Now().Add(-time.Minute)
	var familyRevokedUser int64
	repo := &mockRefreshTokenRepository{
		findByTokenHashFn: func(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
			return &model.RefreshToken{
				ID:        "spent-token",
				UserID:    7,
				ExpiresAt: time.Now().Add(time.Hour),
				RevokedAt: &revokedAt,
			}, nil
		},
		revokeAllForUserFn: func(ctx context.Context, userID int64) error {
			familyRevokedUser = userID
			return nil
		},
	}
	svc := newAuthService(repo)

	_, _, err := svc.RefreshTokens(context.Background(), "leaked-token", "", "")
	if !errors.Is(err, model.ErrRefreshTokenReused) {
		t.Fatalf("expected ErrRefreshTokenReused, got %v", err)
	}
	if familyRevokedUser != 7 {
		t.Errorf("family revoked for user %d, want 7", familyRevokedUser)
	}
}

func TestAuthService_RefreshTokens_ReuseReportedEvenIfRevocationFails(t *testing.T) {
	revokedAt := time.Now().Add(-time.Minute)
	repo := &mockRefreshTokenRepository{
		findByTokenHashFn: func(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
			return &model.RefreshToken{
				ID:        "spent-token",
				UserID:    7,
				ExpiresAt: time.Now().Add(time.Hour),
				RevokedAt: &revokedAt,
			}, nil
		},
		revokeAllForUserFn: func(ctx context.Context, userID int64) error {
			return errors.New("connection reset")
		},
	}
	svc := newAuthService(repo)

	// The caller must still see the reuse error so the session dies client-side
	_, _, err := svc.RefreshTokens(context.Background(), "leaked-token", "", "")
	if !errors.Is(err, model.ErrRefreshTokenReused) {
		t.Errorf("expected ErrRefreshTokenReused despite revocation failure, got %v", err)
	}
}

func TestAuthService_RefreshTokens_Expired(t *testing.T) {
	repo := &mockRefreshTokenRepository{
		findByTokenHashFn: func(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
			return &model.RefreshToken{
				ID:        "stale-token",
				UserID:    1,
				ExpiresAt: time.Now().Add(-time.Hour),
			}, nil
		},
	}
	svc := newAuthService(repo)

	_, _, err := svc.RefreshTokens(context.Background(), "stale", "", "")
	if !errors.Is(err, model.ErrRefreshTokenExpired) {
		t.Errorf("expected ErrRefreshTokenExpired, got %v", err)
	}
}

func TestAuthService_RefreshTokens_UnknownToken(t *testing.T) {
	svc := newAuthService(&mockRefreshTokenRepository{})

	_, _, err := svc.RefreshTokens(context.Background(), "never-issued", "", "")
	if !errors.Is(err, model.ErrRefreshTokenNotFound) {
		t.Errorf("expected ErrRefreshTokenNotFound, got %v", err)
	}
}

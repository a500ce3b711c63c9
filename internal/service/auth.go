package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"socialink/internal/config"
	"socialink/internal/model"
	"socialink/internal/repository"
)

// AuthService mints HS256 access tokens and manages the refresh token
// lifecycle. Refresh tokens are opaque uuids stored hashed, rotated on every
// refresh. A revoked token showing up again means the raw value leaked to a
// second party, so the whole family is revoked and both sessions die.
type AuthService struct {
	refreshTokenRepo repository.RefreshTokenRepository
	config           *config.Config
}

func NewAuthService(refreshTokenRepo repository.RefreshTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		refreshTokenRepo: refreshTokenRepo,
		config:           cfg,
	}
}

// GenerateTokenPair issues a fresh access/refresh pair for a login.
func (s *AuthService) GenerateTokenPair(ctx context.Context, userID int64, deviceInfo, ipAddress string) (*model.TokenPair, error) {
	pair, _, err := s.issueTokens(ctx, userID, deviceInfo, ipAddress)
	return pair, err
}

// issueTokens signs an access token and persists a hashed refresh token.
// It also returns the stored row id so rotation can link replaced_by
// without re-reading the row.
func (s *AuthService) issueTokens(ctx context.Context, userID int64, deviceInfo, ipAddress string) (*model.TokenPair, string, error) {
	accessToken, err := s.signAccessToken(userID)
	if err != nil {
		return nil, "", fmt.Errorf("sign access token: %w", err)
	}

	raw := uuid.New().String()
	refreshToken := &model.RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(raw),
		ExpiresAt: time.Now().Add(time.Duration(s.config.RefreshTokenMaxAge) * time.Second),
	}
	if deviceInfo != "" {
		refreshToken.DeviceInfo = &deviceInfo
	}
	if ipAddress != "" {
		refreshToken.IPAddress = &ipAddress
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, "", fmt.Errorf("store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: raw,
		ExpiresIn:    s.config.AccessTokenMaxAge,
	}, refreshToken.ID, nil
}

// RefreshTokens validates a refresh token and rotates in a new pair.
// The spent token is revoked with a replaced_by link to its successor.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshTokenRaw, deviceInfo, ipAddress string) (*model.TokenPair, int64, error) {
	token, err := s.refreshTokenRepo.FindByTokenHash(ctx, hashToken(refreshTokenRaw))
	if err != nil {
		return nil, 0, model.ErrRefreshTokenNotFound
	}

	if token.IsRevoked() {
		log.Printf("[AuthService] Refresh token reuse detected: user=%d token=%s", token.UserID, token.ID)
		if err := s.refreshTokenRepo.RevokeAllForUser(ctx, token.UserID); err != nil {
			log.Printf("[AuthService] Revoke token family FAILED: user=%d err=%v", token.UserID, err)
		}
		return nil, 0, model.ErrRefreshTokenReused
	}

	if token.IsExpired() {
		return nil, 0, model.ErrRefreshTokenExpired
	}

	pair, newTokenID, err := s.issueTokens(ctx, token.UserID, deviceInfo, ipAddress)
	if err != nil {
		return nil, 0, err
	}

	if err := s.refreshTokenRepo.Revoke(ctx, token.ID, &newTokenID); err != nil {
		// The new pair is already out. A lingering active old token is
		// caught by reuse detection the next time it appears.
		log.Printf("[AuthService] Revoke rotated token FAILED: user=%d token=%s err=%v", token.UserID, token.ID, err)
	}

	return pair, token.UserID, nil
}

// RevokeRefreshToken revokes a single token (logout on one device).
func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshTokenRaw string) error {
	token, err := s.refreshTokenRepo.FindByTokenHash(ctx, hashToken(refreshTokenRaw))
	if err != nil {
		return err
	}
	return s.refreshTokenRepo.Revoke(ctx, token.ID, nil)
}

// RevokeAllUserTokens revokes every active token for the user (logout
// everywhere; also used when an admin deactivates the account).
func (s *AuthService) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	return s.refreshTokenRepo.RevokeAllForUser(ctx, userID)
}

// StartTokenCleanup periodically deletes refresh tokens that expired more
// than the retention period ago. Runs until ctx is cancelled.
func (s *AuthService) StartTokenCleanup(ctx context.Context, interval, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.refreshTokenRepo.DeleteExpired(ctx, retention)
				if err != nil {
					log.Printf("[AuthService] Token cleanup FAILED: err=%v", err)
					continue
				}
				if deleted > 0 {
					log.Printf("[AuthService] Token cleanup OK: deleted=%d", deleted)
				}
			}
		}
	}()
}

func (s *AuthService) signAccessToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":     now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
}

// hashToken derives the storage form of a refresh token. Only the hash ever
// touches the database, so a leaked table cannot be replayed.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

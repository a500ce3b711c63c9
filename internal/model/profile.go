package model

import (
	"errors"
	"time"
)

// Privacy settings for a profile.
const (
	PrivacyPublic        = "public"
	PrivacyFollowersOnly = "followers_only"
	PrivacyPrivate       = "private"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile represents a user profile in the system.
type Profile struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email,omitempty"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	FirstName      *string   `db:"first_name" json:"first_name"`
	LastName       *string   `db:"last_name" json:"last_name"`
	Bio            *string   `db:"bio" json:"bio"`
	AvatarURL      *string   `db:"avatar_url" json:"avatar_url"`
	PrivacySetting string    `db:"privacy_setting" json:"privacy_setting"`
	Role           string    `db:"role" json:"role"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	FollowersCount int       `db:"followers_count" json:"followers_count"`
	FollowingCount int       `db:"following_count" json:"following_count"`
	PostsCount     int       `db:"posts_count" json:"posts_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ProfileSummary is the lightweight author/sender representation joined onto
// posts, comments, notifications and listings.
type ProfileSummary struct {
	ID          int64   `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	FirstName   *string `db:"first_name" json:"first_name"`
	LastName    *string `db:"last_name" json:"last_name"`
	AvatarURL   *string `db:"avatar_url" json:"avatar_url"`
	IsFollowing bool    `json:"is_following"`
}

// ProfileResponse is a profile plus the viewer's relationship to it.
type ProfileResponse struct {
	Profile     *Profile `json:"profile"`
	IsFollowing bool     `json:"is_following"`
}

// RestrictedProfileResponse is returned when the visibility gate denies the
// viewer. It deliberately carries no counts, bio or posts.
type RestrictedProfileResponse struct {
	Username       string `json:"username"`
	PrivacySetting string `json:"privacy_setting"`
	Restricted     bool   `json:"restricted"`
}

// RegisterRequest represents the data needed to register a new profile.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest represents the data needed to log in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the request body for PATCH /me.
type UpdateProfileRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Bio            *string `json:"bio"`
	AvatarURL      *string `json:"avatar_url"`
	PrivacySetting *string `json:"privacy_setting"`
}

// Profile constraints
const (
	MaxBioLength = 500
)

var validPrivacySettings = map[string]struct{}{
	PrivacyPublic:        {},
	PrivacyFollowersOnly: {},
	PrivacyPrivate:       {},
}

// IsValidPrivacySetting reports whether s is one of the supported settings.
func IsValidPrivacySetting(s string) bool {
	_, ok := validPrivacySettings[s]
	return ok
}

// CanViewProfile is the single visibility gate used by the profile page, the
// profile post list and search. Fail closed: unknown settings deny.
//
//   - public          -> always visible
//   - private         -> owner only
//   - followers_only  -> owner and accepted followers
func CanViewProfile(viewerID *int64, profile *Profile, isFollowing bool) bool {
	if profile == nil {
		return false
	}
	if viewerID != nil && *viewerID == profile.ID {
		return true
	}
	switch profile.PrivacySetting {
	case PrivacyPublic:
		return true
	case PrivacyFollowersOnly:
		return isFollowing
	case PrivacyPrivate:
		return false
	default:
		return false
	}
}

var (
	// ErrProfileNotFound is returned when a profile cannot be found
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUsernameExists is returned when attempting to register a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProfileHidden is returned when the visibility gate denies the viewer
	ErrProfileHidden = errors.New("profile is not visible to viewer")

	// ErrForbidden is returned when the actor lacks the required role
	ErrForbidden = errors.New("operation not permitted")

	// ErrInvalidPrivacySetting is returned for unknown privacy values
	ErrInvalidPrivacySetting = errors.New("invalid privacy setting")

	// ErrBioTooLong is returned when a bio exceeds MaxBioLength
	ErrBioTooLong = errors.New("bio too long")
)

package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"socialink/internal/model"
	"socialink/internal/repository"
)

// ProfileService handles business logic for profile operations: registration,
// login verification, profile pages behind the visibility gate, edits, search.
type ProfileService struct {
	repo             repository.ProfileRepository
	followRepo       repository.FollowRepository
	defaultAvatarURL string
}

func NewProfileService(repo repository.ProfileRepository, followRepo repository.FollowRepository, defaultAvatarURL string) *ProfileService {
	return &ProfileService{
		repo:             repo,
		followRepo:       followRepo,
		defaultAvatarURL: defaultAvatarURL,
	}
}

// Register creates a new profile.
func (s *ProfileService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Profile, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("username is required")
	}

	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}

	// Check if username already exists
	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &model.Profile{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHashed: string(hashedPassword),
		PrivacySetting: model.PrivacyPublic,
		Role:           model.RoleUser,
	}

	if req.FirstName != "" {
		profile.FirstName = &req.FirstName
	}
	if req.LastName != "" {
		profile.LastName = &req.LastName
	}
	if s.defaultAvatarURL != "" {
		avatar := s.defaultAvatarURL
		profile.AvatarURL = &avatar
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// Login authenticates a user with username and password.
// Deactivated accounts cannot log in.
func (s *ProfileService) Login(ctx context.Context, req *model.LoginRequest) (*model.Profile, error) {
	profile, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether username exists or not
		return nil, model.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(profile.PasswordHashed), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if !profile.IsActive {
		return nil, model.ErrInvalidCredentials
	}

	return profile, nil
}

// GetByID retrieves a profile by ID.
func (s *ProfileService) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile retrieves a profile page by username, behind the visibility gate.
// A viewer the gate denies gets ErrProfileHidden; the handler turns that into
// the restricted stub rather than the full profile.
func (s *ProfileService) GetProfile(ctx context.Context, username string, viewerID *int64) (*model.ProfileResponse, error) {
	profile, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, model.ErrProfileNotFound
	}

	isFollowing := false
	if viewerID != nil && *viewerID != profile.ID {
		isFollowing, err = s.followRepo.Exists(ctx, *viewerID, profile.ID)
		if err != nil {
			return nil, err
		}
	}

	if !model.CanViewProfile(viewerID, profile, isFollowing) {
		return nil, model.ErrProfileHidden
	}

	// Email stays private to the owner
	if viewerID == nil || *viewerID != profile.ID {
		profile.Email = ""
	}

	return &model.ProfileResponse{
		Profile:     profile,
		IsFollowing: isFollowing,
	}, nil
}

// RestrictedProfile builds the stub returned when the gate denies the viewer.
func (s *ProfileService) RestrictedProfile(ctx context.Context, username string) (*model.RestrictedProfileResponse, error) {
	profile, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &model.RestrictedProfileResponse{
		Username:       profile.Username,
		PrivacySetting: profile.PrivacySetting,
		Restricted:     true,
	}, nil
}

// UpdateProfile applies a self-edit. Only provided fields change.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, req *model.UpdateProfileRequest) (*model.Profile, error) {
	profile, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		profile.FirstName = req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = req.LastName
	}
	if req.Bio != nil {
		if len([]rune(*req.Bio)) > model.MaxBioLength {
			return nil, model.ErrBioTooLong
		}
		profile.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}
	if req.PrivacySetting != nil {
		if !model.IsValidPrivacySetting(*req.PrivacySetting) {
			return nil, model.ErrInvalidPrivacySetting
		}
		profile.PrivacySetting = *req.PrivacySetting
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	profile.Email = ""
	return profile, nil
}

// Search finds public, active profiles matching the query on username or
// name, with follow status enrichment for the viewer. Uses the batch
// CheckFollows query (ANY($1)) to avoid N+1 lookups.
func (s *ProfileService) Search(ctx context.Context, query string, limit int, viewerID *int64) ([]model.ProfileSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.ProfileSummary{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	users, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil && len(users) > 0 {
		userIDs := make([]int64, len(users))
		for i, user := range users {
			userIDs[i] = user.ID
		}

		followMap, err := s.followRepo.CheckFollows(ctx, *viewerID, userIDs)
		if err == nil {
			for i := range users {
				users[i].IsFollowing = followMap[users[i].ID]
			}
		}
	}

	return users, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialink/internal/model"
)

// profileRepository implements ProfileRepository using sqlx
type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, username, email, password_hashed, first_name, last_name, bio, avatar_url,
       privacy_setting, role, is_active, followers_count, following_count, posts_count,
       created_at, updated_at`

// Create inserts a new profile into the database
func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (username, email, password_hashed, first_name, last_name, avatar_url, privacy_setting, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, privacy_setting, role, is_active, followers_count, following_count, posts_count, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		p.Username,
		p.Email,
		p.PasswordHashed,
		p.FirstName,
		p.LastName,
		p.AvatarURL,
		p.PrivacySetting,
		p.Role,
	)

	err := row.Scan(
		&p.ID,
		&p.PrivacySetting,
		&p.Role,
		&p.IsActive,
		&p.FollowersCount,
		&p.FollowingCount,
		&p.PostsCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by its ID
func (r *profileRepository) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by id: %w", err)
	}

	return &p, nil
}

// GetByUsername retrieves a profile by its username
func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1`

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by username: %w", err)
	}

	return &p, nil
}

// ExistsByUsername checks if a username is already taken
func (r *profileRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE username = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// Update persists the editable profile fields
func (r *profileRepository) Update(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE profiles
		SET first_name = $1, last_name = $2, bio = $3, avatar_url = $4, privacy_setting = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		p.FirstName, p.LastName, p.Bio, p.AvatarURL, p.PrivacySetting, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrProfileNotFound
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

// Search matches the query against username, first name and last name.
// Only public, active profiles are searchable.
func (r *profileRepository) Search(ctx context.Context, query string, limit int) ([]model.ProfileSummary, error) {
	searchQuery := `
		SELECT id, username, first_name, last_name, avatar_url
		FROM profiles
		WHERE (username ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1)
		  AND privacy_setting = 'public'
		  AND is_active = true
		ORDER BY followers_count DESC
		LIMIT $2
	`

	var users []model.ProfileSummary
	err := r.db.SelectContext(ctx, &users, searchQuery, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	return users, nil
}

func (r *profileRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	query := `UPDATE profiles SET followers_count = GREATEST(followers_count + $1, 0) WHERE id = $2`
	_, err := tx.ExecContext(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to increment followers count: %w", err)
	}
	return nil
}

func (r *profileRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	query := `UPDATE profiles SET following_count = GREATEST(following_count + $1, 0) WHERE id = $2`
	_, err := tx.ExecContext(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to increment following count: %w", err)
	}
	return nil
}

func (r *profileRepository) IncrementPostsCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	query := `UPDATE profiles SET posts_count = GREATEST(posts_count + $1, 0) WHERE id = $2`
	_, err := tx.ExecContext(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to increment posts count: %w", err)
	}
	return nil
}

// SetActive flips the soft-deactivation flag
func (r *profileRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	query := `UPDATE profiles SET is_active = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, active, userID)
	if err != nil {
		return fmt.Errorf("failed to set profile active flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrProfileNotFound
	}

	return nil
}

// List returns profiles newest first, including deactivated ones (admin view)
func (r *profileRepository) List(ctx context.Context, limit, offset int) ([]model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	var profiles []model.Profile
	err := r.db.SelectContext(ctx, &profiles, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	return profiles, nil
}

func (r *profileRepository) CountProfiles(ctx context.Context) (int, int, error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM profiles`

	var total, active int
	err := r.db.QueryRowxContext(ctx, query).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	return total, active, nil
}

// ReconcileFollowCounts recomputes both follow counters from the follows table
func (r *profileRepository) ReconcileFollowCounts(ctx context.Context, userID int64) error {
	query := `
		UPDATE profiles SET
			followers_count = (SELECT COUNT(*) FROM follows WHERE followee_id = $1),
			following_count = (SELECT COUNT(*) FROM follows WHERE follower_id = $1)
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to reconcile follow counts: %w", err)
	}
	return nil
}

// ReconcilePostsCount recomputes posts_count from active posts
func (r *profileRepository) ReconcilePostsCount(ctx context.Context, userID int64) error {
	query := `
		UPDATE profiles SET
			posts_count = (SELECT COUNT(*) FROM posts WHERE author_id = $1 AND is_active = true)
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to reconcile posts count: %w", err)
	}
	return nil
}

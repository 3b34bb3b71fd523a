package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"registration-service/internal/models"
)

// GetUserByEmail retrieves a user by email, or nil when none exists
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT * FROM users WHERE LOWER(email) = LOWER($1)", strings.TrimSpace(email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new account holder
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, user, query,
		user.Email, user.PasswordHash, user.Role)
}

// GetProfileByUserID retrieves a user's profile, or nil when none exists
func (s *Store) GetProfileByUserID(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.GetContext(ctx, &profile,
		"SELECT * FROM user_profiles WHERE user_id = $1", userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfile inserts a new user profile
func (s *Store) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (user_id, first_name, last_name, mobile, date_of_birth)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, profile, query,
		profile.UserID, profile.FirstName, profile.LastName,
		profile.Mobile, profile.DateOfBirth)
}

// HasSavedParticipant reports whether an identical (name+email) saved
// participant already exists under a profile
func (s *Store) HasSavedParticipant(ctx context.Context, profileID int64, firstName, lastName, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM saved_participants
			WHERE profile_id = $1
			  AND LOWER(first_name) = LOWER($2)
			  AND LOWER(last_name) = LOWER($3)
			  AND LOWER(email) = LOWER($4)
		)`, profileID, firstName, lastName, email)
	return exists, err
}

// CreateSavedParticipant inserts a reusable participant template
func (s *Store) CreateSavedParticipant(ctx context.Context, sp *models.SavedParticipant) error {
	query := `
		INSERT INTO saved_participants (profile_id, first_name, last_name, email, mobile, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, sp, query,
		sp.ProfileID, sp.FirstName, sp.LastName, sp.Email, sp.Mobile, sp.DateOfBirth)
}

// GetActiveLicense retrieves a participant's unexpired permanent license for
// a sport type, or nil when none is on file. Consulted, never mutated, during
// registration.
func (s *Store) GetActiveLicense(ctx context.Context, profileID int64, sportType string, asOf time.Time) (*models.UserLicense, error) {
	var license models.UserLicense
	err := s.db.GetContext(ctx, &license, `
		SELECT * FROM user_licenses
		WHERE profile_id = $1 AND sport_type = $2 AND is_active = TRUE AND expiry_date >= $3
		ORDER BY expiry_date DESC
		LIMIT 1`, profileID, sportType, asOf)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &license, nil
}

// Package store provides database access methods for all application
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"researchoffice/internal/models"
)

const userColumns = `id, name, email, password_hash, role, totp_secret, totp_enabled, created_at, updated_at`

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, u *models.User) error {
	return row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
}

func (s *UserStore) findUser(op, where string, arg any) (*models.User, error) {
	u := &models.User{}
	err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE `+where, arg), u)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindByEmail looks a user up by email, ignoring case. Returns nil if not found.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	return s.findUser("find user by email", `lower(email) = lower($1)`, email)
}

// FindByID returns nil if no user has the ID.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	return s.findUser("find user by id", `id = $1`, id)
}

// List returns all users, newest first.
func (s *UserStore) List() ([]models.User, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create stores a user with a bcrypt hash of password. An email that is
// already registered yields ErrDuplicate.
func (s *UserStore) Create(email, password, name string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{}
	err = scanUser(s.db.QueryRow(`
		INSERT INTO users (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		email, string(hash), name, role,
	), u)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create user %s: %w", email, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UpdateRole changes a user's role. Returns ErrNotFound for unknown IDs.
func (s *UserStore) UpdateRole(userID uuid.UUID, role models.Role) (*models.User, error) {
	u := &models.User{}
	err := scanUser(s.db.QueryRow(`
		UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+userColumns,
		role, userID,
	), u)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update role: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return u, nil
}

// SetTOTPSecret stores a pending secret during 2FA enrollment. 2FA stays
// off until EnableTOTP.
func (s *UserStore) SetTOTPSecret(userID uuid.UUID, secret string) error {
	return s.updateTOTP("set totp secret", `totp_secret = $2`, userID, secret)
}

// EnableTOTP turns 2FA on once the user has confirmed a code.
func (s *UserStore) EnableTOTP(userID uuid.UUID) error {
	return s.updateTOTP("enable totp", `totp_enabled = TRUE`, userID)
}

// ResetTOTP drops the secret and turns 2FA off.
func (s *UserStore) ResetTOTP(userID uuid.UUID) error {
	return s.updateTOTP("reset totp", `totp_secret = NULL, totp_enabled = FALSE`, userID)
}

// updateTOTP applies set to one user; unknown IDs give ErrNotFound.
func (s *UserStore) updateTOTP(op, set string, userID uuid.UUID, args ...any) error {
	res, err := s.db.Exec(`UPDATE users SET `+set+`, updated_at = NOW() WHERE id = $1`,
		append([]any{userID}, args...)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectAffected(res, op)
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shelfpress/shelfpress/pkg/database"
	"github.com/shelfpress/shelfpress/pkg/errcodes"
	"github.com/shelfpress/shelfpress/pkg/models"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing.
const BcryptCost = 12

// Service handles authentication and session operations.
type Service struct {
	db         *bun.DB
	sessionTTL time.Duration
}

// NewService creates a new auth service.
func NewService(db *bun.DB, sessionTTL time.Duration) *Service {
	return &Service{
		db:         db,
		sessionTTL: sessionTTL,
	}
}

// CountAdmins returns the total number of admin users.
func (s *Service) CountAdmins(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*models.AdminUser)(nil)).Count(ctx)
	if err != nil {
		return 0, database.WrapError(err)
	}
	return count, nil
}

// Authenticate validates credentials and returns the admin if valid. The
// same error is returned for an unknown email and a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.AdminUser, error) {
	admin := &models.AdminUser{}
	err := s.db.NewSelect().
		Model(admin).
		Where("LOWER(au.email) = LOWER(?)", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.Unauthorized("Invalid email or password")
		}
		return nil, database.WrapError(err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password))
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid email or password")
	}

	return admin, nil
}

// CreateSession issues a new session row for the admin. The token is the
// row's primary key, so logout can invalidate it with a single delete.
func (s *Service) CreateSession(ctx context.Context, admin *models.AdminUser) (*models.Session, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	session := &models.Session{
		Token:       token.String(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.sessionTTL),
		AdminUserID: admin.ID,
	}

	_, err = s.db.NewInsert().Model(session).Exec(ctx)
	if err != nil {
		return nil, database.WrapError(err)
	}

	session.AdminUser = admin
	return session, nil
}

// ValidateSession resolves a token to its admin. Expired rows are pruned on
// the way out and treated the same as missing ones.
func (s *Service) ValidateSession(ctx context.Context, token string) (*models.AdminUser, error) {
	session := &models.Session{}
	err := s.db.NewSelect().
		Model(session).
		Relation("AdminUser").
		Where("s.token = ?", token).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.Unauthorized("Invalid or expired session")
		}
		return nil, database.WrapError(err)
	}

	if session.Expired() {
		_, _ = s.db.NewDelete().Model((*models.Session)(nil)).Where("token = ?", token).Exec(ctx)
		return nil, errcodes.Unauthorized("Invalid or expired session")
	}

	return session.AdminUser, nil
}

// DeleteSession invalidates a session immediately.
func (s *Service) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.NewDelete().
		Model((*models.Session)(nil)).
		Where("token = ?", token).
		Exec(ctx)
	return database.WrapError(err)
}

// DeleteExpiredSessions removes sessions past their expiry.
func (s *Service) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*models.Session)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, database.WrapError(err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return deleted, nil
}

// EnsureSeedAdmin creates the configured admin row when the table is empty,
// so a fresh deployment has exactly one administrator identity. An empty name
// is stored as NULL. It returns true when a row was created.
func (s *Service) EnsureSeedAdmin(ctx context.Context, email, password, name string) (bool, error) {
	count, err := s.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return false, errors.WithStack(err)
	}

	now := time.Now()
	admin := &models.AdminUser{
		ID:           id.String(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if name != "" {
		admin.Name = &name
	}

	_, err = s.db.NewInsert().Model(admin).Exec(ctx)
	if err != nil {
		return false, database.WrapError(err)
	}

	return true, nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

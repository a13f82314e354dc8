package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shelfpress/shelfpress/pkg/errcodes"
	"github.com/shelfpress/shelfpress/pkg/migrations"
	"github.com/shelfpress/shelfpress/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func seedAdmin(ctx context.Context, t *testing.T, svc *Service) *models.AdminUser {
	t.Helper()

	created, err := svc.EnsureSeedAdmin(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)
	require.True(t, created)

	admin, err := svc.Authenticate(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	return admin
}

func TestServiceEnsureSeedAdmin(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, time.Hour)
	ctx := context.Background()

	created, err := svc.EnsureSeedAdmin(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)
	assert.True(t, created)

	// Seeding is idempotent once an admin exists.
	created, err = svc.EnsureSeedAdmin(ctx, "other@example.com", "different", "")
	require.NoError(t, err)
	assert.False(t, created)

	count, err := svc.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestServiceEnsureSeedAdmin_Name(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, time.Hour)
	ctx := context.Background()

	created, err := svc.EnsureSeedAdmin(ctx, "admin@example.com", "password123", "Admin")
	require.NoError(t, err)
	require.True(t, created)

	admin, err := svc.Authenticate(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, admin.Name)
	assert.Equal(t, "Admin", *admin.Name)
}

func TestServiceEnsureSeedAdmin_EmptyName(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, time.Hour)
	ctx := context.Background()

	created, err := svc.EnsureSeedAdmin(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)
	require.True(t, created)

	admin, err := svc.Authenticate(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	assert.Nil(t, admin.Name)
}

func TestServiceAuthenticate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, time.Hour)
	ctx := context.Background()

	_, err := svc.EnsureSeedAdmin(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)

	admin, err := svc.Authenticate(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)

	// Email matching is case insensitive.
	_, err = svc.Authenticate(ctx, "ADMIN@example.com", "password123")
	require.NoError(t, err)
}

func TestServiceAuthenticate_InvalidCredentials(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, time.Hour)
	ctx := context.Background()

	_, err := svc.EnsureSeedAdmin(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)

	var codeErr *errcodes.Error

	// Wrong password and unknown email return the same error.
	_, err = svc.Authenticate(ctx, "admin@example.com", "wrongpassword")
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 401, codeErr.HTTPCode)
	wrongPasswordMsg := codeErr.Message

	_, err = svc.Authenticate(ctx, "nobody@example.com", "password123")
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 401, codeErr.HTTPCode)
	assert.Equal(t, wrongPasswordMsg, codeErr.Message)
}

func TestServiceSessionLifecycle(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, time.Hour)
	ctx := context.Background()

	admin := seedAdmin(ctx, t, svc)

	session, err := svc.CreateSession(ctx, admin)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	resolved, err := svc.ValidateSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resolved.ID)

	// Logout invalidates the token immediately.
	require.NoError(t, svc.DeleteSession(ctx, session.Token))

	_, err = svc.ValidateSession(ctx, session.Token)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 401, codeErr.HTTPCode)
}

func TestServiceValidateSession_Expired(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, -time.Minute)
	ctx := context.Background()

	admin := seedAdmin(ctx, t, svc)

	session, err := svc.CreateSession(ctx, admin)
	require.NoError(t, err)

	_, err = svc.ValidateSession(ctx, session.Token)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 401, codeErr.HTTPCode)

	// The expired row was pruned.
	count, err := db.NewSelect().Model((*models.Session)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestServiceDeleteExpiredSessions(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	expired := NewService(db, -time.Minute)
	live := NewService(db, time.Hour)

	admin := seedAdmin(ctx, t, live)

	_, err := expired.CreateSession(ctx, admin)
	require.NoError(t, err)

	keep, err := live.CreateSession(ctx, admin)
	require.NoError(t, err)

	deleted, err := live.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = live.ValidateSession(ctx, keep.Token)
	require.NoError(t, err)
}

func TestServiceAuthenticate_StoreUnavailable(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, time.Hour)
	ctx := context.Background()

	_, err := svc.EnsureSeedAdmin(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)

	require.NoError(t, db.Close())

	_, err = svc.Authenticate(ctx, "admin@example.com", "password123")
	require.Error(t, err)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 503, codeErr.HTTPCode)
	assert.Equal(t, "store_unavailable", codeErr.Code)

	_, err = svc.ValidateSession(ctx, "some-token")
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 503, codeErr.HTTPCode)
}

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPassword("password123", hash))
	assert.False(t, CheckPassword("wrongpassword", hash))
}

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "github.com/example/chatroom-playground/domain/user"
	"github.com/example/chatroom-playground/modules/storage"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := storage.Open(":memory:", false, &domain.User{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })
	return db
}

func seedUser(t *testing.T, repo *UserRepository, id string, active bool) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &domain.User{
		ID:       id,
		Email:    id + "@example.com",
		IsActive: active,
	}))
}

func TestUserRepository_FindByID(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	seedUser(t, repo, "user-1", true)

	user, err := repo.FindByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1@example.com", user.Email)
	assert.True(t, user.IsActive)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_SetActive(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	seedUser(t, repo, "user-1", true)

	require.NoError(t, repo.SetActive(ctx, "user-1", false))
	user, err := repo.FindByID(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	assert.ErrorIs(t, repo.SetActive(ctx, "missing", true), ErrUserNotFound)
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	jwtManager := NewJWTManager(testJWTConfig())
	service := NewAuthService(repo, jwtManager)
	ctx := context.Background()
	seedUser(t, repo, "active", true)
	seedUser(t, repo, "disabled", false)

	token := func(id string) string {
		tok, err := jwtManager.GenerateAccessToken(id, "")
		require.NoError(t, err)
		return tok
	}

	user, err := service.Authenticate(ctx, token("active"))
	require.NoError(t, err)
	assert.Equal(t, "active", user.ID)

	_, err = service.Authenticate(ctx, token("disabled"))
	assert.ErrorIs(t, err, ErrUserInactive)

	_, err = service.Authenticate(ctx, token("ghost"))
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = service.Authenticate(ctx, "bogus")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

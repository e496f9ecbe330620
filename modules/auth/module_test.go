package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

func TestAuthModule_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewModule(":memory:", testJWTConfig(), &mockLogger{})
	assert.Equal(t, "auth", m.Name())
	assert.False(t, m.Health(ctx).Healthy)

	require.NoError(t, m.Start(ctx))
	assert.True(t, m.Health(ctx).Healthy)

	require.NoError(t, m.Stop(ctx))
	assert.False(t, m.Health(ctx).Healthy)
}

func TestAuthModule_HandleAuthenticate(t *testing.T) {
	ctx := context.Background()
	m := NewModule(":memory:", testJWTConfig(), &mockLogger{})
	require.NoError(t, m.Start(ctx))
	defer m.Stop(ctx)
	seedUser(t, m.Users(), "user-1", true)
	seedUser(t, m.Users(), "user-2", false)

	jwtManager := NewJWTManager(testJWTConfig())
	good, _ := jwtManager.GenerateAccessToken("user-1", "user-1@example.com")
	inactive, _ := jwtManager.GenerateAccessToken("user-2", "")
	unknown, _ := jwtManager.GenerateAccessToken("user-3", "")
	expired, _ := NewJWTManager(JWTConfig{SecretKey: "test-secret-key", AccessTokenDuration: -time.Minute}).GenerateAccessToken("user-1", "")

	tests := []struct {
		token string
		want  AuthenticateResponse
	}{
		{good, AuthenticateResponse{Valid: true, UserID: "user-1", Email: "user-1@example.com"}},
		{inactive, AuthenticateResponse{Error: "user inactive"}},
		{unknown, AuthenticateResponse{Error: "user not found"}},
		{expired, AuthenticateResponse{Error: "token expired"}},
		{"junk", AuthenticateResponse{Error: "invalid token"}},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			resp, err := m.handleAuthenticate(ctx, AuthenticateRequest{Token: tt.token}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp)
		})
	}
}

func TestAuthModule_SeedDevUser(t *testing.T) {
	ctx := context.Background()
	m := NewModule(":memory:", testJWTConfig(), &mockLogger{})

	_, err := m.SeedDevUser(ctx, "dev", "dev@example.com")
	require.Error(t, err)

	require.NoError(t, m.Start(ctx))
	defer m.Stop(ctx)

	token, err := m.SeedDevUser(ctx, "dev", "dev@example.com")
	require.NoError(t, err)

	resp, err := m.handleAuthenticate(ctx, AuthenticateRequest{Token: token}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "dev", resp.UserID)

	// Seeding again reactivates a disabled user instead of failing.
	require.NoError(t, m.Users().SetActive(ctx, "dev", false))
	token, err = m.SeedDevUser(ctx, "dev", "dev@example.com")
	require.NoError(t, err)

	user, err := m.Users().FindByID(ctx, "dev")
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	resp, err = m.handleAuthenticate(ctx, AuthenticateRequest{Token: token}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
}

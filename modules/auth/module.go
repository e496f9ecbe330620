package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"

	domain "github.com/example/chatroom-playground/domain/user"
	"github.com/example/chatroom-playground/modules/storage"
)

// ServiceAuthenticate is the request-reply service that resolves a token.
const ServiceAuthenticate = "authenticate"

// AuthModule provides token authentication backed by the user table.
type AuthModule struct {
	db        *gorm.DB
	repo      *UserRepository
	service   *AuthService
	dbPath    string
	jwtConfig JWTConfig
	logger    types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(dbPath string, jwtConfig JWTConfig, logger types.Logger) *AuthModule {
	return &AuthModule{
		dbPath:    dbPath,
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the user database.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := storage.Open(m.dbPath, false, &domain.User{})
	if err != nil {
		return err
	}
	m.db = db
	m.repo = NewUserRepository(db)
	m.service = NewAuthService(m.repo, NewJWTManager(m.jwtConfig))

	m.logger.Info("Auth module started", "database", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if err := storage.Close(m.db); err != nil {
		m.logger.Error("Failed to close auth database", "error", err)
	}
	m.logger.Info("Auth module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceAuthenticate,
		json.Unmarshal,
		json.Marshal,
		m.handleAuthenticate,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceAuthenticate, err)
	}

	m.logger.Info("Registered auth services", "services", []string{ServiceAuthenticate})
	return nil
}

// Users returns the user repository. It is nil before Start.
func (m *AuthModule) Users() *UserRepository {
	return m.repo
}

// SeedDevUser makes sure an active user with id exists and returns an
// access token for it. It backs the playground when no identity provider
// is available.
func (m *AuthModule) SeedDevUser(ctx context.Context, id, email string) (string, error) {
	if m.repo == nil {
		return "", errors.New("auth module not started")
	}

	existing, err := m.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, ErrUserNotFound):
		if err := m.repo.Create(ctx, &domain.User{ID: id, Email: email, IsActive: true}); err != nil {
			return "", err
		}
	case err != nil:
		return "", err
	case !existing.IsActive:
		if err := m.repo.SetActive(ctx, id, true); err != nil {
			return "", err
		}
	}

	return NewJWTManager(m.jwtConfig).GenerateAccessToken(id, email)
}

// handleAuthenticate resolves a token. Rejections are reported in the
// response rather than as errors.
func (m *AuthModule) handleAuthenticate(ctx context.Context, req AuthenticateRequest, _ *mono.Msg) (AuthenticateResponse, error) {
	user, err := m.service.Authenticate(ctx, req.Token)
	if err != nil {
		m.logger.Debug("Authentication rejected", "error", err)
		return AuthenticateResponse{Valid: false, Error: rejectionReason(err)}, nil
	}

	return AuthenticateResponse{
		Valid:  true,
		UserID: user.ID,
		Email:  user.Email,
	}, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrExpiredToken):
		return "token expired"
	case errors.Is(err, ErrUserNotFound):
		return "user not found"
	case errors.Is(err, ErrUserInactive):
		return "user inactive"
	default:
		return "invalid token"
	}
}

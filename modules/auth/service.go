package auth

import (
	"context"
	"fmt"

	domain "github.com/example/chatroom-playground/domain/user"
)

// AuthService turns a bearer token into an active user.
type AuthService struct {
	repo       *UserRepository
	jwtManager *JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, jwtManager *JWTManager) *AuthService {
	return &AuthService{
		repo:       repo,
		jwtManager: jwtManager,
	}
}

// Authenticate validates token and loads its user. Unknown and inactive
// users are rejected even when the token itself is valid.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.SubjectID())
	if err != nil {
		return nil, fmt.Errorf("authenticate %s: %w", claims.SubjectID(), err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("authenticate %s: %w", user.ID, ErrUserInactive)
	}
	return user, nil
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:           "test-secret-key",
		AccessTokenDuration: 15 * time.Minute,
		Issuer:              "test-issuer",
	}
}

func TestJWTManager_GenerateAndValidateAccessToken(t *testing.T) {
	config := testJWTConfig()
	manager := NewJWTManager(config)

	token, err := manager.GenerateAccessToken("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}

	claims, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.SubjectID() != "user-123" {
		t.Errorf("claims.SubjectID() = %v, want %v", claims.SubjectID(), "user-123")
	}
	if claims.Email != "test@example.com" {
		t.Errorf("claims.Email = %v, want %v", claims.Email, "test@example.com")
	}
	if claims.Issuer != config.Issuer {
		t.Errorf("claims.Issuer = %v, want %v", claims.Issuer, config.Issuer)
	}
}

func TestJWTManager_SubjectOnlyToken(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-sub",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	signed, err := token.SignedString([]byte("test-secret-key"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	claims, err := manager.ValidateAccessToken(signed)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.SubjectID() != "user-sub" {
		t.Errorf("claims.SubjectID() = %v, want user-sub", claims.SubjectID())
	}
}

func TestJWTManager_Rejections(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	expired, _ := NewJWTManager(JWTConfig{
		SecretKey:           "test-secret-key",
		AccessTokenDuration: -time.Minute,
	}).GenerateAccessToken("user-1", "")

	otherSecret, _ := NewJWTManager(JWTConfig{
		SecretKey:           "another-secret",
		AccessTokenDuration: time.Minute,
	}).GenerateAccessToken("user-1", "")

	refresh, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		UserID:    "user-1",
		TokenType: "refresh",
	}).SignedString([]byte("test-secret-key"))

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		TokenType: "access",
	}).SignedString([]byte("test-secret-key"))

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{
		UserID: "user-1",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"expired", expired, ErrExpiredToken},
		{"wrong secret", otherSecret, ErrInvalidToken},
		{"refresh token", refresh, ErrInvalidToken},
		{"no subject", noSubject, ErrInvalidToken},
		{"alg none", unsigned, ErrInvalidToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"empty", "", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.ValidateAccessToken(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAccessToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

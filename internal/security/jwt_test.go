package security

import (
	"errors"
	"testing"
	"time"

	"github.com/rakitcita/platform-service/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:    "user-123",
		Name:  "Ayu",
		Email: "ayu@example.com",
		Role:  models.RoleMentor,
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	token, err := manager.Generate(testUser())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("Expected user_id 'user-123', got %q", claims.UserID)
	}
	if claims.Email != "ayu@example.com" {
		t.Errorf("Expected email 'ayu@example.com', got %q", claims.Email)
	}
	if claims.Role != models.RoleMentor {
		t.Errorf("Expected role 'mentor', got %q", claims.Role)
	}
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Nanosecond)

	token, err := manager.Generate(testUser())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	_, err = manager.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Generate(testUser())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	_, err = verifier.Validate(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenManager_Garbage(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := manager.Validate(token); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Expected ErrTokenInvalid for %q, got %v", token, err)
		}
	}
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	manager := NewTokenManager("test-secret", 0)

	token, err := manager.Generate(testUser())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 23*time.Hour || remaining > 25*time.Hour {
		t.Errorf("Expected roughly 24h expiry, got %v remaining", remaining)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/security"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *security.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokenManager := security.NewTokenManager("test-secret", time.Hour)
	am := NewAuthMiddleware(tokenManager)

	router := gin.New()
	router.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	router.GET("/mentor-only", am.RequireAuth(), am.RequireRoleMiddleware(models.RoleMentor), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router, tokenManager
}

func tokenFor(t *testing.T, tm *security.TokenManager, role models.UserRole) string {
	t.Helper()
	token, err := tm.Generate(&models.User{ID: "u1", Email: "u1@example.com", Role: role})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func responseMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	return resp.Message
}

func TestRequireAuth(t *testing.T) {
	router, tm := newAuthTestRouter(t)

	t.Run("missing header", func(t *testing.T) {
		w := doRequest(router, "/protected", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if msg := responseMessage(t, w); msg != "authorization header missing" {
			t.Errorf("Unexpected message: %q", msg)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		w := doRequest(router, "/protected", "Token abc")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		w := doRequest(router, "/protected", "Bearer not-a-token")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if msg := responseMessage(t, w); msg != "invalid token" {
			t.Errorf("Unexpected message: %q", msg)
		}
	})

	t.Run("expired token gets distinct message", func(t *testing.T) {
		shortLived := security.NewTokenManager("test-secret", time.Nanosecond)
		token := tokenFor(t, shortLived, models.RoleUser)
		time.Sleep(5 * time.Millisecond)

		w := doRequest(router, "/protected", "Bearer "+token)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if msg := responseMessage(t, w); msg != "token expired" {
			t.Errorf("Expected 'token expired', got %q", msg)
		}
	})

	t.Run("valid token passes identity through", func(t *testing.T) {
		w := doRequest(router, "/protected", "Bearer "+tokenFor(t, tm, models.RoleUser))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if body["user_id"] != "u1" {
			t.Errorf("Expected user_id 'u1', got %q", body["user_id"])
		}
	})
}

func TestRequireRoleMiddleware(t *testing.T) {
	router, tm := newAuthTestRouter(t)

	t.Run("role member allowed", func(t *testing.T) {
		w := doRequest(router, "/mentor-only", "Bearer "+tokenFor(t, tm, models.RoleMentor))
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200 for mentor, got %d", w.Code)
		}
	})

	t.Run("platform admin bypasses the gate", func(t *testing.T) {
		w := doRequest(router, "/mentor-only", "Bearer "+tokenFor(t, tm, models.RoleAdmin))
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200 for admin, got %d", w.Code)
		}
	})

	t.Run("other roles denied", func(t *testing.T) {
		w := doRequest(router, "/mentor-only", "Bearer "+tokenFor(t, tm, models.RoleUser))
		if w.Code != http.StatusForbidden {
			t.Errorf("Expected 403 for plain user, got %d", w.Code)
		}
	})
}

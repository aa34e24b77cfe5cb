package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rakitcita/platform-service/internal/security"
	"github.com/rakitcita/platform-service/internal/services"
	"github.com/rakitcita/platform-service/internal/utils"
)

// stubServiceManager satisfies services.ServiceManager for route wiring
// tests. Requests in these tests fail at the binding layer, so the nil
// services are never reached.
type stubServiceManager struct{}

func (s *stubServiceManager) User() services.UserService                     { return nil }
func (s *stubServiceManager) Course() services.CourseService                 { return nil }
func (s *stubServiceManager) Community() services.CommunityService           { return nil }
func (s *stubServiceManager) Recommendation() services.RecommendationService { return nil }
func (s *stubServiceManager) Initialize(ctx context.Context) error           { return nil }
func (s *stubServiceManager) HealthCheck(ctx context.Context) error          { return nil }
func (s *stubServiceManager) Shutdown(ctx context.Context) error             { return nil }

func newRouterUnderTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	tokenManager := security.NewTokenManager("test-secret", time.Hour)
	hm := NewHandlerManager(&stubServiceManager{}, tokenManager, nil, logger)

	router := gin.New()
	hm.SetupRoutes(router)
	return router
}

func TestSetupRoutes_AccountRoutes(t *testing.T) {
	router := newRouterUnderTest(t)

	// A malformed body stops at binding with a 400; a 404 would mean the
	// route is not registered, a 401 that it is not public.
	for _, path := range []string{"/api/v1/users/register", "/api/v1/users/login"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{"))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400 from %s, got %d", path, w.Code)
			}
		})
	}
}

func TestSetupRoutes_ProfileRequiresAuth(t *testing.T) {
	router := newRouterUnderTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", w.Code)
	}
}

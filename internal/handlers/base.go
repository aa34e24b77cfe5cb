package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/services"
	"github.com/rakitcita/platform-service/internal/utils"
)

// BaseHandler carries the pieces every handler needs.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	utils.FromContext(c, h.logger).Error(msg, append(args, "error", err)...)
}

// ===== RESPONSE HELPERS (uniform envelope) =====

func (h *BaseHandler) respondOK(c *gin.Context, message string, payload any) {
	c.JSON(http.StatusOK, models.OK(message, payload))
}

func (h *BaseHandler) respondCreated(c *gin.Context, message string, payload any) {
	c.JSON(http.StatusCreated, models.OK(message, payload))
}

func (h *BaseHandler) respondError(c *gin.Context, status int, message string) {
	c.JSON(status, models.Fail(message))
}

// handleServiceError maps service errors onto HTTP codes. Discrimination is
// purely errors.Is/As on typed errors; no message-text matching.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs services.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "validation failed",
			Payload: validationErrs,
		})
		return
	}

	var permErr *services.PermissionError
	if errors.As(err, &permErr) {
		h.respondError(c, http.StatusForbidden, "you do not have permission to perform this action")
		return
	}

	var ruleErr *services.BusinessRuleError
	if errors.As(err, &ruleErr) {
		h.respondError(c, http.StatusBadRequest, ruleErr.Message)
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrCommunityNotFound),
		errors.Is(err, services.ErrEnrollmentNotFound),
		errors.Is(err, services.ErrMembershipNotFound):
		h.respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrCommunityNameTaken):
		h.respondError(c, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		h.respondError(c, http.StatusUnauthorized, err.Error())

	case errors.Is(err, services.ErrLastAdmin):
		h.respondError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, services.ErrNoCandidates):
		h.respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrRecommendationUpstream),
		errors.Is(err, services.ErrRecommendationParse):
		h.respondError(c, http.StatusServiceUnavailable, "recommendation service is currently unavailable")

	default:
		h.LogError(c, err, "unhandled service error")
		h.respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// ===== REQUEST HELPERS =====

// getActor returns the authenticated requester set by the auth middleware.
func (h *BaseHandler) getActor(c *gin.Context) (services.Actor, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		h.respondError(c, http.StatusUnauthorized, "user not authenticated")
		return services.Actor{}, false
	}

	role, _ := c.Get("user_role")
	userRole, ok := role.(models.UserRole)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "user not authenticated")
		return services.Actor{}, false
	}

	return services.Actor{ID: userID, Role: userRole}, true
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, name string, defaultValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

// parsePagination reads page/limit query params with the (1, 10) defaults.
func (h *BaseHandler) parsePagination(c *gin.Context) (page, limit int) {
	return h.parseIntQuery(c, "page", 1), h.parseIntQuery(c, "limit", 10)
}

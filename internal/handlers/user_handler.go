package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rakitcita/platform-service/internal/services"
	"github.com/rakitcita/platform-service/internal/storage"
	"github.com/rakitcita/platform-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
	uploader    storage.Uploader
}

func NewUserHandler(userService services.UserService, uploader storage.Uploader, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		uploader:    uploader,
	}
}

// Register creates a new account and returns a bearer token.
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	resp, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondCreated(c, "registration successful", resp)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "login successful", resp)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "profile retrieved", user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req services.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), actor.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "profile updated", user)
}

// UploadProfilePicture stores the image and persists its public URL.
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	data, contentType, objectName, err := readImageUpload(c, "profilePicture", "profiles")
	if err != nil {
		h.handleUploadError(c, err)
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), objectName, contentType, data)
	if err != nil {
		h.LogError(c, err, "failed to store profile picture")
		h.respondError(c, http.StatusInternalServerError, "failed to store file")
		return
	}

	user, err := h.userService.UpdateProfilePicture(c.Request.Context(), actor.ID, url)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "profile picture updated", user)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rakitcita/platform-service/internal/services"
	"github.com/rakitcita/platform-service/internal/storage"
	"github.com/rakitcita/platform-service/internal/utils"
	"github.com/rakitcita/platform-service/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	uploader      storage.Uploader
}

func NewCourseHandler(courseService services.CourseService, uploader storage.Uploader, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		uploader:      uploader,
	}
}

// ListCourses is public; filters: category, level, search, page, limit.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	page, limit := h.parsePagination(c)

	resp, err := h.courseService.List(c.Request.Context(), &services.ListCoursesRequest{
		Category: c.Query("category"),
		Level:    c.Query("level"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "courses retrieved", resp)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	resp, err := h.courseService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "course retrieved", resp)
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req services.CourseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondCreated(c, "course created", course)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req services.CourseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "course updated", course)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "course deleted", nil)
}

func (h *CourseHandler) UploadThumbnail(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	data, contentType, objectName, err := readImageUpload(c, "thumbnail", "courses")
	if err != nil {
		h.handleUploadError(c, err)
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), objectName, contentType, data)
	if err != nil {
		h.LogError(c, err, "failed to store thumbnail")
		h.respondError(c, http.StatusInternalServerError, "failed to store file")
		return
	}

	course, err := h.courseService.SetThumbnail(c.Request.Context(), c.Param("id"), url, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "thumbnail updated", course)
}

// Enroll is idempotent: a second enroll returns the existing row and a
// different message.
func (h *CourseHandler) Enroll(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	resp, err := h.courseService.Enroll(c.Request.Context(), c.Param("id"), actor.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if resp.AlreadyEnrolled {
		h.respondOK(c, "already enrolled", resp)
		return
	}
	h.respondCreated(c, "enrolled", resp)
}

func (h *CourseHandler) UpdateProgress(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req validator.ProgressUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Progress == nil {
		h.respondError(c, http.StatusBadRequest, "progress must be a number between 0 and 100")
		return
	}

	enrollment, err := h.courseService.UpdateProgress(c.Request.Context(), c.Param("id"), actor.ID, *req.Progress)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "progress updated", enrollment)
}

func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	page, limit := h.parsePagination(c)
	resp, err := h.courseService.ListEnrolled(c.Request.Context(), actor.ID, page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "enrollments retrieved", resp)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/services"
	"github.com/rakitcita/platform-service/internal/storage"
	"github.com/rakitcita/platform-service/internal/utils"
)

type CommunityHandler struct {
	BaseHandler
	communityService services.CommunityService
	uploader         storage.Uploader
}

func NewCommunityHandler(communityService services.CommunityService, uploader storage.Uploader, logger utils.Logger) *CommunityHandler {
	return &CommunityHandler{
		BaseHandler:      NewBaseHandler(logger),
		communityService: communityService,
		uploader:         uploader,
	}
}

func (h *CommunityHandler) ListCommunities(c *gin.Context) {
	page, limit := h.parsePagination(c)

	resp, err := h.communityService.List(c.Request.Context(), &services.ListCommunitiesRequest{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "communities retrieved", resp)
}

func (h *CommunityHandler) GetCommunity(c *gin.Context) {
	resp, err := h.communityService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "community retrieved", resp)
}

func (h *CommunityHandler) CreateCommunity(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req services.CommunityCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	community, err := h.communityService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondCreated(c, "community created", community)
}

func (h *CommunityHandler) UpdateCommunity(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req services.CommunityUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	community, err := h.communityService.Update(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "community updated", community)
}

func (h *CommunityHandler) DeleteCommunity(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	if err := h.communityService.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "community deleted", nil)
}

func (h *CommunityHandler) UploadBanner(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	data, contentType, objectName, err := readImageUpload(c, "bannerImage", "communities")
	if err != nil {
		h.handleUploadError(c, err)
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), objectName, contentType, data)
	if err != nil {
		h.LogError(c, err, "failed to store banner")
		h.respondError(c, http.StatusInternalServerError, "failed to store file")
		return
	}

	community, err := h.communityService.SetBanner(c.Request.Context(), c.Param("id"), url, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "banner updated", community)
}

// Join is idempotent, mirroring course enrollment.
func (h *CommunityHandler) Join(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	resp, err := h.communityService.Join(c.Request.Context(), c.Param("id"), actor.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if resp.AlreadyMember {
		h.respondOK(c, "already a member", resp)
		return
	}
	h.respondCreated(c, "joined community", resp)
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	if err := h.communityService.Leave(c.Request.Context(), c.Param("id"), actor.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "left community", nil)
}

func (h *CommunityHandler) ListMembers(c *gin.Context) {
	page, limit := h.parsePagination(c)

	resp, err := h.communityService.ListMembers(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "members retrieved", resp)
}

func (h *CommunityHandler) UpdateMemberRole(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req services.MemberRoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	membership, err := h.communityService.UpdateMemberRole(
		c.Request.Context(),
		c.Param("id"),
		c.Param("user_id"),
		models.CommunityRole(req.Role),
		actor,
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "member role updated", membership)
}

func (h *CommunityHandler) RemoveMember(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	if err := h.communityService.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("user_id"), actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "member removed", nil)
}

func (h *CommunityHandler) ListMyCommunities(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	page, limit := h.parsePagination(c)
	resp, err := h.communityService.ListByUser(c.Request.Context(), actor.ID, page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "memberships retrieved", resp)
}

package handlers

import (
	"net/http"

	"github.com/Wahidu1/projects-tech-foring/internal/dto"
	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/services"
	"github.com/Wahidu1/projects-tech-foring/internal/utils"
	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	memberService *services.MemberService
}

func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// ListMembers returns the members of the project in the path
func (h *MemberHandler) ListMembers(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	members, total, err := h.memberService.ListMembers(identity, projectID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListResponse(members, dto.ToMemberDTO, params, total))
}

// AddMember adds a user to the project in the path. Field checks run after
// the permission check.
func (h *MemberHandler) AddMember(c *gin.Context) {
	type AddMemberRequest struct {
		User uint64             `json:"user"`
		Role models.ProjectRole `json:"role"`
	}

	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.memberService.AddMember(identity, projectID, services.AddMemberInput{
		UserID: req.User,
		Role:   req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberDTO(*member))
}

// GetMember returns a membership
func (h *MemberHandler) GetMember(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	member, err := h.memberService.GetMember(identity, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*member))
}

// UpdateMember handles PUT and PATCH on a membership
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	type UpdateMemberRequest struct {
		User *uint64             `json:"user"`
		Role *models.ProjectRole `json:"role"`
	}

	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.memberService.UpdateMember(identity, id, services.MemberPatch{
		UserID: req.User,
		Role:   req.Role,
	}, isFullUpdate(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*member))
}

// RemoveMember deletes a membership
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.memberService.RemoveMember(identity, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

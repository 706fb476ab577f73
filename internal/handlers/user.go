package handlers

import (
	"net/http"

	"github.com/Wahidu1/projects-tech-foring/internal/dto"
	"github.com/Wahidu1/projects-tech-foring/internal/services"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the user detail endpoints.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetUser returns a user. Callers may read themselves; superusers anyone.
func (h *UserHandler) GetUser(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(identity, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser handles both PUT and PATCH.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	type UpdateUserRequest struct {
		Username    *string `json:"username" binding:"omitempty,max=255"`
		Email       *string `json:"email" binding:"omitempty,email,max=255"`
		FirstName   *string `json:"first_name" binding:"omitempty,max=255"`
		LastName    *string `json:"last_name" binding:"omitempty,max=255"`
		Password    *string `json:"password"`
		IsActive    *bool   `json:"is_active"`
		IsStaff     *bool   `json:"is_staff"`
		IsSuperuser *bool   `json:"is_superuser"`
	}

	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(identity, id, services.UserPatch{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    req.Password,
		IsActive:    req.IsActive,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
	}, isFullUpdate(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser removes a user account and everything it owns.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(identity, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

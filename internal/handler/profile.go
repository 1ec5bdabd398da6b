package handler

import (
	"net/http"

	"question-bank/internal/models"
	"question-bank/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetMe returns the current profile, provisioned by the auth middleware
// if this was the first access.
func GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{
		"profile": userJSON(user),
	})
}

// ProfileHandler covers the admin-facing user management endpoints.
type ProfileHandler struct {
	DB *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{DB: db}
}

// ListUsers returns every workspace profile, oldest first. Admin only
// (enforced by the route group).
func (h *ProfileHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("created_at ASC").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to fetch workspace users")
		return
	}

	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, userJSON(&users[i]))
	}
	util.Success(c, util.Response{"items": items})
}

type updateRoleReq struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// UpdateRole changes a profile's role. The role set is closed; anything
// outside it is rejected here and never reaches storage.
func (h *ProfileHandler) UpdateRole(c *gin.Context) {
	var req updateRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "user_id and role are required")
		return
	}
	if !models.ValidRole(req.Role) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unsupported role")
		return
	}

	res := h.DB.Model(&models.User{}).Where("id = ?", req.UserID).Update("role", req.Role)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to update role")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		return
	}

	util.Success(c, util.Response{
		"profile": gin.H{"id": req.UserID, "role": req.Role},
	})
}

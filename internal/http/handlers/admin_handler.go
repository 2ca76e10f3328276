// Admin HTTP handlers.
//
// This file exposes the administrative and analytics surface consumed by an
// external reporting layer:
//   - POST  /admin/auth/token      (mint an admin bearer token)
//   - GET   /admin/analytics       (totals + top commands/users)
//   - GET   /admin/users           (list, filtered + paginated)
//   - GET   /admin/users/:phone    (detail + recent command history)
//   - PATCH /admin/users/:phone    (role and ban flags)
//   - GET   /admin/groups          (list by recent activity)
//   - GET   /admin/groups/:id      (detail)
//   - PATCH /admin/groups/:id      (partial settings update)
//   - GET   /admin/logs/commands   (audit log, filtered + paginated)
//
// Analytics are derived by aggregation over the audit log and are not part
// of the dispatch hard path.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-groupbot-backend/internal/http/middleware"
	"github.com/tbourn/go-groupbot-backend/internal/repo"
	"github.com/tbourn/go-groupbot-backend/internal/services"
	"github.com/tbourn/go-groupbot-backend/internal/utils"
)

// AdminTokenRequest asks for a bearer token for a known user.
type AdminTokenRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required" example:"15551234567"`
}

// MintAdminToken godoc
// @ID          mintAdminToken
// @Summary     Mint an admin bearer token
// @Description Issues a JWT for the given phone number with role claims read from the user record. The route itself sits behind the bot API key.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       body  body  handlers.AdminTokenRequest  true  "Token request"
//
// @Success     200  {object} map[string]any
// @Failure     400  {object} handlers.ErrorResponse "Missing phone number"
// @Failure     403  {object} handlers.ErrorResponse "User holds no admin role"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Router      /admin/auth/token [post]
func (h *Handlers) MintAdminToken(c *gin.Context) {
	var req AdminTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "phone_number is required")
		return
	}
	user, err := repo.GetUserByPhone(c.Request.Context(), h.db, req.PhoneNumber)
	if errors.Is(err, repo.ErrNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if !user.CanModerate() {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "admin permission required")
		return
	}

	token, err := middleware.MintToken(h.opts.JWTSecret, user.PhoneNumber, user.IsOwner, user.IsAdmin, h.opts.JWTTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "token generation failed")
		return
	}
	ok(c, http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"role":    user.Role(),
	})
}

// Analytics godoc
// @ID          adminAnalytics
// @Summary     Analytics dashboard
// @Description Returns user/group/command totals plus the top commands (with success rate) and highest-volume users, aggregated over the audit log.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} map[string]any
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /admin/analytics [get]
func (h *Handlers) Analytics(c *gin.Context) {
	ctx := c.Request.Context()

	totalUsers, err := repo.CountUsers(ctx, h.db, repo.UserFilter{})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	premium := true
	premiumUsers, err := repo.CountUsers(ctx, h.db, repo.UserFilter{IsPremium: &premium})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	totalGroups, err := repo.CountGroups(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	totalCommands, err := repo.CountCommandLogs(ctx, h.db, repo.CommandLogFilter{})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	topCommands, err := repo.TopCommands(ctx, h.db, 10)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	topUsers, err := repo.TopUsers(ctx, h.db, 10)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, gin.H{
		"success": true,
		"analytics": gin.H{
			"users": gin.H{
				"total":   totalUsers,
				"premium": premiumUsers,
				"free":    totalUsers - premiumUsers,
			},
			"groups": gin.H{
				"total": totalGroups,
			},
			"commands": gin.H{
				"total": totalCommands,
				"top":   topCommands,
			},
			"top_users": topUsers,
		},
	})
}

// ListUsers godoc
// @ID          adminListUsers
// @Summary     List users
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       is_premium  query  bool  false "Filter by premium flag"
// @Param       is_banned   query  bool  false "Filter by ban flag"
// @Param       page        query  int   false "Page number (1-based)"
// @Param       limit       query  int   false "Page size"
//
// @Success     200  {object} map[string]any
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /admin/users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	var f repo.UserFilter
	if v, present := c.GetQuery("is_premium"); present {
		b := v == "true" || v == "1"
		f.IsPremium = &b
	}
	if v, present := c.GetQuery("is_banned"); present {
		b := v == "true" || v == "1"
		f.IsBanned = &b
	}

	page := utils.AtoiDefault(c.Query("page"), 1)
	limit := utils.AtoiDefault(c.Query("limit"), 50)
	offset, limit := utils.PageBounds(page, limit, 200)

	users, err := repo.ListUsers(c.Request.Context(), h.db, f, offset, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	total, err := repo.CountUsers(c.Request.Context(), h.db, f)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"pagination": gin.H{
			"total": total,
			"page":  page,
		},
	})
}

// GetUser godoc
// @ID          adminGetUser
// @Summary     Get a user with recent command history
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       phone  path  string  true  "Phone number"
//
// @Success     200  {object} map[string]any
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /admin/users/{phone} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	phone := c.Param("phone")
	user, err := repo.GetUserByPhone(c.Request.Context(), h.db, phone)
	if errors.Is(err, repo.ErrNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	history, err := repo.ListCommandLogs(c.Request.Context(), h.db,
		repo.CommandLogFilter{UserPhone: phone}, 0, 20)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, gin.H{
		"success":         true,
		"user":            user,
		"command_history": history,
	})
}

// UpdateUserRequest is the JSON payload for patching role and ban flags.
// Absent fields are left untouched.
type UpdateUserRequest struct {
	Name      *string `json:"name,omitempty"`
	IsOwner   *bool   `json:"is_owner,omitempty"`
	IsAdmin   *bool   `json:"is_admin,omitempty"`
	IsBanned  *bool   `json:"is_banned,omitempty"`
	BanReason *string `json:"ban_reason,omitempty"`
}

// UpdateUser godoc
// @ID          adminUpdateUser
// @Summary     Update a user's role and ban flags
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       phone  path  string  true  "Phone number"
// @Param       body   body  handlers.UpdateUserRequest  true  "Partial update"
//
// @Success     200  {object} map[string]any
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /admin/users/{phone} [patch]
func (h *Handlers) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload")
		return
	}

	user, err := repo.UpdateUserFlags(c.Request.Context(), h.db, c.Param("phone"), repo.UserPatch{
		Name:      req.Name,
		IsOwner:   req.IsOwner,
		IsAdmin:   req.IsAdmin,
		IsBanned:  req.IsBanned,
		BanReason: req.BanReason,
	})
	if errors.Is(err, repo.ErrNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"user":    user,
	})
}

// ListGroups godoc
// @ID          adminListGroups
// @Summary     List groups by recent activity
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       page   query  int  false "Page number (1-based)"
// @Param       limit  query  int  false "Page size"
//
// @Success     200  {object} map[string]any
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /admin/groups [get]
func (h *Handlers) ListGroups(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	limit := utils.AtoiDefault(c.Query("limit"), 50)
	offset, limit := utils.PageBounds(page, limit, 200)

	groups, err := repo.ListGroups(c.Request.Context(), h.db, offset, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	total, err := repo.CountGroups(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, gin.H{
		"success": true,
		"groups":  groups,
		"pagination": gin.H{
			"total": total,
			"page":  page,
		},
	})
}

// GetGroup godoc
// @ID          adminGetGroup
// @Summary     Get a group with its statistics snapshot
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Group ID"
//
// @Success     200  {object} map[string]any
// @Failure     404  {object} handlers.ErrorResponse "Group not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /admin/groups/{id} [get]
func (h *Handlers) GetGroup(c *gin.Context) {
	group, err := h.moderation.Group(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrGroupNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "group not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	stats, err := h.moderation.Statistics(c.Request.Context(), group.GroupID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, gin.H{
		"success":    true,
		"group":      group,
		"statistics": stats,
	})
}

// UpdateGroupRequest is the JSON payload for a partial settings update.
type UpdateGroupRequest struct {
	Settings services.SettingsPatch `json:"settings"`
}

// UpdateGroup godoc
// @ID          adminUpdateGroup
// @Summary     Update a group's settings
// @Description Applies a partial settings update. Unspecified leaves keep their current values.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Group ID"
// @Param       body  body  handlers.UpdateGroupRequest  true  "Partial settings"
//
// @Success     200  {object} map[string]any
// @Failure     400  {object} handlers.ErrorResponse "Invalid settings value"
// @Failure     404  {object} handlers.ErrorResponse "Group not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /admin/groups/{id} [patch]
func (h *Handlers) UpdateGroup(c *gin.Context) {
	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload")
		return
	}

	group, err := h.moderation.UpdateSettings(c.Request.Context(), c.Param("id"), req.Settings)
	if errors.Is(err, services.ErrGroupNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "group not found")
		return
	}
	if err != nil {
		failFromService(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{
		"success": true,
		"message": "Group updated successfully",
		"group":   group,
	})
}

// ListCommandLogs godoc
// @ID          adminListCommandLogs
// @Summary     List audit-log entries
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       command       query  string  false "Filter by command name"
// @Param       phone_number  query  string  false "Filter by actor phone"
// @Param       page          query  int     false "Page number (1-based)"
// @Param       limit         query  int     false "Page size"
//
// @Success     200  {object} map[string]any
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /admin/logs/commands [get]
func (h *Handlers) ListCommandLogs(c *gin.Context) {
	f := repo.CommandLogFilter{
		Command:   c.Query("command"),
		UserPhone: c.Query("phone_number"),
	}

	page := utils.AtoiDefault(c.Query("page"), 1)
	limit := utils.AtoiDefault(c.Query("limit"), 100)
	offset, limit := utils.PageBounds(page, limit, 500)

	logs, err := repo.ListCommandLogs(c.Request.Context(), h.db, f, offset, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	total, err := repo.CountCommandLogs(c.Request.Context(), h.db, f)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, gin.H{
		"success": true,
		"logs":    logs,
		"pagination": gin.H{
			"total": total,
			"page":  page,
		},
	})
}

// Command HTTP handlers.
//
// This file exposes the bot client's command-execution boundary:
//   - POST /commands/execute          (dispatch a named command)
//   - POST /commands/process-message  (run the moderation pipeline)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate dispatch outcomes into the response envelope. A
// dispatch that fails an expected gate (banned, permission, validation) is a
// successful HTTP exchange carrying success=false, matching what the bot
// client renders back into the chat.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-groupbot-backend/internal/http/middleware"
	"github.com/tbourn/go-groupbot-backend/internal/repo"
	"github.com/tbourn/go-groupbot-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// CommandExecutor dispatches one named command. Implementations must be safe
// for concurrent use and honor the provided context.
type CommandExecutor interface {
	Execute(ctx context.Context, command string, cc *services.CommandContext) (*services.CommandResult, error)
}

//
// Handler wiring
//

// Options carries the transport-level knobs handlers need beyond services.
type Options struct {
	JWTSecret      string
	JWTTTL         time.Duration
	IdempotencyTTL time.Duration
}

// Handlers groups the HTTP endpoints for commands, premium management, and
// the admin surface.
type Handlers struct {
	db         *gorm.DB
	dispatcher CommandExecutor
	moderation *services.ModerationService
	premium    *services.PremiumService
	opts       Options
}

// New constructs a Handlers instance bound to the given services.
func New(db *gorm.DB, dispatcher CommandExecutor, mod *services.ModerationService, prem *services.PremiumService, opts Options) *Handlers {
	return &Handlers{
		db:         db,
		dispatcher: dispatcher,
		moderation: mod,
		premium:    prem,
		opts:       opts,
	}
}

//
// Request/response shapes
//

// UserRef identifies the acting user in a request body.
type UserRef struct {
	PhoneNumber string `json:"phone_number" binding:"required" example:"15551234567"`
	Name        string `json:"name" example:"Alice"`
}

// GroupRef identifies the group a command or message came from.
type GroupRef struct {
	GroupID string `json:"group_id" binding:"required" example:"group-42"`
	Name    string `json:"name" example:"Engineering"`
}

// ExecuteCommandRequest is the JSON payload for dispatching a command.
type ExecuteCommandRequest struct {
	Command        string    `json:"command" binding:"required" example:"warn"`
	Args           []string  `json:"args"`
	User           UserRef   `json:"user" binding:"required"`
	Group          *GroupRef `json:"group,omitempty"`
	Participants   []string  `json:"participants,omitempty"`
	MentionedUsers []string  `json:"mentioned_users,omitempty"`
}

// ExecuteCommandResponse is the command-execution envelope. On success Result
// carries the handler's directives; on an expected failure Code and Message
// describe the denial.
type ExecuteCommandResponse struct {
	Success   bool                    `json:"success"`
	Silent    bool                    `json:"silent,omitempty"`
	Result    *services.CommandResult `json:"result,omitempty"`
	Code      string                  `json:"code,omitempty" example:"banned"`
	Message   string                  `json:"message,omitempty"`
	RequestID string                  `json:"request_id,omitempty"`
}

// ExecuteCommand godoc
// @ID          executeCommand
// @Summary     Execute a bot command
// @Description Dispatches a named command for the acting user, applying ban short-circuits, permission gates, and ghost-mode suppression. Expected denials return HTTP 200 with success=false.
// @Tags        Commands
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       Idempotency-Key  header  string  false "Deduplicates transport redeliveries"
// @Param       body  body  handlers.ExecuteCommandRequest  true  "Command payload"
//
// @Success     200  {object} handlers.ExecuteCommandResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     401  {object} handlers.ErrorResponse "Missing API key"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /commands/execute [post]
func (h *Handlers) ExecuteCommand(c *gin.Context) {
	var req ExecuteCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "command and user.phone_number are required")
		return
	}

	// A redelivery of an already-dispatched command is acknowledged without
	// running the handler again.
	if middleware.IsReplay(c) {
		ok(c, http.StatusOK, ExecuteCommandResponse{
			Success:   true,
			Silent:    true,
			RequestID: c.Writer.Header().Get("X-Request-ID"),
		})
		return
	}

	cc := &services.CommandContext{
		ActorPhone:     req.User.PhoneNumber,
		ActorName:      req.User.Name,
		Args:           req.Args,
		Participants:   req.Participants,
		MentionedUsers: req.MentionedUsers,
	}
	if req.Group != nil {
		cc.GroupID = req.Group.GroupID
		cc.GroupName = req.Group.Name
	}

	res, err := h.dispatcher.Execute(c.Request.Context(), req.Command, cc)
	if err != nil {
		kind := services.KindOf(err)
		if kind == services.KindInternal {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "command execution failed")
			return
		}
		ok(c, http.StatusOK, ExecuteCommandResponse{
			Success:   false,
			Code:      codeForKind(kind),
			Message:   err.Error(),
			RequestID: c.Writer.Header().Get("X-Request-ID"),
		})
		return
	}

	h.recordIdempotency(c, req, http.StatusOK)

	resp := ExecuteCommandResponse{
		Success:   true,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
	}
	if res != nil && res.Silent && res.Message == "" {
		resp.Silent = true
	} else {
		resp.Result = res
	}
	ok(c, http.StatusOK, resp)
}

// recordIdempotency persists the dedup record for a completed dispatch when
// the client supplied a key. Failures are logged, never surfaced; losing a
// record only risks a duplicate execution on retry, not a wrong response.
func (h *Handlers) recordIdempotency(c *gin.Context, req ExecuteCommandRequest, status int) {
	key, present := middleware.GetIdempotencyKey(c)
	if !present {
		return
	}
	groupID := ""
	if req.Group != nil {
		groupID = req.Group.GroupID
	}
	_, err := repo.CreateIdempotency(c.Request.Context(), h.db,
		req.User.PhoneNumber, groupID, key, req.Command, status, h.opts.IdempotencyTTL)
	if err != nil && err != repo.ErrDuplicate {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not persisted")
	}
}

// ModerationAction is one enforcement directive produced by the moderation
// pipeline for the transport layer to enact.
type ModerationAction struct {
	Type    string   `json:"type" example:"anti-tag"`
	Action  string   `json:"action,omitempty" example:"warn"`
	Reasons []string `json:"reasons,omitempty"`
	Data    any      `json:"data,omitempty"`
}

// ProcessMessageRequest is the JSON payload for the moderation pipeline.
type ProcessMessageRequest struct {
	Message string    `json:"message" binding:"required"`
	User    UserRef   `json:"user" binding:"required"`
	Group   *GroupRef `json:"group,omitempty"`
}

// ProcessMessageResponse lists the actions the transport should take.
type ProcessMessageResponse struct {
	Success bool               `json:"success"`
	Actions []ModerationAction `json:"actions"`
}

// ProcessMessage godoc
// @ID          processMessage
// @Summary     Run the moderation pipeline on an inbound message
// @Description Evaluates anti-tag and auto-delete heuristics for the message's group and bumps the group's message counter. Messages outside groups produce no actions.
// @Tags        Commands
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       body  body  handlers.ProcessMessageRequest  true  "Message payload"
//
// @Success     200  {object} handlers.ProcessMessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /commands/process-message [post]
func (h *Handlers) ProcessMessage(c *gin.Context) {
	var req ProcessMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message and user.phone_number are required")
		return
	}

	actions := []ModerationAction{}
	if req.Group == nil {
		ok(c, http.StatusOK, ProcessMessageResponse{Success: true, Actions: actions})
		return
	}
	ctx := c.Request.Context()
	groupID := req.Group.GroupID

	antiTag, err := h.moderation.CheckAntiTag(ctx, groupID, req.Message)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "moderation check failed")
		return
	}
	if antiTag.Violated {
		actions = append(actions, ModerationAction{
			Type:   "anti-tag",
			Action: antiTag.Action,
			Data:   antiTag,
		})
	}

	autoDelete, err := h.moderation.CheckAutoDelete(ctx, groupID, req.Message)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "moderation check failed")
		return
	}
	if autoDelete.ShouldDelete {
		actions = append(actions, ModerationAction{
			Type:    "auto-delete",
			Reasons: autoDelete.Reasons,
		})
	}

	if err := h.moderation.IncrementMessageCount(ctx, groupID); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "statistics update failed")
		return
	}

	ok(c, http.StatusOK, ProcessMessageResponse{Success: true, Actions: actions})
}

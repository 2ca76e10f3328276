// Package services – Dispatcher
//
// Top-level entry point for inbound commands. The dispatcher provisions the
// actor, applies the ban short-circuits, routes to a registered handler, and
// writes exactly one audit-log row per attempt regardless of outcome.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/tbourn/go-groupbot-backend/internal/domain"
	"github.com/tbourn/go-groupbot-backend/internal/repo"
)

// commandDispatches counts dispatch attempts by command and outcome. The
// outcome label is "success" or the error kind.
var commandDispatches = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_command_dispatches_total",
		Help: "Command dispatch attempts by command name and outcome.",
	},
	[]string{"command", "outcome"},
)

// CommandContext bundles the inbound tuple: actor identity, optional group,
// raw arguments, and the participant/mention lists supplied by the transport.
// User and Group are resolved by Execute before any handler runs.
type CommandContext struct {
	ActorPhone string
	ActorName  string
	GroupID    string
	GroupName  string

	Args           []string
	Participants   []string
	MentionedUsers []string

	// Resolved entities, populated by Execute.
	User  *domain.User
	Group *domain.Group
}

// CommandResult is what a handler hands back to the transport layer. Message
// is the rendered reply; the remaining fields are directives the transport
// enacts (mention lists, kick requests, animation hints).
type CommandResult struct {
	Message       string   `json:"message,omitempty"`
	Silent        bool     `json:"silent,omitempty"`
	Mentions      []string `json:"mentions,omitempty"`
	Chunked       bool     `json:"chunked,omitempty"`
	Action        string   `json:"action,omitempty"`
	TargetPhone   string   `json:"target_phone,omitempty"`
	ShouldKick    bool     `json:"should_kick,omitempty"`
	TotalWarnings int      `json:"total_warnings,omitempty"`
	Anonymous     bool     `json:"anonymous,omitempty"`
	Animation     bool     `json:"animation,omitempty"`
}

// Handler executes one named command against a resolved context.
type Handler func(ctx context.Context, cc *CommandContext) (*CommandResult, error)

// Dispatcher routes command names to handlers through an open registry.
type Dispatcher struct {
	DB         *gorm.DB
	Moderation *ModerationService
	Premium    *PremiumService

	// TagBatchSize and TagBatchPause pace the mass-mention command. The
	// pause applies between batches only, never after the last one.
	TagBatchSize  int
	TagBatchPause time.Duration

	handlers map[string]Handler
}

// NewDispatcher constructs a Dispatcher with all built-in commands registered.
func NewDispatcher(db *gorm.DB, mod *ModerationService, prem *PremiumService) *Dispatcher {
	d := &Dispatcher{
		DB:            db,
		Moderation:    mod,
		Premium:       prem,
		TagBatchSize:  5,
		TagBatchPause: time.Second,
		handlers:      map[string]Handler{},
	}
	d.registerBuiltins()
	return d
}

// Register adds or replaces a handler for name.
func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[name] = h
}

// Execute runs one dispatch attempt end to end:
//
//  1. resolve or provision the actor,
//  2. bump the actor's activity counters unconditionally,
//  3. short-circuit on the actor's global ban flag,
//  4. resolve the group, bump its command counter, and short-circuit on its
//     ban list,
//  5. route to the registered handler (unknown names get a fixed reply),
//  6. suppress silent-marked results for non-owners when ghost mode is on,
//  7. append exactly one audit-log row with elapsed time and outcome.
//
// Expected failures come back as *CommandError; anything else is an internal
// fault. Handler panics are contained and reported as internal.
func (d *Dispatcher) Execute(ctx context.Context, command string, cc *CommandContext) (*CommandResult, error) {
	start := time.Now()
	now := start.UTC()

	user, err := repo.GetOrCreateUser(ctx, d.DB, cc.ActorPhone, cc.ActorName)
	if err != nil {
		return nil, d.finish(ctx, command, cc, start, nil, err)
	}
	cc.User = user

	// Activity counters move for every attempt, including denied ones.
	if err := repo.RecordUserActivity(ctx, d.DB, cc.ActorPhone, now); err != nil {
		return nil, d.finish(ctx, command, cc, start, nil, err)
	}

	if user.IsBanned {
		reason := "You are banned from using this bot."
		if user.BanReason != nil && *user.BanReason != "" {
			reason = "You are banned: " + *user.BanReason
		}
		err := NewCommandError(KindBanned, reason)
		return nil, d.finish(ctx, command, cc, start, nil, err)
	}

	if cc.GroupID != "" {
		g, err := d.Moderation.UpsertGroup(ctx, cc.GroupID, cc.GroupName, nil)
		if err != nil {
			return nil, d.finish(ctx, command, cc, start, nil, err)
		}
		cc.Group = g
		if err := repo.IncrementGroupStat(ctx, d.DB, cc.GroupID, "commands"); err != nil {
			return nil, d.finish(ctx, command, cc, start, nil, err)
		}
		banned, err := d.Moderation.IsGroupBanned(ctx, cc.GroupID, cc.ActorPhone)
		if err != nil {
			return nil, d.finish(ctx, command, cc, start, nil, err)
		}
		if banned {
			err := NewCommandError(KindGroupBanned, "You are banned from this group.")
			return nil, d.finish(ctx, command, cc, start, nil, err)
		}
	}

	h, ok := d.handlers[command]
	if !ok {
		res := &CommandResult{Message: "Unknown command"}
		return res, d.finish(ctx, command, cc, start, res, nil)
	}

	res, err := d.run(ctx, h, cc)
	if err != nil {
		return nil, d.finish(ctx, command, cc, start, nil, err)
	}

	// Ghost mode: a silent-marked result from a non-owner becomes a bare
	// acknowledgement so restricted commands fail invisibly.
	if cc.Group != nil && cc.Group.Settings.GhostMode && !user.IsOwner && res != nil && res.Silent {
		res = &CommandResult{Silent: true}
	}

	return res, d.finish(ctx, command, cc, start, res, nil)
}

// run invokes the handler, containing panics as internal errors.
func (d *Dispatcher) run(ctx context.Context, h Handler, cc *CommandContext) (res *CommandResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("command handler panic: %v", r)
		}
	}()
	return h(ctx, cc)
}

// finish writes the single audit-log row for the attempt and passes the
// handler error through unchanged. Audit failures never mask the outcome.
func (d *Dispatcher) finish(ctx context.Context, command string, cc *CommandContext, start time.Time, res *CommandResult, cause error) error {
	entry := &domain.CommandLog{
		ID:          uuid.NewString(),
		Command:     command,
		UserPhone:   cc.ActorPhone,
		UserName:    cc.ActorName,
		Args:        domain.StringList(cc.Args),
		Success:     cause == nil,
		ExecutionMS: time.Since(start).Milliseconds(),
	}
	if cc.GroupID != "" {
		gid := cc.GroupID
		entry.GroupID = &gid
		if cc.GroupName != "" {
			gname := cc.GroupName
			entry.GroupName = &gname
		}
	}

	outcome := "success"
	if cause != nil {
		kind := KindOf(cause)
		outcome = string(kind)
		msg := fmt.Sprintf("%s: %s", kind, cause.Error())
		entry.Error = &msg
	}
	commandDispatches.WithLabelValues(command, outcome).Inc()

	if err := repo.InsertCommandLog(ctx, d.DB, entry); err != nil && cause == nil {
		return err
	}
	return cause
}

// pause blocks for d.TagBatchPause or until the context is cancelled. The
// full pause always elapses before the next batch; cancellation aborts the
// remainder of the operation, never shortens the throttle.
func (d *Dispatcher) pause(ctx context.Context) error {
	t := time.NewTimer(d.TagBatchPause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// requireGroup returns a validation error when the command was sent outside
// a group chat.
func requireGroup(cc *CommandContext) error {
	if cc.Group == nil {
		return NewCommandError(KindValidation, "This command can only be used in a group.")
	}
	return nil
}

// firstMention returns the first mentioned identifier or a validation error.
func firstMention(cc *CommandContext, verb string) (string, error) {
	if len(cc.MentionedUsers) == 0 {
		return "", NewCommandError(KindValidation, "Please mention a user to "+verb+".")
	}
	return cc.MentionedUsers[0], nil
}

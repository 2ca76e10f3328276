package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-groupbot-backend/internal/domain"
	"github.com/tbourn/go-groupbot-backend/internal/repo"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *gorm.DB) {
	t.Helper()
	db := newServiceDB(t)
	d := NewDispatcher(db, NewModerationService(db), NewPremiumService(db))
	d.TagBatchPause = 5 * time.Millisecond // keep pacing tests fast
	return d, db
}

func auditRows(t *testing.T, db *gorm.DB) []domain.CommandLog {
	t.Helper()
	logs, err := repo.ListCommandLogs(context.Background(), db, repo.CommandLogFilter{}, 0, 100)
	if err != nil {
		t.Fatalf("list audit rows: %v", err)
	}
	return logs
}

func TestExecute_UnknownCommandIsSuccessful(t *testing.T) {
	d, db := newTestDispatcher(t)
	ctx := context.Background()

	res, err := d.Execute(ctx, "frobnicate", &CommandContext{ActorPhone: "15551", ActorName: "A"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Message != "Unknown command" {
		t.Fatalf("unexpected reply: %+v", res)
	}

	logs := auditRows(t, db)
	if len(logs) != 1 || !logs[0].Success || logs[0].Command != "frobnicate" {
		t.Fatalf("expected one successful audit row, got %+v", logs)
	}
}

func TestExecute_ProvisionsActorAndCountsActivity(t *testing.T) {
	d, db := newTestDispatcher(t)
	ctx := context.Background()

	if _, err := d.Execute(ctx, "ping", &CommandContext{ActorPhone: "15551", ActorName: "Alice"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := d.Execute(ctx, "ping", &CommandContext{ActorPhone: "15551", ActorName: "Alice"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	u, err := repo.GetUserByPhone(ctx, db, "15551")
	if err != nil {
		t.Fatalf("user not provisioned: %v", err)
	}
	if u.Name != "Alice" || u.CommandCount != 2 {
		t.Fatalf("activity counters wrong: %+v", u)
	}
}

func TestExecute_GlobalBanShortCircuits(t *testing.T) {
	d, db := newTestDispatcher(t)
	ctx := context.Background()

	if _, err := repo.GetOrCreateUser(ctx, db, "15551", "A"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	reason := "spamming"
	if err := repo.SetUserBan(ctx, db, "15551", true, &reason); err != nil {
		t.Fatalf("ban: %v", err)
	}

	_, err := d.Execute(ctx, "ping", &CommandContext{ActorPhone: "15551", ActorName: "A"})
	if KindOf(err) != KindBanned {
		t.Fatalf("expected banned kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "spamming") {
		t.Fatalf("ban reason should surface: %v", err)
	}

	// The attempt still moved the activity counter and left an audit row.
	u, _ := repo.GetUserByPhone(ctx, db, "15551")
	if u.CommandCount != 1 {
		t.Fatalf("denied attempt must still count activity: %+v", u)
	}
	logs := auditRows(t, db)
	if len(logs) != 1 || logs[0].Success || logs[0].Error == nil {
		t.Fatalf("expected one failed audit row, got %+v", logs)
	}
	if !strings.HasPrefix(*logs[0].Error, string(KindBanned)+": ") {
		t.Fatalf("audit error should carry the kind prefix: %q", *logs[0].Error)
	}
}

func TestExecute_GroupBanShortCircuits(t *testing.T) {
	d, db := newTestDispatcher(t)
	ctx := context.Background()

	if _, err := repo.AddGroupBan(ctx, db, "g1", "15551", "r"); err != nil {
		t.Fatalf("seed ban: %v", err)
	}

	cc := &CommandContext{ActorPhone: "15551", ActorName: "A", GroupID: "g1", GroupName: "G"}
	_, err := d.Execute(ctx, "ping", cc)
	if KindOf(err) != KindGroupBanned {
		t.Fatalf("expected group-banned kind, got %v", err)
	}

	// The group was still provisioned and its command stat bumped.
	g, err := repo.GetGroup(ctx, db, "g1")
	if err != nil {
		t.Fatalf("group not provisioned: %v", err)
	}
	if g.Statistics.TotalCommands != 1 {
		t.Fatalf("command stat should move before the ban check: %+v", g.Statistics)
	}
}

func TestExecute_GhostModeSuppressesSilentResults(t *testing.T) {
	d, db := newTestDispatcher(t)
	ctx := context.Background()

	// menu is silent-marked for non-owners; ghost mode (on by default) turns
	// that into a bare acknowledgement.
	cc := &CommandContext{ActorPhone: "15551", ActorName: "A", GroupID: "g1", GroupName: "G"}
	res, err := d.Execute(ctx, "menu", cc)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Silent || res.Message != "" {
		t.Fatalf("expected bare silent result, got %+v", res)
	}

	// Owners always get the real menu.
	if _, err := repo.UpdateUserFlags(ctx, db, "15551", repo.UserPatch{IsOwner: boolPtr(true)}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	res, err = d.Execute(ctx, "menu", cc)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Silent || !strings.Contains(res.Message, "ISA PROTOCOL") {
		t.Fatalf("owner should see the menu, got %+v", res)
	}
}

func TestExecute_HandlerPanicBecomesInternal(t *testing.T) {
	d, db := newTestDispatcher(t)
	ctx := context.Background()

	d.Register("boom", func(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
		panic("kaboom")
	})

	_, err := d.Execute(ctx, "boom", &CommandContext{ActorPhone: "15551", ActorName: "A"})
	if err == nil || KindOf(err) != KindInternal {
		t.Fatalf("expected internal error from panic, got %v", err)
	}
	if !strings.Contains(err.Error(), "kaboom") {
		t.Fatalf("panic value should be preserved: %v", err)
	}

	logs := auditRows(t, db)
	if len(logs) != 1 || logs[0].Success {
		t.Fatalf("panic must still produce a failed audit row: %+v", logs)
	}
}

func TestExecute_AuditFailureDoesNotMaskHandlerError(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	want := NewCommandError(KindValidation, "bad input")
	d.Register("fussy", func(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
		return nil, want
	})

	_, err := d.Execute(ctx, "fussy", &CommandContext{ActorPhone: "15551", ActorName: "A"})
	var ce *CommandError
	if !errors.As(err, &ce) || ce != want {
		t.Fatalf("handler error must pass through unchanged, got %v", err)
	}
}

func TestTagAll_PermissionGateAndChunking(t *testing.T) {
	d, db := newTestDispatcher(t)
	ctx := context.Background()

	participants := make([]string, 13)
	for i := range participants {
		participants[i] = fmt.Sprintf("300%02d", i)
	}
	cc := &CommandContext{
		ActorPhone:   "15551",
		ActorName:    "A",
		GroupID:      "g1",
		GroupName:    "G",
		Participants: participants,
	}

	// Plain member: denied.
	_, err := d.Execute(ctx, "tagall", cc)
	if KindOf(err) != KindPermission {
		t.Fatalf("expected permission denial, got %v", err)
	}

	// Promote and retry: all participants mentioned, batches paced.
	if _, err := repo.UpdateUserFlags(ctx, db, "15551", repo.UserPatch{IsAdmin: boolPtr(true)}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	start := time.Now()
	res, err := d.Execute(ctx, "tagall", cc)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	elapsed := time.Since(start)

	if len(res.Mentions) != 13 || !res.Chunked {
		t.Fatalf("expected 13 mentions in chunked result, got %+v", res)
	}
	if res.Message != "Attention everyone!" {
		t.Fatalf("default message expected, got %q", res.Message)
	}
	// 13 participants at batch size 5 means 3 batches and 2 pauses.
	if elapsed < 2*d.TagBatchPause {
		t.Fatalf("expected at least two pauses (%v), finished in %v", 2*d.TagBatchPause, elapsed)
	}
}

func TestTagAll_CancellationAborts(t *testing.T) {
	d, db := newTestDispatcher(t)
	d.TagBatchPause = 50 * time.Millisecond

	if _, err := repo.GetOrCreateUser(context.Background(), db, "15551", "A"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.UpdateUserFlags(context.Background(), db, "15551", repo.UserPatch{IsAdmin: boolPtr(true)}); err != nil {
		t.Fatalf("promote: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	participants := make([]string, 20)
	for i := range participants {
		participants[i] = fmt.Sprintf("300%02d", i)
	}
	_, err := d.Execute(ctx, "tagall", &CommandContext{
		ActorPhone:   "15551",
		ActorName:    "A",
		GroupID:      "g1",
		GroupName:    "G",
		Participants: participants,
	})
	if err == nil {
		t.Fatalf("expected cancellation to abort the operation")
	}
}

func TestWarnCommand_EndToEnd(t *testing.T) {
	d, db := newTestDispatcher(t)
	ctx := context.Background()

	if _, err := repo.GetOrCreateUser(ctx, db, "admin", "Admin"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if _, err := repo.UpdateUserFlags(ctx, db, "admin", repo.UserPatch{IsAdmin: boolPtr(true)}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if _, err := repo.GetOrCreateUser(ctx, db, "target", "T"); err != nil {
		t.Fatalf("seed target: %v", err)
	}

	cc := &CommandContext{
		ActorPhone: "admin", ActorName: "Admin",
		GroupID: "g1", GroupName: "G",
	}

	// Missing mention is a validation failure.
	if _, err := d.Execute(ctx, "warn", cc); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error without a mention, got %v", err)
	}

	cc.MentionedUsers = []string{"target"}
	cc.Args = []string{"@target", "flooding", "the", "chat"}
	res, err := d.Execute(ctx, "warn", cc)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.TotalWarnings != 1 || res.TargetPhone != "target" || res.ShouldKick {
		t.Fatalf("unexpected warn result: %+v", res)
	}
	if !strings.Contains(res.Message, "Warning issued to @target") {
		t.Fatalf("unexpected message: %q", res.Message)
	}
}

func TestActivateCommand_RequiresCode(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	cc := &CommandContext{ActorPhone: "15551", ActorName: "A"}
	if _, err := d.Execute(ctx, "activate", cc); KindOf(err) != KindValidation {
		t.Fatalf("expected usage error, got %v", err)
	}

	cc.Args = []string{"GBX-BAD-CODE"}
	if _, err := d.Execute(ctx, "activate", cc); KindOf(err) != KindLicenseInvalid {
		t.Fatalf("expected license-invalid, got %v", err)
	}
}

func TestGhostCommand_OwnerToggle(t *testing.T) {
	d, db := newTestDispatcher(t)
	ctx := context.Background()

	cc := &CommandContext{
		ActorPhone: "owner", ActorName: "O",
		GroupID: "g1", GroupName: "G",
		Args: []string{"off"},
	}

	// Non-owner is denied (and ghost mode hides nothing here because the
	// denial is an error, not a silent result).
	if _, err := d.Execute(ctx, "ghost", cc); KindOf(err) != KindPermission {
		t.Fatalf("expected permission denial, got %v", err)
	}

	if _, err := repo.UpdateUserFlags(ctx, db, "owner", repo.UserPatch{IsOwner: boolPtr(true)}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	res, err := d.Execute(ctx, "ghost", cc)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(res.Message, "disabled") {
		t.Fatalf("unexpected reply: %q", res.Message)
	}

	g, _ := repo.GetGroup(ctx, db, "g1")
	if g.Settings.GhostMode {
		t.Fatalf("ghost mode should be off: %+v", g.Settings)
	}
}

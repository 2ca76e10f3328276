package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-groupbot-backend/internal/repo"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("services_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestCheckAntiTag_BoundaryAtMaximum(t *testing.T) {
	db := newServiceDB(t)
	svc := NewModerationService(db)
	ctx := context.Background()

	if _, err := svc.UpsertGroup(ctx, "g1", "G", nil); err != nil {
		t.Fatalf("seed group: %v", err)
	}
	patch := SettingsPatch{AntiTag: &AntiTagPatch{Enabled: boolPtr(true), MaxMentions: intPtr(2)}}
	if _, err := svc.UpdateSettings(ctx, "g1", patch); err != nil {
		t.Fatalf("enable anti-tag: %v", err)
	}

	// Exactly at the maximum is allowed.
	report, err := svc.CheckAntiTag(ctx, "g1", "hi @1 and @2")
	if err != nil {
		t.Fatalf("CheckAntiTag: %v", err)
	}
	if report.Violated {
		t.Fatalf("count equal to maximum must not violate: %+v", report)
	}

	// One over the maximum violates and echoes the configured action.
	report, err = svc.CheckAntiTag(ctx, "g1", "@1 @2 @3")
	if err != nil {
		t.Fatalf("CheckAntiTag: %v", err)
	}
	if !report.Violated || report.Action != "warn" || report.MentionCount != 3 {
		t.Fatalf("unexpected violation report: %+v", report)
	}
}

func TestCheckAntiTag_DisabledAndUnknownGroup(t *testing.T) {
	db := newServiceDB(t)
	svc := NewModerationService(db)
	ctx := context.Background()

	// Unknown group: no violation, no error.
	report, err := svc.CheckAntiTag(ctx, "ghost", "@1 @2 @3 @4 @5 @6")
	if err != nil || report.Violated {
		t.Fatalf("unknown group should report nothing: %+v err=%v", report, err)
	}

	// Known group with anti-tag off (the default).
	if _, err := svc.UpsertGroup(ctx, "g1", "G", nil); err != nil {
		t.Fatalf("seed group: %v", err)
	}
	report, err = svc.CheckAntiTag(ctx, "g1", "@1 @2 @3 @4 @5 @6")
	if err != nil || report.Violated {
		t.Fatalf("disabled anti-tag should report nothing: %+v err=%v", report, err)
	}
}

func TestCheckAutoDelete_IndependentHeuristics(t *testing.T) {
	db := newServiceDB(t)
	svc := NewModerationService(db)
	ctx := context.Background()

	if _, err := svc.UpsertGroup(ctx, "g1", "G", nil); err != nil {
		t.Fatalf("seed group: %v", err)
	}
	patch := SettingsPatch{AutoDelete: &AutoDeletePatch{
		Enabled:     boolPtr(true),
		DeleteLinks: boolPtr(true),
		DeleteSpam:  boolPtr(true),
	}}
	if _, err := svc.UpdateSettings(ctx, "g1", patch); err != nil {
		t.Fatalf("enable auto-delete: %v", err)
	}

	report, err := svc.CheckAutoDelete(ctx, "g1", "buy now at https://spam.example")
	if err != nil {
		t.Fatalf("CheckAutoDelete: %v", err)
	}
	if !report.ShouldDelete || len(report.Reasons) != 2 {
		t.Fatalf("expected both reasons, got %+v", report)
	}

	report, err = svc.CheckAutoDelete(ctx, "g1", "perfectly fine message")
	if err != nil || report.ShouldDelete {
		t.Fatalf("clean message flagged: %+v err=%v", report, err)
	}

	// Only the spam toggle off: links still trigger.
	patch = SettingsPatch{AutoDelete: &AutoDeletePatch{DeleteSpam: boolPtr(false)}}
	if _, err := svc.UpdateSettings(ctx, "g1", patch); err != nil {
		t.Fatalf("patch: %v", err)
	}
	report, _ = svc.CheckAutoDelete(ctx, "g1", "see https://ok.example")
	if !report.ShouldDelete || len(report.Reasons) != 1 || report.Reasons[0] != "contains links" {
		t.Fatalf("link heuristic alone should fire: %+v", report)
	}
}

func TestAddWarning_ThresholdAndStickiness(t *testing.T) {
	db := newServiceDB(t)
	svc := NewModerationService(db)
	ctx := context.Background()

	if _, err := svc.AddWarning(ctx, "g1", "ghost", "r"); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if _, err := repo.GetOrCreateUser(ctx, db, "15551", "T"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := svc.UpsertGroup(ctx, "g1", "G", nil); err != nil {
		t.Fatalf("seed group: %v", err)
	}
	patch := SettingsPatch{AutoKick: &AutoKickPatch{Enabled: boolPtr(true), WarningThreshold: intPtr(3)}}
	if _, err := svc.UpdateSettings(ctx, "g1", patch); err != nil {
		t.Fatalf("enable auto-kick: %v", err)
	}

	for i := 1; i <= 2; i++ {
		report, err := svc.AddWarning(ctx, "g1", "15551", "spam")
		if err != nil {
			t.Fatalf("AddWarning %d: %v", i, err)
		}
		if report.TotalWarnings != i || report.ShouldKick {
			t.Fatalf("warning %d: unexpected report %+v", i, report)
		}
	}

	report, err := svc.AddWarning(ctx, "g1", "15551", "spam")
	if err != nil {
		t.Fatalf("AddWarning: %v", err)
	}
	if report.TotalWarnings != 3 || !report.ShouldKick {
		t.Fatalf("threshold reached but no kick: %+v", report)
	}

	// Past the threshold the kick flag stays on; counters never reset here.
	report, _ = svc.AddWarning(ctx, "g1", "15551", "spam")
	if report.TotalWarnings != 4 || !report.ShouldKick {
		t.Fatalf("kick flag should stay set past threshold: %+v", report)
	}

	// Group warning statistic moved with each warning.
	g, err := svc.Group(ctx, "g1")
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if g.Statistics.TotalWarnings != 4 {
		t.Fatalf("expected 4 group warnings, got %d", g.Statistics.TotalWarnings)
	}
}

func TestBanAndUnbanUser(t *testing.T) {
	db := newServiceDB(t)
	svc := NewModerationService(db)
	ctx := context.Background()

	if err := svc.BanUser(ctx, "ghost", "15551", "r"); err != ErrGroupNotFound {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}

	if _, err := repo.GetOrCreateUser(ctx, db, "15551", "T"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := svc.UpsertGroup(ctx, "g1", "G", nil); err != nil {
		t.Fatalf("seed group: %v", err)
	}

	if err := svc.BanUser(ctx, "g1", "15551", "trolling"); err != nil {
		t.Fatalf("BanUser: %v", err)
	}

	banned, err := svc.IsGroupBanned(ctx, "g1", "15551")
	if err != nil || !banned {
		t.Fatalf("IsGroupBanned = %v, %v", banned, err)
	}
	u, err := repo.GetUserByPhone(ctx, db, "15551")
	if err != nil || !u.IsBanned || u.BanReason == nil || *u.BanReason != "trolling" {
		t.Fatalf("global ban flag not raised: %+v err=%v", u, err)
	}

	// Re-ban is harmless and does not double-count kicks.
	if err := svc.BanUser(ctx, "g1", "15551", "again"); err != nil {
		t.Fatalf("re-ban: %v", err)
	}
	g, _ := svc.Group(ctx, "g1")
	if g.Statistics.TotalKicks != 1 {
		t.Fatalf("expected 1 kick counted, got %d", g.Statistics.TotalKicks)
	}

	if err := svc.UnbanUser(ctx, "g1", "15551"); err != nil {
		t.Fatalf("UnbanUser: %v", err)
	}
	banned, _ = svc.IsGroupBanned(ctx, "g1", "15551")
	if banned {
		t.Fatalf("user should be off the ban list")
	}
	u, _ = repo.GetUserByPhone(ctx, db, "15551")
	if u.IsBanned || u.BanReason != nil {
		t.Fatalf("global ban flag not cleared: %+v", u)
	}
}

func TestUpdateSettings_MergesLeafByLeaf(t *testing.T) {
	db := newServiceDB(t)
	svc := NewModerationService(db)
	ctx := context.Background()

	if _, err := svc.UpsertGroup(ctx, "g1", "G", nil); err != nil {
		t.Fatalf("seed group: %v", err)
	}

	// Raising the mention limit must not touch the enabled flag or action.
	g, err := svc.UpdateSettings(ctx, "g1", SettingsPatch{
		AntiTag: &AntiTagPatch{MaxMentions: intPtr(9)},
	})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if g.Settings.AntiTag.MaxMentions != 9 || g.Settings.AntiTag.Enabled || g.Settings.AntiTag.Action != "warn" {
		t.Fatalf("merge clobbered sibling leaves: %+v", g.Settings.AntiTag)
	}
	if !g.Settings.GhostMode {
		t.Fatalf("unrelated sections must stay untouched")
	}

	// Persisted, not just returned.
	g, err = svc.Group(ctx, "g1")
	if err != nil || g.Settings.AntiTag.MaxMentions != 9 {
		t.Fatalf("settings not persisted: %+v err=%v", g.Settings.AntiTag, err)
	}

	// Validation failures leave everything alone.
	if _, err := svc.UpdateSettings(ctx, "g1", SettingsPatch{
		AntiTag: &AntiTagPatch{Action: strPtr("explode")},
	}); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateSettings(ctx, "g1", SettingsPatch{
		AutoKick: &AutoKickPatch{WarningThreshold: intPtr(0)},
	}); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error for zero threshold, got %v", err)
	}

	if _, err := svc.UpdateSettings(ctx, "ghost", SettingsPatch{}); err != ErrGroupNotFound {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestStatistics_Snapshot(t *testing.T) {
	db := newServiceDB(t)
	svc := NewModerationService(db)
	ctx := context.Background()

	if _, err := svc.UpsertGroup(ctx, "g1", "G", []string{"111", "222"}); err != nil {
		t.Fatalf("seed group: %v", err)
	}
	if _, err := repo.GetOrCreateUser(ctx, db, "15551", "T"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := svc.BanUser(ctx, "g1", "15551", "r"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if err := svc.IncrementMessageCount(ctx, "g1"); err != nil {
		t.Fatalf("IncrementMessageCount: %v", err)
	}

	stats, err := svc.Statistics(ctx, "g1")
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalMessages != 1 || stats.TotalKicks != 1 {
		t.Fatalf("unexpected counters: %+v", stats.GroupStatistics)
	}
	if stats.TotalBanned != 1 || stats.TotalAdmins != 2 {
		t.Fatalf("unexpected derived totals: %+v", stats)
	}
}

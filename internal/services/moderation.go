// Package services – ModerationService
//
// Per-group anti-abuse heuristics and the warning/ban state machine.
// Detection and enforcement are deliberately separated: the checks report
// violations and the configured action, but removing content or members is
// the transport layer's job. Writes to counters go through store-level
// atomic increments so interleaved dispatches never lose updates.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-groupbot-backend/internal/domain"
	"github.com/tbourn/go-groupbot-backend/internal/repo"
	"github.com/tbourn/go-groupbot-backend/internal/utils"
)

// AntiTagReport is the outcome of an anti-tag check. Action echoes the
// group's configured response and is only meaningful when Violated is set.
type AntiTagReport struct {
	Violated     bool   `json:"violated"`
	Action       string `json:"action,omitempty"`
	MentionCount int    `json:"mention_count,omitempty"`
}

// AutoDeleteReport is the outcome of the auto-delete heuristics. Reasons
// accumulate; a message can trip both the link and the spam detectors.
type AutoDeleteReport struct {
	ShouldDelete bool     `json:"should_delete"`
	Reasons      []string `json:"reasons,omitempty"`
}

// WarningReport is the outcome of issuing a warning.
type WarningReport struct {
	TotalWarnings int  `json:"total_warnings"`
	ShouldKick    bool `json:"should_kick"`
}

// StatisticsReport is the admin-facing statistics snapshot for one group.
type StatisticsReport struct {
	domain.GroupStatistics
	TotalBanned int64                `json:"total_banned"`
	TotalAdmins int                  `json:"total_admins"`
	Settings    domain.GroupSettings `json:"settings"`
}

// ModerationService owns group settings, ban lists, and warning counters.
type ModerationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewModerationService constructs a ModerationService.
func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{DB: db}
}

// UpsertGroup registers a group on first sight or refreshes its name and
// admin list.
func (s *ModerationService) UpsertGroup(ctx context.Context, groupID, name string, admins []string) (*domain.Group, error) {
	return repo.UpsertGroup(ctx, s.DB, groupID, name, admins)
}

// Group fetches a group, mapping the store's not-found to the service error.
func (s *ModerationService) Group(ctx context.Context, groupID string) (*domain.Group, error) {
	g, err := repo.GetGroup(ctx, s.DB, groupID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrGroupNotFound
	}
	return g, err
}

// CheckAntiTag counts mention tokens in message and reports a violation when
// the count exceeds the group's configured maximum. A count equal to the
// maximum is allowed. Unknown groups and disabled anti-tag both report no
// violation.
func (s *ModerationService) CheckAntiTag(ctx context.Context, groupID, message string) (AntiTagReport, error) {
	g, err := repo.GetGroup(ctx, s.DB, groupID)
	if errors.Is(err, repo.ErrNotFound) {
		return AntiTagReport{}, nil
	}
	if err != nil {
		return AntiTagReport{}, err
	}
	if !g.Settings.AntiTag.Enabled {
		return AntiTagReport{}, nil
	}
	count := utils.CountMentions(message)
	if count > g.Settings.AntiTag.MaxMentions {
		return AntiTagReport{
			Violated:     true,
			Action:       g.Settings.AntiTag.Action,
			MentionCount: count,
		}, nil
	}
	return AntiTagReport{}, nil
}

// CheckAutoDelete evaluates the link and spam heuristics independently,
// honoring the group's per-heuristic toggles.
func (s *ModerationService) CheckAutoDelete(ctx context.Context, groupID, message string) (AutoDeleteReport, error) {
	g, err := repo.GetGroup(ctx, s.DB, groupID)
	if errors.Is(err, repo.ErrNotFound) {
		return AutoDeleteReport{}, nil
	}
	if err != nil {
		return AutoDeleteReport{}, err
	}
	if !g.Settings.AutoDelete.Enabled {
		return AutoDeleteReport{}, nil
	}

	var reasons []string
	if g.Settings.AutoDelete.DeleteLinks && utils.ContainsLinks(message) {
		reasons = append(reasons, "contains links")
	}
	if g.Settings.AutoDelete.DeleteSpam && utils.IsSpam(message) {
		reasons = append(reasons, "spam detected")
	}
	return AutoDeleteReport{ShouldDelete: len(reasons) > 0, Reasons: reasons}, nil
}

// AddWarning increments the target's warning counter atomically, bumps the
// group's warning statistic, and evaluates the auto-kick threshold. Counters
// are never reset here; ResetWarnings is a separate administrative action.
func (s *ModerationService) AddWarning(ctx context.Context, groupID, targetPhone, reason string) (WarningReport, error) {
	now := time.Now().UTC()
	total, err := repo.IncrementWarnings(ctx, s.DB, targetPhone, now)
	if errors.Is(err, repo.ErrNotFound) {
		return WarningReport{}, ErrUserNotFound
	}
	if err != nil {
		return WarningReport{}, err
	}

	g, gerr := repo.GetGroup(ctx, s.DB, groupID)
	if gerr != nil && !errors.Is(gerr, repo.ErrNotFound) {
		return WarningReport{}, gerr
	}
	if g != nil {
		if err := repo.IncrementGroupStat(ctx, s.DB, groupID, "warnings"); err != nil {
			return WarningReport{}, err
		}
	}

	report := WarningReport{TotalWarnings: total}
	if g != nil && g.Settings.AutoKick.Enabled && total >= g.Settings.AutoKick.WarningThreshold {
		report.ShouldKick = true
	}
	return report, nil
}

// ResetWarnings clears the target's warning counter.
func (s *ModerationService) ResetWarnings(ctx context.Context, targetPhone string) error {
	return repo.ResetWarnings(ctx, s.DB, targetPhone)
}

// BanUser adds the target to the group's ban list and raises the global ban
// flag. The two writes are independent; a failure between them leaves a
// recoverable inconsistency that callers tolerate by re-checking both.
func (s *ModerationService) BanUser(ctx context.Context, groupID, targetPhone, reason string) error {
	if _, err := s.Group(ctx, groupID); err != nil {
		return err
	}
	created, err := repo.AddGroupBan(ctx, s.DB, groupID, targetPhone, reason)
	if err != nil {
		return err
	}
	if created {
		if err := repo.IncrementGroupStat(ctx, s.DB, groupID, "kicks"); err != nil {
			return err
		}
	}
	return repo.SetUserBan(ctx, s.DB, targetPhone, true, &reason)
}

// UnbanUser removes the target from the group's ban list and clears the
// global flag.
func (s *ModerationService) UnbanUser(ctx context.Context, groupID, targetPhone string) error {
	if _, err := s.Group(ctx, groupID); err != nil {
		return err
	}
	if err := repo.RemoveGroupBan(ctx, s.DB, groupID, targetPhone); err != nil {
		return err
	}
	return repo.SetUserBan(ctx, s.DB, targetPhone, false, nil)
}

// IsGroupBanned reports whether the target sits on the group's ban list.
func (s *ModerationService) IsGroupBanned(ctx context.Context, groupID, phone string) (bool, error) {
	return repo.IsGroupBanned(ctx, s.DB, groupID, phone)
}

// IncrementMessageCount bumps the group's message statistic. Unknown groups
// are ignored.
func (s *ModerationService) IncrementMessageCount(ctx context.Context, groupID string) error {
	err := repo.IncrementGroupStat(ctx, s.DB, groupID, "messages")
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	return err
}

// Statistics returns the group's counters together with derived totals.
func (s *ModerationService) Statistics(ctx context.Context, groupID string) (*StatisticsReport, error) {
	g, err := s.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	banned, err := repo.ListGroupBans(ctx, s.DB, groupID)
	if err != nil {
		return nil, err
	}
	return &StatisticsReport{
		GroupStatistics: g.Statistics,
		TotalBanned:     int64(len(banned)),
		TotalAdmins:     len(g.Admins),
		Settings:        g.Settings,
	}, nil
}

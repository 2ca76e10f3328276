// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for groups, their
// ban lists, and per-group statistics counters.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-groupbot-backend/internal/domain"
)

// statColumns whitelists the statistic fields that may be incremented.
var statColumns = map[string]string{
	"messages": "stats_total_messages",
	"commands": "stats_total_commands",
	"warnings": "stats_total_warnings",
	"kicks":    "stats_total_kicks",
}

// GetGroup fetches a group by its external identifier.
func GetGroup(ctx context.Context, db *gorm.DB, groupID string) (*domain.Group, error) {
	var g domain.Group
	err := db.WithContext(ctx).Where("group_id = ?", groupID).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// UpsertGroup creates the group on first sight with default settings, or
// refreshes its name, admin list, and last-active timestamp.
func UpsertGroup(ctx context.Context, db *gorm.DB, groupID, name string, admins []string) (*domain.Group, error) {
	now := time.Now().UTC()
	g, err := GetGroup(ctx, db, groupID)
	if errors.Is(err, ErrNotFound) {
		g = &domain.Group{
			ID:         uuid.NewString(),
			GroupID:    groupID,
			Name:       name,
			Admins:     admins,
			Settings:   domain.DefaultGroupSettings(),
			LastActive: now,
		}
		if cerr := db.WithContext(ctx).Create(g).Error; cerr != nil {
			if isUniqueViolation(cerr) {
				return GetGroup(ctx, db, groupID)
			}
			return nil, cerr
		}
		return g, nil
	}
	if err != nil {
		return nil, err
	}
	cols := map[string]any{"last_active": now}
	if name != "" {
		cols["name"] = name
	}
	if admins != nil {
		cols["admins"] = domain.StringList(admins)
	}
	if err := db.WithContext(ctx).Model(g).Where("group_id = ?", groupID).
		UpdateColumns(cols).Error; err != nil {
		return nil, err
	}
	return GetGroup(ctx, db, groupID)
}

// SaveGroupSettings writes the full settings block for a group. Merging of
// partial updates happens in the service layer; by the time settings reach
// the store they are complete.
func SaveGroupSettings(ctx context.Context, db *gorm.DB, groupID string, s domain.GroupSettings) error {
	cols := map[string]any{
		"settings_anti_tag_enabled":            s.AntiTag.Enabled,
		"settings_anti_tag_max_mentions":       s.AntiTag.MaxMentions,
		"settings_anti_tag_action":             s.AntiTag.Action,
		"settings_auto_kick_enabled":           s.AutoKick.Enabled,
		"settings_auto_kick_warning_threshold": s.AutoKick.WarningThreshold,
		"settings_auto_delete_enabled":         s.AutoDelete.Enabled,
		"settings_auto_delete_delete_links":    s.AutoDelete.DeleteLinks,
		"settings_auto_delete_delete_spam":     s.AutoDelete.DeleteSpam,
		"settings_ghost_mode":                  s.GhostMode,
		"settings_welcome_enabled":             s.Welcome.Enabled,
		"settings_welcome_message":             s.Welcome.Message,
	}
	res := db.WithContext(ctx).Model(&domain.Group{}).
		Where("group_id = ?", groupID).
		UpdateColumns(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementGroupStat bumps one statistics counter atomically and refreshes
// last-active. Unknown fields are rejected rather than silently ignored.
func IncrementGroupStat(ctx context.Context, db *gorm.DB, groupID, field string) error {
	col, ok := statColumns[field]
	if !ok {
		return errors.New("unknown group statistic: " + field)
	}
	return db.WithContext(ctx).Model(&domain.Group{}).
		Where("group_id = ?", groupID).
		UpdateColumns(map[string]any{
			col:           gorm.Expr(col + " + 1"),
			"last_active": time.Now().UTC(),
		}).Error
}

// AddGroupBan appends a ban-list entry. The unique (group, phone) index makes
// the insert idempotent: re-banning an already banned member reports
// created=false without error.
func AddGroupBan(ctx context.Context, db *gorm.DB, groupID, phone, reason string) (bool, error) {
	ban := &domain.GroupBan{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		PhoneNumber: phone,
		Reason:      reason,
		BannedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(ban).Error; err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RemoveGroupBan deletes a ban-list entry if present.
func RemoveGroupBan(ctx context.Context, db *gorm.DB, groupID, phone string) error {
	return db.WithContext(ctx).
		Where("group_id = ? AND phone_number = ?", groupID, phone).
		Delete(&domain.GroupBan{}).Error
}

// IsGroupBanned reports whether phone appears on the group's ban list.
func IsGroupBanned(ctx context.Context, db *gorm.DB, groupID, phone string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.GroupBan{}).
		Where("group_id = ? AND phone_number = ?", groupID, phone).
		Count(&n).Error
	return n > 0, err
}

// ListGroupBans returns the group's ban list, newest first.
func ListGroupBans(ctx context.Context, db *gorm.DB, groupID string) ([]domain.GroupBan, error) {
	var out []domain.GroupBan
	err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("banned_at DESC").
		Find(&out).Error
	return out, err
}

// ListGroups returns groups ordered by recent activity.
func ListGroups(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Group, error) {
	var out []domain.Group
	q := db.WithContext(ctx).Model(&domain.Group{}).Order("last_active DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountGroups returns the total number of known groups.
func CountGroups(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Group{}).Count(&total).Error
	return total, err
}

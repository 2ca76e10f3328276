// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the append-only command audit log and
// the aggregation queries consumed by the analytics surface.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-groupbot-backend/internal/domain"
)

// InsertCommandLog appends one audit record. The log is write-once; nothing
// in the core updates or deletes rows.
func InsertCommandLog(ctx context.Context, db *gorm.DB, entry *domain.CommandLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

// CommandLogFilter narrows audit-log listings.
type CommandLogFilter struct {
	Command   string
	UserPhone string
}

func applyLogFilter(q *gorm.DB, f CommandLogFilter) *gorm.DB {
	if f.Command != "" {
		q = q.Where("command = ?", f.Command)
	}
	if f.UserPhone != "" {
		q = q.Where("user_phone = ?", f.UserPhone)
	}
	return q
}

// ListCommandLogs returns a page of audit records, newest first.
func ListCommandLogs(ctx context.Context, db *gorm.DB, f CommandLogFilter, offset, limit int) ([]domain.CommandLog, error) {
	var out []domain.CommandLog
	q := applyLogFilter(db.WithContext(ctx).Model(&domain.CommandLog{}), f).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountCommandLogs returns the number of audit records matching the filter.
func CountCommandLogs(ctx context.Context, db *gorm.DB, f CommandLogFilter) (int64, error) {
	var total int64
	err := applyLogFilter(db.WithContext(ctx).Model(&domain.CommandLog{}), f).
		Count(&total).Error
	return total, err
}

// CommandStat is one row of the top-commands aggregation.
type CommandStat struct {
	Command     string  `json:"command"`
	Count       int64   `json:"count"`
	SuccessRate float64 `json:"success_rate"`
}

// TopCommands aggregates the audit log into the most-used commands with
// their success rate.
func TopCommands(ctx context.Context, db *gorm.DB, limit int) ([]CommandStat, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []CommandStat
	err := db.WithContext(ctx).Raw(`
		SELECT command,
		       COUNT(*) AS count,
		       AVG(CASE WHEN success THEN 1.0 ELSE 0.0 END) AS success_rate
		FROM command_logs
		GROUP BY command
		ORDER BY count DESC
		LIMIT ?`, limit).Scan(&out).Error
	return out, err
}

// UserStat is one row of the top-users aggregation.
type UserStat struct {
	UserPhone    string `json:"user_phone"`
	UserName     string `json:"user_name"`
	CommandCount int64  `json:"command_count"`
}

// TopUsers aggregates the audit log into the highest-volume callers.
func TopUsers(ctx context.Context, db *gorm.DB, limit int) ([]UserStat, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []UserStat
	err := db.WithContext(ctx).Raw(`
		SELECT user_phone,
		       MAX(user_name) AS user_name,
		       COUNT(*) AS command_count
		FROM command_logs
		GROUP BY user_phone
		ORDER BY command_count DESC
		LIMIT ?`, limit).Scan(&out).Error
	return out, err
}

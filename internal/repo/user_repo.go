// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model,
// including the store-level atomic increments required for activity and
// warning counters.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-groupbot-backend/internal/domain"
)

// GetUserByPhone fetches a user by phone number, returning ErrNotFound when
// no row exists.
func GetUserByPhone(ctx context.Context, db *gorm.DB, phone string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("phone_number = ?", phone).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreateUser returns the user for phone, provisioning a default-role row
// on first sight. The display name is only set on creation; later renames go
// through the admin surface.
func GetOrCreateUser(ctx context.Context, db *gorm.DB, phone, name string) (*domain.User, error) {
	u := domain.User{
		ID:          uuid.NewString(),
		PhoneNumber: phone,
		Name:        name,
		Language:    "en",
		LastActive:  time.Now().UTC(),
	}
	err := db.WithContext(ctx).
		Where("phone_number = ?", phone).
		Attrs(u).
		FirstOrCreate(&u).Error
	if err != nil {
		// A concurrent dispatch may have provisioned the row first.
		if isUniqueViolation(err) {
			return GetUserByPhone(ctx, db, phone)
		}
		return nil, err
	}
	return &u, nil
}

// RecordUserActivity bumps the lifetime command counter and last-active
// timestamp with a single atomic UPDATE. It runs unconditionally for every
// dispatch attempt, including ones that are later denied.
func RecordUserActivity(ctx context.Context, db *gorm.DB, phone string, now time.Time) error {
	return db.WithContext(ctx).Model(&domain.User{}).
		Where("phone_number = ?", phone).
		UpdateColumns(map[string]any{
			"command_count": gorm.Expr("command_count + 1"),
			"last_active":   now,
		}).Error
}

// IncrementWarnings atomically adds one warning and stamps it, then reads
// back the new total. A concurrent increment may be observed in the returned
// count; callers only compare it against a threshold, so overshoot is safe.
func IncrementWarnings(ctx context.Context, db *gorm.DB, phone string, now time.Time) (int, error) {
	res := db.WithContext(ctx).Model(&domain.User{}).
		Where("phone_number = ?", phone).
		UpdateColumns(map[string]any{
			"warnings":        gorm.Expr("warnings + 1"),
			"last_warning_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	u, err := GetUserByPhone(ctx, db, phone)
	if err != nil {
		return 0, err
	}
	return u.Warnings, nil
}

// ResetWarnings clears the warning counter; an explicit administrative action.
func ResetWarnings(ctx context.Context, db *gorm.DB, phone string) error {
	return db.WithContext(ctx).Model(&domain.User{}).
		Where("phone_number = ?", phone).
		UpdateColumns(map[string]any{
			"warnings":        0,
			"last_warning_at": nil,
		}).Error
}

// SetUserBan flips the global ban flag and reason.
func SetUserBan(ctx context.Context, db *gorm.DB, phone string, banned bool, reason *string) error {
	return db.WithContext(ctx).Model(&domain.User{}).
		Where("phone_number = ?", phone).
		UpdateColumns(map[string]any{
			"is_banned":  banned,
			"ban_reason": reason,
		}).Error
}

// SetPremium marks the user premium until expiry.
func SetPremium(ctx context.Context, db *gorm.DB, phone string, expiry time.Time) error {
	res := db.WithContext(ctx).Model(&domain.User{}).
		Where("phone_number = ?", phone).
		UpdateColumns(map[string]any{
			"is_premium":     true,
			"premium_expiry": expiry,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearPremium revokes the entitlement entirely.
func ClearPremium(ctx context.Context, db *gorm.DB, phone string) error {
	res := db.WithContext(ctx).Model(&domain.User{}).
		Where("phone_number = ?", phone).
		UpdateColumns(map[string]any{
			"is_premium":     false,
			"premium_expiry": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UserPatch carries optional role/ban updates applied by the admin surface.
// Nil fields are left untouched.
type UserPatch struct {
	Name      *string
	IsOwner   *bool
	IsAdmin   *bool
	IsBanned  *bool
	BanReason *string
}

// UpdateUserFlags applies a partial update of role and ban fields.
func UpdateUserFlags(ctx context.Context, db *gorm.DB, phone string, p UserPatch) (*domain.User, error) {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.IsOwner != nil {
		cols["is_owner"] = *p.IsOwner
	}
	if p.IsAdmin != nil {
		cols["is_admin"] = *p.IsAdmin
	}
	if p.IsBanned != nil {
		cols["is_banned"] = *p.IsBanned
	}
	if p.BanReason != nil {
		cols["ban_reason"] = *p.BanReason
	}
	if len(cols) > 0 {
		res := db.WithContext(ctx).Model(&domain.User{}).
			Where("phone_number = ?", phone).
			UpdateColumns(cols)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return GetUserByPhone(ctx, db, phone)
}

// UserFilter narrows user listings on the admin surface.
type UserFilter struct {
	IsPremium *bool
	IsBanned  *bool
}

func applyUserFilter(q *gorm.DB, f UserFilter) *gorm.DB {
	if f.IsPremium != nil {
		q = q.Where("is_premium = ?", *f.IsPremium)
	}
	if f.IsBanned != nil {
		q = q.Where("is_banned = ?", *f.IsBanned)
	}
	return q
}

// ListUsers returns a page of users ordered by creation time, newest first.
func ListUsers(ctx context.Context, db *gorm.DB, f UserFilter, offset, limit int) ([]domain.User, error) {
	var out []domain.User
	q := applyUserFilter(db.WithContext(ctx).Model(&domain.User{}), f).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountUsers returns the number of users matching the filter.
func CountUsers(ctx context.Context, db *gorm.DB, f UserFilter) (int64, error) {
	var total int64
	err := applyUserFilter(db.WithContext(ctx).Model(&domain.User{}), f).
		Count(&total).Error
	return total, err
}

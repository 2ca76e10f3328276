// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for licenses,
// including the conditional activation update that guarantees a code can be
// redeemed at most once even under concurrent attempts.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-groupbot-backend/internal/domain"
)

// License activation failure modes, classified after the conditional update.
var (
	// ErrLicenseNotFound indicates the code does not exist.
	ErrLicenseNotFound = errors.New("license not found")

	// ErrLicenseActivated indicates the code was already redeemed.
	ErrLicenseActivated = errors.New("license already activated")

	// ErrLicenseExpired indicates the code's redemption deadline has passed.
	ErrLicenseExpired = errors.New("license code expired")
)

// CreateLicense inserts a new, unactivated license row.
func CreateLicense(ctx context.Context, db *gorm.DB, l *domain.License) error {
	return db.WithContext(ctx).Create(l).Error
}

// GetLicenseByCode fetches a license by its code.
func GetLicenseByCode(ctx context.Context, db *gorm.DB, code string) (*domain.License, error) {
	var l domain.License
	err := db.WithContext(ctx).Where("code = ?", code).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLicenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ActivateLicense redeems a code for phone with a single conditional UPDATE
// guarded by "not yet activated" and the redemption deadline. Exactly one of
// two concurrent activations can match the guard; the loser re-reads the row
// to classify its failure.
func ActivateLicense(ctx context.Context, db *gorm.DB, code, phone string, now time.Time) (*domain.License, error) {
	res := db.WithContext(ctx).Model(&domain.License{}).
		Where("code = ? AND is_activated = ? AND expires_at > ?", code, false, now).
		UpdateColumns(map[string]any{
			"is_activated": true,
			"activated_at": now,
			"activated_by": phone,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		l, err := GetLicenseByCode(ctx, db, code)
		if err != nil {
			return nil, err
		}
		if l.IsActivated {
			return nil, ErrLicenseActivated
		}
		return nil, ErrLicenseExpired
	}
	return GetLicenseByCode(ctx, db, code)
}

// LicenseFilter narrows license listings on the admin surface.
type LicenseFilter struct {
	IsActivated *bool
	Type        string
}

func applyLicenseFilter(q *gorm.DB, f LicenseFilter) *gorm.DB {
	if f.IsActivated != nil {
		q = q.Where("is_activated = ?", *f.IsActivated)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	return q
}

// ListLicenses returns a page of licenses matching the filter, newest first.
func ListLicenses(ctx context.Context, db *gorm.DB, f LicenseFilter, offset, limit int) ([]domain.License, error) {
	q := applyLicenseFilter(db.WithContext(ctx).Model(&domain.License{}), f).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	var out []domain.License
	err := q.Find(&out).Error
	return out, err
}

// CountLicenses returns the number of licenses matching the filter.
func CountLicenses(ctx context.Context, db *gorm.DB, f LicenseFilter) (int64, error) {
	var total int64
	err := applyLicenseFilter(db.WithContext(ctx).Model(&domain.License{}), f).
		Count(&total).Error
	return total, err
}

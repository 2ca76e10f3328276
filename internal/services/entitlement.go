// Package services – PremiumService
//
// Lifecycle of paid entitlements: license generation, one-shot activation,
// status reporting, and revocation. Activation is the only concurrency-hot
// path; it leans on the store's conditional update so that exactly one of
// any number of racing activations wins.
package services

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-groupbot-backend/internal/domain"
	"github.com/tbourn/go-groupbot-backend/internal/repo"
)

// licenseCodePrefix brands every generated code.
const licenseCodePrefix = "GBX"

// redemptionWindow is how long an unactivated license remains redeemable.
const redemptionWindow = 365 * 24 * time.Hour

// PremiumStatus is the caller-facing view of a user's entitlement.
type PremiumStatus struct {
	PhoneNumber   string     `json:"phone_number"`
	IsPremium     bool       `json:"is_premium"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	DaysRemaining int        `json:"days_remaining"`
}

// ActivationResult reports a successful license activation.
type ActivationResult struct {
	Code      string    `json:"code"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message"`
}

// PremiumService owns license records and the premium flags on users.
type PremiumService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewPremiumService constructs a PremiumService.
func NewPremiumService(db *gorm.DB) *PremiumService {
	return &PremiumService{DB: db}
}

// newLicenseCode builds a code of the form GBX-XXXXXXXX-TTTTTTT where the
// middle segment is random and the last encodes the creation time. Codes are
// unique by construction; the store's unique index backs that up.
func newLicenseCode(now time.Time) (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate license code: %w", err)
	}
	token := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return fmt.Sprintf("%s-%s-%s", licenseCodePrefix, token, stamp), nil
}

// GenerateLicense creates one unactivated license of the given type. The
// license must be redeemed within the redemption window or it lapses.
func (s *PremiumService) GenerateLicense(ctx context.Context, licenseType, createdBy string, paymentRef *string, amount *float64, currency *string) (*domain.License, error) {
	days, ok := domain.LicenseDurations[licenseType]
	if !ok {
		return nil, NewCommandError(KindValidation, "license type must be trial, monthly, yearly, or lifetime")
	}
	now := time.Now().UTC()
	code, err := newLicenseCode(now)
	if err != nil {
		return nil, err
	}
	lic := &domain.License{
		ID:               uuid.NewString(),
		Code:             code,
		Type:             licenseType,
		DurationDays:     days,
		ExpiresAt:        now.Add(redemptionWindow),
		CreatedBy:        createdBy,
		PaymentReference: paymentRef,
		Amount:           amount,
		Currency:         currency,
	}
	if err := repo.CreateLicense(ctx, s.DB, lic); err != nil {
		return nil, err
	}
	return lic, nil
}

// BulkGenerateLicenses creates count licenses of the same type. Generation
// stops at the first failure; already-created licenses remain valid.
func (s *PremiumService) BulkGenerateLicenses(ctx context.Context, licenseType, createdBy string, count int) ([]domain.License, error) {
	if count < 1 || count > 100 {
		return nil, NewCommandError(KindValidation, "count must be between 1 and 100")
	}
	out := make([]domain.License, 0, count)
	for i := 0; i < count; i++ {
		lic, err := s.GenerateLicense(ctx, licenseType, createdBy, nil, nil, nil)
		if err != nil {
			return out, err
		}
		out = append(out, *lic)
	}
	return out, nil
}

// ActivateLicense redeems a code for the given phone number. The code flips
// to activated at most once; every concurrent or repeated attempt after the
// first fails with a license-invalid error. On success the user's premium
// window extends by the license duration, stacked on top of any remaining
// time rather than replacing it.
func (s *PremiumService) ActivateLicense(ctx context.Context, code, phoneNumber, userName string) (*ActivationResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, NewCommandError(KindValidation, "license code is required")
	}
	now := time.Now().UTC()

	lic, err := repo.ActivateLicense(ctx, s.DB, code, phoneNumber, now)
	switch {
	case errors.Is(err, repo.ErrLicenseNotFound):
		return nil, NewCommandError(KindLicenseInvalid, "invalid license code")
	case errors.Is(err, repo.ErrLicenseActivated):
		return nil, NewCommandError(KindLicenseInvalid, "license code already activated")
	case errors.Is(err, repo.ErrLicenseExpired):
		return nil, NewCommandError(KindLicenseInvalid, "license code has expired")
	case err != nil:
		return nil, err
	}

	user, err := repo.GetOrCreateUser(ctx, s.DB, phoneNumber, userName)
	if err != nil {
		return nil, err
	}

	// Stack onto remaining time: an active subscription extends from its
	// current expiry, a lapsed one restarts from now.
	base := now
	if user.PremiumExpiry != nil && user.PremiumExpiry.After(now) {
		base = *user.PremiumExpiry
	}
	expiry := base.Add(time.Duration(lic.DurationDays) * 24 * time.Hour)
	if err := repo.SetPremium(ctx, s.DB, phoneNumber, expiry); err != nil {
		return nil, err
	}

	return &ActivationResult{
		Code:      lic.Code,
		Type:      lic.Type,
		ExpiresAt: expiry,
		Message:   fmt.Sprintf("Premium activated successfully! Valid for %d days.", lic.DurationDays),
	}, nil
}

// CheckPremiumStatus reports the entitlement state for a phone number.
// Unknown users are simply not premium; that is a valid answer, not an error.
func (s *PremiumService) CheckPremiumStatus(ctx context.Context, phoneNumber string) (*PremiumStatus, error) {
	status := &PremiumStatus{PhoneNumber: phoneNumber}
	user, err := repo.GetUserByPhone(ctx, s.DB, phoneNumber)
	if errors.Is(err, repo.ErrNotFound) {
		return status, nil
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if user.IsPremiumActive() {
		status.IsPremium = true
		status.ExpiresAt = user.PremiumExpiry
		remaining := user.PremiumExpiry.Sub(now)
		status.DaysRemaining = int((remaining + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
	}
	return status, nil
}

// RevokePremium clears the user's entitlement immediately.
func (s *PremiumService) RevokePremium(ctx context.Context, phoneNumber string) error {
	err := repo.ClearPremium(ctx, s.DB, phoneNumber)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// ListLicenses returns a page of licenses matching the filter.
func (s *PremiumService) ListLicenses(ctx context.Context, f repo.LicenseFilter, offset, limit int) ([]domain.License, error) {
	return repo.ListLicenses(ctx, s.DB, f, offset, limit)
}

// Premium HTTP handlers.
//
// This file exposes the entitlement-management surface:
//   - POST /premium/generate   (owner: mint license codes)
//   - POST /premium/activate   (redeem a code for a phone number)
//   - POST /premium/status     (read entitlement state)
//   - POST /premium/revoke     (owner: clear an entitlement)
//   - GET  /premium/licenses   (list issued codes)
//
// All routes sit behind bearer auth; generation and revocation additionally
// require the owner claim (enforced in the router).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-groupbot-backend/internal/domain"
	"github.com/tbourn/go-groupbot-backend/internal/repo"
	"github.com/tbourn/go-groupbot-backend/internal/services"
	"github.com/tbourn/go-groupbot-backend/internal/utils"
)

// GenerateLicenseRequest is the JSON payload for minting license codes.
type GenerateLicenseRequest struct {
	Type      string `json:"type" binding:"required" example:"monthly"`
	Count     int    `json:"count" example:"1"`
	CreatedBy string `json:"created_by" example:"admin-panel"`

	// Optional payment metadata carried for bookkeeping only.
	PaymentReference *string  `json:"payment_reference,omitempty"`
	Amount           *float64 `json:"amount,omitempty"`
	Currency         *string  `json:"currency,omitempty"`
}

// LicenseView is the wire shape of an issued license code.
type LicenseView struct {
	Code         string `json:"code"`
	Type         string `json:"type"`
	DurationDays int    `json:"duration_days"`
	ExpiresAt    string `json:"expires_at"`
}

// GenerateLicense godoc
// @ID          generateLicense
// @Summary     Generate license codes
// @Description Mints one or more unactivated license codes of the given plan type. Codes lapse if not redeemed within their deadline.
// @Tags        Premium
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.GenerateLicenseRequest  true  "Generation request"
//
// @Success     200  {object} map[string]any
// @Failure     400  {object} handlers.ErrorResponse "Invalid license type or count"
// @Failure     403  {object} handlers.ErrorResponse "Owner permission required"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /premium/generate [post]
func (h *Handlers) GenerateLicense(c *gin.Context) {
	var req GenerateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type is required")
		return
	}
	if !domain.ValidLicenseType(req.Type) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid license type")
		return
	}
	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = "system"
	}

	var licenses []domain.License
	if req.Count > 1 {
		out, err := h.premium.BulkGenerateLicenses(c.Request.Context(), req.Type, createdBy, req.Count)
		if err != nil {
			failFromService(c, err)
			return
		}
		licenses = out
	} else {
		lic, err := h.premium.GenerateLicense(c.Request.Context(), req.Type, createdBy,
			req.PaymentReference, req.Amount, req.Currency)
		if err != nil {
			failFromService(c, err)
			return
		}
		licenses = []domain.License{*lic}
	}

	views := make([]LicenseView, 0, len(licenses))
	for _, l := range licenses {
		views = append(views, LicenseView{
			Code:         l.Code,
			Type:         l.Type,
			DurationDays: l.DurationDays,
			ExpiresAt:    l.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	ok(c, http.StatusOK, gin.H{"success": true, "licenses": views})
}

// ActivateLicenseRequest is the JSON payload for redeeming a code.
type ActivateLicenseRequest struct {
	Code        string `json:"code" binding:"required" example:"GBX-A1B2C3D4-KXZ9Q1T"`
	PhoneNumber string `json:"phone_number" binding:"required" example:"15551234567"`
	Name        string `json:"name" example:"Alice"`
}

// ActivateLicense godoc
// @ID          activateLicense
// @Summary     Activate a license code
// @Description Redeems a code for the given phone number. A code activates at most once; repeated or concurrent attempts fail.
// @Tags        Premium
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.ActivateLicenseRequest  true  "Activation request"
//
// @Success     200  {object} map[string]any
// @Failure     400  {object} handlers.ErrorResponse "Invalid, used, or expired code"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /premium/activate [post]
func (h *Handlers) ActivateLicense(c *gin.Context) {
	var req ActivateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "code and phone_number are required")
		return
	}

	res, err := h.premium.ActivateLicense(c.Request.Context(), req.Code, req.PhoneNumber, req.Name)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"success": true,
		"message": res.Message,
		"result":  res,
	})
}

// PremiumStatusRequest is the JSON payload for a status lookup.
type PremiumStatusRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required" example:"15551234567"`
}

// PremiumStatus godoc
// @ID          premiumStatus
// @Summary     Check premium status
// @Description Reports whether the phone number holds an active entitlement and how many days remain. Unknown users are simply not premium.
// @Tags        Premium
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.PremiumStatusRequest  true  "Status request"
//
// @Success     200  {object} map[string]any
// @Failure     400  {object} handlers.ErrorResponse "Missing phone number"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /premium/status [post]
func (h *Handlers) PremiumStatus(c *gin.Context) {
	var req PremiumStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "phone_number is required")
		return
	}

	status, err := h.premium.CheckPremiumStatus(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "status": status})
}

// RevokePremiumRequest is the JSON payload for clearing an entitlement.
type RevokePremiumRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required" example:"15551234567"`
}

// RevokePremium godoc
// @ID          revokePremium
// @Summary     Revoke a premium entitlement
// @Description Clears the user's premium flag and expiry immediately.
// @Tags        Premium
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.RevokePremiumRequest  true  "Revocation request"
//
// @Success     200  {object} map[string]any
// @Failure     400  {object} handlers.ErrorResponse "Missing phone number"
// @Failure     403  {object} handlers.ErrorResponse "Owner permission required"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /premium/revoke [post]
func (h *Handlers) RevokePremium(c *gin.Context) {
	var req RevokePremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "phone_number is required")
		return
	}

	if err := h.premium.RevokePremium(c.Request.Context(), req.PhoneNumber); err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "message": "Premium revoked successfully"})
}

// ListLicenses godoc
// @ID          listLicenses
// @Summary     List issued licenses
// @Description Returns a page of license codes, optionally filtered by activation state and plan type.
// @Tags        Premium
// @Produce     json
// @Security    BearerAuth
//
// @Param       is_activated  query  bool    false "Filter by activation state"
// @Param       type          query  string  false "Filter by plan type" Enums(trial, monthly, yearly, lifetime)
// @Param       page          query  int     false "Page number (1-based)"
// @Param       limit         query  int     false "Page size"
//
// @Success     200  {object} map[string]any
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /premium/licenses [get]
func (h *Handlers) ListLicenses(c *gin.Context) {
	var f repo.LicenseFilter
	if v, present := c.GetQuery("is_activated"); present {
		b := v == "true" || v == "1"
		f.IsActivated = &b
	}
	f.Type = c.Query("type")

	page := utils.AtoiDefault(c.Query("page"), 1)
	limit := utils.AtoiDefault(c.Query("limit"), 50)
	offset, limit := utils.PageBounds(page, limit, 200)

	licenses, err := h.premium.ListLicenses(c.Request.Context(), f, offset, limit)
	if err != nil {
		failFromService(c, err)
		return
	}
	total, err := repo.CountLicenses(c.Request.Context(), h.db, f)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"success":  true,
		"licenses": licenses,
		"pagination": gin.H{
			"total": total,
			"page":  page,
		},
	})
}

// failFromService translates a service error into the envelope, choosing the
// HTTP status from the dispatch error kind.
func failFromService(c *gin.Context, err error) {
	switch err {
	case services.ErrUserNotFound, services.ErrGroupNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return
	}
	kind := services.KindOf(err)
	switch kind {
	case services.KindValidation, services.KindLicenseInvalid:
		fail(c, http.StatusBadRequest, codeForKind(kind), err.Error())
	case services.KindPermission:
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case services.KindNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

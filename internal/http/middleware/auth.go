// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the two authentication schemes the API accepts:
//
//   - APIKeyAuth: a static X-Api-Key header for the bot client routes
//     (command execution and message processing).
//   - JWTAuth: HS256 bearer tokens with role claims for the premium
//     management and admin surfaces, with RequireOwner/RequireAdmin gates.
//
// Both schemes abort with the standard error envelope on failure and record
// the authenticated identity for access logs and rate-limit keying.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// HeaderAPIKey is the request header carrying the bot client's static key.
const HeaderAPIKey = "X-Api-Key"

// ctxKeyClaims is the Gin context key holding the verified token claims.
const ctxKeyClaims = "auth.claims"

// Claims are the JWT claims carried by admin bearer tokens. Subject holds
// the admin's phone number.
type Claims struct {
	Role    string `json:"role"`
	IsOwner bool   `json:"is_owner"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// MintToken issues a signed HS256 token for the given subject and role
// flags, valid for ttl. Used by the admin login flow and by tests.
func MintToken(secret, subject string, isOwner, isAdmin bool, ttl time.Duration) (string, error) {
	role := "user"
	switch {
	case isOwner:
		role = "owner"
	case isAdmin:
		role = "admin"
	}
	claims := Claims{
		Role:    role,
		IsOwner: isOwner,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// parseToken verifies the signature and validity window of a bearer token.
func parseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// abortAuth writes the standard error envelope and stops the chain.
func abortAuth(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       code,
		"message":    msg,
	})
}

// APIKeyAuth checks the X-Api-Key header against the configured key. An
// empty configured key disables the check entirely, which keeps local
// development friction-free.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		got := c.GetHeader(HeaderAPIKey)
		if got == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "API key required")
			return
		}
		if got != apiKey {
			abortAuth(c, http.StatusForbidden, "forbidden", "invalid API key")
			return
		}
		c.Next()
	}
}

// JWTAuth verifies a Bearer token signed with secret and stores its claims
// in the Gin context for the role gates below.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr := ""
		if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenStr = strings.TrimSpace(parts[1])
		}
		if tokenStr == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "access token required")
			return
		}
		claims, err := parseToken(secret, tokenStr)
		if err != nil {
			abortAuth(c, http.StatusForbidden, "forbidden", "invalid or expired token")
			return
		}
		c.Set(ctxKeyClaims, claims)
		SetActor(c, claims.Subject)
		c.Next()
	}
}

// ClaimsFrom returns the verified claims stored by JWTAuth, or nil.
func ClaimsFrom(c *gin.Context) *Claims {
	if v, ok := c.Get(ctxKeyClaims); ok {
		if cl, ok := v.(*Claims); ok {
			return cl
		}
	}
	return nil
}

// RequireOwner gates a route on the owner claim. Must run after JWTAuth.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		cl := ClaimsFrom(c)
		if cl == nil || !cl.IsOwner {
			abortAuth(c, http.StatusForbidden, "forbidden", "owner permission required")
			return
		}
		c.Next()
	}
}

// RequireAdmin gates a route on the admin-or-owner claim. Must run after
// JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		cl := ClaimsFrom(c)
		if cl == nil || (!cl.IsAdmin && !cl.IsOwner) {
			abortAuth(c, http.StatusForbidden, "forbidden", "admin permission required")
			return
		}
		c.Next()
	}
}

// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the membership service.
//
// # Authentication Flow
//
// The auth middleware extracts a bearer token from the Authorization
// header, resolves it through the configured TokenVerifier, and stores
// the resulting Identity in the Gin context for downstream handlers.
//
//	Request
//	   │
//	   ▼
//	Authenticate
//	   │
//	   ├─► Extract token from "Authorization: Bearer <token>"
//	   │
//	   ├─► verifier.Verify(ctx, token)
//	   │
//	   └─► Store Identity in context
//	           │
//	           ▼
//	       Handler (retrieves via GetIdentity)
//
// # Local Behavior
//
// With DevVerifier (the default when no tokens are configured), every
// request is authenticated as the "local" agent with the admin role.
// This keeps a laptop deployment usable without an identity provider.
//
// Production deployments configure StaticVerifier with issued tokens,
// or plug in their own TokenVerifier against a real identity provider.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrUnauthorized is returned by TokenVerifier implementations when a
// token is missing, unknown, or expired.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is the authenticated caller as seen by handlers.
type Identity struct {
	// AgentID is the profile ID the token resolves to. It is the only
	// agent whose progress the caller may read or advance, unless the
	// caller holds the admin role.
	AgentID string `json:"agentID"`

	// Handle is the display handle, informational only.
	Handle string `json:"handle"`

	// Roles grant access to privileged routes ("admin", "quartermaster").
	Roles []string `json:"roles"`
}

// HasRole reports whether the identity carries the given role.
func (id *Identity) HasRole(role string) bool {
	return id != nil && slices.Contains(id.Roles, role)
}

// TokenVerifier resolves a bearer token to an Identity.
//
// Implementations must be safe for concurrent use. Verify returns
// ErrUnauthorized (possibly wrapped) for any token it does not accept;
// other errors are treated as verifier failures and also rejected.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// =============================================================================
// Verifier Implementations
// =============================================================================

// DevVerifier accepts every request, including ones with no token at
// all, as a local admin. For development and single-user deployments
// only.
type DevVerifier struct{}

// Verify always succeeds with the local admin identity.
func (DevVerifier) Verify(_ context.Context, _ string) (*Identity, error) {
	return &Identity{
		AgentID: "local",
		Handle:  "local",
		Roles:   []string{"admin"},
	}, nil
}

// StaticVerifier resolves tokens against a fixed table, typically
// loaded from the service config at startup.
type StaticVerifier struct {
	tokens map[string]Identity
}

// NewStaticVerifier builds a verifier from a token table. The map is
// copied; later mutation of the argument has no effect.
func NewStaticVerifier(tokens map[string]Identity) *StaticVerifier {
	copied := make(map[string]Identity, len(tokens))
	for token, id := range tokens {
		copied[token] = id
	}
	return &StaticVerifier{tokens: copied}
}

// Verify looks the token up in the table.
func (v *StaticVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	id, ok := v.tokens[token]
	if !ok {
		return nil, ErrUnauthorized
	}
	// Copy so handlers cannot mutate the table through the pointer.
	out := id
	out.Roles = slices.Clone(id.Roles)
	return &out, nil
}

// =============================================================================
// Context Helpers
// =============================================================================

// identityKey is the context key for storing the Identity.
const identityKey = "outpost_identity"

// SetIdentity stores the authenticated identity in the Gin context.
// Called by Authenticate after the verifier accepts the token.
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(identityKey, id)
}

// GetIdentity retrieves the authenticated identity from the Gin
// context. Returns nil if the request did not pass through
// Authenticate, or if the stored value has the wrong type.
func GetIdentity(c *gin.Context) *Identity {
	if value, exists := c.Get(identityKey); exists {
		if id, ok := value.(*Identity); ok {
			return id
		}
	}
	return nil
}

// =============================================================================
// Middleware
// =============================================================================

// Authenticate creates a Gin middleware that authenticates requests.
//
// # Description
//
// Extracts the bearer token from the Authorization header, resolves it
// with the provided TokenVerifier, and stores the resulting Identity
// in the context for downstream handlers. Requests the verifier
// rejects are aborted with 401 before any handler runs.
//
// # Examples
//
//	v1 := router.Group("/v1")
//	v1.Use(middleware.Authenticate(verifier))
//
// # Limitations
//
//   - Only supports Bearer token authentication
//   - Does not cache verification results (verifies every request)
//
// # Thread Safety
//
// Thread-safe. The returned middleware can be used concurrently.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)

		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "unauthorized",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication failed",
			})
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}

// RequireRole creates a middleware that rejects authenticated requests
// whose identity lacks the given role. Must run after Authenticate;
// requests with no identity are rejected with 401, requests with an
// identity but without the role get 403.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		if !id.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient privileges",
			})
			return
		}
		c.Next()
	}
}

// =============================================================================
// Helper Functions
// =============================================================================

// extractBearerToken extracts the token from the Authorization header.
// Returns empty string if the header is missing or malformed. The
// "Bearer" prefix is case-insensitive per RFC 7235.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// Package models defines the core data structures used throughout the application.
package models

import (
	"context"
	"slices"
)

// Table names used by the storage services.
const (
	ItemTable = "item"
	UserTable = "user"
)

// Permission gates access to mutating endpoints.
type Permission string

// PermMutate allows creating, updating and deleting records.
const PermMutate Permission = "MUTATE"

// Item is a stored catalog entry.
type Item struct {
	ID   uint64 `json:"id"`
	Name string `json:"name" jsonschema:"description=Display name of the item"`
}

// User is a registered account. Password holds the bcrypt hash, never the
// plaintext; it is stripped before the user leaves the storage layer.
type User struct {
	ID          uint64       `json:"id"`
	Username    string       `json:"username"`
	Password    string       `json:"password,omitempty"`
	Permissions []Permission `json:"permissions"`
}

// HasPermission reports whether the user holds the given permission.
func (u *User) HasPermission(perm Permission) bool {
	return slices.Contains(u.Permissions, perm)
}

// Claims is the authenticated identity attached to a request context by the
// auth middleware.
type Claims struct {
	Username    string       `json:"username"`
	Permissions []Permission `json:"permissions"`
}

// HasPermission reports whether the claims carry the given permission.
func (c *Claims) HasPermission(perm Permission) bool {
	return slices.Contains(c.Permissions, perm)
}

type contextKey string

// ClaimsKey is the context key under which authenticated claims are stored.
const ClaimsKey contextKey = "claims"

// WithClaims returns a context carrying the authenticated claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// ClaimsFromContext extracts the authenticated claims from the context, or
// nil for an unauthenticated request.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

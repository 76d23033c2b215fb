package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"nutriapi/internal/store"
)

// Roles recognized by the authorization checks
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Identity is the authenticated caller attached to the request context
type Identity struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the identity carries the admin role
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

type contextKey int

const identityKey contextKey = iota

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// issueToken signs a JWT for the given user record
func (s *Server) issueToken(user store.Record) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: user.GetAsString("role", RoleCustomer),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	return token.SignedString(s.jwtSecret)
}

// parseToken validates a JWT and extracts the caller identity
func (s *Server) parseToken(raw string) (Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token")
	}
	return Identity{UserID: c.Subject, Role: c.Role}, nil
}

// authenticate is middleware that requires a valid bearer token and stores
// the caller identity in the request context
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		identity, err := s.parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identityFrom returns the authenticated identity from the context
func identityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}

// requireAdmin rejects non-admin callers. Returns false when the response
// has already been written.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !identityFrom(r.Context()).IsAdmin() {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin role required"})
		return false
	}
	return true
}

// canAccessUser allows the owner of a resource or an admin
func canAccessUser(r *http.Request, userID string) bool {
	identity := identityFrom(r.Context())
	return identity.IsAdmin() || identity.UserID == userID
}

package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
)

const RoleAdmin = "admin"

// Session is what an identity provider knows about a signed-in caller.
type Session struct {
	UserID uuid.UUID
	Email  string
}

// SessionResolver turns a bearer token into a session. A nil session with a
// nil error means the token does not belong to anyone.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*Session, error)
}

// RoleStore returns the role granted to a user, or "" when none is.
type RoleStore interface {
	GetRole(ctx context.Context, userID uuid.UUID) (string, error)
}

// Identity is an authenticated caller.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Gateway guards every moderation mutation. It fails closed and never logs.
type Gateway struct {
	sessions SessionResolver
	roles    RoleStore
}

func NewGateway(sessions SessionResolver, roles RoleStore) *Gateway {
	return &Gateway{sessions: sessions, roles: roles}
}

// Authorize returns the caller's identity only if the token resolves to a
// session whose user holds the admin role.
func (g *Gateway) Authorize(ctx context.Context, token string) (*Identity, error) {
	session, err := g.resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	role, err := g.roles.GetRole(ctx, session.UserID)
	if err != nil {
		return nil, apperror.Forbidden("role lookup failed")
	}
	if role != RoleAdmin {
		return nil, apperror.Forbidden("admin role required")
	}

	return &Identity{UserID: session.UserID, Email: session.Email, Role: role}, nil
}

// Authenticate returns the identity of any signed-in caller.
func (g *Gateway) Authenticate(ctx context.Context, token string) (*Identity, error) {
	session, err := g.resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	role, err := g.roles.GetRole(ctx, session.UserID)
	if err != nil {
		return nil, apperror.Forbidden("role lookup failed")
	}

	return &Identity{UserID: session.UserID, Email: session.Email, Role: role}, nil
}

func (g *Gateway) resolve(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.Unauthorized("missing session")
	}

	session, err := g.sessions.ResolveSession(ctx, token)
	if err != nil || session == nil || session.UserID == uuid.Nil {
		return nil, apperror.Unauthorized("invalid session")
	}
	return session, nil
}

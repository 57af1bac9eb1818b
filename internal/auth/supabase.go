package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	supa "github.com/supabase-community/supabase-go"
)

// SupabaseResolver asks the hosted auth service who owns a token.
type SupabaseResolver struct {
	client *supa.Client
}

func NewSupabaseResolver(url, key string) (*SupabaseResolver, error) {
	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize supabase client: %w", err)
	}
	return &SupabaseResolver{client: client}, nil
}

func (r *SupabaseResolver) ResolveSession(ctx context.Context, token string) (*Session, error) {
	user, err := r.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve supabase session: %w", err)
	}
	if user == nil || user.ID == uuid.Nil {
		return nil, nil
	}
	return &Session{UserID: user.ID, Email: user.Email}, nil
}

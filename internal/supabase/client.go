// Package supabase wraps the Supabase services the web front-end relies on:
// Storage for media and Auth for the signed-in user's profile.
package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/supabase-community/supabase-go"
	"vim-audiosync/internal/config"
)

var ErrNoToken = errors.New("missing access token")

// User is the subset of the Supabase Auth user shown on the profile page.
type User struct {
	ID    string
	Email string
}

type AuthClient struct {
	client *supabase.Client
}

func NewAuthClient(cfg *config.Config) (*AuthClient, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &AuthClient{client: client}, nil
}

// GetUser resolves the user that owns accessToken.
func (a *AuthClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrNoToken
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := a.client.Auth.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &User{ID: resp.ID.String(), Email: resp.Email}, nil
}

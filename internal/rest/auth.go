package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
)

const (
	invalidCredentials = "Invalid login credentials."

	// refreshMargin renews tokens this long before they expire.
	refreshMargin = time.Minute
)

// AuthClient signs users in against the hosted auth endpoints.
type AuthClient struct {
	client *Client
	now    func() time.Time
}

// NewAuthClient creates an identity provider sharing c's endpoint and key.
func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{client: c, now: time.Now}
}

type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	User         authUser `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
}

func (a *AuthClient) session(tr tokenResponse) *model.Session {
	s := &model.Session{
		UserID:       tr.User.ID,
		Email:        tr.User.Email,
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
	}
	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0).UTC()
	case tr.ExpiresIn > 0:
		s.ExpiresAt = a.now().Add(time.Duration(tr.ExpiresIn) * time.Second).UTC().Truncate(time.Second)
	}
	return s
}

// SignInWithPassword exchanges credentials for a session.
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	query := url.Values{}
	query.Set("grant_type", "password")

	var tr tokenResponse
	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   authPrefix + "/token",
		query:  query,
		body:   map[string]string{"email": email, "password": password},
	}, &tr)
	if isStatus(err, http.StatusBadRequest) || errors.Is(err, common.ErrUnauthorized) {
		return nil, common.NewUserError(invalidCredentials, common.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("sign in returned no token: %w", common.ErrStoreResponse)
	}
	return a.session(tr), nil
}

// Refresh validates session. Tokens near expiry are renewed with the
// refresh grant; others are checked against the user endpoint.
func (a *AuthClient) Refresh(ctx context.Context, session *model.Session) (*model.Session, error) {
	if session == nil || session.AccessToken == "" {
		return nil, common.ErrNoSession
	}

	if session.RefreshToken != "" && !session.ExpiresAt.IsZero() && session.Expired(a.now().Add(refreshMargin)) {
		return a.refresh(ctx, session.RefreshToken)
	}

	var user authUser
	err := a.client.do(ctx, request{
		method: http.MethodGet,
		path:   authPrefix + "/user",
		bearer: session.AccessToken,
	}, &user)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, fmt.Errorf("session rejected: %w", err)
		}
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	refreshed := *session
	refreshed.UserID = user.ID
	refreshed.Email = user.Email
	return &refreshed, nil
}

func (a *AuthClient) refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	query := url.Values{}
	query.Set("grant_type", "refresh_token")

	var tr tokenResponse
	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   authPrefix + "/token",
		query:  query,
		body:   map[string]string{"refresh_token": refreshToken},
	}, &tr)
	if isStatus(err, http.StatusBadRequest) {
		return nil, fmt.Errorf("refresh token rejected: %w", common.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	return a.session(tr), nil
}

// SignOut revokes the session. An already invalid session is not an error.
func (a *AuthClient) SignOut(ctx context.Context, session *model.Session) error {
	if session == nil || session.AccessToken == "" {
		return nil
	}
	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   authPrefix + "/logout",
		bearer: session.AccessToken,
	}, nil)
	if errors.Is(err, common.ErrUnauthorized) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/session"
	"golang.org/x/oauth2"
)

// AuthResult is the payload of a successful login or registration.
type AuthResult struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// AuthService covers the /auth endpoints.
type AuthService struct {
	client *Client
}

// Login exchanges credentials for a session.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*AuthResult, error) {
	return s.authenticate(ctx, "/auth/login", creds, "Login failed")
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (*AuthResult, error) {
	return s.authenticate(ctx, "/auth/register", reg, "Registration failed")
}

func (s *AuthService) authenticate(ctx context.Context, path string, body any, fallback string) (*AuthResult, error) {
	res, err := send[AuthResult](ctx, s.client, http.MethodPost, path, body, fallback)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		return nil, fail(errors.New("response is missing the token pair"), fallback)
	}
	return &res, nil
}

// Logout ends the session server-side.
func (s *AuthService) Logout(ctx context.Context) error {
	return exec(ctx, s.client, http.MethodPost, "/auth/logout", nil, nil, "Logout failed")
}

// Profile returns the signed-in user.
func (s *AuthService) Profile(ctx context.Context) (*models.User, error) {
	user, err := get[models.User](ctx, s.client, "/auth/profile", nil, "Failed to fetch profile")
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// TokenRefresher calls the refresh endpoint on a client that bypasses the auth transport.
type TokenRefresher struct {
	client *Client
}

// NewTokenRefresher creates a [TokenRefresher]. httpClient must not carry an [AuthTransport].
func NewTokenRefresher(baseURL string, httpClient *http.Client) *TokenRefresher {
	return &TokenRefresher{client: NewClient(baseURL, httpClient, nil)}
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Refresh implements [Refresher].
func (r *TokenRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	body := map[string]string{"refreshToken": refreshToken}
	pair, err := send[tokenPair](ctx, r.client, http.MethodPost, "/auth/refresh-token", body, "Session expired")
	if err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, fail(errors.New("refresh response is missing the access token"), "Session expired")
	}
	// Servers that do not rotate refresh tokens omit it.
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	return session.NewToken(pair.AccessToken, pair.RefreshToken), nil
}

package backend

import (
	"context"
	"net/http"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/patients"
)

// Login implements patients.Authenticator. The caller decides what to do
// with the identity; this layer never mutates the session.
func (c *Client) Login(ctx context.Context, email, password string) (*patients.Identity, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var out struct {
		Session struct {
			AccessToken string `json:"access_token"`
		} `json:"session"`
		User patients.Profile `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/patient/login", body, &out); err != nil {
		return nil, err
	}
	if out.Session.AccessToken == "" {
		return nil, derrors.New(derrors.KindServer, "login response carried no access token")
	}
	return &patients.Identity{Token: out.Session.AccessToken, Profile: out.User}, nil
}

// Signup registers a new patient account.
func (c *Client) Signup(ctx context.Context, email, password, fullName string) error {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name,omitempty"`
	}{Email: email, Password: password, FullName: fullName}

	return c.doJSON(ctx, http.MethodPost, "/api/auth/patient/signup", body, nil)
}

// Profile fetches the authenticated patient's profile.
func (c *Client) Profile(ctx context.Context) (*patients.Profile, error) {
	var out patients.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/patient/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/Domenick1991/coursedesk/internal/domain"
)

type identityWire struct {
	ID               json.RawMessage `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	IsPremium        bool            `json:"is_premium"`
	IsAdmin          bool            `json:"is_admin"`
	PurchasedCourses []string        `json:"purchased_courses"`
}

// toIdentity accepts both numeric and string ids.
func (w identityWire) toIdentity() domain.Identity {
	return domain.Identity{
		ID:                rawID(w.ID),
		Name:              w.Name,
		Email:             w.Email,
		IsPremiumEntitled: w.IsPremium,
		IsAdmin:           w.IsAdmin,
		PurchasedPackages: w.PurchasedCourses,
	}
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

type authResponse struct {
	AccessToken string       `json:"access_token"`
	User        identityWire `json:"user"`
}

func (r authResponse) toResult(op string) (*domain.AuthResult, error) {
	if r.AccessToken == "" {
		return nil, domain.NewBackendRejection(op, http.StatusOK, "missing access token in response")
	}
	return &domain.AuthResult{AccessToken: r.AccessToken, Identity: r.User.toIdentity()}, nil
}

// Me calls GET /api/auth/me with the given bearer token.
func (c *Client) Me(ctx context.Context, token string) (*domain.Identity, error) {
	var out identityWire
	if err := c.do(ctx, "identity refresh", http.MethodGet, "/api/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	id := out.toIdentity()
	return &id, nil
}

// Login calls POST /api/auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	in := map[string]string{"email": email, "password": password}
	var out authResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	return out.toResult("login")
}

// Register calls POST /api/auth/register.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	var out authResponse
	if err := c.do(ctx, "register", http.MethodPost, "/api/auth/register", "", reg, &out); err != nil {
		return nil, err
	}
	return out.toResult("register")
}

package finance_api

import (
	"context"
	"fmt"
	"net/http"
)

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	Token string `json:"token"`
}

type oauthData struct {
	RedirectURL string `json:"redirect_url"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, pay *LoginPayload) (string, error) {
	var data loginData
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", false, pay, &data)
	if err != nil {
		return "", err
	}

	return data.Token, nil
}

func (c *Client) Register(ctx context.Context, pay *RegisterPayload) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/register", false, pay, nil)
}

// OAuthURL resolves the provider redirect URL for browser-based sign in.
func (c *Client) OAuthURL(ctx context.Context, provider string) (string, error) {
	var data oauthData
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/auth/%s/oauth", provider), false, nil, &data)
	if err != nil {
		return "", err
	}

	return data.RedirectURL, nil
}

func (c *Client) SendOTP(ctx context.Context, email string) error {
	pay := map[string]string{"email": email}
	return c.doJSON(ctx, http.MethodPost, "/auth/send/otp", false, pay, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, email string, code string) error {
	pay := map[string]string{
		"email": email,
		"otp":   code,
	}
	return c.doJSON(ctx, http.MethodPost, "/auth/verify/otp", false, pay, nil)
}

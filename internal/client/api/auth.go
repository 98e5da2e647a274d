package api

import (
	"context"
	"net/http"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) authenticate(ctx context.Context, path string, in any) (*TokenPair, error) {
	var pair TokenPair
	if _, err := c.send(ctx, http.MethodPost, path, in, &pair, ""); err != nil {
		return nil, err
	}
	c.SetTokens(&pair)
	return &pair, nil
}

// SignUp creates an account and starts its session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*TokenPair, error) {
	return c.authenticate(ctx, "/v1/auth/signup", credentials{Email: email, Password: password})
}

// SignIn starts a session with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	return c.authenticate(ctx, "/v1/auth/signin", credentials{Email: email, Password: password})
}

// Refresh rotates the current refresh token.
func (c *Client) Refresh(ctx context.Context) (*TokenPair, error) {
	cur := c.Tokens()
	if cur == nil || cur.RefreshToken == "" {
		return nil, ErrNotSignedIn
	}
	return c.authenticate(ctx, "/v1/auth/refresh", map[string]string{"refresh_token": cur.RefreshToken})
}

// SignOut revokes the session on the server. Local tokens are dropped even
// when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/v1/auth/signout", nil, nil)
	c.SetTokens(nil)
	return err
}

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if _, err := c.do(ctx, http.MethodGet, "/v1/auth/user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// RequestRecovery asks the server to mail a recovery token. Unknown addresses
// succeed too.
func (c *Client) RequestRecovery(ctx context.Context, email string) error {
	_, err := c.send(ctx, http.MethodPost, "/v1/auth/recover", map[string]string{"email": email}, nil, "")
	return err
}

// ConfirmRecovery sets a new password with a recovery token and starts a session.
func (c *Client) ConfirmRecovery(ctx context.Context, token, password string) (*TokenPair, error) {
	return c.authenticate(ctx, "/v1/auth/recover/confirm", map[string]string{"token": token, "password": password})
}

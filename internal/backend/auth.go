package backend

import (
	"context"
)

// AuthClient calls the shared-auth endpoints. Login happens once per desk
// session; the returned token is pushed into the Session shared with the
// role-scoped clients.
type AuthClient struct {
	client  *Client
	session *Session
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	Token string `json:"token"`
}

func NewAuthClient(client *Client, session *Session) *AuthClient {
	return &AuthClient{client: client, session: session}
}

// Login authenticates against the given role's login endpoint and stores
// the returned token in the shared session.
func (a *AuthClient) Login(ctx context.Context, role string, creds Credentials) error {
	var res loginResult
	if err := a.client.Post(ctx, "login", role+"/login", creds, &res); err != nil {
		return err
	}
	a.session.Set(res.Token)
	return nil
}

// Logout invalidates the local session. The backend keeps no server-side
// session state for desk terminals.
func (a *AuthClient) Logout() {
	a.session.Invalidate()
}

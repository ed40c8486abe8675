package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginEstablishesSharedSession(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/receptionist/login", r.URL.Path)

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "desk@example.com", creds.Email)

		json.NewEncoder(w).Encode(envelope(map[string]string{"token": token}))
	}))
	defer server.Close()

	session := NewSession("")
	// Login itself carries no token.
	auth := NewAuthClient(newTestClient(t, server.URL, nil), session)

	err := auth.Login(context.Background(), "receptionist", Credentials{
		Email:    "desk@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.True(t, session.Active())

	auth.Logout()
	assert.False(t, session.Active())
}

func TestLoginFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "invalid credentials",
		})
	}))
	defer server.Close()

	session := NewSession("")
	auth := NewAuthClient(newTestClient(t, server.URL, nil), session)

	err := auth.Login(context.Background(), "receptionist", Credentials{})
	require.Error(t, err)
	assert.False(t, session.Active())
}

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSssar/yamdb-final/internal/model"
)

func TestSignupCreatesUser(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "reader42",
		"email":    "reader42@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SignupResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, "reader42", resp.Username)
	assert.Equal(t, "reader42@example.com", resp.Email)

	user, err := a.queries.GetUserByUsername(context.Background(), "reader42")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.False(t, user.LastLoginAt.Valid)
}

func TestSignupValidation(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"missing email", map[string]string{"username": "reader42"}, "email"},
		{"missing username", map[string]string{"email": "x@example.com"}, "username"},
		{"bad email", map[string]string{"username": "reader42", "email": "not-an-email"}, "email"},
		{"reserved username", map[string]string{"username": "me", "email": "me@example.com"}, "username"},
		{"bad username characters", map[string]string{"username": "no spaces", "email": "x@example.com"}, "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, http.MethodPost, "/auth/signup", "", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Contains(t, decodeError(t, rec).Details, tt.field)
		})
	}
}

func TestSignupResendsForSameIdentity(t *testing.T) {
	a := newTestAPI(t)

	body := map[string]string{"username": "reader42", "email": "reader42@example.com"}
	rec := a.do(t, http.MethodPost, "/auth/signup", "", body)
	require.Equal(t, http.StatusOK, rec.Code)

	// Exact same pair again: not a conflict.
	rec = a.do(t, http.MethodPost, "/auth/signup", "", body)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSignupConflicts(t *testing.T) {
	a := newTestAPI(t)
	a.createUser(t, "reader42", model.RoleUser)

	rec := a.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "reader42",
		"email":    "other@example.com",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "username")

	rec = a.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "someoneelse",
		"email":    "reader42@example.com",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "email")
}

func TestTokenExchange(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "reader42",
		"email":    "reader42@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	user, err := a.queries.GetUserByUsername(context.Background(), "reader42")
	require.NoError(t, err)
	code := a.handler.codes.Make(&user)

	rec = a.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username":          "reader42",
		"confirmation_code": code,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp TokenResponse
	decodeData(t, rec, &resp)
	require.NotEmpty(t, resp.Token)

	// The issued token authenticates against a protected endpoint.
	rec = a.do(t, http.MethodGet, "/users/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me model.User
	decodeData(t, rec, &me)
	assert.Equal(t, "reader42", me.Username)
}

func TestTokenExchangeUnknownUsername(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username":          "ghost",
		"confirmation_code": "whatever",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTokenExchangeBadCode(t *testing.T) {
	a := newTestAPI(t)
	a.createUser(t, "reader42", model.RoleUser)

	rec := a.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username":          "reader42",
		"confirmation_code": "1a2b3c-deadbeef",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "confirmation_code")
}

func TestTokenExchangeCodeIsSingleUse(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "reader42",
		"email":    "reader42@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	user, err := a.queries.GetUserByUsername(context.Background(), "reader42")
	require.NoError(t, err)
	code := a.handler.codes.Make(&user)

	body := map[string]string{"username": "reader42", "confirmation_code": code}
	rec = a.do(t, http.MethodPost, "/auth/token", "", body)
	require.Equal(t, http.StatusOK, rec.Code)

	// Exchanging records the login, which invalidates the code.
	rec = a.do(t, http.MethodPost, "/auth/token", "", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

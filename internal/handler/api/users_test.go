package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSssar/yamdb-final/internal/model"
)

func TestUsersEndpointsRequireAdmin(t *testing.T) {
	a := newTestAPI(t)
	_, userToken := a.createUser(t, "plain", model.RoleUser)
	_, modToken := a.createUser(t, "mod", model.RoleModerator)

	rec := a.do(t, http.MethodGet, "/users/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/users/", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Moderators are not admins.
	rec = a.do(t, http.MethodGet, "/users/", modToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminUserCRUD(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)

	rec := a.do(t, http.MethodPost, "/users/", adminToken, map[string]string{
		"username": "newbie",
		"email":    "newbie@example.com",
		"role":     model.RoleModerator,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.User
	decodeData(t, rec, &created)
	assert.Equal(t, model.RoleModerator, created.Role)

	rec = a.do(t, http.MethodGet, "/users/newbie", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPatch, "/users/newbie", adminToken, map[string]string{
		"bio":  "now with a bio",
		"role": model.RoleUser,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated model.User
	decodeData(t, rec, &updated)
	assert.Equal(t, "now with a bio", updated.Bio)
	assert.Equal(t, model.RoleUser, updated.Role)

	rec = a.do(t, http.MethodGet, "/users/", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decodeMeta(t, rec)
	require.NotNil(t, meta)
	assert.Equal(t, int64(2), meta.Total)

	rec = a.do(t, http.MethodDelete, "/users/newbie", adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, "/users/newbie", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminListUsersSearch(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)
	a.createUser(t, "alpha", model.RoleUser)
	a.createUser(t, "beta", model.RoleUser)

	rec := a.do(t, http.MethodGet, "/users/?search=alp", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []model.User
	decodeData(t, rec, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "alpha", users[0].Username)
}

func TestAdminCreateUserRejectsDuplicates(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)
	a.createUser(t, "taken", model.RoleUser)

	rec := a.do(t, http.MethodPost, "/users/", adminToken, map[string]string{
		"username": "taken",
		"email":    "fresh@example.com",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "username")

	rec = a.do(t, http.MethodPost, "/users/", adminToken, map[string]string{
		"username": "fresh",
		"email":    "taken@example.com",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "email")
}

func TestMe(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.createUser(t, "reader42", model.RoleUser)

	rec := a.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me model.User
	decodeData(t, rec, &me)
	assert.Equal(t, "reader42", me.Username)

	rec = a.do(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateMeCannotEscalateRole(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.createUser(t, "reader42", model.RoleUser)

	rec := a.do(t, http.MethodPatch, "/users/me", token, map[string]string{
		"bio":  "hello",
		"role": model.RoleAdmin,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me model.User
	decodeData(t, rec, &me)
	assert.Equal(t, "hello", me.Bio)
	assert.Equal(t, model.RoleUser, me.Role)
}

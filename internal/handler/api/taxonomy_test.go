package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSssar/yamdb-final/internal/model"
)

func TestCategoryCRUD(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)

	rec := a.do(t, http.MethodPost, "/categories/", adminToken, map[string]string{
		"name": "Films",
		"slug": "films",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Category
	decodeData(t, rec, &created)
	assert.Equal(t, "films", created.Slug)

	// Listing is public.
	rec = a.do(t, http.MethodGet, "/categories/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []model.Category
	decodeData(t, rec, &categories)
	require.Len(t, categories, 1)

	rec = a.do(t, http.MethodDelete, "/categories/films", adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodDelete, "/categories/films", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryCreateDerivesSlug(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)

	rec := a.do(t, http.MethodPost, "/categories/", adminToken, map[string]string{
		"name": "Board Games",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Category
	decodeData(t, rec, &created)
	assert.Equal(t, "board-games", created.Slug)
}

func TestCategoryDuplicateSlug(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)

	body := map[string]string{"name": "Films", "slug": "films"}
	rec := a.do(t, http.MethodPost, "/categories/", adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodPost, "/categories/", adminToken, body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "slug")
}

func TestCategoryWriteRequiresAdmin(t *testing.T) {
	a := newTestAPI(t)
	_, userToken := a.createUser(t, "plain", model.RoleUser)

	rec := a.do(t, http.MethodPost, "/categories/", "", map[string]string{"name": "Films"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/categories/", userToken, map[string]string{"name": "Films"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodDelete, "/categories/films", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGenreCRUD(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)

	rec := a.do(t, http.MethodPost, "/genres/", adminToken, map[string]string{
		"name": "Drama",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Genre
	decodeData(t, rec, &created)
	assert.Equal(t, "drama", created.Slug)

	rec = a.do(t, http.MethodGet, "/genres/?search=dra", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var genres []model.Genre
	decodeData(t, rec, &genres)
	require.Len(t, genres, 1)
	assert.Equal(t, "Drama", genres[0].Name)

	rec = a.do(t, http.MethodDelete, "/genres/drama", adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodDelete, "/genres/drama", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/PaulSssar/yamdb-final/internal/store"
	"github.com/PaulSssar/yamdb-final/internal/util"
)

// SlugItemRequest is the request body for creating a category or genre.
// When the slug is absent it is derived from the name.
type SlugItemRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"omitempty,max=50"`
}

// resolveSlug fills in a missing slug from the name and checks the
// result. Writes a 422 and returns false on a malformed slug.
func resolveSlug(w http.ResponseWriter, req *SlugItemRequest) bool {
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Name)
	}
	if !util.IsValidSlug(req.Slug) {
		WriteValidationError(w, map[string]string{
			"slug": "Must contain only lowercase letters, digits and hyphens",
		})
		return false
	}
	return true
}

// ListCategories handles GET /api/v1/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	categories, err := h.queries.ListCategories(ctx, store.ListSlugItemsParams{
		Search: search,
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list categories")
		return
	}

	total, err := h.queries.CountCategories(ctx, search)
	if err != nil {
		WriteInternalError(w, "Failed to count categories")
		return
	}

	WriteSuccess(w, categories, pageMeta(total, page, perPage))
}

// CreateCategory handles POST /api/v1/categories (admin only).
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req SlugItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}
	if !resolveSlug(w, &req) {
		return
	}

	category, err := h.queries.CreateCategory(r.Context(), req.Name, req.Slug)
	if err != nil {
		if store.IsUniqueViolation(err) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		slog.Error("failed to create category", "slug", req.Slug, "error", err)
		WriteInternalError(w, "Failed to create category")
		return
	}

	WriteCreated(w, category)
}

// DeleteCategory handles DELETE /api/v1/categories/{slug} (admin only).
// Titles in the category keep existing without one.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	deleted, err := h.queries.DeleteCategory(r.Context(), slug)
	if err != nil {
		slog.Error("failed to delete category", "slug", slug, "error", err)
		WriteInternalError(w, "Failed to delete category")
		return
	}
	if deleted == 0 {
		WriteNotFound(w, "Category not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListGenres handles GET /api/v1/genres.
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	genres, err := h.queries.ListGenres(ctx, store.ListSlugItemsParams{
		Search: search,
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list genres")
		return
	}

	total, err := h.queries.CountGenres(ctx, search)
	if err != nil {
		WriteInternalError(w, "Failed to count genres")
		return
	}

	WriteSuccess(w, genres, pageMeta(total, page, perPage))
}

// CreateGenre handles POST /api/v1/genres (admin only).
func (h *Handler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req SlugItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}
	if !resolveSlug(w, &req) {
		return
	}

	genre, err := h.queries.CreateGenre(r.Context(), req.Name, req.Slug)
	if err != nil {
		if store.IsUniqueViolation(err) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		slog.Error("failed to create genre", "slug", req.Slug, "error", err)
		WriteInternalError(w, "Failed to create genre")
		return
	}

	WriteCreated(w, genre)
}

// DeleteGenre handles DELETE /api/v1/genres/{slug} (admin only).
// The association rows go away, the titles stay.
func (h *Handler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	deleted, err := h.queries.DeleteGenre(r.Context(), slug)
	if err != nil {
		slog.Error("failed to delete genre", "slug", slug, "error", err)
		WriteInternalError(w, "Failed to delete genre")
		return
	}
	if deleted == 0 {
		WriteNotFound(w, "Genre not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

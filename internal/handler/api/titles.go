package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/PaulSssar/yamdb-final/internal/model"
	"github.com/PaulSssar/yamdb-final/internal/store"
)

// CreateTitleRequest is the request body for POST /titles. Year is a
// pointer so that year zero survives the required check.
type CreateTitleRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        *int64   `json:"year" validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"required,max=50"`
	Genre       []string `json:"genre"`
}

// UpdateTitleRequest is the request body for PATCH /titles/{titleID}.
// Absent fields keep their stored values.
type UpdateTitleRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=256"`
	Year        *int64   `json:"year,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=50"`
	Genre       []string `json:"genre,omitempty"`
}

// requireTitle loads the title named in the URL, writing a 404 when it
// does not exist.
func (h *Handler) requireTitle(w http.ResponseWriter, r *http.Request) (store.TitleRow, bool) {
	id, err := ParseIDParam(r, "titleID")
	if err != nil {
		WriteBadRequest(w, "Invalid title ID", nil)
		return store.TitleRow{}, false
	}

	row, err := h.queries.GetTitle(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Title not found")
		} else {
			WriteInternalError(w, "Failed to retrieve title")
		}
		return store.TitleRow{}, false
	}
	return row, true
}

// resolveCategorySlug maps a category slug to its row ID. Writes a 422
// and returns false for an unknown slug.
func (h *Handler) resolveCategorySlug(ctx context.Context, w http.ResponseWriter, slug string) (sql.NullInt64, bool) {
	category, err := h.queries.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteValidationError(w, map[string]string{"category": "Unknown category slug: " + slug})
		} else {
			WriteInternalError(w, "Failed to resolve category")
		}
		return sql.NullInt64{}, false
	}
	return sql.NullInt64{Int64: category.ID, Valid: true}, true
}

// resolveGenreSlugs maps genre slugs to row IDs. Writes a 422 and
// returns false on the first unknown slug.
func (h *Handler) resolveGenreSlugs(ctx context.Context, w http.ResponseWriter, slugs []string) ([]int64, bool) {
	ids := make([]int64, 0, len(slugs))
	for _, slug := range slugs {
		genre, err := h.queries.GetGenreBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				WriteValidationError(w, map[string]string{"genre": "Unknown genre slug: " + slug})
			} else {
				WriteInternalError(w, "Failed to resolve genre")
			}
			return nil, false
		}
		ids = append(ids, genre.ID)
	}
	return ids, true
}

// renderTitles joins title rows with their category and genres.
func (h *Handler) renderTitles(ctx context.Context, rows []store.TitleRow) ([]model.Title, error) {
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	genreRows, err := h.queries.ListGenresForTitles(ctx, ids)
	if err != nil {
		return nil, err
	}
	genresByTitle := make(map[int64][]model.Genre, len(rows))
	for _, gr := range genreRows {
		genresByTitle[gr.TitleID] = append(genresByTitle[gr.TitleID], gr.Genre)
	}

	categories := make(map[int64]*model.Category)
	titles := make([]model.Title, 0, len(rows))
	for _, row := range rows {
		title := model.Title{
			ID:          row.ID,
			Name:        row.Name,
			Year:        row.Year,
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		}
		if row.Rating.Valid {
			rating := row.Rating.Float64
			title.Rating = &rating
		}
		if row.CategoryID.Valid {
			category, ok := categories[row.CategoryID.Int64]
			if !ok {
				c, err := h.queries.GetCategoryByID(ctx, row.CategoryID.Int64)
				if err != nil {
					return nil, err
				}
				category = &c
				categories[row.CategoryID.Int64] = category
			}
			title.Category = category
		}
		if genres := genresByTitle[row.ID]; genres != nil {
			title.Genres = genres
		} else {
			title.Genres = []model.Genre{}
		}
		titles = append(titles, title)
	}
	return titles, nil
}

func (h *Handler) renderTitle(ctx context.Context, row store.TitleRow) (model.Title, error) {
	titles, err := h.renderTitles(ctx, []store.TitleRow{row})
	if err != nil {
		return model.Title{}, err
	}
	return titles[0], nil
}

// ListTitles handles GET /api/v1/titles. Supports filtering by category
// slug, genre slug, name substring, and exact year.
func (h *Handler) ListTitles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	params := store.ListTitlesParams{
		CategorySlug: query.Get("category"),
		GenreSlug:    query.Get("genre"),
		Name:         strings.TrimSpace(query.Get("name")),
		Limit:        int64(perPage),
		Offset:       int64((page - 1) * perPage),
	}
	if yearStr := query.Get("year"); yearStr != "" {
		year, err := strconv.ParseInt(yearStr, 10, 64)
		if err != nil {
			WriteBadRequest(w, "Invalid year filter", nil)
			return
		}
		params.Year = sql.NullInt64{Int64: year, Valid: true}
	}

	rows, err := h.queries.ListTitles(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to list titles")
		return
	}

	total, err := h.queries.CountTitles(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to count titles")
		return
	}

	titles, err := h.renderTitles(ctx, rows)
	if err != nil {
		slog.Error("failed to render titles", "error", err)
		WriteInternalError(w, "Failed to list titles")
		return
	}

	WriteSuccess(w, titles, pageMeta(total, page, perPage))
}

// CreateTitle handles POST /api/v1/titles (admin only).
func (h *Handler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}
	if err := model.ValidateYear(*req.Year); err != nil {
		WriteValidationError(w, map[string]string{"year": err.Error()})
		return
	}

	categoryID, ok := h.resolveCategorySlug(ctx, w, req.Category)
	if !ok {
		return
	}
	genreIDs, ok := h.resolveGenreSlugs(ctx, w, req.Genre)
	if !ok {
		return
	}

	// Insert the title and its genre links atomically so a failed
	// genre write cannot leave an orphan title behind.
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		WriteInternalError(w, "Failed to create title")
		return
	}
	defer tx.Rollback()

	qtx := h.queries.WithTx(tx)
	row, err := qtx.CreateTitle(ctx, store.CreateTitleParams{
		Name:        req.Name,
		Year:        *req.Year,
		Description: req.Description,
		CategoryID:  categoryID,
	})
	if err != nil {
		slog.Error("failed to create title", "error", err)
		WriteInternalError(w, "Failed to create title")
		return
	}
	if err := qtx.SetTitleGenres(ctx, row.ID, genreIDs); err != nil {
		slog.Error("failed to set title genres", "title_id", row.ID, "error", err)
		WriteInternalError(w, "Failed to create title")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit title", "error", err)
		WriteInternalError(w, "Failed to create title")
		return
	}

	title, err := h.renderTitle(ctx, row)
	if err != nil {
		WriteInternalError(w, "Failed to create title")
		return
	}
	WriteCreated(w, title)
}

// GetTitle handles GET /api/v1/titles/{titleID}.
func (h *Handler) GetTitle(w http.ResponseWriter, r *http.Request) {
	row, ok := h.requireTitle(w, r)
	if !ok {
		return
	}

	title, err := h.renderTitle(r.Context(), row)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve title")
		return
	}
	WriteSuccess(w, title, nil)
}

// UpdateTitle handles PATCH /api/v1/titles/{titleID} (admin only).
func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	row, ok := h.requireTitle(w, r)
	if !ok {
		return
	}

	var req UpdateTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	params := store.UpdateTitleParams{
		ID:          row.ID,
		Name:        row.Name,
		Year:        row.Year,
		Description: row.Description,
		CategoryID:  row.CategoryID,
	}
	if req.Name != nil {
		params.Name = *req.Name
	}
	if req.Year != nil {
		if err := model.ValidateYear(*req.Year); err != nil {
			WriteValidationError(w, map[string]string{"year": err.Error()})
			return
		}
		params.Year = *req.Year
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Category != nil {
		categoryID, ok := h.resolveCategorySlug(ctx, w, *req.Category)
		if !ok {
			return
		}
		params.CategoryID = categoryID
	}

	// Resolve genre slugs before any write so a rejected request
	// leaves the title untouched.
	var genreIDs []int64
	if req.Genre != nil {
		genreIDs, ok = h.resolveGenreSlugs(ctx, w, req.Genre)
		if !ok {
			return
		}
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		WriteInternalError(w, "Failed to update title")
		return
	}
	defer tx.Rollback()

	qtx := h.queries.WithTx(tx)
	if err := qtx.UpdateTitle(ctx, params); err != nil {
		slog.Error("failed to update title", "title_id", row.ID, "error", err)
		WriteInternalError(w, "Failed to update title")
		return
	}
	if req.Genre != nil {
		if err := qtx.SetTitleGenres(ctx, row.ID, genreIDs); err != nil {
			slog.Error("failed to set title genres", "title_id", row.ID, "error", err)
			WriteInternalError(w, "Failed to update title")
			return
		}
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit title update", "title_id", row.ID, "error", err)
		WriteInternalError(w, "Failed to update title")
		return
	}

	updated, err := h.queries.GetTitle(ctx, row.ID)
	if err != nil {
		WriteInternalError(w, "Failed to update title")
		return
	}
	title, err := h.renderTitle(ctx, updated)
	if err != nil {
		WriteInternalError(w, "Failed to update title")
		return
	}
	WriteSuccess(w, title, nil)
}

// DeleteTitle handles DELETE /api/v1/titles/{titleID} (admin only).
// Reviews and their comments cascade.
func (h *Handler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	row, ok := h.requireTitle(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteTitle(r.Context(), row.ID); err != nil {
		slog.Error("failed to delete title", "title_id", row.ID, "error", err)
		WriteInternalError(w, "Failed to delete title")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

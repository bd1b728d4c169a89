package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/PaulSssar/yamdb-final/internal/middleware"
	"github.com/PaulSssar/yamdb-final/internal/model"
	"github.com/PaulSssar/yamdb-final/internal/permission"
	"github.com/PaulSssar/yamdb-final/internal/store"
)

// CreateReviewRequest is the request body for POST /titles/{titleID}/reviews.
// Score is a pointer so the range check, not the required check, reports
// a zero score.
type CreateReviewRequest struct {
	Text  string `json:"text" validate:"required"`
	Score *int64 `json:"score" validate:"required"`
}

// UpdateReviewRequest is the request body for PATCH .../reviews/{reviewID}.
type UpdateReviewRequest struct {
	Text  *string `json:"text,omitempty"`
	Score *int64  `json:"score,omitempty"`
}

// requireReview loads the review named in the URL and checks that it
// belongs to the title in the same URL. Writes a 404 otherwise.
func (h *Handler) requireReview(w http.ResponseWriter, r *http.Request, title store.TitleRow) (model.Review, bool) {
	id, err := ParseIDParam(r, "reviewID")
	if err != nil {
		WriteBadRequest(w, "Invalid review ID", nil)
		return model.Review{}, false
	}

	review, err := h.queries.GetReview(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Review not found")
		} else {
			WriteInternalError(w, "Failed to retrieve review")
		}
		return model.Review{}, false
	}
	if review.TitleID != title.ID {
		WriteNotFound(w, "Review not found")
		return model.Review{}, false
	}
	return review, true
}

// requireReviewAccess checks that the caller may modify or delete the
// review. Writes a 403 and returns false when denied.
func requireReviewAccess(w http.ResponseWriter, r *http.Request, action permission.Action, ownerID int64) bool {
	decision := permission.ReviewContent(middleware.GetUser(r), action, ownerID)
	if !decision.Allowed {
		WriteForbidden(w, decision.Reason)
		return false
	}
	return true
}

// ListReviews handles GET /api/v1/titles/{titleID}/reviews.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	title, ok := h.requireTitle(w, r)
	if !ok {
		return
	}

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	reviews, err := h.queries.ListReviews(ctx, store.ListReviewsParams{
		TitleID: title.ID,
		Limit:   int64(perPage),
		Offset:  int64((page - 1) * perPage),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list reviews")
		return
	}

	total, err := h.queries.CountReviews(ctx, title.ID)
	if err != nil {
		WriteInternalError(w, "Failed to count reviews")
		return
	}

	if reviews == nil {
		reviews = []model.Review{}
	}
	WriteSuccess(w, reviews, pageMeta(total, page, perPage))
}

// CreateReview handles POST /api/v1/titles/{titleID}/reviews.
// One review per author per title.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetUser(r)

	title, ok := h.requireTitle(w, r)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}
	if err := model.ValidateScore(*req.Score); err != nil {
		WriteValidationError(w, map[string]string{"score": err.Error()})
		return
	}

	exists, err := h.queries.ReviewExists(ctx, title.ID, caller.ID)
	if err != nil {
		WriteInternalError(w, "Failed to create review")
		return
	}
	if exists {
		WriteValidationError(w, map[string]string{
			"title": "You have already reviewed this title",
		})
		return
	}

	review, err := h.queries.CreateReview(ctx, store.CreateReviewParams{
		TitleID:  title.ID,
		AuthorID: caller.ID,
		Text:     req.Text,
		Score:    *req.Score,
	})
	if err != nil {
		// Lost the race against a concurrent insert by the same author.
		if store.IsUniqueViolation(err) {
			WriteValidationError(w, map[string]string{
				"title": "You have already reviewed this title",
			})
			return
		}
		slog.Error("failed to create review", "title_id", title.ID, "error", err)
		WriteInternalError(w, "Failed to create review")
		return
	}

	WriteCreated(w, review)
}

// GetReview handles GET /api/v1/titles/{titleID}/reviews/{reviewID}.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	title, ok := h.requireTitle(w, r)
	if !ok {
		return
	}
	review, ok := h.requireReview(w, r, title)
	if !ok {
		return
	}
	WriteSuccess(w, review, nil)
}

// UpdateReview handles PATCH /api/v1/titles/{titleID}/reviews/{reviewID}.
// Only the author, a moderator, or an admin may edit.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	title, ok := h.requireTitle(w, r)
	if !ok {
		return
	}
	review, ok := h.requireReview(w, r, title)
	if !ok {
		return
	}
	if !requireReviewAccess(w, r, permission.ActionUpdate, review.AuthorID) {
		return
	}

	var req UpdateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	text := review.Text
	score := review.Score
	if req.Text != nil {
		if *req.Text == "" {
			WriteValidationError(w, map[string]string{"text": "This field is required"})
			return
		}
		text = *req.Text
	}
	if req.Score != nil {
		if err := model.ValidateScore(*req.Score); err != nil {
			WriteValidationError(w, map[string]string{"score": err.Error()})
			return
		}
		score = *req.Score
	}

	if err := h.queries.UpdateReview(ctx, review.ID, text, score); err != nil {
		slog.Error("failed to update review", "review_id", review.ID, "error", err)
		WriteInternalError(w, "Failed to update review")
		return
	}

	updated, err := h.queries.GetReview(ctx, review.ID)
	if err != nil {
		WriteInternalError(w, "Failed to update review")
		return
	}
	WriteSuccess(w, updated, nil)
}

// DeleteReview handles DELETE /api/v1/titles/{titleID}/reviews/{reviewID}.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	title, ok := h.requireTitle(w, r)
	if !ok {
		return
	}
	review, ok := h.requireReview(w, r, title)
	if !ok {
		return
	}
	if !requireReviewAccess(w, r, permission.ActionDelete, review.AuthorID) {
		return
	}

	if err := h.queries.DeleteReview(r.Context(), review.ID); err != nil {
		slog.Error("failed to delete review", "review_id", review.ID, "error", err)
		WriteInternalError(w, "Failed to delete review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

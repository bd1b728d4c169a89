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

// CommentRequest is the request body for creating or updating a comment.
type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// requireComment loads the comment named in the URL and checks that it
// belongs to the review in the same URL. Writes a 404 otherwise.
func (h *Handler) requireComment(w http.ResponseWriter, r *http.Request, review model.Review) (model.Comment, bool) {
	id, err := ParseIDParam(r, "commentID")
	if err != nil {
		WriteBadRequest(w, "Invalid comment ID", nil)
		return model.Comment{}, false
	}

	comment, err := h.queries.GetComment(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Comment not found")
		} else {
			WriteInternalError(w, "Failed to retrieve comment")
		}
		return model.Comment{}, false
	}
	if comment.ReviewID != review.ID {
		WriteNotFound(w, "Comment not found")
		return model.Comment{}, false
	}
	return comment, true
}

// requireReviewFromURL resolves the title and review path segments.
func (h *Handler) requireReviewFromURL(w http.ResponseWriter, r *http.Request) (model.Review, bool) {
	title, ok := h.requireTitle(w, r)
	if !ok {
		return model.Review{}, false
	}
	return h.requireReview(w, r, title)
}

// ListComments handles GET .../reviews/{reviewID}/comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	review, ok := h.requireReviewFromURL(w, r)
	if !ok {
		return
	}

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	comments, err := h.queries.ListComments(ctx, store.ListCommentsParams{
		ReviewID: review.ID,
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list comments")
		return
	}

	total, err := h.queries.CountComments(ctx, review.ID)
	if err != nil {
		WriteInternalError(w, "Failed to count comments")
		return
	}

	if comments == nil {
		comments = []model.Comment{}
	}
	WriteSuccess(w, comments, pageMeta(total, page, perPage))
}

// CreateComment handles POST .../reviews/{reviewID}/comments.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetUser(r)

	review, ok := h.requireReviewFromURL(w, r)
	if !ok {
		return
	}

	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	comment, err := h.queries.CreateComment(ctx, review.ID, caller.ID, req.Text)
	if err != nil {
		slog.Error("failed to create comment", "review_id", review.ID, "error", err)
		WriteInternalError(w, "Failed to create comment")
		return
	}

	WriteCreated(w, comment)
}

// GetComment handles GET .../comments/{commentID}.
func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	review, ok := h.requireReviewFromURL(w, r)
	if !ok {
		return
	}
	comment, ok := h.requireComment(w, r, review)
	if !ok {
		return
	}
	WriteSuccess(w, comment, nil)
}

// UpdateComment handles PATCH .../comments/{commentID}.
// Only the author, a moderator, or an admin may edit.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	review, ok := h.requireReviewFromURL(w, r)
	if !ok {
		return
	}
	comment, ok := h.requireComment(w, r, review)
	if !ok {
		return
	}
	if !requireReviewAccess(w, r, permission.ActionUpdate, comment.AuthorID) {
		return
	}

	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	if err := h.queries.UpdateComment(ctx, comment.ID, req.Text); err != nil {
		slog.Error("failed to update comment", "comment_id", comment.ID, "error", err)
		WriteInternalError(w, "Failed to update comment")
		return
	}

	updated, err := h.queries.GetComment(ctx, comment.ID)
	if err != nil {
		WriteInternalError(w, "Failed to update comment")
		return
	}
	WriteSuccess(w, updated, nil)
}

// DeleteComment handles DELETE .../comments/{commentID}.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	review, ok := h.requireReviewFromURL(w, r)
	if !ok {
		return
	}
	comment, ok := h.requireComment(w, r, review)
	if !ok {
		return
	}
	if !requireReviewAccess(w, r, permission.ActionDelete, comment.AuthorID) {
		return
	}

	if err := h.queries.DeleteComment(r.Context(), comment.ID); err != nil {
		slog.Error("failed to delete comment", "comment_id", comment.ID, "error", err)
		WriteInternalError(w, "Failed to delete comment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

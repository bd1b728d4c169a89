package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/PaulSssar/yamdb-final/internal/middleware"
	"github.com/PaulSssar/yamdb-final/internal/model"
	"github.com/PaulSssar/yamdb-final/internal/store"
)

// CreateUserRequest is the request body for POST /users.
type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// UpdateUserRequest is the request body for PATCH /users/{username} and
// PATCH /users/me. Absent fields keep their stored values.
type UpdateUserRequest struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,max=150"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Bio       *string `json:"bio,omitempty"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=user moderator admin"`
}

// requireUserByUsername loads the user named in the URL, writing a 404
// when it does not exist.
func (h *Handler) requireUserByUsername(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	username := chi.URLParam(r, "username")
	user, err := h.queries.GetUserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "User not found")
		} else {
			WriteInternalError(w, "Failed to retrieve user")
		}
		return model.User{}, false
	}
	return user, true
}

// ListUsers handles GET /api/v1/users (admin only).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	users, err := h.queries.ListUsers(ctx, store.ListUsersParams{
		Search: search,
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list users")
		return
	}

	total, err := h.queries.CountUsers(ctx, search)
	if err != nil {
		WriteInternalError(w, "Failed to count users")
		return
	}

	WriteSuccess(w, users, pageMeta(total, page, perPage))
}

// CreateUser handles POST /api/v1/users (admin only).
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}
	if err := model.ValidateUsername(req.Username); err != nil {
		WriteValidationError(w, map[string]string{"username": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}

	user, err := h.queries.CreateUser(ctx, store.CreateUserParams{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			WriteValidationError(w, uniqueUserFieldError(err))
			return
		}
		slog.Error("failed to create user", "error", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	WriteCreated(w, user)
}

// GetUserByUsername handles GET /api/v1/users/{username} (admin only).
func (h *Handler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUserByUsername(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, user, nil)
}

// UpdateUserByUsername handles PATCH /api/v1/users/{username} (admin only).
func (h *Handler) UpdateUserByUsername(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUserByUsername(w, r)
	if !ok {
		return
	}
	h.patchUser(w, r, user, true)
}

// DeleteUserByUsername handles DELETE /api/v1/users/{username} (admin only).
func (h *Handler) DeleteUserByUsername(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUserByUsername(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteUser(r.Context(), user.ID); err != nil {
		slog.Error("failed to delete user", "username", user.Username, "error", err)
		WriteInternalError(w, "Failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, middleware.GetUser(r), nil)
}

// UpdateMe handles PATCH /api/v1/users/me. The caller cannot change
// their own role through this endpoint.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	h.patchUser(w, r, *middleware.GetUser(r), false)
}

// patchUser applies an UpdateUserRequest on top of the stored row.
// roleMutable controls whether a supplied role field takes effect.
func (h *Handler) patchUser(w http.ResponseWriter, r *http.Request, user model.User, roleMutable bool) {
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	params := store.UpdateUserParams{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Bio:       user.Bio,
		Role:      user.Role,
	}
	if req.Username != nil {
		if err := model.ValidateUsername(*req.Username); err != nil {
			WriteValidationError(w, map[string]string{"username": err.Error()})
			return
		}
		params.Username = *req.Username
	}
	if req.Email != nil {
		params.Email = *req.Email
	}
	if req.FirstName != nil {
		params.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		params.LastName = *req.LastName
	}
	if req.Bio != nil {
		params.Bio = *req.Bio
	}
	if req.Role != nil && roleMutable {
		params.Role = *req.Role
	}

	updated, err := h.queries.UpdateUser(r.Context(), params)
	if err != nil {
		if store.IsUniqueViolation(err) {
			WriteValidationError(w, uniqueUserFieldError(err))
			return
		}
		slog.Error("failed to update user", "username", user.Username, "error", err)
		WriteInternalError(w, "Failed to update user")
		return
	}

	WriteSuccess(w, updated, nil)
}

// uniqueUserFieldError maps a users table unique violation to the field
// that caused it.
func uniqueUserFieldError(err error) map[string]string {
	if strings.Contains(err.Error(), "users.email") {
		return map[string]string{"email": "Email is already registered"}
	}
	return map[string]string{"username": "Username is already taken"}
}

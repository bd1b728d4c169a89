package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PaulSssar/yamdb-final/internal/model"
	"github.com/PaulSssar/yamdb-final/internal/store"
)

// SignupRequest is the request body for POST /auth/signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

// SignupResponse echoes the registered identity back to the caller.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest is the request body for POST /auth/token.
type TokenRequest struct {
	Username         string `json:"username" validate:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// TokenResponse carries the issued access token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Signup handles POST /api/v1/auth/signup.
//
// A repeated signup with the exact same username and email pair resends
// the confirmation code for the existing account. Any partial match is a
// uniqueness conflict and is reported as a validation failure.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SignupRequest
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

	user, err := h.queries.GetUserByUsername(ctx, req.Username)
	switch {
	case err == nil:
		if user.Email != req.Email {
			WriteValidationError(w, map[string]string{"username": "Username is already taken"})
			return
		}
		// Same identity pair: resend the code for the existing account.
	case errors.Is(err, sql.ErrNoRows):
		if _, err := h.queries.GetUserByEmail(ctx, req.Email); err == nil {
			WriteValidationError(w, map[string]string{"email": "Email is already registered"})
			return
		} else if !errors.Is(err, sql.ErrNoRows) {
			WriteInternalError(w, "Failed to register user")
			return
		}

		user, err = h.queries.CreateUser(ctx, store.CreateUserParams{
			Username: req.Username,
			Email:    req.Email,
			Role:     model.RoleUser,
		})
		if err != nil {
			if store.IsUniqueViolation(err) {
				WriteValidationError(w, map[string]string{"username": "Username is already taken"})
				return
			}
			slog.Error("failed to create user", "error", err)
			WriteInternalError(w, "Failed to register user")
			return
		}
	default:
		WriteInternalError(w, "Failed to register user")
		return
	}

	code := h.codes.Make(&user)
	if err := h.sendConfirmationCode(r, &user, code); err != nil {
		// Delivery is best effort. The account stays registered and the
		// code can be requested again with the same signup call.
		slog.Error("failed to send confirmation code",
			"username", user.Username, "error", err)
	}

	WriteSuccess(w, SignupResponse{Username: user.Username, Email: user.Email}, nil)
}

func (h *Handler) sendConfirmationCode(r *http.Request, user *model.User, code string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour confirmation code is:\n\n%s\n\nExchange it for an access token at /api/v1/auth/token.\n",
		user.Username, code)
	return h.mailer.Send(r.Context(), "Your confirmation code", body, []string{user.Email})
}

// TokenExchange handles POST /api/v1/auth/token.
//
// An unknown username is a 404, a bad code for a known account a 422.
func (h *Handler) TokenExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	user, err := h.queries.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "User not found")
		} else {
			WriteInternalError(w, "Failed to issue token")
		}
		return
	}

	if !h.codes.Check(&user, req.ConfirmationCode) {
		WriteValidationError(w, map[string]string{
			"confirmation_code": "Invalid or expired confirmation code",
		})
		return
	}

	// Recording the login invalidates the code that was just used.
	if err := h.queries.TouchLastLogin(ctx, user.ID); err != nil {
		slog.Error("failed to record login", "username", user.Username, "error", err)
		WriteInternalError(w, "Failed to issue token")
		return
	}

	token, err := h.tokens.Issue(&user)
	if err != nil {
		slog.Error("failed to sign token", "username", user.Username, "error", err)
		WriteInternalError(w, "Failed to issue token")
		return
	}

	WriteSuccess(w, TokenResponse{Token: token}, nil)
}

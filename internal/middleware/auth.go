// Package middleware provides HTTP middleware for authentication,
// authorization, and request rate limiting.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PaulSssar/yamdb-final/internal/auth"
	"github.com/PaulSssar/yamdb-final/internal/model"
	"github.com/PaulSssar/yamdb-final/internal/permission"
	"github.com/PaulSssar/yamdb-final/internal/store"
)

// ContextKey is the type for request context keys set by this package.
type ContextKey string

// ContextKeyUser is the context key for the authenticated caller.
const ContextKeyUser ContextKey = "user"

// APIError represents a JSON error response.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// resolveCaller parses the Authorization header and loads the caller.
// Returns nil without writing anything when no credentials are presented;
// writes a 401 and returns (nil, true) on invalid credentials.
func resolveCaller(w http.ResponseWriter, r *http.Request, issuer *auth.TokenIssuer, queries *store.Queries) (*model.User, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized",
			"Invalid Authorization header format. Use: Bearer <token>", nil)
		return nil, true
	}

	claims, err := issuer.Parse(parts[1])
	if err != nil {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token", nil)
		return nil, true
	}

	user, err := queries.GetUserByUsername(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token", nil)
		} else {
			slog.Error("failed to load token subject", "error", err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to authenticate request", nil)
		}
		return nil, true
	}

	return &user, false
}

// Authenticate resolves the caller from a Bearer token when present and
// stores it in the request context. Requests without credentials pass
// through anonymously; handlers decide per route what that means.
func Authenticate(issuer *auth.TokenIssuer, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, errorWritten := resolveCaller(w, r, issuer, queries)
			if errorWritten {
				return
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the authenticated caller from the request context.
// Returns nil for anonymous requests.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r) == nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", permission.ReasonAuthRequired, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers whose effective role is not admin.
// Anonymous requests get 401, authenticated non-admins 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := permission.UserAdmin(GetUser(r))
		if !decision.Allowed {
			if GetUser(r) == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", decision.Reason, nil)
			} else {
				WriteAPIError(w, http.StatusForbidden, "forbidden", decision.Reason, nil)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

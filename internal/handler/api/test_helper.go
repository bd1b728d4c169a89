package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PaulSssar/yamdb-final/internal/auth"
	"github.com/PaulSssar/yamdb-final/internal/mail"
	"github.com/PaulSssar/yamdb-final/internal/middleware"
	"github.com/PaulSssar/yamdb-final/internal/model"
	"github.com/PaulSssar/yamdb-final/internal/store"
)

const testSecret = "u7kP2vQ9xR4mW8nT1cY6bZ3eH5jL0sD!"

// testAPI bundles everything a handler test needs.
type testAPI struct {
	handler *Handler
	router  http.Handler
	db      *sql.DB
	queries *store.Queries
	tokens  *auth.TokenIssuer
}

// newTestAPI builds a handler over a fresh migrated database with a
// logging mailer and mounts the full route table.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	codes := auth.NewCodeGenerator(testSecret, 24*time.Hour)
	tokens := auth.NewTokenIssuer(testSecret, time.Hour)
	mailer := mail.NewLogMailer(slog.Default())

	h := NewHandler(db, codes, tokens, mailer)

	return &testAPI{
		handler: h,
		router:  h.Routes(middleware.Authenticate(tokens, db)),
		db:      db,
		queries: store.New(db),
		tokens:  tokens,
	}
}

// createUser inserts a user directly and returns it with a valid token.
func (a *testAPI) createUser(t *testing.T, username, role string) (model.User, string) {
	t.Helper()

	user, err := a.queries.CreateUser(context.Background(), store.CreateUserParams{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	})
	require.NoError(t, err)

	token, err := a.tokens.Issue(&user)
	require.NoError(t, err)
	return user, token
}

// do runs a request through the router. A non-empty token is sent as a
// Bearer credential; a non-nil body is encoded as JSON.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the "data" field of a response envelope into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
		Meta *Meta           `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

// decodeMeta unmarshals the "meta" field of a response envelope.
func decodeMeta(t *testing.T, rec *httptest.ResponseRecorder) *Meta {
	t.Helper()

	var envelope struct {
		Meta *Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Meta
}

// decodeError unmarshals an error envelope.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()

	var envelope ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error
}

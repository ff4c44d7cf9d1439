package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lightbnb/internal/db"
	"lightbnb/internal/security"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	dsn := filepath.Join(t.TempDir(), "lightbnb.db") + "?_busy_timeout=5000&_foreign_keys=on"
	database, err := db.Open(ctx, "sqlite3", dsn, log)
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "db", "testdata", "schema.sql"))
	require.NoError(t, err)
	_, err = database.ExecContext(ctx, string(schema))
	require.NoError(t, err)

	sessions := security.NewSessionStore([]byte("0123456789abcdef0123456789abcdef"), false)
	srv := httptest.NewServer(Setup(database, sessions, log, Options{SearchLimit: 10, UploadDir: t.TempDir()}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func call(t *testing.T, client *http.Client, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestUserAndListingFlow(t *testing.T) {
	srv, client := newTestServer(t)

	status, body := call(t, client, http.MethodGet, srv.URL+"/users/me", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "not logged in", body["message"])

	status, body = call(t, client, http.MethodPost, srv.URL+"/users/", `{"name":"Alice","email":"Alice@Example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "registered", body["message"])

	_, body = call(t, client, http.MethodGet, srv.URL+"/users/me", "")
	me := body["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", me["email"])

	status, body = call(t, client, http.MethodPost, srv.URL+"/api/properties",
		`{"title":"Cozy Loft","city":"Vancouver","cost_per_night":10000,"active":true}`)
	require.Equal(t, http.StatusCreated, status)
	prop := body["property"].(map[string]any)
	assert.Equal(t, me["id"], prop["owner_id"])

	_, body = call(t, client, http.MethodGet, srv.URL+"/api/properties?city=Vancouver&minimum_price_per_night=50&maximum_price_per_night=150", "")
	props := body["properties"].([]any)
	require.Len(t, props, 1)
	assert.Equal(t, "Cozy Loft", props[0].(map[string]any)["title"])
	assert.Nil(t, props[0].(map[string]any)["average_rating"])

	_, body = call(t, client, http.MethodGet, srv.URL+"/api/properties?maximum_price_per_night=50", "")
	assert.Empty(t, body["properties"])

	status, body = call(t, client, http.MethodGet, srv.URL+"/api/reservations", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["reservations"])

	_, body = call(t, client, http.MethodPost, srv.URL+"/users/logout", "")
	assert.Empty(t, body)

	_, body = call(t, client, http.MethodGet, srv.URL+"/users/me", "")
	assert.Equal(t, "not logged in", body["message"])

	_, body = call(t, client, http.MethodPost, srv.URL+"/users/login", `{"email":"alice@example.com","password":"wrong"}`)
	assert.Equal(t, "invalid email or password", body["error"])

	_, body = call(t, client, http.MethodPost, srv.URL+"/users/login", `{"email":"ALICE@example.com","password":"secret"}`)
	assert.Equal(t, "Alice", body["user"].(map[string]any)["name"])
}

func TestRegisterWithoutTrailingSlash(t *testing.T) {
	srv, client := newTestServer(t)

	status, body := call(t, client, http.MethodPost, srv.URL+"/users", `{"name":"Bob","email":"bob@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "registered", body["message"])

	_, body = call(t, client, http.MethodGet, srv.URL+"/users/me", "")
	assert.Equal(t, "bob@example.com", body["user"].(map[string]any)["email"])
}

func TestRequestID(t *testing.T) {
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(requestIDFrom(r.Context())))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(requestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	given := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(requestIDHeader, given)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, given, w.Header().Get(requestIDHeader))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(requestIDHeader, "not-a-uuid\r\n")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.NotEqual(t, "not-a-uuid\r\n", w.Header().Get(requestIDHeader))
}

func TestRecoverer(t *testing.T) {
	h := recoverer(zaptest.NewLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

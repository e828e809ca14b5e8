package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hushhome/hushhome-golang/internal/auth"
	"github.com/hushhome/hushhome-golang/internal/handlers"
	"github.com/hushhome/hushhome-golang/internal/models"
	"github.com/hushhome/hushhome-golang/internal/routes"

	_ "modernc.org/sqlite"
)

// Tests run the real router against an in-memory SQLite database. The SQL
// in the handlers stays inside the MySQL/SQLite common dialect, so the same
// statements run in both.

var testDBSeq int64

const testSchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	role TEXT NOT NULL,
	status TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name TEXT NOT NULL,
	phone_number TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	version INTEGER NOT NULL DEFAULT 1,
	verification_code TEXT,
	verification_expiry DATETIME
);

CREATE TABLE notifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	message TEXT NOT NULL,
	link TEXT,
	is_read INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE properties (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	slug TEXT NOT NULL,
	property_type TEXT NOT NULL,
	suburb TEXT NOT NULL,
	city TEXT NOT NULL,
	price REAL NOT NULL,
	bedrooms INTEGER NOT NULL,
	bathrooms INTEGER NOT NULL,
	description TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE demands (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	buyer_id INTEGER NOT NULL,
	property_type TEXT NOT NULL,
	suburb TEXT NOT NULL,
	city TEXT NOT NULL,
	min_price REAL NOT NULL,
	max_price REAL NOT NULL,
	min_bedrooms INTEGER NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE matches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	property_id INTEGER NOT NULL,
	demand_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE (property_id, demand_id)
);

CREATE TABLE leads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	reference TEXT NOT NULL,
	full_name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT,
	suburb TEXT,
	property_type TEXT,
	message TEXT,
	created_at DATETIME NOT NULL
);
`

// newTestApp opens a fresh in-memory database, applies the schema, and
// returns the handlers plus the fully wired router.
func newTestApp(t *testing.T) (*handlers.Handlers, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	seq := atomic.AddInt64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:hushhome_test_%d?mode=memory&cache=shared", seq)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	// A single connection keeps the shared in-memory database alive and
	// serializes the concurrent listing reads.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("apply test schema: %v", err)
	}

	app := &handlers.Handlers{DB: db}
	return app, routes.SetupRouter(app)
}

// createUser inserts an account directly and returns its id.
func createUser(t *testing.T, db *sql.DB, email, role, status string) int64 {
	t.Helper()

	var password models.Password
	if err := password.Set("password-123"); err != nil {
		t.Fatalf("hash test password: %v", err)
	}

	now := time.Now()
	result, err := db.Exec(`
		INSERT INTO users (role, status, email, password_hash, full_name, phone_number, created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		role, status, email, password.Hash, "Test User", "0400000000", now, now,
	)
	if err != nil {
		t.Fatalf("insert test user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("test user id: %v", err)
	}
	return id
}

// tokenFor mints a session token for a user id.
func tokenFor(t *testing.T, userID int64) string {
	t.Helper()
	token, err := auth.GenerateToken(userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// seedNotification inserts a notification with an explicit timestamp so
// ordering assertions are deterministic.
func seedNotification(t *testing.T, db *sql.DB, userID int64, message string, read bool, createdAt time.Time) int64 {
	t.Helper()

	isRead := 0
	if read {
		isRead = 1
	}
	result, err := db.Exec(
		"INSERT INTO notifications (user_id, message, is_read, created_at) VALUES (?, ?, ?, ?)",
		userID, message, isRead, createdAt,
	)
	if err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("seed notification id: %v", err)
	}
	return id
}

// doRequest performs a request against the router and returns the recorder.
func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// envelope mirrors the API's response wrapper.
type envelope struct {
	Success bool                       `json:"success"`
	Data    map[string]json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeEnvelope parses a response body and checks the success flag.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, wantSuccess bool) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, w.Body.String())
	}
	if env.Success != wantSuccess {
		t.Fatalf("envelope success = %v, want %v (body: %s)", env.Success, wantSuccess, w.Body.String())
	}
	return env
}

// dataInt pulls an integer field out of the envelope data block.
func dataInt(t *testing.T, env envelope, key string) int {
	t.Helper()

	raw, ok := env.Data[key]
	if !ok {
		t.Fatalf("envelope data missing %q", key)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		t.Fatalf("decode data.%s: %v", key, err)
	}
	return n
}

// wantStatus fails the test when the response status differs.
func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}

// wantErrorCode checks the error envelope's code field.
func wantErrorCode(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	env := decodeEnvelope(t, w, false)
	if env.Error == nil {
		t.Fatalf("expected error envelope, got %s", w.Body.String())
	}
	if env.Error.Code != want {
		t.Fatalf("error code = %q, want %q", env.Error.Code, want)
	}
}

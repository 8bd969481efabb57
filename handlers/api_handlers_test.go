package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sailesh298-rgb/EMAIL/config"
	"github.com/sailesh298-rgb/EMAIL/database"
)

type envelope struct {
	Message string          `json:"message"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*mux.Router, *sql.DB, *config.Config) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api-test.db")
	db, err := database.InitDB("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.ApplyMigrations(db, "sqlite3"))

	cfg := &config.Config{
		DatabaseDriver: "sqlite3",
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		BcryptCost:     bcrypt.MinCost,
	}
	return NewRouter(cfg, db, hclog.NewNullLogger()), db, cfg
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec, env
}

func createAccount(t *testing.T, router *mux.Router, email, password string) {
	t.Helper()

	rec, _ := doJSON(t, router, "POST", "/api/accounts/create", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func login(t *testing.T, router *mux.Router, email, password string) string {
	t.Helper()

	rec, env := doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "bearer", data.TokenType)
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

func TestCreateAndLogin(t *testing.T) {
	router, _, _ := newTestServer(t)

	createAccount(t, router, "alice@example.com", "secret")

	rec, env := doJSON(t, router, "POST", "/api/accounts/create", "", map[string]string{
		"email":    "alice@example.com",
		"password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", env.Status)

	rec, _ = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	login(t, router, "alice@example.com", "secret")
}

func TestAuthRequired(t *testing.T) {
	router, db, _ := newTestServer(t)

	rec, _ := doJSON(t, router, "GET", "/api/account/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, router, "GET", "/api/account/stats", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A syntactically valid token stops working once the account is gone.
	createAccount(t, router, "gone@example.com", "secret")
	token := login(t, router, "gone@example.com", "secret")

	_, err := db.Exec(`DELETE FROM accounts WHERE email = $1`, "gone@example.com")
	require.NoError(t, err)

	rec, _ = doJSON(t, router, "GET", "/api/account/stats", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEmailFlow(t *testing.T) {
	router, _, _ := newTestServer(t)

	createAccount(t, router, "a@example.com", "secret")
	createAccount(t, router, "b@example.com", "secret")
	tokenA := login(t, router, "a@example.com", "secret")
	tokenB := login(t, router, "b@example.com", "secret")

	rec, env := doJSON(t, router, "POST", "/api/emails/send", tokenA, map[string]interface{}{
		"to":      []string{"b@example.com"},
		"subject": "hello",
		"body":    "api test",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var sendData struct {
		EmailID string `json:"email_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sendData))
	require.NotEmpty(t, sendData.EmailID)

	// B's inbox now holds the welcome email plus the delivered copy.
	rec, env = doJSON(t, router, "GET", "/api/emails/inbox", tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listData struct {
		Emails []database.Email `json:"emails"`
		Total  int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listData))
	require.Equal(t, 2, listData.Total)

	var delivered *database.Email
	for i := range listData.Emails {
		if listData.Emails[i].Subject == "hello" {
			delivered = &listData.Emails[i]
		}
	}
	require.NotNil(t, delivered)
	assert.False(t, delivered.Read)

	// Viewing flips the read flag.
	rec, env = doJSON(t, router, "GET", "/api/emails/message/"+delivered.ID, tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var viewed database.Email
	require.NoError(t, json.Unmarshal(env.Data, &viewed))
	assert.True(t, viewed.Read)

	// A cannot fetch B's copy even knowing the id.
	rec, _ = doJSON(t, router, "GET", "/api/emails/message/"+delivered.ID, tokenA, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Folder moves validate the target folder.
	rec, _ = doJSON(t, router, "PUT", "/api/emails/message/"+delivered.ID+"/move?folder=archive", tokenB, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, "PUT", "/api/emails/message/"+delivered.ID+"/move?folder=trash", tokenB, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, "DELETE", "/api/emails/message/"+delivered.ID, tokenB, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, "GET", "/api/emails/message/"+delivered.ID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, router, "GET", "/api/emails/junk", tokenB, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	router, _, _ := newTestServer(t)

	createAccount(t, router, "a@example.com", "secret")
	createAccount(t, router, "b@example.com", "secret")
	tokenA := login(t, router, "a@example.com", "secret")
	tokenB := login(t, router, "b@example.com", "secret")

	rec, _ := doJSON(t, router, "POST", "/api/emails/send", tokenA, map[string]interface{}{
		"to":      []string{"b@example.com"},
		"subject": "for stats",
		"body":    "x",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := doJSON(t, router, "GET", "/api/account/stats", tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Inbox        int64 `json:"inbox"`
		Sent         int64 `json:"sent"`
		Unread       int64 `json:"unread"`
		StorageQuota int64 `json:"storage_quota"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.Inbox, "welcome email plus delivered copy")
	assert.Equal(t, int64(0), stats.Sent)
	assert.Equal(t, int64(2), stats.Unread)
	assert.Equal(t, int64(1000), stats.StorageQuota)
}

func TestBulkCreateEndpoint(t *testing.T) {
	router, _, _ := newTestServer(t)

	createAccount(t, router, "taken@corp.test", "secret")

	rec, env := doJSON(t, router, "POST", "/api/accounts/bulk-create", "", map[string]interface{}{
		"domain": "corp.test",
		"accounts": []map[string]string{
			{"email": "one@corp.test", "password": "pw"},
			{"email": "taken@corp.test", "password": "pw"},
			{"email": "two@corp.test", "password": "pw"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Created int      `json:"created"`
		Errors  []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 2, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "taken@corp.test")
}

func TestChangePasswordEndpoint(t *testing.T) {
	router, _, _ := newTestServer(t)

	createAccount(t, router, "alice@example.com", "old-pw")
	token := login(t, router, "alice@example.com", "old-pw")

	rec, _ := doJSON(t, router, "PUT", "/api/account/password", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "new-pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, "PUT", "/api/account/password", token, map[string]string{
		"current_password": "old-pw",
		"new_password":     "new-pw",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	login(t, router, "alice@example.com", "new-pw")
}

func TestDailySendLimit(t *testing.T) {
	router, _, cfg := newTestServer(t)
	cfg.DailySendLimit = 1

	createAccount(t, router, "a@example.com", "secret")
	token := login(t, router, "a@example.com", "secret")

	body := map[string]interface{}{
		"to":      []string{"nobody@elsewhere.net"},
		"subject": "first",
		"body":    "x",
	}
	rec, _ := doJSON(t, router, "POST", "/api/emails/send", token, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, "POST", "/api/emails/send", token, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDraftEndpoint(t *testing.T) {
	router, _, _ := newTestServer(t)

	createAccount(t, router, "a@example.com", "secret")
	token := login(t, router, "a@example.com", "secret")

	rec, env := doJSON(t, router, "POST", "/api/emails/draft", token, map[string]interface{}{
		"to":      []string{"b@example.com"},
		"subject": "wip",
		"body":    "unfinished",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		EmailID string `json:"email_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	rec, env = doJSON(t, router, "GET", "/api/emails/drafts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listData struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listData))
	assert.Equal(t, 1, listData.Total)
}

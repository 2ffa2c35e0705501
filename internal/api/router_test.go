package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/cmdstash/internal/app"
	iauth "github.com/charlesng35/cmdstash/internal/auth"
	"github.com/charlesng35/cmdstash/internal/database/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Created int `json:"created"`
		Dropped int `json:"dropped"`
	} `json:"meta"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "cmdstash-test",
		AccessTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	cfg := &app.Config{
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}

	router, err := NewRouter(db, jwtSvc, cfg)
	require.NoError(t, err)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(encoded)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func registerTestUser(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	w, env := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRejectsMissingToken(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/commands", "/api/folders/main", "/api/auth/profile", "/api/activity"} {
		w, env := doJSON(t, router, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
		require.NotNil(t, env.Error)
		require.Equal(t, "UNAUTHORIZED", env.Error.Code)
	}
}

func TestRouterAuthFlow(t *testing.T) {
	router := newTestRouter(t)

	token := registerTestUser(t, router, "alice")

	w, env := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	w, env = doJSON(t, router, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	require.Equal(t, "alice", profile.Username)

	w, env = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestRouterFolderAndCommandFlow(t *testing.T) {
	router := newTestRouter(t)
	token := registerTestUser(t, router, "alice")

	// Create the folder hierarchy.
	w, env := doJSON(t, router, http.MethodPost, "/api/folders/main", token, gin.H{
		"name": "Networking",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var mainFolder struct {
		ID   string `json:"id"`
		Icon string `json:"icon"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &mainFolder))
	require.NotEmpty(t, mainFolder.ID)

	w, env = doJSON(t, router, http.MethodPost, "/api/folders/sub", token, gin.H{
		"name":       "DNS",
		"mainFolder": mainFolder.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var subFolder struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &subFolder))

	w, env = doJSON(t, router, http.MethodGet, "/api/folders/sub/"+mainFolder.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var subs []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &subs))
	require.Len(t, subs, 1)

	w, _ = doJSON(t, router, http.MethodGet, "/api/folders/sub/single/"+subFolder.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Create and fetch a command.
	w, env = doJSON(t, router, http.MethodPost, "/api/commands", token, gin.H{
		"title":       "Flush DNS cache",
		"command":     "resolvectl flush-caches",
		"description": "clear the local resolver cache",
		"platform":    "linux",
		"tags":        []string{"dns", "network"},
		"mainFolder":  mainFolder.ID,
		"subFolder":   subFolder.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var command struct {
		ID       string   `json:"id"`
		Platform string   `json:"platform"`
		Tags     []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &command))
	require.Equal(t, "linux", command.Platform)
	require.Equal(t, []string{"dns", "network"}, command.Tags)

	// Search finds it through the tag.
	w, env = doJSON(t, router, http.MethodGet, "/api/commands/search?q=dns", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var results []struct {
		ID             string `json:"id"`
		MainFolderName string `json:"mainFolderName"`
		SubFolderName  string `json:"subFolderName"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 1)
	require.Equal(t, command.ID, results[0].ID)
	require.Equal(t, "Networking", results[0].MainFolderName)
	require.Equal(t, "DNS", results[0].SubFolderName)

	// Another user cannot see or delete it.
	otherToken := registerTestUser(t, router, "bob")
	w, env = doJSON(t, router, http.MethodGet, "/api/commands/"+command.ID, otherToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)

	// Cascade delete via the main folder clears everything.
	w, _ = doJSON(t, router, http.MethodDelete, "/api/folders/main/"+mainFolder.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, router, http.MethodGet, "/api/commands", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var remaining []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &remaining))
	require.Empty(t, remaining)
}

func TestRouterBatchImport(t *testing.T) {
	router := newTestRouter(t)
	token := registerTestUser(t, router, "alice")

	w, env := doJSON(t, router, http.MethodPost, "/api/folders/main", token, gin.H{"name": "Imported"})
	require.Equal(t, http.StatusCreated, w.Code)

	var folder struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &folder))

	w, env = doJSON(t, router, http.MethodPost, "/api/commands/batch", token, gin.H{
		"commands": []gin.H{
			{"title": "Uptime", "command": "uptime", "description": "host uptime", "mainFolder": folder.ID},
			{"title": "", "command": "whoami", "description": "dropped row", "mainFolder": folder.ID},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, env.Meta)
	require.Equal(t, 1, env.Meta.Created)
	require.Equal(t, 1, env.Meta.Dropped)

	// An import where nothing survives admission fails.
	w, env = doJSON(t, router, http.MethodPost, "/api/commands/batch", token, gin.H{
		"commands": []gin.H{
			{"title": "", "command": "true", "description": "nope", "mainFolder": folder.ID},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "EMPTY_IMPORT", env.Error.Code)
}

func TestRouterCSVImport(t *testing.T) {
	router := newTestRouter(t)
	token := registerTestUser(t, router, "alice")

	w, env := doJSON(t, router, http.MethodPost, "/api/folders/main", token, gin.H{"name": "CSV"})
	require.Equal(t, http.StatusCreated, w.Code)

	var folder struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &folder))

	payload := strings.Join([]string{
		"title,command,description,platform,tags",
		`Disk usage,df -h,human readable disk usage,linux,"disk, space"`,
	}, "\n")

	path := fmt.Sprintf("/api/commands/import?mainFolder=%s", folder.ID)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/csv")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Meta)
	require.Equal(t, 1, env.Meta.Created)

	// Without the mainFolder parameter the import is rejected up front.
	req = httptest.NewRequest(http.MethodPost, "/api/commands/import", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterActivityFeed(t *testing.T) {
	router := newTestRouter(t)
	token := registerTestUser(t, router, "alice")

	w, _ := doJSON(t, router, http.MethodPost, "/api/folders/main", token, gin.H{"name": "Audited"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, router, http.MethodGet, "/api/activity", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []struct {
		Action string `json:"action"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.NotEmpty(t, entries)
	require.Equal(t, "folder.main.create", entries[0].Action)
}

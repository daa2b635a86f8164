package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"infraspend/config"
	"infraspend/database"
	"infraspend/middleware"
	"infraspend/models"
	"infraspend/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	uploads := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "receipt.txt"), []byte("paid"), 0o644))

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "test", CORSOrigins: []string{"http://localhost:5173"}},
		JWT:      config.JWTConfig{Secret: "router-secret", ExpireTime: time.Hour},
		Storage:  config.StorageConfig{Dir: uploads, URLPrefix: "/uploads", MaxUploadMB: 1},
		Security: config.SecurityConfig{LoginMaxAttempts: 3, LoginWindow: time.Minute},
	}
	middleware.InitJWT(cfg)

	verifier := service.NewBcryptVerifier(bcrypt.MinCost)
	hash, err := verifier.Hash("admin123")
	require.NoError(t, err)
	store := database.NewStore(db)
	require.NoError(t, db.Create(&models.User{Username: "admin", Password: hash, Role: models.RoleAdmin}).Error)

	svc := service.New(store, service.WithVerifier(verifier))
	return SetupRouter(cfg, svc), cfg
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/api/auth/me", "/api/projects", "/api/expenditures", "/api/dashboard"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestLoginThenCookieSession(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(`{"username":"admin","password":"admin123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"admin"`)

	req = httptest.NewRequest("GET", "/api/categories", nil)
	req.Header.Set("Authorization", "Bearer "+cookies[0].Value)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRateLimited(t *testing.T) {
	r, cfg := newTestRouter(t)

	var last int
	for i := 0; i <= cfg.Security.LoginMaxAttempts; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(`{"username":"admin","password":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestCORSAndUploads(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest("OPTIONS", "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/uploads/receipt.txt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", w.Body.String())
}

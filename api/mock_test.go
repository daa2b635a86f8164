package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"infraspend/config"
	"infraspend/database"
	"infraspend/models"
	"infraspend/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockService(t *testing.T) (*service.Service, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return service.New(database.NewStore(gormDB)), mock, func() {
		sqlDB.Close()
	}
}

func TestCategoryHandler_List_MySQL(t *testing.T) {
	svc, mock, cleanup := setupMockService(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `categories` ORDER BY name ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(2, "Labor", time.Now(), time.Now()).
			AddRow(1, "Materials", time.Now(), time.Now()))

	router := gin.New()
	router.Use(setActorMiddleware(&models.User{ID: 1, Role: models.RoleAdmin}))
	router.GET("/categories", NewCategoryHandler(svc).List)

	req := httptest.NewRequest("GET", "/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Status string            `json:"status"`
		Data   []models.Category `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Labor", resp.Data[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Login_UnknownUser_MySQL(t *testing.T) {
	svc, mock, cleanup := setupMockService(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password"}))

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
	}
	router := gin.New()
	router.POST("/login", NewAuthHandler(cfg, svc).Login)

	body := `{"username":"ghost","password":"whatever"}`
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid username or password", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFail_HidesInternalErrorsInRelease(t *testing.T) {
	svc, mock, cleanup := setupMockService(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnError(assert.AnError)

	old := config.GlobalConfig
	config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: "release"}}
	defer func() { config.GlobalConfig = old }()

	router := gin.New()
	router.Use(setActorMiddleware(&models.User{ID: 1, Role: models.RoleAdmin}))
	router.GET("/categories", NewCategoryHandler(svc).List)

	req := httptest.NewRequest("GET", "/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 500, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	assert.Contains(t, w.Body.String(), "internal server error")
	require.NoError(t, mock.ExpectationsWereMet())
}

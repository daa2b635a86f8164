package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"infraspend/models"
	"infraspend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLoadActor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	load := func(_ context.Context, id uint) (*models.User, error) {
		switch id {
		case 1:
			return &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}, nil
		case 2:
			return nil, &service.Error{Kind: service.KindAuth, Message: "gone"}
		}
		return nil, errors.New("db down")
	}

	serve := func(userID uint) *httptest.ResponseRecorder {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if userID != 0 {
				c.Set(ContextUserID, userID)
			}
		}, LoadActor(load))
		router.GET("/me", func(c *gin.Context) {
			c.String(http.StatusOK, CurrentActor(c).Username)
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))
		return w
	}

	w := serve(1)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(0).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(2).Code)

	w = serve(3)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestCurrentActorMissing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, CurrentActor(c))
}

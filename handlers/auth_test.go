package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"papertrade/handlers"
	"papertrade/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	h := handlers.NewAuthHandler(db, rdb, "test-secret")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.POST("/refresh", h.Refresh)
	router.POST("/logout", h.Logout)
	return router, db
}

func TestRegisterSeedsStartingCash(t *testing.T) {
	router, db := newAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/register",
		`{"username":"alice","password":"hunter2hunter2","confirmation":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&user).Error)
	assert.True(t, user.Cash.Equal(decimal.RequireFromString("10000.00")),
		"starting cash: %s", user.Cash)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	router, _ := newAuthRouter(t)
	body := `{"username":"alice","password":"hunter2hunter2","confirmation":"hunter2hunter2"}`

	require.Equal(t, http.StatusCreated, doJSON(router, http.MethodPost, "/register", body).Code)
	assert.Equal(t, http.StatusConflict, doJSON(router, http.MethodPost, "/register", body).Code)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	router, _ := newAuthRouter(t)
	w := doJSON(router, http.MethodPost, "/register",
		`{"username":"alice","password":"hunter2hunter2","confirmation":"different1234"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginAndRefresh(t *testing.T) {
	router, _ := newAuthRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(router, http.MethodPost, "/register",
		`{"username":"alice","password":"hunter2hunter2","confirmation":"hunter2hunter2"}`).Code)

	w := doJSON(router, http.MethodPost, "/login", `{"username":"alice","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	w = doJSON(router, http.MethodPost, "/refresh", `{"refresh_token":"`+tokens.RefreshToken+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	// Logout revokes the refresh token.
	w = doJSON(router, http.MethodPost, "/logout", `{"refresh_token":"`+tokens.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, http.MethodPost, "/refresh", `{"refresh_token":"`+tokens.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := newAuthRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(router, http.MethodPost, "/register",
		`{"username":"alice","password":"hunter2hunter2","confirmation":"hunter2hunter2"}`).Code)

	w := doJSON(router, http.MethodPost, "/login", `{"username":"alice","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package service_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resapi/dao/model"
	"resapi/service"
	"resapi/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "correct-horse-battery"

func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.UserQuota{},
		&model.Resource{},
		&model.QuotaChange{},
	))

	service.Init(db, util.NewTokenManager("test-secret", 1, 24), bcrypt.MinCost)
	return service.NewRouter(), db
}

func createUser(t *testing.T, db *gorm.DB, email string, isStaff bool) *model.User {
	t.Helper()
	hash, err := util.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{Email: email, PasswordHash: hash, IsStaff: isStaff}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&model.UserQuota{UserID: user.ID}).Error)
	return user
}

func createResource(t *testing.T, db *gorm.DB, ownerID uint, name string) *model.Resource {
	t.Helper()
	resource := &model.Resource{Name: name, UserID: ownerID}
	require.NoError(t, db.Create(resource).Error)
	return resource
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/api/v1/login", "",
		gin.H{"email": email, "password": testPassword})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeMap(t, rec)["access"].(string)
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var l []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l), rec.Body.String())
	return l
}

package service_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"resapi/dao/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListResourcesScoping(t *testing.T) {
	r, db := setup(t)
	userA := createUser(t, db, "a@test.com", false)
	userB := createUser(t, db, "b@test.com", false)
	createUser(t, db, "admin@test.com", true)
	createResource(t, db, userA.ID, "a-1")
	createResource(t, db, userA.ID, "a-2")
	createResource(t, db, userB.ID, "b-1")

	rec := do(t, r, http.MethodGet, "/api/v1/resources", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a user only ever sees its own rows
	tokenA := login(t, r, "a@test.com")
	rec = do(t, r, http.MethodGet, "/api/v1/resources", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeList(t, rec)
	require.Len(t, list, 2)
	for _, item := range list {
		assert.Equal(t, float64(userA.ID), item["user_id"])
	}

	// filtering on someone else's id yields nothing, not an error
	rec = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/resources?user_id=%d", userB.ID), tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))

	admin := login(t, r, "admin@test.com")
	rec = do(t, r, http.MethodGet, "/api/v1/resources", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 3)

	rec = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/resources?user_id=%d", userB.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)
}

func TestCreateResource(t *testing.T) {
	r, db := setup(t)
	user := createUser(t, db, "user@test.com", false)
	token := login(t, r, "user@test.com")

	rec := do(t, r, http.MethodPost, "/api/v1/resources", token, gin.H{"name": "mine"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "mine", body["name"])
	assert.Equal(t, float64(user.ID), body["user_id"])
	assert.Contains(t, body, "id")
}

// A regular user ends up owning what it creates no matter what owner
// the request claims.
func TestCreateResourceOwnerForced(t *testing.T) {
	r, db := setup(t)
	user := createUser(t, db, "user@test.com", false)
	other := createUser(t, db, "other@test.com", false)
	token := login(t, r, "user@test.com")

	rec := do(t, r, http.MethodPost, "/api/v1/resources", token,
		gin.H{"name": "sneaky", "user_id": other.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(user.ID), decodeMap(t, rec)["user_id"])

	var count int64
	require.NoError(t, db.Model(&model.Resource{}).Where("user_id = ?", other.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateResourceAdminExplicitOwner(t *testing.T) {
	r, db := setup(t)
	user := createUser(t, db, "user@test.com", false)
	adminUser := createUser(t, db, "admin@test.com", true)
	admin := login(t, r, "admin@test.com")

	// explicit owner honored
	rec := do(t, r, http.MethodPost, "/api/v1/resources", admin,
		gin.H{"name": "on-behalf", "user_id": user.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(user.ID), decodeMap(t, rec)["user_id"])

	// defaults to the admin itself
	rec = do(t, r, http.MethodPost, "/api/v1/resources", admin, gin.H{"name": "own"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(adminUser.ID), decodeMap(t, rec)["user_id"])

	// unknown owner is a validation failure
	rec = do(t, r, http.MethodPost, "/api/v1/resources", admin,
		gin.H{"name": "orphan", "user_id": 99999})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeMap(t, rec), "user_id")
}

func TestCreateResourceNameValidation(t *testing.T) {
	r, db := setup(t)
	createUser(t, db, "user@test.com", false)
	token := login(t, r, "user@test.com")

	for _, name := range []string{"", strings.Repeat("x", 201)} {
		rec := do(t, r, http.MethodPost, "/api/v1/resources", token, gin.H{"name": name})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeMap(t, rec), "name")
	}

	rec := do(t, r, http.MethodPost, "/api/v1/resources", token,
		gin.H{"name": strings.Repeat("x", 200)})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

// User with limit 1 and one resource: the next creation is denied with
// the limit in the message and the count stays put.
func TestCreateResourceQuotaExceeded(t *testing.T) {
	r, db := setup(t)
	user := createUser(t, db, "user@test.com", false)
	createUser(t, db, "admin@test.com", true)
	admin := login(t, r, "admin@test.com")
	token := login(t, r, "user@test.com")

	rec := do(t, r, http.MethodPut, fmt.Sprintf("/api/v1/quotas/%d", user.ID), admin,
		gin.H{"limit": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/resources", token, gin.H{"name": "first"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/resources", token, gin.H{"name": "second"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	detail, _ := decodeMap(t, rec)["detail"].(string)
	assert.Contains(t, detail, "1")

	var count int64
	require.NoError(t, db.Model(&model.Resource{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetResourceVisibility(t *testing.T) {
	r, db := setup(t)
	owner := createUser(t, db, "owner@test.com", false)
	createUser(t, db, "other@test.com", false)
	createUser(t, db, "admin@test.com", true)
	resource := createResource(t, db, owner.ID, "secret")
	path := fmt.Sprintf("/api/v1/resources/%d", resource.ID)

	rec := do(t, r, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, r, http.MethodGet, path, login(t, r, "owner@test.com"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "secret", decodeMap(t, rec)["name"])

	// non-owner gets not-found, never forbidden
	rec = do(t, r, http.MethodGet, path, login(t, r, "other@test.com"), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, path, login(t, r, "admin@test.com"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteResourceVisibility(t *testing.T) {
	r, db := setup(t)
	owner := createUser(t, db, "owner@test.com", false)
	createUser(t, db, "other@test.com", false)
	createUser(t, db, "admin@test.com", true)
	resource := createResource(t, db, owner.ID, "doomed")
	path := fmt.Sprintf("/api/v1/resources/%d", resource.ID)

	rec := do(t, r, http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, r, http.MethodDelete, path, login(t, r, "other@test.com"), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var count int64
	require.NoError(t, db.Model(&model.Resource{}).Where("id = ?", resource.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "masked delete must not remove the row")

	rec = do(t, r, http.MethodDelete, path, login(t, r, "owner@test.com"), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, db.Model(&model.Resource{}).Where("id = ?", resource.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteResourceAdmin(t *testing.T) {
	r, db := setup(t)
	owner := createUser(t, db, "owner@test.com", false)
	createUser(t, db, "admin@test.com", true)
	resource := createResource(t, db, owner.ID, "any")

	rec := do(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/resources/%d", resource.ID),
		login(t, r, "admin@test.com"), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// Deleting frees headroom for the next creation.
func TestDeleteThenCreateWithinLimit(t *testing.T) {
	r, db := setup(t)
	user := createUser(t, db, "user@test.com", false)
	createUser(t, db, "admin@test.com", true)
	admin := login(t, r, "admin@test.com")
	token := login(t, r, "user@test.com")

	rec := do(t, r, http.MethodPut, fmt.Sprintf("/api/v1/quotas/%d", user.ID), admin,
		gin.H{"limit": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/resources", token, gin.H{"name": "first"})
	require.Equal(t, http.StatusCreated, rec.Code)
	resourceID := decodeMap(t, rec)["id"].(float64)

	rec = do(t, r, http.MethodPost, "/api/v1/resources", token, gin.H{"name": "blocked"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/resources/%d", int(resourceID)), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/resources", token, gin.H{"name": "replacement"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

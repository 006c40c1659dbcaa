package mobileusers

import (
	"context"
	"net/http"
	"testing"

	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/kusalwijekoon97/ml-be/pkg/blobstore"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/testutils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testServer struct {
	db    *bun.DB
	e     *echo.Echo
	store *blobstore.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutils.SetupTestDB(t)
	binder, store := testutils.NewBinder(db)
	e := testutils.NewEcho(t)
	RegisterRoutesWithGroup(e.Group("/api/mobile-users"), db, binder)
	return &testServer{db: db, e: e, store: store}
}

func payload(username, email string) map[string]interface{} {
	return map[string]interface{}{
		"firstname": "Nimal",
		"username":  username,
		"email":     email,
		"password":  "password123",
	}
}

func storedHash(t *testing.T, db bun.IDB, id string) string {
	t.Helper()
	user := &models.MobileUser{}
	err := db.NewSelect().Model(user).Column("password_hash").Where("id = ?", id).Scan(context.Background())
	require.NoError(t, err)
	return user.PasswordHash
}

func TestStoreMobileUser(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	resp := testutils.Multipart(t, s.e, "/api/mobile-users/store", payload("nimal", "Nimal@Example.com"),
		testutils.Upload{Field: "profilePicture", Filename: "me.png", Data: testutils.PNG(t, 40, 40)})
	require.Equal(t, http.StatusCreated, resp.Code, string(resp.Data))
	var user models.MobileUser
	resp.Decode(t, &user)
	assert.Equal(t, "nimal@example.com", user.Email)
	assert.Equal(t, models.MobileUserRoleReader, user.Role)
	assert.Equal(t, models.MobileUserStatusActive, user.Status)
	require.NotNil(t, user.ProfilePicture)
	assert.True(t, auth.CheckPassword("password123", storedHash(t, s.db, user.ID)))
	assert.NotContains(t, string(resp.Data), "password")

	resp = testutils.Multipart(t, s.e, "/api/mobile-users/store", payload("nimal", "other@example.com"),
		testutils.Upload{Field: "profilePicture", Filename: "me.png", Data: testutils.PNG(t, 40, 40)})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "username", resp.Error.Details["field"])
	assert.Len(t, s.store.Puts(), 2)
	assert.Equal(t, []string{s.store.Puts()[1]}, s.store.Deletes())

	resp = testutils.Multipart(t, s.e, "/api/mobile-users/store", payload("kamal", "nimal@example.com"))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "email", resp.Error.Details["field"])

	bad := payload("kamal", "kamal@example.com")
	bad["role"] = "OWNER"
	resp = testutils.Multipart(t, s.e, "/api/mobile-users/store", bad)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "role", resp.Error.Details["field"])
}

func TestUpdateAndDeleteMobileUser(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	resp := testutils.Multipart(t, s.e, "/api/mobile-users/store", payload("nimal", "nimal@example.com"))
	require.Equal(t, http.StatusCreated, resp.Code)
	var user models.MobileUser
	resp.Decode(t, &user)
	assert.Nil(t, user.ProfilePicture)
	resp = testutils.Multipart(t, s.e, "/api/mobile-users/store", payload("kamal", "kamal@example.com"))
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = testutils.Multipart(t, s.e, "/api/mobile-users/update/"+user.ID, map[string]interface{}{"username": "kamal"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "conflict", resp.Error.Code)

	resp = testutils.Multipart(t, s.e, "/api/mobile-users/update/"+user.ID, map[string]interface{}{
		"status":   "BANNED",
		"password": "new-password",
		"friends":  []string{"kamal"},
	}, testutils.Upload{Field: "profilePicture", Filename: "me.png", Data: testutils.PNG(t, 40, 40)})
	require.Equal(t, http.StatusOK, resp.Code, string(resp.Data))
	resp.Decode(t, &user)
	assert.Equal(t, models.MobileUserStatusBanned, user.Status)
	assert.Equal(t, models.StringList{"kamal"}, user.FriendIDs)
	require.NotNil(t, user.ProfilePicture)
	assert.True(t, auth.CheckPassword("new-password", storedHash(t, s.db, user.ID)))
	require.Len(t, s.store.Puts(), 1)
	assert.Empty(t, s.store.Deletes())

	var listed []*models.MobileUser
	resp = testutils.JSON(t, s.e, http.MethodGet, "/api/mobile-users/all?status=BANNED", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, user.ID, listed[0].ID)

	resp = testutils.JSON(t, s.e, http.MethodPost, "/api/mobile-users/change-status/"+user.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var status map[string]interface{}
	resp.Decode(t, &status)
	assert.Equal(t, false, status["is_active"])

	resp = testutils.JSON(t, s.e, http.MethodPost, "/api/mobile-users/delete/"+user.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, s.store.Puts(), s.store.Deletes())

	resp = testutils.JSON(t, s.e, http.MethodGet, "/api/mobile-users/"+user.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = testutils.JSON(t, s.e, http.MethodGet, "/api/mobile-users/all", nil)
	assert.Equal(t, 1, resp.Pagination.TotalItems)
}

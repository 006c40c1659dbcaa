package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/kusalwijekoon97/ml-be/pkg/binder"
	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/testutils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testServer struct {
	db          *bun.DB
	e           *echo.Echo
	adminToken  string
	readerToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutils.SetupTestDB(t)
	authService := auth.NewService(db, config.NewForTest())
	authMiddleware := auth.NewMiddleware(authService)
	e := testutils.NewEcho(t)
	RegisterRoutesWithGroup(e.Group("/api/users", authMiddleware.Authenticate), db, authMiddleware)
	adminToken, err := authService.Issue("admin", auth.RoleAdmin)
	require.NoError(t, err)
	readerToken, err := authService.Issue("librarian", auth.RoleLibrarian)
	require.NoError(t, err)
	return &testServer{db: db, e: e, adminToken: adminToken, readerToken: readerToken}
}

func (s *testServer) call(t *testing.T, method, path string, body interface{}) *testutils.Response {
	t.Helper()
	return testutils.JSONWithToken(t, s.e, method, path, s.adminToken, body)
}

func (s *testServer) createUser(t *testing.T, first, email string, libs ...string) models.User {
	t.Helper()
	resp := s.call(t, http.MethodPost, "/api/users/store", map[string]interface{}{
		"firstName": first,
		"lastName":  "Silva",
		"email":     email,
		"password":  "password123",
		"libraries": libs,
	})
	require.Equal(t, http.StatusCreated, resp.Code, string(resp.Data))
	var user models.User
	resp.Decode(t, &user)
	return user
}

func newUsersTestContext(t *testing.T, payload, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func TestStoreUser(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	user := s.createUser(t, "Amal", "Amal@Example.com", "lib-1")
	assert.Equal(t, "amal@example.com", user.Email)
	assert.Equal(t, models.StringList{"lib-1"}, user.LibraryIDs)
	assert.False(t, user.Blocked)

	resp := s.call(t, http.MethodPost, "/api/users/store", map[string]interface{}{
		"firstName": "Other",
		"lastName":  "Silva",
		"email":     "amal@example.com",
		"password":  "password123",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "conflict", resp.Error.Code)
	assert.Equal(t, "email", resp.Error.Details["field"])

	resp = s.call(t, http.MethodPost, "/api/users/store", map[string]interface{}{
		"firstName": "Short",
		"lastName":  "Silva",
		"email":     "short@example.com",
		"password":  "short",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "password", resp.Error.Details["field"])

	stored := &models.User{}
	require.NoError(t, s.db.NewSelect().Model(stored).Where("id = ?", user.ID).Scan(context.Background()))
	assert.True(t, auth.CheckPassword("password123", stored.PasswordHash))
	assert.Len(t, stored.OTPCode, codeLength)
}

func TestListAndSearchUsers(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	amal := s.createUser(t, "Amal", "amal@example.com", "lib-1")
	s.createUser(t, "Bimal", "bimal@example.com", "lib-1", "lib-2")
	s.createUser(t, "Chamal", "chamal@example.com", "lib-2")

	var users []*models.User
	resp := s.call(t, http.MethodGet, "/api/users/all?limit=2", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &users)
	assert.Len(t, users, 2)
	assert.Equal(t, 3, resp.Pagination.TotalItems)

	resp = s.call(t, http.MethodGet, "/api/users/all-by-library?library=lib-2", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &users)
	require.Len(t, users, 2)
	assert.Equal(t, "Bimal", users[0].FirstName)

	resp = s.call(t, http.MethodPost, "/api/users/search", map[string]string{"name": "MAL", "library": "lib-1"})
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &users)
	assert.Len(t, users, 2)

	resp = s.call(t, http.MethodPost, "/api/users/search", map[string]string{"email": "CHAMAL@"})
	resp.Decode(t, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "Chamal", users[0].FirstName)

	resp = s.call(t, http.MethodPost, "/api/users/delete/"+amal.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp = s.call(t, http.MethodGet, "/api/users/"+amal.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = s.call(t, http.MethodGet, "/api/users/all", nil)
	assert.Equal(t, 2, resp.Pagination.TotalItems)
}

func TestUpdateUserAndToggleBlocked(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	amal := s.createUser(t, "Amal", "amal@example.com")
	s.createUser(t, "Bimal", "bimal@example.com")

	resp := s.call(t, http.MethodPost, "/api/users/update/"+amal.ID, map[string]string{"email": "bimal@example.com"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "conflict", resp.Error.Code)

	resp = s.call(t, http.MethodPost, "/api/users/update/"+amal.ID, map[string]interface{}{"phone": "0771234567", "plans": []string{"gold"}})
	require.Equal(t, http.StatusOK, resp.Code)
	var updated models.User
	resp.Decode(t, &updated)
	assert.Equal(t, "0771234567", updated.Phone)
	assert.Equal(t, models.StringList{"gold"}, updated.Plans)

	for _, want := range []bool{true, false} {
		resp = s.call(t, http.MethodPost, "/api/users/change-status/"+amal.ID, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		var status map[string]interface{}
		resp.Decode(t, &status)
		assert.Equal(t, want, status["blocked"])
	}

	resp = s.call(t, http.MethodPost, "/api/users/change-status/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestResetPassword(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	user := s.createUser(t, "Amal", "amal@example.com")

	resp := testutils.JSONWithToken(t, s.e, http.MethodPost, "/api/users/reset-password/"+user.ID, s.readerToken,
		map[string]string{"newPassword": "newpassword123", "confirmPassword": "newpassword123"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	h := &handler{userService: NewService(s.db)}
	c, _ := newUsersTestContext(t, `{"newPassword":"newpassword123","confirmPassword":"mismatch123"}`, "/api/users/reset-password/"+user.ID)
	c.SetParamNames("id")
	c.SetParamValues(user.ID)
	err := h.resetPassword(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirmPassword")

	c, rr := newUsersTestContext(t, `{"newPassword":"newpassword123","confirmPassword":"newpassword123"}`, "/api/users/reset-password/"+user.ID)
	c.SetParamNames("id")
	c.SetParamValues(user.ID)
	require.NoError(t, h.resetPassword(c))
	assert.Equal(t, http.StatusOK, rr.Code)

	stored := &models.User{}
	require.NoError(t, s.db.NewSelect().Model(stored).Where("id = ?", user.ID).Scan(context.Background()))
	assert.True(t, auth.CheckPassword("newpassword123", stored.PasswordHash))
}

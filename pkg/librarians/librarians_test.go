package librarians

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/kusalwijekoon97/ml-be/pkg/libraries"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/testutils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type recordingSender struct {
	mu   sync.Mutex
	sent chan string
}

func (s *recordingSender) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent <- to
	return nil
}

type testServer struct {
	db    *bun.DB
	e     *echo.Echo
	mail  *recordingSender
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutils.SetupTestDB(t)
	authService := auth.NewService(db, config.NewForTest())
	authMiddleware := auth.NewMiddleware(authService)
	mail := &recordingSender{sent: make(chan string, 10)}
	e := testutils.NewEcho(t)
	RegisterRoutesWithGroup(e.Group("/api/librarians", authMiddleware.Authenticate), db, authMiddleware, mail)
	token, err := authService.Issue("admin", auth.RoleAdmin)
	require.NoError(t, err)
	return &testServer{db: db, e: e, mail: mail, token: token}
}

func (s *testServer) call(t *testing.T, method, path string, body interface{}) *testutils.Response {
	t.Helper()
	return testutils.JSONWithToken(t, s.e, method, path, s.token, body)
}

func createLibrary(t *testing.T, db *bun.DB, name string) *models.Library {
	t.Helper()
	library := &models.Library{Name: name, IsActive: true}
	require.NoError(t, libraries.NewService(db).CreateLibrary(context.Background(), library))
	return library
}

func storePayload(email, phone string, libs ...string) map[string]interface{} {
	return map[string]interface{}{
		"firstName":   "Lee",
		"lastName":    "Perera",
		"email":       email,
		"phone":       phone,
		"password":    "password123",
		"permissions": map[string]bool{"books": true},
		"libraries":   libs,
	}
}

func TestStoreLibrarian(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	central := createLibrary(t, s.db, "Central")

	resp := s.call(t, http.MethodPost, "/api/librarians/store", storePayload("Lee@Example.com", "0771", central.ID))
	require.Equal(t, http.StatusCreated, resp.Code)

	var librarian models.Librarian
	resp.Decode(t, &librarian)
	assert.Equal(t, "lee@example.com", librarian.Email)
	assert.True(t, librarian.Permissions.Books)
	assert.False(t, librarian.Permissions.Users)
	require.Len(t, librarian.Libraries, 1)
	assert.Equal(t, central.ID, librarian.Libraries[0].ID)
	assert.NotContains(t, string(resp.Data), "password")
	assert.NotContains(t, string(resp.Data), "Code\"")

	assert.Equal(t, "lee@example.com", <-s.mail.sent)

	stored := &models.Librarian{}
	require.NoError(t, s.db.NewSelect().Model(stored).Where("lib.id = ?", librarian.ID).Scan(context.Background()))
	assert.True(t, auth.CheckPassword("password123", stored.PasswordHash))
	assert.Len(t, stored.OTPCode, codeLength)

	resp = s.call(t, http.MethodPost, "/api/librarians/store", storePayload("lee@example.com", "0772"))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "email", resp.Error.Details["field"])

	resp = s.call(t, http.MethodPost, "/api/librarians/store", storePayload("other@example.com", "0771"))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "phone", resp.Error.Details["field"])

	short := storePayload("short@example.com", "0773")
	short["password"] = "short"
	resp = s.call(t, http.MethodPost, "/api/librarians/store", short)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "password", resp.Error.Details["field"])
}

func TestUpdateLibrarian_ReassignsLibraries(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	a := createLibrary(t, s.db, "A")
	b := createLibrary(t, s.db, "B")

	resp := s.call(t, http.MethodPost, "/api/librarians/store", storePayload("lee@example.com", "0771", a.ID))
	require.Equal(t, http.StatusCreated, resp.Code)
	var librarian models.Librarian
	resp.Decode(t, &librarian)

	resp = s.call(t, http.MethodPost, "/api/librarians/update/"+librarian.ID, map[string]interface{}{
		"firstName": "Leo",
		"libraries": []string{b.ID},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &librarian)
	assert.Equal(t, "Leo", librarian.FirstName)
	require.Len(t, librarian.Libraries, 1)
	assert.Equal(t, b.ID, librarian.Libraries[0].ID)

	library, err := libraries.NewService(s.db).RetrieveLibrary(context.Background(), libraries.RetrieveLibraryOptions{ID: &a.ID})
	require.NoError(t, err)
	assert.Nil(t, library.LibrarianID)

	resp = s.call(t, http.MethodGet, "/api/librarians/all-by-library?libraries="+b.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var listed []*models.Librarian
	resp.Decode(t, &listed)
	require.Len(t, listed, 1)

	resp = s.call(t, http.MethodGet, "/api/librarians/all-by-library?libraries="+a.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &listed)
	assert.Empty(t, listed)
}

func TestLibrarianListingAndStatus(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	var ids []string
	for i, name := range []string{"Anne", "Bob"} {
		payload := storePayload(name+"@example.com", name)
		payload["firstName"] = name
		resp := s.call(t, http.MethodPost, "/api/librarians/store", payload)
		require.Equal(t, http.StatusCreated, resp.Code, i)
		var librarian models.Librarian
		resp.Decode(t, &librarian)
		ids = append(ids, librarian.ID)
	}

	resp := s.call(t, http.MethodPost, "/api/librarians/search", map[string]interface{}{"name": "ann"})
	require.Equal(t, http.StatusOK, resp.Code)
	var listed []*models.Librarian
	resp.Decode(t, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "Anne", listed[0].FirstName)

	resp = s.call(t, http.MethodPost, "/api/librarians/change-status/"+ids[0], nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.call(t, http.MethodGet, "/api/librarians/all", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "Bob", listed[0].FirstName)

	resp = s.call(t, http.MethodPost, "/api/librarians/delete/"+ids[1], nil)
	require.Equal(t, http.StatusOK, resp.Code)
	count, err := NewService(s.db).CountActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLibrarianWritesRequireAdmin(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	token, err := auth.NewService(s.db, config.NewForTest()).Issue("lib", auth.RoleLibrarian)
	require.NoError(t, err)

	resp := testutils.JSONWithToken(t, s.e, http.MethodPost, "/api/librarians/store", token, storePayload("x@example.com", "1"))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

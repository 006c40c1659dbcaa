package categories

import (
	"context"
	"net/http"
	"testing"

	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/reconcile"
	"github.com/kusalwijekoon97/ml-be/pkg/testutils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testServer struct {
	db    *bun.DB
	e     *echo.Echo
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutils.SetupTestDB(t)
	authService := auth.NewService(db, config.NewForTest())
	e := testutils.NewEcho(t)
	RegisterRoutesWithGroup(e.Group("/api/categories", auth.NewMiddleware(authService).Authenticate), db)
	token, err := authService.Issue("admin", auth.RoleAdmin)
	require.NoError(t, err)
	return &testServer{db: db, e: e, token: token}
}

func (s *testServer) call(t *testing.T, method, path string, body interface{}) *testutils.Response {
	t.Helper()
	return testutils.JSONWithToken(t, s.e, method, path, s.token, body)
}

func subIDs(category models.Category) []string {
	return category.SubCategoryIDs()
}

func TestCategoryReconciliationScenario(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	resp := s.call(t, http.MethodPost, "/api/categories/main/store", map[string]interface{}{
		"name":          "Fiction",
		"subCategories": []map[string]string{{"name": "Thriller"}},
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var fiction models.Category
	resp.Decode(t, &fiction)
	require.Len(t, fiction.SubCategories, 1)
	s1ID := fiction.SubCategories[0].ID
	assert.Equal(t, fiction.ID, fiction.SubCategories[0].CategoryID)
	assert.Equal(t, "fiction-thriller", fiction.SubCategories[0].SubSlug)

	resp = s.call(t, http.MethodPost, "/api/categories/main/update/"+fiction.ID, map[string]interface{}{
		"subCategories": []map[string]string{
			{"_id": s1ID, "name": "Thriller"},
			{"name": "Romance"},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var withRomance models.Category
	resp.Decode(t, &withRomance)
	require.Len(t, withRomance.SubCategories, 2)
	s2 := withRomance.SubCategories[1]
	s2ID := s2.ID
	assert.Equal(t, []string{s1ID, s2ID}, subIDs(withRomance))
	assert.Equal(t, "Romance", s2.Name)
	assert.True(t, s2.IsActive)

	resp = s.call(t, http.MethodPost, "/api/categories/main/update/"+fiction.ID, map[string]interface{}{
		"subCategories": []map[string]string{{"_id": s2ID, "name": "Romance"}},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var onlyRomance models.Category
	resp.Decode(t, &onlyRomance)
	assert.Equal(t, []string{s2ID}, subIDs(onlyRomance))

	count, err := s.db.NewSelect().Model((*models.SubCategory)(nil)).Where("id = ?", s1ID).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	resp = s.call(t, http.MethodGet, "/api/categories/sub/"+s1ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateCategory_InvalidChildAbortsEverything(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	resp := s.call(t, http.MethodPost, "/api/categories/main/store", map[string]interface{}{
		"name":          "Fiction",
		"subCategories": []map[string]string{{"name": "Thriller"}},
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var fiction models.Category
	resp.Decode(t, &fiction)

	resp = s.call(t, http.MethodPost, "/api/categories/main/update/"+fiction.ID, map[string]interface{}{
		"name":          "Fantasy",
		"subCategories": []map[string]string{{"name": "Romance"}, {"name": ""}},
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.call(t, http.MethodPost, "/api/categories/main/update/"+fiction.ID, map[string]interface{}{
		"subCategories": []map[string]string{{"_id": "missing", "name": "Romance"}},
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.call(t, http.MethodGet, "/api/categories/main/"+fiction.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &fiction)
	assert.Equal(t, "Fiction", fiction.Name)
	require.Len(t, fiction.SubCategories, 1)
	assert.Equal(t, "Thriller", fiction.SubCategories[0].Name)
}

func TestUpdateCategory_SwapsNames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.SetupTestDB(t)
	svc := NewService(db)

	category := &models.Category{Name: "Fiction", IsActive: true}
	require.NoError(t, svc.CreateCategory(ctx, category, []string{"Thriller", "Romance"}))
	a, b := category.SubCategories[0].ID, category.SubCategories[1].ID

	err := svc.UpdateCategory(ctx, category, UpdateCategoryOptions{
		SubCategories: []reconcile.Child[string]{
			{ID: reconcile.Existing(b), Input: "Thriller"},
			{ID: reconcile.Existing(a), Input: "Romance"},
		},
	})
	require.NoError(t, err)

	category, err = svc.RetrieveCategory(ctx, RetrieveCategoryOptions{ID: &category.ID})
	require.NoError(t, err)
	require.Len(t, category.SubCategories, 2)
	assert.Equal(t, b, category.SubCategories[0].ID)
	assert.Equal(t, "Thriller", category.SubCategories[0].Name)
	assert.Equal(t, "fiction-thriller", category.SubCategories[0].SubSlug)
	assert.Equal(t, a, category.SubCategories[1].ID)
	assert.Equal(t, "Romance", category.SubCategories[1].Name)
}

func TestCategoryStatusCascade(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ctx := context.Background()
	svc := NewService(s.db)

	category := &models.Category{Name: "Fiction", IsActive: true}
	require.NoError(t, svc.CreateCategory(ctx, category, []string{"Thriller", "Romance"}))
	require.NoError(t, svc.DeleteSubCategory(ctx, category.SubCategories[1].ID))

	resp := s.call(t, http.MethodPost, "/api/categories/main/change-status/"+category.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var status map[string]interface{}
	resp.Decode(t, &status)
	assert.Equal(t, false, status["is_active"])

	category, err := svc.RetrieveCategory(ctx, RetrieveCategoryOptions{ID: &category.ID})
	require.NoError(t, err)
	for _, sub := range category.SubCategories {
		assert.False(t, sub.IsActive)
	}

	resp = s.call(t, http.MethodPost, "/api/categories/main/update/"+category.ID, map[string]interface{}{
		"is_active": true,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, category)
	assert.True(t, category.IsActive)
	for _, sub := range category.SubCategories {
		assert.True(t, sub.IsActive, sub.Name)
	}

	resp = s.call(t, http.MethodPost, "/api/categories/main/delete/"+category.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	subs, err := svc.ListSubCategories(ctx, ListSubCategoriesOptions{CategoryID: &category.ID})
	require.NoError(t, err)
	require.Len(t, subs, 2)
	for _, sub := range subs {
		assert.False(t, sub.IsActive)
	}
	resp = s.call(t, http.MethodGet, "/api/categories/main/"+category.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCategoryListingAndSearch(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	resp := s.call(t, http.MethodPost, "/api/categories/main/store", map[string]interface{}{
		"name": "Fiction", "library": []string{"lib-1"},
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var fiction models.Category
	resp.Decode(t, &fiction)

	resp = s.call(t, http.MethodPost, "/api/categories/main/store", map[string]interface{}{
		"name": "History", "library": []string{"lib-2"},
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = s.call(t, http.MethodPost, "/api/categories/main/store", map[string]interface{}{"name": "Fiction"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "conflict", resp.Error.Code)

	var listed []*models.Category
	resp = s.call(t, http.MethodGet, "/api/categories/main/search?library=lib-2", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "History", listed[0].Name)

	resp = s.call(t, http.MethodPost, "/api/categories/main/change-status/"+fiction.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.call(t, http.MethodGet, "/api/categories/main/all", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "History", listed[0].Name)
	assert.Equal(t, 1, resp.Pagination.TotalItems)

	resp = s.call(t, http.MethodGet, "/api/categories/main/search?name=fic", nil)
	resp.Decode(t, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, fiction.ID, listed[0].ID)
}

func TestSubCategoryRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	resp := s.call(t, http.MethodPost, "/api/categories/main/store", map[string]interface{}{
		"name":          "Fiction",
		"subCategories": []map[string]string{{"name": "Thriller"}},
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var fiction models.Category
	resp.Decode(t, &fiction)

	resp = s.call(t, http.MethodPost, "/api/categories/sub/store", map[string]string{
		"name": "Romance", "parentCategory": "missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = s.call(t, http.MethodPost, "/api/categories/sub/store", map[string]string{
		"name": "Thriller", "parentCategory": fiction.ID,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "conflict", resp.Error.Code)

	resp = s.call(t, http.MethodPost, "/api/categories/sub/store", map[string]string{
		"name": "Romance", "parentCategory": fiction.ID,
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var romance models.SubCategory
	resp.Decode(t, &romance)
	assert.Equal(t, fiction.ID, romance.CategoryID)

	resp = s.call(t, http.MethodGet, "/api/categories/main/"+fiction.ID, nil)
	resp.Decode(t, &fiction)
	require.Len(t, fiction.SubCategories, 2)
	assert.Equal(t, romance.ID, fiction.SubCategories[1].ID)

	resp = s.call(t, http.MethodPost, "/api/categories/sub/update/"+romance.ID, map[string]string{"name": "Thriller"})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.call(t, http.MethodPost, "/api/categories/sub/update/"+romance.ID, map[string]string{"name": "Love Stories"})
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &romance)
	assert.Equal(t, "Love Stories", romance.Name)
	assert.Equal(t, "fiction-love-stories", romance.SubSlug)

	var subs []*models.SubCategory
	resp = s.call(t, http.MethodGet, "/api/categories/sub/search?name=love&category="+fiction.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &subs)
	require.Len(t, subs, 1)

	resp = s.call(t, http.MethodPost, "/api/categories/sub/delete/"+romance.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.call(t, http.MethodGet, "/api/categories/sub/all", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &subs)
	require.Len(t, subs, 1)
	assert.Equal(t, "Thriller", subs[0].Name)
}

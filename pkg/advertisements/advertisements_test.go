package advertisements

import (
	"net/http"
	"testing"

	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvertisements(t *testing.T) {
	t.Parallel()
	db := testutils.SetupTestDB(t)
	binder, store := testutils.NewBinder(db)
	e := testutils.NewEcho(t)
	RegisterRoutesWithGroup(e.Group("/api/advertisements"), db, binder)

	resp := testutils.Multipart(t, e, "/api/advertisements/store", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "advertisement", resp.Error.Details["field"])
	assert.Empty(t, store.Puts())

	resp = testutils.Multipart(t, e, "/api/advertisements/store", map[string]interface{}{},
		testutils.Upload{Field: "advertisement", Filename: "ad.png", Data: testutils.PNG(t, 300, 100)})
	require.Equal(t, http.StatusCreated, resp.Code, string(resp.Data))
	var ad models.Advertisement
	resp.Decode(t, &ad)
	assert.True(t, ad.IsActive)
	require.NotNil(t, ad.Image)
	require.Len(t, store.Puts(), 1)
	first := store.Puts()[0]
	object, ok := store.Object(first)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", object.ContentType)

	// No image keeps the stored one.
	resp = testutils.Multipart(t, e, "/api/advertisements/update/"+ad.ID, map[string]interface{}{"is_active": false})
	require.Equal(t, http.StatusOK, resp.Code, string(resp.Data))
	resp.Decode(t, &ad)
	assert.False(t, ad.IsActive)
	assert.Contains(t, *ad.Image, first)
	assert.Empty(t, store.Deletes())

	resp = testutils.Multipart(t, e, "/api/advertisements/update/"+ad.ID, map[string]interface{}{},
		testutils.Upload{Field: "advertisement", Filename: "ad2.png", Data: testutils.PNG(t, 30, 30)})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, store.Puts(), 2)
	second := store.Puts()[1]
	assert.Equal(t, []string{first}, store.Deletes())

	var listed []*models.Advertisement
	resp = testutils.JSON(t, e, http.MethodGet, "/api/advertisements/all", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &listed)
	require.Len(t, listed, 1)
	assert.Contains(t, *listed[0].Image, second)

	resp = testutils.JSON(t, e, http.MethodPost, "/api/advertisements/delete/"+ad.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{first, second}, store.Deletes())

	resp = testutils.JSON(t, e, http.MethodGet, "/api/advertisements/all", nil)
	resp.Decode(t, &listed)
	assert.Empty(t, listed)
	assert.Equal(t, 0, resp.Pagination.TotalItems)
}

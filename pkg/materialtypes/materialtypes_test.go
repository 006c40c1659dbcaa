package materialtypes

import (
	"net/http"
	"testing"

	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/testutils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	db := testutils.SetupTestDB(t)
	e := testutils.NewEcho(t)
	RegisterRoutesWithGroup(e.Group("/api/materials"), db)
	return e
}

func TestMaterialTypes(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	resp := testutils.JSON(t, e, http.MethodPost, "/api/materials/store", map[string]string{"name": " Audio "})
	require.Equal(t, http.StatusCreated, resp.Code, string(resp.Data))
	var audio models.MaterialType
	resp.Decode(t, &audio)
	assert.Equal(t, "Audio", audio.Name)

	resp = testutils.JSON(t, e, http.MethodPost, "/api/materials/store", map[string]string{"name": "Audio"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "conflict", resp.Error.Code)

	resp = testutils.JSON(t, e, http.MethodPost, "/api/materials/store", map[string]string{"name": "E-Book"})
	require.Equal(t, http.StatusCreated, resp.Code)
	var ebook models.MaterialType
	resp.Decode(t, &ebook)

	resp = testutils.JSON(t, e, http.MethodPost, "/api/materials/update/"+ebook.ID, map[string]string{"name": "Audio"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "name", resp.Error.Details["field"])

	resp = testutils.JSON(t, e, http.MethodPost, "/api/materials/update/"+ebook.ID, map[string]interface{}{"name": "Ebook", "is_active": false})
	require.Equal(t, http.StatusOK, resp.Code)

	var listed []*models.MaterialType
	resp = testutils.JSON(t, e, http.MethodGet, "/api/materials/all", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "Audio", listed[0].Name)

	resp = testutils.JSON(t, e, http.MethodPost, "/api/materials/delete/"+audio.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp = testutils.JSON(t, e, http.MethodGet, "/api/materials/"+audio.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = testutils.JSON(t, e, http.MethodPost, "/api/materials/delete/"+audio.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

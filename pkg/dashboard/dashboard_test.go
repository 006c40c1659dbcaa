package dashboard

import (
	"context"
	"net/http"
	"testing"

	"github.com/kusalwijekoon97/ml-be/pkg/authors"
	"github.com/kusalwijekoon97/ml-be/pkg/librarians"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounts(t *testing.T) {
	t.Parallel()
	db := testutils.SetupTestDB(t)
	e := testutils.NewEcho(t)
	RegisterRoutesWithGroup(e.Group("/api/dashboard"), db)
	ctx := context.Background()

	authorService := authors.NewService(db)
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, authorService.CreateAuthor(ctx, &models.Author{FirstName: name, IsActive: true}, nil, nil))
	}
	inactive := &models.Author{FirstName: "D", IsActive: true}
	require.NoError(t, authorService.CreateAuthor(ctx, inactive, nil, nil))
	_, err := authorService.ToggleStatus(ctx, inactive.ID)
	require.NoError(t, err)

	librarianService := librarians.NewService(db)
	librarian := &models.Librarian{FirstName: "L", Email: "l@example.com", Phone: "1", PasswordHash: "x", IsActive: true}
	require.NoError(t, librarianService.CreateLibrarian(ctx, librarian, nil))
	deleted := &models.Librarian{FirstName: "M", Email: "m@example.com", Phone: "2", PasswordHash: "x", IsActive: true}
	require.NoError(t, librarianService.CreateLibrarian(ctx, deleted, nil))
	require.NoError(t, librarianService.DeleteLibrarian(ctx, deleted.ID))

	resp := testutils.JSON(t, e, http.MethodGet, "/api/dashboard/counts", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var counts Counts
	resp.Decode(t, &counts)
	assert.Equal(t, Counts{AuthorCount: 3, LibrarianCount: 1}, counts)
}

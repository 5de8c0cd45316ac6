package books

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/errcodes"
	"github.com/readsphere/readsphere/pkg/migrations"
	"github.com/readsphere/readsphere/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func insertBooks(t *testing.T, db *bun.DB, books ...*models.Book) {
	t.Helper()
	for _, b := range books {
		if b.Slug == "" {
			b.Slug = fmt.Sprintf("book-%d", b.ID)
		}
		_, err := db.NewInsert().Model(b).Exec(context.Background())
		require.NoError(t, err)
	}
}

func ids(books []*models.Book) []int {
	out := make([]int, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func catalogue() []*models.Book {
	return []*models.Book{
		{ID: 1, Title: "The Midnight Library", Author: "Matt Haig", Genre: "Fantasy", Raters: 120, AverageRating: 4.2},
		{ID: 2, Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", Raters: 900, AverageRating: 4.6},
		{ID: 3, Title: "Project Hail Mary", Author: "Andy Weir", Genre: "science fiction", Raters: 500, AverageRating: 4.8},
		{ID: 4, Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", Raters: 900, AverageRating: 3.9},
		{ID: 5, Title: "Sale Stats", Author: "Ann 50% Off", Genre: "Business_Finance", Raters: 3, AverageRating: 2.5},
	}
}

func TestListBooks_OrdersByID(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	books := catalogue()
	insertBooks(t, db, books[3], books[0], books[4], books[2], books[1])

	all, err := svc.ListBooks(ctx, ListBooksOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(all))
	assert.Equal(t, "Matt Haig", all[0].Author)
	assert.Nil(t, all[0].PDFFilename)
}

func TestListBooks_Empty(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)

	all, err := svc.ListBooks(context.Background(), ListBooksOptions{})
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestListPopular(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		insertBooks(t, db, &models.Book{ID: i, Title: fmt.Sprintf("Book %d", i), Author: "A", Raters: i * 10})
	}
	// Ties are broken by id.
	insertBooks(t, db, &models.Book{ID: 13, Title: "Tie", Author: "A", Raters: 120})

	popular, err := svc.ListPopular(ctx)
	require.NoError(t, err)
	require.Len(t, popular, PopularLimit)
	assert.Equal(t, []int{12, 13, 11, 10, 9, 8, 7, 6, 5, 4}, ids(popular))
}

func TestRecommend(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	insertBooks(t, db, catalogue()...)

	cases := []struct {
		name string
		opts RecommendOptions
		ids  []int
	}{
		{"no filters", RecommendOptions{}, []int{1, 2, 3, 4, 5}},
		{"genre is case-insensitive", RecommendOptions{Genre: "SCIENCE"}, []int{2, 3}},
		{"genre substring", RecommendOptions{Genre: "tas"}, []int{1, 4}},
		{"author substring", RecommendOptions{Author: "weir"}, []int{3}},
		{"min rating", RecommendOptions{MinRating: 4.5}, []int{2, 3}},
		{"min rating is inclusive", RecommendOptions{MinRating: 4.6}, []int{2, 3}},
		{"zero min rating is ignored", RecommendOptions{MinRating: 0}, []int{1, 2, 3, 4, 5}},
		{"negative min rating is ignored", RecommendOptions{MinRating: -1}, []int{1, 2, 3, 4, 5}},
		{"infinite min rating matches nothing", RecommendOptions{MinRating: math.Inf(1)}, []int{}},
		{"negative infinite min rating is ignored", RecommendOptions{MinRating: math.Inf(-1)}, []int{1, 2, 3, 4, 5}},
		{"filters combine", RecommendOptions{Genre: "fantasy", MinRating: 4}, []int{1}},
		{"no match", RecommendOptions{Author: "nobody"}, []int{}},
		{"percent is literal", RecommendOptions{Author: "50%"}, []int{5}},
		{"lone percent matches only literal percent", RecommendOptions{Author: "%"}, []int{5}},
		{"underscore is literal", RecommendOptions{Genre: "s_f"}, []int{5}},
		{"escape character is literal", RecommendOptions{Genre: "!"}, []int{}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			books, err := svc.Recommend(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.ids, ids(books))
		})
	}
}

func TestCreateBook(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := &models.Book{ID: 7, Title: "Dune", Author: "Frank Herbert", Slug: "dune"}
	require.NoError(t, svc.CreateBook(ctx, book))

	id := 7
	got, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "dune", got.Slug)

	err = svc.CreateBook(ctx, &models.Book{ID: 7, Title: "Other", Author: "Someone", Slug: "other"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errcodes.Conflict("Book")))
}

func TestRetrieveBook_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)

	id := 99
	_, err := svc.RetrieveBook(context.Background(), RetrieveBookOptions{ID: &id})
	assert.True(t, errors.Is(err, errcodes.NotFound("Book")))
}

func TestUpdatePDFFilename(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	insertBooks(t, db, catalogue()...)

	require.NoError(t, svc.UpdatePDFFilename(ctx, 1, "the-midnight-library.pdf"))

	id := 1
	got, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	require.NoError(t, err)
	require.NotNil(t, got.PDFFilename)
	assert.Equal(t, "the-midnight-library.pdf", *got.PDFFilename)
	assert.True(t, got.HasPDF())

	// Other rows are untouched.
	id = 2
	other, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	require.NoError(t, err)
	assert.False(t, other.HasPDF())

	err = svc.UpdatePDFFilename(ctx, 404, "missing.pdf")
	assert.True(t, errors.Is(err, errcodes.NotFound("Book")))
}

func TestContainsPattern(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "%fantasy%", containsPattern("fantasy"))
	assert.Equal(t, "%50!%%", containsPattern("50%"))
	assert.Equal(t, "%a!_b%", containsPattern("a_b"))
	assert.Equal(t, "%wow!!%", containsPattern("wow!"))
}

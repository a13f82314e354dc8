package books

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shelfpress/shelfpress/pkg/errcodes"
	"github.com/shelfpress/shelfpress/pkg/migrations"
	"github.com/shelfpress/shelfpress/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func TestServiceCreateBook(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := &models.Book{
		Title:  "The Great Gatsby",
		Author: "F. Scott Fitzgerald",
		ISBN:   strptr("9780743273565"),
		Tags:   []string{"classic", "fiction"},
	}
	err := svc.CreateBook(ctx, book, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, book.ID)
	assert.False(t, book.CreatedAt.IsZero())
	assert.Equal(t, book.CreatedAt, book.UpdatedAt)

	fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, "The Great Gatsby", fetched.Title)
	assert.Equal(t, []string{"classic", "fiction"}, fetched.Tags)

	// Reviews come back as an empty list, never nil, so the JSON surface
	// always carries "reviews": [].
	require.NotNil(t, fetched.Reviews)
	assert.Empty(t, fetched.Reviews)

	listed, err := svc.ListBooks(ctx, ListBooksOptions{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Reviews)
	assert.Empty(t, listed[0].Reviews)
}

func TestServiceCreateBook_DefaultsTags(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := &models.Book{Title: "Dune", Author: "Frank Herbert"}
	err := svc.CreateBook(ctx, book, nil)
	require.NoError(t, err)

	fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.NotNil(t, fetched.Tags)
	assert.Empty(t, fetched.Tags)
}

func TestServiceCreateBook_RequiresTitleAndAuthor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	err := svc.CreateBook(ctx, &models.Book{Author: "Anonymous"}, nil)
	require.Error(t, err)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 422, codeErr.HTTPCode)

	err = svc.CreateBook(ctx, &models.Book{Title: "Untitled"}, nil)
	require.Error(t, err)
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 422, codeErr.HTTPCode)
}

func TestServiceCreateBook_RejectsInvalidRating(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	err := svc.CreateBook(ctx, &models.Book{
		Title:  "Dune",
		Author: "Frank Herbert",
		Rating: intptr(6),
	}, nil)
	require.Error(t, err)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 422, codeErr.HTTPCode)
}

func TestServiceCreateBook_DuplicateISBN(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first := &models.Book{
		Title:  "1984",
		Author: "George Orwell",
		ISBN:   strptr("9780451524935"),
	}
	require.NoError(t, svc.CreateBook(ctx, first, nil))

	second := &models.Book{
		Title:  "Nineteen Eighty-Four",
		Author: "George Orwell",
		ISBN:   strptr("9780451524935"),
	}
	err := svc.CreateBook(ctx, second, nil)
	require.Error(t, err)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 409, codeErr.HTTPCode)
	assert.Equal(t, "conflict", codeErr.Code)

	// The original row is untouched.
	fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &first.ID})
	require.NoError(t, err)
	assert.Equal(t, "1984", fetched.Title)
}

func TestServiceCreateBook_AllowsMultipleNilISBNs(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	require.NoError(t, svc.CreateBook(ctx, &models.Book{Title: "Notebook One", Author: "Me"}, nil))
	require.NoError(t, svc.CreateBook(ctx, &models.Book{Title: "Notebook Two", Author: "Me"}, nil))

	books, err := svc.ListBooks(ctx, ListBooksOptions{})
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestServiceCreateBook_WithInlineReview(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := &models.Book{Title: "Dune", Author: "Frank Herbert"}
	review := &models.Review{
		Title:  "A masterpiece",
		Body:   "Worth every page.",
		Rating: intptr(5),
	}
	require.NoError(t, svc.CreateBook(ctx, book, review))

	assert.NotEmpty(t, review.ID)
	require.NotNil(t, review.BookID)
	assert.Equal(t, book.ID, *review.BookID)
	assert.Equal(t, models.ReviewAuthorPlaceholder, review.Author)

	fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	require.Len(t, fetched.Reviews, 1)
	assert.Equal(t, "A masterpiece", fetched.Reviews[0].Title)
}

func TestServiceCreateBook_InlineReviewRollsBackBook(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := &models.Book{Title: "Dune", Author: "Frank Herbert"}
	review := &models.Review{Title: "Missing body"}
	err := svc.CreateBook(ctx, book, review)
	require.Error(t, err)

	count, err := db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestServiceRetrieveBook_NotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: strptr("missing")})
	require.Error(t, err)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 404, codeErr.HTTPCode)
}

func TestServiceListBooks_NewestFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	older := &models.Book{Title: "Older", Author: "A"}
	require.NoError(t, svc.CreateBook(ctx, older, nil))

	newer := &models.Book{Title: "Newer", Author: "B"}
	require.NoError(t, svc.CreateBook(ctx, newer, nil))

	// Force distinct created_at values.
	_, err := db.NewUpdate().
		Model((*models.Book)(nil)).
		Set("created_at = datetime(created_at, '-1 hour')").
		Where("id = ?", older.ID).
		Exec(ctx)
	require.NoError(t, err)

	books, err := svc.ListBooks(ctx, ListBooksOptions{})
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Newer", books[0].Title)
	assert.Equal(t, "Older", books[1].Title)
}

func TestServiceListBooks_LimitOffset(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		require.NoError(t, svc.CreateBook(ctx, &models.Book{Title: title, Author: "X"}, nil))
	}

	limit := 2
	books, err := svc.ListBooks(ctx, ListBooksOptions{Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, books, 2)

	offset := 2
	books, err = svc.ListBooks(ctx, ListBooksOptions{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestServiceUpdateBook(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := &models.Book{Title: "Drafty Title", Author: "George Orwell"}
	require.NoError(t, svc.CreateBook(ctx, book, nil))
	createdAt := book.CreatedAt

	book.Title = "1984"
	book.Rating = intptr(5)
	err := svc.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"title", "rating"}})
	require.NoError(t, err)

	fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, "1984", fetched.Title)
	require.NotNil(t, fetched.Rating)
	assert.Equal(t, 5, *fetched.Rating)
	assert.WithinDuration(t, createdAt, fetched.CreatedAt, time.Second)
	assert.True(t, fetched.UpdatedAt.After(fetched.CreatedAt))
}

func TestServiceUpdateBook_DuplicateISBN(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first := &models.Book{Title: "First", Author: "A", ISBN: strptr("111")}
	require.NoError(t, svc.CreateBook(ctx, first, nil))

	second := &models.Book{Title: "Second", Author: "B", ISBN: strptr("222")}
	require.NoError(t, svc.CreateBook(ctx, second, nil))

	second.ISBN = strptr("111")
	err := svc.UpdateBook(ctx, second, UpdateBookOptions{Columns: []string{"isbn"}})
	require.Error(t, err)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 409, codeErr.HTTPCode)
}

func TestServiceUpdateBook_NotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := &models.Book{ID: "missing", Title: "Ghost", Author: "Nobody"}
	err := svc.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"title"}})
	require.Error(t, err)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 404, codeErr.HTTPCode)
}

func TestServiceDeleteBook_NullifiesReviews(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := &models.Book{Title: "Dune", Author: "Frank Herbert"}
	review := &models.Review{Title: "Great", Body: "Loved it."}
	require.NoError(t, svc.CreateBook(ctx, book, review))

	require.NoError(t, svc.DeleteBook(ctx, book.ID))

	_, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.Error(t, err)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 404, codeErr.HTTPCode)

	// The review survives with its book reference cleared.
	orphan := new(models.Review)
	err = db.NewSelect().Model(orphan).Where("r.id = ?", review.ID).Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, orphan.BookID)
	assert.Equal(t, "Great", orphan.Title)
}

func TestServiceDeleteBook_NotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	err := svc.DeleteBook(ctx, "missing")
	require.Error(t, err)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 404, codeErr.HTTPCode)
}

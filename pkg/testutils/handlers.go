package testutils

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/filenames"
	"github.com/readsphere/readsphere/pkg/models"
	"github.com/uptrace/bun"
)

type handler struct {
	db *bun.DB
}

// createBooksRequest takes rows as stored, including the PDF filename that
// only the sync tool sets otherwise.
type createBooksRequest struct {
	Books []*models.Book `json:"books" validate:"required,min=1"`
}

type createBooksResponse struct {
	Created int `json:"created"`
}

// createBooks inserts the given books as is.
// POST /test/books.
func (h *handler) createBooks(c echo.Context) error {
	ctx := c.Request().Context()

	var req createBooksRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	for _, book := range req.Books {
		if book.Slug == "" {
			book.Slug = filenames.Slugify(book.Title)
		}
	}

	_, err := h.db.NewInsert().
		Model(&req.Books).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to create books")
	}

	return c.JSON(http.StatusCreated, createBooksResponse{
		Created: len(req.Books),
	})
}

type deleteAllBooksResponse struct {
	Deleted int `json:"deleted"`
}

// deleteAllBooks deletes all books from the database.
// DELETE /test/books.
func (h *handler) deleteAllBooks(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.db.NewDelete().
		Model((*models.Book)(nil)).
		Where("1=1").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to delete books")
	}

	deleted, _ := result.RowsAffected()

	return c.JSON(http.StatusOK, deleteAllBooksResponse{
		Deleted: int(deleted),
	})
}

package books

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/errcodes"
	"github.com/readsphere/readsphere/pkg/models"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	bookService *Service
}

func (h *handler) listAll(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListBooks(ctx, ListBooksOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		AllBooks []*models.Book `json:"all_books"`
	}{books}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) popular(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListPopular(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		PopularBooks []*models.Book `json:"popular_books"`
	}{books}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) personalized(c echo.Context) error {
	ctx := c.Request().Context()

	// The web client sends whatever its form holds, so be lenient here.
	c.Set("disallow_unknown_fields", false)
	c.Set("disallow_empty_body", false)

	// Bind params.
	params := PersonalizedPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, err := h.bookService.Recommend(ctx, params.Options())
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		RecommendedBooks []*models.Book `json:"recommended_books"`
	}{books}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) similar(_ echo.Context) error {
	return errcodes.EndpointDisabled()
}

func (h *handler) add(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := AddBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book := params.Book()
	if err := h.bookService.CreateBook(ctx, book); err != nil {
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("book added", logger.Data{"book_id": book.ID, "slug": book.Slug})

	resp := struct {
		Message string `json:"message"`
		Book    struct {
			*models.Book
			Language string `json:"LANGUAGE,omitempty"`
		} `json:"book"`
	}{Message: "Book added successfully"}
	resp.Book.Book = book
	resp.Book.Language = params.Language

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

package books

import (
	"context"
	"database/sql"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/errcodes"
	"github.com/readsphere/readsphere/pkg/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PopularLimit is the number of books returned by the popularity ranking.
const PopularLimit = 10

const likeEscape = "!"

var likeEscaper = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

type RetrieveBookOptions struct {
	ID *int
}

type ListBooksOptions struct {
	Limit *int

	// OrderByPopularity sorts by rating count, most rated first. Otherwise
	// books come back in id order.
	OrderByPopularity bool
}

// RecommendOptions are the filters of a personalized recommendation. Empty
// strings and a non-positive MinRating disable the respective filter.
type RecommendOptions struct {
	Genre     string
	Author    string
	MinRating float64
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return errcodes.Conflict("Book")
		}
		return errors.WithStack(err)
	}
	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books)

	if opts.OrderByPopularity {
		q = q.Order("b.raters DESC", "b.id ASC")
	} else {
		q = q.Order("b.id ASC")
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// ListPopular returns the most rated books.
func (svc *Service) ListPopular(ctx context.Context) ([]*models.Book, error) {
	limit := PopularLimit
	return svc.ListBooks(ctx, ListBooksOptions{
		Limit:             &limit,
		OrderByPopularity: true,
	})
}

// Recommend returns every book matching all of the active filters. Genre and
// author are case-insensitive substring matches.
func (svc *Service) Recommend(ctx context.Context, opts RecommendOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	// No rating reaches an infinite threshold, and the dialects disagree on
	// how to bind one.
	if math.IsInf(opts.MinRating, 1) {
		return books, nil
	}

	q := svc.db.
		NewSelect().
		Model(&books)

	if opts.Genre != "" {
		q = q.Where("LOWER(b.genre) LIKE LOWER(?) ESCAPE '"+likeEscape+"'", containsPattern(opts.Genre))
	}
	if opts.Author != "" {
		q = q.Where("LOWER(b.author) LIKE LOWER(?) ESCAPE '"+likeEscape+"'", containsPattern(opts.Author))
	}
	if opts.MinRating > 0 {
		q = q.Where("b.average_rating >= ?", opts.MinRating)
	}

	err := q.Order("b.id ASC").Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// UpdatePDFFilename records the stored PDF that belongs to the book.
func (svc *Service) UpdatePDFFilename(ctx context.Context, id int, filename string) error {
	res, err := svc.db.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("pdf_filename = ?", filename).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	// sqlite drivers only expose the constraint failure through the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

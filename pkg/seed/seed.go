// Package seed loads the starter catalogue into the books table.
package seed

import (
	"bytes"
	"context"
	_ "embed"

	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/filenames"
	"github.com/readsphere/readsphere/pkg/models"
	"github.com/robinjoseph08/golib/logger"
	"gopkg.in/yaml.v3"
)

//go:embed books.yaml
var catalogue []byte

type Entry struct {
	ID            int     `yaml:"id"`
	Title         string  `yaml:"title"`
	Author        string  `yaml:"author"`
	Genre         string  `yaml:"genre"`
	Raters        int     `yaml:"raters"`
	AverageRating float64 `yaml:"average_rating"`
	CoverURL      string  `yaml:"cover_url"`
	Link          string  `yaml:"link"`
}

// Book converts the entry into a record. Without an id the database assigns
// one.
func (e Entry) Book() *models.Book {
	return &models.Book{
		ID:            e.ID,
		Title:         e.Title,
		Author:        e.Author,
		Genre:         e.Genre,
		Raters:        e.Raters,
		AverageRating: e.AverageRating,
		CoverURL:      e.CoverURL,
		Link:          e.Link,
		Slug:          filenames.Slugify(e.Title),
	}
}

// Load parses the embedded catalogue.
func Load() ([]Entry, error) {
	return Parse(catalogue)
}

func Parse(data []byte) ([]Entry, error) {
	var doc struct {
		Books []Entry `yaml:"books"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse seed catalogue")
	}

	for i, e := range doc.Books {
		if e.Title == "" || e.Author == "" {
			return nil, errors.Errorf("seed entry %d needs both a title and an author", i)
		}
	}

	return doc.Books, nil
}

// BookCreator is the part of the books service the seeder needs.
type BookCreator interface {
	CreateBook(ctx context.Context, book *models.Book) error
}

type Failure struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

type Report struct {
	Inserted []string  `json:"inserted"`
	Failures []Failure `json:"failures"`
}

type Seeder struct {
	books   BookCreator
	entries []Entry
}

func NewSeeder(books BookCreator, entries []Entry) *Seeder {
	return &Seeder{books, entries}
}

// Run inserts every entry in order. A failed insert is logged and reported
// and the remaining entries are still inserted.
func (s *Seeder) Run(ctx context.Context) *Report {
	log := logger.FromContext(ctx)
	report := &Report{Inserted: []string{}, Failures: []Failure{}}

	for _, e := range s.entries {
		book := e.Book()
		if err := s.books.CreateBook(ctx, book); err != nil {
			log.Warn("could not insert book", logger.Data{"title": e.Title, "error": err.Error()})
			report.Failures = append(report.Failures, Failure{Title: e.Title, Error: err.Error()})
			continue
		}
		log.Info("inserted book", logger.Data{"title": e.Title, "book_id": book.ID})
		report.Inserted = append(report.Inserted, e.Title)
	}

	log.Info("seeding complete", logger.Data{"inserted": len(report.Inserted), "failed": len(report.Failures)})
	return report
}

package reconcile

import (
	"context"

	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/books"
	"github.com/readsphere/readsphere/pkg/filenames"
	"github.com/readsphere/readsphere/pkg/metrics"
	"github.com/readsphere/readsphere/pkg/storage"
	"github.com/robinjoseph08/golib/logger"
)

type Match struct {
	BookID   int    `json:"book_id"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
}

type SyncReport struct {
	DryRun bool `json:"dry_run"`

	Updates []Match `json:"updates"`
	// Misses are books with no file named after their slug. Filename holds
	// the name that was looked for.
	Misses   []Match   `json:"misses"`
	Failures []Failure `json:"failures"`
}

func (r *SyncReport) Updated() int {
	return len(r.Updates)
}

func (r *SyncReport) Unmatched() int {
	return len(r.Misses)
}

func (r *SyncReport) Failed() int {
	return len(r.Failures)
}

// Syncer records on each book the bucket file named after its title slug.
// It never touches the bucket itself.
type Syncer struct {
	store storage.Client
	books BookStore
	opts  Options
}

func NewSyncer(store storage.Client, books BookStore, opts Options) *Syncer {
	return &Syncer{store, books, opts}
}

func (s *Syncer) Sync(ctx context.Context, bucket string) (*SyncReport, error) {
	log := logger.FromContext(ctx)

	objects, err := s.store.List(ctx, bucket)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bucket")
	}

	files := make(map[string]bool, len(objects))
	for _, obj := range objects {
		if !obj.IsFolder() {
			files[obj.Name] = true
		}
	}

	all, err := s.books.ListBooks(ctx, books.ListBooksOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list books")
	}
	log.Info("loaded bucket and books", logger.Data{"bucket": bucket, "files": len(files), "books": len(all)})

	report := &SyncReport{
		DryRun:   s.opts.DryRun,
		Updates:  []Match{},
		Misses:   []Match{},
		Failures: []Failure{},
	}

	matched := []Match{}
	for _, book := range all {
		m := Match{BookID: book.ID, Title: book.Title, Filename: filenames.ExpectedPDFName(book.Title)}
		if !files[m.Filename] {
			log.Info("no file for book", logger.Data{"book_id": m.BookID, "title": m.Title, "expected": m.Filename})
			report.Misses = append(report.Misses, m)
			metrics.RecordReconcileItem(metrics.RunSync, "unmatched")
			continue
		}
		matched = append(matched, m)
	}

	errs := make([]error, len(matched))
	if !s.opts.DryRun {
		each(len(matched), s.opts.limit(), func(i int) {
			errs[i] = s.books.UpdatePDFFilename(ctx, matched[i].BookID, matched[i].Filename)
		})
	}

	for i, m := range matched {
		if err := errs[i]; err != nil {
			log.Warn("failed to update book", logger.Data{"book_id": m.BookID, "filename": m.Filename, "error": err.Error()})
			report.Failures = append(report.Failures, Failure{Name: m.Title, Error: err.Error()})
			metrics.RecordReconcileItem(metrics.RunSync, "failed")
			continue
		}
		log.Info("matched book to file", logger.Data{"book_id": m.BookID, "filename": m.Filename, "dry_run": s.opts.DryRun})
		report.Updates = append(report.Updates, m)
		metrics.RecordReconcileItem(metrics.RunSync, "updated")
	}

	log.Info("sync finished", logger.Data{
		"bucket":    bucket,
		"updated":   report.Updated(),
		"unmatched": report.Unmatched(),
		"failed":    report.Failed(),
		"dry_run":   report.DryRun,
	})

	return report, nil
}

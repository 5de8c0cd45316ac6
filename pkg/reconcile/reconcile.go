// Package reconcile keeps the PDF bucket and the books table in line with each
// other. Both runs are full passes with no state carried between invocations,
// and a failure on one item never stops the others.
package reconcile

import (
	"context"

	"github.com/readsphere/readsphere/pkg/books"
	"github.com/readsphere/readsphere/pkg/models"
	"golang.org/x/sync/errgroup"
)

// BookStore is the part of the books service the sync run needs.
type BookStore interface {
	ListBooks(ctx context.Context, opts books.ListBooksOptions) ([]*models.Book, error)
	UpdatePDFFilename(ctx context.Context, id int, filename string) error
}

var _ BookStore = (*books.Service)(nil)

type Options struct {
	// DryRun computes and reports every decision without renaming objects or
	// writing rows.
	DryRun bool
	// Concurrency bounds how many items are processed at once. Values below 1
	// mean one at a time.
	Concurrency int
}

func (o Options) limit() int {
	if o.Concurrency < 1 {
		return 1
	}
	return o.Concurrency
}

// each runs fn for every index in [0, n) with at most limit calls in flight.
// fn reports its own failures, so the group never short-circuits.
func each(n, limit int, fn func(i int)) {
	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

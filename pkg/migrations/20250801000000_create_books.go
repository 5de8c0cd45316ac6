package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	// Snapshot of the books table at the time of this migration, so later
	// model changes don't rewrite history.
	type book struct {
		bun.BaseModel `bun:"table:books"`

		ID            int     `bun:",pk,autoincrement"`
		Title         string  `bun:",notnull"`
		Author        string  `bun:",notnull"`
		Genre         string  `bun:",notnull"`
		Raters        int     `bun:",notnull"`
		AverageRating float64 `bun:",notnull"`
		CoverURL      string  `bun:"cover_url,notnull"`
		Link          string  `bun:",notnull"`
		Slug          string  `bun:",notnull"`
		PDFFilename   *string `bun:"pdf_filename"`
	}

	up := func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewCreateTable().
			Model((*book)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		// Backs the popularity ranking.
		_, err = db.NewCreateIndex().
			Model((*book)(nil)).
			Index("ix_books_raters").
			Column("raters").
			IfNotExists().
			Exec(ctx)
		return errors.WithStack(err)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().
			Model((*book)(nil)).
			IfExists().
			Exec(ctx)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}

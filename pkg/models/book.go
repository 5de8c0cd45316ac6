package models

import (
	"github.com/uptrace/bun"
)

// Book is a row of the books table. The JSON names follow the keys the web
// client already consumes.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID            int     `bun:",pk,autoincrement" json:"id"`
	Title         string  `bun:",notnull" json:"BOOK_TITLE"`
	Author        string  `bun:",notnull" json:"BOOK_AUTHOR"`
	Genre         string  `bun:",notnull" json:"GENRE"`
	Raters        int     `bun:",notnull" json:"RATERS"`
	AverageRating float64 `bun:",notnull" json:"A_RATINGS"`
	CoverURL      string  `bun:"cover_url,notnull" json:"F_PAGE"`
	Link          string  `bun:",notnull" json:"LINK"`
	Slug          string  `bun:",notnull" json:"slug"`
	PDFFilename   *string `bun:"pdf_filename" json:"PDF_FILENAME"`
}

// HasPDF reports whether the sync tool has matched a stored PDF to this book.
func (b *Book) HasPDF() bool {
	return b.PDFFilename != nil && *b.PDFFilename != ""
}

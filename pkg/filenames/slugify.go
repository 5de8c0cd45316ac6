package filenames

import (
	"regexp"
	"strings"
)

// PDFExtension is appended to a slug to get the filename a book's PDF is
// expected to be stored under.
const PDFExtension = ".pdf"

var nonWordRE = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// Slugify derives the lookup slug for a book title. It is looser
// than Canonicalize. Hyphen runs and edge hyphens are kept, and any
// Unicode letter or number survives.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = strings.NewReplacer(" ", "-", "_", "-").Replace(slug)
	return nonWordRE.ReplaceAllString(slug, "")
}

// ExpectedPDFName is the filename the sync tool looks for in the bucket for a
// given title.
func ExpectedPDFName(title string) string {
	return Slugify(title) + PDFExtension
}

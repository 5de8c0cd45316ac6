package books

import (
	"math"
	"strconv"
	"strings"

	"github.com/readsphere/readsphere/pkg/filenames"
	"github.com/readsphere/readsphere/pkg/models"
	"github.com/segmentio/encoding/json"
)

type AddBookPayload struct {
	ID            int     `json:"id" validate:"required,min=1"`
	Title         string  `json:"BOOK_TITLE" mod:"trim" validate:"required,max=500"`
	Author        string  `json:"BOOK_AUTHOR" mod:"trim" validate:"required,max=300"`
	Genre         string  `json:"GENRE" mod:"trim" validate:"max=200"`
	Language      string  `json:"LANGUAGE,omitempty" mod:"trim" validate:"max=50"`
	Raters        int     `json:"RATERS" validate:"min=0"`
	AverageRating float64 `json:"A_RATINGS" validate:"min=0,max=5"`
	CoverURL      string  `json:"F_PAGE" mod:"trim" validate:"weburl"`
	Link          string  `json:"LINK" mod:"trim" validate:"weburl"`
	Slug          string  `json:"slug,omitempty" mod:"trim" validate:"max=500"`
}

// Book converts the payload into a record, deriving the slug from the title
// when the caller didn't provide one.
func (p *AddBookPayload) Book() *models.Book {
	slug := p.Slug
	if slug == "" {
		slug = filenames.Slugify(p.Title)
	}
	return &models.Book{
		ID:            p.ID,
		Title:         p.Title,
		Author:        p.Author,
		Genre:         p.Genre,
		Raters:        p.Raters,
		AverageRating: p.AverageRating,
		CoverURL:      p.CoverURL,
		Link:          p.Link,
		Slug:          slug,
	}
}

type PersonalizedPayload struct {
	Genre     string    `json:"genre" mod:"trim"`
	Author    string    `json:"author" mod:"trim"`
	MinRating MinRating `json:"min_rating"`
}

// MinRating is a lenient rating threshold. Numbers and numeric strings are
// used as is, "inf" included; anything else, including null, "" and "NaN",
// means no threshold.
type MinRating float64

func (r *MinRating) UnmarshalJSON(data []byte) error {
	*r = 0

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case bool:
		if t {
			f = 1
		}
	default:
		return nil
	}

	if math.IsNaN(f) {
		return nil
	}
	*r = MinRating(f)
	return nil
}

func (p *PersonalizedPayload) Options() RecommendOptions {
	return RecommendOptions{
		Genre:     p.Genre,
		Author:    p.Author,
		MinRating: float64(p.MinRating),
	}
}

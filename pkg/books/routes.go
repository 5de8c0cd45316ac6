package books

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the recommendation and admin routes on the root of
// the server, where the web client expects them.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
	}

	recommend := e.Group("/recommend")
	recommend.GET("/all_books", h.listAll)
	recommend.GET("/popularity", h.popular)
	recommend.POST("/personalized", h.personalized)
	recommend.POST("/similar", h.similar)

	admin := e.Group("/admin")
	admin.POST("/add_book", h.add)
}

package metrics

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/errcodes"
)

// Middleware records a request counter and latency histogram per route. The
// route is the registered path pattern, so ids in URLs don't blow up the label
// cardinality.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			RecordHTTPRequest(c.Request().Method, route, responseStatus(c, err), time.Since(start))
			return err
		}
	}
}

// responseStatus is the status the error handler is going to write when the
// handler returned an error, since the response hasn't been committed yet.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}

	var e *errcodes.Error
	if errors.As(err, &e) {
		return e.HTTPCode
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

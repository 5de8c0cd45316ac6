package binder

import (
	"net/url"

	"github.com/go-playground/validator/v10"
)

// webURLValidator ensures the value is an absolute http(s) URL or the empty
// string. Cover and link URLs are optional on books, so add `required` to the
// tag as well if the empty string shouldn't be allowed.
func webURLValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

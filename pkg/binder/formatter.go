package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

const (
	mx       = "max"
	mn       = "min"
	required = "required"
	weburl   = "weburl"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case mx:
		return formatBound(field, "less than or equal to", err.Param(), err.Kind())
	case mn:
		return formatBound(field, "greater than or equal to", err.Param(), err.Kind())
	case required:
		return fmt.Sprintf("%q is required", field)
	case weburl:
		return fmt.Sprintf("%q must be an http or https URL", field)
	default:
		logger.New().Warn("no message for validation tag", logger.Data{
			"tag":   err.Tag(),
			"field": err.StructNamespace(),
			"param": err.Param(),
		})
		return fmt.Sprintf("%q is invalid", field)
	}
}

// formatBound words a min/max failure. Numbers are compared by value, slices
// by element count and everything else by character count.
func formatBound(field, comparison, param string, kind reflect.Kind) string {
	unit := "character"

	//exhaustive:ignore
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s %s", field, comparison, param)
	case reflect.Slice:
		unit = "element"
	}

	if param != "1" {
		unit += "s"
	}
	return fmt.Sprintf("%q length must be %s %s %s", field, comparison, param, unit)
}

package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/iancoleman/strcase"
	"github.com/segmentio/encoding/json"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

type messageFunc func(err validator.FieldError, field string) string

var messages = map[string]messageFunc{
	"date": func(_ validator.FieldError, field string) string {
		return fmt.Sprintf("%q should be in the format of YYYY-MM-DD", field)
	},
	"email": func(_ validator.FieldError, field string) string {
		return fmt.Sprintf("%q is not a valid email", field)
	},
	"eqfield": func(err validator.FieldError, field string) string {
		return fmt.Sprintf("%q must match %q", field, strcase.ToLowerCamel(err.Param()))
	},
	"gt": func(err validator.FieldError, field string) string {
		return fmt.Sprintf("%q must be greater than %s", field, err.Param())
	},
	"gte": func(err validator.FieldError, field string) string {
		return fmt.Sprintf("%q must be greater than or equal to %s", field, err.Param())
	},
	"max": func(err validator.FieldError, field string) string {
		return bound(err, field, "less than or equal to")
	},
	"min": func(err validator.FieldError, field string) string {
		return bound(err, field, "greater than or equal to")
	},
	"ne": func(err validator.FieldError, field string) string {
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	},
	"notblank": func(_ validator.FieldError, field string) string {
		return fmt.Sprintf("%q can't be blank", field)
	},
	"oneof": func(err validator.FieldError, field string) string {
		valids := []string{}
		for _, p := range strings.Fields(err.Param()) {
			valids = append(valids, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	},
	"required": func(_ validator.FieldError, field string) string {
		return fmt.Sprintf("%q is required", field)
	},
	"uuid": func(_ validator.FieldError, field string) string {
		return fmt.Sprintf("%q must be a valid id", field)
	},
}

// formatValidationError renders a validator failure using the JSON name of
// the field. Tags without a message of their own read as invalid.
func formatValidationError(err validator.FieldError, field string) string {
	if msg, ok := messages[err.Tag()]; ok {
		return msg(err, field)
	}
	return fmt.Sprintf("%q is invalid", field)
}

// bound renders min and max, which compare values for numbers and lengths
// for everything else.
func bound(err validator.FieldError, field, cmp string) string {
	//exhaustive:ignore
	switch err.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s %s", field, cmp, err.Param())
	}

	unit := "character"
	if err.Kind() == reflect.Slice || err.Kind() == reflect.Map {
		unit = "element"
	}
	if err.Param() != "1" {
		unit += "s"
	}
	return fmt.Sprintf("%q length must be %s %s %s", field, cmp, err.Param(), unit)
}

package binder

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var dateRE = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$`)

// dateValidator accepts YYYY-MM-DD. An empty value passes so optional dates
// such as publishedDate can be cleared; pair it with required otherwise.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || dateRE.MatchString(value)
}

func notBlankValidator(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

package binder

import (
	"reflect"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
)

type fieldError struct {
	tag   string
	param string
	kind  reflect.Kind
}

func (e *fieldError) Error() string                    { return "field error" }
func (e *fieldError) Tag() string                      { return e.tag }
func (e *fieldError) ActualTag() string                { return e.tag }
func (e *fieldError) Namespace() string                { return "" }
func (e *fieldError) StructNamespace() string          { return "" }
func (e *fieldError) Field() string                    { return "Field" }
func (e *fieldError) StructField() string              { return "Field" }
func (e *fieldError) Value() interface{}               { return "" }
func (e *fieldError) Param() string                    { return e.param }
func (e *fieldError) Type() reflect.Type               { return reflect.TypeOf("") }
func (e *fieldError) Translate(_ ut.Translator) string { return "" }
func (e *fieldError) Kind() reflect.Kind {
	if e.kind == reflect.Invalid {
		return reflect.String
	}
	return e.kind
}

func TestFormatValidationError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tag   string
		param string
		kind  reflect.Kind
		msg   string
	}{
		{"required", "", 0, `"chapterName" is required`},
		{"notblank", "", 0, `"chapterName" can't be blank`},
		{"email", "", 0, `"chapterName" is not a valid email`},
		{"date", "", 0, `"chapterName" should be in the format of YYYY-MM-DD`},
		{"eqfield", "NewPassword", 0, `"chapterName" must match "newPassword"`},
		{"gt", "0", 0, `"chapterName" must be greater than 0`},
		{"max", "20", reflect.String, `"chapterName" length must be less than or equal to 20 characters`},
		{"min", "1", reflect.String, `"chapterName" length must be greater than or equal to 1 character`},
		{"max", "100", reflect.Int64, `"chapterName" must be less than or equal to 100`},
		{"min", "0", reflect.Float64, `"chapterName" must be greater than or equal to 0`},
		{"max", "5", reflect.Slice, `"chapterName" length must be less than or equal to 5 elements`},
		{"min", "1", reflect.Map, `"chapterName" length must be greater than or equal to 1 element`},
		{"ne", "20", 0, `"chapterName" can't be "20"`},
		{"oneof", "PDF EPUB", 0, `"chapterName" must be one of the following: "PDF", "EPUB"`},
		{"uuid", "", 0, `"chapterName" must be a valid id`},
		{"startswith", "x", 0, `"chapterName" is invalid`},
	}

	for _, tt := range cases {
		err := &fieldError{tag: tt.tag, param: tt.param, kind: tt.kind}
		assert.Equal(t, tt.msg, formatValidationError(err, "chapterName"), tt.tag)
	}
}

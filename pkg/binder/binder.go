package binder

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
)

// PayloadField is the multipart form field that carries the JSON document of a
// request that also uploads files.
const PayloadField = "payload"

var unknownFieldsRE = regexp.MustCompile(`^json: unknown field "(.*)"$`)

var (
	fileHeaderType     = reflect.TypeOf((*multipart.FileHeader)(nil))
	fileHeaderListType = reflect.TypeOf([]*multipart.FileHeader{})
)

// Binder is a custom struct that implements the Echo Binder interface. It binds
// to a struct, uses mold to clean up the params, and validator to validate
// them.
type Binder struct {
	queryDecoder *schema.Decoder
	formDecoder  *schema.Decoder
	conform      *mold.Transformer
	validate     *validator.Validate
}

// New initializes a new Binder instance with the appropriate validation
// functions registered.
func New() (*Binder, error) {
	queryDecoder := schema.NewDecoder()
	queryDecoder.SetAliasTag("query")
	formDecoder := schema.NewDecoder()
	formDecoder.SetAliasTag("form")
	conform := modifiers.New()
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("date", dateValidator); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := validate.RegisterValidation("notblank", notBlankValidator); err != nil {
		return nil, errors.WithStack(err)
	}

	return &Binder{queryDecoder, formDecoder, conform, validate}, nil
}

// Bind binds, modifies, and validates payloads against the given struct.
func (b *Binder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()
	log := logger.FromEchoContext(c)

	disallowEmptyBody := true
	if disallow, ok := c.Get("disallow_empty_body").(bool); ok {
		disallowEmptyBody = disallow
	}

	if req.ContentLength != 0 {
		// request has a body
		ctype := req.Header.Get(echo.HeaderContentType)
		switch {
		// allow application/json
		case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
			defer req.Body.Close()
			dec := json.NewDecoder(req.Body)
			if err := b.decodeJSON(c, dec, i); err != nil {
				return err
			}
		case strings.HasPrefix(ctype, echo.MIMEMultipartForm):
			form, err := c.MultipartForm()
			if err != nil {
				return errcodes.MalformedPayload()
			}
			if payload, ok := form.Value[PayloadField]; ok && len(payload) > 0 {
				dec := json.NewDecoder(strings.NewReader(payload[0]))
				if err := b.decodeJSON(c, dec, i); err != nil {
					return err
				}
			} else if err := b.decodeQuery(i, form.Value, b.formDecoder); err != nil {
				return errors.WithStack(err)
			}
			setFormFiles(i, form.File)
		case strings.HasPrefix(ctype, echo.MIMEApplicationForm):
			params, err := c.FormParams()
			if err != nil {
				return errcodes.MalformedPayload()
			}
			if err := b.decodeQuery(i, params, b.formDecoder); err != nil {
				return errors.WithStack(err)
			}
		default:
			return errcodes.UnsupportedMediaType()
		}
	} else {
		// request doesn't have a body
		if req.Method == http.MethodGet || req.Method == http.MethodDelete {
			if err := b.decodeQuery(i, c.QueryParams(), b.queryDecoder); err != nil {
				return errors.WithStack(err)
			}
		} else if disallowEmptyBody {
			return errcodes.EmptyRequestBody()
		}
	}

	if err := b.conform.Struct(req.Context(), i); err != nil {
		return errors.WithStack(err)
	}

	if err := defaults.Set(i); err != nil {
		return errors.WithStack(err)
	}

	if err := b.validate.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) || len(errs) == 0 {
			log.Err(err).Error("unknown validation error")
			return errors.WithStack(err)
		}
		field := fieldPath(errs[0])
		return errcodes.FieldValidationError(field, formatValidationError(errs[0], field))
	}
	return nil
}

func (b *Binder) decodeJSON(c echo.Context, dec *json.Decoder, i interface{}) error {
	disallowUnknownFields := true
	if disallow, ok := c.Get("disallow_unknown_fields").(bool); ok {
		disallowUnknownFields = disallow
	}
	if disallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(i); err != nil {
		// return better error message when there are unknown fields
		if matches := unknownFieldsRE.FindAllStringSubmatch(err.Error(), -1); len(matches) > 0 && len(matches[0]) > 1 {
			return errcodes.UnknownParameter(matches[0][1])
		}

		// return better error message on type errors
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return errcodes.ValidationTypeError(formatUnmarshalTypeError(typeErr))
		}

		logger.FromEchoContext(c).Err(err).Error("unknown json decode error")

		return errcodes.MalformedPayload()
	}
	return nil
}

func (b *Binder) decodeQuery(i interface{}, params url.Values, decoder *schema.Decoder) error {
	if err := decoder.Decode(i, params); err != nil {
		if errs, ok := err.(schema.MultiError); ok {
			var err error
			for _, err = range errs {
				break
			}

			if err, ok := err.(schema.ConversionError); ok {
				msg := formatSchemaConversionError(err)
				return errcodes.ValidationTypeError(msg)
			}
			if err, ok := err.(schema.UnknownKeyError); ok {
				return errcodes.UnknownParameter(err.Key)
			}

			return errors.WithStack(err)
		}
		return errors.WithStack(err)
	}
	return nil
}

// setFormFiles copies uploaded files onto the target. A FormFiles field of
// type map[string]*multipart.FileHeader receives the first file of every form
// key, and a FormFileLists field of type map[string][]*multipart.FileHeader
// receives all of them.
func setFormFiles(i interface{}, files map[string][]*multipart.FileHeader) {
	if len(files) == 0 {
		return
	}
	v := reflect.ValueOf(i)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}

	single := v.Elem().FieldByName("FormFiles")
	if single.IsValid() && single.CanSet() && single.Type().Elem() == fileHeaderType {
		single.Set(reflect.MakeMap(single.Type()))
		for key, headers := range files {
			// only pull the first file
			if len(headers) > 0 {
				single.SetMapIndex(reflect.ValueOf(key), reflect.ValueOf(headers[0]))
			}
		}
	}

	lists := v.Elem().FieldByName("FormFileLists")
	if lists.IsValid() && lists.CanSet() && lists.Type().Elem() == fileHeaderListType {
		lists.Set(reflect.MakeMap(lists.Type()))
		for key, headers := range files {
			lists.SetMapIndex(reflect.ValueOf(key), reflect.ValueOf(headers))
		}
	}
}

// fieldPath returns the JSON path of the failing field without the name of
// the root struct, e.g. subCategories[0].name.
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return err.Field()
}

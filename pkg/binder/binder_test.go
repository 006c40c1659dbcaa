package binder

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Hello string `json:"hello" mod:"trim" validate:"max=9"`
	Omit  string `json:"-"`
}

type nestedChild struct {
	Name string `json:"name" validate:"notblank"`
}

type nestedParams struct {
	Children []nestedChild `json:"children" validate:"dive"`
}

type uploadParams struct {
	Name          string                             `json:"name" validate:"required"`
	FormFiles     map[string]*multipart.FileHeader   `json:"-"`
	FormFileLists map[string][]*multipart.FileHeader `json:"-"`
}

var (
	goodJSON             = `{"hello":" world "}`
	unknownFieldsErrJSON = `{"hello":"world","foo":"bar"}`
	typeErrJSON          = `{"hello":123}`
	validationErrJSON    = `{"hello":"0123456789"}`
)

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("only allows json and form bodies", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"hello" should be of type string`)
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "world", p.Hello)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "length must be less than or equal to 9 characters")
	})

	t.Run("reports the nested path of a failing field", func(tt *testing.T) {
		c := newContext(`{"children":[{"name":"a"},{"name":"  "}]}`, echo.MIMEApplicationJSON)
		p := nestedParams{}
		err := b.Bind(&p, c)
		var codeErr *errcodes.Error
		require.ErrorAs(tt, err, &codeErr)
		assert.Equal(tt, "validation_error", codeErr.Code)
		assert.Equal(tt, map[string]string{"field": "children[1].name"}, codeErr.Details)
	})

	t.Run("decodes the payload field and collects files of a multipart body", func(tt *testing.T) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		require.NoError(tt, w.WriteField(PayloadField, `{"name":"Dune"}`))
		fw, err := w.CreateFormFile("material.completeMaterials[0].source", "dune.pdf")
		require.NoError(tt, err)
		_, err = fw.Write([]byte("%PDF-1.4"))
		require.NoError(tt, err)
		for _, name := range []string{"a.png", "b.png"} {
			fw, err = w.CreateFormFile("additionalImages", name)
			require.NoError(tt, err)
			_, err = fw.Write([]byte("img"))
			require.NoError(tt, err)
		}
		require.NoError(tt, w.Close())

		c := newContext(body.String(), w.FormDataContentType())
		p := uploadParams{}
		require.NoError(tt, b.Bind(&p, c))
		assert.Equal(tt, "Dune", p.Name)
		require.Contains(tt, p.FormFiles, "material.completeMaterials[0].source")
		assert.Equal(tt, "dune.pdf", p.FormFiles["material.completeMaterials[0].source"].Filename)
		assert.Len(tt, p.FormFileLists["additionalImages"], 2)
	})
}

func newContext(payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.POST, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}

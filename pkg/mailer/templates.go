package mailer

import (
	"bytes"
	"html/template"

	"github.com/pkg/errors"
)

var librarianWelcome = template.Must(template.New("librarian_welcome").Parse(`<p>Hello {{.FirstName}},</p>
<p>A librarian account has been created for you.</p>
<p>Your email verification code is <strong>{{.EmailCode}}</strong>.</p>
<p>Use the password provided by your administrator to sign in.</p>`))

type LibrarianWelcome struct {
	FirstName string
	EmailCode string
}

const LibrarianWelcomeSubject = "Welcome to the library"

func (d LibrarianWelcome) Render() (string, error) {
	var buf bytes.Buffer
	if err := librarianWelcome.Execute(&buf, d); err != nil {
		return "", errors.WithStack(err)
	}
	return buf.String(), nil
}

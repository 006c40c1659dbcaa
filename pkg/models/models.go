package models

import (
	"database/sql/driver"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// NewID returns a new random entity identifier.
func NewID() string {
	return uuid.NewString()
}

// StringList is a list of strings stored as a JSON array in a TEXT column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	*l = StringList{}
	return scanJSON(src, (*[]string)(l))
}

// Contains reports whether s is in the list.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// ContainsPattern returns the LIKE pattern that matches a StringList column
// containing id.
func ContainsPattern(id string) string {
	return `%"` + id + `"%`
}

func scanJSON(src interface{}, dst interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return errors.Errorf("unsupported type %T for json column", src)
	}
	if len(b) == 0 {
		return nil
	}
	return errors.WithStack(json.Unmarshal(b, dst))
}

func valueJSON(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return string(b), nil
}

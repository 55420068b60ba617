package postgresql

import (
	"encoding/json"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

// EncodeJSON renders a structured value as the canonical text stored in TEXT
// columns. Dates marshal through date.Date, i.e. as YYYY-MM-DD.
func EncodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encoding json column")
	}
	return string(b), nil
}

// DecodeJSON is the inverse of EncodeJSON.
func DecodeJSON(s string, v any) error {
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return errors.Wrap(err, "decoding json column")
	}
	return nil
}

// FormatDate returns the string form used when binding a DATE parameter.
func FormatDate(d *date.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// ParseDate reads a DATE column selected as text. Drivers that render dates
// with a time part are accepted by keeping the leading YYYY-MM-DD.
func ParseDate(s *string) (*date.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}

	v := *s
	if len(v) > len("2006-01-02") {
		v = v[:len("2006-01-02")]
	}

	d, err := date.ParseDate(v)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing date %q", *s)
	}
	return &d, nil
}

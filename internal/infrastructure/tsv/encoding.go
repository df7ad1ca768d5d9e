package tsv

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// ErrUndecodable is returned when a body is neither UTF-8 nor ISO-8859-1
var ErrUndecodable = errors.New("tsv: body is not valid UTF-8 or ISO-8859-1")

// DecodeText returns the body as UTF-8. Bodies that are not valid UTF-8
// are decoded as ISO-8859-1.
func DecodeText(body []byte) ([]byte, error) {
	if utf8.Valid(body) {
		return body, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return nil, ErrUndecodable
	}
	return out, nil
}

// Decimal parses a numeric column. A blank value reads as zero.
func (r Row) Decimal(col string) (decimal.Decimal, error) {
	v := strings.TrimSpace(r.fields[col])
	if v == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v)
}

// DecimalOrZero parses a numeric column and treats anything unparsable as zero
func (r Row) DecimalOrZero(col string) decimal.Decimal {
	d, err := r.Decimal(col)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Bool reads report flags such as "Yes"/"No" or "true"/"false"
func (r Row) Bool(col string) bool {
	switch strings.ToLower(strings.TrimSpace(r.fields[col])) {
	case "yes", "true", "y", "1":
		return true
	}
	return false
}

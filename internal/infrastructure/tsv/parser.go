package tsv

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPayload is returned when the payload holds no bytes
	ErrEmptyPayload = errors.New("tsv: payload is empty")
	// ErrMissingHeader is returned when the payload has no header row
	ErrMissingHeader = errors.New("tsv: payload missing header row")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// maxLineBytes bounds a single report line
const maxLineBytes = 4 << 20

// Payload is a delimited report body that can be read any number of times.
// Every physical line is one record: quotes never span a delimiter or a
// line break.
type Payload struct {
	data      []byte
	delimiter string
	unquote   bool
	header    []string
}

// Option configures a Payload
type Option func(*Payload)

// WithDelimiter sets the field delimiter (default is tab)
func WithDelimiter(d rune) Option {
	return func(p *Payload) {
		p.delimiter = string(d)
	}
}

// WithUnquote toggles stripping of quotes inside a field (default on)
func WithUnquote(on bool) Option {
	return func(p *Payload) {
		p.unquote = on
	}
}

// NewPayload wraps a report body. The header row is read eagerly so a
// malformed payload fails before any reconciliation starts.
func NewPayload(data []byte, opts ...Option) (*Payload, error) {
	p := &Payload{
		data:      bytes.TrimPrefix(data, utf8BOM),
		delimiter: "\t",
		unquote:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if len(bytes.TrimSpace(p.data)) == 0 {
		return nil, ErrEmptyPayload
	}

	err := p.scan(func(line int, fields []string) error {
		p.header = make([]string, len(fields))
		for i, h := range fields {
			p.header[i] = strings.TrimSpace(h)
		}
		return errStopScan
	})
	if err != nil {
		return nil, fmt.Errorf("tsv: read header: %w", err)
	}
	if p.header == nil {
		return nil, ErrMissingHeader
	}
	return p, nil
}

var errStopScan = errors.New("tsv: stop")

// scan calls fn with the split fields of every non-blank line.
func (p *Payload) scan(fn func(line int, fields []string) error) error {
	sc := bufio.NewScanner(bytes.NewReader(p.data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, p.delimiter)
		if p.unquote {
			for i, f := range fields {
				fields[i] = unquoteField(f)
			}
		}
		if err := fn(line, fields); err != nil {
			if errors.Is(err, errStopScan) {
				return nil
			}
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("line %d: %w", line+1, err)
	}
	return nil
}

// unquoteField removes the quoting of a field that starts with a quote.
// A doubled quote inside the quoted part is one literal quote, text after
// the closing quote is kept, and an unterminated quote runs to the end of
// the field only.
func unquoteField(f string) string {
	if !strings.HasPrefix(f, `"`) {
		return f
	}
	var b strings.Builder
	b.Grow(len(f))
	quoted := true
	for i := 1; i < len(f); i++ {
		c := f[i]
		if quoted && c == '"' {
			if i+1 < len(f) && f[i+1] == '"' {
				b.WriteByte('"')
				i++
				continue
			}
			quoted = false
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Header returns the column names in file order
func (p *Payload) Header() []string {
	out := make([]string, len(p.header))
	copy(out, p.header)
	return out
}

// Bytes returns the raw body without BOM
func (p *Payload) Bytes() []byte {
	return p.data
}

// Each streams every data row to fn in file order. Each call starts a
// fresh pass over the payload. Returning an error from fn stops the pass.
func (p *Payload) Each(fn func(Row) error) error {
	seenHeader := false
	err := p.scan(func(line int, fields []string) error {
		if !seenHeader {
			seenHeader = true
			return nil
		}
		row := newRow(line, p.header, fields)
		if row.IsEmpty() {
			return nil
		}
		return fn(row)
	})
	return err
}

// All reads every data row
func (p *Payload) All() ([]Row, error) {
	var rows []Row
	err := p.Each(func(r Row) error {
		rows = append(rows, r)
		return nil
	})
	return rows, err
}

// Row is one data line keyed by column name. Absent columns read as empty
// and columns outside the header are ignored.
type Row struct {
	Line   int
	fields map[string]string
	order  []string
}

func newRow(line int, header, record []string) Row {
	fields := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(record) {
			fields[h] = strings.TrimSpace(record[i])
		} else {
			fields[h] = ""
		}
	}
	return Row{Line: line, fields: fields, order: header}
}

// NewRow builds a row from explicit values, mainly for tests and derived files
func NewRow(values map[string]string) Row {
	order := make([]string, 0, len(values))
	for k := range values {
		order = append(order, k)
	}
	fields := make(map[string]string, len(values))
	for k, v := range values {
		fields[k] = v
	}
	return Row{fields: fields, order: order}
}

// Get returns the value of a column or an empty string
func (r Row) Get(col string) string {
	return r.fields[col]
}

// Has reports whether the column exists in the row
func (r Row) Has(col string) bool {
	_, ok := r.fields[col]
	return ok
}

// FirstOf returns the first non-empty value among cols
func (r Row) FirstOf(cols ...string) string {
	for _, c := range cols {
		if v := r.fields[c]; v != "" {
			return v
		}
	}
	return ""
}

// IsEmpty reports whether every value is blank
func (r Row) IsEmpty() bool {
	for _, v := range r.fields {
		if v != "" {
			return false
		}
	}
	return true
}

// Values returns the row values in the given column order
func (r Row) Values(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = r.fields[c]
	}
	return out
}

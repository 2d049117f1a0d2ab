// Package csvimport parses and validates CSV uploads such as the client import file.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads a CSV upload whose first line is the header. Columns are
// addressed by name, ignoring case, accents and repeated spaces, and may be
// known under aliases (an export header re-imported as-is, for instance).
type CSVParser struct {
	delimiter   rune
	autoDetect  bool
	latin1      bool
	aliases     map[string]string
	columns     map[string]int
	headers     []string
	reader      *csv.Reader
	line        int
	rowsRead    int
	decodedFrom string
}

// ParserOption configures a CSVParser
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter and disables detection
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
		p.autoDetect = false
	}
}

// WithDetectedDelimiter picks ';' or ',' from the header line
func WithDetectedDelimiter() ParserOption {
	return func(p *CSVParser) {
		p.autoDetect = true
	}
}

// WithWindows1252Fallback decodes the file as Windows-1252 when it is not valid
// UTF-8. Excel on Spanish-locale Windows saves CSV that way.
func WithWindows1252Fallback() ParserOption {
	return func(p *CSVParser) {
		p.latin1 = true
	}
}

// WithHeaderAliases maps alternative header names to a canonical column
func WithHeaderAliases(aliases map[string][]string) ParserOption {
	return func(p *CSVParser) {
		for canonical, names := range aliases {
			for _, name := range names {
				p.aliases[NormalizeHeader(name)] = NormalizeHeader(canonical)
			}
		}
	}
}

// NewCSVParser buffers r and prepares a reader over it
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseFromBytes(data, opts...)
}

// ParseFromBytes creates a parser over data
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	p := &CSVParser{
		delimiter:   ',',
		aliases:     make(map[string]string),
		columns:     make(map[string]int),
		decodedFrom: "UTF-8",
	}
	for _, opt := range opts {
		opt(p)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(data) {
		if !p.latin1 {
			return nil, ErrInvalidEncoding
		}
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, ErrInvalidEncoding
		}
		data = decoded
		p.decodedFrom = "Windows-1252"
	}
	if p.autoDetect {
		p.delimiter = DetectDelimiter(data)
	}

	p.reader = csv.NewReader(bytes.NewReader(data))
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1
	return p, nil
}

// Encoding reports the encoding the file was read as
func (p *CSVParser) Encoding() string {
	return p.decodedFrom
}

// ParseHeader reads the header row. The first occurrence of a column wins.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	p.line = 1

	p.headers = make([]string, 0, len(record))
	for i, h := range record {
		h = strings.TrimSpace(h)
		p.headers = append(p.headers, h)
		key := p.canonical(h)
		if key == "" {
			continue
		}
		if _, dup := p.columns[key]; !dup {
			p.columns[key] = i
		}
	}
	if len(p.columns) == 0 {
		return ErrMissingHeader
	}
	return nil
}

func (p *CSVParser) canonical(name string) string {
	key := NormalizeHeader(name)
	if alias, ok := p.aliases[key]; ok {
		return alias
	}
	return key
}

// Headers returns the header names as written in the file
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader reports whether the column, or one of its aliases, is present
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.columns[p.canonical(name)]
	return ok
}

// ValidateHeaders returns the required columns missing from the header
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// NormalizeHeader folds a header name for matching: accents are stripped, case is
// lowered and inner whitespace collapsed, so "Razón  Social" matches "razon social".
func NormalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Row is a data line keyed by canonical column name. LineNumber counts the
// header as line 1.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the trimmed value of a column, or "" when absent
func (r *Row) Get(column string) string {
	return r.Data[NormalizeHeader(column)]
}

// GetOrDefault returns the value of a column, or def when empty
func (r *Row) GetOrDefault(column, def string) string {
	if v := r.Get(column); v != "" {
		return v
	}
	return def
}

// IsEmpty reports whether every cell of the row is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow returns the next line, io.EOF at the end. Short lines are padded
// with empty values.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.line, err)
	}
	p.rowsRead++

	row := &Row{LineNumber: p.line, Data: make(map[string]string, len(p.columns))}
	for key, i := range p.columns {
		if i < len(record) {
			row.Data[key] = strings.TrimSpace(record[i])
		} else {
			row.Data[key] = ""
		}
	}
	return row, nil
}

// ReadAllRows reads the remaining lines, skipping blank ones
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if !row.IsEmpty() {
			rows = append(rows, row)
		}
	}
}

// Line returns the number of the last line read
func (p *CSVParser) Line() int {
	return p.line
}

// RowsRead counts the data lines read so far, blank ones included
func (p *CSVParser) RowsRead() int {
	return p.rowsRead
}

// DetectDelimiter picks ';' when the header line has more semicolons than commas.
// Spreadsheets in Spanish locales export CSV with semicolons.
func DetectDelimiter(data []byte) rune {
	line := bytes.TrimPrefix(data, utf8BOM)
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

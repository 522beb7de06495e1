package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
)

// Source yields the rows of a tabular dataset in bounded batches.
type Source interface {
	// Header returns the column names.
	Header() []string
	// Next returns up to n rows, or every remaining row when n <= 0. Every
	// row has exactly len(Header()) cells. It returns io.EOF once the source
	// is exhausted.
	Next(n int) ([][]string, error)
	Close() error
}

// ReadOptions configures delimited-text sources.
type ReadOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// Columns names the columns of a file without a header row. When empty
	// the first row is the header.
	Columns []string
}

type csvSource struct {
	path   string
	file   *os.File
	reader *csv.Reader
	header []string
}

// OpenCSV opens a delimited-text file. A missing file is reported as
// internalerr.ErrSourceNotFound before anything is read.
func OpenCSV(path string, opts ReadOptions) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", internalerr.ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	r := csv.NewReader(f)
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	src := &csvSource{path: path, file: f, reader: r}
	if len(opts.Columns) > 0 {
		src.header = append([]string(nil), opts.Columns...)
		return src, nil
	}

	header, err := r.Read()
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header %s: empty file", path)
		}
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	src.header = header
	return src, nil
}

func (s *csvSource) Header() []string {
	return s.header
}

func (s *csvSource) Next(n int) ([][]string, error) {
	var rows [][]string
	for n <= 0 || len(rows) < n {
		rec, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.path, err)
		}
		rows = append(rows, fitValues(rec, len(s.header)))
	}
	if len(rows) == 0 {
		return nil, io.EOF
	}
	return rows, nil
}

func (s *csvSource) Close() error {
	return s.file.Close()
}

// ReadAll drains src into an unprocessed frame.
func ReadAll(src Source) (*Frame, error) {
	rows, err := src.Next(0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return NewFrame(src.Header(), rows), nil
}

// NewFrame wraps raw rows in a frame.
func NewFrame(header []string, rows [][]string) *Frame {
	f := &Frame{Header: header, Rows: make([]Row, len(rows))}
	for i, values := range rows {
		f.Rows[i].Values = values
	}
	return f
}

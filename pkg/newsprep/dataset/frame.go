package dataset

import (
	"github.com/cognicore/newsprep/pkg/newsprep/fields"
	"github.com/cognicore/newsprep/pkg/newsprep/ingest"
)

// Derived column suffixes, appended to the processed column name with a dash.
const (
	SuffixCleaned       = "cleaned"
	SuffixTokens        = "tokens"
	SuffixTokensNoStop  = "tokens_no_stop"
	SuffixTokensStemmed = "tokens_stemmed"
)

// Row is one input row and the record derived from its text column.
type Row struct {
	Values []string
	Record ingest.Record
}

// Frame is an ordered set of rows sharing one header.
type Frame struct {
	Header []string
	Column string // processed text column, empty before processing
	Rows   []Row
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// ColumnIndex returns the position of name in the header, or -1.
func (f *Frame) ColumnIndex(name string) int {
	return indexOf(f.Header, name)
}

// Append moves the rows of other to the end of f.
func (f *Frame) Append(other *Frame) {
	f.Rows = append(f.Rows, other.Rows...)
}

// OutputHeader is the source header followed by the derived columns.
func (f *Frame) OutputHeader() []string {
	out := make([]string, 0, len(f.Header)+8)
	out = append(out, f.Header...)
	return append(out, OutputColumns(f.Column)...)
}

// OutputColumns names the derived columns for a processed column, in the
// order they are written.
func OutputColumns(column string) []string {
	cols := []string{DerivedColumn(column, SuffixCleaned)}
	for _, t := range fields.All() {
		cols = append(cols, DerivedColumn(column, t.Plural()))
	}
	return append(cols,
		DerivedColumn(column, SuffixTokens),
		DerivedColumn(column, SuffixTokensNoStop),
		DerivedColumn(column, SuffixTokensStemmed),
	)
}

// DerivedColumn builds the "<column>-<stage>" name.
func DerivedColumn(column, stage string) string {
	return column + "-" + stage
}

func indexOf(values []string, name string) int {
	for i, v := range values {
		if v == name {
			return i
		}
	}
	return -1
}

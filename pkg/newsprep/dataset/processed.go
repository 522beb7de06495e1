package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/cognicore/newsprep/pkg/newsprep/fields"
	"github.com/cognicore/newsprep/pkg/newsprep/ingest"
	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
)

// ReadProcessed loads a file written by a CSVSink and decodes the derived
// columns of column back into records. It fails with
// internalerr.ErrNotProcessed when any derived column is missing.
func ReadProcessed(path, column string, opts ReadOptions) (*Frame, error) {
	src, err := OpenCSV(path, opts)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	header := src.Header()
	derived := OutputColumns(column)
	derivedIdx := make(map[string]int, len(derived))
	for _, name := range derived {
		i := indexOf(header, name)
		if i < 0 {
			return nil, fmt.Errorf("%s: column %s: %w", path, name, internalerr.ErrNotProcessed)
		}
		derivedIdx[name] = i
	}

	var sourceIdx []int
	frame := &Frame{Column: column}
	for i, name := range header {
		if _, ok := derivedIdx[name]; ok {
			continue
		}
		sourceIdx = append(sourceIdx, i)
		frame.Header = append(frame.Header, name)
	}
	textIdx := frame.ColumnIndex(column)

	for {
		rows, err := src.Next(1024)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, cells := range rows {
			row, err := decodeRow(cells, column, sourceIdx, derivedIdx)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", path, frame.Len()+1, err)
			}
			if textIdx >= 0 {
				row.Record.Text = row.Values[textIdx]
			}
			frame.Rows = append(frame.Rows, row)
		}
	}
	return frame, nil
}

func decodeRow(cells []string, column string, sourceIdx []int, derivedIdx map[string]int) (Row, error) {
	row := Row{Values: make([]string, len(sourceIdx))}
	for i, j := range sourceIdx {
		row.Values[i] = cells[j]
	}

	cell := func(stage string) string {
		return cells[derivedIdx[DerivedColumn(column, stage)]]
	}

	rec := ingest.Record{Cleaned: cell(SuffixCleaned), Fields: fields.Extracted{}}
	for _, t := range fields.All() {
		lits, err := decodeLiterals(cell(t.Plural()))
		if err != nil {
			return Row{}, err
		}
		if len(lits) > 0 {
			rec.Fields[t] = lits
		}
	}

	var err error
	if rec.Tokens, err = decodeTokens(cell(SuffixTokens)); err != nil {
		return Row{}, err
	}
	if rec.TokensNoStop, err = decodeTokens(cell(SuffixTokensNoStop)); err != nil {
		return Row{}, err
	}
	if rec.TokensStemmed, err = decodeTokens(cell(SuffixTokensStemmed)); err != nil {
		return Row{}, err
	}

	row.Record = rec
	return row, nil
}

package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cognicore/newsprep/pkg/newsprep/fields"
	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
)

// ListFormat controls how list-typed columns are serialized into a cell.
type ListFormat string

const (
	// ListJSON writes a JSON array: ["a","b"].
	ListJSON ListFormat = "json"
	// ListJoined writes tokens space-joined and extracted literals joined
	// with "; ".
	ListJoined ListFormat = "joined"
)

const literalSep = "; "

// ParseListFormat validates a format name. Empty means ListJSON.
func ParseListFormat(s string) (ListFormat, error) {
	switch ListFormat(strings.ToLower(s)) {
	case "", ListJSON:
		return ListJSON, nil
	case ListJoined:
		return ListJoined, nil
	}
	return "", fmt.Errorf("list format %q: %w", s, internalerr.ErrInvalidConfig)
}

// EncodeRow renders a processed row as cells under the frame's output
// header. header is the source header the row was read with.
func EncodeRow(header []string, row Row, format ListFormat) []string {
	out := make([]string, 0, len(header)+8)
	out = append(out, fitValues(row.Values, len(header))...)
	out = append(out, row.Record.Cleaned)
	for _, t := range fields.All() {
		out = append(out, encodeList(row.Record.Fields.Get(t), format, literalSep))
	}
	return append(out,
		encodeList(row.Record.Tokens, format, " "),
		encodeList(row.Record.TokensNoStop, format, " "),
		encodeList(row.Record.TokensStemmed, format, " "),
	)
}

func encodeList(items []string, format ListFormat, sep string) string {
	if format == ListJoined {
		return strings.Join(items, sep)
	}
	if items == nil {
		items = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		// []string always encodes
		panic(err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// decodeTokens reads a token list written in either format.
func decodeTokens(cell string) ([]string, error) {
	if isJSONList(cell) {
		return decodeJSONList(cell)
	}
	tokens := strings.Fields(cell)
	if len(tokens) == 0 {
		return nil, nil
	}
	return tokens, nil
}

// decodeLiterals reads an extraction list written in either format.
func decodeLiterals(cell string) ([]string, error) {
	if isJSONList(cell) {
		return decodeJSONList(cell)
	}
	if strings.TrimSpace(cell) == "" {
		return nil, nil
	}
	return strings.Split(cell, literalSep), nil
}

func isJSONList(cell string) bool {
	s := strings.TrimSpace(cell)
	return strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}

func decodeJSONList(cell string) ([]string, error) {
	var items []string
	if err := json.Unmarshal([]byte(cell), &items); err != nil {
		return nil, fmt.Errorf("decode list %q: %w", cell, err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

// fitValues pads or truncates values to n cells.
func fitValues(values []string, n int) []string {
	if len(values) == n {
		return values
	}
	out := make([]string, n)
	copy(out, values)
	return out
}

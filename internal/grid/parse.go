package grid

// parse.go reads plan files into a Grid.
//
// encoding/csv is not used here: it drops blank lines and normalises quoting
// errors in ways that would make a parse-serialize cycle lossy. The scanner
// below keeps every line as a row and only rejects a quote that never closes.

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse splits CSV text into a Grid. Cells are kept verbatim: no trimming and
// no type coercion. Blank lines become single blank-cell rows. A line
// terminator at the very end of the text does not start another row.
//
// Quoted fields may contain commas, doubled quotes and line breaks. Text
// following a closing quote, and quotes inside unquoted fields, are kept as
// literal characters. The only error is ErrMalformedInput for a quote that is
// still open at end of input.
func Parse(text string) (Grid, error) {
	g := Grid{}
	if text == "" {
		return g, nil
	}

	var (
		row   []string
		field strings.Builder
		line  = 1
		i     = 0
		n     = len(text)
	)

	for {
		if i < n && text[i] == '"' {
			opened := line
			i++
			closed := false
			for i < n {
				c := text[i]
				if c == '"' {
					if i+1 < n && text[i+1] == '"' {
						field.WriteByte('"')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				if c == '\n' {
					line++
				}
				field.WriteByte(c)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("%w: quote opened on line %d is never closed", ErrMalformedInput, opened)
			}
		}

		for i < n && text[i] != ',' && text[i] != '\n' && text[i] != '\r' {
			field.WriteByte(text[i])
			i++
		}
		row = append(row, field.String())
		field.Reset()

		if i >= n {
			return append(g, row), nil
		}

		switch text[i] {
		case ',':
			i++
			continue
		case '\r':
			i++
			if i < n && text[i] == '\n' {
				i++
			}
		case '\n':
			i++
		}

		line++
		g = append(g, row)
		row = nil
		if i >= n {
			return g, nil
		}
	}
}

// ParseReader reads all of r, drops a leading UTF-8 byte order mark and parses
// the rest.
func ParseReader(r io.Reader) (Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return Parse(string(bytes.TrimPrefix(data, utf8BOM)))
}

package raw

import (
	"bufio"
	"io"
	"strings"
)

// rowReader splits the export into rows. The export quotes with '|' rather than '"', which
// encoding/csv cannot be told to do. Quoting follows the usual rules: a quoted field may hold
// separators, newlines and doubled quotes; a quote inside an unquoted field is literal.
type rowReader struct {
	r     *bufio.Reader
	sep   rune
	quote rune
	line  int // lines consumed so far
}

func newRowReader(r io.Reader, sep, quote rune) *rowReader {
	return &rowReader{r: bufio.NewReaderSize(r, 1<<16), sep: sep, quote: quote}
}

// read returns the next row. Blank lines are skipped. It returns io.EOF when there are no
// more rows.
func (rr *rowReader) read() ([]string, error) {
	for {
		row, err := rr.readRow()
		if err != nil {
			return nil, err
		}
		if len(row) == 1 && row[0] == "" {
			continue
		}
		return row, nil
	}
}

func (rr *rowReader) readRow() (row []string, err error) {
	var (
		fld        strings.Builder
		started    bool
		inQuote    bool
		fieldStart = true
	)
	for {
		c, _, e := rr.r.ReadRune()
		if e != nil {
			if e == io.EOF && started {
				rr.line++
				return append(row, fld.String()), nil
			}
			return nil, e
		}
		started = true
		switch {
		case inQuote:
			if c != rr.quote {
				if c == '\n' {
					rr.line++
				}
				fld.WriteRune(c)
				continue
			}
			nxt, _, e := rr.r.ReadRune()
			if e == nil && nxt == rr.quote {
				fld.WriteRune(rr.quote)
				continue
			}
			if e == nil {
				_ = rr.r.UnreadRune()
			}
			inQuote = false
		case c == rr.quote && fieldStart:
			inQuote = true
			fieldStart = false
		case c == rr.sep:
			row = append(row, fld.String())
			fld.Reset()
			fieldStart = true
		case c == '\r':
			if nxt, _, e := rr.r.ReadRune(); e == nil && nxt != '\n' {
				_ = rr.r.UnreadRune()
			}
			rr.line++
			return append(row, fld.String()), nil
		case c == '\n':
			rr.line++
			return append(row, fld.String()), nil
		default:
			fld.WriteRune(c)
			fieldStart = false
		}
	}
}

// SplitLine splits a single line of the export into fields.
func SplitLine(line string, sep, quote rune) []string {
	row, err := newRowReader(strings.NewReader(line), sep, quote).readRow()
	if err != nil {
		return []string{}
	}
	return row
}

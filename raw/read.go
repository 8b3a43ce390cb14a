package raw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Policy says what to do with a row too short to map.
type Policy string

const (
	// Abort fails the whole read on the first short row.
	Abort Policy = "abort"
	// Skip drops short rows and records them in Result.Skipped.
	Skip Policy = "skip"
)

// ErrEncoding is returned for an unknown input encoding name.
var ErrEncoding = errors.New("unknown encoding")

// ReadOptions control how the export is split and mapped. The zero value reads UTF-8, comma
// separated, '|' quoted, one worker, aborting on short rows.
type ReadOptions struct {
	Sep      rune
	Quote    rune
	Encoding string // "", "utf-8", "latin1" / "iso-8859-1", "windows-1252"
	Concur   int
	Policy   Policy
	Logger   *slog.Logger
}

func (o *ReadOptions) defaults() {
	if o.Sep == 0 {
		o.Sep = ','
	}
	if o.Quote == 0 {
		o.Quote = '|'
	}
	if o.Concur < 1 {
		o.Concur = 1
	}
	if o.Policy == "" {
		o.Policy = Abort
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Record is a mapped voter and the position of its row in the input.
type Record struct {
	Row   int
	Voter *Voter
}

// Result is everything read from one export. Rows holds every row read, including skipped
// ones, indexed by input position.
type Result struct {
	Records []Record
	Rows    [][]string
	Skipped []*ShortRowError
}

// Voters returns the mapped voters in input order.
func (r *Result) Voters() []*Voter {
	vs := make([]*Voter, len(r.Records))
	for ind, rec := range r.Records {
		vs[ind] = rec.Voter
	}
	return vs
}

// decoder wraps r to convert a legacy code page to UTF-8.
func decoder(r io.Reader, enc string) (io.Reader, error) {
	switch strings.ToLower(enc) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrEncoding, enc)
}

// ValidEncoding reports whether enc names an input encoding Read understands.
func ValidEncoding(enc string) bool {
	_, err := decoder(strings.NewReader(""), enc)
	return err == nil
}

// ReadFile reads and maps every row of the export in fileName.
func ReadFile(ctx context.Context, fileName string, opt ReadOptions) (res *Result, err error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer func() {
		// don't throw an error if we already have one
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return Read(ctx, f, opt)
}

// Read splits r into rows and maps them. All rows are read before any are mapped; mapping
// runs on opt.Concur goroutines and the result keeps input order.
func Read(ctx context.Context, r io.Reader, opt ReadOptions) (*Result, error) {
	opt.defaults()
	src, err := decoder(r, opt.Encoding)
	if err != nil {
		return nil, err
	}

	rr := newRowReader(src, opt.Sep, opt.Quote)
	rows := make([][]string, 0)
	for {
		row, e := rr.read()
		if e == io.EOF {
			break
		}
		if e != nil {
			return nil, fmt.Errorf("reading line %d: %w", rr.line+1, e)
		}
		rows = append(rows, row)
		if len(rows)%100000 == 0 {
			opt.Logger.Debug("reading export", "rows", len(rows))
		}
	}

	voters := make([]*Voter, len(rows))
	errs := make([]error, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opt.Concur)
	for ind := range rows {
		ind := ind
		g.Go(func() error {
			if e := gctx.Err(); e != nil {
				return e
			}
			voters[ind], errs[ind] = NewVoter(rows[ind])
			return nil
		})
	}
	if e := g.Wait(); e != nil {
		return nil, e
	}

	res := &Result{Rows: rows}
	for ind, e := range errs {
		if e == nil {
			res.Records = append(res.Records, Record{Row: ind, Voter: voters[ind]})
			continue
		}
		var sr *ShortRowError
		if !errors.As(e, &sr) {
			return nil, e
		}
		sr.Row = ind
		if opt.Policy == Abort {
			return nil, sr
		}
		opt.Logger.Warn("skipping short row", "row", sr.Row, "len", sr.Len, "min", sr.Min)
		res.Skipped = append(res.Skipped, sr)
	}
	opt.Logger.Info("read export", "rows", len(rows), "mapped", len(res.Records), "skipped", len(res.Skipped))
	return res, nil
}

// WriteJSON writes doc to fileName as indented JSON.
func WriteJSON(fileName string, doc any) (err error) {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(doc)
}

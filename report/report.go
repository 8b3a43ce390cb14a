// Package report summarizes the deviations found while parsing an export.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/invertedv/voters/raw"
)

// FieldCount is the number of deviations recorded against one field, by kind. Rows holds up to
// the requested number of sample row indexes.
type FieldCount struct {
	Field string           `json:"field"`
	Total int              `json:"total"`
	Kinds map[raw.Kind]int `json:"kinds"`
	Rows  []int            `json:"rows"`
}

// Count is a code, its description and how many voters carry it.
type Count struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary describes one parsed export.
type Summary struct {
	Records      int          `json:"records"`
	Clean        int          `json:"clean"`
	Deviations   int          `json:"deviations"`
	Skipped      []int        `json:"skipped"`
	Fields       []FieldCount `json:"fields"`
	Affiliations []Count      `json:"affiliations"`
	Towns        []Count      `json:"towns"`
}

// Summarize counts the deviations in records. Fields are ordered by total, most frequent first.
func Summarize(records []raw.Record, skipped []*raw.ShortRowError, samples int) *Summary {
	s := &Summary{Records: len(records), Skipped: make([]int, 0, len(skipped))}
	for _, sr := range skipped {
		s.Skipped = append(s.Skipped, sr.Row)
	}

	fields := make(map[string]*FieldCount)
	affs := make(map[string]int)
	towns := make(map[string]int)
	for _, rec := range records {
		v := rec.Voter
		affs[v.Affiliation]++
		towns[v.Town]++
		if v.Clean() {
			s.Clean++
			continue
		}
		s.Deviations += len(v.Deviations)
		for _, d := range v.Deviations {
			fc, ok := fields[d.Field]
			if !ok {
				fc = &FieldCount{Field: d.Field, Kinds: make(map[raw.Kind]int), Rows: make([]int, 0)}
				fields[d.Field] = fc
			}
			fc.Total++
			fc.Kinds[d.Kind]++
			if n := len(fc.Rows); n < samples && (n == 0 || fc.Rows[n-1] != rec.Row) {
				fc.Rows = append(fc.Rows, rec.Row)
			}
		}
	}

	s.Fields = make([]FieldCount, 0, len(fields))
	for _, fc := range fields {
		s.Fields = append(s.Fields, *fc)
	}
	sort.Slice(s.Fields, func(i, j int) bool {
		if s.Fields[i].Total != s.Fields[j].Total {
			return s.Fields[i].Total > s.Fields[j].Total
		}
		return s.Fields[i].Field < s.Fields[j].Field
	})
	s.Affiliations = counts(affs, func(code string) string {
		if !raw.ValidAffiliation(code) {
			return "unknown"
		}
		return code
	})
	s.Towns = counts(towns, raw.TownName)
	return s
}

func counts(m map[string]int, name func(string) string) []Count {
	out := make([]Count, 0, len(m))
	for code, n := range m {
		out = append(out, Count{Code: code, Name: name(code), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Print writes the summary as a table.
func (s *Summary) Print(w io.Writer) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)

	bold.Fprintf(w, "%s records, ", humanize.Comma(int64(s.Records)))
	green.Fprintf(w, "%s clean", humanize.Comma(int64(s.Clean)))
	fmt.Fprintf(w, ", %s deviations", humanize.Comma(int64(s.Deviations)))
	if len(s.Skipped) > 0 {
		red.Fprintf(w, ", %s short rows skipped", humanize.Comma(int64(len(s.Skipped))))
	}
	fmt.Fprintln(w)

	if len(s.Fields) > 0 {
		bold.Fprintf(w, "\n%-32s %10s  %s\n", "field", "count", "kinds")
		for _, fc := range s.Fields {
			kinds := make([]string, 0, len(fc.Kinds))
			for k := range fc.Kinds {
				kinds = append(kinds, string(k))
			}
			sort.Strings(kinds)
			desc := ""
			for ind, k := range kinds {
				if ind > 0 {
					desc += ", "
				}
				desc += fmt.Sprintf("%s=%d", k, fc.Kinds[raw.Kind(k)])
			}
			red.Fprintf(w, "%-32s %10s", fc.Field, humanize.Comma(int64(fc.Total)))
			fmt.Fprintf(w, "  %s  rows %v\n", desc, fc.Rows)
		}
	}

	printCounts(w, bold, "affiliation", s.Affiliations)
	printCounts(w, bold, "town", s.Towns)
}

func printCounts(w io.Writer, hdr *color.Color, title string, cs []Count) {
	if len(cs) == 0 {
		return
	}
	hdr.Fprintf(w, "\n%-8s %-24s %10s\n", title, "name", "voters")
	for _, c := range cs {
		fmt.Fprintf(w, "%-8s %-24s %10s\n", c.Code, c.Name, humanize.Comma(int64(c.Count)))
	}
}

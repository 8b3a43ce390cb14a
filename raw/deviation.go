package raw

import "fmt"

// Kind classifies a structural check failure.
type Kind string

const (
	LengthError      Kind = "length_error"
	MatchFailed      Kind = "match_failed"
	EmptyRequired    Kind = "empty_required"
	DateFormatError  Kind = "date_format_error"
	HistoryCodeError Kind = "history_code_error"
	ShapeError       Kind = "shape_error"
)

// Deviation is one failed structural check. Expected is the bound (length, element count) or
// the pattern; Actual is the offending value (or element count for shape errors).
type Deviation struct {
	Kind     Kind   `json:"kind"`
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

func (d Deviation) String() string {
	return fmt.Sprintf("%s %s: expected %s, got %q", d.Field, d.Kind, d.Expected, d.Actual)
}

// Deviations is kept in the order the checks ran. Duplicates are not collapsed.
type Deviations []Deviation

// Count returns the number of deviations of kind k
func (ds Deviations) Count(k Kind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Field returns the deviations recorded against the named field.
func (ds Deviations) Field(name string) Deviations {
	var out Deviations
	for _, d := range ds {
		if d.Field == name {
			out = append(out, d)
		}
	}
	return out
}

// collector accumulates deviations across the mapping sequence
type collector struct {
	devs Deviations
}

func (c *collector) add(ds Deviations) {
	c.devs = append(c.devs, ds...)
}

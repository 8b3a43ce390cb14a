package raw

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

var yyyymmdd = anchored(`(\d{4})(\d{2})(\d{2})`)

// Date is a decoded YYYYMMDD value. Month and day are not range checked.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// DateField holds either a decoded date or, if the source did not decode, the raw source text.
// An absent date has neither.
type DateField struct {
	Date *Date
	Raw  string
}

// Valid reports whether the field decoded to a date.
func (f DateField) Valid() bool {
	return f.Date != nil
}

// MarshalJSON writes the decoded date as an object and anything else as the raw string.
func (f DateField) MarshalJSON() ([]byte, error) {
	if f.Date != nil {
		return json.Marshal(f.Date)
	}
	return json.Marshal(f.Raw)
}

func (f *DateField) UnmarshalJSON(b []byte) error {
	var s string
	if e := json.Unmarshal(b, &s); e == nil {
		*f = DateField{Raw: s}
		return nil
	}
	d := &Date{}
	if e := json.Unmarshal(b, d); e != nil {
		return e
	}
	*f = DateField{Date: d}
	return nil
}

// ParseYYYYMMDD decodes an 8-digit date.
func ParseYYYYMMDD(value string) (*Date, error) {
	m := yyyymmdd.FindStringSubmatch(value)
	if m == nil {
		return nil, fmt.Errorf("%q is not YYYYMMDD", value)
	}
	// the pattern guarantees digits
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return &Date{Year: year, Month: month, Day: day}, nil
}

// SetYYYYMMDD decodes value into dst. An empty value leaves an empty placeholder. A value that
// does not decode is kept as-is and reported as a date_format_error.
func SetYYYYMMDD(dst *DateField, field, value string) Deviations {
	if value == "" {
		*dst = DateField{}
		return nil
	}
	d, err := ParseYYYYMMDD(value)
	if err != nil {
		*dst = DateField{Raw: value}
		return Deviations{{Kind: DateFormatError, Field: field, Expected: "YYYYMMDD", Actual: value}}
	}
	*dst = DateField{Date: d}
	return nil
}

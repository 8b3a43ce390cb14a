// Package calllist rebuilds voter entries from the text of the BoE "Detailed Voter Master Call
// List" report. Each line of text holds one voter with fields separated by spaces, but fields
// may themselves contain spaces and the town/ward/district field is displaced within the line,
// so entries are recovered by anchoring on the fields that have a fixed shape.
package calllist

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/invertedv/voters/raw"
)

// TownWard locates the voter: 2-letter town code, 3-digit ward and district.
type TownWard struct {
	Town     string `json:"town"`
	Ward     string `json:"ward"`
	District string `json:"district"`
}

func (tw TownWard) String() string {
	return tw.Town + "/" + tw.Ward + "/" + tw.District
}

// Entry is one voter of the call list.
type Entry struct {
	TownWard    TownWard       `json:"town_ward"`
	VoterID     string         `json:"voter_id"`
	Name        string         `json:"name"`
	Address     string         `json:"address"`
	City        string         `json:"city"`
	Zip         string         `json:"zip"`
	Affiliation string         `json:"affiliation"`
	Phone       string         `json:"phone"`
	Sex         string         `json:"sex"`
	DOB         raw.Date       `json:"dob"`
	Registered  raw.Date       `json:"registered"`
	Status      string         `json:"status"`
	Deviations  raw.Deviations `json:"deviations"`
}

func (e *Entry) String() string {
	return fmt.Sprintf("<Voter %s>", e.Name)
}

// LineError is a line that has a party but could not be split into an entry. Stage names the
// field that could not be found.
type LineError struct {
	Line  int
	Stage string
	Text  string
	Err   error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: parse error at %s stage: %v", e.Line, e.Stage, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

func (e *LineError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line  int    `json:"line"`
		Stage string `json:"stage"`
		Text  string `json:"text"`
		Err   string `json:"error"`
	}{e.Line, e.Stage, e.Text, e.Err.Error()})
}

const (
	mmddyyyy = `(\d{2}/\d{2}/\d{4})`
	parties  = `DEM|REP|BLK|CON|IND`
)

var (
	affiliation = regexp.MustCompile(`\W(` + parties + `)\W`)
	voterID     = regexp.MustCompile(`(\d{8})`)
	streetNum   = regexp.MustCompile(`\W([0-9]+)\W`)
	tail        = regexp.MustCompile(`([^MF]*)(M|F)\W*` + mmddyyyy + `\W*` + mmddyyyy + `\W*`)
	date        = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	phone       = regexp.MustCompile(`^(?:\(\d{3}\) \d{3}-\d{4}|-)$`)
)

// DefaultTown is the town code of the report the parser was first written for.
const DefaultTown = "CA"

// DefaultCities are the post office names that appear in the Carmel report.
var DefaultCities = []string{"MAHOPAC", "CARMEL", "PUTNAM VALLEY"}

// Parser splits call-list lines for one town.
type Parser struct {
	Logger *slog.Logger

	townWard *regexp.Regexp
	city     *regexp.Regexp
}

// NewParser returns a parser for the report of town, whose addresses are in cities.
func NewParser(town string, cities []string) (*Parser, error) {
	if town == "" {
		town = DefaultTown
	}
	if len(cities) == 0 {
		cities = DefaultCities
	}
	tw, err := regexp.Compile(`(` + regexp.QuoteMeta(town) + `)/(\d{3})/(\d{3})`)
	if err != nil {
		return nil, err
	}
	quoted := make([]string, len(cities))
	for ind, c := range cities {
		quoted[ind] = regexp.QuoteMeta(c)
	}
	city, err := regexp.Compile(`( (` + strings.Join(quoted, "|") + `) )`)
	if err != nil {
		return nil, err
	}
	return &Parser{Logger: slog.Default(), townWard: tw, city: city}, nil
}

// split cuts s around every match of re, returning the text between matches interleaved with
// the capture groups of each match. Unmatched groups give "".
func split(re *regexp.Regexp, s string) []string {
	out := make([]string, 0)
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		out = append(out, s[last:m[0]])
		for g := 2; g < len(m); g += 2 {
			if m[g] < 0 {
				out = append(out, "")
				continue
			}
			out = append(out, s[m[g]:m[g+1]])
		}
		last = m[1]
	}
	return append(out, s[last:])
}

func parseDate(s string) (raw.Date, error) {
	m := date.FindStringSubmatch(s)
	if m == nil {
		return raw.Date{}, fmt.Errorf("bad date %q", s)
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	return raw.Date{Year: year, Month: month, Day: day}, nil
}

func stageErr(stage, line string, format string, args ...any) *LineError {
	return &LineError{Stage: stage, Text: line, Err: fmt.Errorf(format, args...)}
}

// Clean splits one report line into an entry.
func (p *Parser) Clean(line string) (*Entry, error) {
	x := split(p.townWard, line)
	if len(x) != 5 {
		return nil, stageErr("town", line, "want one town/ward/district, found %d", (len(x)-1)/4)
	}
	e := &Entry{TownWard: TownWard{Town: x[1], Ward: x[2], District: x[3]}}

	x = split(affiliation, x[0]+x[4])
	if len(x) != 3 {
		return nil, stageErr("affiliation", line, "want one party, found %d", (len(x)-1)/2)
	}
	pre, post := x[0], x[2]
	e.Affiliation = x[1]

	x = split(voterID, pre)
	if len(x) != 3 {
		return nil, stageErr("voter_id", line, "want one 8-digit voter id, found %d", (len(x)-1)/2)
	}
	e.VoterID = x[1]

	x = split(p.city, x[2])
	if len(x) != 4 {
		return nil, stageErr("city", line, "want one city, found %d", (len(x)-1)/3)
	}
	nameAdd := x[0]
	e.City = strings.TrimSpace(x[1])
	e.Zip = strings.TrimSpace(x[3])

	x = split(streetNum, nameAdd)
	if len(x) < 3 {
		return nil, stageErr("address", line, "no street number in %q", nameAdd)
	}
	e.Name = strings.TrimSpace(x[0])
	e.Address = strings.TrimSpace(strings.Join(x[1:], " "))

	m := tail.FindStringSubmatchIndex(post)
	if m == nil {
		return nil, stageErr("dates", line, "no sex, birth and registration dates in %q", post)
	}
	e.Phone = strings.TrimSpace(post[m[2]:m[3]])
	e.Sex = post[m[4]:m[5]]
	e.Status = strings.TrimSpace(post[m[1]:])
	var err error
	if e.DOB, err = parseDate(post[m[6]:m[7]]); err != nil {
		return nil, stageErr("dates", line, "%v", err)
	}
	if e.Registered, err = parseDate(post[m[8]:m[9]]); err != nil {
		return nil, stageErr("dates", line, "%v", err)
	}

	e.Deviations = raw.Deviations{}
	e.Deviations = append(e.Deviations, raw.SetMatch(&e.Phone, "phone", e.Phone, phone, false)...)
	return e, nil
}

// Result is what a report yields. Unknown holds lines with no party that are not on the ignore
// lists; Rejects holds lines with a party that could not be split.
type Result struct {
	Entries []*Entry     `json:"entries"`
	Unknown []string     `json:"unknown"`
	Rejects []*LineError `json:"rejects"`
}

// Parse reads report text from r. A line "ADMIN" continues the status of the entry before it.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	res := &Result{Entries: make([]*Entry, 0), Unknown: make([]string, 0), Rejects: make([]*LineError, 0)}
	var last *Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case line == "ADMIN":
			if last != nil {
				last.Status += " ADMIN"
			}
			continue
		case !affiliation.MatchString(line):
			if !Ignored(line) {
				logger.Debug("ignoring line", "line", n, "text", line)
				res.Unknown = append(res.Unknown, line)
			}
			continue
		}

		e, err := p.Clean(line)
		if err != nil {
			le := err.(*LineError)
			le.Line = n
			logger.Warn("rejected line", "line", n, "stage", le.Stage, "err", le.Err)
			res.Rejects = append(res.Rejects, le)
			continue
		}
		res.Entries = append(res.Entries, e)
		last = e
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

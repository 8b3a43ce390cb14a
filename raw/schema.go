package raw

import (
	"regexp"
	"sort"
	"strings"
)

// FieldDef describes one field (or, for composite fields, one run of fields) of the export.
// A field is checked against Pattern if set, else against Width. Width <= 0 is unchecked.
type FieldDef struct {
	Name        string
	Width       int
	Widths      []int // composite: one bound per element
	Pattern     *regexp.Regexp
	MustHave    bool
	Date        bool
	Description string
}

// Span is the number of positional fields the definition covers.
func (fd *FieldDef) Span() int {
	if fd.Widths != nil {
		return len(fd.Widths)
	}
	return 1
}

// Schema maps the starting position of each field in a row to its definition. The history
// codes and flags are positioned from the end of the row and are in HistoryDef and FlagsDef.
var Schema = Build()

var (
	HistoryDef = &FieldDef{Name: "history_codes", Description: "packed voting history, up to 12 x 4-char codes"}
	FlagsDef   = &FieldDef{Name: "flags", Description: "operational flags"}
)

// Build builds the field table per NTS VTR EXPORT FILE FORMAT STANDARD (see FormatDefinition).
func Build() map[int]*FieldDef {
	var (
		yn     = anchored(`Y|N`)
		sex    = anchored(`M|F`)
		tel    = anchored(`\d{3}-\d{4}`)
		status = anchored(`A|I|P`)
		zip5   = anchored(`\d{5}`)
		zip4   = anchored(`\d{4}`)

		line4 = []int{40, 40, 40, 40}
	)
	fds := make(map[int]*FieldDef)

	fds[0] = &FieldDef{Name: "voter_id", Width: 15, Description: "county voter id"}

	fds[1] = &FieldDef{Name: "name.first_name", Width: 15}
	fds[2] = &FieldDef{Name: "name.middle_name", Width: 15}
	fds[3] = &FieldDef{Name: "name.last_name", Width: 20}
	fds[4] = &FieldDef{Name: "name.suffix", Width: 4}

	fds[5] = &FieldDef{Name: "address.street_number", Width: 8}
	// "1/2"
	fds[6] = &FieldDef{Name: "address.half_code", Width: 5}
	fds[7] = &FieldDef{Name: "address.street_name", Width: 30}
	fds[8] = &FieldDef{Name: "address.apt_number", Width: 12}
	fds[9] = &FieldDef{Name: "address.address_lines", Widths: []int{40, 40}}
	fds[11] = &FieldDef{Name: "address.city", Width: 25}
	fds[12] = &FieldDef{Name: "address.state", Width: 2}
	fds[13] = &FieldDef{Name: "address.zip", Width: 5}
	fds[14] = &FieldDef{Name: "address.zip_plus", Width: 4}

	// looks like a date but the export documents it as 15 chars of text
	fds[15] = &FieldDef{Name: "file_date", Width: 15}
	fds[16] = &FieldDef{Name: "dob", Date: true, Description: "date of birth YYYYMMDD"}
	fds[17] = &FieldDef{Name: "sex", Pattern: sex}
	fds[18] = &FieldDef{Name: "eye", Width: 3}
	// feet, inches
	fds[19] = &FieldDef{Name: "height", Widths: []int{1, 2}}
	fds[21] = &FieldDef{Name: "area_code", Width: 3}
	fds[22] = &FieldDef{Name: "tel_number", Pattern: tel}
	fds[23] = &FieldDef{Name: "reg_date", Date: true, Description: "registration date YYYYMMDD"}

	fds[24] = &FieldDef{Name: "reg_source", Width: 10}
	fds[25] = &FieldDef{Name: "filler", Width: 20}
	fds[26] = &FieldDef{Name: "affiliation", Width: 3, Description: "party, see Affiliations"}
	fds[27] = &FieldDef{Name: "town", Width: 3, Description: "see TownCodes"}
	fds[28] = &FieldDef{Name: "ward", Width: 3}
	fds[29] = &FieldDef{Name: "dist", Width: 3}
	fds[30] = &FieldDef{Name: "congress_dist", Width: 3}
	fds[31] = &FieldDef{Name: "senatorial_dist", Width: 3}
	fds[32] = &FieldDef{Name: "assembly_dist", Width: 3}
	fds[33] = &FieldDef{Name: "school_dist", Width: 3, Description: "see SchoolDistrictCodes"}
	fds[34] = &FieldDef{Name: "county_dist", Width: 3}
	fds[35] = &FieldDef{Name: "village_dist", Width: 3}
	fds[36] = &FieldDef{Name: "fire_dist", Width: 3, Description: "see FireDistrictCodes"}
	fds[37] = &FieldDef{Name: "lib_dist", Width: 3, Description: "see LibraryDistrictCodes"}
	fds[38] = &FieldDef{Name: "voter_status", Pattern: status, Description: "A(ctive), I(nactive), P(urged)"}
	fds[39] = &FieldDef{Name: "reason", Width: 10}
	fds[40] = &FieldDef{Name: "absentee", Pattern: yn}

	fds[41] = &FieldDef{Name: "mailing.address", Widths: line4}
	fds[45] = &FieldDef{Name: "mailing.city", Width: 25}
	fds[46] = &FieldDef{Name: "mailing.state", Width: 2}
	fds[47] = &FieldDef{Name: "mailing.zip", Pattern: zip5}
	fds[48] = &FieldDef{Name: "mailing.zip_plus", Pattern: zip4}

	// the export gives no width for the election code
	fds[49] = &FieldDef{Name: "absentee_detail.election_code"}
	fds[50] = &FieldDef{Name: "absentee_detail.code", Width: 4}
	fds[51] = &FieldDef{Name: "absentee_detail.application_received_date", Width: 8}
	fds[52] = &FieldDef{Name: "absentee_detail.add.add", Widths: line4}
	fds[56] = &FieldDef{Name: "absentee_detail.add.city", Width: 25}
	fds[57] = &FieldDef{Name: "absentee_detail.add.state", Width: 2}
	fds[58] = &FieldDef{Name: "absentee_detail.add.zip", Width: 5}
	fds[59] = &FieldDef{Name: "absentee_detail.add.zip_plus", Width: 4}
	fds[60] = &FieldDef{Name: "absentee_detail.ballot_issued_date", Date: true}
	fds[61] = &FieldDef{Name: "absentee_detail.ballot_received_date", Date: true}
	fds[62] = &FieldDef{Name: "absentee_detail.ballot_reissued_date", Date: true}
	fds[63] = &FieldDef{Name: "absentee_detail.ballot_rereceived_date", Date: true}
	fds[64] = &FieldDef{Name: "absentee_detail.expiration_date", Date: true}
	fds[65] = &FieldDef{Name: "absentee_detail.eligible", Pattern: yn}
	fds[66] = &FieldDef{Name: "absentee_detail.ineligible_reason", Width: 40}

	return fds
}

// Positions returns the starting positions of Schema in order.
func Positions() []int {
	pos := make([]int, 0, len(Schema))
	for p := range Schema {
		pos = append(pos, p)
	}
	sort.Ints(pos)
	return pos
}

// Lookup finds a field definition by name. Element names such as "height[1]" resolve to
// their composite field.
func Lookup(name string) (*FieldDef, bool) {
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	switch name {
	case HistoryDef.Name:
		return HistoryDef, true
	case FlagsDef.Name:
		return FlagsDef, true
	}
	for _, fd := range Schema {
		if fd.Name == name {
			return fd, true
		}
	}
	return nil, false
}

// builder maps one row, accumulating deviations as it goes
type builder struct {
	row []string
	collector
}

func (b *builder) text(pos int, dst *string) {
	fd := Schema[pos]
	if fd.Pattern != nil {
		b.add(SetMatch(dst, fd.Name, b.row[pos], fd.Pattern, fd.MustHave))
		return
	}
	b.add(SetItem(dst, fd.Name, b.row[pos], fd.Width))
}

func (b *builder) list(pos int, dst *[]string) {
	fd := Schema[pos]
	b.add(SetItems(dst, fd.Name, b.row[pos:pos+fd.Span()], fd.Widths))
}

func (b *builder) date(pos int, dst *DateField) {
	b.add(SetYYYYMMDD(dst, Schema[pos].Name, b.row[pos]))
}

// supplied reports whether any field in row[from:to] is non-empty
func (b *builder) supplied(from, to int) bool {
	return nonEmpty(b.row[from:to]...)
}

// NewVoter maps a row of the export. Field-level problems are recorded in Deviations and never
// stop the mapping; the only error is a *ShortRowError.
func NewVoter(row []string) (*Voter, error) {
	if len(row) < MinFields {
		return nil, &ShortRowError{Row: -1, Len: len(row), Min: MinFields}
	}
	b := &builder{row: row}
	v := &Voter{}

	b.text(0, &v.VoterID)

	name := &Name{}
	b.text(1, &name.FirstName)
	b.text(2, &name.MiddleName)
	b.text(3, &name.LastName)
	b.text(4, &name.Suffix)
	if b.supplied(1, 5) {
		v.Name = name
	}

	addr := &Address{}
	b.text(5, &addr.StreetNumber)
	b.text(6, &addr.HalfCode)
	b.text(7, &addr.StreetName)
	b.text(8, &addr.AptNumber)
	b.list(9, &addr.AddressLines)
	b.text(11, &addr.City)
	b.text(12, &addr.State)
	b.text(13, &addr.Zip)
	b.text(14, &addr.ZipPlus)
	if b.supplied(5, 15) {
		v.Address = addr
	}

	b.text(15, &v.FileDate)
	b.date(16, &v.DOB)
	b.text(17, &v.Sex)
	b.text(18, &v.Eye)
	b.list(19, &v.Height)
	b.text(21, &v.AreaCode)
	b.text(22, &v.TelNumber)
	b.date(23, &v.RegDate)

	b.text(24, &v.RegSource)
	b.text(25, &v.Filler)
	b.text(26, &v.Affiliation)
	b.text(27, &v.Town)
	b.text(28, &v.Ward)
	b.text(29, &v.Dist)
	b.text(30, &v.CongressDist)
	b.text(31, &v.SenatorialDist)
	b.text(32, &v.AssemblyDist)
	b.text(33, &v.SchoolDist)
	b.text(34, &v.CountyDist)
	b.text(35, &v.VillageDist)
	b.text(36, &v.FireDist)
	b.text(37, &v.LibDist)
	b.text(38, &v.VoterStatus)
	b.text(39, &v.Reason)
	b.text(40, &v.Absentee)

	mail := &Mailing{}
	b.list(41, &mail.Address)
	b.text(45, &mail.City)
	b.text(46, &mail.State)
	b.text(47, &mail.Zip)
	b.text(48, &mail.ZipPlus)
	if b.supplied(41, 49) {
		v.Mailing = mail
	}

	abs := &AbsenteeDetail{}
	b.text(49, &abs.ElectionCode)
	b.text(50, &abs.Code)
	b.text(51, &abs.ApplicationReceivedDate)
	add := &AbsenteeAddress{}
	b.list(52, &add.Add)
	b.text(56, &add.City)
	b.text(57, &add.State)
	b.text(58, &add.Zip)
	b.text(59, &add.ZipPlus)
	if b.supplied(52, 60) {
		abs.Add = add
	}
	b.date(60, &abs.BallotIssuedDate)
	b.date(61, &abs.BallotReceivedDate)
	b.date(62, &abs.BallotReissuedDate)
	b.date(63, &abs.BallotRereceivedDate)
	b.date(64, &abs.ExpirationDate)
	b.text(65, &abs.Eligible)
	b.text(66, &abs.IneligibleReason)
	if b.supplied(49, 67) {
		v.AbsenteeDetail = abs
	}

	// some rows carry extra fields, so the history is located from the end
	b.add(SetHistoryCodes(&v.HistoryCodes, HistoryDef.Name, row[len(row)-2]))
	v.Flags = row[len(row)-1]

	v.Deviations = b.devs
	if v.Deviations == nil {
		v.Deviations = Deviations{}
	}
	return v, nil
}

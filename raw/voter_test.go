package raw

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRow is a clean 69-field row: 67 positional fields, history codes, flags.
func testRow() []string {
	row := make([]string, MinFields+2)
	set := func(pos int, vals ...string) {
		copy(row[pos:], vals)
	}
	set(0, "00012345")
	set(1, "JANE", "Q", "PUBLIC", "JR")
	set(5, "10", "", "CROTON FALLS ROAD", "2B", "", "", "MAHOPAC", "NY", "10541", "1617")
	set(15, "20170710", "19900101", "F", "BRO", "5", "06", "845", "555-1234", "20080915")
	set(24, "MAIL", "", "DEM", "CA", "000", "001", "018", "040", "094", "001", "001", "000", "001", "001")
	set(38, "A", "", "N")
	set(MinFields, "GE16PE16GE12")
	set(MinFields+1, "")
	return row
}

func TestNewVoterClean(t *testing.T) {
	v, err := NewVoter(testRow())
	require.NoError(t, err)
	assert.True(t, v.Clean(), "deviations: %v", v.Deviations)

	assert.Equal(t, "00012345", v.VoterID)
	require.NotNil(t, v.Name)
	assert.Equal(t, Name{FirstName: "JANE", MiddleName: "Q", LastName: "PUBLIC", Suffix: "JR"}, *v.Name)
	require.NotNil(t, v.Address)
	assert.Equal(t, []string{"", ""}, v.Address.AddressLines)
	assert.Equal(t, "10541", v.Address.Zip)
	assert.Equal(t, "20170710", v.FileDate)
	assert.Equal(t, Date{Year: 1990, Month: 1, Day: 1}, *v.DOB.Date)
	assert.Equal(t, Date{Year: 2008, Month: 9, Day: 15}, *v.RegDate.Date)
	assert.Equal(t, []string{"5", "06"}, v.Height)
	assert.Equal(t, "DEM", v.Affiliation)
	assert.Equal(t, "001", v.LibDist)
	assert.Equal(t, "A", v.VoterStatus)
	assert.Equal(t, "N", v.Absentee)
	assert.Nil(t, v.Mailing)
	assert.Nil(t, v.AbsenteeDetail)
	assert.Equal(t, []Election{{Type: "GE", Year: "16"}, {Type: "PE", Year: "16"}, {Type: "GE", Year: "12"}},
		v.HistoryCodes.Codes)
	assert.Equal(t, "PUBLIC,JANE Q JR", v.FullName())
	assert.Equal(t, "<Voter PUBLIC,JANE Q JR>", v.String())
}

func TestNewVoterPhoneOnly(t *testing.T) {
	row := testRow()
	row[22] = "555-12345"
	row[16] = "19900101"
	v, err := NewVoter(row)
	require.NoError(t, err)
	require.Len(t, v.Deviations, 1)
	assert.Equal(t, Deviation{Kind: MatchFailed, Field: "tel_number", Expected: Schema[22].Pattern.String(), Actual: "555-12345"},
		v.Deviations[0])
	assert.Equal(t, "555-12345", v.TelNumber)
	assert.Equal(t, Date{Year: 1990, Month: 1, Day: 1}, *v.DOB.Date)
}

func TestNewVoterAccumulates(t *testing.T) {
	row := testRow()
	row[0] = strings.Repeat("1", 20)
	row[17] = "X"
	row[16] = "1990011"
	row[47] = "1054"
	row[MinFields] = "GE1"
	v, err := NewVoter(row)
	require.NoError(t, err)

	got := make([]string, 0)
	for _, d := range v.Deviations {
		got = append(got, string(d.Kind)+":"+d.Field)
	}
	// in field order
	assert.Equal(t, []string{
		"length_error:voter_id",
		"date_format_error:dob",
		"match_failed:sex",
		"match_failed:mailing.zip",
		"history_code_error:history_codes",
	}, got)
	assert.Equal(t, "1990011", v.DOB.Raw)
	require.NotNil(t, v.Mailing)
	assert.Equal(t, "1054", v.Mailing.Zip)
	assert.Equal(t, "GE1", v.HistoryCodes.Raw)
}

func TestNewVoterSubRecords(t *testing.T) {
	row := make([]string, MinFields)
	v, err := NewVoter(row)
	require.NoError(t, err)
	assert.Nil(t, v.Name)
	assert.Nil(t, v.Address)
	assert.Nil(t, v.Mailing)
	assert.Nil(t, v.AbsenteeDetail)
	assert.Empty(t, v.Deviations)

	row[10] = "PO BOX 7"
	row[44] = "SUITE 3"
	row[57] = "FL"
	v, err = NewVoter(row)
	require.NoError(t, err)
	require.NotNil(t, v.Address)
	assert.Equal(t, []string{"", "PO BOX 7"}, v.Address.AddressLines)
	require.NotNil(t, v.Mailing)
	assert.Equal(t, []string{"", "", "", "SUITE 3"}, v.Mailing.Address)
	require.NotNil(t, v.AbsenteeDetail)
	require.NotNil(t, v.AbsenteeDetail.Add)
	assert.Equal(t, "FL", v.AbsenteeDetail.Add.State)

	row[57] = ""
	row[61] = "20161101"
	v, err = NewVoter(row)
	require.NoError(t, err)
	require.NotNil(t, v.AbsenteeDetail)
	assert.Nil(t, v.AbsenteeDetail.Add)
	assert.Equal(t, Date{Year: 2016, Month: 11, Day: 1}, *v.AbsenteeDetail.BallotReceivedDate.Date)
}

func TestNewVoterIdempotent(t *testing.T) {
	row := testRow()
	row[3] = strings.Repeat("Z", 30)
	row[22] = "5551234"
	a, err := NewVoter(row)
	require.NoError(t, err)
	b, err := NewVoter(row)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a.Deviations, 2)
}

func TestNewVoterShortRow(t *testing.T) {
	_, err := NewVoter(make([]string, MinFields-1))
	require.Error(t, err)
	assert.True(t, IsShortRow(err))
	sr := err.(*ShortRowError)
	assert.Equal(t, MinFields-1, sr.Len)
	assert.Equal(t, MinFields, sr.Min)
	assert.Equal(t, fmt.Sprintf("row has %d fields, need at least %d", MinFields-1, MinFields), sr.Error())
}

func TestNewVoterHistoryFromEnd(t *testing.T) {
	row := append(testRow(), "EXTRA")
	// history is second to last, flags last
	row[len(row)-2] = "GE08"
	v, err := NewVoter(row)
	require.NoError(t, err)
	assert.Equal(t, []Election{{Type: "GE", Year: "08"}}, v.HistoryCodes.Codes)
	assert.Equal(t, "EXTRA", v.Flags)
}

func TestSchemaCoversRow(t *testing.T) {
	covered := make([]bool, MinFields)
	for _, pos := range Positions() {
		fd := Schema[pos]
		for ind := pos; ind < pos+fd.Span(); ind++ {
			require.False(t, covered[ind], "position %d defined twice", ind)
			covered[ind] = true
		}
	}
	for ind, c := range covered {
		assert.True(t, c, "position %d has no field", ind)
	}

	fd, ok := Lookup("address.address_lines[1]")
	require.True(t, ok)
	assert.Equal(t, []int{40, 40}, fd.Widths)
	_, ok = Lookup("history_codes")
	assert.True(t, ok)
	_, ok = Lookup("nope")
	assert.False(t, ok)
}

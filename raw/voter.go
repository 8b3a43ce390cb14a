package raw

import (
	"errors"
	"fmt"
	"strings"
)

// Voter is one record of the BoE export. Sub-records are nil unless at least one of their
// fields was supplied.
type Voter struct {
	VoterID        string          `json:"voter_id"`
	Name           *Name           `json:"name,omitempty"`
	Address        *Address        `json:"address,omitempty"`
	FileDate       string          `json:"file_date"`
	DOB            DateField       `json:"dob"`
	Sex            string          `json:"sex"`
	Eye            string          `json:"eye"`
	Height         []string        `json:"height"`
	AreaCode       string          `json:"area_code"`
	TelNumber      string          `json:"tel_number"`
	RegDate        DateField       `json:"reg_date"`
	RegSource      string          `json:"reg_source"`
	Filler         string          `json:"filler"`
	Affiliation    string          `json:"affiliation"`
	Town           string          `json:"town"`
	Ward           string          `json:"ward"`
	Dist           string          `json:"dist"`
	CongressDist   string          `json:"congress_dist"`
	SenatorialDist string          `json:"senatorial_dist"`
	AssemblyDist   string          `json:"assembly_dist"`
	SchoolDist     string          `json:"school_dist"`
	CountyDist     string          `json:"county_dist"`
	VillageDist    string          `json:"village_dist"`
	FireDist       string          `json:"fire_dist"`
	LibDist        string          `json:"lib_dist"`
	VoterStatus    string          `json:"voter_status"`
	Reason         string          `json:"reason"`
	Absentee       string          `json:"absentee"`
	Mailing        *Mailing        `json:"mailing,omitempty"`
	AbsenteeDetail *AbsenteeDetail `json:"absentee_detail,omitempty"`
	HistoryCodes   History         `json:"history_codes"`
	Flags          string          `json:"flags"`
	Deviations     Deviations      `json:"deviations"`
}

type Name struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	Suffix     string `json:"suffix"`
}

type Address struct {
	StreetNumber string   `json:"street_number"`
	HalfCode     string   `json:"half_code"`
	StreetName   string   `json:"street_name"`
	AptNumber    string   `json:"apt_number"`
	AddressLines []string `json:"address_lines"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Zip          string   `json:"zip"`
	ZipPlus      string   `json:"zip_plus"`
}

// Mailing is the mailing address when it differs from the residence.
type Mailing struct {
	Address []string `json:"address"`
	City    string   `json:"city"`
	State   string   `json:"state"`
	Zip     string   `json:"zip"`
	ZipPlus string   `json:"zip_plus"`
}

// AbsenteeDetail is the absentee ballot application.
type AbsenteeDetail struct {
	ElectionCode            string           `json:"election_code"`
	Code                    string           `json:"code"`
	ApplicationReceivedDate string           `json:"application_received_date"`
	Add                     *AbsenteeAddress `json:"add,omitempty"`
	BallotIssuedDate        DateField        `json:"ballot_issued_date"`
	BallotReceivedDate      DateField        `json:"ballot_received_date"`
	BallotReissuedDate      DateField        `json:"ballot_reissued_date"`
	BallotRereceivedDate    DateField        `json:"ballot_rereceived_date"`
	ExpirationDate          DateField        `json:"expiration_date"`
	Eligible                string           `json:"eligible"`
	IneligibleReason        string           `json:"ineligible_reason"`
}

// AbsenteeAddress is where the absentee ballot is sent.
type AbsenteeAddress struct {
	Add     []string `json:"add"`
	City    string   `json:"city"`
	State   string   `json:"state"`
	Zip     string   `json:"zip"`
	ZipPlus string   `json:"zip_plus"`
}

// MinFields is the number of positional fields a row must have to be mapped.
const MinFields = 67

// ShortRowError is returned for a row too short to map. Row is the 0-based position of the row
// in the input; it is -1 when the row was mapped on its own.
type ShortRowError struct {
	Row int
	Len int
	Min int
}

func (e *ShortRowError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("row has %d fields, need at least %d", e.Len, e.Min)
	}
	return fmt.Sprintf("row %d has %d fields, need at least %d", e.Row, e.Len, e.Min)
}

// IsShortRow reports whether err is (or wraps) a *ShortRowError.
func IsShortRow(err error) bool {
	var sr *ShortRowError
	return errors.As(err, &sr)
}

// FullName is "Last,First[ Middle][ Suffix]".
func (v *Voter) FullName() string {
	if v.Name == nil {
		return ""
	}
	res := v.Name.LastName + "," + v.Name.FirstName
	if v.Name.MiddleName != "" {
		res += " " + v.Name.MiddleName
	}
	if v.Name.Suffix != "" {
		res += " " + v.Name.Suffix
	}
	return res
}

func (v *Voter) String() string {
	return fmt.Sprintf("<Voter %s>", strings.TrimSpace(v.FullName()))
}

// Clean reports whether every field passed its checks.
func (v *Voter) Clean() bool {
	return len(v.Deviations) == 0
}

package raw

// Reference tables for Putnam County. They describe codes found in the export but are not
// enforced while parsing. Treat them as read-only.

// FormatDefinition identifies the layout document the field table follows.
var FormatDefinition = struct {
	FileName string
	Date     string
	Updated  string
}{
	FileName: "NTS VTR EXPORT FILE FORMAT STANDARD.pdf",
	Date:     "5/24/2007",
	Updated:  "01/10/2008",
}

var SchoolDistrictCodes = map[string]string{
	"001": "Mahopac School Dist.",
	"002": "Carmel School Dist.",
	"003": "Brewster School Dist.",
	"004": "Lakeland School Dist.",
	"005": "North Salem School Dist.",
	"006": "Putnam Valley School Dist.",
	"007": "Wappingers Falls School Dist.",
	"008": "Pawling School Dist.",
	"009": "Garrison School Dist.",
	"010": "Haldane School Dist.",
}

var FireDistrictCodes = map[string]string{
	"001": "Mahopac School Dept.",
	"002": "Mahopac Falls Fire Dept.",
	"003": "Carmel Fire Dept.",
	"004": "Croton Falls Fire Dept.",
	"005": "Kent Fire Dept.",
	"006": "Putnam Valley Fire Dept.",
	"007": "Lake Carmel Fire Dept.",
	"008": "Patterson Fire Dept.",
	"009": "Putnam Lake Fire Dept.",
	"010": "Garrison Fire Dept.",
	"011": "Cold Spring Fire Dept.",
	"012": "Continental Village Fire Dept.",
	"013": "No. Highland Fire Dept.",
	"014": "Brewster Fire Dept.",
}

var TownCodes = map[string]string{
	"CA": "Carmel",
	"KE": "Kent",
	"PA": "Patterson",
	"PH": "Phillipston",
	"PV": "Putnam Valley",
	"SE": "Southeast",
}

var LibraryDistrictCodes = map[string]string{
	"000": "No Assigned Library Dist",
	"001": "Mahopac Library Dist",
}

// Affiliations are the party codes the BoE uses.
var Affiliations = map[string]bool{
	"BLK": true, "CON": true, "DEM": true, "GRE": true, "IND": true, "LBT": true,
	"OTH": true, "REF": true, "REP": true, "WEP": true, "WOR": true,
}

// ValidAffiliation reports whether aff is a known party code. BLK (blank) is unaffiliated.
func ValidAffiliation(aff string) bool {
	return Affiliations[aff]
}

// TownName returns the town for a code, or the code itself if it is not known.
func TownName(code string) string {
	return lookup(TownCodes, code)
}

func SchoolDistrict(code string) string {
	return lookup(SchoolDistrictCodes, code)
}

func FireDistrict(code string) string {
	return lookup(FireDistrictCodes, code)
}

func LibraryDistrict(code string) string {
	return lookup(LibraryDistrictCodes, code)
}

func lookup(tbl map[string]string, code string) string {
	if name, ok := tbl[code]; ok {
		return name
	}
	return code
}

package calllist

import "regexp"

const towns = `PATTERSON|CARMEL|KENT|PHILIPSTOWN|PUTNAM VALLEY|SOUTHEAST`

// ignores are report headers and footers that never hold a voter.
var ignores = []string{
	"Ward/Dist Sex Date of Birth Registered Status",
	"CityVoter ID Name Street Address AFF Phone",
	"Party of DEM",
	"Voter Status of A - Active",
	"Ordered by Town/Ward/District, Street Address",
	"Break on Town/Ward/District",
	"Report Criteria:",
	"TEAM SQL Version 6.7.3 Copyright Â© NTS Data Services, LLC.",
	"r_avtrcd",
	"Town",
	"WEBCORRECT",
}

// ignorePatterns match header lines whose text changes from page to page.
var ignorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(` + towns + `),\WDistrict \d*`),
	regexp.MustCompile(`Putnam County Board of Elections`),
	regexp.MustCompile(`Town of:`),
	regexp.MustCompile(`Detailed Voter Master Call List`),
	regexp.MustCompile(`Voters Reported`),
	regexp.MustCompile(`User:\W\w*\W Station: BOE-`),
}

// Ignored reports whether line is known report furniture.
func Ignored(line string) bool {
	for _, ig := range ignores {
		if line == ig {
			return true
		}
	}
	for _, re := range ignorePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

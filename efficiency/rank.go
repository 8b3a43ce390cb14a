package efficiency

import (
	"sort"

	"github.com/invertedv/voters/raw"
)

// DefaultParties are the affiliations averaged when none are given.
var DefaultParties = []string{"DEM", "REP", "BLK"}

// DefaultBar is the history length a voter must exceed to be ranked.
const DefaultBar = 5

// PartyAverage is the mean efficiency of the voters registered with Party.
type PartyAverage struct {
	Party   string  `json:"party"`
	Average float64 `json:"average"`
	Voters  int     `json:"voters"`
}

// ByParty averages efficiency by affiliation, truncated to two decimals. Voters whose
// efficiency can't be computed are left out. A party with no voters averages 0.
func ByParty(voters []*raw.Voter, e Elections, parties []string, cutoff int) []PartyAverage {
	if len(parties) == 0 {
		parties = DefaultParties
	}
	out := make([]PartyAverage, 0, len(parties))
	for _, p := range parties {
		pa := PartyAverage{Party: p}
		sum := 0.0
		for _, v := range voters {
			if v.Affiliation != p {
				continue
			}
			eff, err := Efficiency(v.HistoryCodes.Codes, e, cutoff)
			if err != nil {
				continue
			}
			sum += eff
			pa.Voters++
		}
		if pa.Voters > 0 {
			pa.Average = float2(sum / float64(pa.Voters))
		}
		out = append(out, pa)
	}
	return out
}

// Ranked is one entry of the efficiency ranking. Index is the voter's position in the slice
// that was ranked.
type Ranked struct {
	Index      int     `json:"index"`
	VoterID    string  `json:"voter_id"`
	Name       string  `json:"name"`
	Efficiency float64 `json:"efficiency"`
}

// Rank orders the voters with more than bar history entries by efficiency, highest first.
// Ties keep input order.
func Rank(voters []*raw.Voter, e Elections, bar, cutoff int) []Ranked {
	out := make([]Ranked, 0)
	for ind, v := range voters {
		if len(v.HistoryCodes.Codes) <= bar {
			continue
		}
		eff, err := Efficiency(v.HistoryCodes.Codes, e, cutoff)
		if err != nil {
			continue
		}
		out = append(out, Ranked{Index: ind, VoterID: v.VoterID, Name: v.FullName(), Efficiency: float2(eff)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Efficiency > out[j].Efficiency
	})
	return out
}

// Year is the set of elections held in one year.
type Year struct {
	Year  int      `json:"year"`
	Types []string `json:"types"`
}

// Report is the efficiency document written by the CLI.
type Report struct {
	Cutoff    int            `json:"cutoff"`
	Bar       int            `json:"bar"`
	Elections []Year         `json:"elections"`
	Parties   []PartyAverage `json:"parties"`
	Ranking   []Ranked       `json:"ranking"`
}

// NewReport scores voters against e.
func NewReport(voters []*raw.Voter, e Elections, parties []string, bar, cutoff int) *Report {
	r := &Report{
		Cutoff:  cutoff,
		Bar:     bar,
		Parties: ByParty(voters, e, parties, cutoff),
		Ranking: Rank(voters, e, bar, cutoff),
	}
	for _, y := range e.Years() {
		r.Elections = append(r.Elections, Year{Year: y, Types: e.Types(y)})
	}
	return r
}

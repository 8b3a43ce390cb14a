// Package efficiency scores voters by how many of the elections held since their first
// recorded vote they took part in.
package efficiency

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/invertedv/voters/raw"
	"github.com/shopspring/decimal"
)

// DefaultCutoff splits 2-digit years: years at or above it are 19xx, years below it are 20xx.
// It is also the first year past the end of the export's history.
const DefaultCutoff = 18

// ErrNoElections is returned when no elections were held since a voter's first recorded vote.
var ErrNoElections = errors.New("no elections held since first vote")

// Elections is the universe of elections found in an export: 2-digit year -> election types.
type Elections map[int]map[string]struct{}

// Add puts the elections of one history into e. Entries whose year is not numeric are ignored.
func (e Elections) Add(hist []raw.Election) {
	for _, el := range hist {
		year, err := strconv.Atoi(el.Year)
		if err != nil {
			continue
		}
		if _, ok := e[year]; !ok {
			e[year] = make(map[string]struct{})
		}
		e[year][el.Type] = struct{}{}
	}
}

// Held is the number of distinct elections held in year.
func (e Elections) Held(year int) int {
	return len(e[year])
}

// Years returns the years with at least one election, ascending.
func (e Elections) Years() []int {
	years := make([]int, 0, len(e))
	for y := range e {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Types returns the election types held in year, sorted.
func (e Elections) Types(year int) []string {
	types := make([]string, 0, len(e[year]))
	for t := range e[year] {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// FromVoters builds the election universe from decoded histories. Voters whose history did
// not decode contribute nothing.
func FromVoters(voters []*raw.Voter) Elections {
	e := make(Elections)
	for _, v := range voters {
		e.Add(v.HistoryCodes.Codes)
	}
	return e
}

// FromRows builds the election universe straight from the raw rows, taking the second to last
// field of each row. This works for rows too short to map.
func FromRows(rows [][]string) Elections {
	e := make(Elections)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		hist, err := raw.DecodeHistory(row[len(row)-2])
		if err != nil {
			continue
		}
		e.Add(hist)
	}
	return e
}

// Since counts the elections held from year through the end of the history. A year at or
// above cutoff counts through 99 and then 0 to cutoff-1.
func Since(year int, e Elections, cutoff int) int {
	num := 0
	if year >= cutoff {
		for y := year; y < 100; y++ {
			num += e.Held(y)
		}
		year = 0
	}
	for y := year; y < cutoff; y++ {
		num += e.Held(y)
	}
	return num
}

// Efficiency is the share of elections held since the voter's earliest recorded vote (the last
// entry of hist) that the voter took part in. An empty history scores 0.
func Efficiency(hist []raw.Election, e Elections, cutoff int) (float64, error) {
	if len(hist) == 0 {
		return 0, nil
	}
	first := hist[len(hist)-1]
	year, err := strconv.Atoi(first.Year)
	if err != nil {
		return 0, fmt.Errorf("election %s%s: bad year: %w", first.Type, first.Year, err)
	}
	held := Since(year, e, cutoff)
	if held == 0 {
		return 0, fmt.Errorf("%w (year %02d)", ErrNoElections, year)
	}
	return float64(len(hist)) / float64(held), nil
}

// float2 truncates x to two decimals.
func float2(x float64) float64 {
	return decimal.NewFromFloat(x).Truncate(2).InexactFloat64()
}

// Package audience selects voters and writes them in the column layout ad platforms take for
// customer-list audiences.
package audience

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/invertedv/voters/raw"
	"github.com/xuri/excelize/v2"
)

// Header is the column order of both writers.
var Header = []string{"phone", "fn", "ln", "zip", "ct", "st", "country", "dob", "doby", "gen", "age"}

// SheetName is the worksheet the XLSX writer fills.
const SheetName = "audience"

// Criteria selects voters. An empty list matches everything.
type Criteria struct {
	Affiliations []string
	Towns        []string
	Statuses     []string
}

func in(list []string, s string) bool {
	if len(list) == 0 {
		return true
	}
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

// Match reports whether v meets every criterion.
func (c Criteria) Match(v *raw.Voter) bool {
	return in(c.Affiliations, v.Affiliation) && in(c.Towns, v.Town) && in(c.Statuses, v.VoterStatus)
}

// Select returns the voters matching c, in order.
func Select(voters []*raw.Voter, c Criteria) []*raw.Voter {
	out := make([]*raw.Voter, 0)
	for _, v := range voters {
		if c.Match(v) {
			out = append(out, v)
		}
	}
	return out
}

// Row is one audience line. Missing source fields are empty.
type Row struct {
	Phone   string
	First   string
	Last    string
	Zip     string
	City    string
	State   string
	Country string
	DOB     string
	DOBYear string
	Gender  string
	Age     string
}

// Values returns the row in Header order.
func (r Row) Values() []string {
	return []string{r.Phone, r.First, r.Last, r.Zip, r.City, r.State, r.Country, r.DOB, r.DOBYear, r.Gender, r.Age}
}

// NewRow converts v. Age is counted from refYear.
func NewRow(v *raw.Voter, refYear int) Row {
	r := Row{Country: "US", Gender: v.Sex}
	if v.TelNumber != "" {
		r.Phone = fmt.Sprintf("1-(%s)-%s", v.AreaCode, v.TelNumber)
	}
	if v.Name != nil {
		r.First, r.Last = v.Name.FirstName, v.Name.LastName
	}
	if v.Address != nil {
		r.Zip, r.City, r.State = v.Address.Zip, v.Address.City, v.Address.State
	}
	if d := v.DOB.Date; d != nil {
		r.DOB = fmt.Sprintf("%d/%d/%02d", d.Month, d.Day, d.Year%100)
		r.DOBYear = strconv.Itoa(d.Year)
		r.Age = strconv.Itoa(refYear - d.Year)
	}
	return r
}

// Build converts voters to rows.
func Build(voters []*raw.Voter, refYear int) []Row {
	rows := make([]Row, len(voters))
	for ind, v := range voters {
		rows[ind] = NewRow(v, refYear)
	}
	return rows
}

// WriteCSV writes a header line and rows.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes rows to a workbook with a single sheet and a bold header.
func WriteXLSX(w io.Writer, rows []Row) (err error) {
	f := excelize.NewFile()
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()
	if err = f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err = setRow(f, 1, Header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err = f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return err
	}
	for ind, r := range rows {
		if err = setRow(f, ind+2, r.Values()); err != nil {
			return err
		}
	}
	if err = f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, vals []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(vals))
	for ind, v := range vals {
		cells[ind] = v
	}
	return f.SetSheetRow(SheetName, cell, &cells)
}

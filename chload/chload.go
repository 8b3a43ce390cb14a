// Package chload loads parsed voter records into ClickHouse.
package chload

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/invertedv/chutils"
	"github.com/invertedv/voters/raw"
)

// ConnectOptions say where ClickHouse is. Host is an address without a port (9000 is used).
// Database qualifies table names given without one. MaxMemory is passed as max_memory_usage when > 0.
type ConnectOptions struct {
	Host      string
	User      string
	Password  string
	Database  string
	MaxMemory int64
}

// Connect opens and pings a ClickHouse connection.
func Connect(opt ConnectOptions) (*chutils.Connect, error) {
	settings := clickhouse.Settings{}
	if opt.MaxMemory > 0 {
		settings["max_memory_usage"] = opt.MaxMemory
	}
	conn, err := chutils.NewConnect(opt.Host, opt.User, opt.Password, settings)
	if err != nil {
		if conn != nil && conn.DB != nil {
			_ = conn.Close()
		}
		return nil, fmt.Errorf("connect %s: %w", opt.Host, err)
	}
	return conn, nil
}

// Qualify prefixes table with database unless it already names one.
func Qualify(database, table string) string {
	if database == "" || strings.Contains(table, ".") {
		return table
	}
	return database + "." + table
}

// Column is one column of the voter table and how to fill it from a record.
type Column struct {
	*chutils.FieldDef
	value func(v *raw.Voter) any
}

// date converts a decoded date to a Date32 value. Dates that do not exist or fall outside the
// Date32 range load as NULL; the text is kept in the companion _raw column.
func date(df raw.DateField) *time.Time {
	d := df.Date
	if d == nil || d.Year < 1900 || d.Year > 2299 {
		return nil
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != d.Year || int(t.Month()) != d.Month || t.Day() != d.Day {
		return nil
	}
	return &t
}

func rawDate(df raw.DateField) string {
	if df.Date != nil {
		return df.Date.String()
	}
	return df.Raw
}

func name(v *raw.Voter) raw.Name {
	if v.Name == nil {
		return raw.Name{}
	}
	return *v.Name
}

func address(v *raw.Voter) raw.Address {
	if v.Address == nil {
		return raw.Address{AddressLines: []string{}}
	}
	return *v.Address
}

func mailing(v *raw.Voter) raw.Mailing {
	if v.Mailing == nil {
		return raw.Mailing{Address: []string{}}
	}
	return *v.Mailing
}

func absentee(v *raw.Voter) raw.AbsenteeDetail {
	if v.AbsenteeDetail == nil {
		return raw.AbsenteeDetail{}
	}
	return *v.AbsenteeDetail
}

func strs(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func field(name, comment string, base chutils.ChType, funcs ...chutils.OuterFunc) *chutils.FieldDef {
	return chutils.NewFieldDef(name, chutils.ChField{Base: base, Funcs: funcs}, comment, chutils.NewLegalValues(), nil, 0)
}

func text(name, comment string, fn func(v *raw.Voter) string) Column {
	return Column{FieldDef: field(name, comment, chutils.ChString), value: func(v *raw.Voter) any { return fn(v) }}
}

func code(name, comment string, fn func(v *raw.Voter) string) Column {
	return Column{FieldDef: field(name, comment, chutils.ChString, chutils.OuterLowCardinality),
		value: func(v *raw.Voter) any { return fn(v) }}
}

func list(name, comment string, fn func(v *raw.Voter) []string) Column {
	return Column{FieldDef: field(name, comment, chutils.ChString, chutils.OuterArray),
		value: func(v *raw.Voter) any { return strs(fn(v)) }}
}

// codes is an array column that is nested under a common name in the table.
func codes(name, comment string, fn func(v *raw.Voter) []string) Column {
	return Column{FieldDef: field(name, comment, chutils.ChString, chutils.OuterArray, chutils.OuterLowCardinality),
		value: func(v *raw.Voter) any { return fn(v) }}
}

func dateCol(name, comment string, fn func(v *raw.Voter) raw.DateField) []Column {
	return []Column{
		{FieldDef: field(name, comment, chutils.ChDate, chutils.OuterNullable),
			value: func(v *raw.Voter) any { return date(fn(v)) }},
		text(name+"_raw", comment+", as given", func(v *raw.Voter) string { return rawDate(fn(v)) }),
	}
}

// Columns is the voter table, in insert order, without the trailing batch_id.
var Columns = buildColumns()

func buildColumns() []Column {
	cols := []Column{
		text("voter_id", "BoE voter id", func(v *raw.Voter) string { return v.VoterID }),
		text("last_name", "last name", func(v *raw.Voter) string { return name(v).LastName }),
		text("first_name", "first name", func(v *raw.Voter) string { return name(v).FirstName }),
		text("middle_name", "middle name", func(v *raw.Voter) string { return name(v).MiddleName }),
		text("suffix", "name suffix", func(v *raw.Voter) string { return name(v).Suffix }),
		text("street_number", "residence street number", func(v *raw.Voter) string { return address(v).StreetNumber }),
		text("half_code", "residence half code", func(v *raw.Voter) string { return address(v).HalfCode }),
		text("street_name", "residence street", func(v *raw.Voter) string { return address(v).StreetName }),
		text("apt_number", "residence apartment", func(v *raw.Voter) string { return address(v).AptNumber }),
		list("address_lines", "residence address lines", func(v *raw.Voter) []string { return address(v).AddressLines }),
		code("city", "residence city", func(v *raw.Voter) string { return address(v).City }),
		code("state", "residence state", func(v *raw.Voter) string { return address(v).State }),
		code("zip", "residence zip", func(v *raw.Voter) string { return address(v).Zip }),
		text("zip_plus", "residence zip+4", func(v *raw.Voter) string { return address(v).ZipPlus }),
		text("file_date", "file date, as given", func(v *raw.Voter) string { return v.FileDate }),
	}
	cols = append(cols, dateCol("dob", "date of birth", func(v *raw.Voter) raw.DateField { return v.DOB })...)
	cols = append(cols,
		code("sex", "sex: M, F", func(v *raw.Voter) string { return v.Sex }),
		code("eye", "eye color", func(v *raw.Voter) string { return v.Eye }),
		list("height", "height: feet, inches", func(v *raw.Voter) []string { return v.Height }),
		code("area_code", "phone area code", func(v *raw.Voter) string { return v.AreaCode }),
		text("tel_number", "phone number", func(v *raw.Voter) string { return v.TelNumber }),
	)
	cols = append(cols, dateCol("reg_date", "registration date", func(v *raw.Voter) raw.DateField { return v.RegDate })...)
	cols = append(cols,
		code("reg_source", "registration source", func(v *raw.Voter) string { return v.RegSource }),
		text("filler", "filler", func(v *raw.Voter) string { return v.Filler }),
		code("affiliation", "party", func(v *raw.Voter) string { return v.Affiliation }),
		code("town", "town code", func(v *raw.Voter) string { return v.Town }),
		code("ward", "ward", func(v *raw.Voter) string { return v.Ward }),
		code("dist", "election district", func(v *raw.Voter) string { return v.Dist }),
		code("congress_dist", "congressional district", func(v *raw.Voter) string { return v.CongressDist }),
		code("senatorial_dist", "state senate district", func(v *raw.Voter) string { return v.SenatorialDist }),
		code("assembly_dist", "assembly district", func(v *raw.Voter) string { return v.AssemblyDist }),
		code("school_dist", "school district", func(v *raw.Voter) string { return v.SchoolDist }),
		code("county_dist", "county legislative district", func(v *raw.Voter) string { return v.CountyDist }),
		code("village_dist", "village district", func(v *raw.Voter) string { return v.VillageDist }),
		code("fire_dist", "fire district", func(v *raw.Voter) string { return v.FireDist }),
		code("lib_dist", "library district", func(v *raw.Voter) string { return v.LibDist }),
		code("voter_status", "status: A, I, P", func(v *raw.Voter) string { return v.VoterStatus }),
		code("reason", "status reason", func(v *raw.Voter) string { return v.Reason }),
		code("absentee", "absentee voter: Y, N", func(v *raw.Voter) string { return v.Absentee }),
		list("mailing_address", "mailing address lines", func(v *raw.Voter) []string { return mailing(v).Address }),
		text("mailing_city", "mailing city", func(v *raw.Voter) string { return mailing(v).City }),
		text("mailing_state", "mailing state", func(v *raw.Voter) string { return mailing(v).State }),
		text("mailing_zip", "mailing zip", func(v *raw.Voter) string { return mailing(v).Zip }),
		text("mailing_zip_plus", "mailing zip+4", func(v *raw.Voter) string { return mailing(v).ZipPlus }),
		code("absentee_election_code", "absentee election", func(v *raw.Voter) string { return absentee(v).ElectionCode }),
		code("absentee_code", "absentee code", func(v *raw.Voter) string { return absentee(v).Code }),
		text("absentee_application_received", "absentee application received, as given",
			func(v *raw.Voter) string { return absentee(v).ApplicationReceivedDate }),
	)
	cols = append(cols, dateCol("ballot_issued", "absentee ballot issued",
		func(v *raw.Voter) raw.DateField { return absentee(v).BallotIssuedDate })...)
	cols = append(cols, dateCol("ballot_received", "absentee ballot received",
		func(v *raw.Voter) raw.DateField { return absentee(v).BallotReceivedDate })...)
	cols = append(cols, dateCol("ballot_reissued", "absentee ballot reissued",
		func(v *raw.Voter) raw.DateField { return absentee(v).BallotReissuedDate })...)
	cols = append(cols, dateCol("ballot_rereceived", "absentee ballot received again",
		func(v *raw.Voter) raw.DateField { return absentee(v).BallotRereceivedDate })...)
	cols = append(cols, dateCol("absentee_expiration", "absentee application expires",
		func(v *raw.Voter) raw.DateField { return absentee(v).ExpirationDate })...)
	cols = append(cols,
		code("absentee_eligible", "absentee eligible: Y, N", func(v *raw.Voter) string { return absentee(v).Eligible }),
		text("absentee_ineligible_reason", "why not eligible", func(v *raw.Voter) string { return absentee(v).IneligibleReason }),
		codes("type", "election type: GE, PE, ...", func(v *raw.Voter) []string { return historyPart(v, true) }),
		codes("year", "2-digit election year", func(v *raw.Voter) []string { return historyPart(v, false) }),
		text("history_raw", "history codes, when they did not decode", func(v *raw.Voter) string { return v.HistoryCodes.Raw }),
		text("flags", "operational flags", func(v *raw.Voter) string { return v.Flags }),
		codes("field", "field that failed a check", func(v *raw.Voter) []string { return qaPart(v, true) }),
		codes("kind", "check that failed", func(v *raw.Voter) []string { return qaPart(v, false) }),
	)
	return cols
}

func historyPart(v *raw.Voter, types bool) []string {
	out := make([]string, len(v.HistoryCodes.Codes))
	for ind, e := range v.HistoryCodes.Codes {
		if types {
			out[ind] = e.Type
		} else {
			out[ind] = e.Year
		}
	}
	return out
}

func qaPart(v *raw.Voter, fields bool) []string {
	out := make([]string, len(v.Deviations))
	for ind, d := range v.Deviations {
		if fields {
			out[ind] = d.Field
		} else {
			out[ind] = string(d.Kind)
		}
	}
	return out
}

// Table is the voter table definition: Columns, then batch_id, keyed on voter_id. history.type/year
// and qa.field/kind are nested.
func Table() (*chutils.TableDef, error) {
	fds := make(map[int]*chutils.FieldDef)
	for ind, c := range buildColumns() {
		fds[ind] = c.FieldDef
	}
	fds[len(fds)] = field("batch_id", "load that wrote the row", chutils.ChString, chutils.OuterLowCardinality)
	td := chutils.NewTableDef("voter_id", chutils.MergeTree, fds)
	if err := td.Nest("history", "type", "year"); err != nil {
		return nil, err
	}
	if err := td.Nest("qa", "field", "kind"); err != nil {
		return nil, err
	}
	return td, nil
}

// Values is the insert row for v.
func Values(v *raw.Voter, batchID uuid.UUID) []any {
	vals := make([]any, 0, len(Columns)+1)
	for _, c := range Columns {
		vals = append(vals, c.value(v))
	}
	return append(vals, batchID.String())
}

// CreateTable drops and creates table. Dates are then widened to Date32, which covers birth dates
// before 1970.
func CreateTable(ctx context.Context, conn *chutils.Connect, table string) error {
	td, err := Table()
	if err != nil {
		return err
	}
	if e := td.Create(conn, table); e != nil {
		return fmt.Errorf("create %s: %w", table, e)
	}
	for _, c := range Columns {
		if c.ChSpec.Base != chutils.ChDate {
			continue
		}
		qry := fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s Nullable(Date32)", table, c.Name)
		if _, e := conn.ExecContext(ctx, qry); e != nil {
			return fmt.Errorf("create %s: %w", table, e)
		}
	}
	return nil
}

// Load inserts voters into table, committing a batch every batchSize rows (all at once when
// batchSize < 1). It returns the number of rows committed.
func Load(ctx context.Context, conn *chutils.Connect, table string, batchID uuid.UUID, voters []*raw.Voter, batchSize int) (int, error) {
	if batchSize < 1 {
		batchSize = len(voters)
	}
	sent := 0
	for start := 0; start < len(voters); start += batchSize {
		end := start + batchSize
		if end > len(voters) {
			end = len(voters)
		}
		if err := send(ctx, conn, table, batchID, voters[start:end]); err != nil {
			return sent, err
		}
		sent = end
	}
	return sent, nil
}

func send(ctx context.Context, conn *chutils.Connect, table string, batchID uuid.UUID, voters []*raw.Voter) (err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table)
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()
	for _, v := range voters {
		if err = ctx.Err(); err != nil {
			return err
		}
		if _, err = stmt.ExecContext(ctx, Values(v, batchID)...); err != nil {
			return fmt.Errorf("voter %s: %w", v.VoterID, err)
		}
	}
	return tx.Commit()
}

package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/invertedv/voters/raw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func row(id, last, aff, hist string) string {
	r := make([]string, raw.MinFields+2)
	r[0] = id
	r[1], r[3] = "PAT", last
	r[11], r[12], r[13] = "MAHOPAC", "NY", "10541"
	r[16], r[17] = "19800704", "F"
	r[21], r[22] = "845", "555-1234"
	r[26], r[27] = aff, "CA"
	r[38] = "A"
	r[raw.MinFields] = hist
	return strings.Join(r, ",")
}

func writeExport(t *testing.T, lines ...string) string {
	fileName := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(fileName, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return fileName
}

func run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseCmd(t *testing.T) {
	export := writeExport(t,
		row("00000001", "ONE", "DEM", "GE16PE16GE12"),
		row("00000002", "TWO", "REP", "GE1"),
	)
	dir := t.TempDir()
	out := filepath.Join(dir, "voters.json")
	prom := filepath.Join(dir, "voters.prom")

	stdout, err := run("parse", export, "-o", out, "--metrics", prom)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 records, 1 clean, 1 deviations")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc struct {
		BatchID string           `json:"batch_id"`
		Source  string           `json:"source"`
		Voters  []map[string]any `json:"voters"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Len(t, doc.BatchID, 36)
	assert.Equal(t, "export.csv", doc.Source)
	require.Len(t, doc.Voters, 2)
	assert.Equal(t, "00000001", doc.Voters[0]["voter_id"])

	b, err = os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(b), `voters_deviations_total{field="history_codes",kind="history_code_error"} 1`)
}

func TestParseCmdPolicy(t *testing.T) {
	export := writeExport(t, row("00000001", "ONE", "DEM", ""), "too,short")
	out := filepath.Join(t.TempDir(), "voters.json")

	_, err := run("parse", export, "-o", out)
	require.Error(t, err)
	assert.True(t, raw.IsShortRow(err))

	stdout, err := run("parse", export, "-o", out, "--policy", "skip")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 short rows skipped")

	_, err = run("parse", export, "--concur", "0")
	assert.ErrorContains(t, err, "Concur")
}

func TestEfficiencyCmd(t *testing.T) {
	export := writeExport(t,
		row("00000001", "ONE", "DEM", "GE16PE16GE12"),
		row("00000002", "TWO", "DEM", "GE16"),
		row("00000003", "THREE", "REP", "PE16GE12"),
	)
	out := filepath.Join(t.TempDir(), "efficiency.json")
	stdout, err := run("efficiency", export, "-o", out, "--bar", "1", "--parties", "DEM,REP")
	require.NoError(t, err)
	assert.Contains(t, stdout, "DEM    0.75  (2 voters)")
	assert.Contains(t, stdout, "REP    0.66  (1 voters)")
	assert.Contains(t, stdout, "2 voters ranked")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var rpt struct {
		Cutoff  int `json:"cutoff"`
		Ranking []struct {
			VoterID string `json:"voter_id"`
		} `json:"ranking"`
	}
	require.NoError(t, json.Unmarshal(b, &rpt))
	assert.Equal(t, 18, rpt.Cutoff)
	require.Len(t, rpt.Ranking, 2)
	assert.Equal(t, "00000001", rpt.Ranking[0].VoterID)
}

func TestAudienceCmd(t *testing.T) {
	export := writeExport(t,
		row("00000001", "ONE", "DEM", ""),
		row("00000002", "TWO", "REP", ""),
	)
	dir := t.TempDir()
	out := filepath.Join(dir, "audience.csv")
	_, err := run("audience", export, "-o", out, "--aff", "REP", "--year", "2017")
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"1-(845)-555-1234", "PAT", "TWO", "10541", "MAHOPAC", "NY", "US", "7/4/80", "1980", "F", "37"},
		recs[1])

	_, err = run("audience", export, "-o", filepath.Join(dir, "audience.xlsx"))
	require.NoError(t, err)
	fi, err := os.Stat(filepath.Join(dir, "audience.xlsx"))
	require.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))
}

func TestCalllistCmd(t *testing.T) {
	text := filepath.Join(t.TempDir(), "calllist.txt")
	lines := []string{
		"Detailed Voter Master Call List",
		"00012345 PUBLIC, JANE Q 10 CROTON FALLS ROAD MAHOPAC 10541-1617CA/000/001 DEM (845) 555-1234 F 01/01/1990 09/15/2008 Active",
		"ADMIN",
	}
	require.NoError(t, os.WriteFile(text, []byte(strings.Join(lines, "\n")), 0o644))
	out := filepath.Join(t.TempDir(), "calllist.json")
	stdout, err := run("calllist", text, "-o", out)
	require.NoError(t, err)
	assert.Equal(t, "1 entries, 0 rejected, 0 unknown lines\n", stdout)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status": "Active ADMIN"`)
}

func TestLoadCmdNeedsTable(t *testing.T) {
	_, err := run("load", "export.csv")
	assert.ErrorContains(t, err, "table")
}

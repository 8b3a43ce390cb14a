package raw

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func joinRow(row []string) string {
	out := make([]string, len(row))
	for ind, f := range row {
		if strings.ContainsAny(f, ",|\n") {
			f = "|" + strings.ReplaceAll(f, "|", "||") + "|"
		}
		out[ind] = f
	}
	return strings.Join(out, ",")
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{"a,,c,", []string{"a", "", "c", ""}},
		{"|a, b|,c", []string{"a, b", "c"}},
		{"|a||b|,c", []string{"a|b", "c"}},
		{`a"b,c`, []string{`a"b`, "c"}},
		{"x|y,z", []string{"x|y", "z"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitLine(tt.line, ',', '|'), tt.line)
	}
}

func TestReadMultiline(t *testing.T) {
	in := "a,|b\nc|,d\r\n\ne,f"
	rr := newRowReader(strings.NewReader(in), ',', '|')
	row, err := rr.read()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b\nc", "d"}, row)
	row, err = rr.read()
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "f"}, row)
	_, err = rr.read()
	assert.ErrorIs(t, err, io.EOF)
}

func export(rows ...[]string) string {
	lines := make([]string, len(rows))
	for ind, r := range rows {
		lines[ind] = joinRow(r)
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestReadOrderAndPolicy(t *testing.T) {
	ctx := context.Background()
	rows := make([][]string, 0)
	for ind := 0; ind < 50; ind++ {
		r := testRow()
		r[0] = strings.Repeat("0", 6) + string(rune('A'+ind%26)) + string(rune('a'+ind/26))
		rows = append(rows, r)
	}
	rows[7] = []string{"too", "short"}
	rows[30] = rows[30][:20]
	in := export(rows...)

	_, err := Read(ctx, strings.NewReader(in), ReadOptions{Concur: 8})
	var sr *ShortRowError
	require.True(t, errors.As(err, &sr))
	assert.Equal(t, 7, sr.Row)
	assert.Equal(t, 2, sr.Len)

	res, err := Read(ctx, strings.NewReader(in), ReadOptions{Concur: 8, Policy: Skip})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 50)
	require.Len(t, res.Records, 48)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 7, res.Skipped[0].Row)
	assert.Equal(t, 30, res.Skipped[1].Row)
	assert.Equal(t, 20, res.Skipped[1].Len)

	prev := -1
	for _, rec := range res.Records {
		assert.Greater(t, rec.Row, prev)
		prev = rec.Row
		assert.Equal(t, rows[rec.Row][0], rec.Voter.VoterID)
	}
	assert.Len(t, res.Voters(), 48)
}

func TestReadQuotedFields(t *testing.T) {
	row := testRow()
	row[7] = "MAIN ST, REAR"
	res, err := Read(context.Background(), strings.NewReader(export(row)), ReadOptions{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "MAIN ST, REAR", res.Records[0].Voter.Address.StreetName)
}

func TestReadEncoding(t *testing.T) {
	row := testRow()
	row[3] = "MUÑOZ"
	enc, err := charmap.ISO8859_1.NewEncoder().String(export(row))
	require.NoError(t, err)

	res, err := Read(context.Background(), strings.NewReader(enc), ReadOptions{Encoding: "latin1"})
	require.NoError(t, err)
	assert.Equal(t, "MUÑOZ", res.Records[0].Voter.Name.LastName)

	row = testRow()
	row[1] = "MARIA JOSÉLENAX"
	enc, err = charmap.ISO8859_1.NewEncoder().String(export(row))
	require.NoError(t, err)
	res, err = Read(context.Background(), strings.NewReader(enc), ReadOptions{Encoding: "latin1"})
	require.NoError(t, err)
	assert.Equal(t, "MARIA JOSÉLENAX", res.Records[0].Voter.Name.FirstName)
	assert.True(t, res.Records[0].Voter.Clean(), "deviations: %v", res.Records[0].Voter.Deviations)

	_, err = Read(context.Background(), strings.NewReader(enc), ReadOptions{Encoding: "ebcdic"})
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestReadFileWriteJSON(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "export.csv")
	row := testRow()
	row[17] = "X"
	require.NoError(t, os.WriteFile(src, []byte(export(testRow(), row)), 0o644))

	res, err := ReadFile(context.Background(), src, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	dst := filepath.Join(dir, "voters.json")
	require.NoError(t, WriteJSON(dst, res.Voters()))
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("[\n    {")))

	var back []map[string]any
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 2)
	assert.Equal(t, map[string]any{"year": float64(1990), "month": float64(1), "day": float64(1)}, back[0]["dob"])
	assert.NotContains(t, back[0], "mailing")
	assert.Len(t, back[1]["deviations"], 1)

	_, err = ReadFile(context.Background(), filepath.Join(dir, "missing.csv"), ReadOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

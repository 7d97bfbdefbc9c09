package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mkessler/ttr/internal/export"
	"github.com/mkessler/ttr/internal/model"
)

func testCards() ([]model.ProcessedCard, model.BoardSnapshot) {
	snap := model.BoardSnapshot{
		Board:   model.Board{ID: "b1", Name: "Sprint Board"},
		Lists:   []model.List{{ID: "l1", Name: "Doing"}},
		Members: []model.Member{{ID: "U1", Username: "alice", FullName: "Alice"}},
	}
	cards := []model.ProcessedCard{{
		CardID:   "c1",
		CardName: "Fix login",
		CardURL:  "https://trello.test/c/c1",
		ListID:   "l1",
		Entries: []model.Entry{
			{MemberID: "U1", Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Hours: 2.5, Comment: "review, fixes"},
			{MemberID: "", Date: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), Hours: 1},
		},
	}}
	return cards, snap
}

func TestRows(t *testing.T) {
	cards, snap := testCards()
	rows := export.Rows(cards, snap)

	require.Len(t, rows, 2)
	assert.Equal(t, "Sprint Board", rows[0].Board)
	assert.Equal(t, "Doing", rows[0].List)
	assert.Equal(t, "Fix login", rows[0].Card)
	assert.Equal(t, "Alice", rows[0].Member)
	assert.Equal(t, "2024-01-05", rows[0].Date)
	assert.InDelta(t, 2.5, rows[0].Hours, 1e-9)
	assert.Equal(t, "unassigned", rows[1].Member)
}

func TestWriteCSV(t *testing.T) {
	cards, snap := testCards()
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatCSV, export.Rows(cards, snap)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"board", "list", "card", "member", "date", "hours", "comment"}, records[0])
	assert.Equal(t, "2.50", records[1][5])
	// The comma in the comment survives the round trip.
	assert.Equal(t, "review, fixes", records[1][6])
}

func TestWriteJSON(t *testing.T) {
	cards, snap := testCards()
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatJSON, export.Rows(cards, snap)))

	var rows []export.Row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Fix login", rows[0].Card)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatJSON, nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestWriteXML(t *testing.T) {
	cards, snap := testCards()
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatXML, export.Rows(cards, snap)))

	out := buf.String()
	assert.Contains(t, out, "<timeEntries>")
	assert.Contains(t, out, "<card>Fix login</card>")
	assert.Contains(t, out, "<hours>2.5</hours>")
}

func TestWriteHTMLEscapes(t *testing.T) {
	rows := []export.Row{{Card: "<script>alert(1)</script>", Date: "2024-01-05", Hours: 1}}
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatHTML, rows))

	out := buf.String()
	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestWriteTXT(t *testing.T) {
	cards, snap := testCards()
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatTXT, export.Rows(cards, snap)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "2024-01-05")
	assert.Contains(t, lines[0], "2.50h")
	assert.Contains(t, lines[0], "review, fixes")
}

func TestWriteMD(t *testing.T) {
	cards, snap := testCards()
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatMD, export.Rows(cards, snap)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "| Date |"))
	assert.Contains(t, lines[2], "| Fix login |")
}

func TestWriteXLSX(t *testing.T) {
	cards, snap := testCards()
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatXLSX, export.Rows(cards, snap)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Time Entries")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Card", rows[0][2])
	assert.Equal(t, "Fix login", rows[1][2])
}

func TestWritePDF(t *testing.T) {
	cards, snap := testCards()
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatPDF, export.Rows(cards, snap)))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"), "expected PDF magic header")
}

func TestWriteUnknownFormat(t *testing.T) {
	err := export.Write(&bytes.Buffer{}, "docx", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docx")
}

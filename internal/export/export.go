// Package export flattens filtered report data into per-entry rows and
// serializes them. The aggregation engine knows nothing about output
// formats; every serializer here consumes the same Row slice.
package export

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/mkessler/ttr/internal/model"
	"github.com/mkessler/ttr/internal/timecalc"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatHTML = "html"
	FormatTXT  = "txt"
	FormatMD   = "md"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Formats lists all supported format names.
var Formats = []string{FormatCSV, FormatJSON, FormatXML, FormatHTML, FormatTXT, FormatMD, FormatXLSX, FormatPDF}

// Row is one flattened, filtered time entry with every id resolved to a
// display name.
type Row struct {
	Board   string  `json:"board" xml:"board"`
	List    string  `json:"list" xml:"list"`
	Card    string  `json:"card" xml:"card"`
	CardURL string  `json:"card_url,omitempty" xml:"cardUrl,omitempty"`
	Member  string  `json:"member" xml:"member"`
	Date    string  `json:"date" xml:"date"`
	Hours   float64 `json:"hours" xml:"hours"`
	Comment string  `json:"comment,omitempty" xml:"comment,omitempty"`
}

// Rows flattens filtered cards into one row per entry, in card order.
func Rows(cards []model.ProcessedCard, snap model.BoardSnapshot) []Row {
	var rows []Row
	for _, card := range cards {
		for _, e := range card.Entries {
			rows = append(rows, Row{
				Board:   snap.Board.Name,
				List:    snap.ListName(card.ListID),
				Card:    card.CardName,
				CardURL: card.CardURL,
				Member:  snap.MemberName(e.MemberID),
				Date:    e.Date.Format(timecalc.DayLayout),
				Hours:   e.Hours,
				Comment: e.Comment,
			})
		}
	}
	return rows
}

// Write serializes rows in the given format.
func Write(w io.Writer, format string, rows []Row) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatXML:
		return writeXML(w, rows)
	case FormatHTML:
		return writeHTML(w, rows)
	case FormatTXT:
		return writeTXT(w, rows)
	case FormatMD:
		return writeMD(w, rows)
	case FormatXLSX:
		return writeXLSX(w, rows)
	case FormatPDF:
		return writePDF(w, rows)
	default:
		return fmt.Errorf("unknown export format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

var columns = []string{"board", "list", "card", "member", "date", "hours", "comment"}

func (r Row) values() []string {
	return []string{r.Board, r.List, r.Card, r.Member, r.Date, formatHours(r.Hours), r.Comment}
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}

func writeCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.values()); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// xmlDocument wraps rows for a self-describing XML export.
type xmlDocument struct {
	XMLName xml.Name `xml:"timeEntries"`
	Entries []Row    `xml:"entry"`
}

func writeXML(w io.Writer, rows []Row) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(xmlDocument{Entries: rows}); err != nil {
		return fmt.Errorf("encoding XML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

var htmlTmpl = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Time report</title></head>
<body>
<table border="1" cellspacing="0" cellpadding="4">
<tr><th>Board</th><th>List</th><th>Card</th><th>Member</th><th>Date</th><th>Hours</th><th>Comment</th></tr>
{{range .}}<tr><td>{{.Board}}</td><td>{{.List}}</td><td>{{.Card}}</td><td>{{.Member}}</td><td>{{.Date}}</td><td>{{printf "%.2f" .Hours}}</td><td>{{.Comment}}</td></tr>
{{end}}</table>
</body>
</html>
`))

func writeHTML(w io.Writer, rows []Row) error {
	return htmlTmpl.Execute(w, rows)
}

func writeTXT(w io.Writer, rows []Row) error {
	for _, r := range rows {
		line := fmt.Sprintf("%s | %s | %s | %s | %sh", r.Date, r.List, r.Card, r.Member, formatHours(r.Hours))
		if r.Comment != "" {
			line += " | " + r.Comment
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeMD(w io.Writer, rows []Row) error {
	if _, err := fmt.Fprintln(w, "| Date | List | Card | Member | Hours | Comment |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "| --- | --- | --- | --- | ---: | --- |"); err != nil {
		return err
	}
	for _, r := range rows {
		comment := strings.ReplaceAll(r.Comment, "|", `\|`)
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n",
			r.Date, r.List, r.Card, r.Member, formatHours(r.Hours), comment); err != nil {
			return err
		}
	}
	return nil
}

func writeXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Time Entries"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := []any{"Board", "List", "Card", "Member", "Date", "Hours", "Comment"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}
	for i, r := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{r.Board, r.List, r.Card, r.Member, r.Date, r.Hours, r.Comment}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writePDF(w io.Writer, rows []Row) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	widths := []float64{45, 40, 60, 40, 25, 20, 47}
	pdf.SetFont("Helvetica", "B", 9)
	for i, col := range columns {
		header := strings.ToUpper(col[:1]) + col[1:]
		pdf.CellFormat(widths[i], 7, header, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, r := range rows {
		for i, v := range r.values() {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}

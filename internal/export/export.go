// Package export renders grouped survey answers into downloadable tables.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"surveycast/internal/model"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the answers
const SheetName = "Poll Results"

// TimestampLayout formats answer timestamps in the table
const TimestampLayout = "2006-01-02 15:04:05"

// Header is the column layout shared by every format
var Header = []string{"User ID", "Username", "Question", "Answer", "Timestamp"}

// Rows flattens groups into table rows, one per answer
func Rows(groups []model.ResultGroup) [][]string {
	var rows [][]string
	for _, g := range groups {
		for _, a := range g.Answers {
			rows = append(rows, []string{
				strconv.FormatInt(g.Recipient.ID, 10),
				g.Recipient.DisplayName,
				a.Question,
				a.Response,
				a.AnsweredAt.Format(TimestampLayout),
			})
		}
	}
	return rows
}

// Render encodes the groups in the requested format
func Render(format model.ExportFormat, groups []model.ResultGroup) ([]byte, error) {
	rows := Rows(groups)
	switch format {
	case model.ExportXLSX:
		return renderXLSX(rows)
	case model.ExportCSV:
		return renderCSV(rows)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ContentType returns the MIME type of a format
func ContentType(format model.ExportFormat) string {
	if format == model.ExportCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename derives a file name from the survey title
func Filename(title string, format model.ExportFormat, at time.Time) string {
	slug := slugify(title)
	if slug == "" {
		slug = "poll"
	}
	return fmt.Sprintf("%s_results_%s.%s", slug, at.Format("20060102_150405"), format)
}

func renderCSV(rows [][]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func renderXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	if err := writeRow(f, 1, Header); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if err := writeRow(f, i+2, r); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(SheetName, cell, &row)
}

func slugify(s string) string {
	out := make([]rune, 0, len(s))
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
			dash = false
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
			dash = false
		default:
			if !dash && len(out) > 0 {
				out = append(out, '_')
				dash = true
			}
		}
		if len(out) >= 40 {
			break
		}
	}
	for len(out) > 0 && out[len(out)-1] == '_' {
		out = out[:len(out)-1]
	}
	return string(out)
}

// Package roster reads recipient lists from tabular files.
//
// The first column holds the numeric recipient identity and the optional
// second column a display name. Rows without a valid identity (including
// header rows) are skipped and counted, never fatal.
package roster

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"surveycast/internal/model"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported roster format, expected .csv or .xlsx")

// Result is the outcome of a roster load
type Result struct {
	Recipients []model.Recipient
	Skipped    int
}

// Load parses a roster document, choosing the parser by file extension
func Load(name string, r io.Reader) (*Result, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return LoadCSV(r)
	case ".xlsx", ".xlsm":
		return LoadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// LoadCSV parses comma-separated rows. Each line is one record, so a
// malformed line (an unterminated quote, say) costs only itself and the rows
// after it still load. Quoted fields cannot span lines.
func LoadCSV(r io.Reader) (*Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		rows      [][]string
		malformed int
		first     = true
	)
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		cr := csv.NewReader(strings.NewReader(line))
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		rec, err := cr.Read()
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				malformed++
				continue
			}
			return nil, fmt.Errorf("read roster: %w", err)
		}
		rows = append(rows, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	res := fromRows(rows)
	res.Skipped += malformed
	return res, nil
}

// LoadXLSX parses the first worksheet of a workbook
func LoadXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Result{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows), nil
}

func fromRows(rows [][]string) *Result {
	res := &Result{}
	seen := make(map[int64]bool)
	for _, row := range rows {
		rec, ok := parseRow(row)
		if !ok || seen[rec.ID] {
			if !isBlank(row) {
				res.Skipped++
			}
			continue
		}
		seen[rec.ID] = true
		res.Recipients = append(res.Recipients, rec)
	}
	return res
}

func parseRow(row []string) (model.Recipient, bool) {
	if len(row) == 0 {
		return model.Recipient{}, false
	}
	raw := strings.TrimSpace(row[0])
	// Spreadsheets sometimes store ids as floats
	raw = strings.TrimSuffix(raw, ".0")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return model.Recipient{}, false
	}

	rec := model.Recipient{ID: id}
	if len(row) > 1 {
		rec.DisplayName = strings.TrimPrefix(strings.TrimSpace(row[1]), "@")
	}
	return rec, true
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"enforcement-insights-go/internal/logger"
	"enforcement-insights-go/internal/types"
)

var (
	ErrNoHeader     = errors.New("no header row")
	ErrNoYearColumn = errors.New("no YEAR column")
)

// Load reads the enforcement table from a local path or an http(s) URL.
// .xlsx sources are read from their first sheet, everything else as CSV.
func Load(ctx context.Context, path string, fetchTimeout time.Duration) ([]types.EnforcementRecord, types.LoadStats, error) {
	log := logger.New().Component("dataset.loader").WithField("path", path)

	var src io.Reader
	if isRemote(path) {
		body, err := Fetch(ctx, path, fetchTimeout)
		if err != nil {
			log.WithError(err).Error("fetch failed")
			return nil, types.LoadStats{}, err
		}
		src = bytes.NewReader(body)
	} else {
		f, err := os.Open(path)
		if err != nil {
			log.WithError(err).Error("open failed")
			return nil, types.LoadStats{}, fmt.Errorf("open file: %w", err)
		}
		defer f.Close()
		src = f
	}

	var rows [][]string
	var err error
	if isXLSX(path) {
		rows, err = ReadXLSX(src)
	} else {
		rows, err = ReadCSV(src)
	}
	if err != nil {
		log.WithError(err).Error("read rows failed")
		return nil, types.LoadStats{}, err
	}

	records, stats, err := Parse(rows)
	if err != nil {
		log.WithError(err).Error("parse failed")
		return nil, stats, err
	}
	log.WithFields(map[string]interface{}{
		"rows":    stats.Rows,
		"loaded":  stats.Loaded,
		"dropped": stats.DroppedYear,
	}).Info("dataset loaded")
	return records, stats, nil
}

func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// ReadXLSX returns the raw cell values of the first sheet.
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

type columns struct {
	year, jurisdiction, metric, ageGroup, detection int
	fines, arrests, charges, startDate              int
}

// resolveColumns prefers exact header names and falls back to a trimmed,
// case-insensitive match.
func resolveColumns(header []string) columns {
	find := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}
	return columns{
		year:         find(types.ColYear),
		jurisdiction: find(types.ColJurisdiction),
		metric:       find(types.ColMetric),
		ageGroup:     find(types.ColAgeGroup),
		detection:    find(types.ColDetectionMethod),
		fines:        find(types.ColFines),
		arrests:      find(types.ColArrests),
		charges:      find(types.ColCharges),
		startDate:    find(types.ColStartDate),
	}
}

// Parse turns a header row plus data rows into records. Rows without a usable
// YEAR are dropped; every other field degrades to its default.
func Parse(rows [][]string) ([]types.EnforcementRecord, types.LoadStats, error) {
	var stats types.LoadStats
	if len(rows) == 0 {
		return nil, stats, ErrNoHeader
	}
	cols := resolveColumns(rows[0])
	if cols.year < 0 {
		return nil, stats, ErrNoYearColumn
	}

	out := make([]types.EnforcementRecord, 0, len(rows)-1)
	for _, r := range rows[1:] {
		stats.Rows++
		year, ok := parseYear(cell(r, cols.year))
		if !ok {
			stats.DroppedYear++
			continue
		}
		age := cell(r, cols.ageGroup)
		if strings.TrimSpace(age) == "" {
			age = types.UnknownAgeGroup
		}
		out = append(out, types.EnforcementRecord{
			Year:            year,
			Jurisdiction:    cell(r, cols.jurisdiction),
			Metric:          cell(r, cols.metric),
			AgeGroup:        age,
			DetectionMethod: cell(r, cols.detection),
			StartDate:       parseDate(cell(r, cols.startDate)),
			Fines:           parseCount(cell(r, cols.fines)),
			Arrests:         parseCount(cell(r, cols.arrests)),
			Charges:         parseCount(cell(r, cols.charges)),
		})
	}
	stats.Loaded = len(out)
	return out, stats, nil
}

func cell(r []string, idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return r[idx]
}

func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, y > 0
	}
	// spreadsheets sometimes hand back 2024.0
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f <= 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// parseCount coerces a count cell; blanks, junk, NaN and negatives become 0.
func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

var dateLayouts = []string{"1/2/2006", "2006-01-02", time.RFC3339}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	// raw xlsx date cells arrive as serial numbers
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial < 2958466 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t
		}
	}
	return time.Time{}
}

func isRemote(path string) bool {
	l := strings.ToLower(path)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func isXLSX(path string) bool {
	p := path
	if isRemote(path) {
		if u, err := url.Parse(path); err == nil {
			p = u.Path
		}
	}
	return strings.HasSuffix(strings.ToLower(p), ".xlsx")
}

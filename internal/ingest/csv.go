// Package ingest turns uploaded SCB exports into the engine's series type.
// It owns header matching and type coercion so the analysis core only ever
// sees a normalized schema.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"scb-analyser/internal/analysis"
)

// Options selects the CSV columns. Zero values fall back to the conventional
// SCB export layout: a "timestamp" column, an "irradiance" column and one
// "I1".."IN" column per string.
type Options struct {
	NumStrings       int
	TimestampColumn  string
	IrradianceColumn string
	StringColumns    []string
	TimeLayout       string         // empty tries the common layouts below
	Location         *time.Location // nil means local time
}

// Layouts tried in order when no explicit layout is configured.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"02-01-2006 15:04",
	"02/01/2006 15:04",
}

// ReadFile parses one CSV export into a series.
func ReadFile(path string, opts Options) (analysis.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses CSV data into a series. The first record is the header; column
// lookup is by name, with a positional fallback when the header carries no
// recognizable names but the width matches timestamp + irradiance + strings.
func Read(r io.Reader, opts Options) (analysis.Series, error) {
	if opts.NumStrings < 1 {
		return nil, fmt.Errorf("%w: string count %d", analysis.ErrMalformedSeries, opts.NumStrings)
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return analysis.Series{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := resolveColumns(header, opts)
	if err != nil {
		return nil, err
	}

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	series := make(analysis.Series, 0, 256)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		ts, err := parseTime(rec[cols.timestamp], opts.TimeLayout, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", analysis.ErrMalformedSeries, line, err)
		}

		reading := analysis.Reading{
			Timestamp:  ts,
			Irradiance: parseSample(rec[cols.irradiance]),
			Currents:   make([]analysis.Sample, opts.NumStrings),
		}
		for i, idx := range cols.strings {
			reading.Currents[i] = parseSample(rec[idx])
		}
		series = append(series, reading)
	}
	return series, nil
}

type columnIndex struct {
	timestamp  int
	irradiance int
	strings    []int
}

func resolveColumns(header []string, opts Options) (columnIndex, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	tsName := strings.ToLower(defaultStr(opts.TimestampColumn, "timestamp"))
	irrName := strings.ToLower(defaultStr(opts.IrradianceColumn, "irradiance"))

	tsIdx, tsOK := byName[tsName]
	irrIdx, irrOK := byName[irrName]

	if !tsOK || !irrOK {
		// Positional fallback: timestamp, irradiance, then one column per
		// string, matching the oldest export variant.
		if len(header) == opts.NumStrings+2 {
			cols := columnIndex{timestamp: 0, irradiance: 1, strings: make([]int, opts.NumStrings)}
			for i := range cols.strings {
				cols.strings[i] = i + 2
			}
			return cols, nil
		}
		return columnIndex{}, fmt.Errorf("%w: header missing %q or %q and width %d does not fit positional layout",
			analysis.ErrMalformedSeries, tsName, irrName, len(header))
	}

	cols := columnIndex{timestamp: tsIdx, irradiance: irrIdx, strings: make([]int, opts.NumStrings)}
	for i := 0; i < opts.NumStrings; i++ {
		name := fmt.Sprintf("i%d", i+1)
		if i < len(opts.StringColumns) && opts.StringColumns[i] != "" {
			name = strings.ToLower(opts.StringColumns[i])
		}
		idx, ok := byName[name]
		if !ok {
			return columnIndex{}, fmt.Errorf("%w: header missing string column %q", analysis.ErrMalformedSeries, name)
		}
		cols.strings[i] = idx
	}
	return cols, nil
}

// parseSample coerces one numeric cell. Blank or unparsable cells become
// no-data rather than zero, so a gap in the logger file never reads as a
// perfect calm measurement.
func parseSample(cell string) analysis.Sample {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return analysis.NoData()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return analysis.NoData()
	}
	return analysis.Value(v)
}

func parseTime(cell, layout string, loc *time.Location) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if layout != "" {
		return time.ParseInLocation(layout, cell, loc)
	}
	var firstErr error
	for _, l := range timeLayouts {
		t, err := time.ParseInLocation(l, cell, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

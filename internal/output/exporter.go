package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"scb-analyser/internal/analysis"
)

// WriteMatrixCSV flattens the CR matrix to a CSV file.
// Columns: timestamp, cr_1..cr_N, expected_total_a, measured_total_a.
// No-data cells are written empty, never as 0.
func WriteMatrixCSV(path string, m analysis.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := make([]string, 0, m.NumStrings+3)
	header = append(header, "timestamp")
	for i := 1; i <= m.NumStrings; i++ {
		header = append(header, fmt.Sprintf("cr_%d", i))
	}
	header = append(header, "expected_total_a", "measured_total_a")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range m.Rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, row.Timestamp.Format(time.RFC3339))
		for _, cr := range row.Ratios {
			rec = append(rec, sampleCell(cr))
		}
		rec = append(rec, sampleCell(row.ExpectedTotal), sampleCell(row.MeasuredTotal))
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// matrixDoc is the JSON shape of an exported CR matrix.
type matrixDoc struct {
	NumStrings int         `json:"num_strings"`
	Rows       []matrixRow `json:"rows"`
}

type matrixRow struct {
	Timestamp     time.Time         `json:"timestamp"`
	Ratios        []analysis.Sample `json:"ratios"`
	ExpectedTotal analysis.Sample   `json:"expected_total_a"`
	MeasuredTotal analysis.Sample   `json:"measured_total_a"`
}

// WriteMatrixJSON writes the CR matrix as pretty JSON with null no-data cells.
func WriteMatrixJSON(path string, m analysis.Matrix) error {
	doc := matrixDoc{NumStrings: m.NumStrings, Rows: make([]matrixRow, 0, len(m.Rows))}
	for _, row := range m.Rows {
		doc.Rows = append(doc.Rows, matrixRow{
			Timestamp:     row.Timestamp,
			Ratios:        row.Ratios,
			ExpectedTotal: row.ExpectedTotal,
			MeasuredTotal: row.MeasuredTotal,
		})
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteDiagnosticsCSV writes one row per (date, weak string). Dates with no
// weak strings still get a row with an empty string_id so the day is visibly
// covered.
func WriteDiagnosticsCSV(path string, diags []analysis.DailyDiagnostic) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "string_id"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, d := range diags {
		date := d.Date.Format("2006-01-02")
		if len(d.WeakStrings) == 0 {
			if err := w.Write([]string{date, ""}); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
			continue
		}
		for _, id := range d.WeakStrings {
			if err := w.Write([]string{date, strconv.Itoa(id)}); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

// WriteDiagnosticsJSON writes the daily diagnostics as pretty JSON.
func WriteDiagnosticsJSON(path string, diags []analysis.DailyDiagnostic) error {
	b, err := json.MarshalIndent(diags, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func sampleCell(s analysis.Sample) string {
	if !s.Valid {
		return ""
	}
	return strconv.FormatFloat(s.Value, 'g', -1, 64)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"scb-analyser/internal/analysis"
	"scb-analyser/internal/config"
	"scb-analyser/internal/ingest"
	"scb-analyser/internal/output"
	"scb-analyser/pkg/scbdb"
)

var fromToLayouts = []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

func main() {
	var (
		cfgPath   string
		csvPath   string
		dbPath    string
		combiner  string
		fromStr   string
		toStr     string
		outMatrix string
		outDiag   string
		asJSON    bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to YAML config (optional, defaults apply)")
	flag.StringVar(&csvPath, "csv", "", "path to an SCB CSV export to analyse")
	flag.StringVar(&dbPath, "db", "", "path to a collector sqlite database to analyse instead of CSV")
	flag.StringVar(&combiner, "combiner", "", "combiner id when loading from -db")
	flag.StringVar(&fromStr, "from", "", "inclusive window start (e.g. 2024-03-15 or 2024-03-15 06:00)")
	flag.StringVar(&toStr, "to", "", "inclusive window end")
	flag.StringVar(&outMatrix, "out-matrix", "", "path to write the CR matrix (optional)")
	flag.StringVar(&outDiag, "out-diag", "", "path to write the daily diagnostics (optional)")
	flag.BoolVar(&asJSON, "json", false, "write JSON instead of CSV outputs")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			log.Fatalf("load yaml config: %v", err)
		}
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("resolve timezone: %v", err)
	}

	model, err := analysis.NewModuleModel(cfg.ModuleSpec())
	if err != nil {
		log.Fatalf("module model: %v", err)
	}
	est := analysis.NewEstimator(model, cfg.Analysis.ReferenceIrradiance)

	series, err := loadSeries(cfg, loc, csvPath, dbPath, combiner)
	if err != nil {
		log.Fatalf("load series: %v", err)
	}

	if fromStr != "" || toStr != "" {
		start, end, err := parseWindow(fromStr, toStr, loc)
		if err != nil {
			log.Fatalf("parse window: %v", err)
		}
		series, err = analysis.FilterRange(series, start, end)
		if err != nil {
			log.Fatalf("filter range: %v", err)
		}
	}

	matrix, err := analysis.BuildMatrix(series, est, cfg.Analysis.NumStrings)
	if err != nil {
		log.Fatalf("build CR matrix: %v", err)
	}
	diags := analysis.Diagnose(matrix, cfg.DiagnoseOptions(loc))

	printSummary(matrix, diags)

	if outMatrix != "" {
		if asJSON {
			err = output.WriteMatrixJSON(outMatrix, matrix)
		} else {
			err = output.WriteMatrixCSV(outMatrix, matrix)
		}
		if err != nil {
			log.Fatalf("write matrix: %v", err)
		}
	}
	if outDiag != "" {
		if asJSON {
			err = output.WriteDiagnosticsJSON(outDiag, diags)
		} else {
			err = output.WriteDiagnosticsCSV(outDiag, diags)
		}
		if err != nil {
			log.Fatalf("write diagnostics: %v", err)
		}
	}
}

func loadSeries(cfg config.Config, loc *time.Location, csvPath, dbPath, combiner string) (analysis.Series, error) {
	switch {
	case csvPath != "":
		return ingest.ReadFile(csvPath, ingest.Options{
			NumStrings:       cfg.Analysis.NumStrings,
			TimestampColumn:  cfg.Ingest.TimestampColumn,
			IrradianceColumn: cfg.Ingest.IrradianceColumn,
			StringColumns:    cfg.Ingest.StringColumns,
			TimeLayout:       cfg.Ingest.TimeLayout,
			Location:         loc,
		})
	case dbPath != "":
		if combiner == "" {
			return nil, fmt.Errorf("-combiner is required with -db")
		}
		client, err := scbdb.Open(dbPath)
		if err != nil {
			return nil, err
		}
		defer client.Close()
		// full history; -from/-to narrow it afterwards
		return client.LoadSeries(context.Background(), combiner,
			time.Time{}, time.Now().Add(24*time.Hour), cfg.Analysis.NumStrings)
	default:
		return nil, fmt.Errorf("one of -csv or -db is required")
	}
}

func parseWindow(fromStr, toStr string, loc *time.Location) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Date(9999, 1, 1, 0, 0, 0, 0, loc)
	if fromStr != "" {
		t, err := parseStamp(fromStr, loc)
		if err != nil {
			return start, end, fmt.Errorf("-from: %w", err)
		}
		start = t
	}
	if toStr != "" {
		t, err := parseStamp(toStr, loc)
		if err != nil {
			return start, end, fmt.Errorf("-to: %w", err)
		}
		// a bare date means the whole day, inclusive
		if len(toStr) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1).Add(-time.Second)
		}
		end = t
	}
	return start, end, nil
}

func parseStamp(s string, loc *time.Location) (time.Time, error) {
	var firstErr error
	for _, layout := range fromToLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func printSummary(m analysis.Matrix, diags []analysis.DailyDiagnostic) {
	fmt.Fprintf(os.Stdout, "%d timestamps x %d strings\n", len(m.Rows), m.NumStrings)
	if len(diags) == 0 {
		fmt.Println("no days in window")
		return
	}
	for _, d := range diags {
		if len(d.WeakStrings) == 0 {
			fmt.Printf("%s  all strings healthy\n", d.Date.Format("2006-01-02"))
			continue
		}
		fmt.Printf("%s  weak strings: %v\n", d.Date.Format("2006-01-02"), d.WeakStrings)
	}
}

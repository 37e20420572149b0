package scbdb_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"scb-analyser/internal/analysis"
	"scb-analyser/pkg/scbdb"
)

func newTestClient(t *testing.T) *scbdb.Client {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "scb_test.sqlite")
	client, err := scbdb.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestCombinerCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newTestClient(t)

	cb := &scbdb.Combiner{
		CombinerID:   "scb-1",
		Name:         "SCB ITC-1",
		Protocol:     "modbus-tcp",
		Host:         "10.22.250.21",
		Port:         502,
		SlaveID:      1,
		NumStrings:   18,
		PollInterval: "30s",
	}
	if err := client.SaveCombiner(ctx, cb); err != nil {
		t.Fatalf("SaveCombiner failed: %v", err)
	}

	cb.Name = "SCB ITC-1 (renamed)"
	if err := client.SaveCombiner(ctx, cb); err != nil {
		t.Fatalf("SaveCombiner update failed: %v", err)
	}

	list, err := client.ListCombiners(ctx)
	if err != nil {
		t.Fatalf("ListCombiners failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 combiner, got %d", len(list))
	}
	if list[0].Name != "SCB ITC-1 (renamed)" {
		t.Fatalf("expected updated name, got %q", list[0].Name)
	}
}

func TestReadingsRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newTestClient(t)

	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	series := analysis.Series{
		{
			Timestamp:  base,
			Irradiance: analysis.Value(1000),
			Currents:   []analysis.Sample{analysis.Value(13.3), analysis.NoData()},
		},
		{
			Timestamp:  base.Add(5 * time.Minute),
			Irradiance: analysis.NoData(),
			Currents:   []analysis.Sample{analysis.Value(13.1), analysis.Value(12.9)},
		},
	}
	if err := client.SaveReadings(ctx, "scb-1", series); err != nil {
		t.Fatalf("SaveReadings failed: %v", err)
	}

	got, err := client.LoadSeries(ctx, "scb-1", base, base.Add(time.Hour), 2)
	if err != nil {
		t.Fatalf("LoadSeries failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if !got[0].Irradiance.Valid || got[0].Irradiance.Value != 1000 {
		t.Fatalf("row 0 irradiance = %+v", got[0].Irradiance)
	}
	if got[0].Currents[1].Valid {
		t.Fatalf("stored no-data current came back valid: %+v", got[0].Currents[1])
	}
	if got[1].Irradiance.Valid {
		t.Fatalf("stored no-data irradiance came back valid: %+v", got[1].Irradiance)
	}
	if !got[1].Currents[1].Valid || got[1].Currents[1].Value != 12.9 {
		t.Fatalf("row 1 current 2 = %+v", got[1].Currents[1])
	}

	// Window excludes the second row.
	got, err = client.LoadSeries(ctx, "scb-1", base, base.Add(time.Minute), 2)
	if err != nil {
		t.Fatalf("LoadSeries with narrow window failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row in narrow window, got %d", len(got))
	}
}

func TestDiagnosticsStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newTestClient(t)

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	diags := []analysis.DailyDiagnostic{
		{Date: day, WeakStrings: []int{2, 7}},
		{Date: day.AddDate(0, 0, 1), WeakStrings: []int{2}},
	}
	if err := client.SaveDiagnostics(ctx, "scb-1", diags); err != nil {
		t.Fatalf("SaveDiagnostics failed: %v", err)
	}

	flags, err := client.WeakStringFlags(ctx, "scb-1", day, day.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("WeakStringFlags failed: %v", err)
	}
	if len(flags) != 3 {
		t.Fatalf("expected 3 flags, got %d", len(flags))
	}
	if flags[0].StringID != 2 || flags[1].StringID != 7 {
		t.Fatalf("unexpected flag order: %+v", flags)
	}

	// Re-running the same diagnosis must not duplicate rows.
	if err := client.SaveDiagnostics(ctx, "scb-1", diags); err != nil {
		t.Fatalf("SaveDiagnostics rerun failed: %v", err)
	}
	flags, err = client.WeakStringFlags(ctx, "scb-1", day, day.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("WeakStringFlags after rerun failed: %v", err)
	}
	if len(flags) != 3 {
		t.Fatalf("rerun duplicated flags: got %d", len(flags))
	}

	jsonBytes, err := client.StatsJSON(ctx, "scb-1", day, day.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("StatsJSON failed: %v", err)
	}
	var stats map[string]any
	if err := json.Unmarshal(jsonBytes, &stats); err != nil {
		t.Fatalf("StatsJSON produced invalid JSON: %v", err)
	}
	if _, ok := stats["flag_count"]; !ok {
		t.Fatalf("expected stats JSON to contain flag_count")
	}
}

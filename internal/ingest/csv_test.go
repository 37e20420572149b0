package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"scb-analyser/internal/analysis"
)

func TestReadNamedColumns(t *testing.T) {
	data := "timestamp,irradiance,I1,I2\n" +
		"2024-03-15 10:00:00,1000,13.3,13.1\n" +
		"2024-03-15 10:05:00,,6.0,\n"

	s, err := Read(strings.NewReader(data), Options{NumStrings: 2, Location: time.UTC})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(s))
	}
	if !s[0].Irradiance.Valid || s[0].Irradiance.Value != 1000 {
		t.Fatalf("row 0 irradiance = %+v", s[0].Irradiance)
	}
	if s[1].Irradiance.Valid {
		t.Fatalf("blank irradiance cell must be no-data, got %+v", s[1].Irradiance)
	}
	if s[1].Currents[1].Valid {
		t.Fatalf("blank current cell must be no-data, got %+v", s[1].Currents[1])
	}
	want := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	if !s[0].Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", s[0].Timestamp, want)
	}
}

func TestReadPositionalFallback(t *testing.T) {
	data := "Time,POA,Str A,Str B\n" +
		"2024-03-15 10:00:00,800,10.1,10.4\n"

	s, err := Read(strings.NewReader(data), Options{NumStrings: 2, Location: time.UTC})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(s) != 1 {
		t.Fatalf("expected 1 row, got %d", len(s))
	}
	if s[0].Currents[0].Value != 10.1 || s[0].Currents[1].Value != 10.4 {
		t.Fatalf("positional currents mismatch: %+v", s[0].Currents)
	}
}

func TestReadMissingColumnFails(t *testing.T) {
	data := "timestamp,irradiance,I1\n2024-03-15 10:00:00,800,10.1\n"

	_, err := Read(strings.NewReader(data), Options{NumStrings: 2, Location: time.UTC})
	if !errors.Is(err, analysis.ErrMalformedSeries) {
		t.Fatalf("expected ErrMalformedSeries, got %v", err)
	}
}

func TestReadUnparsableCellIsNoData(t *testing.T) {
	data := "timestamp,irradiance,I1\n" +
		"2024-03-15 10:00:00,#REF!,n/a\n"

	s, err := Read(strings.NewReader(data), Options{NumStrings: 1, Location: time.UTC})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if s[0].Irradiance.Valid || s[0].Currents[0].Valid {
		t.Fatalf("unparsable cells must be no-data: %+v", s[0])
	}
}

func TestReadEmptyInput(t *testing.T) {
	s, err := Read(strings.NewReader(""), Options{NumStrings: 2})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(s) != 0 {
		t.Fatalf("expected empty series, got %d rows", len(s))
	}
}

package scbdb

import (
	"context"
	"encoding/json"
	"time"

	"scb-analyser/internal/analysis"
)

// WeakStringFlag is one stored (date, string) diagnosis.
type WeakStringFlag struct {
	CombinerID string    `json:"combiner_id"`
	Date       time.Time `json:"date"`
	StringID   int       `json:"string_id"`
}

// SaveDiagnostics stores daily weak-string flags, replacing earlier flags for
// the same dates.
func (c *Client) SaveDiagnostics(ctx context.Context, combinerID string, diags []analysis.DailyDiagnostic) error {
	return c.db.SaveDiagnostics(ctx, combinerID, diags)
}

// WeakStringFlags returns the stored flags for a combiner within [from, to],
// ordered by date then string id.
func (c *Client) WeakStringFlags(ctx context.Context, combinerID string, from, to time.Time) ([]WeakStringFlag, error) {
	rows, err := c.db.WeakStringFlags(ctx, combinerID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]WeakStringFlag, 0, len(rows))
	for _, m := range rows {
		out = append(out, WeakStringFlag{CombinerID: m.CombinerID, Date: m.Date, StringID: m.StringID})
	}
	return out, nil
}

// Stats aggregates combiner definitions and stored flags for a window.
type Stats struct {
	CombinerCount int              `json:"combiner_count"`
	Combiners     []Combiner       `json:"combiners"`
	FlagCount     int              `json:"flag_count"`
	Flags         []WeakStringFlag `json:"flags"`
}

// StatsJSON returns aggregated stats for one combiner's flag window in JSON.
func (c *Client) StatsJSON(ctx context.Context, combinerID string, from, to time.Time) ([]byte, error) {
	combiners, err := c.ListCombiners(ctx)
	if err != nil {
		return nil, err
	}
	flags, err := c.WeakStringFlags(ctx, combinerID, from, to)
	if err != nil {
		return nil, err
	}
	st := Stats{
		CombinerCount: len(combiners),
		Combiners:     combiners,
		FlagCount:     len(flags),
		Flags:         flags,
	}
	return json.Marshal(st)
}

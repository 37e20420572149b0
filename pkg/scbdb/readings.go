package scbdb

import (
	"context"
	"time"

	"scb-analyser/internal/analysis"
)

// SaveReading persists one timestamped row of irradiance + string currents.
func (c *Client) SaveReading(ctx context.Context, combinerID string, r analysis.Reading) error {
	return c.db.SaveReading(ctx, combinerID, r)
}

// SaveReadings persists a whole series, row by row.
func (c *Client) SaveReadings(ctx context.Context, combinerID string, s analysis.Series) error {
	for _, r := range s {
		if err := c.db.SaveReading(ctx, combinerID, r); err != nil {
			return err
		}
	}
	return nil
}

// LoadSeries reconstructs the [start, end] history window of one combiner as
// an analysis series with numStrings current columns.
func (c *Client) LoadSeries(ctx context.Context, combinerID string, start, end time.Time, numStrings int) (analysis.Series, error) {
	return c.db.LoadSeries(ctx, combinerID, start, end, numStrings)
}

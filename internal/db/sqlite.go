package db

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"scb-analyser/internal/analysis"
	"scb-analyser/internal/model"
)

// DB wraps the sqlite connection holding collected readings and diagnoses.
type DB struct {
	ORM *gorm.DB
}

// Open opens the SQLite database using GORM and runs migrations.
func Open(path string) (*DB, error) {
	g, err := openORM(path)
	if err != nil {
		return nil, err
	}
	if err := migrateORM(g); err != nil {
		_ = closeORM(g)
		return nil, err
	}
	return &DB{ORM: g}, nil
}

func (d *DB) Close() error { return closeORM(d.ORM) }

// SaveCombiner inserts or updates a combiner definition.
func (d *DB) SaveCombiner(ctx context.Context, c *model.Combiner) error {
	return upsertCombiner(ctx, d.ORM, c)
}

// ListCombiners returns all registered combiners ordered by id.
func (d *DB) ListCombiners(ctx context.Context) ([]model.Combiner, error) {
	var out []model.Combiner
	if err := d.ORM.WithContext(ctx).Order("combiner_id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SaveReading persists one series row: the irradiance sample plus one current
// row per string. Missing samples are stored as NULL, not zero.
func (d *DB) SaveReading(ctx context.Context, combinerID string, r analysis.Reading) error {
	irr := model.IrradianceReading{
		CombinerID: combinerID,
		Value:      sampleToPtr(r.Irradiance),
		Timestamp:  r.Timestamp,
	}
	if err := insertIrradiance(ctx, d.ORM, &irr); err != nil {
		return err
	}
	rows := make([]model.StringCurrent, 0, len(r.Currents))
	for i, s := range r.Currents {
		rows = append(rows, model.StringCurrent{
			CombinerID: combinerID,
			StringID:   i + 1,
			Value:      sampleToPtr(s),
			Timestamp:  r.Timestamp,
		})
	}
	return insertStringCurrentsBatch(ctx, d.ORM, rows, len(rows))
}

// LoadSeries reconstructs the [start, end] window of one combiner's history
// as an analysis series. Timestamps present in only one of the two tables
// still produce a row, with the other side marked no-data.
func (d *DB) LoadSeries(ctx context.Context, combinerID string, start, end time.Time, numStrings int) (analysis.Series, error) {
	var irr []model.IrradianceReading
	if err := d.ORM.WithContext(ctx).
		Where("combiner_id = ? AND timestamp >= ? AND timestamp <= ?", combinerID, start, end).
		Order("timestamp").
		Find(&irr).Error; err != nil {
		return nil, err
	}

	var cur []model.StringCurrent
	if err := d.ORM.WithContext(ctx).
		Where("combiner_id = ? AND timestamp >= ? AND timestamp <= ?", combinerID, start, end).
		Order("timestamp, string_id").
		Find(&cur).Error; err != nil {
		return nil, err
	}

	byTime := make(map[int64]*analysis.Reading)
	order := make([]int64, 0, len(irr))
	row := func(ts time.Time) *analysis.Reading {
		key := ts.UnixNano()
		r, ok := byTime[key]
		if !ok {
			r = &analysis.Reading{
				Timestamp: ts,
				Currents:  make([]analysis.Sample, numStrings),
			}
			byTime[key] = r
			order = append(order, key)
		}
		return r
	}

	for _, ir := range irr {
		row(ir.Timestamp).Irradiance = ptrToSample(ir.Value)
	}
	for _, c := range cur {
		r := row(c.Timestamp)
		if c.StringID >= 1 && c.StringID <= numStrings {
			r.Currents[c.StringID-1] = ptrToSample(c.Value)
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	series := make(analysis.Series, 0, len(order))
	for _, key := range order {
		series = append(series, *byTime[key])
	}
	return series, nil
}

// SaveDiagnostics persists daily weak-string flags, replacing any earlier
// diagnosis of the same dates.
func (d *DB) SaveDiagnostics(ctx context.Context, combinerID string, diags []analysis.DailyDiagnostic) error {
	for _, diag := range diags {
		flags := make([]model.WeakStringFlag, 0, len(diag.WeakStrings))
		for _, id := range diag.WeakStrings {
			flags = append(flags, model.WeakStringFlag{
				CombinerID: combinerID,
				Date:       diag.Date,
				StringID:   id,
			})
		}
		if err := replaceFlagsForDate(ctx, d.ORM, combinerID, diag.Date, flags); err != nil {
			return err
		}
	}
	return nil
}

// WeakStringFlags returns the stored flags for a combiner within [from, to].
func (d *DB) WeakStringFlags(ctx context.Context, combinerID string, from, to time.Time) ([]model.WeakStringFlag, error) {
	var out []model.WeakStringFlag
	if err := d.ORM.WithContext(ctx).
		Where("combiner_id = ? AND date >= ? AND date <= ?", combinerID, from, to).
		Order("date, string_id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func sampleToPtr(s analysis.Sample) *float64 {
	if !s.Valid {
		return nil
	}
	v := s.Value
	return &v
}

func ptrToSample(p *float64) analysis.Sample {
	if p == nil {
		return analysis.NoData()
	}
	return analysis.Value(*p)
}

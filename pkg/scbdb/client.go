// Package scbdb is the public client over the analyser's sqlite history:
// combiner definitions, collected readings and stored weak-string flags.
package scbdb

import (
	"context"

	dbpkg "scb-analyser/internal/db"
	"scb-analyser/internal/model"
)

// Client wraps the database for external callers.
type Client struct {
	db *dbpkg.DB
}

// Open opens (and migrates) the sqlite database at path.
func Open(path string) (*Client, error) {
	d, err := dbpkg.Open(path)
	if err != nil {
		return nil, err
	}
	return &Client{db: d}, nil
}

func (c *Client) Close() error { return c.db.Close() }

// Combiner is the public combiner definition DTO.
type Combiner struct {
	CombinerID   string `json:"combiner_id"`
	Name         string `json:"name"`
	Protocol     string `json:"protocol"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	SlaveID      int    `json:"slave_id"`
	NumStrings   int    `json:"num_strings"`
	PollInterval string `json:"poll_interval"`
}

// SaveCombiner inserts or updates a combiner definition.
func (c *Client) SaveCombiner(ctx context.Context, cb *Combiner) error {
	m := model.Combiner{
		CombinerID:   cb.CombinerID,
		Name:         cb.Name,
		Protocol:     cb.Protocol,
		Host:         cb.Host,
		Port:         cb.Port,
		SlaveID:      cb.SlaveID,
		NumStrings:   cb.NumStrings,
		PollInterval: cb.PollInterval,
	}
	return c.db.SaveCombiner(ctx, &m)
}

// ListCombiners returns all registered combiners ordered by id.
func (c *Client) ListCombiners(ctx context.Context) ([]Combiner, error) {
	rows, err := c.db.ListCombiners(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Combiner, 0, len(rows))
	for _, m := range rows {
		out = append(out, Combiner{
			CombinerID:   m.CombinerID,
			Name:         m.Name,
			Protocol:     m.Protocol,
			Host:         m.Host,
			Port:         m.Port,
			SlaveID:      m.SlaveID,
			NumStrings:   m.NumStrings,
			PollInterval: m.PollInterval,
		})
	}
	return out, nil
}

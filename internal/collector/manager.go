package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"scb-analyser/internal/analysis"
	"scb-analyser/internal/config"
	dbpkg "scb-analyser/internal/db"
	"scb-analyser/internal/model"
	"scb-analyser/internal/utils"
)

// Manager coordinates running one poller per enabled combiner concurrently
// and persisting their frames.
type Manager struct {
	Cfg     config.Config
	OnFrame FrameHandler // optional extra handler invoked before storage
}

func (m *Manager) Run(ctx context.Context) error {
	var store *dbpkg.DB
	if m.Cfg.Collector.Storage.Enabled {
		s, err := dbpkg.Open(m.Cfg.Collector.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		store = s
		defer store.Close()
		if err := m.registerCombiners(ctx, store); err != nil {
			log.Printf("combiner registration failed: %v", err)
		}
	}

	handler := m.buildHandler(store)

	sem := make(chan struct{}, 8)
	var wg sync.WaitGroup
	for _, srv := range m.Cfg.Collector.Servers {
		if !srv.Enabled {
			continue
		}
		poller := &Poller{Server: srv, Handler: handler}

		wg.Add(1)
		go func(p *Poller) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			if err := p.Run(ctx); err != nil {
				log.Printf("poller stopped (%s): %v", p.Server.CombinerID, err)
			}
		}(poller)
	}

	<-ctx.Done()
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Printf("timeout waiting for pollers to stop")
	}
	return nil
}

// buildHandler chains the optional user handler, a TTL dedup cache and
// storage. A frame is persisted when any of its samples changed since the
// last stored frame, keeping row alignment across the tables.
func (m *Manager) buildHandler(store *dbpkg.DB) FrameHandler {
	vc := utils.NewValueCache(m.Cfg.Collector.Storage.CacheTTL)
	return func(f Frame) error {
		if m.OnFrame != nil {
			if err := m.OnFrame(f); err != nil {
				log.Printf("custom handler error: %v", err)
			}
		}
		if store == nil {
			log.Printf("%s irr=%v currents=%d", f.CombinerID, f.Irradiance, len(f.Currents))
			return nil
		}
		if !frameChanged(vc, f) {
			return nil
		}
		return store.SaveReading(context.Background(), f.CombinerID, readingOf(f))
	}
}

func (m *Manager) registerCombiners(ctx context.Context, store *dbpkg.DB) error {
	for _, srv := range m.Cfg.Collector.Servers {
		c := model.Combiner{
			CombinerID:   srv.CombinerID,
			Name:         srv.Name,
			Protocol:     srv.Protocol,
			Host:         srv.Connection.Host,
			Port:         srv.Connection.Port,
			SlaveID:      int(srv.SlaveID),
			NumStrings:   len(srv.Strings),
			PollInterval: srv.PollInterval.String(),
		}
		if err := store.SaveCombiner(ctx, &c); err != nil {
			return err
		}
	}
	return nil
}

// frameChanged reports whether any sample differs from the cached copy and
// refreshes the cache when it does.
func frameChanged(vc *utils.ValueCache, f Frame) bool {
	changed := false
	check := func(key string, v float64, valid bool) {
		if !valid {
			// missing samples are not cached; a gap always gets stored
			changed = true
			return
		}
		if old, ok := vc.GetValue(key); !ok || !utils.FloatsEqual(old, v) {
			changed = true
		}
	}
	check(f.CombinerID+"|irr", f.Irradiance.Value, f.Irradiance.Valid)
	for i, c := range f.Currents {
		check(fmt.Sprintf("%s|s%d", f.CombinerID, i+1), c.Value, c.Valid)
	}
	if changed {
		if f.Irradiance.Valid {
			vc.SetValue(f.CombinerID+"|irr", f.Irradiance.Value)
		}
		for i, c := range f.Currents {
			if c.Valid {
				vc.SetValue(fmt.Sprintf("%s|s%d", f.CombinerID, i+1), c.Value)
			}
		}
	}
	return changed
}

func readingOf(f Frame) analysis.Reading {
	return analysis.Reading{
		Timestamp:  f.Timestamp,
		Irradiance: f.Irradiance,
		Currents:   f.Currents,
	}
}

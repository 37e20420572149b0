// Package inventory holds the site's pingable device list and the liveness
// sweep over it. It is deliberately independent of the analysis engine.
package inventory

import (
	"context"
	"sync"
	"time"
)

// Device is one host on the plant network.
type Device struct {
	Name string
	IP   string
}

// Result is the outcome of probing one device.
type Result struct {
	Device Device
	Online bool
	RTT    time.Duration
}

// Prober probes a single host with a bounded timeout.
type Prober interface {
	Probe(ctx context.Context, d Device, timeout time.Duration) Result
}

// Sweep probes every device and returns results in inventory order. With
// parallel <= 1 it probes sequentially, matching the original one-click
// behavior; larger values bound the number of concurrent probes.
func Sweep(ctx context.Context, p Prober, devices []Device, timeout time.Duration, parallel int) []Result {
	results := make([]Result, len(devices))

	if parallel <= 1 {
		for i, d := range devices {
			select {
			case <-ctx.Done():
				results[i] = Result{Device: d}
				continue
			default:
			}
			results[i] = p.Probe(ctx, d, timeout)
		}
		return results
	}

	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	for i, d := range devices {
		wg.Add(1)
		go func(i int, d Device) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = Result{Device: d}
				return
			}
			results[i] = p.Probe(ctx, d, timeout)
		}(i, d)
	}
	wg.Wait()
	return results
}

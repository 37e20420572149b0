package inventory

import (
	"context"
	"testing"
	"time"
)

// fakeProber marks devices online when their IP appears in the up set.
type fakeProber struct {
	up map[string]bool
}

func (f fakeProber) Probe(_ context.Context, d Device, _ time.Duration) Result {
	if f.up[d.IP] {
		return Result{Device: d, Online: true, RTT: 3 * time.Millisecond}
	}
	return Result{Device: d}
}

func testDevices() []Device {
	return []Device{
		{Name: "PLC ITC-1", IP: "10.22.250.1"},
		{Name: "CENTRAL INVERTER-1", IP: "10.22.250.2"},
		{Name: "MGW UPS", IP: "10.22.250.10"},
	}
}

func TestSweepSequential(t *testing.T) {
	p := fakeProber{up: map[string]bool{"10.22.250.1": true, "10.22.250.10": true}}
	got := Sweep(context.Background(), p, testDevices(), time.Second, 1)

	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if !got[0].Online || got[1].Online || !got[2].Online {
		t.Fatalf("unexpected statuses: %+v", got)
	}
	// results stay in inventory order
	if got[1].Device.Name != "CENTRAL INVERTER-1" {
		t.Fatalf("result order broken: %+v", got[1].Device)
	}
}

func TestSweepParallelKeepsOrder(t *testing.T) {
	p := fakeProber{up: map[string]bool{"10.22.250.2": true}}
	got := Sweep(context.Background(), p, testDevices(), time.Second, 8)

	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i, d := range testDevices() {
		if got[i].Device.IP != d.IP {
			t.Fatalf("result %d is %s, want %s", i, got[i].Device.IP, d.IP)
		}
	}
	if got[0].Online || !got[1].Online || got[2].Online {
		t.Fatalf("unexpected statuses: %+v", got)
	}
}

func TestSweepCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := Sweep(ctx, fakeProber{up: map[string]bool{"10.22.250.1": true}}, testDevices(), time.Second, 1)
	for _, r := range got {
		if r.Online {
			t.Fatalf("canceled sweep must not report online devices: %+v", r)
		}
	}
}

func TestSweepEmptyInventory(t *testing.T) {
	got := Sweep(context.Background(), fakeProber{}, nil, time.Second, 4)
	if len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}

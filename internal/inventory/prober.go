package inventory

import (
	"context"
	"time"

	"github.com/go-ping/ping"
)

// ICMPProber sends one echo request per probe. Privileged mode uses raw ICMP
// sockets and needs CAP_NET_RAW; unprivileged mode falls back to UDP ping.
type ICMPProber struct {
	Privileged bool
}

func (p ICMPProber) Probe(ctx context.Context, d Device, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = time.Second
	}
	pinger, err := ping.NewPinger(d.IP)
	if err != nil {
		return Result{Device: d}
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(p.Privileged)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pinger.Stop()
		case <-done:
		}
	}()

	if err := pinger.Run(); err != nil {
		return Result{Device: d}
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return Result{Device: d}
	}
	return Result{Device: d, Online: true, RTT: stats.AvgRtt}
}

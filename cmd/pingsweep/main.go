package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scb-analyser/internal/config"
	"scb-analyser/internal/inventory"
)

func main() {
	var (
		cfgPath    string
		timeout    time.Duration
		parallel   int
		privileged bool
		outCSV     string
	)
	flag.StringVar(&cfgPath, "config", "config/config.yaml", "path to YAML config")
	flag.DurationVar(&timeout, "timeout", 0, "per-device timeout (overrides config)")
	flag.IntVar(&parallel, "parallel", 1, "number of concurrent probes (1 = sequential)")
	flag.BoolVar(&privileged, "privileged", false, "use raw ICMP sockets (needs CAP_NET_RAW)")
	flag.StringVar(&outCSV, "csv", "", "path to write results as CSV (optional)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load yaml config: %v", err)
	}
	if len(cfg.Inventory.Devices) == 0 {
		log.Fatalf("no devices in inventory")
	}
	if timeout <= 0 {
		timeout = cfg.Inventory.Timeout
	}

	devices := make([]inventory.Device, 0, len(cfg.Inventory.Devices))
	for _, d := range cfg.Inventory.Devices {
		devices = append(devices, inventory.Device{Name: d.Name, IP: d.IP})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigCh; cancel() }()

	prober := inventory.ICMPProber{Privileged: privileged}
	results := inventory.Sweep(ctx, prober, devices, timeout, parallel)

	online := 0
	for _, r := range results {
		status := "offline"
		rtt := "-"
		if r.Online {
			status = "online"
			rtt = r.RTT.String()
			online++
		}
		fmt.Printf("%-8s %-45s %-16s %s\n", status, r.Device.Name, r.Device.IP, rtt)
	}
	fmt.Printf("%d/%d devices online\n", online, len(results))

	if outCSV != "" {
		if err := writeCSV(outCSV, results); err != nil {
			log.Fatalf("write csv: %v", err)
		}
	}
}

func writeCSV(path string, results []inventory.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"device", "ip", "status", "rtt_ms"}); err != nil {
		return err
	}
	for _, r := range results {
		status := "offline"
		rtt := ""
		if r.Online {
			status = "online"
			rtt = fmt.Sprintf("%.1f", float64(r.RTT.Microseconds())/1000)
		}
		if err := w.Write([]string{r.Device.Name, r.Device.IP, status, rtt}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

package collector

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	mb "github.com/goburrow/modbus"

	"scb-analyser/internal/analysis"
	"scb-analyser/internal/config"
)

// Frame is one polled snapshot of a combiner box: the irradiance sample and
// one current sample per string. Individual read failures surface as no-data
// samples so a flaky register never fabricates a zero reading.
type Frame struct {
	CombinerID string
	Timestamp  time.Time
	Irradiance analysis.Sample
	Currents   []analysis.Sample
}

// FrameHandler is a callback to process polled frames.
// Return an error to have it logged by the poller.
type FrameHandler func(Frame) error

// Poller manages polling a single combiner box.
type Poller struct {
	Server  config.SCBServer
	Handler FrameHandler

	handler  handlerWithConn
	connAddr string
}

// handlerWithConn embeds mb.ClientHandler and exposes Connect/Close used for lifecycle.
type handlerWithConn interface {
	mb.ClientHandler
	Connect() error
	Close() error
}

// newHandler creates and configures a handler for TCP or RTU based on config.
// It returns the handler and a human-readable address for logs.
func (p *Poller) newHandler() (handlerWithConn, string, error) {
	proto := strings.ToLower(strings.TrimSpace(p.Server.Protocol))
	timeout := p.Server.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	switch proto {
	case "modbus-tcp", "tcp", "":
		address := fmt.Sprintf("%s:%d", p.Server.Connection.Host, p.Server.Connection.Port)
		h := mb.NewTCPClientHandler(address)
		h.Timeout = timeout
		h.SlaveId = p.Server.SlaveID
		return h, address, nil
	case "modbus-rtu", "rtu":
		port := p.Server.Connection.SerialPort
		if strings.TrimSpace(port) == "" {
			return nil, "", fmt.Errorf("serial_port is required for RTU")
		}
		h := mb.NewRTUClientHandler(port)
		if p.Server.Connection.BaudRate > 0 {
			h.BaudRate = p.Server.Connection.BaudRate
		}
		if p.Server.Connection.DataBits > 0 {
			h.DataBits = p.Server.Connection.DataBits
		}
		if p.Server.Connection.StopBits > 0 {
			h.StopBits = p.Server.Connection.StopBits
		}
		if par := strings.ToUpper(strings.TrimSpace(p.Server.Connection.Parity)); par != "" {
			h.Parity = par
		}
		h.Timeout = timeout
		h.SlaveId = p.Server.SlaveID
		return h, port, nil
	default:
		return nil, "", fmt.Errorf("protocol %s not implemented", p.Server.Protocol)
	}
}

// Run connects and polls the combiner until the context is canceled.
func (p *Poller) Run(ctx context.Context) error {
	h, addr, err := p.newHandler()
	if err != nil {
		return err
	}
	p.handler = h
	p.connAddr = addr

	// initial connect with simple retries
	retry := p.Server.RetryCount
	if retry < 0 {
		retry = 0
	}
	for attempts := 0; attempts <= retry; attempts++ {
		if err := h.Connect(); err != nil {
			if attempts == retry {
				return fmt.Errorf("connect %s: %w", addr, err)
			}
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		break
	}
	defer h.Close()

	client := mb.NewClient(h)

	interval := p.Server.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Immediate first run
	if err := p.pollOnce(client); err != nil {
		log.Printf("poller %s initial poll: %v", p.Server.CombinerID, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.pollOnce(client); err != nil {
				log.Printf("poller %s poll: %v", p.Server.CombinerID, err)
			}
		}
	}
}

func (p *Poller) pollOnce(client mb.Client) error {
	frame := Frame{
		CombinerID: p.Server.CombinerID,
		Timestamp:  time.Now(),
		Currents:   make([]analysis.Sample, len(p.Server.Strings)),
	}

	frame.Irradiance = p.readQuantity(client, p.Server.Irradiance)
	for i, rm := range p.Server.Strings {
		frame.Currents[i] = p.readQuantity(client, rm)
	}

	if p.Handler != nil {
		if err := p.Handler(frame); err != nil {
			log.Printf("handler error for %s: %v", p.Server.CombinerID, err)
		}
	}
	return nil
}

// readQuantity reads and decodes one mapped register. Any failure, after one
// reconnect attempt, degrades to no-data for this sample only.
func (p *Poller) readQuantity(client mb.Client, rm config.RegisterMap) analysis.Sample {
	v, err := p.readRegister(client, rm)
	if err != nil {
		if recErr := p.reconnect(); recErr == nil {
			if v2, err2 := p.readRegister(client, rm); err2 == nil {
				return v2
			}
		}
		log.Printf("poller %s read @%d: %v", p.Server.CombinerID, rm.Address, err)
		return analysis.NoData()
	}
	return v
}

func (p *Poller) readRegister(client mb.Client, rm config.RegisterMap) (analysis.Sample, error) {
	dt := strings.ToLower(rm.DataType)
	qty := uint16(1)
	if dt == "float32" {
		qty = 2
	}

	var data []byte
	var err error
	switch strings.ToLower(rm.RegisterType) {
	case "holding", "":
		data, err = client.ReadHoldingRegisters(rm.Address, qty)
	case "input":
		data, err = client.ReadInputRegisters(rm.Address, qty)
	default:
		return analysis.NoData(), fmt.Errorf("unsupported register type: %s", rm.RegisterType)
	}
	if err != nil {
		return analysis.NoData(), err
	}
	return decodeRegisterData(data, rm)
}

func decodeRegisterData(data []byte, rm config.RegisterMap) (analysis.Sample, error) {
	scale := rm.Scale
	if scale == 0 {
		scale = 1
	}
	apply := func(v float64) analysis.Sample { return analysis.Value(v*scale + rm.Offset) }

	switch strings.ToLower(rm.DataType) {
	case "uint16", "":
		if len(data) < 2 {
			return analysis.NoData(), errors.New("insufficient data for uint16")
		}
		return apply(float64(binary.BigEndian.Uint16(data[:2]))), nil
	case "int16":
		if len(data) < 2 {
			return analysis.NoData(), errors.New("insufficient data for int16")
		}
		return apply(float64(int16(binary.BigEndian.Uint16(data[:2])))), nil
	case "float32":
		if len(data) < 4 {
			return analysis.NoData(), errors.New("insufficient data for float32")
		}
		b := reorder32(data[:4], rm.ByteOrder)
		f := math.Float32frombits(binary.BigEndian.Uint32(b))
		return apply(float64(f)), nil
	default:
		return analysis.NoData(), fmt.Errorf("unsupported data type: %s", rm.DataType)
	}
}

// reorder32 returns a 4-byte slice reordered per byte-order string.
// Supported orders: "ABCD" (default), "DCBA", "BADC" (byte swap within words), "CDAB" (word swap).
func reorder32(in []byte, order string) []byte {
	var out [4]byte
	if len(in) < 4 {
		return append([]byte{}, in...)
	}
	switch strings.ToUpper(strings.TrimSpace(order)) {
	case "", "ABCD":
		copy(out[:], in[:4])
	case "DCBA":
		out[0], out[1], out[2], out[3] = in[3], in[2], in[1], in[0]
	case "BADC":
		out[0], out[1], out[2], out[3] = in[1], in[0], in[3], in[2]
	case "CDAB":
		out[0], out[1], out[2], out[3] = in[2], in[3], in[0], in[1]
	default:
		copy(out[:], in[:4])
	}
	return out[:]
}

// reconnect attempts to close and reopen the underlying handler.
func (p *Poller) reconnect() error {
	if p.handler == nil {
		return errors.New("no handler")
	}
	p.handler.Close()
	time.Sleep(200 * time.Millisecond)
	return p.handler.Connect()
}

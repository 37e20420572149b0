package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"scb-analyser/internal/analysis"
)

// Site defaults matching the plant's installed modules.
const (
	DefaultRatedPowerWp = 545.0
	DefaultOpenCircuitV = 49.91
	DefaultVmpVocRatio  = 0.82
	DefaultNumStrings   = 18
)

// Config is the root site configuration. This mirrors config/config.yaml.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Module    ModuleConfig    `yaml:"module"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Collector CollectorConfig `yaml:"collector"`
	Inventory InventoryConfig `yaml:"inventory"`
}

type SiteConfig struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"` // IANA name; empty means local time
}

type ModuleConfig struct {
	RatedPowerWp float64 `yaml:"rated_power_wp"`
	OpenCircuitV float64 `yaml:"open_circuit_voltage_v"`
	VmpVocRatio  float64 `yaml:"vmp_voc_ratio"`
}

type AnalysisConfig struct {
	NumStrings          int     `yaml:"num_strings"`
	ReferenceIrradiance float64 `yaml:"reference_irradiance_wm2"`
	CRLowThreshold      float64 `yaml:"cr_low_threshold"`
	DutyCycleThreshold  float64 `yaml:"duty_cycle_threshold"`
}

// IngestConfig names the CSV columns of uploaded SCB exports. Empty string
// column names fall back to I1..IN.
type IngestConfig struct {
	TimestampColumn  string   `yaml:"timestamp_column"`
	IrradianceColumn string   `yaml:"irradiance_column"`
	StringColumns    []string `yaml:"string_columns"`
	TimeLayout       string   `yaml:"time_layout"`
}

type CollectorConfig struct {
	Storage StorageConfig `yaml:"storage"`
	Servers []SCBServer   `yaml:"servers"`
}

type StorageConfig struct {
	Enabled  bool          `yaml:"enabled"`
	DBPath   string        `yaml:"db_path"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// SCBServer describes one combiner box reachable over Modbus.
type SCBServer struct {
	CombinerID   string        `yaml:"combiner_id"`
	Name         string        `yaml:"name"`
	Protocol     string        `yaml:"protocol"` // modbus-tcp | modbus-rtu
	Connection   Connection    `yaml:"connection"`
	SlaveID      uint8         `yaml:"slave_id"`
	Timeout      time.Duration `yaml:"timeout"`
	RetryCount   int           `yaml:"retry_count"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Enabled      bool          `yaml:"enabled"`
	Irradiance   RegisterMap   `yaml:"irradiance"`
	Strings      []RegisterMap `yaml:"strings"`
}

type Connection struct {
	// TCP
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// RTU
	SerialPort string `yaml:"serial_port"`
	BaudRate   int    `yaml:"baud_rate"`
	DataBits   int    `yaml:"data_bits"`
	StopBits   int    `yaml:"stop_bits"`
	Parity     string `yaml:"parity"`
}

// RegisterMap locates one measured quantity on the device.
type RegisterMap struct {
	Address      uint16  `yaml:"address"`
	RegisterType string  `yaml:"register_type"` // holding | input
	DataType     string  `yaml:"data_type"`     // uint16 | int16 | float32
	ByteOrder    string  `yaml:"byte_order"`    // ABCD | DCBA | BADC | CDAB
	Scale        float64 `yaml:"scale"`
	Offset       float64 `yaml:"offset"`
}

type InventoryConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Devices []Device      `yaml:"devices"`
}

// Device is one pingable host on the plant network.
type Device struct {
	Name string `yaml:"name"`
	IP   string `yaml:"ip"`
}

// Load reads the YAML config, applies defaults and validates it.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration with all defaults and no collector or
// inventory entries, for CSV-only analysis runs.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Module.RatedPowerWp == 0 {
		c.Module.RatedPowerWp = DefaultRatedPowerWp
	}
	if c.Module.OpenCircuitV == 0 {
		c.Module.OpenCircuitV = DefaultOpenCircuitV
	}
	if c.Module.VmpVocRatio == 0 {
		c.Module.VmpVocRatio = DefaultVmpVocRatio
	}
	if c.Analysis.NumStrings == 0 {
		c.Analysis.NumStrings = DefaultNumStrings
	}
	if c.Analysis.ReferenceIrradiance == 0 {
		c.Analysis.ReferenceIrradiance = analysis.DefaultReferenceIrradiance
	}
	if c.Analysis.CRLowThreshold == 0 {
		c.Analysis.CRLowThreshold = analysis.DefaultLowCRThreshold
	}
	if c.Analysis.DutyCycleThreshold == 0 {
		c.Analysis.DutyCycleThreshold = analysis.DefaultDutyCycleThreshold
	}
	if c.Collector.Storage.DBPath == "" {
		c.Collector.Storage.DBPath = "data/scb.sqlite"
	}
	if c.Inventory.Timeout <= 0 {
		c.Inventory.Timeout = time.Second
	}
	for i := range c.Collector.Servers {
		srv := &c.Collector.Servers[i]
		if srv.Timeout <= 0 {
			srv.Timeout = 5 * time.Second
		}
		if srv.PollInterval <= 0 {
			srv.PollInterval = 30 * time.Second
		}
	}
}

func (c *Config) validate() error {
	if c.Analysis.NumStrings < 1 {
		return fmt.Errorf("analysis.num_strings must be at least 1, got %d", c.Analysis.NumStrings)
	}
	if c.Analysis.CRLowThreshold < 0 || c.Analysis.CRLowThreshold > 1.4 {
		return fmt.Errorf("analysis.cr_low_threshold %g out of range", c.Analysis.CRLowThreshold)
	}
	if c.Analysis.DutyCycleThreshold < 0 || c.Analysis.DutyCycleThreshold > 1 {
		return fmt.Errorf("analysis.duty_cycle_threshold %g out of range", c.Analysis.DutyCycleThreshold)
	}
	if len(c.Ingest.StringColumns) != 0 && len(c.Ingest.StringColumns) != c.Analysis.NumStrings {
		return fmt.Errorf("ingest.string_columns has %d names, want %d", len(c.Ingest.StringColumns), c.Analysis.NumStrings)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for _, srv := range c.Collector.Servers {
		if srv.CombinerID == "" {
			return fmt.Errorf("collector server %q needs a combiner_id", srv.Name)
		}
		if len(srv.Strings) != c.Analysis.NumStrings {
			return fmt.Errorf("combiner %s maps %d string registers, want %d",
				srv.CombinerID, len(srv.Strings), c.Analysis.NumStrings)
		}
	}
	return nil
}

// Location resolves the site timezone for calendar-day bucketing.
func (c *Config) Location() (*time.Location, error) {
	if c.Site.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return nil, fmt.Errorf("site.timezone: %w", err)
	}
	return loc, nil
}

// ModuleSpec converts the module section to the engine's spec type.
func (c *Config) ModuleSpec() analysis.ModuleSpec {
	return analysis.ModuleSpec{
		RatedPowerWp: c.Module.RatedPowerWp,
		OpenCircuitV: c.Module.OpenCircuitV,
		VoltageRatio: c.Module.VmpVocRatio,
	}
}

// DiagnoseOptions builds the reducer options from the analysis section.
func (c *Config) DiagnoseOptions(loc *time.Location) analysis.DiagnoseOptions {
	return analysis.DiagnoseOptions{
		LowCR:     c.Analysis.CRLowThreshold,
		DutyCycle: c.Analysis.DutyCycleThreshold,
		Location:  loc,
	}
}

// Package config loads the daemon configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/prb-computer/internal/gateway"
	"github.com/sweeney/prb-computer/internal/gpio"
	"github.com/sweeney/prb-computer/internal/impulse"
	"github.com/sweeney/prb-computer/internal/indicator"
	"github.com/sweeney/prb-computer/internal/sensor"
	"github.com/sweeney/prb-computer/internal/sequencer"
	"github.com/sweeney/prb-computer/internal/valve"
)

// GPIO drivers.
const (
	DriverGPIOCDev = "gpiocdev"
	DriverPeriph   = "periph"
)

// Config represents the daemon configuration.
type Config struct {
	Loop     LoopConfig       `yaml:"loop"`
	Sequence sequencer.Config `yaml:"sequence"`
	Burn     impulse.Config   `yaml:"burn"`
	Sensors  sensor.Config    `yaml:"sensors"`
	GPIO     GPIOConfig       `yaml:"gpio"`
	Gateway  GatewayConfig    `yaml:"gateway"`
	MQTT     MQTTConfig       `yaml:"mqtt"`
	HTTP     HTTPConfig       `yaml:"http"`
}

// LoopConfig controls the control-loop ticker.
type LoopConfig struct {
	Tick time.Duration `yaml:"tick"`
}

// GPIOConfig contains output line assignments (BCM numbering).
type GPIOConfig struct {
	Driver     string `yaml:"driver"` // "gpiocdev" or "periph"
	Chip       string `yaml:"chip"`
	MainEngine int    `yaml:"main_engine"`
	Oxidizer   int    `yaml:"oxidizer"`
	Igniter    int    `yaml:"igniter"`
	LEDRed     int    `yaml:"led_red"`
	LEDGreen   int    `yaml:"led_green"`
	LEDBlue    int    `yaml:"led_blue"`
	MuxReset   int    `yaml:"mux_reset"`
}

// GatewayConfig contains the host command link.
type GatewayConfig struct {
	Serial     string `yaml:"serial"` // empty disables the UART link
	Baud       int    `yaml:"baud"`
	QueueDepth int    `yaml:"queue_depth"`
}

// MQTTConfig contains broker settings.
type MQTTConfig struct {
	Broker            string        `yaml:"broker"` // empty disables MQTT
	WSBroker          string        `yaml:"ws_broker"`
	TelemetryInterval time.Duration `yaml:"telemetry_interval"`
}

// HTTPConfig contains the status server address.
type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables the status server
}

// Default returns the bench configuration.
func Default() *Config {
	return &Config{
		Loop:     LoopConfig{Tick: 10 * time.Millisecond},
		Sequence: sequencer.DefaultConfig(),
		Burn:     impulse.DefaultConfig(),
		Sensors:  sensor.DefaultConfig(),
		GPIO: GPIOConfig{
			Driver:     DriverGPIOCDev,
			Chip:       gpio.DefaultChip,
			MainEngine: gpio.DefaultPinMainEngine,
			Oxidizer:   gpio.DefaultPinOxidizer,
			Igniter:    gpio.DefaultPinIgniter,
			LEDRed:     gpio.DefaultPinLEDRed,
			LEDGreen:   gpio.DefaultPinLEDGreen,
			LEDBlue:    gpio.DefaultPinLEDBlue,
			MuxReset:   gpio.DefaultPinMuxReset,
		},
		Gateway: GatewayConfig{
			Baud:       gateway.DefaultBaudRate,
			QueueDepth: gateway.DefaultQueueDepth,
		},
		MQTT: MQTTConfig{
			Broker:            "tcp://192.168.1.200:1883",
			WSBroker:          "=broker",
			TelemetryInterval: time.Second,
		},
		HTTP: HTTPConfig{Addr: ":80"},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; missing fields are filled from the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ensureDefaults back-fills settings whose zero value is unusable: the loop
// tick, the queue depth, the baud rate and empty enums. Zero phase durations
// and intervals are kept as written.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Loop.Tick == 0 {
		c.Loop.Tick = def.Loop.Tick
	}
	if c.Sequence.Shutdown == "" {
		c.Sequence.Shutdown = def.Sequence.Shutdown
	}
	if c.Burn.Mode == "" {
		c.Burn.Mode = def.Burn.Mode
	}
	if c.Sensors.OxidizerSensor == "" {
		c.Sensors.OxidizerSensor = def.Sensors.OxidizerSensor
	}
	if c.Sensors.IIODevice == "" {
		c.Sensors.IIODevice = def.Sensors.IIODevice
	}
	if c.GPIO.Driver == "" {
		c.GPIO.Driver = def.GPIO.Driver
	}
	if c.GPIO.Chip == "" {
		c.GPIO.Chip = def.GPIO.Chip
	}
	if c.Gateway.Baud == 0 {
		c.Gateway.Baud = def.Gateway.Baud
	}
	if c.Gateway.QueueDepth == 0 {
		c.Gateway.QueueDepth = def.Gateway.QueueDepth
	}
}

type namedDuration struct {
	key string
	d   time.Duration
}

func (c *Config) durations() []namedDuration {
	return []namedDuration{
		{"sequence.prechill", c.Sequence.Prechill},
		{"sequence.igniter", c.Sequence.Igniter},
		{"sequence.ignition_delay", c.Sequence.IgnitionDelay},
		{"sequence.rampup", c.Sequence.Rampup},
		{"sequence.cutoff_delay", c.Sequence.Cutoff},
		{"sequence.passivation_delay", c.Sequence.PassivationDelay},
		{"sequence.passivation_fuel", c.Sequence.PassivationFuel},
		{"sequence.passivation_oxidizer", c.Sequence.PassivationOxidizer},
		{"sequence.abort_passivation_delay", c.Sequence.AbortPassivationDelay},
		{"sequence.sensor_poll", c.Sequence.SensorPoll},
		{"sequence.led_blink", c.Sequence.LEDBlink},
		{"sequence.print_interval", c.Sequence.PrintInterval},
		{"burn.min_burn", c.Burn.MinBurn},
		{"sensors.mux_reset_pulse", c.Sensors.MuxPulse},
		{"mqtt.telemetry_interval", c.MQTT.TelemetryInterval},
	}
}

// Validate reports every inconsistent setting.
func (c *Config) Validate() error {
	var errs []error

	if c.Loop.Tick <= 0 {
		errs = append(errs, fmt.Errorf("loop.tick must be positive, got %v", c.Loop.Tick))
	}
	for _, nd := range c.durations() {
		if nd.d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", nd.key, nd.d))
		}
	}
	if c.Burn.Mode == impulse.ModeIntegrate && c.Burn.MaxBurn <= 0 {
		errs = append(errs, fmt.Errorf("burn.max_burn must be positive in integrate mode, got %v", c.Burn.MaxBurn))
	}
	if c.Burn.Mode == impulse.ModeTimed && c.Burn.BurnDuration <= 0 {
		errs = append(errs, fmt.Errorf("burn.burn_duration must be positive in timed mode, got %v", c.Burn.BurnDuration))
	}
	if c.Burn.MinBurn > c.Burn.MaxBurn {
		errs = append(errs, fmt.Errorf("burn.min_burn %v exceeds burn.max_burn %v", c.Burn.MinBurn, c.Burn.MaxBurn))
	}
	if c.Burn.TargetImpulse() <= 0 {
		errs = append(errs, fmt.Errorf("burn.flight_impulse must exceed burn.cutoff_impulse"))
	}
	if c.Gateway.QueueDepth <= 0 {
		errs = append(errs, fmt.Errorf("gateway.queue_depth must be positive, got %d", c.Gateway.QueueDepth))
	}

	enums := []struct {
		key, v string
		ok     []string
	}{
		{"burn.mode", c.Burn.Mode, []string{impulse.ModeIntegrate, impulse.ModeTimed}},
		{"sequence.shutdown", c.Sequence.Shutdown, []string{sequencer.ShutdownPurge, sequencer.ShutdownVent}},
		{"sensors.oxidizer_sensor", c.Sensors.OxidizerSensor, []string{sensor.OxidizerDigital, sensor.OxidizerKulite}},
		{"gpio.driver", c.GPIO.Driver, []string{DriverGPIOCDev, DriverPeriph}},
	}
	for _, e := range enums {
		if !contains(e.ok, e.v) {
			errs = append(errs, fmt.Errorf("%s: unknown value %q (want one of %v)", e.key, e.v, e.ok))
		}
	}

	seen := make(map[int]string)
	for name, pin := range c.GPIO.named() {
		if pin < 0 {
			errs = append(errs, fmt.Errorf("gpio.%s: negative pin %d", name, pin))
			continue
		}
		if other, dup := seen[pin]; dup {
			errs = append(errs, fmt.Errorf("gpio.%s and gpio.%s share pin %d", name, other, pin))
		}
		seen[pin] = name
	}

	return errors.Join(errs...)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (g GPIOConfig) named() map[string]int {
	return map[string]int{
		"main_engine": g.MainEngine,
		"oxidizer":    g.Oxidizer,
		"igniter":     g.Igniter,
		"led_red":     g.LEDRed,
		"led_green":   g.LEDGreen,
		"led_blue":    g.LEDBlue,
		"mux_reset":   g.MuxReset,
	}
}

// ValvePins returns the valve output lines.
func (g GPIOConfig) ValvePins() valve.Pins {
	return valve.Pins{MainEngine: g.MainEngine, Oxidizer: g.Oxidizer, Igniter: g.Igniter}
}

// LEDPins returns the status LED lines.
func (g GPIOConfig) LEDPins() indicator.Pins {
	return indicator.Pins{Red: g.LEDRed, Green: g.LEDGreen, Blue: g.LEDBlue}
}

// Pins returns every output line to request.
func (g GPIOConfig) Pins() []int {
	pins := append(g.ValvePins().List(), g.LEDPins().List()...)
	return append(pins, g.MuxReset)
}

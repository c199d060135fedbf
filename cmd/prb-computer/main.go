// Command prb-computer runs the engine test-bench sequencer: it drives the
// valves and igniter, polls the bench sensors, and serves host commands over
// UART and MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/prb-computer/internal/config"
	"github.com/sweeney/prb-computer/internal/gateway"
	"github.com/sweeney/prb-computer/internal/gpio"
	"github.com/sweeney/prb-computer/internal/impulse"
	"github.com/sweeney/prb-computer/internal/indicator"
	"github.com/sweeney/prb-computer/internal/mqtt"
	"github.com/sweeney/prb-computer/internal/sensor"
	"github.com/sweeney/prb-computer/internal/sequencer"
	"github.com/sweeney/prb-computer/internal/status"
	"github.com/sweeney/prb-computer/internal/valve"
	"github.com/sweeney/prb-computer/internal/web"
)

const defaultConfigPath = "/etc/prb-computer.yaml"

type options struct {
	configPath   string
	printSensors bool
}

func main() {
	cfg, opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg, opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// parseFlags loads the config file and applies the flags that were set on
// the command line on top of it.
func parseFlags(args []string) (*config.Config, options, error) {
	var opts options
	fs := flag.NewFlagSet("prb-computer", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "YAML configuration file")
	fs.BoolVar(&opts.printSensors, "print-sensors", false, "Print every sensor channel and exit")
	broker := fs.String("broker", "", "MQTT broker address (empty to disable)")
	serialPort := fs.String("serial", "", "Host UART device (empty to disable)")
	httpAddr := fs.String("http", "", "HTTP status address (empty to disable)")
	wsBroker := fs.String("ws-broker", "", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)
	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, opts, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "broker":
			cfg.MQTT.Broker = *broker
		case "serial":
			cfg.Gateway.Serial = *serialPort
		case "http":
			cfg.HTTP.Addr = *httpAddr
		case "ws-broker":
			cfg.MQTT.WSBroker = *wsBroker
		}
	})
	cfg.MQTT.WSBroker = resolveWSBroker(cfg.MQTT.WSBroker, cfg.MQTT.Broker)
	return cfg, opts, nil
}

func run(cfg *config.Config, opts options) error {
	out, err := openOutputs(cfg.GPIO)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer out.Close()

	valves := valve.NewBank(out, cfg.GPIO.ValvePins())
	led := indicator.New(out, cfg.GPIO.LEDPins())
	acq, closeSensors := openSensors(cfg.Sensors, out, cfg.GPIO.MuxReset)
	defer closeSensors()

	if opts.printSensors {
		printSensors(os.Stdout, acq)
		return nil
	}

	burn, err := impulse.New(cfg.Burn)
	if err != nil {
		return fmt.Errorf("init burn: %w", err)
	}
	seq := sequencer.New(cfg.Sequence, valves, acq, led, burn)

	tracker := status.NewTracker(time.Now(), statusConfig(cfg))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.Update(seq.Snapshot())

	gw := gateway.New(tracker, cfg.Gateway.QueueDepth)

	var publisher mqtt.Publisher = nopPublisher{}
	var mqttStatus mqtt.ConnectionStatus
	responses := make(chan mqtt.Response, cfg.Gateway.QueueDepth)
	if cfg.MQTT.Broker != "" {
		rp := mqtt.NewRealPublisher(cfg.MQTT.Broker, commandHandler(gw, responses))
		publisher, mqttStatus = rp, rp
	} else {
		log.Printf("mqtt disabled")
	}
	defer publisher.Close()

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	if cfg.Gateway.Serial != "" {
		port, err := gateway.OpenSerial(cfg.Gateway.Serial, cfg.Gateway.Baud)
		if err != nil {
			cancel()
			g.Wait()
			return fmt.Errorf("init gateway: %w", err)
		}
		defer port.Close()
		link := gateway.NewLink(gw, port)
		g.Go(func() error {
			if err := link.Run(ctx); err != nil {
				log.Printf("gateway link error: %v", err)
			}
			return nil
		})
		log.Printf("gateway listening on %s at %d baud", cfg.Gateway.Serial, cfg.Gateway.Baud)
	}

	g.Go(func() error {
		forwardResponses(ctx, publisher, responses)
		return nil
	})

	log.Printf("started: tick=%v burn=%s shutdown=%s broker=%q", cfg.Loop.Tick, cfg.Burn.Mode, cfg.Sequence.Shutdown, cfg.MQTT.Broker)

	ticker := time.NewTicker(cfg.Loop.Tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g.Go(func() error {
		defer cancel()
		return runLoop(seq, gw, publisher, mqttStatus, tracker, cfg.MQTT.TelemetryInterval, time.Now, ticker.C, sigCh)
	})
	return g.Wait()
}

// runLoop is the only goroutine that touches the sequencer. Each tick drains
// the command queue, advances the sequence and publishes the result.
func runLoop(seq *sequencer.Sequencer, gw *gateway.Gateway, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, telemetry time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	last := seq.State()
	var lastTelemetry time.Time

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			seq.Close()
			tracker.Update(seq.Snapshot())
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName),
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			drainCommands(seq, gw.Commands(), t)
			seq.Update(t)

			snap := seq.Snapshot()
			tracker.Update(snap)
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			changed := snap.State != last
			if changed {
				log.Printf("state: %s -> %s", last, snap.State)
				last = snap.State
			}
			if changed || (telemetry > 0 && t.Sub(lastTelemetry) >= telemetry) {
				if err := publisher.PublishTelemetry(snap, t); err != nil {
					log.Printf("telemetry publish error: %v", err)
				}
				lastTelemetry = t
			}
		}
	}
}

func drainCommands(seq *sequencer.Sequencer, cmds <-chan sequencer.Command, now time.Time) {
	for {
		select {
		case cmd := <-cmds:
			if seq.Apply(cmd, now) {
				log.Printf("command: %s", cmd)
			}
		default:
			return
		}
	}
}

// commandHandler answers MQTT command frames through gw. Replies are handed
// to forwardResponses so the MQTT callback never publishes.
func commandHandler(gw *gateway.Gateway, responses chan<- mqtt.Response) mqtt.CommandHandler {
	return func(frame []byte) {
		frame = append([]byte(nil), frame...)
		data, ok, err := gw.Exchange(frame)
		resp := mqtt.Response{Timestamp: time.Now(), Frame: frame, Err: err}
		if ok {
			resp.Data = data[:]
		}
		select {
		case responses <- resp:
		default:
			log.Printf("mqtt: dropped response to % X", frame)
		}
	}
}

func forwardResponses(ctx context.Context, publisher mqtt.Publisher, responses <-chan mqtt.Response) {
	for {
		select {
		case <-ctx.Done():
			return
		case resp := <-responses:
			if err := publisher.PublishResponse(resp); err != nil {
				log.Printf("response publish error: %v", err)
			}
		}
	}
}

func openOutputs(g config.GPIOConfig) (gpio.Writer, error) {
	if g.Driver == config.DriverPeriph {
		w, err := gpio.NewPeriphWriter(g.Pins())
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	w, err := gpio.NewRealWriter(g.Chip, g.Pins())
	if err != nil {
		return nil, err
	}
	return w, nil
}

// openSensors opens the analog and digital paths. A path that cannot be
// opened is logged and its channels read as failed.
func openSensors(cfg sensor.Config, reset gpio.Writer, resetPin int) (*sensor.Acquisition, func()) {
	var adc sensor.ADC
	if iio, err := sensor.NewIIO(cfg.IIODevice); err != nil {
		log.Printf("sensor: analog channels disabled: %v", err)
	} else {
		adc = iio
	}

	bus, err := sensor.OpenBus(cfg.I2CBus, cfg.MuxAddr)
	if err != nil {
		log.Printf("sensor: digital channels disabled: %v", err)
		return sensor.New(cfg, adc, nil), func() {}
	}
	acq := sensor.New(cfg, adc, sensor.NewMux(bus, cfg.MuxAddr, reset, resetPin, cfg.MuxPulse))
	return acq, func() {
		if err := acq.DisableBus(); err != nil {
			log.Printf("sensor: disable bus: %v", err)
		}
		bus.Close()
	}
}

func printSensors(w io.Writer, acq *sensor.Acquisition) {
	for _, ch := range sensor.Channels {
		v, err := acq.Read(ch)
		if err != nil {
			fmt.Fprintf(w, "%-14s error: %v\n", ch, err)
			continue
		}
		unit := "C"
		if ch.IsPressure() {
			unit = "bar"
		}
		fmt.Fprintf(w, "%-14s %8.3f %s\n", ch, v, unit)
	}
}

func statusConfig(cfg *config.Config) status.Config {
	return status.Config{
		TickMs:         cfg.Loop.Tick.Milliseconds(),
		SensorPollMs:   cfg.Sequence.SensorPoll.Milliseconds(),
		TelemetryMs:    cfg.MQTT.TelemetryInterval.Milliseconds(),
		Broker:         cfg.MQTT.Broker,
		HTTPAddr:       cfg.HTTP.Addr,
		WSBroker:       cfg.MQTT.WSBroker,
		SerialPort:     cfg.Gateway.Serial,
		GPIODriver:     cfg.GPIO.Driver,
		BurnMode:       cfg.Burn.Mode,
		Shutdown:       cfg.Sequence.Shutdown,
		OxidizerSensor: cfg.Sensors.OxidizerSensor,
		ColdFlow:       cfg.Sequence.ColdFlow,
	}
}

// nopPublisher stands in when no broker is configured.
type nopPublisher struct{}

func (nopPublisher) PublishTelemetry(sequencer.Snapshot, time.Time) error { return nil }
func (nopPublisher) PublishSystem(mqtt.SystemEvent) error                 { return nil }
func (nopPublisher) PublishResponse(mqtt.Response) error                  { return nil }
func (nopPublisher) Close() error                                         { return nil }

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// resolveWSBroker converts the ws_broker setting into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" or an
// empty broker disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	if broker == "" {
		return ""
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}

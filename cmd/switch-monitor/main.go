// Command switch-monitor polls a debounced GPIO switch and publishes
// state changes to MQTT. The input can be a plain n-state switch, a
// push button analyzed for single/continuous or single/double/long
// push sequences, or a two-pin quadrature rotary encoder.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/switch-monitor/internal/engine"
	"github.com/sweeney/switch-monitor/internal/gpio"
	"github.com/sweeney/switch-monitor/internal/mqtt"
	"github.com/sweeney/switch-monitor/internal/status"
	"github.com/sweeney/switch-monitor/internal/web"
)

// Analyzer modes selectable with -mode.
const (
	modePlain          = "plain"
	modePushRepeat     = "push-repeat"
	modePushDoubleLong = "push-double-long"
	modeRotary         = "rotary"
)

type options struct {
	name       string
	mode       string
	pin        int
	pinB       int
	poll       time.Duration
	debounce   uint
	readCycle  uint
	states     uint
	invert     bool
	longStart  uint
	repeat     uint
	maxDouble  uint
	minLong    uint
	longByTime bool
	mapping    string
	broker     string
	heartbeat  time.Duration
	httpAddr   string
	printState bool
}

func main() {
	var opts options
	flag.StringVar(&opts.name, "name", "switch1", "Switch name used in published events")
	flag.StringVar(&opts.mode, "mode", modePushRepeat, "Input mode: plain, push-repeat, push-double-long, rotary")
	flag.IntVar(&opts.pin, "pin", gpio.DefaultPin, "BCM pin number (quadrature phase A in rotary mode)")
	flag.IntVar(&opts.pinB, "pin-b", gpio.DefaultPinB, "BCM pin number for quadrature phase B (rotary mode only)")
	flag.DurationVar(&opts.poll, "poll", 2*time.Millisecond, "Poll loop interval")
	flag.UintVar(&opts.debounce, "debounce", 5, "Debounce window in milliseconds (0 disables)")
	flag.UintVar(&opts.readCycle, "read-cycle", 0, "Read cycle in milliseconds for plain mode (0 reads every poll)")
	flag.UintVar(&opts.states, "states", 2, "Output state count in plain mode")
	flag.BoolVar(&opts.invert, "invert", false, "Invert raw symbols (pull-up input, switch to ground)")
	flag.UintVar(&opts.longStart, "long-start", 500, "push-repeat: hold duration in ms separating tap from continuous")
	flag.UintVar(&opts.repeat, "repeat", 100, "push-repeat: heartbeat half-period in ms while held (0 disables continuous)")
	flag.UintVar(&opts.maxDouble, "max-double", 400, "push-double-long: window in ms for completing a double push (0 disables)")
	flag.UintVar(&opts.minLong, "min-long", 800, "push-double-long: minimum hold in ms for a long push (0 disables)")
	flag.BoolVar(&opts.longByTime, "long-by-time", false, "push-double-long: report LONG at the threshold instead of at release")
	flag.StringVar(&opts.mapping, "mapping", "", `Mapping table entries as "state=value,state=value"`)
	flag.StringVar(&opts.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&opts.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&opts.printState, "print-state", false, "Print the current raw symbol and exit")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(opts options) error {
	pins := []int{opts.pin}
	if opts.mode == modeRotary {
		pins = append(pins, opts.pinB)
	}

	reader, err := gpio.NewReader(pins...)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	clock := engine.WallClock()
	analyzer, err := buildAnalyzer(opts, clock)
	if err != nil {
		return err
	}

	mapping, err := parseMapping(opts.mapping)
	if err != nil {
		return err
	}

	sw := engine.New(reader, clock, engine.Config{
		States:        clampByte(opts.states),
		ReadCycle:     clampByte(opts.readCycle),
		Debounce:      clampByte(opts.debounce),
		Invert:        opts.invert,
		Analyzer:      analyzer,
		EnableMapping: len(mapping) > 0,
	})
	for _, m := range mapping {
		sw.SetMapping(engine.State(m[0]), m[1])
	}
	sw.ConfigurePort()

	// Print state mode
	if opts.printState {
		raw := reader.ReadRaw()
		if err := reader.Err(); err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("raw: %d\n", raw)
		return nil
	}

	label := stateLabeler(analyzer)

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(opts.broker)
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Name:        opts.name,
		Mode:        opts.mode,
		Pins:        pinsString(pins),
		PollMs:      opts.poll.Milliseconds(),
		DebounceMs:  int64(clampByte(opts.debounce)),
		ReadCycleMs: int64(sw.ReadCycleMillis()),
		HeartbeatMs: opts.heartbeat.Milliseconds(),
		Invert:      opts.invert,
		Broker:      opts.broker,
		HTTPAddr:    opts.httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

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
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", opts.httpAddr)
	}

	log.Printf("started: mode=%s pins=%s poll=%v debounce=%dms read-cycle=%dms broker=%s",
		opts.mode, pinsString(pins), opts.poll, clampByte(opts.debounce), sw.ReadCycleMillis(), opts.broker)

	ticker := time.NewTicker(opts.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(sw, label, reader.Err, publisher, publisher, tracker, opts.name, opts.heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(sw *engine.Switch, label func(engine.State) string, readErr func() error, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, name string, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	counts := status.Counts{ByState: map[string]int{}}
	lastHeartbeat := now()

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
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			changed := sw.Poll()

			if readErr != nil {
				if err := readErr(); err != nil {
					log.Printf("gpio read error: %v", err)
				}
			}

			if changed {
				stateName := label(sw.State())
				event := mqtt.Event{
					Timestamp: t,
					Switch:    name,
					State:     stateName,
					Previous:  label(sw.PreviousState()),
					Value:     uint8(sw.State()),
					Mapped:    sw.MappedState(),
				}
				counts.Changes++
				counts.ByState[stateName]++

				log.Printf("event: %s -> %s (mapped=%d)", event.Previous, event.State, event.Mapped)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			ready := sw.State() != engine.Undefined
			if tracker != nil {
				tracker.Update(label(sw.State()), label(sw.PreviousState()), ready, sw.MappedState(), counts)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if heartbeat > 0 && ready && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				log.Printf("heartbeat: changes=%d", counts.Changes)

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// buildAnalyzer constructs the analyzer for the selected mode. Plain
// mode runs the engine without one.
func buildAnalyzer(opts options, clock engine.Clock) (engine.Analyzer, error) {
	switch opts.mode {
	case modePlain:
		return nil, nil
	case modePushRepeat:
		return engine.NewPushButtonRepeat(clock, clampWord(opts.longStart), clampWord(opts.repeat)), nil
	case modePushDoubleLong:
		return engine.NewPushButtonDoubleLong(clock, clampWord(opts.maxDouble), clampWord(opts.minLong), opts.longByTime), nil
	case modeRotary:
		return engine.NewRotaryEncoder(), nil
	}
	return nil, fmt.Errorf("unknown mode %q", opts.mode)
}

// stateLabeler returns a label function for the analyzer's output
// states, falling back to numeric labels for plain switches.
func stateLabeler(a engine.Analyzer) func(engine.State) string {
	if n, ok := a.(engine.StateNamer); ok {
		return n.StateName
	}
	return func(s engine.State) string {
		if s == engine.Undefined {
			return "UNDEFINED"
		}
		return strconv.Itoa(int(s))
	}
}

// parseMapping parses "state=value" pairs separated by commas, e.g.
// "1=43,2=45".
func parseMapping(s string) ([][2]uint8, error) {
	if s == "" {
		return nil, nil
	}
	var out [][2]uint8
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("mapping entry %q: want state=value", part)
		}
		st, err := strconv.ParseUint(kv[0], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("mapping state %q: %w", kv[0], err)
		}
		v, err := strconv.ParseUint(kv[1], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("mapping value %q: %w", kv[1], err)
		}
		out = append(out, [2]uint8{uint8(st), uint8(v)})
	}
	return out, nil
}

func pinsString(pins []int) string {
	parts := make([]string, len(pins))
	for i, p := range pins {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

func clampByte(v uint) uint8 {
	if v > 0xFF {
		return 0xFF
	}
	return uint8(v)
}

func clampWord(v uint) uint16 {
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}

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

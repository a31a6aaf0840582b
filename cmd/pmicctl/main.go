// cmd/pmicctl/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pmic-go/bus"
	"pmic-go/internal/config"
	"pmic-go/internal/console"
	"pmic-go/internal/dm"
	"pmic-go/internal/gateway"
	"pmic-go/internal/logging"
	"pmic-go/internal/transport"
	"pmic-go/services/power"
	"pmic-go/types"
)

const (
	busSim  = "sim"
	busHost = "host"

	eventQueueLen = 16
	prompt        = "pmic> "
)

func main() {
	var (
		configPath  string
		board       string
		busKind     string
		script      string
		metricsAddr string
		verbosity   int
		jsonLogs    bool
		noBootOn    bool
	)
	flag.StringVar(&configPath, "config", "", "Board file (.yaml or .dtb). Overrides -board.")
	flag.StringVar(&board, "board", "sandbox", "Built-in board: "+strings.Join(config.Boards(), ", "))
	flag.StringVar(&busKind, "bus", busSim, "Bus backend (sim, host)")
	flag.StringVar(&script, "script", "", "Run the console commands in this file and exit")
	flag.StringVar(&metricsAddr, "metrics-bind-address", "", "Serve Prometheus metrics on this address")
	flag.IntVar(&verbosity, "v", 0, "Log verbosity")
	flag.BoolVar(&jsonLogs, "json", false, "Log in JSON")
	flag.BoolVar(&noBootOn, "no-boot-on", false, "Do not enable boot-on and always-on outputs after probe")
	flag.Parse()

	log := logging.New(os.Stderr, logging.Options{Verbosity: verbosity, JSON: jsonLogs})
	setupLog := log.WithName("setup")

	if err := run(log, options{
		configPath:  configPath,
		board:       board,
		busKind:     busKind,
		script:      script,
		metricsAddr: metricsAddr,
		bootOn:      !noBootOn,
		command:     flag.Args(),
	}); err != nil {
		setupLog.Error(err, "pmicctl failed")
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	board       string
	busKind     string
	script      string
	metricsAddr string
	bootOn      bool
	command     []string
}

func run(log logr.Logger, o options) error {
	setupLog := log.WithName("setup")

	cfg, err := loadBoard(o)
	if err != nil {
		return err
	}

	buses, closeBuses, err := openBuses(o.busKind, cfg)
	if err != nil {
		return err
	}
	defer closeBuses()

	metricsReg := prometheus.NewRegistry()
	events := bus.NewBus(eventQueueLen)
	config.Publish(events.NewConnection("config"), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go logEvents(ctx, log.WithName("events"), events.NewConnection("events"))

	reg := dm.New(buses,
		dm.WithLogger(log.WithName("dm")),
		dm.WithEvents(events),
		dm.WithMetrics(gateway.NewMetrics(metricsReg)),
	)
	if err := reg.BindBoard(cfg); err != nil {
		return err
	}
	if err := reg.ProbeAll(); err != nil {
		return err
	}
	if o.bootOn {
		if err := reg.ApplyBootOn(); err != nil {
			return err
		}
	}
	power.New(events.NewConnection("power"), reg, log.WithName("power")).Start(ctx)
	setupLog.Info("board ready",
		"pmics", len(reg.List(types.CategoryPMIC)),
		"regulators", len(reg.List(types.CategoryRegulator)))

	if o.metricsAddr != "" {
		srv := &http.Server{Addr: o.metricsAddr, Handler: promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				setupLog.Error(err, "metrics server stopped")
			}
		}()
		defer srv.Close()
	}

	session := console.NewSession(reg, os.Stdout)
	switch {
	case len(o.command) > 0:
		return session.Exec(strings.Join(o.command, " "))
	case o.script != "":
		f, err := os.Open(o.script)
		if err != nil {
			return err
		}
		defer f.Close()
		return session.Run(f)
	default:
		return session.Serve(os.Stdin, prompt)
	}
}

func loadBoard(o options) (types.BoardConfig, error) {
	if o.configPath != "" {
		return config.Load(o.configPath)
	}
	return config.Embedded(o.board)
}

// openBuses returns the bus factory for kind and its release function.
func openBuses(kind string, cfg types.BoardConfig) (transport.Factory, func(), error) {
	switch kind {
	case busSim:
		return transport.SimBoard(cfg), func() {}, nil
	case busHost:
		h, err := transport.NewHost()
		if err != nil {
			return nil, nil, err
		}
		return h, func() { _ = h.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown bus backend %q", kind)
	}
}

// logEvents mirrors regulator state changes into the log.
func logEvents(ctx context.Context, log logr.Logger, conn *bus.Connection) {
	sub := conn.Subscribe(bus.T(dm.TopicRegulator, "#"))
	defer conn.Disconnect()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			log.V(1).Info("regulator event", "topic", m.Topic.String(), "payload", fmt.Sprintf("%+v", m.Payload))
		}
	}
}

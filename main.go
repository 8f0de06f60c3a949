package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"callboard/buzzer"
	"callboard/clock"
	"callboard/controller"
	"callboard/dispatcher"
	"callboard/display"
	"callboard/input"
	"callboard/journal"
	"callboard/logger"
	"callboard/metrics"
	"callboard/settings"
	"callboard/status"
	"callboard/ticket"
)

const occupancyWidth = 20

func main() {
	configPath := pflag.StringP("config", "c", "config.toml", "path to the configuration file")
	logLevel := pflag.String("log-level", "", "override logging.level (debug, info, warn, error)")
	pflag.Parse()

	config, err := loadConfig(*configPath, pflag.CommandLine.Changed("config"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		config.Logging.Level = logger.LogLevel(*logLevel)
		if err := config.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --log-level: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, config); err != nil {
		logger.Fatal("Callboard stopped with error", "error", err)
	}
}

// loadConfig falls back to the built-in defaults when the default config
// file is absent. An explicitly named file must exist.
func loadConfig(path string, explicit bool) (*settings.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		config := settings.Default()
		return &config, nil
	}
	return settings.LoadConfig(path)
}

func run(ctx context.Context, stop context.CancelFunc, config *settings.Config) error {
	clk := clock.Real()
	stdout, stderr := io.Writer(os.Stdout), io.Writer(os.Stderr)

	var port *input.Port
	if config.Serial.Device != "" {
		p, err := input.OpenSerial(config.Serial.Device)
		if err != nil {
			return fmt.Errorf("open serial: %w", err)
		}
		defer p.Close()
		port = p
		stdout, stderr = port.Output(stdout), port.Output(stderr)
	}

	logger.Init(config.Logging, stderr)
	session := uuid.NewString()
	log := logger.Session("callboard", session)

	console := display.NewConsole(stdout, config.Display.Columns, config.Display.Border, logger.Service("display"))
	view := display.NewHandler(console, config.Display.Buffer, logger.Service("display"))
	go view.Run(ctx)

	m := metrics.New(clk)
	opts := []dispatcher.Option{
		dispatcher.WithView(view),
		dispatcher.WithListener(m),
	}

	if config.Journal.Enabled {
		j, err := journal.Open(config.Journal.Path, session, clk, logger.Service("journal"))
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		if interval := config.Journal.MergeInterval(); interval > 0 {
			go j.Maintain(ctx, interval)
		}
		opts = append(opts, dispatcher.WithListener(j))
	}

	d, err := dispatcher.New(config.Dispatcher, clk, logger.Service("dispatcher"), opts...)
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}

	var actuator buzzer.Actuator = buzzer.Nop{}
	if config.Buzzer.Enabled {
		actuator = buzzer.NewTerminal(stdout, logger.Service("buzzer"))
	}
	pulser := buzzer.NewPulser(actuator)

	edges := input.NewEdgeSource(clk, config.Loop.EdgeBuffer)
	commands := make(chan ticket.Class, 8)
	if port != nil {
		reader := input.NewSerialReader(port, logger.Service("serial"))
		reader.ForwardButtons(edges)
		if port.Raw {
			reader.OnInterrupt(stop)
		}
		go func() {
			defer close(commands)
			if err := reader.Run(ctx, commands); err != nil {
				log.Error("Serial link failed", "error", err)
			}
		}()
	} else {
		close(commands)
	}

	if config.Buttons.Device != "" {
		f, err := os.Open(config.Buttons.Device)
		if err != nil {
			return fmt.Errorf("open buttons: %w", err)
		}
		defer f.Close()

		go func() {
			if err := input.ScanEdges(ctx, f, edges, logger.Service("buttons")); err != nil {
				log.Error("Button line failed", "error", err)
			}
		}()
	}

	if config.Metrics.Listen != "" {
		go func() {
			if err := m.Serve(ctx, config.Metrics.Listen, logger.Service("metrics")); err != nil {
				log.Error("Metrics endpoint failed", "error", err)
			}
		}()
	}

	ctrl := controller.New(
		controller.Config{
			PollInterval:   config.Loop.PollInterval(),
			StatusInterval: config.Loop.StatusInterval(),
		},
		d,
		commands,
		edges,
		pulser,
		status.NewReporter(session, clk),
		clk,
		logger.Service("controller"),
	)
	ctrl.OnReport(func(r status.Report) {
		m.EdgesDropped.Set(float64(r.EdgesDropped))
		for _, line := range status.Occupancy(r.Dispatcher, occupancyWidth) {
			log.Debug(line)
		}
	})

	log.Info("Callboard started",
		"capacity", config.Dispatcher.Capacity,
		"interleave", config.Dispatcher.InterleavePeriod,
		"numbering", config.Dispatcher.Numbering,
		"serial", config.Serial.Device,
		"buttons", config.Buttons.Device,
	)

	return ctrl.Run(ctx)
}

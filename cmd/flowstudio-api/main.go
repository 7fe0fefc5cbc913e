// Package main provides the flowstudio API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/flowstudio/pkg/log"
	"github.com/dukex/flowstudio/pkg/playground"
)

const defaultPort = 9091

func main() {
	cmd := &cli.Command{
		Name:                  "flowstudio-api",
		Usage:                 "Edit flows on a canvas and try their nodes in the playground",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Persistence URL (file path, postgres:// or redis://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Value:   "localhost:9092",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:     "plugins-path",
				Usage:    "Path to the directory containing task plugins",
				Value:    "./plugins",
				Required: false,
				Sources:  cli.EnvVars("PLUGINS_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.DurationFlag{
				Name:    "playground-latency",
				Usage:   "Artificial latency of playground runs",
				Value:   playground.DefaultLatency,
				Sources: cli.EnvVars("PLAYGROUND_LATENCY"),
			},
			&cli.DurationFlag{
				Name:    "autosave-debounce",
				Usage:   "Delay coalescing auto-saves, 0 saves after every change",
				Value:   0,
				Sources: cli.EnvVars("AUTOSAVE_DEBOUNCE"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, config{
				port:              command.Int("port"),
				databaseURL:       command.String("database-url"),
				eventBus:          command.String("event-bus"),
				kafkaBrokers:      command.String("kafka-brokers"),
				pluginsPath:       command.String("plugins-path"),
				playgroundLatency: command.Duration("playground-latency"),
				autosaveDebounce:  command.Duration("autosave-debounce"),
				otelEnabled:       command.Bool("otel-enabled"),
			})
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

type config struct {
	port              int
	databaseURL       string
	eventBus          string
	kafkaBrokers      string
	pluginsPath       string
	playgroundLatency time.Duration
	autosaveDebounce  time.Duration
	otelEnabled       bool
}

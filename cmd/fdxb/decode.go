package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/norasector/fdxb/pkg/reader"
	"github.com/norasector/fdxb/pkg/reader/config"
	"github.com/norasector/fdxb/pkg/reader/output"
	"github.com/norasector/fdxb/pkg/reader/source"
	"github.com/norasector/fdxb/pkg/reader/source/file"
	"github.com/norasector/fdxb/pkg/viz"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type decodeFlags struct {
	config     string
	input      string
	format     string
	sampleRate int
	channel    uint
	json       bool
	debug      bool
}

var decodeOpts decodeFlags

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a logic capture or edge list",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecode(cmd.Context(), cmd, decodeOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := decodeCmd.Flags()
	f.StringVarP(&decodeOpts.config, "config", "c", "", "YAML config file")
	f.StringVarP(&decodeOpts.input, "input", "i", "", "capture file, overrides source.path")
	f.StringVar(&decodeOpts.format, "format", "", "capture format: logic or edges, overrides source.type")
	f.IntVar(&decodeOpts.sampleRate, "sample-rate", 0, "capture sample rate in Hz, overrides sample_rate")
	f.UintVar(&decodeOpts.channel, "channel", 0, "logic channel carrying the data line, overrides source.channel")
	f.BoolVar(&decodeOpts.json, "json", false, "write JSON lines instead of text")
	f.BoolVar(&decodeOpts.debug, "debug", false, "debug logging")
	rootCmd.AddCommand(decodeCmd)
}

func loadConfig(cmd *cobra.Command, flags decodeFlags) (config.Config, error) {
	cfg := config.Default()
	if flags.config != "" {
		var err error
		if cfg, err = config.Load(flags.config); err != nil {
			return cfg, err
		}
	}

	if flags.input != "" {
		cfg.Source.Path = flags.input
	}
	if flags.format != "" {
		cfg.Source.Type = flags.format
	}
	if flags.sampleRate != 0 {
		cfg.SampleRate = flags.sampleRate
	}
	if cmd.Flags().Changed("channel") {
		cfg.Source.Channel = flags.channel
	}
	if flags.json {
		cfg.Outputs.Console.Format = config.FormatJSON
	}
	if flags.debug {
		cfg.LogLevel = zerolog.DebugLevel.String()
	}

	return cfg, cfg.Validate()
}

func openSource(cfg config.Source) (source.Source, error) {
	switch cfg.Type {
	case config.SourceTypeEdges:
		return file.NewEdgeSource(cfg.Path)
	default:
		return file.NewLogicSource(cfg.Path, cfg.ReadSize, cfg.Channel)
	}
}

func runDecode(ctx context.Context, cmd *cobra.Command, flags decodeFlags, stdout io.Writer) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger := log.Logger.Level(level)

	src, err := openSource(cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}

	metrics := reader.NewMetrics()
	readerOpts := []reader.ReaderOption{
		reader.WithLogger(logger),
		reader.WithMetrics(metrics),
	}

	var outputs []reader.Output
	if cfg.Outputs.Console.Enabled {
		outputs = append(outputs, output.NewSimpleOutput(stdout,
			cfg.Outputs.Console.Format == config.FormatJSON,
			cfg.Outputs.Console.Rows))
	}

	if cfg.Outputs.MQTT.Broker != "" {
		mqttOut, err := output.NewMQTTOutput(cfg.Outputs.MQTT, logger)
		if err != nil {
			return err
		}
		outputs = append(outputs, mqttOut)
	}

	if cfg.InfluxDB.Host != "" {
		client := influxdb2.NewClient(cfg.InfluxDB.Host, cfg.InfluxDB.Token)
		defer client.Close()
		readerOpts = append(readerOpts, reader.WithInfluxDB(
			client.WriteAPI(cfg.InfluxDB.Organization, cfg.InfluxDB.Bucket),
		))
	}

	if cfg.StatusServer.Enabled {
		vizServer := viz.NewServer(cfg.StatusServer.Port, cfg.StatusServer.UpdateInterval(),
			viz.WithGatherer(metrics.Registry()),
			viz.WithServerLogger(logger))
		if cfg.StatusServer.WebSocket {
			ws := output.NewWebSocketOutput(logger)
			vizServer.Handle("/ws", ws)
			outputs = append(outputs, ws)
		}
		readerOpts = append(readerOpts, reader.WithStatusServer(vizServer))
	}

	r, err := reader.NewReader(src, reader.Options{
		SampleRate: cfg.SampleRate,
		Outputs:    outputs,
	}, readerOpts...)
	if err != nil {
		src.Stop()
		return fmt.Errorf("failed to create reader: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	eg.Go(func() error {
		select {
		case <-sigChan:
		case <-ctx.Done():
		}

		return r.Stop()
	})

	eg.Go(func() error {
		defer cancel()
		return r.Start(ctx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

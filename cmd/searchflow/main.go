// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/searchflow"
	"github.com/poiesic/searchflow/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "searchflow",
		Usage: "Reactive query orchestration for search interfaces",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (local transport)",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Elasticsearch-compatible server URL (selects the elastic transport)",
			},
			&cli.StringFlag{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Index to search and write to",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index JSON documents into the local store",
				ArgsUsage: "<file>",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to write in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run a YAML search session and print component results",
				ArgsUsage: "<session.yaml>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "follow",
						Aliases: []string{"f"},
						Usage:   "Keep running and print streamed hits until interrupted",
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address while following",
					},
				},
			},
		},
	}
}

// loadConfig reads the optional config file and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("url") {
		cfg.Transport = config.TransportElastic
		cfg.URL = c.String("url")
	}
	if c.IsSet("index") {
		cfg.Index = c.String("index")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("document file is required")
	}
	batchSize := c.Int("batch-size")
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	reportInterval := c.Int("report-interval")
	if reportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Transport != config.TransportLocal {
		return searchflow.ErrIndexingUnsupported
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open documents: %w", err)
	}
	defer f.Close()

	docs, err := readDocuments(f)
	if err != nil {
		return err
	}

	rt, err := searchflow.NewRuntime(cfg)
	if err != nil {
		return fmt.Errorf("failed to open runtime: %w", err)
	}
	defer rt.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.DBPath)
	fmt.Fprintf(os.Stderr, "Index: %s\n", cfg.Index)
	fmt.Fprintln(os.Stderr)

	tracker := newProgressTracker(os.Stderr, len(docs), reportInterval)
	tracker.Start()
	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))
		if _, err := rt.Index(ctx, docs[start:end]...); err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}
		tracker.Increment(end - start)
	}
	tracker.Finish()

	count, err := rt.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Indexed %d documents in %s (%d in index)\n",
		len(docs), tracker.Elapsed().Round(time.Millisecond), count)
	return nil
}

func searchCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("session file is required")
	}
	session, err := loadSession(path)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	rt, err := searchflow.NewRuntime(cfg)
	if err != nil {
		return fmt.Errorf("failed to open runtime: %w", err)
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var unsubscribe func()
	if c.Bool("follow") {
		unsubscribe = followStreams(rt.Store(), os.Stdout)
		defer unsubscribe()
	}

	if err := runSession(ctx, rt.Engine(), session); err != nil {
		return err
	}
	if err := printResults(os.Stdout, rt.Store(), session.printTargets()); err != nil {
		return err
	}

	if !c.Bool("follow") {
		return nil
	}
	if addr := c.String("metrics-addr"); addr != "" && rt.Monitor() != nil {
		srv := &http.Server{Addr: addr, Handler: metricsMux(rt), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "err", err)
			}
		}()
		defer srv.Close()
		slog.Info("serving metrics", "addr", addr)
	}
	slog.Info("following streams, press Ctrl-C to stop")
	<-ctx.Done()
	return nil
}

func metricsMux(rt *searchflow.Runtime) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.Monitor().Handler())
	return mux
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

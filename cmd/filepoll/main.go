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
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/filepoll"
	"github.com/poiesic/filepoll/config"
	"github.com/poiesic/filepoll/core"
	"github.com/poiesic/filepoll/poller"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	inboxFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Directory to poll (overrides the config file)",
		},
		&cli.StringFlag{
			Name:  "seen-db",
			Usage: "Path to BadgerDB directory remembering accepted files (overrides the config file)",
		},
		&cli.StringFlag{
			Name:  "done",
			Usage: "Move each delivered file into this directory instead of only logging it",
		},
	}

	return &cli.App{
		Name:  "filepoll",
		Usage: "Poll a directory and deliver each new file exactly once",
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
				Usage:   "Path to YAML config file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "poll",
				Usage:  "Poll the directory until interrupted",
				Action: pollCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address (e.g. :9090)",
					},
				}, inboxFlags...),
			},
			{
				Name:   "drain",
				Usage:  "Deliver every currently eligible file, then exit",
				Action: drainCommand,
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report progress on stderr",
						Value: true,
					},
				}, inboxFlags...),
			},
			{
				Name:  "seen",
				Usage: "Inspect the seen store",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List files the seen store remembers",
						Action: seenListCommand,
						Flags:  inboxFlags[1:2],
					},
					{
						Name:      "forget",
						Usage:     "Forget files so they are delivered again",
						ArgsUsage: "<path>...",
						Action:    seenForgetCommand,
						Flags:     inboxFlags[1:2],
					},
				},
			},
		},
	}
}

// loadConfig reads the config file if one is given and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if dir := c.String("dir"); dir != "" {
		cfg.Directory = dir
	}
	if seenDB := c.String("seen-db"); seenDB != "" {
		cfg.SeenDB = seenDB
	}
	return cfg, nil
}

func openInbox(c *cli.Context) (*filepoll.Inbox, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return filepoll.Open(cfg)
}

// newHandler returns a handler that moves each file into done, or only logs it
// when done is empty.
func newHandler(done string) (poller.Handler, error) {
	if done != "" {
		if err := os.MkdirAll(done, 0755); err != nil {
			return nil, fmt.Errorf("creating done directory: %w", err)
		}
	}
	return func(ctx context.Context, msg *core.Message) error {
		if done == "" {
			slog.Info("delivered", "path", msg.Payload.Path, "size", msg.Payload.Size, "id", msg.ID)
			return nil
		}
		target := filepath.Join(done, msg.Payload.Name)
		if err := os.Rename(msg.Payload.Path, target); err != nil {
			return fmt.Errorf("moving %s: %w", msg.Payload.Path, err)
		}
		slog.Info("delivered", "path", msg.Payload.Path, "moved_to", target, "id", msg.ID)
		return nil
	}, nil
}

func pollCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inbox, err := openInbox(c)
	if err != nil {
		return err
	}
	defer inbox.Close()

	handler, err := newHandler(c.String("done"))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	p, err := inbox.NewPoller(handler, poller.WithMetrics(poller.NewMetrics(reg)))
	if err != nil {
		return err
	}
	defer p.Release()

	if addr := c.String("metrics-addr"); addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		slog.Info("serving metrics", "addr", addr)
	}

	slog.Info("polling", "directory", inbox.Source().Directory())
	return p.Run(ctx)
}

func drainCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inbox, err := openInbox(c)
	if err != nil {
		return err
	}
	defer inbox.Close()

	handler, err := newHandler(c.String("done"))
	if err != nil {
		return err
	}

	var opts []poller.Option
	if c.Bool("progress") {
		opts = append(opts, poller.WithProgress(c.App.ErrWriter))
	}
	p, err := inbox.NewPoller(handler, opts...)
	if err != nil {
		return err
	}
	defer p.Release()

	stats, err := p.Drain(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "received %d, delivered %d, failed %d\n", stats.Received, stats.Delivered, stats.Failed)
	if stats.Failed > 0 {
		return fmt.Errorf("%d files failed", stats.Failed)
	}
	return nil
}

// openSeenStore opens only the seen store named by --seen-db or the config file.
// The polled directory is neither required nor created.
func openSeenStore(c *cli.Context) (*filepoll.SeenStore, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return filepoll.OpenSeenStore(cfg.SeenDB)
}

func seenListCommand(c *cli.Context) error {
	store, err := openSeenStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(c.Context)
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Fprintf(c.App.Writer, "%s\t%d\t%s\t%s\n",
			r.Path, r.Size, r.ModTime.Format(time.RFC3339), r.AcceptedAt.Format(time.RFC3339))
	}
	return nil
}

func seenForgetCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one path is required")
	}

	store, err := openSeenStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, path := range c.Args().Slice() {
		if err := store.Forget(c.Context, path); err != nil {
			return fmt.Errorf("forgetting %s: %w", path, err)
		}
		slog.Info("forgot", "path", path)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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

// ytblocker watches DNS traffic on the host and adds video-ad cache hosts to
// the Pi-hole denylist.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/strct-org/ytblocker/internal/agent"
	"github.com/strct-org/ytblocker/internal/capture"
	"github.com/strct-org/ytblocker/internal/config"
	"github.com/strct-org/ytblocker/internal/denylist"
	"github.com/strct-org/ytblocker/internal/eventlog"
	"github.com/strct-org/ytblocker/internal/logger"
	"github.com/strct-org/ytblocker/internal/metrics"
)

// Exit codes.
const (
	exitStartup = 1
	exitRuntime = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	devMode := flag.Bool("dev", false, "Run in development mode (text logs, local paths, dry run)")
	replay := flag.String("replay", "", "Read frames from a pcap file instead of a raw socket")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	cfg, logOut := setup(*devMode, *verbose)
	defer logOut.Close()

	events, err := eventlog.Open(cfg.EventLogPath, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not create log file: %v\n", err)
		return exitStartup
	}
	defer events.Close()

	src, err := openSource(*replay)
	if err != nil {
		msg := sourceFailureEvent(*replay)
		if werr := events.Write(time.Now(), msg); werr != nil {
			slog.Error("main: event log write failed", "err", werr)
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		return exitStartup
	}
	defer src.Close()

	sink := denylist.NewDefault(cfg.DenylistTool, cfg.CommandTimeout, cfg.DryRun)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	services := []agent.Named{
		{Name: "capture", Service: capture.New(src, sink, events, capture.WithMetrics(m))},
	}
	if cfg.MetricsAddr != "" {
		services = append(services, agent.Named{Name: "metrics", Service: metrics.NewServer(cfg.MetricsAddr, reg)})
	}

	slog.Info("main: starting",
		"event_log", cfg.EventLogPath,
		"denylist_tool", cfg.DenylistTool,
		"dry_run", cfg.DryRun,
		"replay", *replay,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := agent.New(services...).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ytblocker: %v\n", err)
		return exitRuntime
	}

	slog.Info("main: shutdown complete")
	return 0
}

// setup installs the logger before the config is read so config messages use
// the configured handler and file. The instance tag is added once known.
func setup(devMode, verbose bool) (*config.Config, io.WriteCloser) {
	config.LoadEnvFile()

	logOut := logger.Init(logger.Options{
		File:    config.DiagLogFile(),
		IsDev:   devMode,
		Verbose: verbose,
	})

	cfg := config.Load(devMode)
	logger.SetInstance(cfg.InstanceID)
	return cfg, logOut
}

// sourceFailureEvent is the event-log line for a frame source that cannot be
// opened.
func sourceFailureEvent(replayPath string) string {
	if replayPath != "" {
		return "Could not open replay file"
	}
	return "Could not create socket"
}

func openSource(replayPath string) (capture.Source, error) {
	if replayPath != "" {
		return capture.OpenReplay(replayPath)
	}
	return capture.OpenRaw()
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/transit-widgets/config"
	"github.com/theoremus-urban-solutions/transit-widgets/internal/app"
	"github.com/theoremus-urban-solutions/transit-widgets/labelmap"
	"github.com/theoremus-urban-solutions/transit-widgets/logging"
	"github.com/theoremus-urban-solutions/transit-widgets/poller"
	"github.com/theoremus-urban-solutions/transit-widgets/server"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (default: ./config.yml)")
	mode := flag.String("mode", "serve", "serve|oneshot|enhance")
	widget := flag.String("widget", "", "widget name for oneshot/enhance (default: first configured)")
	port := flag.Int("port", 0, "listen port (overrides config)")
	flag.Parse()

	if err := config.LoadAppConfig(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Config
	if *port > 0 {
		cfg.Server.Port = *port
	}

	var log zerolog.Logger
	if *mode == "serve" {
		log = logging.InitLogging(cfg.Logging)
	} else {
		// stdout carries the JSON result
		log = logging.InitLoggingTo(os.Stderr, cfg.Logging)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch *mode {
	case "serve":
		err = serve(ctx, cfg, log)
	case "oneshot":
		err = oneshot(ctx, cfg, *widget, log)
	case "enhance":
		err = enhance(*widget, log)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Error().Err(err).Str("mode", *mode).Msg("exiting")
		stop()
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg config.AppConfig, log zerolog.Logger) error {
	a, err := app.Build(cfg, logging.For("app"))
	if err != nil {
		return err
	}
	grace, err := cfg.Server.ShutdownGrace()
	if err != nil {
		return err
	}

	srv := server.New(logging.For("server"))
	pollLog := logging.For("poller")
	opts := poller.Options{PerMinute: cfg.Reload.PerMinute, Burst: cfg.Reload.Burst}
	var pollers []*poller.Poller
	for _, e := range a.Entries {
		if e.LabelMap != nil {
			if err := e.LabelMap.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("label map not loaded")
			}
			if e.LabelMap.Watching() {
				go func(lm *labelmap.LabelMap) {
					if err := lm.Run(ctx); err != nil {
						log.Warn().Err(err).Str("labelMap", lm.Name()).Msg("label map watch stopped")
					}
				}(e.LabelMap)
			}
			srv.Register(e.Kind, e.Widget, nil)
			continue
		}
		p := poller.New(string(e.Kind)+"/"+e.Widget.Name(), e.Interval, e.Widget.Refresh, opts, pollLog)
		p.Start(ctx)
		pollers = append(pollers, p)
		srv.Register(e.Kind, e.Widget, p)
	}

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		return err
	}
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warn().Err(err).Msg("sd_notify failed")
	} else if ok {
		log.Debug().Msg("notified systemd: ready")
	}

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	for _, p := range pollers {
		p.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func oneshot(ctx context.Context, cfg config.AppConfig, name string, log zerolog.Logger) error {
	a, err := app.Build(cfg, logging.For("app"))
	if err != nil {
		return err
	}
	e, ok := a.Find(name)
	if !ok {
		return fmt.Errorf("no widget named %q", name)
	}
	if err := e.Widget.Refresh(ctx); err != nil {
		// the state still describes the failure
		log.Warn().Err(err).Str("widget", e.Widget.Name()).Msg("refresh failed")
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(e.Widget.View())
}

// enhance writes <name>_enhanced.json next to the label map's data file.
func enhance(name string, log zerolog.Logger) error {
	lc, ok := config.SelectLabelMap(name)
	if !ok {
		return fmt.Errorf("no label map named %q", name)
	}
	d, err := labelmap.Load(lc.Path)
	if err != nil {
		return err
	}
	added := labelmap.Enhance(d)
	ext := filepath.Ext(lc.Path)
	out := strings.TrimSuffix(lc.Path, ext) + "_enhanced" + ext
	if err := labelmap.Save(out, d); err != nil {
		return err
	}
	log.Info().Str("out", out).Int("labels", added).Msg("enhanced label map written")
	fmt.Println(out)
	return nil
}

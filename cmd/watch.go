package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/owl-time-keeper/internal/logfields"
	"github.com/Tiliavir/owl-time-keeper/internal/metrics"
	"github.com/Tiliavir/owl-time-keeper/internal/model"
	"github.com/Tiliavir/owl-time-keeper/internal/report"
	"github.com/Tiliavir/owl-time-keeper/internal/scheduler"
	"github.com/Tiliavir/owl-time-keeper/internal/settings"
	"github.com/Tiliavir/owl-time-keeper/internal/usecase"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep running and print the menu-bar title whenever it changes",
	Long: `watch follows the active task and the settings file and prints the
menu-bar title on every change. The title is also refreshed on every tick
(tick_interval in config.json) so switches made from another shell show up.
When metrics_addr is configured, Prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

// trayPrinter prints the title only when it differs from the last one.
type trayPrinter struct {
	svc *usecase.Service

	mu   sync.Mutex
	last *string
}

func (p *trayPrinter) refresh(ctx context.Context) error {
	title, err := p.svc.TrayTitle(ctx)
	if err != nil {
		return err
	}
	at, err := p.svc.GetActiveTask(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last != nil && *p.last == title {
		return nil
	}
	p.last = &title
	now := p.svc.Now().Format("15:04:05")
	if at == nil {
		fmt.Printf("%s  (idle)\n", now)
		return nil
	}
	fmt.Printf("%s  %s  [%s]\n", now, title, report.FormatClock(since(at.StartTime)))
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tick, err := cfg.Tick()
	if err != nil {
		userError("%v", err)
	}

	var recorder metrics.Recorder
	var registry *prom.Registry
	if cfg.MetricsAddr != "" {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	a, err := openApp(ctx, recorder)
	if err != nil {
		storageError(err)
	}
	defer a.Close()

	printer := &trayPrinter{svc: a.svc}
	onChange := func() {
		if err := printer.refresh(ctx); err != nil {
			slog.Warn("Could not refresh menu-bar title", logfields.Error(err))
		}
	}
	activeSub := a.svc.ObserveActiveTask(func(*model.ActiveTask) { onChange() })
	defer activeSub.Unsubscribe()
	menuBarSub := a.svc.ObserveMenuBarRestriction(func(model.MenuBarRestriction) { onChange() })
	defer menuBarSub.Unsubscribe()
	dockSub := a.svc.ObserveDockIconVisibility(func(visible bool) {
		slog.Info("Dock icon visibility", slog.Bool("visible", visible))
	})
	defer dockSub.Unsubscribe()

	watcher, err := settings.NewWatcher(a.settings, 0)
	if err != nil {
		storageError(err)
	}
	if err := watcher.Start(ctx); err != nil {
		storageError(err)
	}
	defer func() { _ = watcher.Stop() }()

	sched, err := scheduler.New()
	if err != nil {
		storageError(err)
	}
	if _, err := sched.Every(ctx, "tray-title", tick, printer.refresh); err != nil {
		storageError(err)
	}
	sched.Start()
	defer func() { _ = sched.Stop() }()

	var srv *http.Server
	if registry != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(registry))
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("Serving metrics", slog.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
	}

	<-ctx.Done()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	fmt.Println("Stopped watching.")
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/legaltrack/internal/client/connectivity"
)

// syncWriter serializes writes from the probe loop and the refresh loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (r *runner) watchCmd() *cobra.Command {
	var refresh time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Track connectivity and refresh cases and notifications periodically",
		Long: "Runs until interrupted. Reconnecting does not reload anything by itself; " +
			"the next refresh tick does. With --metrics-addr, Prometheus metrics are served on /metrics.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if refresh <= 0 {
				return fmt.Errorf("--refresh must be positive, got %s", refresh)
			}
			ctx := cmd.Context()
			out := &syncWriter{w: cmd.OutOrStdout()}
			a := r.app

			if addr := r.cfg.MetricsAddr; addr != "" {
				stop := r.serveMetrics(ctx, addr)
				defer stop()
			}

			unsubscribe := a.observer.Subscribe(func(connected bool) {
				mode := connectivity.ModeOffline
				if connected {
					mode = connectivity.ModeOnline
				}
				fmt.Fprintf(out, "%s switched to %s mode\n", time.Now().Format(timeLayout), mode)
			})
			defer unsubscribe()

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				a.StartOnlineStatusWatcher(ctx)
			}()
			defer wg.Wait()

			r.refresh(ctx, out)
			ticker := time.NewTicker(refresh)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if a.observer.IsConnected() {
						r.refresh(ctx, out)
					}
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().DurationVar(&refresh, "refresh", 5*time.Minute, "reload interval while online")
	return cmd
}

func (r *runner) refresh(ctx context.Context, out io.Writer) {
	a := r.app
	subs := a.monitoring.Load(ctx)
	a.feed.LoadFirstPage(ctx)

	src := "network"
	if subs.FromCache {
		src = "cache"
	}
	fmt.Fprintf(out, "%s cases: %d, companies: %d, unread: %d (%s)\n",
		time.Now().Format(timeLayout), len(subs.Data.Cases), len(subs.Data.Companies), a.feed.UnreadCount(), src)
}

// serveMetrics exposes the app registry until the returned stop is called.
func (r *runner) serveMetrics(ctx context.Context, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.app.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.app.log.Error(ctx, "metrics server failed", "addr", addr, "error", err)
		}
	}()
	r.app.log.Info(ctx, "serving metrics", "addr", addr)

	return func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}
}

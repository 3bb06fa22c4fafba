package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
	"github.com/dmitrijs2005/legaltrack/internal/client/client"
	"github.com/dmitrijs2005/legaltrack/internal/client/config"
	"github.com/dmitrijs2005/legaltrack/internal/client/connectivity"
	"github.com/dmitrijs2005/legaltrack/internal/client/datex"
	"github.com/dmitrijs2005/legaltrack/internal/client/documents"
	"github.com/dmitrijs2005/legaltrack/internal/client/metrics"
	"github.com/dmitrijs2005/legaltrack/internal/client/notifications"
	"github.com/dmitrijs2005/legaltrack/internal/client/prefetch"
	"github.com/dmitrijs2005/legaltrack/internal/client/push"
	"github.com/dmitrijs2005/legaltrack/internal/client/readstate"
	"github.com/dmitrijs2005/legaltrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/legaltrack/internal/client/resource"
	"github.com/dmitrijs2005/legaltrack/internal/client/services"
	"github.com/dmitrijs2005/legaltrack/internal/client/session"
	"github.com/dmitrijs2005/legaltrack/internal/filex"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

// App holds every wired component for one command run.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	api     *client.HTTPClient
	meta    metadata.Repository
	cache   *cachestore.Cache
	metrics *metrics.Metrics
	reg     *prometheus.Registry

	observer *connectivity.Observer
	prober   connectivity.Prober

	session    *session.Manager
	readState  *readstate.Store
	prefetcher *prefetch.Prefetcher
	monitoring services.MonitoringService
	calendar   services.CalendarService
	details    services.CaseDetailService
	delays     services.DelaysService
	feed       *notifications.Feed
	documents  *documents.Cache
	registrar  *push.Registrar

	closers []func() error
}

// NewApp opens the local database and wires the sync layer against the
// backend at c.BaseURL.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if _, err := filex.EnsureDir(filepath.Dir(c.DatabasePath)); err != nil {
		return nil, fmt.Errorf("database directory: %w", err)
	}
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	a := &App{config: c, log: log, db: db}
	a.closers = append(a.closers, db.Close)

	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	c := a.config

	a.reg = prometheus.NewRegistry()
	a.metrics = metrics.New(a.reg)

	a.api = client.NewHTTPClient(c.BaseURL, client.WithTimeout(c.RequestTimeout))
	repos := client.NewRepositories(a.db)
	a.meta = repos.Metadata
	a.cache = cachestore.New(repos.Cache, a.log, cachestore.WithMetrics(a.metrics))
	a.observer = connectivity.NewObserver(a.log, a.metrics)

	deps := resource.Deps{Cache: a.cache, Online: a.observer, Log: a.log, Metrics: a.metrics}
	dates := datex.NewParser(time.Local)

	a.prefetcher = prefetch.New(a.api, a.cache, a.observer, a.log,
		prefetch.WithConcurrency(c.PrefetchConcurrency), prefetch.WithMetrics(a.metrics))
	a.monitoring = services.NewMonitoringService(deps, a.api, a.prefetcher)
	a.calendar = services.NewCalendarService(deps, a.api, dates)
	a.details = services.NewCaseDetailService(deps, a.api)
	a.delays = services.NewDelaysService(deps, a.api)
	a.readState = readstate.New(a.cache)
	a.feed = notifications.NewFeed(deps, a.api, a.readState, dates)

	store, err := a.blobStore(ctx)
	if err != nil {
		return err
	}
	a.documents = documents.NewCache(a.api, store, a.log)
	a.registrar = push.NewRegistrar(a.api, a.meta, a.log)

	a.session = session.NewManager(a.db, a.api, a.log)
	a.session.Register(a.monitoring, a.calendar, a.details, a.delays, a.feed, a.prefetcher, a.readState)
	a.session.RegisterPurger(a.documents)
	a.session.OnLogin(a.registrar.Flush)

	unsubscribe := a.observer.Subscribe(a.handleConnectivity)
	a.closers = append(a.closers, func() error {
		unsubscribe()
		return nil
	})

	return a.setupProber()
}

func (a *App) blobStore(ctx context.Context) (documents.BlobStore, error) {
	c := a.config
	if !c.UsesS3() {
		local, err := documents.NewLocalStore(c.DocumentsDir)
		if err != nil {
			return nil, err
		}
		return local, nil
	}
	s3c, err := documents.NewS3Client(ctx, documents.S3Config{
		Bucket:    c.S3Bucket,
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}
	return documents.NewS3Store(s3c, c.S3Bucket, "documents"), nil
}

func (a *App) setupProber() error {
	if a.config.ProbeMode != config.ProbeGRPC {
		a.prober = a.api
		return nil
	}
	p, err := connectivity.NewGRPCHealthProber(a.config.GRPCHealthAddr, "")
	if err != nil {
		return err
	}
	a.prober = p
	a.closers = append(a.closers, p.Close)
	return nil
}

// handleConnectivity fans a reachability transition out to every loader.
// Going offline cancels their in-flight work; coming back does not reload.
func (a *App) handleConnectivity(connected bool) {
	a.monitoring.HandleConnectivity(connected)
	a.calendar.HandleConnectivity(connected)
	a.details.HandleConnectivity(connected)
	a.delays.HandleConnectivity(connected)
	a.feed.HandleConnectivity(connected)
	a.prefetcher.HandleConnectivity(connected)
}

// CheckOnline runs one probe so the first load already knows the mode.
func (a *App) CheckOnline(ctx context.Context) bool {
	return a.observer.Check(ctx, a.prober, a.config.ProbeTimeout)
}

// StartOnlineStatusWatcher probes the backend every OnlineCheckInterval
// until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context) {
	a.observer.Run(ctx, a.prober, a.config.OnlineCheckInterval, a.config.ProbeTimeout)
}

// RestoreSession reapplies the saved token, or logs in with the configured
// one when nothing is saved.
func (a *App) RestoreSession(ctx context.Context) (session.Account, error) {
	acc, err := a.session.Restore(ctx)
	if errors.Is(err, session.ErrNoSession) && a.config.Token != "" {
		return a.session.Login(ctx, a.config.Token)
	}
	return acc, err
}

// Close stops background work and releases resources in reverse order.
func (a *App) Close() error {
	if a.prefetcher != nil {
		a.prefetcher.Cancel()
		a.prefetcher.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

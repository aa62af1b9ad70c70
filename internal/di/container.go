package di

import (
	"log/slog"

	alertRepo "github.com/reshetovitsme/truth-market-feed/internal/modules/alert/repository"
	alertService "github.com/reshetovitsme/truth-market-feed/internal/modules/alert/service"
	feedService "github.com/reshetovitsme/truth-market-feed/internal/modules/feed/service"
	"github.com/reshetovitsme/truth-market-feed/internal/modules/fetch"
	monitorService "github.com/reshetovitsme/truth-market-feed/internal/modules/monitor/service"
	proxyPool "github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/pool"
	proxyProber "github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/prober"
	proxySource "github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/source"
	proxyTransport "github.com/reshetovitsme/truth-market-feed/internal/modules/proxy/transport"
	"github.com/reshetovitsme/truth-market-feed/internal/shared/config"
	httpServer "github.com/reshetovitsme/truth-market-feed/internal/transport/http"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Transport Adapter
	do.Provide(injector, func(i do.Injector) (*proxyTransport.Adapter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return proxyTransport.New(cfg.ProbeTimeout()), nil
	})

	// Register Proxy Source
	do.Provide(injector, func(i do.Injector) (*proxySource.ListSource, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return proxySource.New(cfg.ProxySources, cfg.AllowPlainHTTPProxies), nil
	})

	// Register Prober
	do.Provide(injector, func(i do.Injector) (*proxyProber.Prober, error) {
		cfg := do.MustInvoke[*config.Config](i)
		adapter := do.MustInvoke[*proxyTransport.Adapter](i)

		target := cfg.ProbeURL
		if target == "" {
			target = fetch.StatusesURL(cfg.TruthAccountID, 1)
		}
		return proxyProber.New(adapter, target, cfg.ProbeTimeout(), cfg.ProbeConcurrency, cfg.ExpectedCountry), nil
	})

	// Register Proxy Pool
	do.Provide(injector, func(i do.Injector) (*proxyPool.Pool, error) {
		cfg := do.MustInvoke[*config.Config](i)
		src := do.MustInvoke[*proxySource.ListSource](i)
		prb := do.MustInvoke[*proxyProber.Prober](i)
		return proxyPool.New(src, prb, cfg.ProxyTTL()), nil
	})

	// Register Fetcher
	do.Provide(injector, func(i do.Injector) (*fetch.Fetcher, error) {
		adapter := do.MustInvoke[*proxyTransport.Adapter](i)
		return fetch.NewFetcher(adapter), nil
	})

	// Register Orchestrator
	do.Provide(injector, func(i do.Injector) (*fetch.Orchestrator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		fetcher := do.MustInvoke[*fetch.Fetcher](i)
		pool := do.MustInvoke[*proxyPool.Pool](i)
		return fetch.NewOrchestrator(cfg, fetcher, pool), nil
	})

	// Register Alert Repository
	do.Provide(injector, func(i do.Injector) (alertRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := alertRepo.NewFileStorage(cfg.StoragePath, cfg.MaxAlerts)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize alert repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Alert Service
	do.Provide(injector, func(i do.Injector) (*alertService.Service, error) {
		repo := do.MustInvoke[alertRepo.Repository](i)
		return alertService.New(repo, alertService.DisabledAnalyzer{}), nil
	})

	// Register Monitor Service
	do.Provide(injector, func(i do.Injector) (*monitorService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		orchestrator := do.MustInvoke[*fetch.Orchestrator](i)
		alerts := do.MustInvoke[*alertService.Service](i)
		return monitorService.New(cfg, orchestrator, alerts), nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		alerts := do.MustInvoke[*alertService.Service](i)
		return feedService.New(alerts), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		alerts := do.MustInvoke[*alertService.Service](i)
		feeds := do.MustInvoke[*feedService.Service](i)
		monitor := do.MustInvoke[*monitorService.Service](i)
		server := httpServer.New(cfg, alerts, feeds, monitor)
		server.SetLogger(slog.Default())
		return server, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	if monitor, err := do.Invoke[*monitorService.Service](injector); err == nil && monitor != nil {
		monitor.Stop()
	}
	return nil
}

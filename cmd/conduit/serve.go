package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/conduitrun/conduit/internal/agentcore"
	"github.com/conduitrun/conduit/internal/compactor"
	"github.com/conduitrun/conduit/internal/gatewaycore"
	"github.com/conduitrun/conduit/internal/llm"
	"github.com/conduitrun/conduit/internal/outreach"
	"github.com/conduitrun/conduit/internal/registrycatalog"
	"github.com/conduitrun/conduit/internal/routerpool"
	"github.com/conduitrun/conduit/internal/runtimeconfig"
	"github.com/conduitrun/conduit/internal/skills"
	"github.com/conduitrun/conduit/internal/timer"
	"github.com/conduitrun/conduit/internal/toolreg"
)

func buildServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway: channel listeners, the scheduler, and the metrics/webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8090", "address for the metrics and webhook HTTP server")
	return cmd
}

// runServe wires every component and blocks until interrupted. It is the
// gateway's composition root: configuration in, a running process out.
func runServe(parentCtx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.Default().With("component", "serve")

	cfg, err := runtimeconfig.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	registry := toolreg.NewRegistry()

	search, fetch := newSearchTools(cfg, logger)

	var registryStore *registrycatalog.Store
	if cfg.EnableRegistry {
		// registrycatalog.NewStore appends "registry/catalog.json" itself,
		// so the configured catalog path's grandparent directory is its
		// data root.
		registryRoot := filepath.Dir(filepath.Dir(cfg.RegistryCatalogPath))
		registryStore, err = registrycatalog.NewStore(registryRoot, logger)
		if err != nil {
			return fmt.Errorf("open registry catalog: %w", err)
		}
	}

	var skillsManager *skills.Manager
	if cfg.EnableSkills {
		skillsManager = newSkillsManager(logger)
	}

	toolreg.BulkLoad(registry, toolFlags(cfg), builtinGroups(registryStore, search, fetch, skillsManager))

	promReg := prometheus.NewRegistry()
	metrics := agentcore.NewMetrics(promReg)

	summarizerProvider, err := buildProvider(ctx, cfg.Provider, cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.OllamaBaseURL)
	if err != nil {
		return fmt.Errorf("build summarizer provider: %w", err)
	}
	comp := compactor.New(llm.Summarizer{Provider: summarizerProvider}, compactor.Config{
		Threshold:  0.8,
		KeepRecent: 6,
		ModelName:  cfg.Model,
	})

	builder := &agentBuilder{cfg: cfg, registry: registry, comp: comp, metrics: metrics, logger: logger}

	strategy, rules, defaultName := cfg.EffectiveRouting()
	routerRules := make(routerpool.Rules, 0, len(rules))
	for _, rule := range rules {
		routerRules = append(routerRules, routerpool.Rule{Key: rule.Key, Name: rule.Name})
	}
	router, err := routerpool.New(routerpool.Strategy(strategy), routerRules, defaultName)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	pool := routerpool.NewPool(builder.routerPoolFactory, 0, logger)

	manager := gatewaycore.New(poolAdapter{pool}, routerAdapter{router}, defaultName, logger)
	registerChannels(manager, cfg, logger)

	timerStore := timer.NewStore(cfg.Outreach.DataRoot, logger)
	scheduler, err := timer.New(builder.schedulerFactory, timerStore,
		timer.WithLogger(logger),
		timer.WithDeliverer(delivererAdapter{manager}),
	)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	if cfg.Outreach.Enabled {
		outreachStore, err := outreach.NewStore(cfg.Outreach.DataRoot, logger)
		if err != nil {
			return fmt.Errorf("open outreach store: %w", err)
		}
		pipeline := outreach.NewPipeline(outreachStore, search, senderAdapter{manager, cfg.Outreach.Channel}, jobSchedulerAdapter{scheduler})
		pipeline.RegisterTools(registry)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	registerWebhookRoutes(mux, manager, logger)

	server := &http.Server{Addr: addr, Handler: mux}
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	if err := manager.StartLongLived(ctx); err != nil {
		return fmt.Errorf("start gateway channels: %w", err)
	}
	scheduler.Start(ctx)

	logger.Info("conduit gateway started")

	select {
	case <-ctx.Done():
	case err := <-serverErrors:
		logger.Error("http server failed", "error", err)
	}

	logger.Info("conduit gateway shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown error", "error", err)
	}
	return nil
}

// registerWebhookRoutes wires one /webhook/{tag} route for each of the fixed
// webhook-style tags (slack, whatsapp, matrix, mattermost, nostr), forwarding the raw body to the gateway's webhook dispatch
// path. Long-lived channels (Telegram, Discord) never receive traffic here;
// the route exists for any webhook-style channel a future implementation
// turns on.
func registerWebhookRoutes(mux *http.ServeMux, manager *gatewaycore.Manager, logger *slog.Logger) {
	for _, tag := range []string{"slack", "whatsapp", "matrix", "mattermost", "nostr"} {
		tag := tag
		mux.HandleFunc("/webhook/"+tag, func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			result := manager.ProcessInbound(r.Context(), tag, body)
			if result.Error != "" {
				logger.Warn("webhook dispatch failed", "channel", tag, "error", result.Error)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if result.WebhookResponse != nil {
				w.Write(result.WebhookResponse)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
	}
}

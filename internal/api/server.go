// Package api provides the varnorm REST API server.
package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/seqvarlab/varnorm/core/dataproxy"
	"github.com/seqvarlab/varnorm/core/seqstore"
	"github.com/seqvarlab/varnorm/core/translate"
	"github.com/seqvarlab/varnorm/internal/logging"
	"github.com/seqvarlab/varnorm/internal/server"
)

// Engine bundles the sequence proxy and translator used by the handlers.
type Engine struct {
	Proxy      dataproxy.SequenceDataProxy
	Translator *translate.Translator
}

// engine is the active translation engine. Set by Configure.
var engine *Engine

// Configure opens the configured sequence backend and builds the
// translation engine the handlers serve from. RefgetURL selects a
// remote refget service, DBPath a local SQLite database; otherwise
// the on-disk repository at RepoDir is used.
func Configure(cfg Config) error {
	var inner dataproxy.SequenceDataProxy
	switch {
	case cfg.RefgetURL != "":
		inner = dataproxy.NewRESTProxy(cfg.RefgetURL, nil)
	case cfg.DBPath != "":
		p, err := dataproxy.OpenSQLiteProxy(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open sequence database: %w", err)
		}
		inner = p
	default:
		if cfg.RepoDir == "" {
			return fmt.Errorf("sequence repository directory is required")
		}
		store, err := seqstore.New(cfg.RepoDir)
		if err != nil {
			return fmt.Errorf("open sequence repository: %w", err)
		}
		inner = dataproxy.NewStoreProxy(store)
	}

	cacheSize := cfg.CacheSize
	if cacheSize == 0 {
		cacheSize = dataproxy.DefaultCacheSize
	}
	proxy := dataproxy.NewCachingProxy(inner, cacheSize)

	var topts []translate.Option
	if cfg.AssemblyName != "" {
		topts = append(topts, translate.WithAssemblyName(cfg.AssemblyName))
	}

	ConfigureWithProxy(cfg, proxy, topts...)
	return nil
}

// ConfigureWithProxy installs an engine over an existing proxy. Used by
// Configure and by tests that stage sequences in memory.
func ConfigureWithProxy(cfg Config, proxy dataproxy.SequenceDataProxy, topts ...translate.Option) {
	ServerConfig = cfg
	engine = &Engine{
		Proxy:      proxy,
		Translator: translate.New(proxy, topts...),
	}
}

// Start starts the API server with the given configuration.
func Start(cfg Config) error {
	if err := Configure(cfg); err != nil {
		return err
	}

	// Validate authentication configuration
	if err := ValidateAuthConfig(cfg.Auth); err != nil {
		return fmt.Errorf("invalid auth config: %w", err)
	}

	// Validate TLS configuration if enabled
	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
		if _, err := os.Stat(cfg.TLS.CertFile); err != nil {
			return fmt.Errorf("TLS cert file not found: %w", err)
		}
		if _, err := os.Stat(cfg.TLS.KeyFile); err != nil {
			return fmt.Errorf("TLS key file not found: %w", err)
		}
	}

	// Initialize WebSocket hub
	GlobalHub = NewHub()
	go GlobalHub.Run()

	mux := setupRoutes()

	protocol := "http"
	if cfg.TLS.Enabled {
		protocol = "https"
		logging.Info("TLS enabled", "cert_file", cfg.TLS.CertFile)
	} else {
		logging.Warn("TLS disabled - using plain HTTP",
			"recommendation", "consider using TLS or reverse proxy for production")
	}
	switch {
	case cfg.RefgetURL != "":
		logging.ServerStartup("rest_api", protocol, cfg.Port, "refget_url", cfg.RefgetURL)
	case cfg.DBPath != "":
		logging.ServerStartup("rest_api", protocol, cfg.Port, "db_path", server.AbsPath(cfg.DBPath))
	default:
		logging.ServerStartup("rest_api", protocol, cfg.Port, "repo_dir", server.AbsPath(cfg.RepoDir))
	}

	// Build middleware chain with security headers
	var handler http.Handler = server.SecurityHeadersWithCSP(server.APICSPConfig(), mux)

	// Apply authentication middleware if configured
	if cfg.Auth.Enabled {
		handler = AuthMiddleware(cfg.Auth, handler)
		logging.Info("authentication enabled", "note", "API key required")
	}

	// Apply rate limiting if configured
	if cfg.RateLimitRequests > 0 {
		rateLimitConfig := RateLimiterConfig{
			RequestsPerMinute: cfg.RateLimitRequests,
			BurstSize:         cfg.RateLimitBurst,
		}
		if rateLimitConfig.BurstSize == 0 {
			rateLimitConfig.BurstSize = 10 // Default burst size
		}
		rateLimiter := NewRateLimiter(rateLimitConfig)
		handler = rateLimiter.Middleware(handler)
		logging.Info("rate limiting enabled",
			"requests_per_minute", rateLimitConfig.RequestsPerMinute,
			"burst_size", rateLimitConfig.BurstSize)
	}

	// Apply CORS middleware (outermost before logging)
	handler = server.CORSMiddlewareWithConfig(server.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
	}, handler)

	// Apply request ID and logging middleware
	handler = logging.CombinedMiddleware(handler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	if cfg.TLS.Enabled {
		return http.ListenAndServeTLS(addr, cfg.TLS.CertFile, cfg.TLS.KeyFile, handler)
	}
	return http.ListenAndServe(addr, handler)
}

// setupRoutes configures all HTTP routes.
func setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/v1/translate", handleTranslate)
	mux.HandleFunc("/v1/identify", handleIdentify)
	mux.HandleFunc("/v1/sequence/", handleSequence)
	mux.HandleFunc("/v1/ws/translate", handleWebSocket)

	return mux
}

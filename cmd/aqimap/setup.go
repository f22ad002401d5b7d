package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rendis/aqimap/internal/config"
	"github.com/rendis/aqimap/internal/engine/compositor"
	"github.com/rendis/aqimap/internal/engine/layer"
	"github.com/rendis/aqimap/internal/engine/source"
	"github.com/rendis/aqimap/internal/engine/storage"
	"github.com/rendis/aqimap/internal/logger"
	"github.com/rendis/aqimap/internal/metrics"
	"github.com/rendis/aqimap/internal/model"
)

// commonFlags are accepted by every subcommand and override config.Load.
type commonFlags struct {
	cache   string
	proxy   string
	seed    uint64
	offline bool
	metrics string
	logPath string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.cache, "cache", "", "Payload cache backend: sqlite, redis, none")
	fs.StringVar(&c.proxy, "proxy", "", "HTTP/SOCKS5 proxy URL")
	fs.Uint64Var(&c.seed, "seed", 0, "Seed for synthetic AQI (0 = random)")
	fs.BoolVar(&c.offline, "offline", false, "Skip remote providers (cache, then demo data)")
	fs.StringVar(&c.metrics, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.StringVar(&c.logPath, "log", "", "Log file path")
}

func (c *commonFlags) apply(cfg *config.Config) {
	if c.cache != "" {
		cfg.Cache.Backend = strings.ToLower(c.cache)
	}
	if c.proxy != "" {
		cfg.HTTP.ProxyURL = c.proxy
	}
	if c.seed != 0 {
		seed := c.seed
		cfg.Seed = &seed
	}
	if c.metrics != "" {
		cfg.MetricsAddr = c.metrics
	}
	if c.logPath != "" {
		cfg.Logging.Path = c.logPath
	}
}

type environment struct {
	cache  storage.Cache
	layers *layer.Set
	srv    *http.Server
	logger *zap.Logger
}

// setup wires cache, source and layers around comp.
func setup(cfg *config.Config, opts commonFlags, comp *compositor.Compositor, logger *zap.Logger) (*environment, error) {
	env := &environment{logger: logger}

	cache, err := storage.Open(cfg.Cache.Backend, cfg.Cache.Path, cfg.Cache.RedisAddr, cfg.Cache.RedisDB, cfg.Cache.TTL)
	if err != nil {
		// The cache is only a fallback tier; run without it.
		logger.Warn("CACHE_UNAVAILABLE", zap.String("backend", cfg.Cache.Backend), zap.Error(err))
		cache = nil
	}
	env.cache = cache

	src := source.New(source.NewClient(cfg.HTTP.ProxyURL, cfg.HTTP.Timeout), cache, logger)
	deps := layer.Deps{Source: src, Compositor: comp, Logger: logger, Seed: cfg.Seed}

	provinces := layer.Provinces().WithProviderURLs(cfg.Providers.Province)
	states := layer.States().WithProviderURLs(cfg.Providers.State)
	if opts.offline {
		provinces.Providers = nil
		states.Providers = nil
	}
	env.layers = layer.NewSet(layer.New(provinces, deps), layer.New(states, deps))

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		env.srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := env.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("METRICS_SERVER", zap.Error(err))
			}
		}()
		logger.Info("METRICS_LISTEN", zap.String("addr", cfg.MetricsAddr))
	}

	return env, nil
}

func (e *environment) Close() {
	if e.srv != nil {
		_ = e.srv.Close()
	}
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			e.logger.Warn("CACHE_CLOSE", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}

func parseKinds(s string) ([]model.Kind, error) {
	var kinds []model.Kind
	for _, p := range strings.Split(s, ",") {
		switch k := model.Kind(strings.TrimSpace(strings.ToLower(p))); k {
		case model.KindProvince, model.KindState:
			kinds = append(kinds, k)
		case "":
		default:
			return nil, errors.New("unknown layer " + string(k) + " (province, state)")
		}
	}
	if len(kinds) == 0 {
		return nil, errors.New("no layers selected")
	}
	return kinds, nil
}

// sessionLogger opens the configured log file, or a timestamped session log
// in dir when none is configured.
func sessionLogger(cfg *config.Config, dir string) (*zap.Logger, string, func() error, error) {
	path := cfg.Logging.Path
	if path == "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, "", nil, fmt.Errorf("creating log dir: %w", err)
		}
		path = filepath.Join(dir, fmt.Sprintf("aqimap_%s.log", time.Now().Format("20060102_150405")))
	}
	log, closeLog, err := logger.NewFile(path, cfg.Logging.Level)
	if err != nil {
		return nil, "", nil, err
	}
	return log, path, closeLog, nil
}

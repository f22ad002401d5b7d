package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rendis/aqimap/internal/engine/geo"
	"github.com/rendis/aqimap/internal/engine/storage"
	"github.com/rendis/aqimap/internal/metrics"
	"github.com/rendis/aqimap/internal/model"
)

const (
	cacheProvider     = "cache"
	syntheticProvider = "synthetic"
)

// ErrNoFeatures marks a payload that parsed but left nothing after validation.
var ErrNoFeatures = errors.New("no features survived validation")

// ErrUnknownKind marks a fetch for a kind that was never registered.
var ErrUnknownKind = errors.New("kind not registered")

// Provider is one remote boundary dataset.
type Provider struct {
	Name string
	URL  string
}

// ProviderError records why one tier of the fallback chain was skipped.
type ProviderError struct {
	Kind       model.Kind
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider %s: status %d", e.Kind, e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s provider %s: %v", e.Kind, e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Chain is the per-kind acquisition recipe.
type Chain struct {
	Providers []Provider
	Validator *geo.Validator
	Demo      []DemoRegion
}

// Result is the outcome of one acquisition. Features are validated but not
// yet AQI-classified.
type Result struct {
	Kind     model.Kind
	Features []model.Feature
	Origin   model.Origin
	Provider string
	Report   geo.Report
	Failures []*ProviderError
}

// Source fetches boundary collections for registered kinds.
type Source struct {
	client *Client
	cache  storage.Cache
	logger *zap.Logger

	mu     sync.RWMutex
	chains map[model.Kind]Chain
	group  singleflight.Group
}

// New builds a source. cache may be nil, which skips the cache tier.
func New(client *Client, cache storage.Cache, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		client: client,
		cache:  cache,
		logger: logger,
		chains: make(map[model.Kind]Chain),
	}
}

// Register sets the chain used for kind.
func (s *Source) Register(kind model.Kind, c Chain) {
	if c.Validator == nil {
		c.Validator = geo.NewValidator(kind, geo.ValidatorConfig{}, s.logger)
	}
	s.mu.Lock()
	s.chains[kind] = c
	s.mu.Unlock()
}

// Fetch walks the provider chain for kind and never fails: when every
// provider and the cache are unusable the synthetic dataset is returned.
// An unregistered kind has no chain and no synthetic dataset, so its result
// is empty, demo-origin and carries ErrUnknownKind in Failures.
// Concurrent calls for the same kind share one in-flight acquisition, which
// runs detached from any single caller's cancellation.
func (s *Source) Fetch(ctx context.Context, kind model.Kind) Result {
	detached := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(string(kind), func() (any, error) {
		return s.fetch(detached, kind), nil
	})
	res := v.(Result)
	res.Features = append([]model.Feature(nil), res.Features...)
	return res
}

func (s *Source) fetch(ctx context.Context, kind model.Kind) Result {
	s.mu.RLock()
	chain, ok := s.chains[kind]
	s.mu.RUnlock()
	if !ok {
		s.logger.Error("SOURCE_UNKNOWN_KIND", zap.String("kind", string(kind)))
		return Result{
			Kind:     kind,
			Features: DemoFeatures(kind, nil),
			Origin:   model.OriginDemo,
			Provider: syntheticProvider,
			Failures: []*ProviderError{{Kind: kind, Provider: syntheticProvider, Err: ErrUnknownKind}},
		}
	}

	res := Result{Kind: kind}

	for i, p := range chain.Providers {
		metrics.ProviderAttemptsTotal.WithLabelValues(string(kind), p.Name).Inc()

		body, err := s.client.Get(ctx, p.URL)
		if err != nil {
			s.fail(&res, p.Name, err)
			continue
		}

		features, rep, err := s.decode(chain, kind, p.Name, body)
		if err != nil {
			s.fail(&res, p.Name, err)
			continue
		}

		res.Features = features
		res.Report = rep
		res.Provider = p.Name
		res.Origin = model.OriginRemote
		if i > 0 {
			res.Origin = model.OriginFallback
		}
		s.store(ctx, kind, p.Name, body)
		s.logger.Info("SOURCE_OK",
			zap.String("kind", string(kind)),
			zap.String("provider", p.Name),
			zap.String("origin", string(res.Origin)),
			zap.Int("features", len(features)))
		return res
	}

	if s.cache != nil {
		if r, ok := s.fromCache(ctx, chain, kind, &res); ok {
			return r
		}
	}

	res.Features, res.Report = s.demo(chain, kind)
	res.Provider = syntheticProvider
	res.Origin = model.OriginDemo
	s.logger.Warn("SOURCE_SYNTHETIC",
		zap.String("kind", string(kind)),
		zap.Int("failed_providers", len(res.Failures)),
		zap.Int("features", len(res.Features)))
	return res
}

// decode parses and validates one payload. Zero survivors is a provider
// failure, never an empty layer.
func (s *Source) decode(chain Chain, kind model.Kind, provider string, body []byte) ([]model.Feature, geo.Report, error) {
	raw, err := geo.ParseCollection(body, kind)
	if err != nil {
		return nil, geo.Report{}, err
	}
	features, rep := chain.Validator.Validate(provider, raw)
	if rep.Rejected() > 0 {
		metrics.RejectedFeaturesTotal.WithLabelValues(string(kind)).Add(float64(rep.Rejected()))
	}
	if len(features) == 0 {
		return nil, rep, fmt.Errorf("%w (%d in payload)", ErrNoFeatures, rep.Input)
	}
	return features, rep, nil
}

func (s *Source) fail(res *Result, provider string, err error) {
	pe := &ProviderError{Kind: res.Kind, Provider: provider, Err: err}
	var se *StatusError
	if errors.As(err, &se) {
		pe.StatusCode = se.StatusCode
	}
	res.Failures = append(res.Failures, pe)
	metrics.ProviderFailuresTotal.WithLabelValues(string(res.Kind), provider).Inc()
	s.logger.Warn("PROVIDER_FAIL",
		zap.String("kind", string(res.Kind)),
		zap.String("provider", provider),
		zap.Int("status", pe.StatusCode),
		zap.Error(err))
}

func (s *Source) store(ctx context.Context, kind model.Kind, provider string, body []byte) {
	if s.cache == nil {
		return
	}
	err := s.cache.Put(ctx, storage.Entry{Kind: kind, Provider: provider, Payload: body})
	if err != nil {
		s.logger.Warn("CACHE_PUT_FAIL", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (s *Source) fromCache(ctx context.Context, chain Chain, kind model.Kind, res *Result) (Result, bool) {
	entry, err := s.cache.Get(ctx, kind)
	if err != nil {
		metrics.CacheMissesTotal.WithLabelValues(string(kind)).Inc()
		if !errors.Is(err, storage.ErrMiss) {
			s.fail(res, cacheProvider, err)
		}
		return Result{}, false
	}
	metrics.CacheHitsTotal.WithLabelValues(string(kind)).Inc()

	name := cacheProvider + ":" + entry.Provider
	features, rep, err := s.decode(chain, kind, name, entry.Payload)
	if err != nil {
		s.fail(res, name, err)
		return Result{}, false
	}

	out := *res
	out.Features = features
	out.Report = rep
	out.Provider = name
	out.Origin = model.OriginFallback
	s.logger.Info("SOURCE_CACHE",
		zap.String("kind", string(kind)),
		zap.String("provider", entry.Provider),
		zap.Time("fetched_at", entry.FetchedAt),
		zap.Int("features", len(features)))
	return out, true
}

func (s *Source) demo(chain Chain, kind model.Kind) ([]model.Feature, geo.Report) {
	raw := DemoFeatures(kind, chain.Demo)
	features, rep := chain.Validator.Validate(syntheticProvider, raw)
	if len(features) == 0 {
		// The validator is misconfigured for its own demo set; show it anyway.
		s.logger.Error("SYNTHETIC_REJECTED", zap.String("kind", string(kind)), zap.Int("input", len(raw)))
		return raw, rep
	}
	return features, rep
}

package layer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rendis/aqimap/internal/engine/aqi"
	"github.com/rendis/aqimap/internal/engine/compositor"
	"github.com/rendis/aqimap/internal/engine/geo"
	"github.com/rendis/aqimap/internal/engine/source"
	"github.com/rendis/aqimap/internal/metrics"
	"github.com/rendis/aqimap/internal/model"
)

// Deps are the collaborators shared by every layer of a host.
type Deps struct {
	Source     *source.Source
	Compositor *compositor.Compositor
	Logger     *zap.Logger
	// Seed makes synthetic AQI draws reproducible. nil keeps them random.
	Seed *uint64
}

// Layer is one independently toggleable set of region features. All methods
// are safe for concurrent use and none of them report errors to the caller:
// failures are logged and the layer degrades to fallback or demo data.
type Layer struct {
	profile   Profile
	src       *source.Source
	comp      *compositor.Compositor
	gen       *aqi.Generator
	overrides aqi.Overrides
	logger    *zap.Logger

	loads     singleflight.Group
	configErr sync.Once

	mu       sync.Mutex
	state    model.LoadState
	enabled  bool
	features []model.Feature
	origin   model.Origin
	loadID   string
	loadedAt time.Time
}

// New builds a layer from p and registers its acquisition chain with the
// source and its discriminator with the compositor.
func New(p Profile, d Deps) *Layer {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("kind", string(p.Kind)))

	l := &Layer{
		profile:   p,
		src:       d.Source,
		comp:      d.Compositor,
		gen:       aqi.NewGenerator(p.SyntheticRanges, d.Seed),
		overrides: aqi.NewOverrides(p.Overrides),
		logger:    logger,
	}

	if l.src != nil {
		l.src.Register(p.Kind, source.Chain{
			Providers: p.Providers,
			Validator: geo.NewValidator(p.Kind, p.ValidatorConfig(), logger),
			Demo:      p.Demo,
		})
	}
	if l.comp != nil {
		l.comp.Register(p.Kind, p.Title)
	}
	return l
}

func (l *Layer) Kind() model.Kind {
	return l.profile.Kind
}

func (l *Layer) Title() string {
	return l.profile.Title
}

const loadKey = "load"

// Initialize loads the layer unless it is already Ready. Concurrent calls
// attach to the same in-flight load. The load itself is not tied to ctx;
// a cancelled ctx only stops this caller from waiting.
func (l *Layer) Initialize(ctx context.Context) {
	detached := context.WithoutCancel(ctx)
	for {
		l.mu.Lock()
		if l.state == model.Ready {
			l.mu.Unlock()
			return
		}
		l.state = model.Loading
		l.mu.Unlock()

		ch := l.loads.DoChan(loadKey, func() (any, error) {
			// A caller that saw Loading may arrive after that load finished.
			l.mu.Lock()
			ready := l.state == model.Ready
			l.mu.Unlock()
			if !ready {
				l.load(detached)
			}
			return nil, nil
		})
		// The joined call may have finished before a reset cleared the
		// layer, so the state is checked again on the next pass.
		select {
		case <-ch:
		case <-ctx.Done():
			l.logger.Info("LAYER_WAIT_CANCELLED", zap.Error(ctx.Err()))
			return
		}
	}
}

func (l *Layer) load(ctx context.Context) {
	start := time.Now()
	if l.src == nil {
		l.logger.Error("CONFIG_ERROR", zap.String("reason", "no geometry source"))
	}

	var res source.Result
	if l.src != nil {
		res = l.src.Fetch(ctx, l.profile.Kind)
	} else {
		res = source.Result{
			Kind:     l.profile.Kind,
			Features: source.DemoFeatures(l.profile.Kind, l.profile.Demo),
			Origin:   model.OriginDemo,
		}
	}
	features := l.classify(res.Features)

	l.mu.Lock()
	l.features = features
	l.state = model.Ready
	l.origin = res.Origin
	l.loadID = uuid.NewString()
	l.loadedAt = time.Now()
	loadID := l.loadID
	// Whoever enabled the layer may have stopped waiting, so the load
	// projects itself. A Disable during the load leaves enabled false.
	projected := l.enabled && l.comp.Ready()
	if projected {
		l.compositeLocked()
	}
	l.mu.Unlock()

	elapsed := time.Since(start)
	metrics.LoadsTotal.WithLabelValues(string(l.profile.Kind), string(res.Origin)).Inc()
	metrics.LoadDurationMs.WithLabelValues(string(l.profile.Kind)).Observe(float64(elapsed.Milliseconds()))
	l.logger.Info("LAYER_READY",
		zap.String("load_id", loadID),
		zap.String("origin", string(res.Origin)),
		zap.String("provider", res.Provider),
		zap.Int("features", len(features)),
		zap.Int("failed_providers", len(res.Failures)),
		zap.Bool("projected", projected),
		zap.Duration("elapsed", elapsed))
}

// classify fills missing AQI with synthetic draws, assigns bands and applies
// curated overrides.
func (l *Layer) classify(in []model.Feature) []model.Feature {
	out := make([]model.Feature, len(in))
	for i, f := range in {
		if f.AQI == nil && !l.profile.NoSyntheticAQI {
			f.AQI = model.Float(l.gen.Synthetic(f.Name))
		}
		aqi.ClassifyFeature(&f)
		l.overrides.Apply(&f)
		out[i] = f
	}
	return out
}

// Enable makes sure the layer is loaded and projects it onto the surface.
// A loaded layer is projected right away. Otherwise the load projects on
// completion, even when ctx ends first, unless Disable ran in between.
func (l *Layer) Enable(ctx context.Context) {
	if !l.surfaceConfigured() {
		return
	}

	l.mu.Lock()
	l.enabled = true
	if l.state == model.Ready {
		l.compositeLocked()
		count := len(l.features)
		l.mu.Unlock()
		l.logger.Info("LAYER_ENABLED", zap.Int("features", count))
		return
	}
	l.mu.Unlock()

	l.Initialize(ctx)

	st := l.Status()
	if st.Enabled && st.DataLoaded {
		l.logger.Info("LAYER_ENABLED", zap.Int("features", st.FeatureCount))
	}
}

// Disable removes the layer's records from the surface. Features stay in
// memory.
func (l *Layer) Disable() {
	if !l.surfaceConfigured() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = false
	if err := l.comp.Remove(l.profile.Kind); err != nil {
		l.logger.Error("COMPOSITE_FAIL", zap.String("op", "remove"), zap.Error(err))
		return
	}
	l.logger.Info("LAYER_DISABLED")
}

// Toggle enables a disabled layer and disables an enabled one.
func (l *Layer) Toggle(ctx context.Context) {
	l.mu.Lock()
	enabled := l.enabled
	l.mu.Unlock()

	if enabled {
		l.Disable()
		return
	}
	l.Enable(ctx)
}

// ForceReset disables the layer, drops its features and loads it again from
// scratch. The layer stays disabled afterwards.
func (l *Layer) ForceReset(ctx context.Context) {
	if !l.surfaceConfigured() {
		return
	}

	l.Disable()

	l.mu.Lock()
	l.features = nil
	l.state = model.Uninitialized
	l.origin = model.OriginNone
	l.loadID = ""
	l.loadedAt = time.Time{}
	l.mu.Unlock()
	l.logger.Info("LAYER_RESET")

	l.Initialize(ctx)
}

// Refresh re-projects an enabled layer so curated overrides are applied
// again. It does nothing for a disabled or unloaded layer.
func (l *Layer) Refresh() {
	if !l.surfaceConfigured() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.enabled && l.state == model.Ready {
		l.compositeLocked()
	}
}

// compositeLocked is one composite pass: overrides are applied again, then
// the features are projected. Caller holds l.mu.
func (l *Layer) compositeLocked() {
	for i := range l.features {
		l.overrides.Apply(&l.features[i])
	}
	if err := l.comp.Project(l.profile.Kind, l.features); err != nil {
		l.logger.Error("COMPOSITE_FAIL", zap.String("op", "project"), zap.Error(err))
	}
}

// surfaceConfigured reports the configuration error once per layer.
func (l *Layer) surfaceConfigured() bool {
	if l.comp.Ready() {
		return true
	}
	l.configErr.Do(func() {
		l.logger.Error("CONFIG_ERROR", zap.Error(compositor.ErrNoSurface))
	})
	return false
}

// Status is the operator view of the layer.
func (l *Layer) Status() model.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return model.Status{
		Kind:         l.profile.Kind,
		Enabled:      l.enabled,
		DataLoaded:   l.state == model.Ready,
		FeatureCount: len(l.features),
		State:        l.state,
		Origin:       l.origin,
		LoadID:       l.loadID,
		LoadedAt:     l.loadedAt,
	}
}

// Features returns a copy of the in-memory feature set.
func (l *Layer) Features() []model.Feature {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Feature(nil), l.features...)
}

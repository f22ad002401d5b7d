package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/rendis/aqimap/internal/engine/geo"
	"github.com/rendis/aqimap/internal/engine/storage"
	"github.com/rendis/aqimap/internal/metrics"
	"github.com/rendis/aqimap/internal/model"
)

var indiaBounds = orb.Bound{Min: orb.Point{68, 6}, Max: orb.Point{97.5, 37.5}}

var demoStates = []DemoRegion{
	{Name: "Delhi", Code: "DL", MinLon: 76.8, MinLat: 28.4, MaxLon: 77.4, MaxLat: 28.9, AQI: 285},
	{Name: "Kerala", Code: "KL", MinLon: 74.9, MinLat: 8.2, MaxLon: 77.4, MaxLat: 12.8, AQI: 38},
}

func polygonFeature(name string, ring orb.Ring) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{ring})
	f.Properties["name"] = name
	return f
}

func collection(t *testing.T, features ...*geojson.Feature) []byte {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("marshal collection: %v", err)
	}
	return data
}

// threeStates has one feature without polygon geometry.
func threeStates(t *testing.T) []byte {
	return collection(t,
		polygonFeature("Kerala", geo.Rect(75, 8, 77, 12)),
		geojson.NewFeature(orb.Point{80, 20}),
		polygonFeature("Goa", geo.Rect(73.7, 14.9, 74.3, 15.8)),
	)
}

func newTestSource(t *testing.T, cache storage.Cache, providers ...Provider) *Source {
	t.Helper()
	logger := zaptest.NewLogger(t)
	s := New(NewClientWith(&http.Client{Timeout: 5 * time.Second}), cache, logger)
	s.Register(model.KindState, Chain{
		Providers: providers,
		Validator: geo.NewValidator(model.KindState, geo.ValidatorConfig{Bounds: indiaBounds, MaxVertices: 1000}, logger),
		Demo:      demoStates,
	})
	return s
}

func TestFetchFallsBackToSecondProvider(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	payload := threeStates(t)
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(payload)
	}))
	defer good.Close()

	failuresBefore := testutil.ToFloat64(metrics.ProviderFailuresTotal.WithLabelValues("state", "primary"))

	s := newTestSource(t, nil,
		Provider{Name: "primary", URL: bad.URL},
		Provider{Name: "secondary", URL: good.URL},
	)
	res := s.Fetch(context.Background(), model.KindState)

	if res.Origin != model.OriginFallback || res.Provider != "secondary" {
		t.Errorf("origin=%s provider=%s, want fallback/secondary", res.Origin, res.Provider)
	}
	if len(res.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(res.Features))
	}
	if res.Report.Input != 3 || res.Report.MissingGeometry != 1 {
		t.Errorf("report = %+v", res.Report)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(res.Failures))
	}
	if pe := res.Failures[0]; pe.Provider != "primary" || pe.StatusCode != http.StatusInternalServerError {
		t.Errorf("failure = %+v", pe)
	}
	var se *StatusError
	if !errors.As(res.Failures[0], &se) {
		t.Error("provider failure does not unwrap to *StatusError")
	}

	after := testutil.ToFloat64(metrics.ProviderFailuresTotal.WithLabelValues("state", "primary"))
	if after-failuresBefore != 1 {
		t.Errorf("provider failures metric moved by %v, want 1", after-failuresBefore)
	}
}

func TestFetchFirstProviderIsRemote(t *testing.T) {
	payload := threeStates(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	s := newTestSource(t, nil, Provider{Name: "primary", URL: srv.URL})
	res := s.Fetch(context.Background(), model.KindState)
	if res.Origin != model.OriginRemote || len(res.Failures) != 0 {
		t.Errorf("origin=%s failures=%d", res.Origin, len(res.Failures))
	}
}

func TestFetchTreatsEmptyValidationAsFailure(t *testing.T) {
	// Every feature lies outside India's bounds.
	payload := collection(t, polygonFeature("Bavaria", geo.Rect(10, 47, 13, 50)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	s := newTestSource(t, nil, Provider{Name: "primary", URL: srv.URL})
	res := s.Fetch(context.Background(), model.KindState)

	if res.Origin != model.OriginDemo {
		t.Fatalf("origin = %s, want demo", res.Origin)
	}
	if len(res.Failures) != 1 || !errors.Is(res.Failures[0], ErrNoFeatures) {
		t.Errorf("failures = %v, want one ErrNoFeatures", res.Failures)
	}
}

func TestFetchUsesDemoWhenEverythingFails(t *testing.T) {
	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer html.Close()
	gone := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer gone.Close()

	s := newTestSource(t, nil,
		Provider{Name: "a", URL: html.URL},
		Provider{Name: "b", URL: gone.URL},
	)
	res := s.Fetch(context.Background(), model.KindState)

	if res.Origin != model.OriginDemo || res.Provider != "synthetic" {
		t.Errorf("origin=%s provider=%s", res.Origin, res.Provider)
	}
	if len(res.Features) != len(demoStates) {
		t.Fatalf("expected %d demo features, got %d", len(demoStates), len(res.Features))
	}
	if len(res.Failures) != 2 {
		t.Errorf("expected 2 failures, got %d", len(res.Failures))
	}
	if !errors.Is(res.Failures[0], geo.ErrBadPayload) {
		t.Errorf("html payload failure = %v, want ErrBadPayload", res.Failures[0])
	}
	if res.Failures[1].StatusCode != http.StatusNotFound {
		t.Errorf("second failure status = %d", res.Failures[1].StatusCode)
	}
	for _, f := range res.Features {
		if len(f.Ring) != 5 || f.AQI == nil {
			t.Errorf("demo feature %s: ring=%d aqi=%v", f.Name, len(f.Ring), f.AQI)
		}
	}
}

func TestFetchWithoutProvidersIsDemo(t *testing.T) {
	s := newTestSource(t, nil)
	res := s.Fetch(context.Background(), model.KindState)
	if res.Origin != model.OriginDemo || len(res.Features) == 0 {
		t.Errorf("origin=%s features=%d", res.Origin, len(res.Features))
	}
}

func TestFetchFallsBackToCache(t *testing.T) {
	cache, err := storage.NewStore(filepath.Join(t.TempDir(), "cache.db"), 0)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer cache.Close()

	payload := threeStates(t)
	var up atomic.Bool
	up.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(payload)
	}))
	defer srv.Close()

	s := newTestSource(t, cache, Provider{Name: "primary", URL: srv.URL})

	first := s.Fetch(context.Background(), model.KindState)
	if first.Origin != model.OriginRemote {
		t.Fatalf("first fetch origin = %s", first.Origin)
	}

	up.Store(false)
	second := s.Fetch(context.Background(), model.KindState)
	if second.Origin != model.OriginFallback || second.Provider != "cache:primary" {
		t.Errorf("origin=%s provider=%s, want fallback/cache:primary", second.Origin, second.Provider)
	}
	if len(second.Features) != len(first.Features) {
		t.Errorf("cached features = %d, want %d", len(second.Features), len(first.Features))
	}
}

func TestFetchSharesInFlightLoad(t *testing.T) {
	payload := threeStates(t)
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write(payload)
	}))
	defer srv.Close()

	s := newTestSource(t, nil, Provider{Name: "primary", URL: srv.URL})

	const callers = 5
	results := make([]Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Fetch(context.Background(), model.KindState)
		}(i)
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := hits.Load(); n != 1 {
		t.Errorf("provider hit %d times, want 1", n)
	}
	for i, r := range results {
		if r.Origin != model.OriginRemote || len(r.Features) != 2 {
			t.Errorf("caller %d: origin=%s features=%d", i, r.Origin, len(r.Features))
		}
	}
}

func TestFetchSurvivesCallerCancellation(t *testing.T) {
	payload := threeStates(t)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write(payload)
	}))
	defer srv.Close()

	s := newTestSource(t, nil, Provider{Name: "primary", URL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result, 1)
	go func() { done <- s.Fetch(ctx, model.KindState) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	close(release)

	res := <-done
	if res.Origin != model.OriginRemote {
		t.Errorf("origin = %s after caller cancellation, want remote", res.Origin)
	}
}

func TestFetchUnknownKindReportsFailure(t *testing.T) {
	s := newTestSource(t, nil)
	res := s.Fetch(context.Background(), model.KindProvince)

	if res.Origin != model.OriginDemo || len(res.Features) != 0 {
		t.Errorf("origin=%s features=%d", res.Origin, len(res.Features))
	}
	if len(res.Failures) != 1 || !errors.Is(res.Failures[0], ErrUnknownKind) {
		t.Errorf("failures = %v, want ErrUnknownKind", res.Failures)
	}
}

func TestDemoFeaturesAreDeterministic(t *testing.T) {
	a := DemoFeatures(model.KindState, demoStates)
	b := DemoFeatures(model.KindState, demoStates)
	for i := range a {
		if a[i].ID != b[i].ID || a[i].AQIValue() != b[i].AQIValue() || !a[i].Centroid.Equal(b[i].Centroid) {
			t.Errorf("demo feature %d differs between calls", i)
		}
	}
	if a[0].ID != "state:DL" || a[0].Kind != model.KindState {
		t.Errorf("first demo feature = %s/%s", a[0].ID, a[0].Kind)
	}
}

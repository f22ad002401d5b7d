package geo

import (
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/rendis/aqimap/internal/model"
)

// ValidatorConfig holds the per-kind acceptance rules.
type ValidatorConfig struct {
	// Bounds must contain each feature's first vertex. Zero disables the check.
	Bounds orb.Bound
	// MaxVertices rejects continental-scale or pathological rings.
	MaxVertices int
	// Excluded guards against a neighbouring dataset's regions leaking in.
	Excluded NameSet
}

// Report counts why features were dropped in one validation pass.
type Report struct {
	Kind            model.Kind
	Provider        string
	Input           int
	Kept            int
	MissingGeometry int
	Unnamed         int
	TooManyVertices int
	OutOfBounds     int
	Excluded        int
	Duplicate       int
}

func (r Report) Rejected() int {
	return r.Input - r.Kept
}

type Validator struct {
	kind   model.Kind
	cfg    ValidatorConfig
	logger *zap.Logger
}

func NewValidator(kind model.Kind, cfg ValidatorConfig, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{kind: kind, cfg: cfg, logger: logger}
}

func (v *Validator) Config() ValidatorConfig {
	return v.cfg
}

// Validate filters features and returns the survivors in input order. Names
// are unique within the result; the first occurrence wins.
func (v *Validator) Validate(provider string, features []model.Feature) ([]model.Feature, Report) {
	rep := Report{Kind: v.kind, Provider: provider, Input: len(features)}
	seen := make(map[string]struct{}, len(features))
	kept := make([]model.Feature, 0, len(features))

	for _, f := range features {
		switch {
		case len(f.Ring) == 0:
			rep.MissingGeometry++
			continue
		case f.Name == "":
			rep.Unnamed++
			continue
		case v.cfg.MaxVertices > 0 && len(f.Ring) > v.cfg.MaxVertices:
			rep.TooManyVertices++
			v.logger.Debug("VALIDATION_REJECT", zap.String("kind", string(v.kind)),
				zap.String("feature", f.Name), zap.String("reason", "vertices"), zap.Int("vertices", len(f.Ring)))
			continue
		case v.cfg.Bounds != (orb.Bound{}) && !v.cfg.Bounds.Contains(f.Ring[0]):
			rep.OutOfBounds++
			v.logger.Debug("VALIDATION_REJECT", zap.String("kind", string(v.kind)),
				zap.String("feature", f.Name), zap.String("reason", "bounds"))
			continue
		case v.cfg.Excluded.Contains(f.Name):
			rep.Excluded++
			v.logger.Debug("VALIDATION_REJECT", zap.String("kind", string(v.kind)),
				zap.String("feature", f.Name), zap.String("reason", "excluded"))
			continue
		}

		key := NormalizeName(f.Name)
		if _, dup := seen[key]; dup {
			rep.Duplicate++
			continue
		}
		seen[key] = struct{}{}

		f.Kind = v.kind
		if f.Centroid == (orb.Point{}) {
			f.Centroid = Centroid(f.Ring)
		}
		kept = append(kept, f)
	}
	rep.Kept = len(kept)

	if rep.Rejected() > 0 {
		v.logger.Info("VALIDATION",
			zap.String("kind", string(v.kind)),
			zap.String("provider", provider),
			zap.Int("input", rep.Input),
			zap.Int("kept", rep.Kept),
			zap.Int("rejected", rep.Rejected()),
			zap.Int("missing_geometry", rep.MissingGeometry),
			zap.Int("too_many_vertices", rep.TooManyVertices),
			zap.Int("out_of_bounds", rep.OutOfBounds),
			zap.Int("excluded", rep.Excluded),
			zap.Int("duplicate", rep.Duplicate),
		)
	}
	return kept, rep
}

package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"go.uber.org/zap/zaptest"

	"github.com/rendis/aqimap/internal/model"
)

var indiaBounds = orb.Bound{Min: orb.Point{68, 6}, Max: orb.Point{97.5, 37.5}}

func feature(name string, ring orb.Ring) model.Feature {
	return model.Feature{Name: name, Ring: ring}
}

func TestValidate(t *testing.T) {
	v := NewValidator(model.KindState, ValidatorConfig{
		Bounds:      indiaBounds,
		MaxVertices: 6,
		Excluded:    NewNameSet("Tibet"),
	}, zaptest.NewLogger(t))

	big := make(orb.Ring, 10)
	for i := range big {
		big[i] = orb.Point{80, 20}
	}

	in := []model.Feature{
		feature("Kerala", Rect(75, 8, 77, 12)),
		feature("Nowhere", nil),
		feature("", Rect(80, 20, 81, 21)),
		feature("Jagged", big),
		feature("Bavaria", Rect(10, 47, 13, 50)),
		feature("Tibet", Rect(85, 29, 95, 35)),
		feature("KERALA", Rect(75, 8, 76, 9)),
		feature("Goa", Rect(73.7, 14.9, 74.3, 15.8)),
	}

	kept, rep := v.Validate("geoboundaries", in)

	if len(kept) != 2 || kept[0].Name != "Kerala" || kept[1].Name != "Goa" {
		t.Fatalf("kept = %v", names(kept))
	}
	want := Report{
		Kind: model.KindState, Provider: "geoboundaries",
		Input: 8, Kept: 2,
		MissingGeometry: 1, Unnamed: 1, TooManyVertices: 1,
		OutOfBounds: 1, Excluded: 1, Duplicate: 1,
	}
	if rep != want {
		t.Errorf("report = %+v, want %+v", rep, want)
	}
	if rep.Rejected() != 6 {
		t.Errorf("Rejected = %d, want 6", rep.Rejected())
	}

	for _, f := range kept {
		if f.Kind != model.KindState {
			t.Errorf("%s: kind = %q", f.Name, f.Kind)
		}
		if f.Centroid == (orb.Point{}) {
			t.Errorf("%s: centroid not set", f.Name)
		}
	}
}

func TestValidateZeroConfigKeepsGeometry(t *testing.T) {
	v := NewValidator(model.KindProvince, ValidatorConfig{}, nil)
	kept, rep := v.Validate("any", []model.Feature{
		feature("Beijing", Rect(115.4, 39.4, 117.5, 41.1)),
		feature("Null Island", Rect(-1, -1, 1, 1)),
	})
	if len(kept) != 2 || rep.Rejected() != 0 {
		t.Errorf("kept %d, rejected %d", len(kept), rep.Rejected())
	}
}

func names(fs []model.Feature) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

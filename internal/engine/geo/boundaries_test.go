package geo

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/rendis/aqimap/internal/model"
)

const stateCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"st_nm": "Kerala", "state_code": "IN-KL", "aqi": 38},
      "geometry": {"type": "Polygon", "coordinates": [[[75,8],[77,8],[77,12],[75,12],[75,8]]]}
    },
    {
      "type": "Feature",
      "properties": {"shapeName": "Goa", "aqi": "61"},
      "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[73.9,15.5],[74.0,15.5],[74.0,15.6],[73.9,15.5]]],
        [[[73.7,14.9],[74.3,14.9],[74.3,15.8],[73.7,15.8],[73.7,14.9]]]
      ]}
    },
    {
      "type": "Feature",
      "properties": {"name": "Somewhere"},
      "geometry": {"type": "Point", "coordinates": [80, 20]}
    }
  ]
}`

func TestParseCollection(t *testing.T) {
	features, err := ParseCollection([]byte(stateCollection), model.KindState)
	if err != nil {
		t.Fatalf("ParseCollection failed: %v", err)
	}
	if len(features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(features))
	}

	kerala := features[0]
	if kerala.Name != "Kerala" || kerala.Code != "IN-KL" || kerala.ID != "state:IN-KL" {
		t.Errorf("kerala = %q %q %q", kerala.Name, kerala.Code, kerala.ID)
	}
	if kerala.AQIValue() != 38 {
		t.Errorf("kerala aqi = %v, want 38", kerala.AQIValue())
	}
	if len(kerala.Ring) != 5 || kerala.Kind != model.KindState {
		t.Errorf("kerala ring=%d kind=%s", len(kerala.Ring), kerala.Kind)
	}
	if !kerala.Centroid.Equal(orb.Point{76, 10}) {
		t.Errorf("kerala centroid = %v, want [76 10]", kerala.Centroid)
	}

	goa := features[1]
	if goa.ID != "state:goa" {
		t.Errorf("goa id = %q", goa.ID)
	}
	if !goa.HasAQI() || goa.AQIValue() != 61 {
		t.Errorf("goa aqi from string property = %v", goa.AQI)
	}
	if len(goa.Ring) != 5 || goa.Ring[0] != (orb.Point{73.7, 14.9}) {
		t.Errorf("goa should use the largest polygon's ring, got %v", goa.Ring)
	}

	if features[2].Ring != nil {
		t.Errorf("point geometry should leave no ring, got %v", features[2].Ring)
	}
	if features[2].HasAQI() {
		t.Error("feature without an aqi property has a value")
	}
}

func TestParseCollectionRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"html", "<html>busy</html>"},
		{"feature", `{"type":"Feature","properties":{},"geometry":null}`},
		{"truncated", `{"type":"FeatureCollection","features":[`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCollection([]byte(tt.data), model.KindProvince)
			if !errors.Is(err, ErrBadPayload) {
				t.Errorf("err = %v, want ErrBadPayload", err)
			}
		})
	}
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name string
		ring orb.Ring
		want orb.Point
	}{
		{"closed square", Rect(0, 0, 2, 2), orb.Point{1, 1}},
		{"open triangle", orb.Ring{{0, 0}, {3, 0}, {0, 3}}, orb.Point{1, 1}},
		{"single vertex", orb.Ring{{5, 6}}, orb.Point{5, 6}},
		{"empty", nil, orb.Point{}},
	}
	for _, tt := range tests {
		if got := Centroid(tt.ring); !got.Equal(tt.want) {
			t.Errorf("%s: Centroid = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Nagaland", "nagaland"},
		{"  NAGALAND ", "nagaland"},
		{"Nāgāland", "nagaland"},
		{"Jammu  and\tKashmir", "jammu and kashmir"},
		{"Xīnjiāng Uygur", "xinjiang uygur"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	set := NewNameSet("Tibet", "Aksai Chin")
	if !set.Contains("AKSAI  CHIN") || set.Contains("Kerala") || set.Len() != 2 {
		t.Errorf("NameSet lookup mismatch")
	}
}

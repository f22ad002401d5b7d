package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/paulmach/orb/geojson"

	"github.com/rendis/aqimap/internal/engine/aqi"
	"github.com/rendis/aqimap/internal/engine/source"
	"github.com/rendis/aqimap/internal/model"
)

func exportFixture() []model.Feature {
	features := source.DemoFeatures(model.KindState, []source.DemoRegion{
		{Name: "Delhi", Code: "IN-DL", MinLon: 76.8, MinLat: 28.4, MaxLon: 77.4, MaxLat: 28.9, AQI: 285},
		{Name: "Goa", Code: "IN-GA", MinLon: 73.7, MinLat: 14.9, MaxLon: 74.3, MaxLat: 15.8},
	})
	features[1].AQI = nil
	for i := range features {
		aqi.ClassifyFeature(&features[i])
	}
	return features
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFeatures(&buf, "csv", exportFixture()); err != nil {
		t.Fatalf("writeFeatures failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	delhi := rows[1]
	if delhi[1] != "Delhi" || delhi[4] != "285" || delhi[5] != "Unhealthy" || delhi[9] != "5" {
		t.Errorf("delhi row = %v", delhi)
	}
	if goa := rows[2]; goa[4] != "" || goa[5] != aqi.NoDataLabel {
		t.Errorf("goa row = %v", goa)
	}
}

func TestWriteGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFeatures(&buf, "geojson", exportFixture()); err != nil {
		t.Fatalf("writeFeatures failed: %v", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	if err != nil {
		t.Fatalf("output is not a feature collection: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	first := fc.Features[0]
	if first.Properties.MustString("name", "") != "Delhi" || first.Properties.MustFloat64("aqi", 0) != 285 {
		t.Errorf("properties = %v", first.Properties)
	}
	if first.Geometry.GeoJSONType() != "Polygon" {
		t.Errorf("geometry = %s", first.Geometry.GeoJSONType())
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw["type"] != "FeatureCollection" {
		t.Errorf("type = %v", raw["type"])
	}
}

func TestWriteFeaturesRejectsUnknownFormat(t *testing.T) {
	if err := writeFeatures(&bytes.Buffer{}, "kml", nil); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds(" Province , state")
	if err != nil || len(kinds) != 2 || kinds[0] != model.KindProvince || kinds[1] != model.KindState {
		t.Errorf("parseKinds = %v, %v", kinds, err)
	}
	if _, err := parseKinds("district"); err == nil {
		t.Error("unknown layer accepted")
	}
	if _, err := parseKinds(""); err == nil {
		t.Error("empty selection accepted")
	}
}

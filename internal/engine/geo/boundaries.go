package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/rendis/aqimap/internal/model"
)

// ErrBadPayload marks a provider payload that is not a usable GeoJSON
// FeatureCollection.
var ErrBadPayload = errors.New("malformed feature collection")

// Property keys tried in order. Providers disagree on naming: geoBoundaries
// uses shapeName/shapeISO, Natural Earth NAME_1/iso_3166_2, community
// datasets name/adcode or st_nm.
var (
	nameKeys = []string{"name", "NAME_1", "shapeName", "st_nm", "NAME", "name_en"}
	codeKeys = []string{"adcode", "shapeISO", "iso_3166_2", "ISO", "code", "state_code"}
	aqiKeys  = []string{"aqi", "AQI", "us_aqi"}
)

// ParseCollection decodes a GeoJSON FeatureCollection into features of the
// given kind. Features keep whatever geometry they had, including none; the
// Validator decides what survives.
func ParseCollection(data []byte, kind model.Kind) ([]model.Feature, error) {
	fc := &geojson.FeatureCollection{}
	if err := json.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: type %q", ErrBadPayload, fc.Type)
	}

	features := make([]model.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		feat := model.Feature{
			Kind: kind,
			Name: strings.TrimSpace(firstString(f.Properties, nameKeys)),
			Code: firstString(f.Properties, codeKeys),
			AQI:  firstFloat(f.Properties, aqiKeys),
			Ring: outerRing(f.Geometry),
		}
		feat.ID = featureID(kind, feat.Code, feat.Name, i)
		if len(feat.Ring) > 0 {
			feat.Centroid = Centroid(feat.Ring)
		}
		features = append(features, feat)
	}
	return features, nil
}

// outerRing picks the exterior ring of a Polygon, or of the largest polygon
// (by vertex count) of a MultiPolygon. Anything else yields nil.
func outerRing(g orb.Geometry) orb.Ring {
	switch g := g.(type) {
	case orb.Polygon:
		if len(g) > 0 {
			return g[0]
		}
	case orb.MultiPolygon:
		var best orb.Ring
		for _, p := range g {
			if len(p) > 0 && len(p[0]) > len(best) {
				best = p[0]
			}
		}
		return best
	}
	return nil
}

// Centroid is the arithmetic mean of the ring's vertices, with the closing
// vertex counted once. It is not the area centroid.
func Centroid(r orb.Ring) orb.Point {
	n := len(r)
	if n == 0 {
		return orb.Point{}
	}
	if n > 1 && r[0].Equal(r[n-1]) {
		n--
	}
	var sumLon, sumLat float64
	for _, p := range r[:n] {
		sumLon += p.Lon()
		sumLat += p.Lat()
	}
	return orb.Point{sumLon / float64(n), sumLat / float64(n)}
}

// Rect builds a closed rectangular ring. The synthetic datasets use it.
func Rect(minLon, minLat, maxLon, maxLat float64) orb.Ring {
	return orb.Ring{
		{minLon, minLat},
		{maxLon, minLat},
		{maxLon, maxLat},
		{minLon, maxLat},
		{minLon, minLat},
	}
}

func featureID(kind model.Kind, code, name string, idx int) string {
	switch {
	case code != "":
		return string(kind) + ":" + code
	case name != "":
		return string(kind) + ":" + NormalizeName(name)
	}
	return fmt.Sprintf("%s:#%d", kind, idx)
}

func firstString(props geojson.Properties, keys []string) string {
	for _, k := range keys {
		switch v := props[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func firstFloat(props geojson.Properties, keys []string) *float64 {
	for _, k := range keys {
		switch v := props[k].(type) {
		case float64:
			return model.Float(v)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return model.Float(f)
			}
		}
	}
	return nil
}

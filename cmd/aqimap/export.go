package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/rendis/aqimap/internal/config"
	"github.com/rendis/aqimap/internal/engine/aqi"
	"github.com/rendis/aqimap/internal/engine/compositor"
	"github.com/rendis/aqimap/internal/model"
)

func runExport(args []string) error {
	var opts commonFlags
	var kindStr, outputPath, format string

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	opts.register(fs)
	fs.StringVar(&kindStr, "layer", "province", "Layer to export: province, state")
	fs.StringVar(&outputPath, "output", "", "Output file path (default: aqimap_<layer>_<ts>.<format>)")
	fs.StringVar(&format, "format", "csv", "Export format: csv, geojson")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: aqimap export [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  aqimap export -layer state\n")
		fmt.Fprintf(os.Stderr, "  aqimap export -layer province -format geojson -output provinces.geojson\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	kinds, err := parseKinds(kindStr)
	if err != nil {
		return err
	}
	if len(kinds) != 1 {
		return fmt.Errorf("-layer takes exactly one layer")
	}
	kind := kinds[0]

	if format != "csv" && format != "geojson" {
		return fmt.Errorf("unsupported format: %s (csv, geojson)", format)
	}

	// Default output path
	if outputPath == "" {
		outputPath = fmt.Sprintf("aqimap_%s_%s.%s", kind, time.Now().Format("20060102_150405"), format)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts.apply(cfg)

	log, logPath, closeLog, err := sessionLogger(cfg, filepath.Dir(outputPath))
	if err != nil {
		return err
	}
	defer closeLog()
	log.Info("SESSION_START", zap.String("mode", "export"), zap.String("layer", string(kind)),
		zap.String("format", format), zap.String("output", outputPath))

	// Export needs data only; the compositor stays without a surface.
	env, err := setup(cfg, opts, compositor.New(nil, nil, log), log)
	if err != nil {
		return err
	}
	defer env.Close()

	l, _ := env.layers.Get(kind)
	l.Initialize(context.Background())
	features := l.Features()
	if len(features) == 0 {
		return fmt.Errorf("no %s features loaded", kind)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	if err := writeFeatures(f, format, features); err != nil {
		return fmt.Errorf("writing %s: %w", format, err)
	}

	st := l.Status()
	log.Info("EXPORT_DONE", zap.Int("features", len(features)), zap.String("origin", string(st.Origin)))
	fmt.Fprintf(os.Stderr, "Exported %d %s features (%s) to %s\n", len(features), kind, originText(string(st.Origin)), outputPath)
	fmt.Fprintf(os.Stderr, "Log: %s\n", logPath)
	return nil
}

func writeFeatures(w io.Writer, format string, features []model.Feature) error {
	switch format {
	case "csv":
		return writeCSV(w, features)
	case "geojson":
		return writeGeoJSON(w, features)
	}
	return fmt.Errorf("unsupported format: %s", format)
}

func writeCSV(w io.Writer, features []model.Feature) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{
		"id", "name", "code", "kind", "aqi", "band", "fill",
		"centroid_lat", "centroid_lng", "vertices", "overridden",
	})
	for _, f := range features {
		value := ""
		if f.HasAQI() {
			value = strconv.FormatFloat(f.AQIValue(), 'f', 0, 64)
		}
		cw.Write([]string{
			f.ID,
			f.Name,
			f.Code,
			string(f.Kind),
			value,
			f.Band.Label,
			aqi.Hex(f.Band.Fill),
			fmt.Sprintf("%.6f", f.Centroid.Lat()),
			fmt.Sprintf("%.6f", f.Centroid.Lon()),
			strconv.Itoa(len(f.Ring)),
			strconv.FormatBool(f.Overridden),
		})
	}
	cw.Flush()
	return cw.Error()
}

func writeGeoJSON(w io.Writer, features []model.Feature) error {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(orb.Polygon{f.Ring})
		gf.ID = f.ID
		gf.Properties["name"] = f.Name
		gf.Properties["code"] = f.Code
		gf.Properties["kind"] = string(f.Kind)
		if f.HasAQI() {
			gf.Properties["aqi"] = f.AQIValue()
		} else {
			gf.Properties["aqi"] = nil
		}
		gf.Properties["band"] = f.Band.Label
		gf.Properties["fill"] = aqi.Hex(f.Band.Fill)
		gf.Properties["stroke"] = aqi.Hex(f.Band.Stroke)
		gf.Properties["overridden"] = f.Overridden
		fc.Append(gf)
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

package layer

import (
	"github.com/paulmach/orb"

	"github.com/rendis/aqimap/internal/engine/aqi"
	"github.com/rendis/aqimap/internal/engine/source"
	"github.com/rendis/aqimap/internal/model"
)

// Provinces is the China provinces layer.
func Provinces() Profile {
	return Profile{
		Kind:  model.KindProvince,
		Title: "Province",
		Providers: []source.Provider{
			{Name: "geoboundaries", URL: "https://github.com/wmgeolab/geoBoundaries/raw/main/releaseData/gbOpen/CHN/ADM1/geoBoundaries-CHN-ADM1_simplified.geojson"},
			{Name: "geojson-map-china", URL: "https://raw.githubusercontent.com/longwosion/geojson-map-china/master/china.json"},
		},
		Bounds:          orb.Bound{Min: orb.Point{73, 18}, Max: orb.Point{135.5, 54}},
		MaxVertices:     8000,
		Excluded:        provinceExclusions,
		Overrides:       provinceOverrides,
		SyntheticRanges: provinceRanges,
		Demo:            provinceDemo,
	}
}

// States is the India states layer.
func States() Profile {
	return Profile{
		Kind:  model.KindState,
		Title: "State",
		Providers: []source.Provider{
			{Name: "geoboundaries", URL: "https://github.com/wmgeolab/geoBoundaries/raw/main/releaseData/gbOpen/IND/ADM1/geoBoundaries-IND-ADM1_simplified.geojson"},
			{Name: "geohacker-india", URL: "https://raw.githubusercontent.com/geohacker/india/master/state/india_telengana.geojson"},
		},
		Bounds:          orb.Bound{Min: orb.Point{68, 6}, Max: orb.Point{97.5, 37.5}},
		MaxVertices:     8000,
		Excluded:        stateExclusions,
		Overrides:       stateOverrides,
		SyntheticRanges: stateRanges,
		Demo:            stateDemo,
	}
}

// Regions of the neighbouring dataset that some province sources include.
var provinceExclusions = []string{
	"Arunachal Pradesh", "Jammu and Kashmir", "Ladakh", "Sikkim", "Himachal Pradesh",
}

var stateExclusions = []string{
	"Tibet", "Xizang", "Aksai Chin", "Xinjiang", "Xinjiang Uygur",
}

var provinceOverrides = map[string]float64{
	"Beijing": 168,
	"Hebei":   212,
}

var stateOverrides = map[string]float64{
	"Delhi":        312,
	"NCT of Delhi": 312,
}

var provinceRanges = map[string]aqi.Range{
	"Beijing":        {80, 180},
	"Tianjin":        {80, 170},
	"Hebei":          {100, 220},
	"Shanxi":         {90, 180},
	"Inner Mongolia": {50, 120},
	"Liaoning":       {60, 140},
	"Jilin":          {50, 120},
	"Heilongjiang":   {40, 110},
	"Shanghai":       {50, 120},
	"Jiangsu":        {70, 150},
	"Zhejiang":       {50, 120},
	"Anhui":          {70, 150},
	"Fujian":         {30, 80},
	"Jiangxi":        {50, 110},
	"Shandong":       {90, 190},
	"Henan":          {100, 210},
	"Hubei":          {70, 150},
	"Hunan":          {60, 130},
	"Guangdong":      {40, 100},
	"Guangxi":        {40, 100},
	"Hainan":         {20, 60},
	"Chongqing":      {60, 130},
	"Sichuan":        {60, 140},
	"Guizhou":        {40, 90},
	"Yunnan":         {25, 70},
	"Tibet":          {20, 60},
	"Shaanxi":        {80, 170},
	"Gansu":          {70, 160},
	"Qinghai":        {40, 100},
	"Ningxia":        {70, 150},
	"Xinjiang":       {80, 200},
	"Hong Kong":      {40, 100},
	"Macau":          {40, 90},
	"Taiwan":         {30, 80},
}

var stateRanges = map[string]aqi.Range{
	"Delhi":             {180, 350},
	"Uttar Pradesh":     {150, 300},
	"Haryana":           {150, 280},
	"Punjab":            {130, 260},
	"Bihar":             {150, 290},
	"Rajasthan":         {100, 200},
	"Madhya Pradesh":    {90, 180},
	"Gujarat":           {90, 180},
	"Maharashtra":       {80, 170},
	"West Bengal":       {100, 200},
	"Jharkhand":         {110, 210},
	"Chhattisgarh":      {90, 170},
	"Odisha":            {70, 150},
	"Telangana":         {70, 140},
	"Andhra Pradesh":    {60, 130},
	"Karnataka":         {50, 110},
	"Tamil Nadu":        {50, 110},
	"Kerala":            {30, 80},
	"Goa":               {30, 80},
	"Uttarakhand":       {60, 140},
	"Himachal Pradesh":  {40, 100},
	"Jammu and Kashmir": {50, 120},
	"Ladakh":            {20, 70},
	"Assam":             {60, 140},
	"Meghalaya":         {30, 80},
	"Manipur":           {30, 80},
	"Mizoram":           {20, 60},
	"Nagaland":          {30, 80},
	"Tripura":           {50, 120},
	"Arunachal Pradesh": {20, 60},
	"Sikkim":            {20, 60},
	"Chandigarh":        {120, 240},
	"Puducherry":        {40, 100},
}

var provinceDemo = []source.DemoRegion{
	{Name: "Beijing", Code: "CN-BJ", MinLon: 115.4, MinLat: 39.4, MaxLon: 117.5, MaxLat: 41.1, AQI: 142},
	{Name: "Shanghai", Code: "CN-SH", MinLon: 120.8, MinLat: 30.7, MaxLon: 122.0, MaxLat: 31.9, AQI: 88},
	{Name: "Guangdong", Code: "CN-GD", MinLon: 109.6, MinLat: 20.2, MaxLon: 117.3, MaxLat: 25.5, AQI: 62},
	{Name: "Sichuan", Code: "CN-SC", MinLon: 97.3, MinLat: 26.0, MaxLon: 108.5, MaxLat: 34.3, AQI: 95},
	{Name: "Hebei", Code: "CN-HE", MinLon: 113.4, MinLat: 36.0, MaxLon: 119.9, MaxLat: 42.6, AQI: 178},
	{Name: "Xinjiang", Code: "CN-XJ", MinLon: 73.5, MinLat: 34.3, MaxLon: 96.4, MaxLat: 49.2, AQI: 120},
	{Name: "Heilongjiang", Code: "CN-HL", MinLon: 121.1, MinLat: 43.4, MaxLon: 135.1, MaxLat: 53.6, AQI: 54},
	{Name: "Yunnan", Code: "CN-YN", MinLon: 97.5, MinLat: 21.1, MaxLon: 106.2, MaxLat: 29.2, AQI: 41},
}

var stateDemo = []source.DemoRegion{
	{Name: "Delhi", Code: "IN-DL", MinLon: 76.8, MinLat: 28.4, MaxLon: 77.4, MaxLat: 28.9, AQI: 285},
	{Name: "Maharashtra", Code: "IN-MH", MinLon: 72.6, MinLat: 15.6, MaxLon: 80.9, MaxLat: 22.0, AQI: 118},
	{Name: "Uttar Pradesh", Code: "IN-UP", MinLon: 77.0, MinLat: 23.8, MaxLon: 84.6, MaxLat: 30.4, AQI: 205},
	{Name: "Karnataka", Code: "IN-KA", MinLon: 74.0, MinLat: 11.5, MaxLon: 78.6, MaxLat: 18.5, AQI: 64},
	{Name: "West Bengal", Code: "IN-WB", MinLon: 85.8, MinLat: 21.5, MaxLon: 89.9, MaxLat: 27.2, AQI: 132},
	{Name: "Tamil Nadu", Code: "IN-TN", MinLon: 76.2, MinLat: 8.0, MaxLon: 80.3, MaxLat: 13.6, AQI: 58},
	{Name: "Rajasthan", Code: "IN-RJ", MinLon: 69.4, MinLat: 23.0, MaxLon: 78.3, MaxLat: 30.2, AQI: 156},
	{Name: "Kerala", Code: "IN-KL", MinLon: 74.8, MinLat: 8.2, MaxLon: 77.4, MaxLat: 12.8, AQI: 38},
}

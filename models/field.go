package models

// Hotspot is a circular area of the simulated survey field. Radius is in degrees.
type Hotspot struct {
	Latitude    float64 `yaml:"lat"`
	Longitude   float64 `yaml:"lon"`
	Radius      float64 `yaml:"radius"`
	Probability float64 `yaml:"probability"`
}

type FieldLayout struct {
	Landmines []Hotspot `yaml:"landmines"`
	Debris    []Hotspot `yaml:"debris"`
	SafeZones []Hotspot `yaml:"safe_zones"`
}

// Default survey area, used when no layout file is configured.
const (
	DEFAULT_FIELD_LATITUDE  = 34.0522
	DEFAULT_FIELD_LONGITUDE = -118.2437
)

func DefaultFieldLayout() FieldLayout {
	return FieldLayout{
		Landmines: []Hotspot{
			{Latitude: 34.0522, Longitude: -118.2437, Radius: 0.001, Probability: 0.7},
			{Latitude: 34.0530, Longitude: -118.2450, Radius: 0.0008, Probability: 0.6},
			{Latitude: 34.0515, Longitude: -118.2420, Radius: 0.0005, Probability: 0.8},
		},
		Debris: []Hotspot{
			{Latitude: 34.0525, Longitude: -118.2440, Radius: 0.002, Probability: 0.5},
			{Latitude: 34.0518, Longitude: -118.2435, Radius: 0.001, Probability: 0.4},
			{Latitude: 34.0528, Longitude: -118.2430, Radius: 0.001, Probability: 0.6},
		},
		SafeZones: []Hotspot{
			{Latitude: 34.0535, Longitude: -118.2455, Radius: 0.002, Probability: 0.9},
			{Latitude: 34.0510, Longitude: -118.2415, Radius: 0.001, Probability: 0.8},
		},
	}
}

package model

// LevelKind distinguishes support from resistance.
type LevelKind string

const (
	LevelSupport    LevelKind = "support"
	LevelResistance LevelKind = "resistance"
)

// Level is a support or resistance zone built from clustered swing points.
type Level struct {
	Price       float64   `json:"price"`
	Kind        LevelKind `json:"kind"`
	Touches     int       `json:"touches"`
	Strength    float64   `json:"strength"`
	Distance    float64   `json:"distance"`
	DistancePct float64   `json:"distance_pct"`
	Synthetic   bool      `json:"synthetic,omitempty"`
}

// VolumeNode is one price bin of a volume profile.
type VolumeNode struct {
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Mid    float64 `json:"mid"`
	Volume float64 `json:"volume"`
}

// VolumeProfile distributes traded volume across price.
type VolumeProfile struct {
	POC            float64      `json:"poc"`
	ValueAreaHigh  float64      `json:"value_area_high"`
	ValueAreaLow   float64      `json:"value_area_low"`
	TotalVolume    float64      `json:"total_volume"`
	Nodes          []VolumeNode `json:"nodes"`
	HighVolume     []VolumeNode `json:"hvn"`
	LowVolume      []VolumeNode `json:"lvn"`
	HVNSupports    []float64    `json:"hvn_supports"`
	HVNResistances []float64    `json:"hvn_resistances"`
	PriceInValue   bool         `json:"price_in_value_area"`
}

// PivotType selects the pivot formula family.
type PivotType string

const (
	PivotClassic   PivotType = "CLASSIC"
	PivotFibonacci PivotType = "FIBONACCI"
	PivotCamarilla PivotType = "CAMARILLA"
)

// PivotLevels holds one set of pivot levels. Camarilla fills R4/S4.
type PivotLevels struct {
	Type      PivotType `json:"pivot_type"`
	Pivot     float64   `json:"pivot"`
	R1        float64   `json:"r1"`
	R2        float64   `json:"r2"`
	R3        float64   `json:"r3"`
	R4        float64   `json:"r4,omitempty"`
	S1        float64   `json:"s1"`
	S2        float64   `json:"s2"`
	S3        float64   `json:"s3"`
	S4        float64   `json:"s4,omitempty"`
	Strongest []float64 `json:"strongest,omitempty"`
}

// PivotPoints groups every pivot family computed from the prior period.
type PivotPoints struct {
	Classic   PivotLevels `json:"classic"`
	Fibonacci PivotLevels `json:"fibonacci"`
	Camarilla PivotLevels `json:"camarilla"`
}

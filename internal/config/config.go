// Package config holds the run configuration: layer groups with their process
// parameters, output options and the dwell, roller and perturbation switches.
//
// Optional fields are pointers. The Get* methods return the configured value
// or the default, so partial configuration files are safe.
package config

import (
	"errors"

	"github.com/ampes-dev/ampes/internal/perturb"
	"github.com/ampes-dev/ampes/internal/roller"
)

// DefaultConfigName is the file looked up in the working directory when no
// configuration path is given.
const DefaultConfigName = "input.yaml"

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Section is the infill or contour part of a layer group. BaseSpeed is the
// speed the slicer wrote into the G-code; OutputSpeed is the speed used in
// the event series.
type Section struct {
	BaseSpeed   *float64 `json:"base_speed,omitempty"`
	OutputSpeed *float64 `json:"output_speed,omitempty"`
	Power       float64  `json:"power"`
}

// Speed returns the output speed, falling back to the base speed.
func (s Section) Speed() float64 {
	if s.OutputSpeed != nil {
		return *s.OutputSpeed
	}
	if s.BaseSpeed != nil {
		return *s.BaseSpeed
	}
	return 0
}

// LayerGroup is one named entry of layer_groups.
type LayerGroup struct {
	Name            string   `json:"-"`
	Layers          []int    `json:"layers,omitempty"`
	Infill          Section  `json:"infill"`
	Contour         Section  `json:"contour"`
	InterlayerDwell *float64 `json:"interlayer_dwell,omitempty"`
}

// GetInterlayerDwell returns the interlayer dwell or 0.
func (g LayerGroup) GetInterlayerDwell() float64 {
	if g.InterlayerDwell == nil {
		return 0
	}
	return *g.InterlayerDwell
}

// Config is the root configuration. LayerGroups keeps the order in which the
// groups were declared in the file.
type Config struct {
	LayerGroups []LayerGroup `json:"-"`

	Interval    *int     `json:"interval,omitempty"`
	LayerHeight *float64 `json:"layer_height,omitempty"`
	Substrate   *float64 `json:"substrate,omitempty"`
	XOrgShift   *float64 `json:"xorg_shift,omitempty"`
	YOrgShift   *float64 `json:"yorg_shift,omitempty"`
	ZOrgShift   *float64 `json:"zorg_shift,omitempty"`

	// Dwell and roller
	Dwell        *bool    `json:"dwell,omitempty"`
	Roller       *bool    `json:"roller,omitempty"`
	WDwell       *float64 `json:"w_dwell,omitempty"`
	HeatUpTime   *float64 `json:"heat_up_time,omitempty"`
	TimedJump    *bool    `json:"timed_jump,omitempty"`
	RollerAnchor *string  `json:"roller_anchor,omitempty"`

	TravelSpeed       *float64 `json:"travel_speed,omitempty"`
	StrictLayerRanges *bool    `json:"strict_layer_ranges,omitempty"`

	// Power fluctuation
	PowerFluctuation *bool    `json:"power_fluctuation,omitempty"`
	Deviation        *float64 `json:"deviation,omitempty"`
	Scheme           *string  `json:"scheme,omitempty"`
	Seed             *uint64  `json:"seed,omitempty"`

	// Output
	CommentEventSeries     *bool   `json:"comment_event_series,omitempty"`
	CommentString          *string `json:"comment_string,omitempty"`
	ProcessParamRequest    *bool   `json:"process_param_request,omitempty"`
	TimeSeries             *bool   `json:"time_series,omitempty"`
	TimeSeriesSamplePoints *int    `json:"time_series_sample_points,omitempty"`
	ESPrecision            *int    `json:"es_precision,omitempty"`
	TSPrecision            *int    `json:"ts_precision,omitempty"`
	ZPrecision             *int    `json:"z_precision,omitempty"`
}

func getFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func getBool(p *bool) bool {
	return p != nil && *p
}

func getInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// Grouped reports whether layer ranges are in effect: more than one group, or
// a single group that names its layers.
func (c *Config) Grouped() bool {
	return len(c.LayerGroups) > 1 || (len(c.LayerGroups) == 1 && len(c.LayerGroups[0].Layers) > 0)
}

func (c *Config) GetInterval() int           { return getInt(c.Interval, 0) }
func (c *Config) GetLayerHeight() float64    { return getFloat(c.LayerHeight, 0) }
func (c *Config) GetSubstrate() float64      { return getFloat(c.Substrate, 0) }
func (c *Config) GetXOrgShift() float64      { return getFloat(c.XOrgShift, 0) }
func (c *Config) GetYOrgShift() float64      { return getFloat(c.YOrgShift, 0) }
func (c *Config) GetZOrgShift() float64      { return getFloat(c.ZOrgShift, 0) }
func (c *Config) GetDwell() bool             { return getBool(c.Dwell) }
func (c *Config) GetRoller() bool            { return getBool(c.Roller) }
func (c *Config) GetWDwell() float64         { return getFloat(c.WDwell, 0) }
func (c *Config) GetHeatUpTime() float64     { return getFloat(c.HeatUpTime, 0) }
func (c *Config) GetTimedJump() bool         { return getBool(c.TimedJump) }
func (c *Config) GetTravelSpeed() float64    { return getFloat(c.TravelSpeed, 0) }
func (c *Config) GetStrictLayerRanges() bool { return getBool(c.StrictLayerRanges) }
func (c *Config) GetPowerFluctuation() bool  { return getBool(c.PowerFluctuation) }
func (c *Config) GetDeviation() float64      { return getFloat(c.Deviation, 0) }
func (c *Config) GetCommentEventSeries() bool {
	return getBool(c.CommentEventSeries)
}
func (c *Config) GetProcessParamRequest() bool { return getBool(c.ProcessParamRequest) }
func (c *Config) GetTimeSeries() bool          { return getBool(c.TimeSeries) }
func (c *Config) GetTimeSeriesSamplePoints() int {
	return getInt(c.TimeSeriesSamplePoints, 0)
}

// GetESPrecision returns the number of decimals for event series values.
func (c *Config) GetESPrecision() int { return getInt(c.ESPrecision, 6) }

// GetTSPrecision returns the number of decimals for time series output.
func (c *Config) GetTSPrecision() int { return getInt(c.TSPrecision, 2) }

// GetZPrecision returns the number of decimals for z coordinates.
func (c *Config) GetZPrecision() int { return getInt(c.ZPrecision, 3) }

// GetCommentString returns the prefix of section comment rows.
func (c *Config) GetCommentString() string {
	if c.CommentString == nil {
		return "**"
	}
	return *c.CommentString
}

// GetScheme returns the perturbation scheme. Unknown names are rejected by
// Validate, so they map to None here.
func (c *Config) GetScheme() perturb.Scheme {
	if c.Scheme == nil {
		return perturb.None
	}
	s, err := perturb.ParseScheme(*c.Scheme)
	if err != nil {
		return perturb.None
	}
	return s
}

// GetSeed returns the perturbation seed; 0 means time-based.
func (c *Config) GetSeed() uint64 {
	if c.Seed == nil {
		return 0
	}
	return *c.Seed
}

// GetRollerAnchor returns where the roller traverse sits relative to a jump.
func (c *Config) GetRollerAnchor() roller.AnchorMode {
	if c.RollerAnchor == nil {
		return roller.AnchorBefore
	}
	m, _ := roller.ParseAnchor(*c.RollerAnchor)
	return m
}

// InitialDelay is the time added before the first point: the heat-up time,
// plus one roller traverse when the roller and dwell are both enabled.
func (c *Config) InitialDelay() float64 {
	d := c.GetHeatUpTime()
	if c.GetRoller() && c.GetDwell() {
		d += c.GetWDwell()
	}
	return d
}

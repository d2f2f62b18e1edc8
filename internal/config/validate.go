package config

import (
	"fmt"

	"github.com/ampes-dev/ampes/internal/dwell"
	"github.com/ampes-dev/ampes/internal/layers"
	"github.com/ampes-dev/ampes/internal/perturb"
	"github.com/ampes-dev/ampes/internal/roller"
	"github.com/ampes-dev/ampes/internal/units"
)

// ErrRollerDwell is returned when the roller traverse does not fit in the
// interlayer dwell.
var ErrRollerDwell = dwell.ErrRollerDwell

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks the configuration for consistency. It runs before any
// G-code is read.
func (c *Config) Validate() error {
	if len(c.LayerGroups) == 0 {
		return invalid("layer_groups must contain at least one group")
	}
	if c.Interval == nil {
		return invalid("interval is required")
	}
	if *c.Interval < 0 {
		return invalid("interval must be non-negative, got %d", *c.Interval)
	}
	if c.LayerHeight == nil || *c.LayerHeight <= 0 {
		return invalid("layer_height must be positive")
	}
	if c.TravelSpeed != nil && *c.TravelSpeed < 0 {
		return invalid("travel_speed must be non-negative, got %g", *c.TravelSpeed)
	}
	if err := c.validateGroups(); err != nil {
		return err
	}

	if c.GetRoller() {
		if !c.GetDwell() {
			return invalid("dwell must be enabled if roller is enabled")
		}
		if c.WDwell == nil {
			return invalid("'w_dwell' is required if 'roller' is true")
		}
	}
	if c.GetDwell() {
		for _, g := range c.LayerGroups {
			if g.InterlayerDwell == nil {
				return invalid("layer group %q needs interlayer_dwell when dwell is enabled", g.Name)
			}
		}
	}
	if c.GetRoller() {
		r, err := c.Resolver()
		if err != nil {
			return err
		}
		if err := dwell.CheckRoller(r, c.GetWDwell()); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.RollerAnchor != nil {
		if _, ok := roller.ParseAnchor(*c.RollerAnchor); !ok {
			return invalid("roller_anchor must be 'before' or 'after', got %q", *c.RollerAnchor)
		}
	}

	if c.GetPowerFluctuation() {
		if c.Deviation == nil || c.Scheme == nil {
			return invalid("'deviation' and 'scheme' are required if 'power_fluctuation' is true")
		}
		if *c.Deviation < 0 {
			return invalid("deviation must be non-negative, got %g", *c.Deviation)
		}
	}
	if c.Scheme != nil {
		if _, err := perturb.ParseScheme(*c.Scheme); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.GetTimeSeries() && c.TimeSeriesSamplePoints == nil {
		return invalid("'time_series_sample_points' is required if 'time_series' is true")
	}
	if c.GetTimeSeriesSamplePoints() < 0 {
		return invalid("time_series_sample_points must be non-negative")
	}
	if c.GetCommentEventSeries() && c.CommentString == nil {
		return invalid("'comment_string' is required if 'comment_event_series' is true")
	}
	for name, p := range map[string]*int{"es_precision": c.ESPrecision, "ts_precision": c.TSPrecision, "z_precision": c.ZPrecision} {
		if p != nil && (*p < 0 || *p > 15) {
			return invalid("%s must be between 0 and 15, got %d", name, *p)
		}
	}
	return nil
}

func (c *Config) validateGroups() error {
	first := c.LayerGroups[0]
	if first.Infill.BaseSpeed == nil || first.Contour.BaseSpeed == nil {
		return invalid("the first layer group's sections must contain a 'base_speed' set to the speed used in the g-code")
	}
	if *first.Infill.BaseSpeed <= 0 || *first.Contour.BaseSpeed <= 0 {
		return invalid("base_speed must be positive")
	}
	if !c.Grouped() {
		return nil
	}
	for i, g := range c.LayerGroups {
		if len(g.Layers) != 2 {
			return invalid("layer group %q must give 'layers' as [first, last]", g.Name)
		}
		if i > 0 && (g.Infill.OutputSpeed == nil || g.Contour.OutputSpeed == nil) {
			return invalid("layer group %q: infill and contour after the first group must contain an 'output_speed'", g.Name)
		}
	}
	if _, err := c.Resolver(); err != nil {
		return err
	}
	return nil
}

// InfillFeed is the G-code feed rate (mm/min) that marks infill moves.
func (c *Config) InfillFeed() float64 {
	return units.SpeedToFeed(*c.LayerGroups[0].Infill.BaseSpeed)
}

// ContourFeed is the G-code feed rate (mm/min) that marks contour moves.
func (c *Config) ContourFeed() float64 {
	return units.SpeedToFeed(*c.LayerGroups[0].Contour.BaseSpeed)
}

// Resolver builds the layer group resolver.
func (c *Config) Resolver() (*layers.Resolver, error) {
	if len(c.LayerGroups) == 0 {
		return nil, invalid("no layer groups")
	}
	groups := make([]layers.Group, len(c.LayerGroups))
	for i, g := range c.LayerGroups {
		groups[i] = layers.Group{
			Name:            g.Name,
			Infill:          layers.Section{Speed: g.Infill.Speed(), Power: g.Infill.Power},
			Contour:         layers.Section{Speed: g.Contour.Speed(), Power: g.Contour.Power},
			InterlayerDwell: g.GetInterlayerDwell(),
		}
		if len(g.Layers) == 2 {
			groups[i].Range = layers.Range{First: g.Layers[0], Last: g.Layers[1]}
		}
	}
	if !c.Grouped() {
		return layers.NewSingle(groups[0]), nil
	}
	r, err := layers.NewGrouped(groups)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return r, nil
}

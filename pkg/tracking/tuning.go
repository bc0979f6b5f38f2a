package tracking

// TuningParams holds the real-time adjustable smoothing parameters.
// These can be modified via the dashboard API without restarting.
type TuningParams struct {
	SmoothingFactor float64 `json:"smoothing_factor"` // EMA alpha (0.1=smooth, 0.4=responsive)
	DeadZoneRadius  float64 `json:"dead_zone_radius"` // Fraction of screen
	MaxVelocity     float64 `json:"max_velocity"`     // px/frame
	Sensitivity     float64 `json:"sensitivity"`      // Displacement multiplier
}

// TuningFromConfig extracts the adjustable subset of a config.
func TuningFromConfig(cfg Config) TuningParams {
	return TuningParams{
		SmoothingFactor: cfg.SmoothingFactor,
		DeadZoneRadius:  cfg.DeadZoneRadius,
		MaxVelocity:     cfg.MaxVelocity,
		Sensitivity:     cfg.Sensitivity,
	}
}

// TuningUpdate is a partial change to the tuning parameters.
// Absent (nil) fields are kept, so zero is a settable value.
type TuningUpdate struct {
	SmoothingFactor *float64 `json:"smoothing_factor,omitempty"`
	DeadZoneRadius  *float64 `json:"dead_zone_radius,omitempty"`
	MaxVelocity     *float64 `json:"max_velocity,omitempty"`
	Sensitivity     *float64 `json:"sensitivity,omitempty"`
}

// Update returns a TuningUpdate that sets every field of p.
func (p TuningParams) Update() TuningUpdate {
	return TuningUpdate{
		SmoothingFactor: &p.SmoothingFactor,
		DeadZoneRadius:  &p.DeadZoneRadius,
		MaxVelocity:     &p.MaxVelocity,
		Sensitivity:     &p.Sensitivity,
	}
}

// Apply returns cfg with the present fields applied, clamped to their
// valid ranges. MaxVelocity is not clamped; Validate rejects non-positive
// values.
func (u TuningUpdate) Apply(cfg Config) Config {
	if u.SmoothingFactor != nil {
		cfg.SmoothingFactor = clamp(*u.SmoothingFactor, 0.0, 1.0)
	}
	if u.DeadZoneRadius != nil {
		cfg.DeadZoneRadius = clamp(*u.DeadZoneRadius, 0.0, 0.1)
	}
	if u.MaxVelocity != nil {
		cfg.MaxVelocity = *u.MaxVelocity
	}
	if u.Sensitivity != nil {
		cfg.Sensitivity = clamp(*u.Sensitivity, 0.1, 5.0)
	}
	return cfg
}

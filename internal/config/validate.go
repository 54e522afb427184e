package config

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/Faultbox/strider/internal/engine/lighting"
)

var (
	gaitStates  = []string{"EVEN", "ODD", "ALL", "NONE"}
	projections = []string{"perspective", "orthographic"}
	lightTypes  = []string{"point", "directional"}
	logLevels   = []string{"debug", "info", "warn", "error"}
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window: size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.Samples < 0 {
		err = multierr.Append(err, fmt.Errorf("window: samples %d must not be negative", c.Window.Samples))
	}
	if c.Engine.MaxFrameTime < 0 {
		err = multierr.Append(err, fmt.Errorf("engine: max_frame_time %v must not be negative", c.Engine.MaxFrameTime))
	}
	err = multierr.Append(err, c.validateCameras())
	err = multierr.Append(err, c.Robot.validate())

	if !slices.Contains(gaitStates, c.Gait.Initial) {
		err = multierr.Append(err, fmt.Errorf("gait: unknown initial state %q", c.Gait.Initial))
	}
	if c.Gait.MinSwitchTime < 0 {
		err = multierr.Append(err, fmt.Errorf("gait: min_switch_time %v must not be negative", c.Gait.MinSwitchTime))
	}
	if c.Environment.PlatformRadius <= 0 {
		err = multierr.Append(err, fmt.Errorf("environment: platform_radius %v must be positive", c.Environment.PlatformRadius))
	}
	if c.Environment.Stars < 0 {
		err = multierr.Append(err, fmt.Errorf("environment: stars %d must not be negative", c.Environment.Stars))
	}
	if c.Environment.DysonSpheres < 0 {
		err = multierr.Append(err, fmt.Errorf("environment: dyson_spheres %d must not be negative", c.Environment.DysonSpheres))
	}
	err = multierr.Append(err, c.validateLights())

	for name, m := range c.Materials {
		for _, v := range m.Color {
			if v < 0 || v > 1 {
				err = multierr.Append(err, fmt.Errorf("materials: %s colour %v outside [0, 1]", name, m.Color))
				break
			}
		}
	}

	if !slices.Contains(logLevels, c.Logging.Level) {
		err = multierr.Append(err, fmt.Errorf("logging: unknown level %q", c.Logging.Level))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		err = multierr.Append(err, fmt.Errorf("metrics: addr required when enabled"))
	}
	return err
}

func (c *Config) validateCameras() error {
	var err error
	ids := map[string]bool{"main": true}
	for _, cam := range c.Cameras {
		switch {
		case cam.ID == "":
			err = multierr.Append(err, fmt.Errorf("cameras: missing id"))
			continue
		case ids[cam.ID]:
			err = multierr.Append(err, fmt.Errorf("cameras: duplicate id %q", cam.ID))
			continue
		}
		ids[cam.ID] = true

		if !slices.Contains(projections, cam.Projection) {
			err = multierr.Append(err, fmt.Errorf("cameras: %s: unknown projection %q", cam.ID, cam.Projection))
		}
		if cam.Near <= 0 || cam.Far <= cam.Near {
			err = multierr.Append(err, fmt.Errorf("cameras: %s: need 0 < near < far, got %v, %v", cam.ID, cam.Near, cam.Far))
		}
		if cam.Projection == "orthographic" && cam.Extent <= 0 {
			err = multierr.Append(err, fmt.Errorf("cameras: %s: extent must be positive", cam.ID))
		}
		if cam.Projection == "perspective" && (cam.FOV <= 0 || cam.FOV >= 180) {
			err = multierr.Append(err, fmt.Errorf("cameras: %s: fov %v outside (0, 180)", cam.ID, cam.FOV))
		}
		if vp := cam.Viewport; vp[2] <= 0 || vp[3] <= 0 || vp[0] < 0 || vp[1] < 0 || vp[0]+vp[2] > 1 || vp[1]+vp[3] > 1 {
			err = multierr.Append(err, fmt.Errorf("cameras: %s: viewport %v outside the window", cam.ID, vp))
		}
	}
	for _, cam := range c.Cameras {
		if cam.LinkTo != "" && !ids[cam.LinkTo] {
			err = multierr.Append(err, fmt.Errorf("cameras: %s: link_to unknown camera %q", cam.ID, cam.LinkTo))
		}
	}
	return err
}

func (c *Config) validateLights() error {
	var err error
	if n := len(c.Lights); n > lighting.MaxLights {
		err = multierr.Append(err, fmt.Errorf("lights: %d configured, at most %d supported", n, lighting.MaxLights))
	}
	for i, l := range c.Lights {
		if !slices.Contains(lightTypes, l.Type) {
			err = multierr.Append(err, fmt.Errorf("lights: %d: unknown type %q", i, l.Type))
		}
		if l.Intensity < 0 {
			err = multierr.Append(err, fmt.Errorf("lights: %d: intensity %v must not be negative", i, l.Intensity))
		}
		if l.Type == "point" && l.Range <= 0 {
			err = multierr.Append(err, fmt.Errorf("lights: %d: range %v must be positive", i, l.Range))
		}
		if l.Type == "directional" && l.Position == ([3]float32{}) {
			err = multierr.Append(err, fmt.Errorf("lights: %d: directional light needs a direction", i))
		}
		for _, v := range l.Color {
			if v < 0 || v > 1 {
				err = multierr.Append(err, fmt.Errorf("lights: %d: colour %v outside [0, 1]", i, l.Color))
				break
			}
		}
	}
	return err
}

func (r RobotConfig) validate() error {
	var err error
	if r.Legs < 1 {
		err = multierr.Append(err, fmt.Errorf("robot: legs %d must be at least 1", r.Legs))
	}
	if r.SegmentLength <= 0 {
		err = multierr.Append(err, fmt.Errorf("robot: segment_length %v must be positive", r.SegmentLength))
	}
	if r.StepSpeed <= 0 {
		err = multierr.Append(err, fmt.Errorf("robot: step_speed %v must be positive", r.StepSpeed))
	}
	if r.StepHeight < 0 {
		err = multierr.Append(err, fmt.Errorf("robot: step_height %v must not be negative", r.StepHeight))
	}
	if r.StepDistance < 0 {
		err = multierr.Append(err, fmt.Errorf("robot: step_distance %v must not be negative", r.StepDistance))
	}
	if r.WalkableRadius < 0 {
		err = multierr.Append(err, fmt.Errorf("robot: walkable_radius %v must not be negative", r.WalkableRadius))
	}
	return err
}

// Package config handles simulation configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Window      WindowConfig              `yaml:"window"`
	Engine      EngineConfig              `yaml:"engine"`
	Cameras     []CameraConfig            `yaml:"cameras"`
	Robot       RobotConfig               `yaml:"robot"`
	Gait        GaitConfig                `yaml:"gait"`
	Environment EnvironmentConfig         `yaml:"environment"`
	Materials   map[string]MaterialConfig `yaml:"materials"`
	Lights      []LightConfig             `yaml:"lights"`
	Logging     LoggingConfig             `yaml:"logging"`
	Metrics     MetricsConfig             `yaml:"metrics"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Samples    int    `yaml:"samples"`
}

// EngineConfig holds frame loop and lighting settings.
type EngineConfig struct {
	MaxFrameTime float64    `yaml:"max_frame_time"` // seconds; larger deltas are clamped
	ShowFPS      bool       `yaml:"show_fps"`
	ClearColor   [4]float32 `yaml:"clear_color"`
	SunLongitude float32    `yaml:"sun_longitude"`
	SunLatitude  float32    `yaml:"sun_latitude"`
	// F12 saves a PNG of the window here.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// CameraConfig describes an extra viewport camera. The main camera always
// exists and follows the robot.
type CameraConfig struct {
	ID         string     `yaml:"id"`
	Projection string     `yaml:"projection"` // perspective or orthographic
	FOV        float32    `yaml:"fov"`
	Extent     float32    `yaml:"extent"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	LinkTo     string     `yaml:"link_to"`
	LinkFactor float32    `yaml:"link_factor"`
	Position   [3]float32 `yaml:"position"`
	Yaw        float32    `yaml:"yaw"`   // degrees
	Pitch      float32    `yaml:"pitch"` // degrees, positive looks down
	Viewport   [4]float32 `yaml:"viewport"`
}

// RobotConfig sizes the robot and its legs.
type RobotConfig struct {
	Legs           int     `yaml:"legs"`
	HipRadius      float32 `yaml:"hip_radius"`
	SegmentLength  float32 `yaml:"segment_length"`
	SegmentSize    float32 `yaml:"segment_size"`
	FootReach      float32 `yaml:"foot_reach"`
	GroundY        float32 `yaml:"ground_y"`
	StepSpeed      float32 `yaml:"step_speed"`
	StepHeight     float32 `yaml:"step_height"`
	StepDistance   float32 `yaml:"step_distance"`
	Easing         string  `yaml:"easing"`
	BobAmplitude   float32 `yaml:"bob_amplitude"`
	BobFrequency   float32 `yaml:"bob_frequency"`
	AxisSet        string  `yaml:"axis_set"`
	MoveSpeed      float32 `yaml:"move_speed"`
	TurnSpeed      float32 `yaml:"turn_speed"`
	WalkableRadius float32 `yaml:"walkable_radius"`
	DebugMarkers   bool    `yaml:"debug_markers"`
}

// GaitConfig holds orchestrator settings.
type GaitConfig struct {
	Initial       string  `yaml:"initial"`
	Valve         bool    `yaml:"valve"`
	MinSwitchTime float32 `yaml:"min_switch_time"`
}

// EnvironmentConfig holds platform, star field and Dyson ring settings.
type EnvironmentConfig struct {
	PlatformRadius float32 `yaml:"platform_radius"`
	Stars          int     `yaml:"stars"`
	Seed           int64   `yaml:"seed"`
	DysonSpheres   int     `yaml:"dyson_spheres"`
	DysonRadius    float32 `yaml:"dyson_radius"`
}

// MaterialConfig is a flat material colour.
type MaterialConfig struct {
	Color [4]float32 `yaml:"color"`
	Unlit bool       `yaml:"unlit"`
}

// LightConfig is a point or directional light added on top of the sun.
type LightConfig struct {
	Type string `yaml:"type"` // point or directional
	// Attach names an entity the light moves with. Position is then an
	// offset in that entity's space.
	Attach string `yaml:"attach"`
	// Position of a point light, or the direction towards a directional one.
	Position  [3]float32 `yaml:"position"`
	Color     [3]float32 `yaml:"color"`
	Intensity float32    `yaml:"intensity"`
	Range     float32    `yaml:"range"` // point lights fade out at this distance
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Strider",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Samples:    4,
		},
		Engine: EngineConfig{
			MaxFrameTime:  1.0 / 15,
			ClearColor:    [4]float32{0.02, 0.02, 0.05, 1},
			SunLongitude:  45,
			SunLatitude:   60,
			ScreenshotDir: "screenshots",
		},
		Cameras: []CameraConfig{
			{
				ID:         "overview",
				Projection: "orthographic",
				Extent:     30,
				Near:       0.1,
				Far:        1000,
				LinkTo:     "main",
				LinkFactor: 1,
				Position:   [3]float32{40, 60, 40},
				Yaw:        45,
				Pitch:      45,
				Viewport:   [4]float32{0.7, 0.7, 0.28, 0.28},
			},
		},
		Robot: RobotConfig{
			Legs:           8,
			HipRadius:      1,
			SegmentLength:  1,
			SegmentSize:    0.25,
			FootReach:      1.2,
			GroundY:        -1.5,
			StepSpeed:      4,
			StepHeight:     0.5,
			StepDistance:   0.9,
			Easing:         "linear",
			BobAmplitude:   0.2,
			BobFrequency:   3,
			AxisSet:        "wasd",
			MoveSpeed:      3,
			TurnSpeed:      1.5,
			WalkableRadius: 20,
		},
		Gait: GaitConfig{
			Initial:       "EVEN",
			Valve:         true,
			MinSwitchTime: 1,
		},
		Environment: EnvironmentConfig{
			PlatformRadius: 23,
			Stars:          300,
			Seed:           1,
			DysonSpheres:   10,
			DysonRadius:    40,
		},
		Materials: map[string]MaterialConfig{
			"red":          {Color: [4]float32{1, 0, 0, 1}},
			"robot_inners": {Color: [4]float32{0.5, 0.5, 0.5, 1}},
			"robot_outers": {Color: [4]float32{0.7, 0.7, 0.7, 1}},
			"platform":     {Color: [4]float32{1, 1, 1, 1}},
			"star":         {Color: [4]float32{0.7, 0, 1, 1}, Unlit: true},
			"black_hole":   {Color: [4]float32{0.02, 0.02, 0.02, 1}},
		},
		Lights: []LightConfig{
			{
				Type:      "point",
				Attach:    "robot_core",
				Color:     [3]float32{1, 0.55, 0.2},
				Intensity: 1.5,
				Range:     6,
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9464",
		},
	}
}

// Package config handles psurf configuration loading and management.
package config

// Config holds all psurf settings.
type Config struct {
	Surface      SurfaceConfig      `yaml:"surface"`
	Tessellation TessellationConfig `yaml:"tessellation"`
	Output       OutputConfig       `yaml:"output"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// SurfaceConfig selects the surface to tessellate. Only the fields used by
// Kind are read.
type SurfaceConfig struct {
	// Kind is one of sphere, cylinder, torus, plane, sheet, bilinear,
	// bezier or extrusion.
	Kind   string  `yaml:"kind"`
	Radius float64 `yaml:"radius"` // sphere, cylinder
	Height float64 `yaml:"height"` // cylinder
	Major  float64 `yaml:"major"`  // torus
	Minor  float64 `yaml:"minor"`  // torus
	Size   float64 `yaml:"size"`   // plane, sheet

	// Heights is the sheet control net indexed [u][v].
	Heights [4][4]float64 `yaml:"heights"`
	// Corners of a bilinear patch ordered (0,0), (1,0), (1,1), (0,1).
	Corners [4][3]float64 `yaml:"corners"`
	// Control is the bezier control net indexed [u][v].
	Control [4][4][3]float64 `yaml:"control"`
	// Profile is the XZ polyline swept along Y by extrusion.
	Profile [][2]float64 `yaml:"profile"`
	Depth   float64      `yaml:"depth"` // extrusion

	Transform TransformConfig `yaml:"transform"`
}

// TransformConfig places the surface. Zero scale components are read as 1.
type TransformConfig struct {
	Position [3]float64 `yaml:"position"`
	Scale    [3]float64 `yaml:"scale"`
	Axis     [3]float64 `yaml:"axis"`
	AngleDeg float64    `yaml:"angle_deg"`
}

// TessellationConfig holds refinement settings.
type TessellationConfig struct {
	Tolerance float64 `yaml:"tolerance"`
	// Strategy is one of alternate, minmax or maxdeviation.
	Strategy string `yaml:"strategy"`
	// Estimator is one of curvature or bilinear.
	Estimator string `yaml:"estimator"`
	Samples   int    `yaml:"samples"`
	// Mode is two or four triangles per patch.
	Mode          string   `yaml:"mode"`
	Normals       bool     `yaml:"normals"`
	UV            bool     `yaml:"uv"`
	MinSize       float64  `yaml:"min_size"`
	ParallelDepth int      `yaml:"parallel_depth"`
	Clip          *ClipBox `yaml:"clip,omitempty"`
}

// ClipBox discards patches lying outside an axis aligned box.
type ClipBox struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

// OutputConfig holds output file paths. Empty paths are not written.
type OutputConfig struct {
	STL string `yaml:"stl"`
	OBJ string `yaml:"obj"`
	PNG string `yaml:"png"`
	// Weld is the distance under which OBJ vertices are merged.
	Weld float64 `yaml:"weld"`
	// PNGSize is the preview image side length in pixels.
	PNGSize int `yaml:"png_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Surface: SurfaceConfig{
			Kind:  "torus",
			Major: 2,
			Minor: 0.5,
		},
		Tessellation: TessellationConfig{
			Tolerance:     0.01,
			Strategy:      "minmax",
			Estimator:     "curvature",
			Mode:          "two",
			Normals:       true,
			UV:            true,
			MinSize:       1. / 512,
			ParallelDepth: 4,
		},
		Output: OutputConfig{
			STL:     "psurf.stl",
			Weld:    1e-9,
			PNGSize: 512,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

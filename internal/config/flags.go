package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagSurface   = flag.String("surface", "", "Surface kind to tessellate")
	flagTolerance = flag.Float64("tol", 0, "Chordal deviation tolerance")
	flagStrategy  = flag.String("strategy", "", "Split direction strategy")
	flagMode      = flag.String("mode", "", "Triangles per patch: two or four")
	flagParallel  = flag.Int("parallel", -1, "Depth down to which patches refine concurrently")
	flagSTL       = flag.String("stl", "", "STL output path")
	flagOBJ       = flag.String("obj", "", "OBJ output path")
	flagPNG       = flag.String("png", "", "PNG preview output path")
	flagSave      = flag.String("save-config", "", "Write the effective config to this path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config flag.
func ConfigPath() string {
	return *flagConfig
}

// SavePath returns the path given by -save-config.
func SavePath() string {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSurface != "" {
		cfg.Surface.Kind = *flagSurface
	}
	if *flagTolerance > 0 {
		cfg.Tessellation.Tolerance = *flagTolerance
	}
	if *flagStrategy != "" {
		cfg.Tessellation.Strategy = *flagStrategy
	}
	if *flagMode != "" {
		cfg.Tessellation.Mode = *flagMode
	}
	if *flagParallel >= 0 {
		cfg.Tessellation.ParallelDepth = *flagParallel
	}
	if *flagSTL != "" {
		cfg.Output.STL = *flagSTL
	}
	if *flagOBJ != "" {
		cfg.Output.OBJ = *flagOBJ
	}
	if *flagPNG != "" {
		cfg.Output.PNG = *flagPNG
	}
}

package config

import "flag"

// Flags holds the command-line overrides shared by every subcommand.
type Flags struct {
	fs *flag.FlagSet

	Config      string
	Debug       bool
	UVLayer     string
	DeformLayer string
	Epsilon     float64
	Keyframes   string
	LogFile     string
	YUp         bool
	FlipV       bool
}

// RegisterFlags adds the common flags to fs. Call before fs.Parse.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.UVLayer, "uv", "", "UV layer name (default: active layer)")
	fs.StringVar(&f.DeformLayer, "deform", "", "Deform layer name (default: active layer)")
	fs.Float64Var(&f.Epsilon, "epsilon", 0, "Vertex merge tolerance, 0 for exact")
	fs.StringVar(&f.Keyframes, "keyframes", "", "Keyframe policy: strict or resample")
	fs.StringVar(&f.LogFile, "log", "", "Log file path")
	fs.BoolVar(&f.YUp, "yup", true, "Convert positions and normals to Y-up")
	fs.BoolVar(&f.FlipV, "flipv", true, "Flip the V texture coordinate")
	return f
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.Config
}

// applyFlags applies CLI flag overrides to the config. String flags left
// empty, and numeric or boolean flags not given, do not override the file.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.UVLayer != "" {
		cfg.Export.UVLayer = f.UVLayer
	}
	if f.DeformLayer != "" {
		cfg.Export.DeformLayer = f.DeformLayer
	}
	if f.Keyframes != "" {
		cfg.Export.Keyframes = f.Keyframes
	}
	if f.fs == nil {
		return
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "epsilon":
			cfg.Export.MergeEpsilon = float32(f.Epsilon)
		case "yup":
			cfg.Export.YUp = f.YUp
		case "flipv":
			cfg.Export.FlipV = f.FlipV
		}
	})
}

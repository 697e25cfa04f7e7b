package config

import "flag"

// Flags is the flag set shared by the bldgltf subcommands.
var Flags = flag.NewFlagSet("bldgltf", flag.ContinueOnError)

var (
	flagConfig       = Flags.String("config", "", "Path to config file")
	flagDebug        = Flags.Bool("debug", false, "Enable debug logging")
	flagLogFile      = Flags.String("log-file", "", "Also log to this file")
	flagColorBy      = Flags.String("color-by", "", "Material scheme: surface_type, boundary, construction, thermal_zone, ...")
	flagBinary       = Flags.Bool("binary", false, "Write a .glb container")
	flagTolerance    = Flags.Float64("tolerance", 0, "Vertex merge distance in meters")
	flagGenerator    = Flags.String("generator", "", "Asset generator string")
	flagAssignColors = Flags.Bool("assign-colors", false, "Write synthesized colors back to the model")
)

// ParseFlags parses args, returning the positional arguments left over.
func ParseFlags(args []string) ([]string, error) {
	if err := Flags.Parse(args); err != nil {
		return nil, err
	}
	return Flags.Args(), nil
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagColorBy != "" {
		cfg.Export.ColorBy = *flagColorBy
	}
	if *flagBinary {
		cfg.Export.Binary = true
	}
	if *flagTolerance > 0 {
		cfg.Export.Tolerance = *flagTolerance
	}
	if *flagGenerator != "" {
		cfg.Export.Generator = *flagGenerator
	}
	if *flagAssignColors {
		cfg.Export.AssignColors = true
	}
}

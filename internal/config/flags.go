package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagMaxVertices  = flag.Int("max-vertices", 0, "Unique vertices per meshlet")
	flagMaxTriangles = flag.Int("max-triangles", 0, "Triangles per meshlet")
	flagOut          = flag.String("out", "", "Output directory for built buffers")
	flagLogFile      = flag.String("log-file", "", "Also write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments (subcommand and its operands).
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMaxVertices > 0 {
		cfg.Meshlet.MaxVertices = *flagMaxVertices
	}
	if *flagMaxTriangles > 0 {
		cfg.Meshlet.MaxTriangles = *flagMaxTriangles
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}

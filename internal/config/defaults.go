package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.MappingPath == "" {
		cfg.MappingPath = ".shirushi.json"
	}
	if cfg.Extensions == nil {
		cfg.Extensions = []string{".md"}
	}
	if cfg.IgnoreDirs == nil {
		cfg.IgnoreDirs = []string{".git", "node_modules", "vendor"}
	}
	if cfg.IDLength == 0 {
		cfg.IDLength = 6
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 400
	}
}

// Package config handles tool configuration loading and management.
package config

// Config holds all loader and viewer settings.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Loader  LoaderConfig  `yaml:"loader"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds display settings for the preview window.
type ViewerConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// LoaderConfig holds resource loading settings.
type LoaderConfig struct {
	// SearchPaths are directories texture and shader names resolve
	// against, in order.
	SearchPaths []string `yaml:"search_paths"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Loader: LoaderConfig{
			SearchPaths: []string{"."},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

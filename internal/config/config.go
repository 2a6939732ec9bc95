// Package config handles converter configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Conversion ConversionConfig `yaml:"conversion"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ConversionConfig holds batch conversion settings.
type ConversionConfig struct {
	InputDir         string `yaml:"input_dir"`
	OutputDir        string `yaml:"output_dir"`
	Pattern          string `yaml:"pattern"` // Regex matched against whole file names
	Recursive        bool   `yaml:"recursive"`
	GenerateTangents bool   `yaml:"generate_tangents"`
	FixMeshNames     bool   `yaml:"fix_mesh_names"`
	ForceMats        string `yaml:"force_mats"` // Material name overrides (.properties or .yaml)
	MatReport        string `yaml:"mat_report"` // Material report output file
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Conversion: ConversionConfig{
			InputDir:  ".",
			OutputDir: ".",
			Pattern:   `.+\.(dae|obj|gltf|glb)`,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

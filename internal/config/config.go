// Package config loads the mapforge configuration from YAML and ENV.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Registry RegistryConfig `yaml:"registry"`
	Rubrics  RubricsConfig  `yaml:"rubrics"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"MAPFORGE_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"MAPFORGE_LOG_FORMAT" env-default:"text"`
}

// StorageConfig selects the slot store.
type StorageConfig struct {
	Driver     string `yaml:"driver"      env:"MAPFORGE_STORAGE_DRIVER"      env-default:"dir"`
	Dir        string `yaml:"dir"         env:"MAPFORGE_STORAGE_DIR"         env-default:"./mapforge-data"`
	SQLitePath string `yaml:"sqlite_path" env:"MAPFORGE_STORAGE_SQLITE_PATH" env-default:"./mapforge.db"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"MAPFORGE_SERVER_ADDR"             env-default:"127.0.0.1:8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"MAPFORGE_SERVER_READ_TIMEOUT"     env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"MAPFORGE_SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"MAPFORGE_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"MAPFORGE_SERVER_MAX_UPLOAD_BYTES" env-default:"33554432"`
}

// RegistryConfig points at the interface registry. An empty path selects
// the embedded default.
type RegistryConfig struct {
	Path string `yaml:"path" env:"MAPFORGE_REGISTRY_PATH"`
}

// RubricsConfig points at the rubric templates. An empty path selects
// the embedded default.
type RubricsConfig struct {
	Path string `yaml:"path" env:"MAPFORGE_RUBRICS_PATH"`
}

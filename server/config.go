// CLAUDE:SUMMARY Defines server config structs and parses YAML configuration files with defaults.
// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Renopop/RAG-v7/ocr"
)

// Config is the top-level server configuration.
type Config struct {
	Listen      string     `yaml:"listen"`
	DBPath      string     `yaml:"db_path"`
	MaxFileSize int64      `yaml:"max_file_size"`
	OCR         ocr.Config `yaml:"ocr"`

	// RootDir, when set, confines request paths to this directory.
	// Requests then carry paths relative to it. Empty means any
	// absolute path is accepted.
	RootDir string `yaml:"root_dir"`

	// CacheCap bounds the number of cached extractions; the oldest
	// records are evicted past it. 0 means unbounded.
	CacheCap int `yaml:"cache_cap"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.DBPath == "" {
		c.DBPath = "ragextract.db"
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
}

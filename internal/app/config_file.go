package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested
// sections map naturally to the dotted flag names.
type FileConfig struct {
	URLs     []string `yaml:"urls" json:"urls"`
	URLsFile string   `yaml:"urlsFile" json:"urlsFile"`

	Run struct {
		ID           string `yaml:"id" json:"id"`
		ArtifactsDir string `yaml:"artifactsDir" json:"artifactsDir"`
	} `yaml:"run" json:"run"`

	Cache struct {
		Dir   string `yaml:"dir" json:"dir"`
		Clear bool   `yaml:"clear" json:"clear"`
	} `yaml:"cache" json:"cache"`

	Output struct {
		PDF string `yaml:"pdf" json:"pdf"`
	} `yaml:"output" json:"output"`

	UserAgent       string   `yaml:"userAgent" json:"userAgent"`
	RestrictedHosts []string `yaml:"restrictedHosts" json:"restrictedHosts"`
	Verbose         bool     `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig fills cfg fields the caller left at their zero value, so
// explicit flags always win over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if len(cfg.URLs) == 0 {
		cfg.URLs = fc.URLs
	}
	if cfg.URLsFile == "" {
		cfg.URLsFile = fc.URLsFile
	}
	if cfg.RunID == "" {
		cfg.RunID = fc.Run.ID
	}
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = fc.Run.ArtifactsDir
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if !cfg.CacheClear {
		cfg.CacheClear = fc.Cache.Clear
	}
	if cfg.OutputPDF == "" {
		cfg.OutputPDF = fc.Output.PDF
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fc.UserAgent
	}
	if len(cfg.RestrictedHosts) == 0 {
		cfg.RestrictedHosts = fc.RestrictedHosts
	}
	if !cfg.Verbose {
		cfg.Verbose = fc.Verbose
	}
}

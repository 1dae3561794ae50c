package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

var ErrNoInput = errors.New("no drive or evidence file was selected")

// Config is the fully formed input the recovery core consumes. Values come from
// an optional yaml defaults file overridden by command line flags.
type Config struct {
	Drive            string `yaml:"drive"`
	Evidence         string `yaml:"evidence"`
	OutputFolder     string `yaml:"output-folder"`
	LogFolder        string `yaml:"log-folder"`
	TargetCluster    int    `yaml:"target-cluster"`
	TargetFileSize   int64  `yaml:"target-file-size"`
	GapThreshold     int    `yaml:"gap-threshold"`
	ScanSubdirs      bool   `yaml:"scan-subdirs"`
	Recover          bool   `yaml:"recover"`
	Analyze          bool   `yaml:"analyze"`
	CreateFileLog    bool   `yaml:"create-file-log"`
	LoggingActive    bool   `yaml:"log"`
	NamingStrategy   string `yaml:"strategy"`
	HashExportedWith string `yaml:"hash"`
}

func Default() Config {
	return Config{
		TargetCluster:  -1,
		TargetFileSize: -1,
		GapThreshold:   64,
		ScanSubdirs:    true,
		Recover:        true,
		Analyze:        true,
		NamingStrategy: "overwrite",
	}
}

// Read merges the yaml file at path over cfg. A missing file is not an error.
func Read(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %q: %w", path, err)
	}
	return nil
}

func (cfg Config) Validate() error {
	if cfg.Drive == "" && cfg.Evidence == "" {
		return ErrNoInput
	}
	if cfg.GapThreshold <= 0 {
		return fmt.Errorf("gap threshold must be positive, got %d", cfg.GapThreshold)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"ghdeploy/internal/models"
)

// DefaultChunkSize is the extraction buffer size (4 MiB) used when the
// config does not override it.
const DefaultChunkSize = 4 * 1024 * 1024

// Default returns a DeploySpec with default values.
func Default() models.DeploySpec {
	return models.DeploySpec{
		ServiceManager: models.ServiceManagerSudo,
		ChunkSize:      "4M",
		HTTPTimeoutSec: 30,
	}
}

// Load reads and parses a deploy spec. The format is chosen by file
// extension: .toml is decoded as TOML, everything else as YAML.
func Load(path string) (models.DeploySpec, error) {
	spec := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return spec, &models.ConfigError{Err: fmt.Errorf("reading: %w", err)}
	}

	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), &spec); err != nil {
			return spec, &models.ConfigError{Err: fmt.Errorf("parsing: %w", err)}
		}
	default:
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return spec, &models.ConfigError{Err: fmt.Errorf("parsing: %w", err)}
		}
	}

	// Apply defaults for values explicitly set to empty
	if spec.ServiceManager == "" {
		spec.ServiceManager = models.ServiceManagerSudo
	}
	if spec.ChunkSize == "" {
		spec.ChunkSize = "4M"
	}
	if spec.HTTPTimeoutSec == 0 {
		spec.HTTPTimeoutSec = 30
	}

	if err := Validate(spec); err != nil {
		return spec, err
	}

	return spec, nil
}

// Validate checks the required fields and enumerations of a deploy spec.
func Validate(spec models.DeploySpec) error {
	if spec.Repo == "" {
		return &models.ConfigError{Err: fmt.Errorf("'repo' is required")}
	}
	if spec.Artifact == "" {
		return &models.ConfigError{Err: fmt.Errorf("'artifact' is required")}
	}

	switch spec.ServiceManager {
	case models.ServiceManagerSudo, models.ServiceManagerDBus:
	default:
		return &models.ConfigError{Err: fmt.Errorf("unknown service_manager %q", spec.ServiceManager)}
	}

	for i, cf := range spec.CopyFiles {
		if cf.ArchivePath == "" || cf.TargetPath == "" {
			return &models.ConfigError{Err: fmt.Errorf("copy_files[%d]: both 'archive_path' and 'target_path' are required", i)}
		}
	}
	for i, cp := range spec.CopyPatterns {
		if cp.Pattern == "" || cp.TargetDir == "" {
			return &models.ConfigError{Err: fmt.Errorf("copy_patterns[%d]: both 'pattern' and 'target_dir' are required", i)}
		}
	}

	if _, err := ParseByteSize(spec.ChunkSize); err != nil {
		return &models.ConfigError{Err: fmt.Errorf("chunk_size: %w", err)}
	}

	return nil
}

// ParseByteSize converts a size string (e.g. "4M", "512K", "1G") to bytes.
// A bare number is taken as bytes. An empty string returns 0.
func ParseByteSize(size string) (int, error) {
	size = strings.TrimSpace(size)
	if size == "" {
		return 0, nil
	}

	var value float64
	var unit string

	n, err := fmt.Sscanf(size, "%f%s", &value, &unit)
	if err != nil && n == 0 {
		return 0, fmt.Errorf("invalid size value: %s", size)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive: %s", size)
	}

	if n == 1 {
		return int(value), nil
	}

	unit = strings.ToUpper(strings.TrimSpace(unit))
	switch unit {
	case "B":
		return int(value), nil
	case "K", "KB", "KI", "KIB":
		return int(value * 1024), nil
	case "M", "MB", "MI", "MIB":
		return int(value * 1024 * 1024), nil
	case "G", "GB", "GI", "GIB":
		return int(value * 1024 * 1024 * 1024), nil
	default:
		return 0, fmt.Errorf("unknown size unit: %s", unit)
	}
}

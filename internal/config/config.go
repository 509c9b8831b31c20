package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	defaultProcRoot = "/proc"
	defaultLogLevel = "info"

	envProcRoot         = "KUNAI_PROC_ROOT"
	envAccessor         = "KUNAI_ACCESSOR"
	envStrictEditLength = "KUNAI_STRICT_EDIT_LENGTH"
	envMaxRegionSize    = "KUNAI_MAX_REGION_SIZE"
	envLogFile          = "KUNAI_LOG_FILE"
	envLogLevel         = "KUNAI_LOG_LEVEL"
)

// Accessor backends understood by the memory layer.
const (
	AccessorProcMem = "procmem"
	AccessorVM      = "vm"
)

// Config aggregates the tunables shared by the CLI and the TUI.
type Config struct {
	// ProcRoot is the procfs mount the tool reads tasks, maps and memory from.
	ProcRoot string
	// Accessor selects the raw memory backend (procmem or vm).
	Accessor string
	// StrictEditLength rejects edits whose byte length differs from the match.
	StrictEditLength bool
	// MaxRegionSize skips regions larger than this many bytes while scanning. Zero means no limit.
	MaxRegionSize uint64
	LogFile       string
	LogLevel      string
}

// Default returns the configuration used when no file or environment is given.
func Default() Config {
	return Config{
		ProcRoot: defaultProcRoot,
		Accessor: AccessorProcMem,
		LogLevel: defaultLogLevel,
	}
}

// Load builds a Config from an optional JSON or YAML file path plus environment overrides.
// Invalid environment values are ignored and described in warnings; logging is
// not set up yet while the config loads, so the caller reports them.
func Load(path string) (cfg Config, warnings []string, err error) {
	cfg = Default()

	if path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return cfg, nil, fmt.Errorf("load config %s: %w", path, err)
		}
		merge(&cfg, fileCfg)
	}

	warnings = applyEnvOverrides(&cfg)
	return cfg, warnings, nil
}

func merge(dst *Config, src fileConfig) {
	if src.ProcRoot != "" {
		dst.ProcRoot = src.ProcRoot
	}
	if src.Accessor != "" {
		dst.Accessor = src.Accessor
	}
	if src.StrictEditLength != nil {
		dst.StrictEditLength = *src.StrictEditLength
	}
	if src.MaxRegionSize != nil {
		dst.MaxRegionSize = *src.MaxRegionSize
	}
	if src.LogFile != "" {
		dst.LogFile = src.LogFile
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

func applyEnvOverrides(cfg *Config) (warnings []string) {
	warn := func(env, v string, err error) {
		warnings = append(warnings, fmt.Sprintf("invalid %s value %q: %v", env, v, err))
	}

	if v := os.Getenv(envProcRoot); v != "" {
		cfg.ProcRoot = v
	}
	if v := os.Getenv(envAccessor); v != "" {
		if err := validateAccessor(v); err != nil {
			warn(envAccessor, v, err)
		} else {
			cfg.Accessor = v
		}
	}
	if v := os.Getenv(envStrictEditLength); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StrictEditLength = b
		} else {
			warn(envStrictEditLength, v, err)
		}
	}
	if v := os.Getenv(envMaxRegionSize); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.MaxRegionSize = n
		} else {
			warn(envMaxRegionSize, v, err)
		}
	}
	if v := os.Getenv(envLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return warnings
}

type fileConfig struct {
	ProcRoot         string  `json:"proc_root" yaml:"proc_root"`
	Accessor         string  `json:"accessor" yaml:"accessor"`
	StrictEditLength *bool   `json:"strict_edit_length" yaml:"strict_edit_length"`
	MaxRegionSize    *uint64 `json:"max_region_size" yaml:"max_region_size"`
	LogFile          string  `json:"log_file" yaml:"log_file"`
	LogLevel         string  `json:"log_level" yaml:"log_level"`
}

func loadFromFile(path string) (fileConfig, error) {
	var raw fileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return raw, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return raw, err
	}

	if raw.Accessor != "" {
		if err := validateAccessor(raw.Accessor); err != nil {
			return raw, err
		}
	}
	if raw.ProcRoot != "" && !filepath.IsAbs(raw.ProcRoot) {
		return raw, errors.New("proc_root must be an absolute path")
	}
	return raw, nil
}

func validateAccessor(name string) error {
	switch name {
	case AccessorProcMem, AccessorVM:
		return nil
	default:
		return fmt.Errorf("unknown accessor %q (want %s or %s)", name, AccessorProcMem, AccessorVM)
	}
}

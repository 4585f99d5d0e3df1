// YAML config loading for the activity tracker. Supports environment
// variable overrides via ${VAR} or $VAR syntax in values.
package tracker

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/p-blackswan/activity-agent/internal/automation"
)

// FileConfig is the top-level configuration loaded from tracker.yaml.
type FileConfig struct {
	// Tracker runtime settings.
	Tracker Settings `yaml:"tracker"`

	// Detector thresholds.
	Detectors DetectorSettings `yaml:"detectors"`

	// Tasks seeds the automation registry at startup (in addition to any
	// tasks restored from the persistence collaborator).
	Tasks []automation.TaskSpec `yaml:"tasks"`
}

// Settings maps to the tracker's runtime knobs in YAML.
type Settings struct {
	// CaptureIntervalMS is the screen capture cadence. Default: 1000.
	CaptureIntervalMS int `yaml:"capture_interval_ms"`

	// HistoryCapacity bounds the event history buffer. Default: 1000.
	HistoryCapacity int `yaml:"history_capacity"`

	// SuggestionCapacity bounds the suggestion store. Default: 10.
	SuggestionCapacity int `yaml:"suggestion_capacity"`

	// EventBufferSize is the capacity of the internal event channel. Default: 256.
	EventBufferSize int `yaml:"event_buffer_size"`

	// SuggestionsEnabled toggles the pattern detector set. Default: true.
	SuggestionsEnabled *bool `yaml:"suggestions_enabled"`
}

// DetectorSettings holds pattern detection thresholds.
type DetectorSettings struct {
	// RepeatedWindow is how many recent events the repeated-kind detector
	// examines. Default: 20.
	RepeatedWindow int `yaml:"repeated_window"`

	// MinRepetitions is the occurrence threshold for a pattern. Default: 3.
	MinRepetitions int `yaml:"min_repetitions"`
}

// LoadFile reads and parses a YAML config file, expanding env vars.
func LoadFile(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return LoadBytes(raw)
}

// LoadBytes parses a YAML config from bytes (useful for testing).
func LoadBytes(data []byte) (*FileConfig, error) {
	expanded := expandEnvVars(string(data))
	var cfg FileConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a FileConfig with every default applied.
func Default() *FileConfig {
	var cfg FileConfig
	applyDefaults(&cfg)
	return &cfg
}

// ToConfig converts the YAML settings to the tracker's runtime Config.
func (fc *FileConfig) ToConfig() Config {
	return Config{
		CaptureInterval:    time.Duration(fc.Tracker.CaptureIntervalMS) * time.Millisecond,
		EventBufferSize:    fc.Tracker.EventBufferSize,
		SuggestionsEnabled: fc.Tracker.SuggestionsEnabled == nil || *fc.Tracker.SuggestionsEnabled,
	}
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *FileConfig) {
	if cfg.Tracker.CaptureIntervalMS <= 0 {
		cfg.Tracker.CaptureIntervalMS = 1000
	}
	if cfg.Tracker.HistoryCapacity <= 0 {
		cfg.Tracker.HistoryCapacity = 1000
	}
	if cfg.Tracker.SuggestionCapacity <= 0 {
		cfg.Tracker.SuggestionCapacity = 10
	}
	if cfg.Tracker.EventBufferSize <= 0 {
		cfg.Tracker.EventBufferSize = 256
	}
	if cfg.Detectors.RepeatedWindow <= 0 {
		cfg.Detectors.RepeatedWindow = 20
	}
	if cfg.Detectors.MinRepetitions <= 0 {
		cfg.Detectors.MinRepetitions = 3
	}
}

// envVarPattern matches ${VAR_NAME} and $VAR_NAME.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars replaces ${VAR} and $VAR with the corresponding environment
// variable value. Missing vars are replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "${")
		name = strings.TrimSuffix(name, "}")
		name = strings.TrimPrefix(name, "$")
		return os.Getenv(name)
	})
}

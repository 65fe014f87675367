package yamlconfig

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crepric/netfailoverd/internal/domain/failoverconfig"
)

// Default configuration values, SPEC_FULL.md §6.
const (
	defaultProbeAnchor           = "8.8.8.8"
	defaultProbeTimeout          = 1 * time.Second
	defaultProbeDuration         = 3 * time.Second
	defaultProbeInterval         = 500 * time.Millisecond
	defaultProbeLossThresholdPct = 25

	defaultHealthCheckInterval = 20 * time.Second
	defaultRouteSyncInterval   = 5 * time.Second

	defaultListenAddress = "0.0.0.0:50051"
	defaultDrainTimeout  = 5 * time.Second

	defaultLoggingLevel  = "info"
	defaultLoggingFormat = "text"
)

// ErrNoConfigurationLoaded is returned when Reload is called without a
// prior Load.
var ErrNoConfigurationLoaded = errors.New("no configuration loaded")

// Loader loads failoverconfig.Config from a YAML file, remembering the
// last-loaded path to support SIGHUP reload.
type Loader struct {
	lastPath string
}

// New creates a new YAML configuration loader.
func New() *Loader {
	return &Loader{}
}

// Load reads and parses a configuration file from path.
func (l *Loader) Load(path string) (*failoverconfig.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - config path is trusted input
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := l.Parse(data)
	if err != nil {
		return nil, err
	}

	cfg.ConfigPath = path
	l.lastPath = path
	return cfg, nil
}

// Parse parses configuration from YAML bytes.
func (l *Loader) Parse(data []byte) (*failoverconfig.Config, error) {
	var dto ConfigDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	applyDefaults(&dto)
	cfg := dto.ToDomain("")

	if err := failoverconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Reload reloads configuration from the last loaded path.
func (l *Loader) Reload() (*failoverconfig.Config, error) {
	if l.lastPath == "" {
		return nil, fmt.Errorf("%w", ErrNoConfigurationLoaded)
	}
	return l.Load(l.lastPath)
}

// applyDefaults sets default values for unset configuration options,
// following the teacher's cascading-defaults idiom.
func applyDefaults(cfg *ConfigDTO) {
	if cfg.ProbeAnchor == "" {
		cfg.ProbeAnchor = defaultProbeAnchor
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = Duration(defaultProbeTimeout)
	}
	if cfg.ProbeDuration == 0 {
		cfg.ProbeDuration = Duration(defaultProbeDuration)
	}
	if cfg.ProbeInterval == 0 {
		cfg.ProbeInterval = Duration(defaultProbeInterval)
	}
	if cfg.ProbeLossThresholdPct == 0 {
		cfg.ProbeLossThresholdPct = defaultProbeLossThresholdPct
	}
	if cfg.HealthCheckInterval == 0 {
		cfg.HealthCheckInterval = Duration(defaultHealthCheckInterval)
	}
	if cfg.RouteSyncInterval == 0 {
		cfg.RouteSyncInterval = Duration(defaultRouteSyncInterval)
	}
	if cfg.RPC.ListenAddress == "" {
		cfg.RPC.ListenAddress = defaultListenAddress
	}
	if cfg.RPC.DrainTimeout == 0 {
		cfg.RPC.DrainTimeout = Duration(defaultDrainTimeout)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaultLoggingFormat
	}
}

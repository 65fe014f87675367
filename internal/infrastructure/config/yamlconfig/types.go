// Package yamlconfig loads failoverconfig.Config from a YAML file,
// following the teacher's persistence/config/yaml DTO-then-ToDomain
// pipeline.
package yamlconfig

import (
	"strconv"
	"time"

	"github.com/crepric/netfailoverd/internal/domain/failoverconfig"
)

// Duration is a wrapper around time.Duration for YAML serialization,
// accepting both bare seconds ("5") and Go duration strings ("5s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case int:
		*d = Duration(time.Duration(v) * time.Second)
		return nil
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
		return nil
	case string:
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			*d = Duration(time.Duration(secs * float64(time.Second)))
			return nil
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	default:
		return nil
	}
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d *Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(*d).String()), nil
}

// ConfigDTO is the YAML representation of the root configuration.
type ConfigDTO struct {
	MonitoredInterfaces []string `yaml:"monitored_interfaces"`
	PreferenceOrder     []string `yaml:"preference_order"`

	ProbeAnchor           string   `yaml:"probe_anchor"`
	ProbeTimeout          Duration `yaml:"probe_timeout_s"`
	ProbeDuration         Duration `yaml:"probe_duration_s"`
	ProbeInterval         Duration `yaml:"probe_interval_s"`
	ProbeLossThresholdPct float64  `yaml:"probe_loss_threshold_pct"`

	HealthCheckInterval Duration `yaml:"health_check_interval_s"`
	RouteSyncInterval   Duration `yaml:"route_sync_interval_s"`

	RPC     RPCConfigDTO     `yaml:"rpc"`
	Logging LoggingConfigDTO `yaml:"logging"`
}

// RPCConfigDTO is the YAML representation of the RPC transport settings.
type RPCConfigDTO struct {
	ListenAddress string   `yaml:"listen_address"`
	DrainTimeout  Duration `yaml:"drain_timeout_s"`
}

// LoggingConfigDTO is the YAML representation of the logging settings.
type LoggingConfigDTO struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ToDomain converts the DTO to the validated domain model, recording the
// source path it was loaded from.
func (c *ConfigDTO) ToDomain(path string) *failoverconfig.Config {
	return &failoverconfig.Config{
		ConfigPath:            path,
		MonitoredInterfaces:   append([]string(nil), c.MonitoredInterfaces...),
		PreferenceOrder:       append([]string(nil), c.PreferenceOrder...),
		ProbeAnchor:           c.ProbeAnchor,
		ProbeTimeout:          time.Duration(c.ProbeTimeout),
		ProbeDuration:         time.Duration(c.ProbeDuration),
		ProbeInterval:         time.Duration(c.ProbeInterval),
		ProbeLossThresholdPct: c.ProbeLossThresholdPct,
		HealthCheckInterval:   time.Duration(c.HealthCheckInterval),
		RouteSyncInterval:     time.Duration(c.RouteSyncInterval),
		RPC: failoverconfig.RPCConfig{
			ListenAddress: c.RPC.ListenAddress,
			DrainTimeout:  time.Duration(c.RPC.DrainTimeout),
		},
		Logging: failoverconfig.LoggingConfig{
			Level:  c.Logging.Level,
			Format: c.Logging.Format,
		},
	}
}

// Package failoverconfig defines the daemon's domain configuration: the
// monitored/preferred interface lists and the probe, health-check,
// route-sync, RPC and logging parameters every other component is built
// from.
package failoverconfig

import "time"

// Config is the fully validated, defaulted daemon configuration.
type Config struct {
	ConfigPath string

	MonitoredInterfaces []string
	PreferenceOrder     []string

	ProbeAnchor           string
	ProbeTimeout          time.Duration
	ProbeDuration         time.Duration
	ProbeInterval         time.Duration
	ProbeLossThresholdPct float64

	HealthCheckInterval time.Duration
	RouteSyncInterval   time.Duration

	RPC     RPCConfig
	Logging LoggingConfig
}

// RPCConfig configures the gRPC transport.
type RPCConfig struct {
	ListenAddress string
	DrainTimeout  time.Duration
}

// LoggingConfig configures the process-wide structured logger.
type LoggingConfig struct {
	Level  string
	Format string
}

package failoverconfig

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	// ErrNoInterfaces indicates no interfaces are monitored.
	ErrNoInterfaces = errors.New("monitored_interfaces must not be empty")
	// ErrDuplicateInterface indicates a duplicate entry in a list that
	// must contain unique names.
	ErrDuplicateInterface = errors.New("duplicate interface name")
	// ErrPreferenceNotMonitored indicates preference_order names an
	// interface absent from monitored_interfaces.
	ErrPreferenceNotMonitored = errors.New("preference_order entry is not in monitored_interfaces")
	// ErrInvalidLossThreshold indicates probe_loss_threshold_pct is
	// outside [0, 100].
	ErrInvalidLossThreshold = errors.New("probe_loss_threshold_pct must be between 0 and 100")
	// ErrEmptyListenAddress indicates rpc.listen_address is unset.
	ErrEmptyListenAddress = errors.New("rpc.listen_address must not be empty")
)

// Validate checks cfg against invariant I2 (preference_order is a
// duplicate-free subset of monitored_interfaces) and the other startup
// invariants called out in SPEC_FULL.md §4.H.
func Validate(cfg *Config) error {
	if len(cfg.MonitoredInterfaces) == 0 {
		return ErrNoInterfaces
	}

	monitored := make(map[string]struct{}, len(cfg.MonitoredInterfaces))
	for _, name := range cfg.MonitoredInterfaces {
		if _, dup := monitored[name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateInterface, name)
		}
		monitored[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(cfg.PreferenceOrder))
	for _, name := range cfg.PreferenceOrder {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateInterface, name)
		}
		seen[name] = struct{}{}
		if _, ok := monitored[name]; !ok {
			return fmt.Errorf("%w: %s", ErrPreferenceNotMonitored, name)
		}
	}

	if cfg.ProbeLossThresholdPct < 0 || cfg.ProbeLossThresholdPct > 100 {
		return ErrInvalidLossThreshold
	}

	if cfg.RPC.ListenAddress == "" {
		return ErrEmptyListenAddress
	}

	return nil
}

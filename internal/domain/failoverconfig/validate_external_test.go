package failoverconfig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crepric/netfailoverd/internal/domain/failoverconfig"
)

func baseConfig() *failoverconfig.Config {
	return &failoverconfig.Config{
		MonitoredInterfaces:   []string{"eth0", "eth1"},
		PreferenceOrder:       []string{"eth0", "eth1"},
		ProbeLossThresholdPct: 25,
		RPC:                   failoverconfig.RPCConfig{ListenAddress: "0.0.0.0:50051"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*failoverconfig.Config)
		wantErr   bool
		errTarget error
	}{
		{
			name:   "valid config",
			mutate: func(*failoverconfig.Config) {},
		},
		{
			name:      "no monitored interfaces",
			mutate:    func(c *failoverconfig.Config) { c.MonitoredInterfaces = nil },
			wantErr:   true,
			errTarget: failoverconfig.ErrNoInterfaces,
		},
		{
			name:      "duplicate monitored interface",
			mutate:    func(c *failoverconfig.Config) { c.MonitoredInterfaces = []string{"eth0", "eth0"} },
			wantErr:   true,
			errTarget: failoverconfig.ErrDuplicateInterface,
		},
		{
			name:      "duplicate preference order entry",
			mutate:    func(c *failoverconfig.Config) { c.PreferenceOrder = []string{"eth0", "eth0"} },
			wantErr:   true,
			errTarget: failoverconfig.ErrDuplicateInterface,
		},
		{
			name:      "preference order references unmonitored interface",
			mutate:    func(c *failoverconfig.Config) { c.PreferenceOrder = []string{"eth0", "eth9"} },
			wantErr:   true,
			errTarget: failoverconfig.ErrPreferenceNotMonitored,
		},
		{
			name:      "loss threshold below zero",
			mutate:    func(c *failoverconfig.Config) { c.ProbeLossThresholdPct = -1 },
			wantErr:   true,
			errTarget: failoverconfig.ErrInvalidLossThreshold,
		},
		{
			name:      "loss threshold above 100",
			mutate:    func(c *failoverconfig.Config) { c.ProbeLossThresholdPct = 101 },
			wantErr:   true,
			errTarget: failoverconfig.ErrInvalidLossThreshold,
		},
		{
			name:      "empty listen address",
			mutate:    func(c *failoverconfig.Config) { c.RPC.ListenAddress = "" },
			wantErr:   true,
			errTarget: failoverconfig.ErrEmptyListenAddress,
		},
		{
			name:   "preference order may be a strict subset",
			mutate: func(c *failoverconfig.Config) { c.PreferenceOrder = []string{"eth1"} },
		},
		{
			name:   "empty preference order is valid",
			mutate: func(c *failoverconfig.Config) { c.PreferenceOrder = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)

			err := failoverconfig.Validate(cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.errTarget)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

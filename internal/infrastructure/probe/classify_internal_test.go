package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crepric/netfailoverd/internal/domain/netstatus"
)

func TestClassifyLoss(t *testing.T) {
	tests := []struct {
		name      string
		sent      int
		lost      int
		threshold float64
		want      netstatus.Status
	}{
		{"no pings completed is unknown", 0, 0, 25, netstatus.Unknown},
		{"no loss is healthy", 4, 0, 25, netstatus.Healthy},
		{"loss exactly at threshold is healthy", 4, 1, 25, netstatus.Healthy},
		{"loss one point above threshold is unhealthy", 100, 26, 25, netstatus.Unhealthy},
		{"total loss is unhealthy unless threshold is 100", 4, 4, 25, netstatus.Unhealthy},
		{"total loss at a 100 threshold is healthy", 4, 4, 100, netstatus.Healthy},
		{"zero threshold tolerates no loss", 4, 1, 0, netstatus.Unhealthy},
		{"zero threshold and zero loss is healthy", 4, 0, 0, netstatus.Healthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyLoss(tt.sent, tt.lost, tt.threshold)
			assert.Equal(t, tt.want, got)
		})
	}
}

package applog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crepric/netfailoverd/internal/domain/failoverconfig"
	"github.com/crepric/netfailoverd/internal/infrastructure/applog"
)

func TestNew_NeverReturnsNil(t *testing.T) {
	tests := []failoverconfig.LoggingConfig{
		{Level: "debug", Format: "json"},
		{Level: "warn", Format: "text"},
		{Level: "error", Format: "json"},
		{Level: "", Format: ""},
		{Level: "bogus", Format: "bogus"},
	}

	for _, cfg := range tests {
		logger := applog.New(cfg)
		assert.NotNil(t, logger)
		assert.NotPanics(t, func() {
			logger.Info("test message", "key", "value")
		})
	}
}

package workflows

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/tablepos/pkg/config"
	"github.com/ghuser/tablepos/pkg/logger"
)

func TestClientOptions_FromConfig(t *testing.T) {
	cfg := &config.Config{
		ServiceName:       "tablepos",
		Environment:       config.EnvDevelopment,
		OccupancyBackend:  config.BackendRedis,
		TemporalHostPort:  "temporal:7233",
		TemporalNamespace: "pos",
	}
	var buf bytes.Buffer
	opts, err := clientOptions(cfg, logger.NewWithWriter(&buf, "debug").With("component", "temporal"))
	require.NoError(t, err)

	assert.Equal(t, "temporal:7233", opts.HostPort)
	assert.Equal(t, "pos", opts.Namespace)
	assert.Equal(t, "tablepos@development/redis", opts.Identity)
	assert.Len(t, opts.Interceptors, 1)

	require.NotNil(t, opts.Logger)
	opts.Logger.Info("poller started", "task_queue", ReconcileTaskQueue)
	assert.Contains(t, buf.String(), `"component":"temporal"`)
	assert.Contains(t, buf.String(), `"task_queue":"occupancy-reconcile"`)
}

package workflows

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"

	"github.com/ghuser/tablepos/pkg/config"
	"github.com/ghuser/tablepos/pkg/logger"
)

// TemporalClient is the Temporal connection shared by the reconcile worker
// (API process) and the reconcile schedule (cmd/worker).
type TemporalClient struct {
	Client    client.Client
	Namespace string
	log       logger.Logger
}

// NewTemporalClient dials cfg.TemporalHostPort in cfg.TemporalNamespace with
// OTel tracing. Call Close() when the application shuts down.
func NewTemporalClient(ctx context.Context, cfg *config.Config, log logger.Logger) (*TemporalClient, error) {
	log = log.With("component", "temporal")
	opts, err := clientOptions(cfg, log)
	if err != nil {
		return nil, err
	}

	c, err := client.DialContext(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("dial temporal server at %s: %w", cfg.TemporalHostPort, err)
	}

	log.Info("temporal client connected", "host_port", opts.HostPort, "namespace", opts.Namespace, "identity", opts.Identity)

	return &TemporalClient{
		Client:    c,
		Namespace: opts.Namespace,
		log:       log,
	}, nil
}

// clientOptions names the client after the service and environment so the
// Temporal UI shows which deployment picked up a reconcile task.
func clientOptions(cfg *config.Config, log logger.Logger) (client.Options, error) {
	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("temporal-client"),
	})
	if err != nil {
		return client.Options{}, fmt.Errorf("create temporal otel interceptor: %w", err)
	}
	return client.Options{
		HostPort:     cfg.TemporalHostPort,
		Namespace:    cfg.TemporalNamespace,
		Identity:     fmt.Sprintf("%s@%s/%s", cfg.ServiceName, cfg.Environment, cfg.OccupancyBackend),
		Logger:       temporallog.NewStructuredLogger(log.ToSlog()),
		Interceptors: []interceptor.ClientInterceptor{tracing},
	}, nil
}

// Close shuts down the Temporal client connection.
func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal client closed")
}

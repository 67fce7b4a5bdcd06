package observability

import (
    "context"
    "fmt"
    "log/slog"
    "time"

    "github.com/walletera/food-delivery/pkg/logattr"

    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
    "go.opentelemetry.io/otel/propagation"
    "go.opentelemetry.io/otel/sdk/resource"
    sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const defaultSampleRatio = 1.0

type TracingConfig struct {
    Enabled     bool
    ServiceName string
    SampleRatio float64
}

// InitTracing installs a global tracer provider exporting spans to stdout.
// When tracing is disabled the otel no-op provider stays in place and the
// returned shutdown does nothing.
func InitTracing(ctx context.Context, config TracingConfig, logger *slog.Logger) (func(context.Context) error, error) {
    if !config.Enabled {
        return func(context.Context) error { return nil }, nil
    }
    res, err := resource.New(
        ctx,
        resource.WithAttributes(attribute.String("service.name", config.ServiceName)),
    )
    if err != nil {
        return nil, fmt.Errorf("failed building otel resource: %w", err)
    }
    exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
    if err != nil {
        return nil, fmt.Errorf("failed creating stdout trace exporter: %w", err)
    }
    ratio := config.SampleRatio
    if ratio <= 0 || ratio > 1 {
        ratio = defaultSampleRatio
    }
    provider := sdktrace.NewTracerProvider(
        sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
        sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
        sdktrace.WithResource(res),
    )
    otel.SetTracerProvider(provider)
    otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
        propagation.TraceContext{},
        propagation.Baggage{},
    ))
    logger.Info("otel tracing initialized", logattr.ServiceName(config.ServiceName))
    return provider.Shutdown, nil
}

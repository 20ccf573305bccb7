package logging

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Setup redirects slog.Default() to OpenTelemetry and returns a shutdown function.
// Exporters are selected through the standard OTEL_LOGS_EXPORTER and
// OTEL_TRACES_EXPORTER variables; logs default to stdout, traces to none.
func Setup(service *resource.Resource) func(context.Context) error {
	// Retrieve log level from the environment, default to info
	var verbose slog.LevelVar
	verbose.Set(slog.LevelInfo)
	if input := os.Getenv("OTEL_LOG_LEVEL"); input != "" {
		_ = verbose.UnmarshalText([]byte(input))
	}

	ctx := context.Background()

	var shutdowns []func(context.Context) error

	exporter, err := newLogExporter(ctx)
	if err != nil {
		slog.ErrorContext(
			ctx, "OpenTelemetry setup failed",
			"error", err,
		)
		os.Exit(1)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(service),
	)
	shutdowns = append(shutdowns, provider.Shutdown)

	stdlog := slog.New(
		withLevel(
			&verbose, // Filter level for otelslog.Handler
			otelslog.NewHandler("slog", otelslog.WithLoggerProvider(provider)),
		),
	)
	slog.SetDefault(stdlog)

	traces, err := newTraceProvider(ctx, service)
	if err != nil {
		stdlog.ErrorContext(
			ctx, "OpenTelemetry setup failed",
			"error", err,
		)
		os.Exit(1)
	}
	if traces != nil {
		otel.SetTracerProvider(traces)
		shutdowns = append(shutdowns, traces.Shutdown)
	}

	stdlog.InfoContext(ctx, "OpenTelemetry setup successful")

	// Shut the providers down in reverse order, keeping the last error.
	return func(ctx context.Context) error {
		var last error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](ctx); err != nil {
				last = err
			}
		}
		return last
	}
}

func newLogExporter(ctx context.Context) (sdklog.Exporter, error) {
	switch os.Getenv("OTEL_LOGS_EXPORTER") {
	case "otlp":
		return otlploggrpc.New(ctx)
	default:
		return stdoutlog.New()
	}
}

func newTraceProvider(ctx context.Context, service *resource.Resource) (*sdktrace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter
	var err error
	switch os.Getenv("OTEL_TRACES_EXPORTER") {
	case "otlp":
		exporter, err = otlptracegrpc.New(ctx)
	case "stdout":
		exporter, err = stdouttrace.New()
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(service),
	), nil
}

// levelHandler gates records below the configured level before they reach
// the bridge handler.
type levelHandler struct {
	level   slog.Leveler
	handler slog.Handler
}

func withLevel(level slog.Leveler, h slog.Handler) slog.Handler {
	return &levelHandler{level: level, handler: h}
}

func (h *levelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, handler: h.handler.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, handler: h.handler.WithGroup(name)}
}

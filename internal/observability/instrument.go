package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const loggerName = "anthropic-proxy"

// loggerProvider is retained so Shutdown can flush buffered records.
// Only set for the OTLP formats.
var loggerProvider *sdklog.LoggerProvider

// Instrument installs the process-wide slog default with the given level
// and format. The text and json formats write to stderr, keeping stdout
// free for piping. The otlp format exports records over OTLP, with the
// protocol selected through OTEL_EXPORTER_OTLP_PROTOCOL; otlp-stdout
// prints the OTLP records to stdout instead.
func Instrument(level slog.Level, logFormat string) error {
	var (
		handler slog.Handler
		err     error
	)

	switch format := strings.ToLower(logFormat); format {
	case "text", "json":
		handler = newStderrHandler(level, format)
	case "otlp", "otlp-stdout":
		handler, err = newOTLPHandler(context.Background(), level, format)
	default:
		return fmt.Errorf("unsupported log format %q (expected: text, json, otlp, otlp-stdout)", logFormat)
	}
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(handler))

	return nil
}

// Shutdown flushes buffered log records. It is a no-op unless an OTLP
// format was instrumented.
func Shutdown(ctx context.Context) error {
	if loggerProvider == nil {
		return nil
	}
	return loggerProvider.Shutdown(ctx)
}

// newStderrHandler creates a handler for human-readable logs enriched with
// trace correlation attributes.
func newStderrHandler(level slog.Level, logFormat string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return withTraceContext(handler)
}

// newOTLPHandler bridges slog records into an OTLP logger provider. The
// minimum severity processor drops records below the configured level
// before they reach the exporter.
func newOTLPHandler(ctx context.Context, level slog.Level, logFormat string) (slog.Handler, error) {
	exporter, err := newOTLPExporter(ctx, logFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	// Stdout export is for local inspection, so records are emitted
	// immediately rather than batched.
	var processor sdklog.Processor
	if logFormat == "otlp-stdout" {
		processor = sdklog.NewSimpleProcessor(exporter)
	} else {
		processor = sdklog.NewBatchProcessor(exporter)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(minsev.NewLogProcessor(processor, minSeverity(level))),
	)
	loggerProvider = provider

	return otelslog.NewHandler(loggerName, otelslog.WithLoggerProvider(provider)), nil
}

// newOTLPExporter selects the exporter for the format. Endpoint, headers,
// and TLS for the network exporters come from the standard OTEL_EXPORTER_*
// environment variables.
func newOTLPExporter(ctx context.Context, logFormat string) (sdklog.Exporter, error) {
	if logFormat == "otlp-stdout" {
		return stdoutlog.New()
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") == "grpc" {
		return otlploggrpc.New(ctx)
	}
	return otlploghttp.New(ctx)
}

func minSeverity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}

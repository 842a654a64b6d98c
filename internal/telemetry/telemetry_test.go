package telemetry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func restoreGlobals(t *testing.T) {
	t.Cleanup(func() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(noop.NewMeterProvider())
	})
}

func TestInit_None(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Traces: ExporterNone, Metrics: ExporterNone})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestInit_UnknownExporter(t *testing.T) {
	tests := []Config{
		{Traces: "otlp"},
		{Metrics: "prometheus"},
	}
	for _, cfg := range tests {
		if _, err := Init(context.Background(), cfg); !errors.Is(err, ErrUnknownExporter) {
			t.Errorf("Init(%+v) error = %v, want ErrUnknownExporter", cfg, err)
		}
	}
}

func TestInit_StdoutTraces(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{
		ServiceName: "woofront-test",
		Traces:      ExporterStdout,
		Metrics:     ExporterStdout,
		Writer:      &buf,
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "directory.fetch")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "directory.fetch") || !strings.Contains(out, "woofront-test") {
		t.Errorf("exported output missing span or service name:\n%s", out)
	}
}

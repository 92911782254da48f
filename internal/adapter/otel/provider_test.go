package otel_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	adapter "github.com/neomorfeo/gatherly/internal/adapter/otel"
)

func TestSetup_StdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	providers, err := adapter.Setup(context.Background(), adapter.Config{
		ServiceName: "test",
		Environment: "test",
		Exporter:    "stdout",
		SampleRatio: 1,
		Writer:      &buf,
	})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	_, span := otel.Tracer("setup-test").Start(context.Background(), "smoke")
	span.End()

	if err := providers.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"smoke"`)) {
		t.Errorf("exporter output does not mention the span: %s", buf.String())
	}
}

func TestSetup_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  adapter.Config
	}{
		{"unknown exporter", adapter.Config{Exporter: "invalid", SampleRatio: 1}},
		{"ratio above one", adapter.Config{Exporter: "stdout", SampleRatio: 1.5}},
		{"negative ratio", adapter.Config{Exporter: "stdout", SampleRatio: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := adapter.Setup(context.Background(), tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		want     adapter.Config
		insecure bool
	}{
		{
			name: "defaults",
			want: adapter.Config{
				ServiceName: "gatherly", ServiceVersion: "0.1.0", Environment: "development",
				Exporter: "stdout", SampleRatio: 1, MetricInterval: time.Minute,
			},
			insecure: true,
		},
		{
			name: "production otlp",
			env: map[string]string{
				"OTEL_SERVICE_NAME":           "gatherly-eu",
				"OTEL_ENVIRONMENT":            "production",
				"OTEL_EXPORTER":               "otlp",
				"OTEL_EXPORTER_OTLP_ENDPOINT": "https://collector:4318",
				"OTEL_TRACES_SAMPLER_RATIO":   "0.25",
				"OTEL_METRIC_INTERVAL":        "15s",
			},
			want: adapter.Config{
				ServiceName: "gatherly-eu", ServiceVersion: "0.1.0", Environment: "production",
				Exporter: "otlp", Endpoint: "https://collector:4318", SampleRatio: 0.25,
				MetricInterval: 15 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := adapter.ConfigFromEnv()
			if err != nil {
				t.Fatalf("ConfigFromEnv failed: %v", err)
			}
			if cfg.Insecure != tt.insecure {
				t.Errorf("Insecure = %v, want %v", cfg.Insecure, tt.insecure)
			}
			cfg.Insecure = false
			if cfg != tt.want {
				t.Errorf("config = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

func TestOpenDB_UnsupportedDriver(t *testing.T) {
	if _, err := adapter.OpenDB("mysql", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

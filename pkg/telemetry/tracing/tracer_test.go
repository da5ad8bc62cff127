package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"pdx-hq/reqgraph/pkg/config"
)

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tracer := NewWithProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, recorder
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.TracingConfig
		wantEnabled bool
		wantErr     bool
	}{
		{
			name: "disabled",
			cfg:  config.TracingConfig{Enabled: false},
		},
		{
			name: "enabled with always sampler",
			cfg: config.TracingConfig{
				Enabled:  true,
				Sampler:  SamplerAlways,
				Endpoint: "localhost:4317",
				Insecure: true,
			},
			wantEnabled: true,
		},
		{
			name: "enabled with ratio sampler",
			cfg: config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerRatio,
				SampleRatio: 0.5,
				Endpoint:    "localhost:4317",
				ServiceName: "reqgraph-test",
			},
			wantEnabled: true,
		},
		{
			name: "invalid sampler",
			cfg: config.TracingConfig{
				Enabled:  true,
				Sampler:  "sometimes",
				Endpoint: "localhost:4317",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.cfg, "0.1.0-test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tracer.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.wantEnabled)
			}
			// Nothing was recorded, so shutdown does not reach the collector.
			if err := tracer.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestTracer_NilAndNop(t *testing.T) {
	for name, tracer := range map[string]*Tracer{"nil": nil, "nop": Nop(), "zero": {}} {
		t.Run(name, func(t *testing.T) {
			ctx, span := tracer.Start(context.Background(), "noop")
			if span == nil || ctx == nil {
				t.Fatal("Start() must return a span and context")
			}
			if span.IsRecording() {
				t.Error("span should not record")
			}
			if got := TraceID(span); got != "" {
				t.Errorf("TraceID() = %q, want empty", got)
			}
			End(span, nil)

			if tracer.Enabled() {
				t.Error("Enabled() should be false")
			}
			if err := tracer.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestTracer_NestedSpans(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	ctx, root := tracer.Start(context.Background(), "pipeline.build")
	root.SetAttributes(RunID("run-1"))
	_, child := tracer.Start(ctx, "pipeline.parse")
	child.SetAttributes(FileAttributes("a.txt", "civics", 10, 2)...)
	End(child, nil)
	End(root, nil)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d ended spans, want 2", len(spans))
	}
	parse, build := spans[0], spans[1]
	if parse.Name() != "pipeline.parse" || build.Name() != "pipeline.build" {
		t.Fatalf("span names = %q, %q", parse.Name(), build.Name())
	}
	if parse.Parent().SpanID() != build.SpanContext().SpanID() {
		t.Error("parse span should be a child of the build span")
	}
	if TraceID(root) == "" {
		t.Error("TraceID() of a recording span should not be empty")
	}

	want := map[attribute.Key]attribute.Value{
		AttrFile:        attribute.StringValue("a.txt"),
		AttrCollection:  attribute.StringValue("civics"),
		AttrTokens:      attribute.IntValue(10),
		AttrDiagnostics: attribute.IntValue(2),
	}
	for _, kv := range parse.Attributes() {
		if v, ok := want[kv.Key]; ok && v != kv.Value {
			t.Errorf("%s = %v, want %v", kv.Key, kv.Value, v)
		}
		delete(want, kv.Key)
	}
	if len(want) > 0 {
		t.Errorf("missing attributes: %v", want)
	}
}

func TestEnd_Error(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), "storage.save")
	span.SetAttributes(StorageAttributes("save", "sqlite")...)
	End(span, errors.New("disk full"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if got := spans[0].Status(); got.Code != codes.Error || got.Description != "disk full" {
		t.Errorf("Status() = %+v", got)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("error should be recorded as an event")
	}
}

func TestBuildAttributes(t *testing.T) {
	attrs := BuildAttributes(3, 40, 2, 5)
	if len(attrs) != 4 {
		t.Fatalf("got %d attributes, want 4", len(attrs))
	}
	if attrs[3].Key != AttrClosurePairs || attrs[3].Value.AsInt64() != 5 {
		t.Errorf("closure pairs attribute = %v", attrs[3])
	}
}

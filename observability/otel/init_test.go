package otel

import (
	"context"
	"errors"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitRequiresServiceName(t *testing.T) {
	if _, err := Init(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error without service name")
	}
}

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "milkd"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if Tracer() == nil {
		t.Fatalf("expected a tracer")
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	if cfg.endpoint() != defaultEndpoint {
		t.Fatalf("unexpected endpoint %q", cfg.endpoint())
	}
	if cfg.interval() != defaultMetricInterval {
		t.Fatalf("unexpected interval %s", cfg.interval())
	}
	cfg.MetricInterval = time.Minute
	if cfg.interval() != time.Minute {
		t.Fatalf("configured interval ignored")
	}
}

func TestSamplerRatio(t *testing.T) {
	cases := map[float64]string{
		0:    sdktrace.ParentBased(sdktrace.AlwaysSample()).Description(),
		1:    sdktrace.ParentBased(sdktrace.AlwaysSample()).Description(),
		0.25: sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description(),
	}
	for ratio, want := range cases {
		if got := (Config{SampleRatio: ratio}).sampler().Description(); got != want {
			t.Fatalf("ratio %v: got %s want %s", ratio, got, want)
		}
	}
}

func TestShutdownStackRunsInReverseAndJoinsErrors(t *testing.T) {
	var order []int
	failure := errors.New("flush")
	var stack shutdownStack
	stack.push(func(context.Context) error { order = append(order, 1); return failure })
	stack.push(func(context.Context) error { order = append(order, 2); return nil })

	if err := stack.run(context.Background()); !errors.Is(err, failure) {
		t.Fatalf("expected joined failure, got %v", err)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("unexpected shutdown order %v", order)
	}
}

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" api-key = abc ,broken, =skip,tenant=milk")
	if len(got) != 2 || got["api-key"] != "abc" || got["tenant"] != "milk" {
		t.Fatalf("unexpected headers %v", got)
	}
}

package analyzers

import (
	"context"
	"errors"
	"testing"

	"github.com/nethalo/sqlsentinel/internal/envprobe"
	"github.com/nethalo/sqlsentinel/internal/model"
)

func TestEnvironment_ColdCacheProducesFinding(t *testing.T) {
	probe := envprobe.Static{Context: model.EnvironmentContext{BufferPoolUtilization: 0.2}}
	env, findings, err := Environment(context.Background(), probe, "orders")
	if err != nil {
		t.Fatalf("Environment: %v", err)
	}
	if env.DatabaseName != "orders" {
		t.Errorf("DatabaseName = %q, want orders", env.DatabaseName)
	}
	if len(findings) != 1 {
		t.Fatalf("expected one cold-cache finding, got %d", len(findings))
	}
	if findings[0].Category != model.CategoryEnvironment {
		t.Errorf("Category = %v, want CategoryEnvironment", findings[0].Category)
	}
}

func TestEnvironment_WarmCacheNoFinding(t *testing.T) {
	probe := envprobe.Static{Context: model.EnvironmentContext{BufferPoolUtilization: 0.9}}
	_, findings, err := Environment(context.Background(), probe, "orders")
	if err != nil {
		t.Fatalf("Environment: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings with a warm cache, got %v", findings)
	}
}

func TestEnvironment_PropagatesProbeError(t *testing.T) {
	wantErr := errors.New("connection refused")
	probe := envprobe.Static{Err: wantErr}
	_, _, err := Environment(context.Background(), probe, "orders")
	if !errors.Is(err, wantErr) {
		t.Errorf("Environment error = %v, want %v", err, wantErr)
	}
}

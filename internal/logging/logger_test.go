// Package logging includes tests for the zap logger helpers.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestNewDevelopmentLogger confirms the development logger builds and logs.
func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	if err != nil {
		t.Fatalf("New(true) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("development logger ready")
}

// TestNewProductionLogger ensures the production logger configuration succeeds.
func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	if err != nil {
		t.Fatalf("New(false) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("production logger ready")
}

// TestForRunAttachesFields checks the run-scoped logger carries its identity.
func TestForRunAttachesFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	ForRun(zap.New(core), "wiki", "run-1").Info("started")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "wiki" {
		t.Fatalf("logger name = %q, want wiki", entries[0].LoggerName)
	}
	fields := entries[0].ContextMap()
	if fields["run_id"] != "run-1" || fields["adapter"] != "wiki" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

// TestForRunNilLogger tolerates a nil base logger.
func TestForRunNilLogger(t *testing.T) {
	t.Parallel()
	ForRun(nil, "catalog", "x").Info("discarded")
}

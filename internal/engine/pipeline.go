// Package engine wires every other internal package into the ordered
// diagnostic pipeline: sanitize, guard, validate, explain, parse,
// extract metrics, score, evaluate rules, project scalability, run the
// deep analyzers, then post-process the combined findings before
// handing back a report.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/nethalo/sqlsentinel/internal/baseline"
	"github.com/nethalo/sqlsentinel/internal/clock"
	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/envprobe"
	"github.com/nethalo/sqlsentinel/internal/scalability"
	"github.com/nethalo/sqlsentinel/internal/schemaintrospect"
	"github.com/nethalo/sqlsentinel/internal/scoring"
	"github.com/nethalo/sqlsentinel/internal/sqlsafety"
)

// Pipeline holds every port the diagnostic engine depends on. None of
// these are optional in production use; tests construct a Pipeline
// with stubs for whichever ports the test exercises.
type Pipeline struct {
	Driver       dbdriver.Driver
	Introspector schemaintrospect.Introspector
	EnvProbe     envprobe.Probe
	Baseline     baseline.Store
	Clock        clock.Clock
	Cfg          config.Config

	// Database names the schema the environment probe and baseline
	// history are scoped to.
	Database string
	// Environment gates the hypothetical-index analyzer's opt-in DDL
	// simulation (e.g. "dev", "staging", "production").
	Environment string
	// Permissive skips schema/column/join validation, the mode
	// SQLite-backed and test pipelines run in.
	Permissive bool

	guard     sqlsafety.Guard
	scorer    scoring.Engine
	estimator scalability.Estimator
}

// New constructs a Pipeline with its own guard/scorer/estimator
// instances, wrapping driver in a Guard so every downstream call sees
// a single EngineAbort failure mode.
func New(driver dbdriver.Driver, intro schemaintrospect.Introspector, probe envprobe.Probe, store baseline.Store, clk clock.Clock, cfg config.Config, database, environment string, permissive bool) Pipeline {
	return Pipeline{
		Driver:       dbdriver.NewGuard(driver),
		Introspector: intro,
		EnvProbe:     probe,
		Baseline:     store,
		Clock:        clk,
		Cfg:          cfg,
		Database:     database,
		Environment:  environment,
		Permissive:   permissive,
		guard:        sqlsafety.NewGuard(),
		scorer:       scoring.NewEngine(cfg),
		estimator:    scalability.NewEstimator(),
	}
}

// queryHash is the stable identity a query is tracked under across
// runs: a query's regression history and workload pattern detection
// both key off this rather than the raw (whitespace-variable) text.
func queryHash(sanitized string) string {
	sum := sha256.Sum256([]byte(sanitized))
	return hex.EncodeToString(sum[:])[:16]
}

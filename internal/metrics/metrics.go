// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
// For production observability, consider integrating with Prometheus or similar.
package metrics

import "sync/atomic"

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Provider discovery
	probesTotal atomic.Int64
	probeMisses atomic.Int64

	// Certificate authentication
	authSuccesses atomic.Int64
	authFailures  atomic.Int64

	// Token transfers, by terminal outcome
	transfersSubmitted atomic.Int64
	transfersSucceeded atomic.Int64
	transfersFailed    atomic.Int64

	// Transfer failures by classified kind
	transferRejections atomic.Int64
	transferFundErrors atomic.Int64
	transferNetErrors  atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordProbe records the start of a provider discovery probe.
func (m *Metrics) RecordProbe() {
	m.probesTotal.Add(1)
}

// RecordProbeMiss records a probe that exhausted its budget.
func (m *Metrics) RecordProbeMiss() {
	m.probeMisses.Add(1)
}

// RecordAuthSuccess records a successful certificate authentication.
func (m *Metrics) RecordAuthSuccess() {
	m.authSuccesses.Add(1)
}

// RecordAuthFailure records a failed certificate authentication.
func (m *Metrics) RecordAuthFailure() {
	m.authFailures.Add(1)
}

// RecordTransferSubmitted records a transfer entering the pipeline.
func (m *Metrics) RecordTransferSubmitted() {
	m.transfersSubmitted.Add(1)
}

// RecordTransferSuccess records a transfer reaching its success state.
func (m *Metrics) RecordTransferSuccess() {
	m.transfersSucceeded.Add(1)
}

// RecordTransferFailure records a terminal transfer failure with its
// classified kind ("user_rejection", "insufficient_funds", "network", ...).
func (m *Metrics) RecordTransferFailure(kind string) {
	m.transfersFailed.Add(1)
	switch kind {
	case "user_rejection":
		m.transferRejections.Add(1)
	case "insufficient_funds":
		m.transferFundErrors.Add(1)
	case "network":
		m.transferNetErrors.Add(1)
	}
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	ProbesTotal        int64 `json:"probes_total"`
	ProbeMisses        int64 `json:"probe_misses"`
	AuthSuccesses      int64 `json:"auth_successes"`
	AuthFailures       int64 `json:"auth_failures"`
	TransfersSubmitted int64 `json:"transfers_submitted"`
	TransfersSucceeded int64 `json:"transfers_succeeded"`
	TransfersFailed    int64 `json:"transfers_failed"`
	TransferRejections int64 `json:"transfer_rejections"`
	TransferFundErrors int64 `json:"transfer_fund_errors"`
	TransferNetErrors  int64 `json:"transfer_net_errors"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		ProbesTotal:        m.probesTotal.Load(),
		ProbeMisses:        m.probeMisses.Load(),
		AuthSuccesses:      m.authSuccesses.Load(),
		AuthFailures:       m.authFailures.Load(),
		TransfersSubmitted: m.transfersSubmitted.Load(),
		TransfersSucceeded: m.transfersSucceeded.Load(),
		TransfersFailed:    m.transfersFailed.Load(),
		TransferRejections: m.transferRejections.Load(),
		TransferFundErrors: m.transferFundErrors.Load(),
		TransferNetErrors:  m.transferNetErrors.Load(),
	}
}

// ProbeHitRate returns the fraction of probes that found a provider, as a
// percentage (0-100). Returns 0 if no probes have run.
func (m *Metrics) ProbeHitRate() float64 {
	total := m.probesTotal.Load()
	if total == 0 {
		return 0
	}
	hits := total - m.probeMisses.Load()
	return float64(hits) / float64(total) * 100
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.probesTotal.Store(0)
	m.probeMisses.Store(0)
	m.authSuccesses.Store(0)
	m.authFailures.Store(0)
	m.transfersSubmitted.Store(0)
	m.transfersSucceeded.Store(0)
	m.transfersFailed.Store(0)
	m.transferRejections.Store(0)
	m.transferFundErrors.Store(0)
	m.transferNetErrors.Store(0)
}

// Package metrics provides process-level counters for LCD traffic,
// signatures and broadcasts, using atomic counters.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// LCD metrics
	lcdCallsTotal   atomic.Int64
	lcdErrorsTotal  atomic.Int64
	lcdLatencyNanos atomic.Int64

	// Signing metrics, per key variant
	signaturesTotal    atomic.Int64
	signatureErrors    atomic.Int64
	seedSignatures     atomic.Int64
	rawSignatures      atomic.Int64
	hardwareSignatures atomic.Int64

	// Broadcast metrics
	broadcastsTotal    atomic.Int64
	broadcastsRejected atomic.Int64
}

// Global is the global metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordLCDCall records an LCD request with its duration and success status.
func (m *Metrics) RecordLCDCall(duration time.Duration, err error) {
	m.lcdCallsTotal.Add(1)
	m.lcdLatencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.lcdErrorsTotal.Add(1)
	}
}

// RecordSignature records a signing attempt by key variant ("seed", "raw", "hardware").
func (m *Metrics) RecordSignature(variant string, err error) {
	m.signaturesTotal.Add(1)
	if err != nil {
		m.signatureErrors.Add(1)
		return
	}

	switch variant {
	case "seed":
		m.seedSignatures.Add(1)
	case "raw":
		m.rawSignatures.Add(1)
	case "hardware":
		m.hardwareSignatures.Add(1)
	}
}

// RecordBroadcast records a broadcast; rejected is true when the chain refused the transaction.
func (m *Metrics) RecordBroadcast(rejected bool) {
	m.broadcastsTotal.Add(1)
	if rejected {
		m.broadcastsRejected.Add(1)
	}
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	LCDCallsTotal      int64 `json:"lcd_calls_total"`
	LCDErrorsTotal     int64 `json:"lcd_errors_total"`
	LCDLatencyNanos    int64 `json:"lcd_latency_nanos"`
	SignaturesTotal    int64 `json:"signatures_total"`
	SignatureErrors    int64 `json:"signature_errors"`
	SeedSignatures     int64 `json:"seed_signatures"`
	RawSignatures      int64 `json:"raw_signatures"`
	HardwareSignatures int64 `json:"hardware_signatures"`
	BroadcastsTotal    int64 `json:"broadcasts_total"`
	BroadcastsRejected int64 `json:"broadcasts_rejected"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		LCDCallsTotal:      m.lcdCallsTotal.Load(),
		LCDErrorsTotal:     m.lcdErrorsTotal.Load(),
		LCDLatencyNanos:    m.lcdLatencyNanos.Load(),
		SignaturesTotal:    m.signaturesTotal.Load(),
		SignatureErrors:    m.signatureErrors.Load(),
		SeedSignatures:     m.seedSignatures.Load(),
		RawSignatures:      m.rawSignatures.Load(),
		HardwareSignatures: m.hardwareSignatures.Load(),
		BroadcastsTotal:    m.broadcastsTotal.Load(),
		BroadcastsRejected: m.broadcastsRejected.Load(),
	}
}

// LCDLatencyAvgMs returns the average LCD latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) LCDLatencyAvgMs() float64 {
	calls := m.lcdCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	return float64(m.lcdLatencyNanos.Load()) / float64(calls) / 1e6
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.lcdCallsTotal.Store(0)
	m.lcdErrorsTotal.Store(0)
	m.lcdLatencyNanos.Store(0)
	m.signaturesTotal.Store(0)
	m.signatureErrors.Store(0)
	m.seedSignatures.Store(0)
	m.rawSignatures.Store(0)
	m.hardwareSignatures.Store(0)
	m.broadcastsTotal.Store(0)
	m.broadcastsRejected.Store(0)
}

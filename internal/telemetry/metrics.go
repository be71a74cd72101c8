// Package telemetry collects in-process counters for probe execution.
package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var defaultRegistry = newRegistry()

type registry struct {
	mu                   sync.Mutex
	probeOutcomes        map[string]map[string]int64
	probeDurationBuckets map[string][]int64
	transportTimeouts    int64
	decodeFailures       int64
}

func newRegistry() *registry {
	return &registry{
		probeOutcomes:        make(map[string]map[string]int64),
		probeDurationBuckets: make(map[string][]int64),
	}
}

// IncProbeOutcome counts one probe result by method and outcome kind.
func IncProbeOutcome(method, kind string) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	if _, ok := defaultRegistry.probeOutcomes[method]; !ok {
		defaultRegistry.probeOutcomes[method] = make(map[string]int64)
	}
	defaultRegistry.probeOutcomes[method][kind]++
}

// ObserveProbeDuration buckets one probe duration by method.
func ObserveProbeDuration(method string, d time.Duration) {
	buckets := []float64{0.1, 0.5, 1, 2, 5, 10}
	sec := d.Seconds()

	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	if _, ok := defaultRegistry.probeDurationBuckets[method]; !ok {
		defaultRegistry.probeDurationBuckets[method] = make([]int64, len(buckets)+1)
	}
	idx := len(buckets)
	for i, b := range buckets {
		if sec <= b {
			idx = i
			break
		}
	}
	defaultRegistry.probeDurationBuckets[method][idx]++
}

func IncTransportTimeout() {
	defaultRegistry.mu.Lock()
	defaultRegistry.transportTimeouts++
	defaultRegistry.mu.Unlock()
}

func IncDecodeFailure() {
	defaultRegistry.mu.Lock()
	defaultRegistry.decodeFailures++
	defaultRegistry.mu.Unlock()
}

// Reset clears all counters. Intended for tests.
func Reset() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.probeOutcomes = make(map[string]map[string]int64)
	defaultRegistry.probeDurationBuckets = make(map[string][]int64)
	defaultRegistry.transportTimeouts = 0
	defaultRegistry.decodeFailures = 0
}

// Snapshot renders all counters in Prometheus exposition format with stable
// label ordering.
func Snapshot() string {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()

	var sb strings.Builder

	sb.WriteString("# TYPE mcpcheck_probe_outcomes_total counter\n")
	for _, method := range sortedKeys(defaultRegistry.probeOutcomes) {
		for _, kind := range sortedKeys(defaultRegistry.probeOutcomes[method]) {
			sb.WriteString(fmt.Sprintf("mcpcheck_probe_outcomes_total{method=\"%s\",kind=\"%s\"} %d\n", method, kind, defaultRegistry.probeOutcomes[method][kind]))
		}
	}

	sb.WriteString("# TYPE mcpcheck_probe_duration_seconds_bucket counter\n")
	bucketLabels := []string{"0.1", "0.5", "1", "2", "5", "10", "+Inf"}
	for _, method := range sortedKeys(defaultRegistry.probeDurationBuckets) {
		for i, v := range defaultRegistry.probeDurationBuckets[method] {
			sb.WriteString(fmt.Sprintf("mcpcheck_probe_duration_seconds_bucket{method=\"%s\",le=\"%s\"} %d\n", method, bucketLabels[i], v))
		}
	}

	sb.WriteString("# TYPE mcpcheck_transport_timeouts_total counter\n")
	sb.WriteString(fmt.Sprintf("mcpcheck_transport_timeouts_total %d\n", defaultRegistry.transportTimeouts))

	sb.WriteString("# TYPE mcpcheck_decode_failures_total counter\n")
	sb.WriteString(fmt.Sprintf("mcpcheck_decode_failures_total %d\n", defaultRegistry.decodeFailures))

	return sb.String()
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

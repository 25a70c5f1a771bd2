// Package metrics exposes Prometheus collectors for the hash table and the
// LRU-K replacer, following the teacher's pattern of package-level
// collectors registered once in init and updated through small setter
// functions rather than threading a registry through every call site.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HashTableGlobalDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "xhash_global_depth",
		Help: "Current global depth (directory index bits) by table",
	}, []string{"table"})

	HashTableNumBuckets = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "xhash_num_buckets",
		Help: "Current distinct bucket count by table",
	}, []string{"table"})

	HashTableKeyCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "xhash_key_count",
		Help: "Current stored key count by table",
	}, []string{"table"})

	HashTableSplits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xhash_splits_total",
		Help: "Total bucket splits performed by table",
	}, []string{"table"})

	ReplacerEvictableFrames = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "replacer_evictable_frames",
		Help: "Current evictable frame count by replacer",
	}, []string{"replacer"})

	ReplacerEvictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replacer_evictions_total",
		Help: "Total frames evicted by replacer",
	}, []string{"replacer"})

	ReplacerCurrentTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "replacer_current_timestamp",
		Help: "Current logical clock value by replacer",
	}, []string{"replacer"})
)

func init() {
	prometheus.MustRegister(
		HashTableGlobalDepth,
		HashTableNumBuckets,
		HashTableKeyCount,
		HashTableSplits,
		ReplacerEvictableFrames,
		ReplacerEvictions,
		ReplacerCurrentTimestamp,
	)
}

// HashTableStats is the subset of xhash.Stats the metrics package needs,
// duplicated here so this package doesn't import xhash just for a struct
// shape (xhash stays dependency-free of observability concerns).
type HashTableStats struct {
	GlobalDepth int
	NumBuckets  int
	KeyCount    int
}

// ObserveHashTable updates the gauges for a named table snapshot.
func ObserveHashTable(table string, s HashTableStats) {
	HashTableGlobalDepth.WithLabelValues(table).Set(float64(s.GlobalDepth))
	HashTableNumBuckets.WithLabelValues(table).Set(float64(s.NumBuckets))
	HashTableKeyCount.WithLabelValues(table).Set(float64(s.KeyCount))
}

// IncHashTableSplit records one bucket split for a named table.
func IncHashTableSplit(table string) {
	HashTableSplits.WithLabelValues(table).Inc()
}

// ReplacerStats is the subset of replacer.Stats the metrics package needs.
type ReplacerStats struct {
	CurrSize         int
	CurrentTimestamp uint64
}

// ObserveReplacer updates the gauges for a named replacer snapshot.
func ObserveReplacer(name string, s ReplacerStats) {
	ReplacerEvictableFrames.WithLabelValues(name).Set(float64(s.CurrSize))
	ReplacerCurrentTimestamp.WithLabelValues(name).Set(float64(s.CurrentTimestamp))
}

// IncReplacerEviction records one eviction for a named replacer.
func IncReplacerEviction(name string) {
	ReplacerEvictions.WithLabelValues(name).Inc()
}

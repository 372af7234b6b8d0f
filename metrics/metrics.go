// Package metrics registers the prometheus collectors the sharder exposes
// for a run: edges ingested, self-loops diverted, shards written, and
// bytes written per output artifact kind.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Sharder bundles the run-scoped collectors. Callers create one per run
// and register it with their own registry (or prometheus.DefaultRegisterer).
type Sharder struct {
	EdgesIngested    prometheus.Counter
	SelfLoops        prometheus.Counter
	ShardsWritten    prometheus.Counter
	BytesAdjacency   prometheus.Counter
	BytesEdgeData    prometheus.Counter
	BytesEdgeDataRaw prometheus.Counter
}

// New builds a fresh set of collectors, namespaced under "graphsharder".
func New() *Sharder {
	return &Sharder{
		EdgesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphsharder",
			Name:      "edges_ingested_total",
			Help:      "Number of non-self-loop edges ingested via AddEdge.",
		}),
		SelfLoops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphsharder",
			Name:      "self_loops_total",
			Help:      "Number of self-loop edges diverted to the per-vertex value side channel.",
		}),
		ShardsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphsharder",
			Name:      "shards_written_total",
			Help:      "Number of shards whose adjacency stream and edge-data directory have been written.",
		}),
		BytesAdjacency: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphsharder",
			Name:      "adjacency_bytes_written_total",
			Help:      "Bytes written across all adjacency streams.",
		}),
		BytesEdgeData: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphsharder",
			Name:      "edge_data_compressed_bytes_written_total",
			Help:      "Compressed bytes written across all edge-data block directories.",
		}),
		BytesEdgeDataRaw: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphsharder",
			Name:      "edge_data_raw_bytes_written_total",
			Help:      "Uncompressed bytes written across all edge-data block directories.",
		}),
	}
}

// Register registers every collector with reg.
func (s *Sharder) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		s.EdgesIngested,
		s.SelfLoops,
		s.ShardsWritten,
		s.BytesAdjacency,
		s.BytesEdgeData,
		s.BytesEdgeDataRaw,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

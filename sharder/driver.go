// Package sharder implements the driver (component G of the spec): it
// orchestrates the two-pass shard-construction pipeline — ingest, shovel,
// sort, encode, degree-write — and owns the lifecycle of scratch files and
// final manifest files.
package sharder

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rpcpool/graphsharder/continuity"
	"github.com/rpcpool/graphsharder/cosort"
	"github.com/rpcpool/graphsharder/degree"
	"github.com/rpcpool/graphsharder/edgevalue"
	"github.com/rpcpool/graphsharder/idtranslate"
	"github.com/rpcpool/graphsharder/metrics"
	"github.com/rpcpool/graphsharder/shardenc"
	"github.com/rpcpool/graphsharder/shovel"
	"k8s.io/klog/v2"
)

// Driver orchestrates one sharder run for an edge value type V. It is
// strictly single-threaded and sequential: every opened file is flushed and
// closed on every exit path, including the error path, and Abort closes and
// removes a partial shovel set if ingest aborts.
type Driver[V any] struct {
	baseFilename string
	numShards    int
	processor    edgevalue.Processor[V]
	valueSize    int

	preTranslate *idtranslate.Translate
	shovels      *shovel.Set

	maxVertexID  uint32
	numEdges     int64
	numSelfLoops int64

	sparseForced      bool
	memoryBudgetBytes uint64
	subIntervalSize   int
	blockSize         int
	scratchDir        string

	metrics *metrics.Sharder

	processed bool
}

// Option configures a Driver at construction time.
type Option[V any] func(*Driver[V])

// WithSparseForced mirrors the operator flag sparsedeg=1: forces sparse
// degree output regardless of the maxVertexId <= numEdges heuristic.
func WithSparseForced[V any](forced bool) Option[V] {
	return func(d *Driver[V]) { d.sparseForced = forced }
}

// WithMemoryBudgetBytes overrides the §4.6 degree-strategy heuristic's H
// term instead of querying available system memory at Process time.
func WithMemoryBudgetBytes[V any](bytes uint64) Option[V] {
	return func(d *Driver[V]) { d.memoryBudgetBytes = bytes }
}

// WithSubIntervalSize overrides the replay strategy's sub-interval width.
func WithSubIntervalSize[V any](n int) Option[V] {
	return func(d *Driver[V]) { d.subIntervalSize = n }
}

// WithBlockSize overrides the edge-data block directory's block size.
func WithBlockSize[V any](n int) Option[V] {
	return func(d *Driver[V]) { d.blockSize = n }
}

// WithMetrics attaches a metrics.Sharder to record counters on.
func WithMetrics[V any](m *metrics.Sharder) Option[V] {
	return func(d *Driver[V]) { d.metrics = m }
}

// WithScratchDir places the pass-1 shovel files under dir instead of next to
// baseFilename, keeping a possibly slow or space-constrained output volume
// free of scratch I/O during ingest.
func WithScratchDir[V any](dir string) Option[V] {
	return func(d *Driver[V]) { d.scratchDir = dir }
}

// New constructs a driver: binds (baseFilename, numShards, processor),
// computes the pre-layout translator, and opens the P shovel appenders.
func New[V any](baseFilename string, numShards int, processor edgevalue.Processor[V], opts ...Option[V]) (*Driver[V], error) {
	if numShards <= 0 {
		return nil, fmt.Errorf("sharder: numShards must be positive, got %d", numShards)
	}

	d := &Driver[V]{
		baseFilename:    baseFilename,
		numShards:       numShards,
		processor:       processor,
		valueSize:       processor.SizeOf(),
		blockSize:       shardenc.DefaultBlockSize,
		subIntervalSize: degree.DefaultSubIntervalSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	pre, err := idtranslate.PreLayout(numShards)
	if err != nil {
		return nil, fmt.Errorf("sharder: build pre-layout translator: %w", err)
	}
	d.preTranslate = pre

	scratchBase := baseFilename
	if d.scratchDir != "" {
		// Suffix with a fresh uuid so concurrent runs sharing --tmp-dir never
		// collide on the same shovel file names.
		runDir := filepath.Join(d.scratchDir, uuid.New().String())
		if err := os.MkdirAll(runDir, 0o755); err != nil {
			return nil, fmt.Errorf("sharder: create scratch dir %s: %w", runDir, err)
		}
		scratchBase = filepath.Join(runDir, filepath.Base(baseFilename))
	}
	shovels, err := shovel.NewSet(scratchBase, numShards, d.valueSize)
	if err != nil {
		return nil, fmt.Errorf("sharder: open shovels: %w", err)
	}
	d.shovels = shovels

	return d, nil
}

// AddEdge is the shovel writer's single operation (component C). If
// src == dst the edge is diverted to the processor's self-loop callback and
// never touches a shovel. Otherwise it is translated through the pre-layout
// translator and appended to the shovel owned by dst mod P (the original
// dst, not its translated id, matching the engine's in-edge partitioning).
func (d *Driver[V]) AddEdge(src, dst uint32, token []byte, hasToken bool) error {
	if src == dst {
		d.numSelfLoops++
		if src > d.maxVertexID {
			d.maxVertexID = src
		}
		if err := d.processor.OnSelfLoop(src, token, hasToken); err != nil {
			return fmt.Errorf("sharder: self-loop processor callback for vertex %d: %w", src, err)
		}
		if d.metrics != nil {
			d.metrics.SelfLoops.Inc()
		}
		return nil
	}

	if src > d.maxVertexID {
		d.maxVertexID = src
	}
	if dst > d.maxVertexID {
		d.maxVertexID = dst
	}

	u := d.preTranslate.Forward(src)
	v := d.preTranslate.Forward(dst)
	shard := int(dst) % d.numShards

	value, err := d.processor.ParseToken(token, hasToken, src, dst)
	if err != nil {
		return fmt.Errorf("sharder: parse token for edge (%d,%d): %w", src, dst, err)
	}
	buf := make([]byte, d.valueSize)
	d.processor.WriteTo(buf, value)

	if err := d.shovels.Append(shard, shovel.PackKey(u, v), buf); err != nil {
		return fmt.Errorf("sharder: append to shard %d shovel: %w", shard, err)
	}

	d.numEdges++
	if d.metrics != nil {
		d.metrics.EdgesIngested.Inc()
	}
	return nil
}

// MaxVertexID returns the largest vertex id observed so far.
func (d *Driver[V]) MaxVertexID() uint32 { return d.maxVertexID }

// NumEdges returns the number of non-self-loop edges ingested so far.
func (d *Driver[V]) NumEdges() int64 { return d.numEdges }

// NumSelfLoops returns the number of self-loops diverted so far.
func (d *Driver[V]) NumSelfLoops() int64 { return d.numSelfLoops }

// Abort discards every shovel written so far without running pass 2. It is
// for callers whose ingest failed, or that only want ingest-time statistics
// (--stats-only), and never intend to call Process.
func (d *Driver[V]) Abort() error {
	d.processed = true
	if err := d.shovels.CloseAll(); err != nil {
		return err
	}
	return d.shovels.DeleteAll()
}

// Process runs pass 2 exactly once: it decides the degree strategy, builds
// the final-layout translator, persists manifests, flushes the shovels,
// then for each shard reads, re-translates, sorts, encodes and (in the
// in-RAM case) accumulates degrees, deleting each shovel as it is consumed.
func (d *Driver[V]) Process() error {
	if d.processed {
		return fmt.Errorf("sharder: Process called more than once")
	}
	d.processed = true

	phases := map[string]time.Duration{}
	chain := continuity.New()

	var finalTranslate *idtranslate.Translate
	var strategy degree.ComputeStrategy
	var acc *degree.Accumulator
	degreeLength := int(d.maxVertexID) + 2*d.numShards

	chain.Step("decide-degree-strategy", func() error {
		start := time.Now()
		defer func() { phases["decide-degree-strategy"] = time.Since(start) }()

		budget := d.memoryBudgetBytes
		if budget == 0 {
			available, err := degree.AvailableMemory()
			if err != nil {
				return err
			}
			budget = available
		}
		strategy = degree.ChooseComputeStrategy(d.maxVertexID, budget)
		klog.Infof("sharder: degree compute strategy: %s (maxVertexId=%s)", strategy, humanize.Comma(int64(d.maxVertexID)))
		if strategy == degree.InRAM {
			acc = degree.NewAccumulator(degreeLength)
		}
		return nil
	})

	chain.Step("build-final-translate", func() error {
		tr, err := idtranslate.FinalLayout(d.maxVertexID, d.numShards)
		if err != nil {
			return err
		}
		finalTranslate = tr
		return nil
	})

	chain.Step("write-manifests", func() error {
		if err := writeIntervalsFile(intervalsPath(d.baseFilename, d.numShards), finalTranslate, d.numShards); err != nil {
			return err
		}
		return writeTranslateFile(translatePath(d.baseFilename, d.numShards), finalTranslate)
	})

	chain.Step("flush-shovels", func() error {
		return d.shovels.CloseAll()
	})

	shardAdjPaths := make([]string, 0, d.numShards)
	for k := 0; k < d.numShards; k++ {
		k := k
		sortPhase := fmt.Sprintf("shard-%d-sort", k)
		encodePhase := fmt.Sprintf("shard-%d-encode", k)

		var keys []uint64
		var values []byte

		chain.Step(sortPhase, func() error {
			start := time.Now()
			defer func() { phases[sortPhase] = time.Since(start) }()

			loadedKeys, loadedValues, n, err := shovel.Load(d.shovels.Path(k), d.valueSize)
			if err != nil {
				return fmt.Errorf("shard %d: load shovel: %w", k, err)
			}
			if n > cosort.MaxRecords {
				return fmt.Errorf("shard %d has %d records, exceeds in-memory ceiling of %d", k, n, cosort.MaxRecords)
			}

			for i, key := range loadedKeys {
				preSrc, preDst := shovel.UnpackKey(key)
				origSrc := d.preTranslate.Backward(preSrc)
				origDst := d.preTranslate.Backward(preDst)
				newSrc := finalTranslate.Forward(origSrc)
				newDst := finalTranslate.Forward(origDst)
				loadedKeys[i] = shovel.PackKey(newSrc, newDst)
			}

			if err := cosort.Sort(loadedKeys, loadedValues, d.valueSize); err != nil {
				return fmt.Errorf("shard %d: co-sort: %w", k, err)
			}
			keys, values = loadedKeys, loadedValues
			return nil
		})

		chain.Step(encodePhase, func() error {
			start := time.Now()
			defer func() { phases[encodePhase] = time.Since(start) }()

			adjPath := adjacencyPath(d.baseFilename, k, d.numShards)
			adjFile, err := createFile(adjPath)
			if err != nil {
				return fmt.Errorf("shard %d: create adjacency stream: %w", k, err)
			}
			if err := shardenc.EncodeAdjacency(adjFile, keys); err != nil {
				_ = adjFile.Close()
				return fmt.Errorf("shard %d: encode adjacency stream: %w", k, err)
			}
			adjInfo, statErr := adjFile.Stat()
			if err := adjFile.Close(); err != nil {
				return fmt.Errorf("shard %d: close adjacency stream: %w", k, err)
			}
			shardAdjPaths = append(shardAdjPaths, adjPath)

			dirPath := blockDirPath(d.baseFilename, d.valueSize, k, d.numShards, d.blockSize)
			if err := shardenc.WriteBlockDir(dirPath, values, d.blockSize); err != nil {
				return fmt.Errorf("shard %d: write edge-data block directory: %w", k, err)
			}
			if d.metrics != nil {
				d.metrics.BytesEdgeDataRaw.Add(float64(len(values)))
				if compressed, err := dirSize(dirPath); err == nil {
					d.metrics.BytesEdgeData.Add(float64(compressed))
				}
			}

			if acc != nil {
				for _, key := range keys {
					newSrc, newDst := shovel.UnpackKey(key)
					acc.Add(newSrc, newDst)
				}
			}

			if err := d.shovels.Delete(k); err != nil {
				return fmt.Errorf("shard %d: delete shovel: %w", k, err)
			}
			if d.metrics != nil {
				d.metrics.ShardsWritten.Inc()
				if statErr == nil {
					d.metrics.BytesAdjacency.Add(float64(adjInfo.Size()))
				}
			}
			klog.Infof("sharder: shard %d encoded (%s edges)", k, humanize.Comma(int64(len(keys))))
			return nil
		})
	}

	var sparse bool
	chain.Step("degree-write", func() error {
		start := time.Now()
		defer func() { phases["degree-write"] = time.Since(start) }()

		sparse = degree.ShouldUseSparseOutput(d.maxVertexID, d.numEdges, d.sparseForced)
		outPath := denseDegreesPath(d.baseFilename)
		if sparse {
			outPath = sparseDegreesPath(d.baseFilename)
		}

		if acc != nil {
			f, err := createFile(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if sparse {
				return acc.WriteSparse(f)
			}
			return acc.WriteDense(f)
		}
		return degree.Replay(shardAdjPaths, degreeLength, d.subIntervalSize, sparse, outPath)
	})

	chain.Step("write-run-summary", func() error {
		durations := make(map[string]int64, len(phases))
		for name, dur := range phases {
			durations[name] = dur.Milliseconds()
		}
		summary := RunSummary{
			NumShards:       d.numShards,
			NumEdges:        d.numEdges,
			NumSelfLoops:    d.numSelfLoops,
			MaxVertexID:     d.maxVertexID,
			DegreeStrategy:  strategy.String(),
			SparseDegrees:   sparse,
			ValueSize:       d.valueSize,
			IntervalLength:  finalTranslate.IntervalLength(),
			PhaseDurationMS: durations,
		}
		return writeRunSummary(runSummaryPath(d.baseFilename, d.numShards), summary)
	})

	if err := chain.Err(); err != nil {
		return fmt.Errorf("sharder: %w", err)
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rpcpool/graphsharder/edgevalue"
	"github.com/rpcpool/graphsharder/metrics"
	"github.com/rpcpool/graphsharder/sharder"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

func newCmd_Shard() *cli.Command {
	var numShards int
	var sparseDegrees bool
	var memoryBudgetMB uint64
	var verify bool
	var statsOnly bool
	var tmpDir string

	return &cli.Command{
		Name:        "shard",
		Usage:       "Partition a tab-separated edge-list file into numbered shards.",
		Description: "Reads a tab-separated \"src\\tdst[\\ttoken]\" edge-list file and writes its adjacency, edge-data, translate and degree shard files.",
		ArgsUsage:   "<edge-list-path> <output-base>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "num-shards",
				Aliases:     []string{"p"},
				Usage:       "number of shards to partition the graph into",
				Value:       1,
				Destination: &numShards,
			},
			&cli.BoolFlag{
				Name:        "sparse-degrees",
				Usage:       "force sparse (id,in,out) degree output instead of the dense table",
				Destination: &sparseDegrees,
			},
			&cli.Uint64Flag{
				Name:        "memory-budget-mb",
				Usage:       "override the available-memory estimate used to choose the degree compute strategy",
				Destination: &memoryBudgetMB,
			},
			&cli.BoolFlag{
				Name:        "verify",
				Usage:       "verify the shard set after writing it",
				Destination: &verify,
			},
			&cli.BoolFlag{
				Name:        "stats-only",
				Usage:       "ingest the edge list and report counts without writing shard files",
				Destination: &statsOnly,
			},
			&cli.StringFlag{
				Name:        "tmp-dir",
				Usage:       "directory to hold pass-1 scratch (shovel) files instead of placing them next to output-base",
				Destination: &tmpDir,
			},
		},
		Action: func(c *cli.Context) error {
			edgeListPath := c.Args().Get(0)
			outputBase := c.Args().Get(1)
			if edgeListPath == "" || outputBase == "" {
				return cli.Exit("both <edge-list-path> and <output-base> are required", 1)
			}

			var opts []sharder.Option[struct{}]
			if sparseDegrees {
				opts = append(opts, sharder.WithSparseForced[struct{}](true))
			}
			if memoryBudgetMB > 0 {
				opts = append(opts, sharder.WithMemoryBudgetBytes[struct{}](memoryBudgetMB*1024*1024))
			}
			if tmpDir != "" {
				opts = append(opts, sharder.WithScratchDir[struct{}](tmpDir))
			}
			m := metrics.New()
			opts = append(opts, sharder.WithMetrics[struct{}](m))

			d, err := sharder.New[struct{}](outputBase, numShards, edgevalue.Empty{}, opts...)
			if err != nil {
				return fmt.Errorf("create driver: %w", err)
			}

			f, err := os.Open(edgeListPath)
			if err != nil {
				_ = d.Abort()
				return fmt.Errorf("open edge list: %w", err)
			}
			startedAt := time.Now()
			linesSkipped, err := d.IngestText(f)
			_ = f.Close()
			if err != nil {
				_ = d.Abort()
				return fmt.Errorf("ingest edge list: %w", err)
			}
			klog.Infof("ingested %s edges (%s self-loops, %s lines skipped) in %s",
				humanize.Comma(d.NumEdges()), humanize.Comma(d.NumSelfLoops()), humanize.Comma(linesSkipped), time.Since(startedAt))

			if statsOnly {
				klog.Infof("stats-only: maxVertexId=%s, numShards=%d", humanize.Comma(int64(d.MaxVertexID())), numShards)
				return d.Abort()
			}

			startedAt = time.Now()
			if err := d.Process(); err != nil {
				return fmt.Errorf("process shards: %w", err)
			}
			klog.Infof("wrote %d shards in %s", numShards, time.Since(startedAt))

			if verify {
				klog.Info("verifying shard set")
				if err := sharder.Verify(outputBase, numShards, edgevalue.Empty{}.SizeOf()); err != nil {
					return cli.Exit(fmt.Errorf("verify failed: %w", err), 1)
				}
				klog.Info("shard set verified")
			}
			return nil
		},
	}
}

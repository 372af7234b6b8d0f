package sharder

import (
	"fmt"
	"os"
)

// createFile creates path for writing, truncating any existing file.
func createFile(path string) (*os.File, error) {
	return os.Create(path)
}

// dirSize sums the sizes of the regular files directly inside dir, used to
// report the on-disk (compressed) size of a block directory for metrics.
func dirSize(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

// Output file path helpers, named per spec §6.

func intervalsPath(base string, numShards int) string {
	return fmt.Sprintf("%s.%d.intervals", base, numShards)
}

func translatePath(base string, numShards int) string {
	return fmt.Sprintf("%s.%d.vtranslate", base, numShards)
}

func denseDegreesPath(base string) string {
	return fmt.Sprintf("%s.degrees.bin", base)
}

func sparseDegreesPath(base string) string {
	return fmt.Sprintf("%s.degreesSparse.bin", base)
}

func adjacencyPath(base string, shard, numShards int) string {
	return fmt.Sprintf("%s.%d.%d.adj", base, shard, numShards)
}

func blockDirPath(base string, valueSize, shard, numShards, blockSize int) string {
	return fmt.Sprintf("%s.edata_java.%dB.%d.%d_blockdir_%d", base, valueSize, shard, numShards, blockSize)
}

func runSummaryPath(base string, numShards int) string {
	return fmt.Sprintf("%s.%d.run.json", base, numShards)
}

package sharder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rpcpool/graphsharder/idtranslate"
)

func writeIntervalsFile(path string, finalTranslate *idtranslate.Translate, numShards int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sharder: create intervals file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	L := finalTranslate.IntervalLength()
	for k := 1; k <= numShards; k++ {
		if _, err := fmt.Fprintln(w, int64(k)*L-1); err != nil {
			return fmt.Errorf("sharder: write intervals file %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("sharder: flush intervals file %s: %w", path, err)
	}
	return nil
}

func writeTranslateFile(path string, finalTranslate *idtranslate.Translate) error {
	if err := os.WriteFile(path, []byte(finalTranslate.StringRepresentation()+"\n"), 0o644); err != nil {
		return fmt.Errorf("sharder: write translate file %s: %w", path, err)
	}
	return nil
}

// RunSummary is the §10 supplemented manifest: a run's own record of what
// happened, never read back by the sharder itself.
type RunSummary struct {
	NumShards       int    `json:"numShards"`
	NumEdges        int64  `json:"numEdges"`
	NumSelfLoops    int64  `json:"numSelfLoops"`
	MaxVertexID     uint32 `json:"maxVertexId"`
	DegreeStrategy  string `json:"degreeStrategy"`
	SparseDegrees   bool   `json:"sparseDegrees"`
	ValueSize       int    `json:"valueSize"`
	IntervalLength  int64  `json:"intervalLength"`
	PhaseDurationMS map[string]int64 `json:"phaseDurationMs"`
}

func writeRunSummary(path string, summary RunSummary) error {
	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("sharder: marshal run summary: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("sharder: write run summary %s: %w", path, err)
	}
	return nil
}

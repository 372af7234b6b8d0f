package sharder

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

const maxLineBufferSize = 4 * 1024 * 1024

// IngestText feeds edges from the line-oriented convenience input format:
// a line is skipped if its length is <= 2 or its first character is '#',
// otherwise it is tab-split; two tokens are "src\tdst" (no edge value),
// three tokens are "src\tdst\ttoken", more tokens are ignored beyond the
// third. Lines that fail to parse as two leading unsigned integers are
// skipped with a warning, per §7's malformed-input-line handling.
func (d *Driver[V]) IngestText(r io.Reader) (linesSkipped int64, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBufferSize)

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) <= 2 || line[0] == '#' {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			linesSkipped++
			klog.Warningf("sharder: skipping line with fewer than 2 tab-separated fields: %q", line)
			continue
		}
		src, errSrc := strconv.ParseUint(fields[0], 10, 32)
		dst, errDst := strconv.ParseUint(fields[1], 10, 32)
		if errSrc != nil || errDst != nil {
			linesSkipped++
			klog.Warningf("sharder: skipping line with non-numeric src/dst: %q", line)
			continue
		}

		var token []byte
		hasToken := false
		if len(fields) >= 3 {
			token = []byte(fields[2])
			hasToken = true
		}

		if err := d.AddEdge(uint32(src), uint32(dst), token, hasToken); err != nil {
			return linesSkipped, fmt.Errorf("sharder: ingest line %q: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return linesSkipped, fmt.Errorf("sharder: scan input: %w", err)
	}
	return linesSkipped, nil
}

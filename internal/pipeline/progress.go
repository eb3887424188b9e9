package pipeline

import (
	"fmt"

	tm "github.com/buger/goterm"
)

// printProgress rewrites a single status line while the batch runs. Debug
// mode logs per-file lines instead, which would fight the rewrite.
func (p *Pipeline) printProgress(current string, stats Stats) {
	if p.cfg.Quiet || p.cfg.Debug {
		return
	}
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Printf(tm.Color(tm.Bold("%d processed / %d conflicts / %d skipped / %d errors / %s"), tm.YELLOW)+" / %s",
		stats.Processed, stats.Conflicts, stats.Skipped, stats.Errors,
		bytesToString(stats.TotalSize), current)
	tm.Flush()
}

func (p *Pipeline) finishProgress() {
	if p.cfg.Quiet || p.cfg.Debug {
		return
	}
	tm.Println()
	tm.Flush()
}

func (p *Pipeline) logSummary(stats Stats) {
	p.log.Success("done: %d processed, %d converted, %d conflicts, %d skipped, %d errors, %s total",
		stats.Processed, stats.Converted, stats.Conflicts, stats.Skipped, stats.Errors,
		bytesToString(stats.TotalSize))
}

func bytesToString(b int64) string {
	const unit = int64(1024)
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := unit, 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

package main

import (
	"fmt"
	"io"

	"github.com/lysgoup/adaptived/engine"
)

const separator = "========================================"

func printBanner(watchDir, cgroupPath string) {
	fmt.Println(separator)
	fmt.Println("Adaptive Eviction Policy Started")
	fmt.Println(separator)
	fmt.Printf("  Watch directory: %s\n", watchDir)
	fmt.Printf("  Cgroup:          %s\n", cgroupPath)
	fmt.Println("  Initial policy:  MRU")
	fmt.Println()
	fmt.Println("Available Policies:")
	fmt.Println("  • MRU         - Most Recently Used")
	fmt.Println("  • FIFO        - First In First Out")
	fmt.Println("  • LRU         - Least Recently Used")
	fmt.Println("  • S3-FIFO     - Small/Main queue FIFO")
	fmt.Println("  • LHD-Simple  - Hit age tracking")
	fmt.Println()
	fmt.Println("Monitoring for intelligent policy switches...")
	fmt.Println("Press Ctrl-C to exit.")
	fmt.Println(separator)
	fmt.Println()
}

func printEvent(w io.Writer, e engine.SwitchEvent) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "POLICY SWITCH DETECTED!")
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "  Time:                %d\n", e.Timestamp)
	fmt.Fprintf(w, "  Old Policy:          %s\n", e.OldPolicy)
	fmt.Fprintf(w, "  New Policy:          %s\n", e.NewPolicy)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance Metrics:")
	fmt.Fprintf(w, "  Hit Rate:            %d%%\n", e.HitRate)
	fmt.Fprintf(w, "  Old Policy Hit Rate: %d%%\n", e.OldPolicyHitRate)
	fmt.Fprintf(w, "  Total Accesses:      %d\n", e.TotalAccesses)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Workload Characteristics:")
	fmt.Fprintf(w, "  One-time Ratio:      %d%%\n", e.OneTimeRatio)
	fmt.Fprintf(w, "  Sequential Ratio:    %d%%\n", e.SequentialRatio)
	fmt.Fprintf(w, "  Avg Hits/Page:       %d\n", e.AvgHitsPerPage)
	fmt.Fprintf(w, "  Avg Reuse Distance:  %d\n", e.AvgReuseDistance)
	fmt.Fprintf(w, "  Dirty Page Ratio:    %d%%\n", e.DirtyRatio)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Working Set Analysis:")
	fmt.Fprintf(w, "  Working Set Size:    %d inodes\n", e.WorkingSetSize)
	fmt.Fprintf(w, "  WS/Cache Ratio:      %d%%\n", e.WorkingSetRatio)
	fmt.Fprintln(w, separator)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Switch Reason:")
	fmt.Fprintf(w, "  → %s\n", switchReason(e))
	fmt.Fprintln(w)
}

// switchReason mirrors the selection cascade's thresholds to explain what
// most likely drove the decision.
func switchReason(e engine.SwitchEvent) string {
	switch {
	case e.WorkingSetRatio > 300:
		return "Working set >> cache size, using scan-friendly policy"
	case e.WorkingSetRatio < 60:
		return "Working set << cache size, using recency-friendly policy"
	case e.SequentialRatio > 80:
		return "High sequential access detected"
	case e.OneTimeRatio > 60 && e.AvgHitsPerPage < 2:
		return "Many one-time accesses (scan workload)"
	case e.AvgHitsPerPage > 5:
		return "Hot working set with high reuse"
	case e.HitRate < 30:
		return "Low hit rate, trying different policy"
	default:
		return "Historical best policy selected"
	}
}

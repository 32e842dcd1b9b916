package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/proto-event-contracts/protoeval/pkg/result"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

const separatorWidth = 60

// StatusLabel returns a colored status token for terminal display.
func StatusLabel(st result.Status) string {
	switch st {
	case result.StatusPass:
		return colorGreen + "PASS" + colorReset
	case result.StatusSkip:
		return colorYellow + "SKIP" + colorReset
	default:
		return colorRed + "FAIL" + colorReset
	}
}

// StatusLabelPlain returns an uncolored status token.
func StatusLabelPlain(st result.Status) string {
	switch st {
	case result.StatusPass:
		return "PASS"
	case result.StatusSkip:
		return "SKIP"
	default:
		return "FAIL"
	}
}

// PrintProgress writes the per-case progress prefix, shown before the agent
// is invoked so long-running cases are visible. Index is 1-based.
func PrintProgress(w io.Writer, index, total int, fixture string) {
	fmt.Fprintf(w, "[%d/%d] %s ... ", index, total, filepath.Base(fixture))
}

// PrintStatus completes a progress line with the case's status and detail.
func PrintStatus(w io.Writer, r result.Result, color bool) {
	label := StatusLabelPlain(r.Status)
	if color {
		label = StatusLabel(r.Status)
	}
	if r.Status == result.StatusSkip {
		fmt.Fprintf(w, "%s (%s)\n", label, r.Detail)
		return
	}
	fmt.Fprintf(w, "%s - %s\n", label, r.Detail)
}

// PrintOutput writes the full captured agent output between separator lines,
// for verbose mode.
func PrintOutput(w io.Writer, output string) {
	sep := strings.Repeat("-", separatorWidth)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", sep, output, sep)
}

// PrintSummary writes the end-of-run summary block: aggregate counts and,
// when any case failed, the list of failing cases with their details.
func PrintSummary(w io.Writer, results []result.Result, color bool) {
	sep := strings.Repeat("=", separatorWidth)
	stats := result.ComputeStats(results)

	fmt.Fprintf(w, "\n%s\n", sep)
	fmt.Fprintf(w, "Results: %d/%d passed", stats.Passed, stats.Total)
	if stats.Failed > 0 {
		if color {
			fmt.Fprintf(w, ", %s%d failed%s", colorRed, stats.Failed, colorReset)
		} else {
			fmt.Fprintf(w, ", %d failed", stats.Failed)
		}
	}
	if stats.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped", stats.Skipped)
	}
	fmt.Fprintln(w)

	if failed := result.Failed(results); len(failed) > 0 {
		fmt.Fprintf(w, "\nFailed cases:\n")
		for _, r := range failed {
			fmt.Fprintf(w, "  - %s: %s\n", r.Case, r.Detail)
		}
	}

	fmt.Fprintf(w, "%s\n", sep)
}

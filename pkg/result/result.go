// Package result holds per-case outcomes and run-level statistics. Results
// are append-only during a run and consumed once by the reporter; nothing is
// persisted across runs.
package result

// Status is the terminal state of a single case.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Result is the outcome of one case. Case is the fixture path as written in
// the case file.
type Result struct {
	Case   string `json:"case"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

// Stats holds aggregate counts for a run.
type Stats struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// ComputeStats tallies results by status.
func ComputeStats(results []Result) Stats {
	s := Stats{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		case StatusSkip:
			s.Skipped++
		}
	}
	return s
}

// Failed returns the results with status fail, preserving order. Skipped
// cases are not failures.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == StatusFail {
			out = append(out, r)
		}
	}
	return out
}

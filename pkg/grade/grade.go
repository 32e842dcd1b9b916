// Package grade implements the two deterministic grading strategies applied
// to captured agent output. Both are pure functions of the output text and
// the case's expectations.
package grade

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/proto-event-contracts/protoeval/pkg/cases"
)

// mustFixPattern matches any spelling of "must-fix" / "must fix".
var mustFixPattern = regexp.MustCompile(`(?i)must[- ]fix`)

// Verdict is the outcome of grading one case.
type Verdict struct {
	Pass   bool
	Detail string
}

// ForCase applies the grading strategy selected by the case's expect_clean
// flag to the given output.
func ForCase(c cases.Case, output string) Verdict {
	if c.ExpectClean {
		return Clean(output)
	}
	return Finding(output, c.Severity, c.Keywords)
}

// Clean grades a case that should produce no findings. It fails if the
// output mentions a must-fix finding in any casing.
func Clean(output string) Verdict {
	if mustFixPattern.MatchString(output) {
		return Verdict{Detail: "expected clean output but found 'must-fix' / 'must fix'"}
	}
	return Verdict{Pass: true, Detail: "clean - no must-fix findings detected"}
}

// Finding grades a case that should produce findings. Every keyword must
// appear in the output and the expected severity label must be mentioned,
// both matched case-insensitively.
func Finding(output, severity string, keywords []string) Verdict {
	lower := strings.ToLower(output)

	var missing []string
	for _, kw := range keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			missing = append(missing, kw)
		}
	}

	severityPattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(severity))
	severityFound := severityPattern.MatchString(output)

	var errs []string
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("missing keywords: %v", missing))
	}
	if !severityFound {
		errs = append(errs, fmt.Sprintf("severity %q not found in output", severity))
	}

	if len(errs) > 0 {
		return Verdict{Detail: strings.Join(errs, "; ")}
	}
	return Verdict{Pass: true, Detail: fmt.Sprintf("found all keywords %v with severity %q", keywords, severity)}
}

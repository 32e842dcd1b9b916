// Package runner drives the eval loop: for each case, resolve the fixture,
// invoke the agent, grade the output, and record a result. Cases run
// strictly one after another in input order.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/proto-event-contracts/protoeval/pkg/agent"
	"github.com/proto-event-contracts/protoeval/pkg/cases"
	"github.com/proto-event-contracts/protoeval/pkg/grade"
	"github.com/proto-event-contracts/protoeval/pkg/result"
)

// StartFunc is called before a case is graded, with a 1-based index.
type StartFunc func(index, total int, c cases.Case)

// DoneFunc is called after a case's result is recorded. Output is the
// captured agent text; it is empty for skipped cases.
type DoneFunc func(index, total int, r result.Result, output string)

// Runner executes cases sequentially through an Invoker.
type Runner struct {
	Invoker    agent.Invoker
	FixtureDir string
	Model      string
	Log        logrus.FieldLogger

	// OnStart and OnDone hook the reporter into the run loop.
	OnStart StartFunc
	OnDone  DoneFunc
}

// Run executes all cases in order and returns one result per processed case.
// A missing fixture records a skip without invoking the agent; a timeout or
// grading miss records a failure and the run continues. An unresolvable
// agent binary aborts the run immediately, returning the results recorded
// so far alongside the error.
func (r *Runner) Run(ctx context.Context, cs []cases.Case) ([]result.Result, error) {
	log := r.Log
	if log == nil {
		log = logrus.New()
	}

	results := make([]result.Result, 0, len(cs))
	total := len(cs)

	for i, c := range cs {
		if r.OnStart != nil {
			r.OnStart(i+1, total, c)
		}

		fixturePath := c.Fixture
		if r.FixtureDir != "" {
			fixturePath = filepath.Join(r.FixtureDir, c.Fixture)
		}

		if _, err := os.Stat(fixturePath); err != nil {
			log.WithField("fixture", fixturePath).Debug("fixture missing, skipping case")
			res := result.Result{Case: c.Fixture, Status: result.StatusSkip, Detail: "fixture not found"}
			results = append(results, res)
			if r.OnDone != nil {
				r.OnDone(i+1, total, res, "")
			}
			continue
		}

		log.WithFields(logrus.Fields{"fixture": fixturePath, "mode": c.Mode()}).Debug("invoking agent")
		inv, err := r.Invoker.Invoke(ctx, fixturePath, r.Model)
		if err != nil {
			if errors.Is(err, agent.ErrAgentNotFound) {
				return results, err
			}

			detail := "agent timed out"
			if !errors.Is(err, agent.ErrTimeout) {
				detail = fmt.Sprintf("agent invocation failed: %v", err)
			}
			res := result.Result{Case: c.Fixture, Status: result.StatusFail, Detail: detail}
			results = append(results, res)
			if r.OnDone != nil {
				r.OnDone(i+1, total, res, inv.Output)
			}
			continue
		}

		verdict := grade.ForCase(c, inv.Output)
		res := result.Result{Case: c.Fixture, Status: result.StatusPass, Detail: verdict.Detail}
		if !verdict.Pass {
			res.Status = result.StatusFail
		}
		log.WithFields(logrus.Fields{
			"fixture":    fixturePath,
			"status":     res.Status,
			"output_len": len(inv.Output),
		}).Debug("case graded")

		results = append(results, res)
		if r.OnDone != nil {
			r.OnDone(i+1, total, res, inv.Output)
		}
	}

	return results, nil
}

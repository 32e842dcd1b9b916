package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/proto-event-contracts/protoeval/pkg/agent"
	"github.com/proto-event-contracts/protoeval/pkg/cases"
	"github.com/proto-event-contracts/protoeval/pkg/result"
)

// fakeInvoker is a deterministic test double for agent.Invoker. It records
// the order of invocations by fixture basename.
type fakeInvoker struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
	model   string
}

func (f *fakeInvoker) Invoke(_ context.Context, fixturePath, modelOverride string) (agent.Invocation, error) {
	name := filepath.Base(fixturePath)
	f.calls = append(f.calls, name)
	f.model = modelOverride
	if err := f.errs[name]; err != nil {
		return agent.Invocation{}, err
	}
	return agent.Invocation{Output: f.outputs[name]}, nil
}

// writeFixtures creates empty fixture files and returns their directory.
func writeFixtures(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("syntax = \"proto3\";\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRun_EndToEnd(t *testing.T) {
	dir := writeFixtures(t, "clean.proto", "good.proto", "bad.proto")

	fi := &fakeInvoker{
		outputs: map[string]string{
			"clean.proto": "The file is clean. No findings.",
			"good.proto":  "Found should-fix issue: foo present, bar present",
			"bad.proto":   "Found should-fix issue: foo present",
		},
	}

	cs := []cases.Case{
		{Fixture: "clean.proto", ExpectClean: true},
		{Fixture: "good.proto", Severity: "should-fix", Keywords: []string{"foo", "bar"}},
		{Fixture: "bad.proto", Severity: "should-fix", Keywords: []string{"foo", "bar"}},
	}

	r := &Runner{Invoker: fi, FixtureDir: dir}
	results, err := r.Run(context.Background(), cs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	wantStatus := []result.Status{result.StatusPass, result.StatusPass, result.StatusFail}
	for i, want := range wantStatus {
		if results[i].Status != want {
			t.Errorf("results[%d].Status = %q, want %q (detail: %s)", i, results[i].Status, want, results[i].Detail)
		}
	}

	stats := result.ComputeStats(results)
	if stats.Passed != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 2 passed / 1 failed", stats)
	}

	// Cases run strictly in input order.
	wantCalls := []string{"clean.proto", "good.proto", "bad.proto"}
	if !reflect.DeepEqual(fi.calls, wantCalls) {
		t.Errorf("invocation order = %v, want %v", fi.calls, wantCalls)
	}
}

func TestRun_MissingFixtureSkipsWithoutInvoking(t *testing.T) {
	dir := writeFixtures(t, "present.proto")

	fi := &fakeInvoker{
		outputs: map[string]string{"present.proto": "clean, nothing to report"},
	}

	cs := []cases.Case{
		{Fixture: "absent.proto", ExpectClean: true},
		{Fixture: "present.proto", ExpectClean: true},
	}

	r := &Runner{Invoker: fi, FixtureDir: dir}
	results, err := r.Run(context.Background(), cs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if results[0].Status != result.StatusSkip {
		t.Errorf("results[0].Status = %q, want skip", results[0].Status)
	}
	if results[0].Detail != "fixture not found" {
		t.Errorf("results[0].Detail = %q, want %q", results[0].Detail, "fixture not found")
	}
	if results[1].Status != result.StatusPass {
		t.Errorf("results[1].Status = %q, want pass", results[1].Status)
	}

	// The missing fixture must never reach the invoker.
	if !reflect.DeepEqual(fi.calls, []string{"present.proto"}) {
		t.Errorf("invocations = %v, want only present.proto", fi.calls)
	}
}

func TestRun_TimeoutFailsCaseAndContinues(t *testing.T) {
	dir := writeFixtures(t, "slow.proto", "fast.proto")

	fi := &fakeInvoker{
		outputs: map[string]string{"fast.proto": "clean"},
		errs:    map[string]error{"slow.proto": agent.ErrTimeout},
	}

	cs := []cases.Case{
		{Fixture: "slow.proto", ExpectClean: true},
		{Fixture: "fast.proto", ExpectClean: true},
	}

	r := &Runner{Invoker: fi, FixtureDir: dir}
	results, err := r.Run(context.Background(), cs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if results[0].Status != result.StatusFail {
		t.Errorf("results[0].Status = %q, want fail", results[0].Status)
	}
	if results[0].Detail != "agent timed out" {
		t.Errorf("results[0].Detail = %q, want %q", results[0].Detail, "agent timed out")
	}
	if results[1].Status != result.StatusPass {
		t.Errorf("results[1].Status = %q, want pass after timeout", results[1].Status)
	}
}

func TestRun_AgentNotFoundAbortsRun(t *testing.T) {
	dir := writeFixtures(t, "a.proto", "b.proto")

	fi := &fakeInvoker{
		errs: map[string]error{"a.proto": agent.ErrAgentNotFound},
	}

	cs := []cases.Case{
		{Fixture: "a.proto", ExpectClean: true},
		{Fixture: "b.proto", ExpectClean: true},
	}

	r := &Runner{Invoker: fi, FixtureDir: dir}
	results, err := r.Run(context.Background(), cs)
	if !errors.Is(err, agent.ErrAgentNotFound) {
		t.Fatalf("Run() error = %v, want ErrAgentNotFound", err)
	}

	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0 recorded before abort", len(results))
	}
	if !reflect.DeepEqual(fi.calls, []string{"a.proto"}) {
		t.Errorf("invocations = %v, want run aborted after a.proto", fi.calls)
	}
}

func TestRun_ModelOverrideForwarded(t *testing.T) {
	dir := writeFixtures(t, "a.proto")

	fi := &fakeInvoker{outputs: map[string]string{"a.proto": "clean"}}

	r := &Runner{Invoker: fi, FixtureDir: dir, Model: "sonnet"}
	if _, err := r.Run(context.Background(), []cases.Case{{Fixture: "a.proto", ExpectClean: true}}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if fi.model != "sonnet" {
		t.Errorf("model override = %q, want %q", fi.model, "sonnet")
	}
}

func TestRun_Callbacks(t *testing.T) {
	dir := writeFixtures(t, "a.proto")

	fi := &fakeInvoker{outputs: map[string]string{"a.proto": "agent text here"}}

	var startIdx, doneIdx, doneTotal int
	var doneOutput string
	r := &Runner{
		Invoker:    fi,
		FixtureDir: dir,
		OnStart: func(index, total int, c cases.Case) {
			startIdx = index
		},
		OnDone: func(index, total int, res result.Result, output string) {
			doneIdx = index
			doneTotal = total
			doneOutput = output
		},
	}

	if _, err := r.Run(context.Background(), []cases.Case{{Fixture: "a.proto", ExpectClean: true}}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if startIdx != 1 {
		t.Errorf("OnStart index = %d, want 1", startIdx)
	}
	if doneIdx != 1 || doneTotal != 1 {
		t.Errorf("OnDone index/total = %d/%d, want 1/1", doneIdx, doneTotal)
	}
	if doneOutput != "agent text here" {
		t.Errorf("OnDone output = %q, want captured agent text", doneOutput)
	}
}

package doc

import (
	"fmt"
	"time"

	serr "stof/errors"
	"stof/graph"
	"stof/value"
)

// walk visits start and every node reachable below it exactly once.
func (d *Document) walk(start value.NodeID, visit func(value.NodeID)) {
	visit(start)
	n, ok := d.Graph.Node(start)
	if !ok {
		return
	}
	for _, c := range n.Children {
		d.walk(c, visit)
	}
}

func hasAnyAttr(fn *graph.Function, attrs []string) bool {
	for _, a := range attrs {
		if _, ok := fn.Attributes[a]; ok {
			return true
		}
	}
	return false
}

// Run invokes every function in the graph carrying any attribute in
// attrs (default {"main"}), returning a summary map of how many ran and
// any errors they raised (spec §6's "run(attributeSet?) -> summary |
// Error").
func (d *Document) Run(attrs []string) (value.Value, *serr.Error) {
	if len(attrs) == 0 {
		attrs = []string{"main"}
	}
	pid := d.Scheduler.NewPID()
	ran := 0
	var failures []value.Value
	for _, root := range d.Graph.Roots() {
		d.walk(root, func(node value.NodeID) {
			for _, fn := range d.Graph.FunctionsOf(node) {
				if !hasAnyAttr(fn, attrs) {
					continue
				}
				ran++
				if _, err := d.Scheduler.CallFunction(pid, node, fn.Name, nil); err != nil {
					failures = append(failures, value.Str(err.Error()))
				}
			}
		})
	}
	summary := value.NewMap()
	summary.MapRef().Set(value.Str("ran"), value.Int(int64(ran)))
	summary.MapRef().Set(value.Str("failed"), value.Int(int64(len(failures))))
	summary.MapRef().Set(value.Str("errors"), value.List(failures))
	return summary, nil
}

// Call invokes the function named by a dotted path with args, returning
// its value (spec §6's "call(path, args) -> Value | Error").
func (d *Document) Call(path string, args []value.Value) (value.Value, *serr.Error) {
	container, name, ok := splitContainerPath(path)
	if !ok {
		return value.Void(), serr.New(0, serr.KindCallStackError, "invalid function path %q", path)
	}
	node, ok := d.Graph.FindNode(d.Graph.MainRoot(), container)
	if !ok {
		return value.Void(), serr.New(0, serr.KindCallStackError, "node %q not found", container)
	}
	if _, _, ok := d.Graph.FunctionByName(node, name); !ok {
		return value.Void(), serr.New(0, serr.KindCallStackError, "function %q not found", path)
	}
	pid := d.Scheduler.NewPID()
	return d.Scheduler.CallFunction(pid, node, name, args)
}

func splitContainerPath(path string) (container, name string, ok bool) {
	last := -1
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			last = i
		}
	}
	if last < 0 {
		return "", path, path != ""
	}
	return path[:last], path[last+1:], path[last+1:] != ""
}

// TestResult is one executed `test`-attributed function's outcome.
type TestResult struct {
	Path     string
	Ok       bool
	Message  string
	Duration time.Duration
	Profiled bool
	Iters    int64
	NsPerOp  int64
}

// TestReport is run_tests' summary (spec §7's "overall test result" line
// and §8 invariant 6: Passed+Failed == Total).
type TestReport struct {
	Results []TestResult
	Passed  int
	Failed  int
}

func (r *TestReport) String() string {
	status := "ok"
	if r.Failed > 0 {
		status = "failed"
	}
	return fmt.Sprintf("test result: %s. %d passed; %d failed", status, r.Passed, r.Failed)
}

// RunTests executes every function carrying a `test` attribute, rooted
// at node (the whole document when hasNode is false), comparing its
// return value against the attribute's expected value when one is given
// (a Bool attribute value, as written by a bare `#[test]`, is a marker
// only and is not compared).
// throw controls whether a failure here also returns a non-nil *serr.
// Error carrying the report's summary line, for a CLI's nonzero-exit
// policy (spec §8 invariant 6).
func (d *Document) RunTests(throw bool, node value.NodeID, hasNode bool) (*TestReport, *serr.Error) {
	starts := d.Graph.Roots()
	if hasNode {
		starts = []value.NodeID{node}
	}
	pid := d.Scheduler.NewPID()
	report := &TestReport{}
	for _, start := range starts {
		d.walk(start, func(n value.NodeID) {
			for _, fn := range d.Graph.FunctionsOf(n) {
				if !fn.IsTest() {
					continue
				}
				report.Results = append(report.Results, d.runOneTest(pid, n, fn))
			}
		})
	}
	for _, r := range report.Results {
		if r.Ok {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	if throw && report.Failed > 0 {
		return report, serr.New(pid, serr.KindCallStackError, "%s", report.String())
	}
	return report, nil
}

func (d *Document) runOneTest(pid uint64, node value.NodeID, fn *graph.Function) TestResult {
	path := d.Graph.Path(node) + "." + fn.Name
	iters, profiled := fn.ProfileIterations()
	if !profiled {
		iters = 1
	}
	started := time.Now()
	var lastErr *serr.Error
	var lastVal value.Value
	for i := int64(0); i < iters; i++ {
		v, err := d.Scheduler.CallFunction(pid, node, fn.Name, nil)
		lastVal, lastErr = v, err
		if err != nil {
			break
		}
	}
	elapsed := time.Since(started)

	res := TestResult{Path: path, Duration: elapsed, Profiled: profiled, Iters: iters}
	if profiled && iters > 0 {
		res.NsPerOp = elapsed.Nanoseconds() / iters
	}

	if expectedKind, ok := fn.ErrorsKind(); ok {
		if lastErr == nil || string(lastErr.Kind) != expectedKind {
			res.Ok = false
			res.Message = fmt.Sprintf("expected error kind %q, got %v", expectedKind, lastErr)
			return res
		}
		res.Ok = true
		return res
	}
	if lastErr != nil {
		res.Ok = false
		res.Message = lastErr.Error()
		return res
	}
	if expected, ok := fn.TestExpected(); ok && expected.Kind != value.KindBool {
		if !value.Equal(lastVal, expected) {
			res.Ok = false
			res.Message = fmt.Sprintf("expected %s, got %s", expected.String(), lastVal.String())
			return res
		}
	}
	res.Ok = true
	return res
}

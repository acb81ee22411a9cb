package validate

import (
	"fmt"
	"strings"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusSkip Status = "SKIP"
)

// Result is the outcome of one named check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

func pass(name, detail string) Result {
	return Result{Name: name, Status: StatusPass, Detail: detail}
}

func fail(name, format string, args ...any) Result {
	return Result{Name: name, Status: StatusFail, Detail: fmt.Sprintf(format, args...)}
}

func skip(name, reason string) Result {
	return Result{Name: name, Status: StatusSkip, Detail: reason}
}

// Report collects check results and decides the overall verdict.
type Report struct {
	Results []Result
}

func (r *Report) add(result Result) {
	r.Results = append(r.Results, result)
}

func (r *Report) count(status Status) int {
	n := 0
	for _, result := range r.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}

// Failed reports whether the run should exit non-zero. In strict mode a
// skipped check counts as a failure, so a partial environment cannot
// pass silently.
func (r *Report) Failed(strict bool) bool {
	if r.count(StatusFail) > 0 {
		return true
	}
	return strict && r.count(StatusSkip) > 0
}

// Render formats the report for terminal output.
func (r *Report) Render() string {
	var b strings.Builder
	width := 0
	for _, result := range r.Results {
		if len(result.Name) > width {
			width = len(result.Name)
		}
	}
	for _, result := range r.Results {
		fmt.Fprintf(&b, "%-4s  %-*s  %s\n", result.Status, width, result.Name, result.Detail)
	}
	fmt.Fprintf(&b, "\n%d checks: %d passed, %d failed, %d skipped\n",
		len(r.Results), r.count(StatusPass), r.count(StatusFail), r.count(StatusSkip))
	return b.String()
}

package preflight

import (
	"fmt"
	"strings"

	"silencescan/internal/config"
	"silencescan/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory and binary checks for the given config.
// Optional binaries that are missing pass with an explanatory detail.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return append(DirectoryChecks(cfg), DependencyResults(CheckSystemDeps(cfg))...)
}

// DirectoryChecks verifies the input directory and the report destination.
func DirectoryChecks(cfg *config.Config) []Result {
	return []Result{
		CheckDirectoryAccess("Input directory", cfg.Paths.InputDir, ReadAccess),
		CheckReportDirectory(cfg.Paths.ReportFile),
	}
}

// DependencyResults converts binary statuses into check results.
func DependencyResults(statuses []deps.Status) []Result {
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		results = append(results, fromStatus(status))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Summarize joins failed results into a single line for error messages.
func Summarize(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return strings.Join(parts, "; ")
}

func fromStatus(status deps.Status) Result {
	if status.Available {
		return Result{Name: status.Name, Passed: true, Detail: status.Command}
	}
	if status.Optional {
		return Result{Name: status.Name, Passed: true, Detail: status.Detail + " (optional)"}
	}
	return Result{Name: status.Name, Detail: status.Detail}
}

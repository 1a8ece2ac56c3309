package checker

import "fmt"

// FileResult is the outcome of checking a single file.
type FileResult struct {
	// File is the path of the checked script.
	File string `json:"file"`

	// BareTables lists table references not wrapped in a source() or
	// ref() macro, sorted and unique. Empty for clean files.
	BareTables []string `json:"bareTables,omitempty"`

	// Err is set when the file could not be read, rendered or parsed.
	// Such a failure is local to the file and counts toward the failing
	// aggregate status.
	Err error `json:"-"`
}

// Failed reports whether this file contributes to a failing run.
func (r FileResult) Failed() bool {
	return r.Err != nil || len(r.BareTables) > 0
}

// Summary provides aggregate statistics about a run.
type Summary struct {
	// Files is the number of files checked.
	Files int `json:"files"`

	// Violations is the number of files containing bare table references.
	Violations int `json:"violations"`

	// ParseErrors is the number of files that failed to read or parse.
	ParseErrors int `json:"parseErrors"`
}

// RunResult aggregates the per-file results of a check run.
type RunResult struct {
	Results []FileResult `json:"results"`
	Summary Summary      `json:"summary"`
}

// add folds a file result into the aggregate.
func (r *RunResult) add(result FileResult) {
	r.Results = append(r.Results, result)
	r.Summary.Files++
	if result.Err != nil {
		r.Summary.ParseErrors++
	} else if len(result.BareTables) > 0 {
		r.Summary.Violations++
	}
}

// IsClean reports whether every checked file passed.
func (r *RunResult) IsClean() bool {
	return r.Summary.Violations == 0 && r.Summary.ParseErrors == 0
}

// Status returns the process exit status for the run: 0 when every file is
// clean, 1 when any file has bare tables or failed to parse.
func (r *RunResult) Status() int {
	if r.IsClean() {
		return 0
	}
	return 1
}

// String returns a human-readable summary of the run.
//
// Example output:
//
//	Checked 12 file(s): 2 with bare tables, 1 parse error(s)
func (r *RunResult) String() string {
	return fmt.Sprintf(
		"Checked %d file(s): %d with bare tables, %d parse error(s)",
		r.Summary.Files,
		r.Summary.Violations,
		r.Summary.ParseErrors,
	)
}

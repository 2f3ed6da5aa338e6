package model

import "time"

// SearchJob carries one start/target request through the pipeline and
// collects everything the reports need.
type SearchJob struct {
	// StartInput is the start page as the user typed it.
	// Empty means a random start page.
	StartInput string `json:"start_input"`

	// TargetInput is the target page as the user typed it.
	TargetInput string `json:"target_input"`

	// Start is the canonical start page, set by the resolve step.
	Start PageID `json:"start"`

	// Target is the canonical target page, set by the resolve step.
	Target PageID `json:"target"`

	// BaseURL is the wiki the search ran against, used to build links.
	BaseURL string `json:"base_url,omitempty"`

	// DateStarted is when the job was created.
	DateStarted time.Time `json:"date_started"`

	// Result is set by the search step.
	Result *SearchResult `json:"result,omitempty"`

	// PathID is the database row of the saved path, zero when not saved.
	PathID int64 `json:"path_id,omitempty"`

	// TimedOut is true if the job was cancelled before completion.
	TimedOut bool `json:"timed_out"`

	// CompletedSteps lists the pipeline steps that ran.
	CompletedSteps []string `json:"completed_steps,omitempty"`

	// Error is the error that stopped the job.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for reports.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewSearchJob creates a job for the given raw start and target.
func NewSearchJob(start, target string) *SearchJob {
	return &SearchJob{
		StartInput:  start,
		TargetInput: target,
		DateStarted: time.Now(),
	}
}

// Label returns a short "start -> target" description for logs and progress.
func (j *SearchJob) Label() string {
	start := j.StartInput
	if !j.Start.IsZero() {
		start = j.Start.String()
	}
	if start == "" {
		start = "(random)"
	}
	target := j.TargetInput
	if !j.Target.IsZero() {
		target = j.Target.String()
	}
	return start + " -> " + target
}

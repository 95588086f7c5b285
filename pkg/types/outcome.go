package types

// Verdict is the per-plugin result category for one reconciliation run.
type Verdict string

const (
	// VerdictInstalled means the plugin was cloned (or re-cloned after
	// corruption) and checked out at the target revision.
	VerdictInstalled Verdict = "installed"

	// VerdictUpdated means an existing healthy clone was moved to the
	// target revision.
	VerdictUpdated Verdict = "updated"

	// VerdictSkipped means the plugin was already at the target revision
	// and no git operation was performed.
	VerdictSkipped Verdict = "skipped"

	// VerdictFailed means a git or filesystem operation failed; the cause
	// is preserved on the outcome and the run continues with the next
	// plugin.
	VerdictFailed Verdict = "failed"
)

// Outcome is the immutable per-plugin result of one reconciliation.
type Outcome struct {
	Spec    PluginSpec `json:"spec"`
	Verdict Verdict    `json:"verdict"`

	// Detail is a one-line human-readable account of what happened.
	Detail string `json:"detail,omitempty"`

	// Cause carries the underlying failure when Verdict is VerdictFailed.
	Cause error `json:"-"`

	// Record is the ledger entry to upsert for this plugin. Nil exactly
	// when the verdict is failed: a failed plugin never touches the ledger.
	Record *InstalledRecord `json:"-"`
}

// Summary aggregates outcome counts for one run.
type Summary struct {
	Installed int `json:"installed"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Add counts one outcome.
func (s *Summary) Add(o Outcome) {
	switch o.Verdict {
	case VerdictInstalled:
		s.Installed++
	case VerdictUpdated:
		s.Updated++
	case VerdictSkipped:
		s.Skipped++
	case VerdictFailed:
		s.Failed++
	}
}

// Total returns the number of counted outcomes.
func (s Summary) Total() int {
	return s.Installed + s.Updated + s.Skipped + s.Failed
}

// RunStatus is the aggregate result of a whole run, mapped to the process
// exit code.
type RunStatus int

const (
	// StatusSuccess: every plugin reconciled without failure.
	StatusSuccess RunStatus = iota

	// StatusConfigError: the declared set was invalid (malformed spec,
	// duplicate, missing dependency, cycle). No plugin was touched.
	StatusConfigError

	// StatusPartialFailure: at least one plugin failed, the rest were
	// still processed.
	StatusPartialFailure

	// StatusFatal: an unexpected error outside the per-plugin policy.
	StatusFatal
)

// ExitCode maps the run status to the conventional process exit code.
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusConfigError:
		return 1
	case StatusPartialFailure:
		return 2
	default:
		return 3
	}
}

func (s RunStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusConfigError:
		return "config-error"
	case StatusPartialFailure:
		return "partial-failure"
	default:
		return "fatal"
	}
}

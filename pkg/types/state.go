package types

import "encoding/json"

// PluginState classifies a plugin's on-disk state relative to its spec.
// Classification runs from live inspection on every reconciliation; there is
// no cached or mode-dependent variant of this check.
type PluginState int

const (
	// StateAbsent: never installed, no record and no directory.
	StateAbsent PluginState = iota

	// StateCorrupt: something is there but unusable: the recorded
	// directory is gone, or git cannot report a revision for it, or
	// reports something that is not a revision.
	StateCorrupt

	// StateWrongRevision: a healthy clone at some other revision.
	StateWrongRevision

	// StateCorrect: a healthy clone at the target revision.
	StateCorrect
)

// MarshalJSON emits the state name, not the enum ordinal.
func (s PluginState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s PluginState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateCorrupt:
		return "corrupt"
	case StateWrongRevision:
		return "wrong-revision"
	case StateCorrect:
		return "ok"
	default:
		return "unknown"
	}
}

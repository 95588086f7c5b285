package types

import "time"

// LockFormatVersion is the ledger format this build reads and writes.
// Loading a lock file with a different version is rejected.
const LockFormatVersion = 1

// InstalledRecord is one observed fact: a plugin believed to be on disk.
// Created when a plugin first becomes present, updated in place when its
// revision changes, removed when the plugin is pruned.
type InstalledRecord struct {
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Revision    string    `json:"revision"`
	InstalledAt time.Time `json:"installedAt"`
	Path        string    `json:"path"`
}

// Ledger is the full set of InstalledRecords plus format metadata. It is a
// snapshot: each run reads one, produces a new one, and the caller persists
// it. Names are unique within a ledger.
type Ledger struct {
	Version   int               `json:"version"`
	Generated time.Time         `json:"generated"`
	Plugins   []InstalledRecord `json:"plugins"`
}

// NewLedger returns an empty ledger at the current format version.
func NewLedger() Ledger {
	return Ledger{Version: LockFormatVersion}
}

// Find returns the record for name, or nil if the plugin is not recorded.
func (l *Ledger) Find(name string) *InstalledRecord {
	for i := range l.Plugins {
		if l.Plugins[i].Name == name {
			return &l.Plugins[i]
		}
	}
	return nil
}

// Upsert inserts rec or replaces the existing record with the same name.
// Insertion order is preserved for existing entries so the lock file diffs
// cleanly under version control.
func (l *Ledger) Upsert(rec InstalledRecord) {
	for i := range l.Plugins {
		if l.Plugins[i].Name == rec.Name {
			l.Plugins[i] = rec
			return
		}
	}
	l.Plugins = append(l.Plugins, rec)
}

// Remove deletes the record for name, reporting whether one was present.
func (l *Ledger) Remove(name string) bool {
	for i := range l.Plugins {
		if l.Plugins[i].Name == name {
			l.Plugins = append(l.Plugins[:i], l.Plugins[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the ledger so a run can produce a
// new snapshot without mutating the previous one.
func (l *Ledger) Clone() Ledger {
	out := Ledger{Version: l.Version, Generated: l.Generated}
	if l.Plugins != nil {
		out.Plugins = make([]InstalledRecord, len(l.Plugins))
		copy(out.Plugins, l.Plugins)
	}
	return out
}

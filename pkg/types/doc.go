// Package types defines the core types and interfaces used throughout doplug.
// This includes the PluginSpec/InstalledRecord/Ledger data model, the
// per-plugin reconciliation outcome types, and the FS and VCS interfaces
// the reconciliation engine is written against.
package types

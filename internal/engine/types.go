package engine

import "github.com/danieljhkim/modclash/internal/conflict"

// GroupRoot names a directory whose files form one group.
type GroupRoot struct {
	// Name labels the group in reports. It must be unique within a request.
	Name string `json:"name"`

	// Root is the directory to scan.
	Root string `json:"root"`
}

// DetectRequest represents a request to check group roots for shared files.
type DetectRequest struct {
	// Groups is the ordered list of group roots. Order decides the order of
	// group names inside each conflict entry.
	Groups []GroupRoot

	// IgnoreExtensions lists file extensions to skip, case-insensitively
	IgnoreExtensions []string

	// IgnorePatterns lists glob patterns of member paths to skip
	IgnorePatterns []string

	// GroupLabel names groups in the report (default "Directories")
	GroupLabel string

	// MemberLabel names members in the report (default "Files")
	MemberLabel string

	// Workers bounds concurrent scans; zero means one per CPU
	Workers int
}

// SkippedEntry is an entry a scan could not read.
type SkippedEntry struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// GroupSummary describes the scan of one group root.
type GroupSummary struct {
	// Name is the group name
	Name string `json:"name"`

	// Root is the scanned directory (empty for named-set checks)
	Root string `json:"root,omitempty"`

	// Members is the number of members kept
	Members int `json:"members"`

	// Ignored is the number of entries removed by the filters
	Ignored int `json:"ignored"`

	// Skipped lists unreadable entries
	Skipped []SkippedEntry `json:"skipped,omitempty"`
}

// DetectResult represents the outcome of a detection.
type DetectResult struct {
	// GroupLabel is the label used in the report
	GroupLabel string `json:"group_label"`

	// MemberLabel is the label used in the report
	MemberLabel string `json:"member_label"`

	// Groups summarizes each group in request order
	Groups []GroupSummary `json:"groups"`

	// Conflicts lists shared members sorted by member (empty if none)
	Conflicts []conflict.Entry `json:"conflicts"`
}

// HasConflicts returns true if any member is owned by more than one group.
func (r *DetectResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

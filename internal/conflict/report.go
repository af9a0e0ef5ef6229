package conflict

import (
	"strings"
)

// ConflictError reports members owned by more than one group.
// It is a business outcome: the caller must change its inputs before retrying.
type ConflictError struct {
	// GroupLabel names the kind of group, e.g. "Directories".
	GroupLabel string `json:"group_label"`

	// MemberLabel names the kind of member, e.g. "Files".
	MemberLabel string `json:"member_label"`

	// Entries is the list of conflicts, sorted by member.
	Entries []Entry `json:"entries"`
}

// Report returns nil when entries is empty and a *ConflictError otherwise.
func Report(groupLabel, memberLabel string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return &ConflictError{
		GroupLabel:  groupLabel,
		MemberLabel: memberLabel,
		Entries:     entries,
	}
}

// Error renders one line per conflicting member:
//
//	Files conflicts found:
//	  shared/texture.dds: ModA, ModB
func (e *ConflictError) Error() string {
	var b strings.Builder
	b.WriteString(e.MemberLabel)
	b.WriteString(" conflicts found:")
	for _, entry := range e.Entries {
		b.WriteString("\n  ")
		b.WriteString(entry.Member)
		b.WriteString(": ")
		b.WriteString(strings.Join(entry.Groups, ", "))
	}
	return b.String()
}

// Is reports whether target is ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Len returns the number of conflicting members.
func (e *ConflictError) Len() int {
	return len(e.Entries)
}

// Members returns the conflicting members in report order.
func (e *ConflictError) Members() []string {
	members := make([]string, 0, len(e.Entries))
	for _, entry := range e.Entries {
		members = append(members, entry.Member)
	}
	return members
}

// Groups returns the distinct groups involved in any conflict, in order of
// first appearance in the report.
func (e *ConflictError) Groups() []string {
	seen := make(map[string]struct{})
	var groups []string
	for _, entry := range e.Entries {
		for _, g := range entry.Groups {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			groups = append(groups, g)
		}
	}
	return groups
}

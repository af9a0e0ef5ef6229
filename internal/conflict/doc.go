// Package conflict detects members claimed by more than one group.
//
// A group is a named set of member strings. For overlay installs the groups
// are package directories and the members are the relative file paths they
// would install, but nothing here knows about files: callers pass two display
// labels that name the groups and members in rendered reports.
//
// Key responsibilities:
//   - Build a reverse index from member to owning groups in one pass
//   - Extract every member owned by two or more groups, sorted by member
//   - Render conflicts as a structured ConflictError
package conflict

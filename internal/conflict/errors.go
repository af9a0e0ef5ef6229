package conflict

import "errors"

var (
	// ErrConflict matches any *ConflictError via errors.Is.
	ErrConflict = errors.New("conflict detected")

	// ErrDuplicateGroup indicates two groups in one detection share a name.
	ErrDuplicateGroup = errors.New("duplicate group name")

	// ErrEmptyGroupName indicates a group without a name.
	ErrEmptyGroupName = errors.New("empty group name")
)

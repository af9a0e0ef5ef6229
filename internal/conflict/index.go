package conflict

import (
	"fmt"
	"sort"
)

// Group is a named set of members.
type Group struct {
	// Name labels the group in reports. It must be unique within one detection.
	Name string

	// Members is the set of member strings owned by the group.
	Members map[string]struct{}
}

// NewGroup creates a Group from a list of members. Repeated members collapse.
func NewGroup(name string, members ...string) Group {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return Group{Name: name, Members: set}
}

// Entry is a member owned by two or more groups.
type Entry struct {
	// Member is the contested member.
	Member string `json:"member"`

	// Groups lists every owning group in the order the groups were added.
	Groups []string `json:"groups"`
}

// Index maps members to the groups that own them.
//
// Groups are added in supply order. Each (group, member) pair costs exactly
// one map lookup, so building the index is linear in the total member count.
type Index struct {
	owners     map[string][]string
	groups     map[string]struct{}
	candidates []string
	lookups    int
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{
		owners: make(map[string][]string),
		groups: make(map[string]struct{}),
	}
}

// Add records every member of g as owned by g.Name.
// Returns ErrEmptyGroupName or ErrDuplicateGroup for invalid names; the index
// is left unchanged in that case.
func (idx *Index) Add(g Group) error {
	if g.Name == "" {
		return ErrEmptyGroupName
	}
	if _, dup := idx.groups[g.Name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateGroup, g.Name)
	}
	idx.groups[g.Name] = struct{}{}

	for member := range g.Members {
		idx.lookups++
		owners, seen := idx.owners[member]
		if seen && len(owners) == 1 {
			// second owner: the member just became a conflict
			idx.candidates = append(idx.candidates, member)
		}
		idx.owners[member] = append(owners, g.Name)
	}

	return nil
}

// Conflicts returns every member owned by two or more groups, sorted by
// member. The returned entries do not alias the index.
func (idx *Index) Conflicts() []Entry {
	members := make([]string, len(idx.candidates))
	copy(members, idx.candidates)
	sort.Strings(members)

	entries := make([]Entry, 0, len(members))
	for _, member := range members {
		owners := idx.owners[member]
		groups := make([]string, len(owners))
		copy(groups, owners)
		entries = append(entries, Entry{Member: member, Groups: groups})
	}
	return entries
}

// Lookups returns the number of member lookups performed so far.
func (idx *Index) Lookups() int {
	return idx.lookups
}

// Len returns the number of distinct members indexed.
func (idx *Index) Len() int {
	return len(idx.owners)
}

// Detect indexes groups in order and returns the conflicting members.
// An empty result means no member is shared.
func Detect(groups []Group) ([]Entry, error) {
	idx := NewIndex()
	for _, g := range groups {
		if err := idx.Add(g); err != nil {
			return nil, err
		}
	}
	return idx.Conflicts(), nil
}

package domain

import "fmt"

// PathName identifies one funnel outcome the engine routes visitors toward.
type PathName string

// PathSet is the ordered set of paths for a deployment. The order is
// significant: it is the tie-break precedence when two paths share the
// maximum score (earlier wins). The engine treats the set as opaque
// configuration; content decides the actual names.
type PathSet []PathName

// Contains reports whether p is a member of the set.
func (ps PathSet) Contains(p PathName) bool {
	for _, candidate := range ps {
		if candidate == p {
			return true
		}
	}
	return false
}

// Validate checks the set is usable: at least two unique members.
func (ps PathSet) Validate() error {
	if len(ps) < 2 {
		return fmt.Errorf("path set needs at least 2 members, got %d", len(ps))
	}
	seen := make(map[PathName]bool, len(ps))
	for _, p := range ps {
		if p == "" {
			return fmt.Errorf("path set contains an empty name")
		}
		if seen[p] {
			return fmt.Errorf("duplicate path %q", p)
		}
		seen[p] = true
	}
	return nil
}

// WeightVector maps a path to a non-negative integer score contribution.
type WeightVector map[PathName]int

// Validate rejects negative contributions and unknown paths.
func (w WeightVector) Validate(paths PathSet) error {
	for path, weight := range w {
		if weight < 0 {
			return fmt.Errorf("weight for path %q is negative (%d)", path, weight)
		}
		if !paths.Contains(path) {
			return fmt.Errorf("weight references unknown path %q", path)
		}
	}
	return nil
}

package ontology

import (
	"sort"

	"github.com/ontoscope/ontoscope/pkg/apperror"
)

// NameSet is the minimal view the diff engine needs from a schema-like
// input: the entity and relation type name sets. A nil field marks a
// malformed input (missing map), which is distinct from an empty one.
type NameSet struct {
	Entities  []string
	Relations []string
}

// NameSet extracts the type name sets from a declared schema
func (s *OntologySchema) NameSet() *NameSet {
	if s == nil {
		return &NameSet{}
	}
	ns := &NameSet{}
	if s.EntityTypes != nil {
		ns.Entities = make([]string, 0, len(s.EntityTypes))
		for name := range s.EntityTypes {
			ns.Entities = append(ns.Entities, name)
		}
	}
	if s.RelationTypes != nil {
		ns.Relations = make([]string, 0, len(s.RelationTypes))
		for name := range s.RelationTypes {
			ns.Relations = append(ns.Relations, name)
		}
	}
	return ns
}

// NameSet extracts the type name sets from an observed snapshot
func (e *ExtractedOntology) NameSet() *NameSet {
	if e == nil {
		return &NameSet{}
	}
	ns := &NameSet{}
	if e.EntityTypes != nil {
		ns.Entities = make([]string, 0, len(e.EntityTypes))
		for name := range e.EntityTypes {
			ns.Entities = append(ns.Entities, name)
		}
	}
	if e.RelationTypes != nil {
		ns.Relations = make([]string, 0, len(e.RelationTypes))
		for name := range e.RelationTypes {
			ns.Relations = append(ns.Relations, name)
		}
	}
	return ns
}

// Diff computes the set-theoretic difference between two schema-like
// inputs using exact case-sensitive name equality. The three output
// buckets per axis partition the union of both inputs. Near-duplicate
// names (Person vs people) are not unified. O(|A|+|B|).
func Diff(a, b *NameSet) (*OntologyDiff, error) {
	if a == nil || b == nil ||
		a.Entities == nil || a.Relations == nil ||
		b.Entities == nil || b.Relations == nil {
		return nil, apperror.NewValidation("diff requires entity and relation type sets on both sides")
	}

	diff := &OntologyDiff{}
	diff.EntitiesOnlyInA, diff.EntitiesOnlyInB, diff.EntitiesInBoth = partition(a.Entities, b.Entities)
	diff.RelationsOnlyInA, diff.RelationsOnlyInB, diff.RelationsInBoth = partition(a.Relations, b.Relations)
	return diff, nil
}

// partition splits two name lists into onlyInA, onlyInB and inBoth,
// each sorted for deterministic output.
func partition(a, b []string) (onlyInA, onlyInB, inBoth []string) {
	setA := make(map[string]struct{}, len(a))
	for _, name := range a {
		setA[name] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, name := range b {
		setB[name] = struct{}{}
	}

	onlyInA = []string{}
	onlyInB = []string{}
	inBoth = []string{}

	for name := range setA {
		if _, ok := setB[name]; ok {
			inBoth = append(inBoth, name)
		} else {
			onlyInA = append(onlyInA, name)
		}
	}
	for name := range setB {
		if _, ok := setA[name]; !ok {
			onlyInB = append(onlyInB, name)
		}
	}

	sort.Strings(onlyInA)
	sort.Strings(onlyInB)
	sort.Strings(inBoth)
	return onlyInA, onlyInB, inBoth
}

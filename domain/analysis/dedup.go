package analysis

import (
	"sort"
	"strings"

	"github.com/ontoscope/ontoscope/domain/ontology"
)

// dedupThreshold is the minimum normalized similarity for two type names
// to be considered near-duplicates.
const dedupThreshold = 0.8

// DuplicateGroup is a cluster of type names that look like variants of
// the same concept. Detection is report-only; merging stays a human
// decision.
type DuplicateGroup struct {
	Kind       string   `json:"kind"` // "entity" or "relation"
	Names      []string `json:"names"`
	Similarity float64  `json:"similarity"` // lowest pairwise score in the group
}

// DedupReport summarizes a duplicate-detection pass over the schema
type DedupReport struct {
	EntityTypesScanned   int              `json:"entityTypesScanned"`
	RelationTypesScanned int              `json:"relationTypesScanned"`
	Groups               []DuplicateGroup `json:"groups"`
}

// FindDuplicates scans the declared schema for near-duplicate type names
func FindDuplicates(schema *ontology.OntologySchema) *DedupReport {
	report := &DedupReport{
		EntityTypesScanned:   len(schema.EntityTypes),
		RelationTypesScanned: len(schema.RelationTypes),
		Groups:               []DuplicateGroup{},
	}

	report.Groups = append(report.Groups, groupDuplicates("entity", sortedNames(schema.EntityTypes))...)
	report.Groups = append(report.Groups, groupDuplicates("relation", sortedRelationNames(schema.RelationTypes))...)
	return report
}

// groupDuplicates clusters names greedily: each unused name seeds a
// group and pulls in every remaining name above the threshold.
func groupDuplicates(kind string, names []string) []DuplicateGroup {
	var groups []DuplicateGroup
	used := make(map[string]bool, len(names))

	for i, name := range names {
		if used[name] {
			continue
		}

		group := []string{name}
		lowest := 1.0
		used[name] = true

		for _, other := range names[i+1:] {
			if used[other] {
				continue
			}
			score := nameSimilarity(name, other)
			if score >= dedupThreshold {
				group = append(group, other)
				used[other] = true
				if score < lowest {
					lowest = score
				}
			}
		}

		if len(group) > 1 {
			groups = append(groups, DuplicateGroup{
				Kind:       kind,
				Names:      group,
				Similarity: lowest,
			})
		}
	}

	return groups
}

// nameSimilarity normalizes both names to lowercase letters and returns
// 1 - distance/maxLen.
func nameSimilarity(a, b string) float64 {
	na := normalizeName(a)
	nb := normalizeName(b)

	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}

	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}

	return 1 - float64(levenshtein(na, nb))/float64(maxLen)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, name))
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(b)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(a)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(a); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(b); i++ {
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
			} else {
				min := matrix[i-1][j-1]
				if matrix[i][j-1] < min {
					min = matrix[i][j-1]
				}
				if matrix[i-1][j] < min {
					min = matrix[i-1][j]
				}
				matrix[i][j] = min + 1
			}
		}
	}

	return matrix[len(b)][len(a)]
}

func sortedNames(m map[string]ontology.EntityType) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedRelationNames(m map[string]ontology.RelationType) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

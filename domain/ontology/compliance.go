package ontology

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/ontoscope/ontoscope/domain/graph"
	"github.com/ontoscope/ontoscope/pkg/apperror"
)

// severityRank orders issues error > warning > info
var severityRank = map[string]int{
	"error":   3,
	"warning": 2,
	"info":    1,
}

// Validate scores graph instances against the declared schema. It is
// read-only: neither the schema nor the graph is mutated. Nodes with a
// type absent from the schema are classified unknown; nodes failing any
// required-property or property-type check are invalid; relationships are
// additionally checked for fromTypes/toTypes compatibility. Issues are
// aggregated per violation class with a count, sorted by severity then
// count descending.
func Validate(schema *OntologySchema, objects []graph.GraphObject, rels []graph.RelationshipInstance) (*ComplianceResult, error) {
	if schema == nil || schema.EntityTypes == nil || schema.RelationTypes == nil {
		return nil, apperror.NewValidation("compliance requires a schema with entity and relation type maps")
	}

	result := &ComplianceResult{Issues: []ComplianceIssue{}}
	stats := &result.Stats
	issues := map[string]*ComplianceIssue{}

	addIssue := func(key, issueType, severity, message string) {
		if existing, ok := issues[key]; ok {
			existing.Count++
			return
		}
		issues[key] = &ComplianceIssue{
			Type:     issueType,
			Severity: severity,
			Message:  message,
			Count:    1,
		}
	}

	// Soft schema-level check: endpoint references to undeclared entity
	// types are reported, not rejected, since graph data may lead the
	// schema.
	for name, rt := range schema.RelationTypes {
		for _, endpoint := range append(append([]string{}, rt.FromTypes...), rt.ToTypes...) {
			if endpoint == Wildcard {
				continue
			}
			if _, ok := schema.EntityTypes[endpoint]; !ok {
				addIssue(
					"undeclared_endpoint:"+name+":"+endpoint,
					"undeclared_endpoint_type",
					"info",
					fmt.Sprintf("relation type %q references undeclared entity type %q", name, endpoint),
				)
			}
		}
	}

	for _, obj := range objects {
		stats.TotalNodes++

		et, ok := schema.EntityTypes[obj.Type]
		if !ok {
			stats.UnknownTypeNodes++
			addIssue(
				"unknown_node_type:"+obj.Type,
				"unknown_node_type",
				"warning",
				fmt.Sprintf("node type %q is not declared in the ontology", obj.Type),
			)
			continue
		}

		props := obj.PropertyMap()
		nodeValid := true
		for _, def := range et.Properties {
			value, present := props[def.Name]
			if !present {
				if def.Required {
					nodeValid = false
					stats.MissingRequiredProperties++
					addIssue(
						"missing_required_property:"+obj.Type+"."+def.Name,
						"missing_required_property",
						"error",
						fmt.Sprintf("nodes of type %q are missing required property %q", obj.Type, def.Name),
					)
				}
				continue
			}
			if !matchesPropertyType(value, def.Type) {
				nodeValid = false
				stats.InvalidPropertyTypes++
				addIssue(
					"invalid_property_type:"+obj.Type+"."+def.Name,
					"invalid_property_type",
					"error",
					fmt.Sprintf("property %q on type %q does not match declared type %q", def.Name, obj.Type, def.Type),
				)
			}
		}

		if nodeValid {
			stats.ValidNodes++
		} else {
			stats.InvalidNodes++
		}
	}

	for _, rel := range rels {
		stats.TotalRelationships++

		rt, ok := schema.RelationTypes[rel.Type]
		if !ok {
			stats.UnknownTypeRelationships++
			addIssue(
				"unknown_relationship_type:"+rel.Type,
				"unknown_relationship_type",
				"warning",
				fmt.Sprintf("relationship type %q is not declared in the ontology", rel.Type),
			)
			continue
		}

		relValid := true
		if !endpointAllowed(rt.FromTypes, rel.SrcType) {
			relValid = false
			addIssue(
				"invalid_relationship_source:"+rel.Type+":"+rel.SrcType,
				"invalid_relationship_endpoints",
				"error",
				fmt.Sprintf("relationship %q does not allow source type %q", rel.Type, rel.SrcType),
			)
		}
		if !endpointAllowed(rt.ToTypes, rel.DstType) {
			relValid = false
			addIssue(
				"invalid_relationship_target:"+rel.Type+":"+rel.DstType,
				"invalid_relationship_endpoints",
				"error",
				fmt.Sprintf("relationship %q does not allow target type %q", rel.Type, rel.DstType),
			)
		}

		props := rel.PropertyMap()
		for _, def := range rt.Properties {
			value, present := props[def.Name]
			if !present {
				if def.Required {
					relValid = false
					stats.MissingRequiredProperties++
					addIssue(
						"missing_required_property:"+rel.Type+"."+def.Name,
						"missing_required_property",
						"error",
						fmt.Sprintf("relationships of type %q are missing required property %q", rel.Type, def.Name),
					)
				}
				continue
			}
			if !matchesPropertyType(value, def.Type) {
				relValid = false
				stats.InvalidPropertyTypes++
				addIssue(
					"invalid_property_type:"+rel.Type+"."+def.Name,
					"invalid_property_type",
					"error",
					fmt.Sprintf("property %q on relationship %q does not match declared type %q", def.Name, rel.Type, def.Type),
				)
			}
		}

		if relValid {
			stats.ValidRelationships++
		} else {
			stats.InvalidRelationships++
		}
	}

	total := stats.TotalNodes + stats.TotalRelationships
	result.Score = int(math.Round(100 * float64(stats.ValidNodes+stats.ValidRelationships) / math.Max(1, float64(total))))
	result.Valid = stats.InvalidNodes == 0 && stats.UnknownTypeNodes == 0 &&
		stats.InvalidRelationships == 0 && stats.UnknownTypeRelationships == 0

	for _, issue := range issues {
		result.Issues = append(result.Issues, *issue)
	}
	sort.Slice(result.Issues, func(i, j int) bool {
		a, b := result.Issues[i], result.Issues[j]
		if severityRank[a.Severity] != severityRank[b.Severity] {
			return severityRank[a.Severity] > severityRank[b.Severity]
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Message < b.Message
	})

	return result, nil
}

// endpointAllowed checks a relationship endpoint type against the declared
// set. An empty set is unconstrained; the wildcard matches anything.
func endpointAllowed(declared []string, actual string) bool {
	if len(declared) == 0 {
		return true
	}
	for _, t := range declared {
		if t == Wildcard || t == actual {
			return true
		}
	}
	return false
}

// matchesPropertyType validates a decoded JSON value against a declared
// primitive type as a tagged variant. Unknown declared types are
// permissive.
func matchesPropertyType(value any, declared string) bool {
	switch declared {
	case PropertyString:
		_, ok := value.(string)
		return ok
	case PropertyNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64, json.Number:
			return true
		}
		return false
	case PropertyBoolean:
		_, ok := value.(bool)
		return ok
	case PropertyList:
		_, ok := value.([]any)
		return ok
	case PropertyNull:
		return value == nil
	default:
		return true
	}
}

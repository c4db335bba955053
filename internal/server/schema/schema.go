// Package schema holds the closed enumerations of the concept graph:
// node labels, relationship types, and property keys. It is the only
// sanctioned path for turning an enum token into a literal query fragment;
// free text (names, difficulty values) must always travel as bound
// parameters.
package schema

import (
	"fmt"
	"sort"
)

// Label is a node label drawn from the closed label set.
type Label string

const (
	LabelLevel    Label = "Level"
	LabelTopic    Label = "Topic"
	LabelSubtopic Label = "Subtopic"
)

// RelType is a relationship type drawn from the closed relationship set.
// Direction is load-bearing: PREREQUISITE_FOR points from the easier
// concept to the concept it unlocks.
type RelType string

const (
	RelPrerequisiteFor    RelType = "PREREQUISITE_FOR"
	RelUsedIn             RelType = "USED_IN"
	RelContains           RelType = "CONTAINS"
	RelHasSubtopic        RelType = "HAS_SUBTOPIC"
	RelUsedWith           RelType = "USED_WITH"
	RelFrequentlyTestedIn RelType = "FREQUENTLY_TESTED_IN"
	RelEasierThan         RelType = "EASIER_THAN"
)

var labels = map[Label]struct{}{
	LabelLevel:    {},
	LabelTopic:    {},
	LabelSubtopic: {},
}

var relTypes = map[RelType]struct{}{
	RelPrerequisiteFor:    {},
	RelUsedIn:             {},
	RelContains:           {},
	RelHasSubtopic:        {},
	RelUsedWith:           {},
	RelFrequentlyTestedIn: {},
	RelEasierThan:         {},
}

var propertyKeys = map[string]struct{}{
	"description":            {},
	"difficulty":             {},
	"estimated_weeks":        {},
	"id":                     {},
	"name":                   {},
	"order":                  {},
	"complexity":             {},
	"estimated_hours":        {},
	"level":                  {},
	"practical_applications": {},
	"type":                   {},
	"key_concepts":           {},
	"parent_topic":           {},
	"space_complexity":       {},
	"time_complexity":        {},
	"strength":               {},
	"difficulty_gap":         {},
	"data":                   {},
	"nodes":                  {},
	"relationships":          {},
	"style":                  {},
	"visualisation":          {},
}

// ViolationError reports a token that is not part of the registered schema.
// It signals a programming error in query assembly, not a user-input failure,
// and must never be coerced into a pass-through.
type ViolationError struct {
	Kind  string // "label", "relationship type", or "property key"
	Token string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("schema violation: unknown %s %q", e.Kind, e.Token)
}

// ValidateLabel confirms membership of s in the label set and returns the
// canonical Label.
func ValidateLabel(s string) (Label, error) {
	l := Label(s)
	if _, ok := labels[l]; !ok {
		return "", &ViolationError{Kind: "label", Token: s}
	}
	return l, nil
}

// ValidateRelType confirms membership of s in the relationship type set.
func ValidateRelType(s string) (RelType, error) {
	r := RelType(s)
	if _, ok := relTypes[r]; !ok {
		return "", &ViolationError{Kind: "relationship type", Token: s}
	}
	return r, nil
}

// ValidatePropertyKey confirms membership of s in the property key set.
func ValidatePropertyKey(s string) (string, error) {
	if _, ok := propertyKeys[s]; !ok {
		return "", &ViolationError{Kind: "property key", Token: s}
	}
	return s, nil
}

// Labels returns all registered labels in sorted order.
func Labels() []Label {
	out := make([]Label, 0, len(labels))
	for l := range labels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RelTypes returns all registered relationship types in sorted order.
func RelTypes() []RelType {
	out := make([]RelType, 0, len(relTypes))
	for r := range relTypes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

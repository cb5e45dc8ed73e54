// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation

import (
	"fmt"
	"strings"

	"github.com/taibuivan/impulsa/internal/platform/constants"
	"github.com/taibuivan/impulsa/pkg/slice"
)

// # Views

// ViewKind tags which presentation a [View] holds.
type ViewKind string

const (
	ViewFlat    ViewKind = "flat"
	ViewGrouped ViewKind = "grouped"
	ViewNested  ViewKind = "nested"
)

// Group is one labelled bucket of records.
type Group struct {
	Label   string      `json:"label"`
	Records []Augmented `json:"records"`
}

// NestedGroup is an initiative bucket split by general skill.
type NestedGroup struct {
	Label           string  `json:"label"`
	InitiativeImage string  `json:"initiativeImage"`
	Skills          []Group `json:"skills"`
}

// View is the presentation derived for the dashboard. Exactly one of
// Records, Groups or Nested is set, according to Kind.
type View struct {
	Kind    ViewKind      `json:"kind"`
	Records []Augmented   `json:"records,omitempty"`
	Groups  []Group       `json:"groups,omitempty"`
	Nested  []NestedGroup `json:"nested,omitempty"`
}

/*
DeriveView projects already filtered and sorted records into a view.

Precedence:
 1. a non-blank query always yields the flat list,
 2. the general-skill filter label yields the nested initiative/skill view,
 3. no sort field yields the flat list,
 4. any other sort field (general skill included) yields simple groups.

Buckets appear in the order their label first occurs. records is not modified.
*/
func (deriver *Deriver) DeriveView(records []Augmented, query string, label FilterLabel, order Sort) View {
	switch {
	case strings.TrimSpace(query) != "":
		return flat(records)
	case label == LabelGeneralSkill:
		return View{Kind: ViewNested, Nested: deriver.nested(records)}
	case order.Field == GroupNone:
		return flat(records)
	default:
		return View{Kind: ViewGrouped, Groups: deriver.grouped(records, order.Field)}
	}
}

// Project runs [Deriver.FilterAndSort] and [Deriver.DeriveView] in sequence.
func (deriver *Deriver) Project(records []Augmented, query string, label FilterLabel, order Sort) View {
	return deriver.DeriveView(deriver.FilterAndSort(records, query, order), query, label, order)
}

func flat(records []Augmented) View {
	return View{Kind: ViewFlat, Records: append(make([]Augmented, 0, len(records)), records...)}
}

func (deriver *Deriver) grouped(records []Augmented, field GroupKey) []Group {
	buckets := slice.GroupBy(records, func(record Augmented) string {
		return deriver.groupLabel(record, field)
	})
	return toGroups(buckets)
}

func (deriver *Deriver) nested(records []Augmented) []NestedGroup {
	outer := slice.GroupBy(records, func(record Augmented) string {
		return deriver.groupLabel(record, GroupInitiativeTitle)
	})

	return slice.Map(outer, func(bucket slice.Bucket[string, Augmented]) NestedGroup {
		inner := slice.GroupBy(bucket.Items, func(record Augmented) string {
			if strings.TrimSpace(record.GSkills) == "" {
				return constants.LabelNoSkill
			}
			return record.GSkills
		})
		return NestedGroup{
			Label:           bucket.Key,
			InitiativeImage: bucket.Items[0].InitiativeImage,
			Skills:          toGroups(inner),
		}
	})
}

// groupLabel is the bucket label of record for field. Missing values and
// unparsable dates go to the uncategorized bucket.
func (deriver *Deriver) groupLabel(record Augmented, field GroupKey) string {
	switch field {
	case GroupApplicationDate:
		parsed, ok := parseApplicationDate(record.ApplicationDate)
		if !ok {
			return constants.LabelUncategorized
		}
		return longDate(parsed, deriver.location)
	case GroupInitiativeTitle, GroupUserName, GroupGSkills:
		value := field.text(record)
		if strings.TrimSpace(value) == "" {
			return constants.LabelUncategorized
		}
		return value
	case GroupNone:
		panic("postulation: grouping requires a field")
	default:
		panic(fmt.Sprintf("postulation: unreachable group key %d", int(field)))
	}
}

func toGroups(buckets []slice.Bucket[string, Augmented]) []Group {
	groups := make([]Group, 0, len(buckets))
	for _, bucket := range buckets {
		groups = append(groups, Group{Label: bucket.Key, Records: bucket.Items})
	}
	return groups
}

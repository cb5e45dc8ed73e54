// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package postulation powers the "manage postulations" dashboard.

It joins the postulations received by each of the caller's initiatives into
augmented records, derives the flat, grouped and nested presentations under
live search, and performs the accept and delete mutations against the shared
query cache.

# Pipeline

	initiatives ─EligibleIDs─▶ Joiner ─▶ FilterAndSort ─▶ DeriveView
	                                      (query, Sort)    (query, FilterLabel, Sort)

Every stage after the join is a pure projection: records are never mutated,
so several views can be derived from one fetch.
*/
package postulation

import (
	"fmt"
	"strings"
)

// # Core Entities

// Postulation is an application to an initiative, as returned by the platform.
type Postulation struct {
	ID              int64    `json:"id"`
	UserID          int64    `json:"userId"`
	UserName        string   `json:"userName"`
	Image           string   `json:"image"`
	Description     string   `json:"description"`
	GSkills         string   `json:"gSkills"`
	HardSkills      []string `json:"hardSkills"`
	ApplicationDate string   `json:"applicationDate"`
	Status          string   `json:"status"`
	InitiativeID    int64    `json:"initiativeId"`
	InitiativeImg   string   `json:"initiativeImg"`
	Title           string   `json:"title"`
}

// Augmented is a postulation joined with the presentation fields of the dashboard.
// It is recomputed on every fetch and never persisted.
type Augmented struct {
	ID              int64    `json:"id"`
	UserID          int64    `json:"userId"`
	UserName        string   `json:"userName"`
	UserImage       string   `json:"userImage"`
	Description     string   `json:"description"`
	GSkills         string   `json:"gSkills"`
	HardSkills      []string `json:"hardSkills"`
	ApplicationDate string   `json:"applicationDate"`
	Status          string   `json:"status"`
	InitiativeID    int64    `json:"initiativeId"`
	InitiativeTitle string   `json:"initiativeTitle"`
	InitiativeImage string   `json:"initiativeImage"`
}

// Augment joins raw with its presentation fields. Empty images fall back to fallbackImage.
func Augment(raw Postulation, fallbackImage string) Augmented {
	hardSkills := raw.HardSkills
	if hardSkills == nil {
		hardSkills = []string{}
	}

	return Augmented{
		ID:              raw.ID,
		UserID:          raw.UserID,
		UserName:        raw.UserName,
		UserImage:       orDefault(raw.Image, fallbackImage),
		Description:     raw.Description,
		GSkills:         raw.GSkills,
		HardSkills:      hardSkills,
		ApplicationDate: raw.ApplicationDate,
		Status:          raw.Status,
		InitiativeID:    raw.InitiativeID,
		InitiativeTitle: raw.Title,
		InitiativeImage: orDefault(raw.InitiativeImg, fallbackImage),
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// # Group Keys

// GroupKey is the record field that drives both sorting and grouping.
type GroupKey int

const (
	GroupNone GroupKey = iota
	GroupInitiativeTitle
	GroupUserName
	GroupGSkills
	GroupApplicationDate
)

// String returns the wire name of the key ("" for none).
func (key GroupKey) String() string {
	switch key {
	case GroupNone:
		return ""
	case GroupInitiativeTitle:
		return "initiativeTitle"
	case GroupUserName:
		return "userName"
	case GroupGSkills:
		return "gSkills"
	case GroupApplicationDate:
		return "applicationDate"
	default:
		panic(fmt.Sprintf("postulation: unreachable group key %d", int(key)))
	}
}

// ParseGroupKey accepts the wire names produced by [GroupKey.String].
func ParseGroupKey(value string) (GroupKey, error) {
	switch value {
	case "", "none":
		return GroupNone, nil
	case "initiativeTitle":
		return GroupInitiativeTitle, nil
	case "userName":
		return GroupUserName, nil
	case "gSkills":
		return GroupGSkills, nil
	case "applicationDate":
		return GroupApplicationDate, nil
	}
	return GroupNone, fmt.Errorf("postulation: unknown group key %q", value)
}

// MarshalText implements [encoding.TextMarshaler].
func (key GroupKey) MarshalText() ([]byte, error) {
	return []byte(key.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (key *GroupKey) UnmarshalText(text []byte) error {
	parsed, err := ParseGroupKey(string(text))
	if err != nil {
		return err
	}
	*key = parsed
	return nil
}

// text returns the string value of key on record. Application dates are
// handled by the callers, which need them parsed.
func (key GroupKey) text(record Augmented) string {
	switch key {
	case GroupNone:
		return ""
	case GroupInitiativeTitle:
		return record.InitiativeTitle
	case GroupUserName:
		return record.UserName
	case GroupGSkills:
		return record.GSkills
	case GroupApplicationDate:
		return record.ApplicationDate
	default:
		panic(fmt.Sprintf("postulation: unreachable group key %d", int(key)))
	}
}

// # Sorting

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Sort is the active sort of the dashboard.
type Sort struct {
	Field     GroupKey  `json:"field"`
	Direction Direction `json:"direction"`
}

// Toggle returns the sort after the user picks field: the same field twice
// flips the direction, a different field starts ascending.
func (sort Sort) Toggle(field GroupKey) Sort {
	if field == sort.Field && sort.Direction == Ascending {
		return Sort{Field: field, Direction: Descending}
	}
	return Sort{Field: field, Direction: Ascending}
}

// # Filter Labels

// FilterLabel is the grouping option selected in the dashboard filter menu.
type FilterLabel string

const (
	LabelAll             FilterLabel = "Todas"
	LabelInitiative      FilterLabel = "Iniciativa"
	LabelApplicant       FilterLabel = "Postulante"
	LabelGeneralSkill    FilterLabel = "Habilidad general"
	LabelApplicationDate FilterLabel = "Fecha de postulación"
)

// Labels lists the filter menu in display order.
var Labels = []FilterLabel{LabelAll, LabelInitiative, LabelApplicant, LabelGeneralSkill, LabelApplicationDate}

// ParseFilterLabel validates a label received from a client. Empty means [LabelAll].
func ParseFilterLabel(value string) (FilterLabel, error) {
	if value == "" {
		return LabelAll, nil
	}
	for _, label := range Labels {
		if string(label) == value {
			return label, nil
		}
	}
	return "", fmt.Errorf("postulation: unknown filter label %q", value)
}

// GroupKey returns the field the label groups by.
func (label FilterLabel) GroupKey() GroupKey {
	switch label {
	case LabelInitiative:
		return GroupInitiativeTitle
	case LabelApplicant:
		return GroupUserName
	case LabelGeneralSkill:
		return GroupGSkills
	case LabelApplicationDate:
		return GroupApplicationDate
	default:
		return GroupNone
	}
}

// # Cache Edits

// Without returns a copy of a cached joined listing with id removed.
// Any other value is returned unchanged.
func Without(data any, id int64) any {
	records, ok := data.([]Augmented)
	if !ok {
		return data
	}

	kept := make([]Augmented, 0, len(records))
	for _, record := range records {
		if record.ID != id {
			kept = append(kept, record)
		}
	}
	return kept
}

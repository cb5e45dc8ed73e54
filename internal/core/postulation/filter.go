// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// # Deriver

// Deriver computes the filtered, sorted and grouped projections of the joined
// records for one locale and display time zone. It is safe for concurrent use.
type Deriver struct {
	tag      language.Tag
	location *time.Location
}

// NewDeriver parses locale (a BCP 47 tag such as "es") for collation.
// A nil location means UTC.
func NewDeriver(locale string, location *time.Location) (*Deriver, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("postulation: invalid locale %q: %w", locale, err)
	}
	if location == nil {
		location = time.UTC
	}
	return &Deriver{tag: tag, location: location}, nil
}

// # Filter & Sort

/*
FilterAndSort returns the records matching query, ordered by sort.

The query is matched case-insensitively as a substring of the applicant name,
the initiative title, the description, the general skill or any hard skill; a
blank query keeps every record. With no sort field the input order is kept.
The input slice is never modified.
*/
func (deriver *Deriver) FilterAndSort(records []Augmented, query string, order Sort) []Augmented {
	result := deriver.filter(records, query)

	if order.Field == GroupNone {
		return result
	}

	compare := deriver.comparator(order.Field)
	sign := 1
	if order.Direction == Descending {
		sign = -1
	}

	slices.SortStableFunc(result, func(a, b Augmented) int {
		return sign * compare(a, b)
	})

	return result
}

func (deriver *Deriver) filter(records []Augmented, query string) []Augmented {
	result := make([]Augmented, 0, len(records))

	query = strings.TrimSpace(query)
	if query == "" {
		return append(result, records...)
	}

	folder := cases.Fold()
	needle := folder.String(query)
	contains := func(value string) bool {
		return strings.Contains(folder.String(value), needle)
	}

	for _, record := range records {
		if matches(record, contains) {
			result = append(result, record)
		}
	}
	return result
}

func matches(record Augmented, contains func(string) bool) bool {
	if contains(record.UserName) || contains(record.InitiativeTitle) ||
		contains(record.Description) || contains(record.GSkills) {
		return true
	}
	for _, skill := range record.HardSkills {
		if contains(skill) {
			return true
		}
	}
	return false
}

// comparator returns a three-way comparison for field. Collators and casers
// are not safe for concurrent use, so each sort gets its own.
func (deriver *Deriver) comparator(field GroupKey) func(a, b Augmented) int {
	if field == GroupApplicationDate {
		return compareDates
	}

	collator := collate.New(deriver.tag)
	lower := cases.Lower(deriver.tag)
	return func(a, b Augmented) int {
		return collator.CompareString(lower.String(field.text(a)), lower.String(field.text(b)))
	}
}

// compareDates orders by timestamp. Unparsable dates are equal to each other
// and sort after every valid date.
func compareDates(a, b Augmented) int {
	left, leftOK := parseApplicationDate(a.ApplicationDate)
	right, rightOK := parseApplicationDate(b.ApplicationDate)

	switch {
	case !leftOK && !rightOK:
		return 0
	case !leftOK:
		return 1
	case !rightOK:
		return -1
	}
	return left.Compare(right)
}

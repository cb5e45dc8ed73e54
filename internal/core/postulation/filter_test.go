// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/impulsa/internal/core/postulation"
)

func newDeriver(t *testing.T) *postulation.Deriver {
	t.Helper()
	deriver, err := postulation.NewDeriver("es", time.UTC)
	require.NoError(t, err)
	return deriver
}

func TestNewDeriver_InvalidLocale(t *testing.T) {
	_, err := postulation.NewDeriver("not a locale!", nil)
	assert.Error(t, err)
}

/*
TestSortToggle verifies the documented toggle contract.
*/
func TestSortToggle(t *testing.T) {
	order := postulation.Sort{Field: postulation.GroupNone, Direction: postulation.Ascending}

	order = order.Toggle(postulation.GroupUserName)
	assert.Equal(t, postulation.Sort{Field: postulation.GroupUserName, Direction: postulation.Ascending}, order)

	order = order.Toggle(postulation.GroupUserName)
	assert.Equal(t, postulation.Sort{Field: postulation.GroupUserName, Direction: postulation.Descending}, order)

	order = order.Toggle(postulation.GroupUserName)
	assert.Equal(t, postulation.Ascending, order.Direction)

	order = order.Toggle(postulation.GroupUserName).Toggle(postulation.GroupGSkills)
	assert.Equal(t, postulation.Sort{Field: postulation.GroupGSkills, Direction: postulation.Ascending}, order)
}

/*
TestFilterAndSort_Query verifies case-insensitive matching over every searchable field.
*/
func TestFilterAndSort_Query(t *testing.T) {
	records := []postulation.Augmented{
		{ID: 1, UserName: "Ángela Ruiz", InitiativeTitle: "Huerto", HardSkills: []string{}},
		{ID: 2, UserName: "Bruno", InitiativeTitle: "Biblioteca Móvil", HardSkills: []string{}},
		{ID: 3, UserName: "Carla", Description: "Diseño de interfaces", HardSkills: []string{}},
		{ID: 4, UserName: "Diego", GSkills: "Desarrollo_Web", HardSkills: []string{}},
		{ID: 5, UserName: "Elena", HardSkills: []string{"Go", "PostgreSQL"}},
	}

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"Blank keeps everything", "   ", []int64{1, 2, 3, 4, 5}},
		{"Applicant name", "ÁNGELA", []int64{1}},
		{"Initiative title", "móvil", []int64{2}},
		{"Description", "DISEÑO", []int64{3}},
		{"General skill", "desarrollo_web", []int64{4}},
		{"Hard skill", "postgres", []int64{5}},
		{"No match", "kubernetes", []int64{}},
	}

	deriver := newDeriver(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriver.FilterAndSort(records, tt.query, postulation.Sort{})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

/*
TestFilterAndSort_LocaleOrder verifies collation and direction on text fields.
*/
func TestFilterAndSort_LocaleOrder(t *testing.T) {
	records := []postulation.Augmented{
		{ID: 1, UserName: "Zoe"},
		{ID: 2, UserName: "Ñandú"},
		{ID: 3, UserName: "ángel"},
		{ID: 4, UserName: "Alberto"},
		{ID: 5, UserName: "Nuria"},
	}
	deriver := newDeriver(t)

	asc := deriver.FilterAndSort(records, "", postulation.Sort{Field: postulation.GroupUserName, Direction: postulation.Ascending})
	assert.Equal(t, []int64{4, 3, 5, 2, 1}, ids(asc))

	desc := deriver.FilterAndSort(records, "", postulation.Sort{Field: postulation.GroupUserName, Direction: postulation.Descending})
	assert.Equal(t, []int64{1, 2, 5, 3, 4}, ids(desc))

	// the input is untouched
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(records))
}

/*
TestFilterAndSort_Dates verifies numeric date ordering and the placement of unparsable dates.
*/
func TestFilterAndSort_Dates(t *testing.T) {
	records := []postulation.Augmented{
		{ID: 1, ApplicationDate: "2024-05-03T10:00:00Z"},
		{ID: 2, ApplicationDate: "no date"},
		{ID: 3, ApplicationDate: "2024-05-01T08:00:00Z"},
		{ID: 4, ApplicationDate: "2024-05-02"},
		{ID: 5, ApplicationDate: "2024-05-01T07:00:00-03:00"},
	}
	deriver := newDeriver(t)

	asc := deriver.FilterAndSort(records, "", postulation.Sort{Field: postulation.GroupApplicationDate, Direction: postulation.Ascending})
	assert.Equal(t, []int64{3, 5, 4, 1, 2}, ids(asc))

	desc := deriver.FilterAndSort(records, "", postulation.Sort{Field: postulation.GroupApplicationDate, Direction: postulation.Descending})
	assert.Equal(t, []int64{2, 1, 4, 5, 3}, ids(desc))
}

/*
TestFilterAndSort_StableOnTies verifies that equal keys keep the join order.
*/
func TestFilterAndSort_StableOnTies(t *testing.T) {
	records := []postulation.Augmented{
		{ID: 1, InitiativeTitle: "Huerto"},
		{ID: 2, InitiativeTitle: "Archivo"},
		{ID: 3, InitiativeTitle: "huerto"},
		{ID: 4, InitiativeTitle: "HUERTO"},
	}

	got := newDeriver(t).FilterAndSort(records, "", postulation.Sort{Field: postulation.GroupInitiativeTitle, Direction: postulation.Ascending})

	assert.Equal(t, []int64{2, 1, 3, 4}, ids(got))
}

func TestParseGroupKey_RoundTrip(t *testing.T) {
	for _, key := range []postulation.GroupKey{
		postulation.GroupNone,
		postulation.GroupInitiativeTitle,
		postulation.GroupUserName,
		postulation.GroupGSkills,
		postulation.GroupApplicationDate,
	} {
		parsed, err := postulation.ParseGroupKey(key.String())
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
	}

	_, err := postulation.ParseGroupKey("status")
	assert.Error(t, err)
	assert.Panics(t, func() { _ = postulation.GroupKey(42).String() })
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation

import (
	"strconv"
	"strings"
	"time"
)

// applicationDateLayouts are the formats the platform has used for applicationDate.
var applicationDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// parseApplicationDate parses an application date. Values without a zone are UTC.
func parseApplicationDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range applicationDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// spanishMonths are the lowercase month names used in long dates.
var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// longDate formats t as a Spanish long date ("1 de mayo de 2024") in location.
func longDate(t time.Time, location *time.Location) string {
	local := t.In(location)
	return strconv.Itoa(local.Day()) + " de " + spanishMonths[local.Month()-1] + " de " + strconv.Itoa(local.Year())
}

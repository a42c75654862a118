package titles

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dateRangeRE = regexp.MustCompile(`^([^–—‒‐-]+)\s*[–—‒‐-]\s*(.+)$`)
	yearMonthRE = regexp.MustCompile(`^(\d{4})-(\d{2})`)
	yearOnlyRE  = regexp.MustCompile(`^(\d{4})`)
)

// parseDatePiece reads one side of a date range. "Present", "current" and
// "now" (and anything unparseable) come back as the zero time, meaning
// open-ended.
func parseDatePiece(piece string) time.Time {
	piece = strings.TrimSpace(piece)
	switch strings.ToLower(piece) {
	case "", "present", "current", "now":
		return time.Time{}
	}
	if m := yearMonthRE.FindStringSubmatch(piece); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	}
	if m := yearOnlyRE.FindStringSubmatch(piece); m != nil {
		year, _ := strconv.Atoi(m[1])
		return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

// SchoolActive reports whether a school date range suggests the person is
// still a student as of today. An open end date counts as active.
func SchoolActive(schoolRange string, today time.Time) bool {
	if schoolRange == "" {
		return false
	}
	m := dateRangeRE.FindStringSubmatch(schoolRange)
	if m == nil {
		return false
	}
	end := parseDatePiece(m[2])
	if end.IsZero() {
		return true
	}
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return !end.Before(monthStart)
}

// DeriveJobTitle picks the effective job title for a person record:
// current title, else previous title, else student/unemployed based on
// whether their school range is still active.
func DeriveJobTitle(current, previous, schoolRange string, today time.Time) string {
	if t := strings.TrimSpace(current); t != "" {
		return t
	}
	if t := strings.TrimSpace(previous); t != "" {
		return t
	}
	if SchoolActive(schoolRange, today) {
		return "student"
	}
	return "unemployed"
}

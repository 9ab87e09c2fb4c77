package dataprocessing

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"trendpulse/pkg/contracts/domain"
)

const (
	compactDateLayout = "20060102"
	dottedDateLayout  = "2006.01.02"
)

// ParseCompactDate parses a strict YYYYMMDD string such as a blog postdate.
// Anything other than exactly eight digits naming a real day is invalid.
func ParseCompactDate(value string) domain.NullDate {
	value = strings.TrimSpace(value)
	if len(value) != len(compactDateLayout) {
		return domain.NullDate{}
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return domain.NullDate{}
		}
	}

	t, err := time.Parse(compactDateLayout, value)
	if err != nil {
		return domain.NullDate{}
	}
	return domain.NewDate(t)
}

// ParseFlexibleDate parses loosely formatted dates: ISO dates, RFC 1123 with
// numeric or named zones, slash separated dates and the like. Any zone is
// dropped and the wall-clock day kept. Unparseable input yields an invalid date.
func ParseFlexibleDate(value string) domain.NullDate {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.NullDate{}
	}

	if t, err := time.Parse(domain.DateLayout, value); err == nil {
		return domain.NewDate(t)
	}

	if d, ok := parseDottedPrefix(value); ok {
		return d
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return domain.NullDate{}
	}
	return domain.NewDate(t)
}

// parseDottedPrefix reads the day from dotted dates and date-times such as
// "2024.01.15 10:00" or "2024.01.15. 10:00", ignoring the time part.
func parseDottedPrefix(value string) (domain.NullDate, bool) {
	token := strings.TrimSuffix(strings.Fields(value)[0], ".")
	t, err := time.Parse(dottedDateLayout, token)
	if err != nil {
		return domain.NullDate{}, false
	}
	return domain.NewDate(t), true
}

package store

import (
	"strconv"
	"strings"
)

// NormalizeColumn maps a raw header cell onto a canonical column name:
// trimmed, any parenthetical suffix stripped, lowercased, and internal
// separators collapsed to underscores. "Last Active (date)" and
// "last_active" land on the same key.
func NormalizeColumn(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "("); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.ToLower(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-' || r == '_'
	})
	return strings.Join(fields, "_")
}

// NormalizeRecord rekeys a record by NormalizeColumn, keeping the
// first value when two raw headers collapse onto the same key.
func NormalizeRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		nk := NormalizeColumn(k)
		if _, ok := out[nk]; !ok {
			out[nk] = v
		}
	}
	return out
}

// coerceFloat reads a numeric cell defensively: blank or missing is 0,
// a leading "+" and surrounding whitespace are fine, garbage is 0
// rather than an error.
func coerceFloat(rec Record, column string) float64 {
	s := strings.TrimSpace(rec[column])
	if s == "" {
		return 0
	}
	s = strings.TrimPrefix(s, "+")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func coerceInt(rec Record, column string) int {
	return int(coerceFloat(rec, column))
}

func coerceInt64(rec Record, column string) int64 {
	return int64(coerceFloat(rec, column))
}

// formatFloat renders a numeric cell without trailing zero noise.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PageBounds normalizes a (page, pageSize) pair and returns the resulting
// offset and limit. Invalid pages default to 1; invalid or oversized page
// sizes are clamped to [1, max].
func PageBounds(page, pageSize, max int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if max > 0 && pageSize > max {
		pageSize = max
	}
	return (page - 1) * pageSize, pageSize
}

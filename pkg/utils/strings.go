package utils

import (
	"strconv"
	"strings"
)

// ParseInt64 parses a path or query id. Empty or malformed input yields ok=false.
func ParseInt64(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

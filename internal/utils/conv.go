package utils

import (
	"fmt"
	"strconv"
)

// ParseID parses a positive row id from a path parameter.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

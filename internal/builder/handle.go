package builder

import (
	"strconv"
	"strings"
)

// parseHandleIndex extracts the numeric port index from a handle name like
// "input-3". Missing or malformed suffixes default to 0, matching the
// original compiler's forgiving split('-').last().parse().unwrap_or(0)
// behavior.
func parseHandleIndex(handle string) int {
	parts := strings.Split(handle, "-")
	last := parts[len(parts)-1]
	n, err := strconv.Atoi(last)
	if err != nil {
		return 0
	}
	return n
}

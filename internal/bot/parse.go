package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// parseTimerID extracts a positive numeric timer ID from an argument string.
func parseTimerID(args string) (int64, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return 0, fmt.Errorf("timer ID is required")
	}
	id, err := strconv.ParseInt(strings.Fields(s)[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid timer ID %q", s)
	}
	return id, nil
}

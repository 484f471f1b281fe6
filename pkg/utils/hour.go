package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var hourRegex = regexp.MustCompile(`^(?P<hour>\d{1,2})(?::\d{2}(?::\d{2})?)?$`)

// ParseHour returns the hour of "13", "13:00" or "13:00:00".
func ParseHour(s string) (int, error) {
	param := resolveRegex(hourRegex, strings.TrimSpace(s))
	if len(param) == 0 {
		return 0, fmt.Errorf("invalid hour %q", s)
	}
	h, err := strconv.Atoi(param["hour"])
	if err != nil || h > 23 {
		return 0, fmt.Errorf("invalid hour %q", s)
	}
	return h, nil
}

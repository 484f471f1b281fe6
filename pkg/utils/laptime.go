package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidLapTime = errors.New("invalid lap time")

var (
	// pandas timedelta: "0 days 00:01:32.123000"
	timedeltaRegex = regexp.MustCompile(
		`^(?:(?P<days>\d+) days? )?(?P<hours>\d+):(?P<minutes>\d{1,2}):(?P<seconds>\d{1,2}(?:\.\d+)?)$`)
	// lap clock: "1:32.123"
	clockRegex = regexp.MustCompile(
		`^(?P<minutes>\d+):(?P<seconds>\d{1,2}(?:\.\d+)?)$`)
)

// ParseLapTime converts the textual representation of a lap time into seconds.
// Accepted are plain seconds ("92.123"), pandas timedeltas
// ("0 days 00:01:32.123000"), clock values ("1:32.123", "00:01:32.123")
// and Go durations ("1m32.123s").
// The result is always a finite value > 0.
func ParseLapTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidLapTime)
	}
	secs, err := parseLapTime(s)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs <= 0 {
		return 0, fmt.Errorf("%w: %q is not a positive time", ErrInvalidLapTime, s)
	}
	return secs, nil
}

func parseLapTime(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	if param := resolveRegex(timedeltaRegex, s); len(param) > 0 {
		return sumParts(param)
	}
	if param := resolveRegex(clockRegex, s); len(param) > 0 {
		return sumParts(param)
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d.Seconds(), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLapTime, s)
}

func sumParts(param map[string]string) (float64, error) {
	factors := map[string]float64{
		"days":    24 * 3600,
		"hours":   3600,
		"minutes": 60,
		"seconds": 1,
	}
	var ret float64
	for name, factor := range factors {
		v, ok := param[name]
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q", ErrInvalidLapTime, name, v)
		}
		ret += f * factor
	}
	return ret, nil
}

func resolveRegex(compRegEx *regexp.Regexp, s string) (paramsMap map[string]string) {
	match := compRegEx.FindStringSubmatch(s)
	if match == nil {
		return nil
	}
	paramsMap = make(map[string]string)
	for i, name := range compRegEx.SubexpNames() {
		if i > 0 && i < len(match) {
			paramsMap[name] = match[i]
		}
	}
	return paramsMap
}

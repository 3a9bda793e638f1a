package util

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ExpandRange expands a port list into individual values, keeping the order
// given:
//   - "1-4" -> [1, 2, 3, 4]
//   - "1,3,5" -> [1, 3, 5]
//   - "5,1-3" -> [5, 1, 2, 3]
//
// Interface lists are ordered, so a value appearing twice is an error rather
// than being dropped.
func ExpandRange(spec string) ([]int, error) {
	var result []int
	seen := make(map[int]bool)

	add := func(v int) error {
		if seen[v] {
			return fmt.Errorf("value %d listed more than once in %q", v, spec)
		}
		seen[v] = true
		result = append(result, v)
		return nil
	}

	for _, part := range SplitCommaSeparated(spec) {
		if !strings.Contains(part, "-") {
			val, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid value: %s", part)
			}
			if err := add(val); err != nil {
				return nil, err
			}
			continue
		}

		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start value in range %s: %v", part, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end value in range %s: %v", part, err)
		}
		if start > end {
			return nil, fmt.Errorf("start value %d greater than end value %d in range %s", start, end, part)
		}
		for i := start; i <= end; i++ {
			if err := add(i); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// ExpandInterfaceRange expands a range in the trailing port number of an
// interface name:
//
//	"10GE1/0/1-3" -> ["10GE1/0/1", "10GE1/0/2", "10GE1/0/3"]
//	"Ethernet0,4" -> ["Ethernet0", "Ethernet4"]
//	"10GE1/0/48"  -> ["10GE1/0/48"]
func ExpandInterfaceRange(spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	cut := strings.LastIndexFunc(spec, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '-' && r != ',' && r != ' '
	})
	prefix, tail := spec[:cut+1], spec[cut+1:]

	if !strings.ContainsAny(tail, "-,") {
		return []string{spec}, nil
	}
	if prefix == "" {
		return nil, fmt.Errorf("invalid interface range: %s (no prefix found)", spec)
	}

	nums, err := ExpandRange(tail)
	if err != nil {
		return nil, fmt.Errorf("invalid interface range %s: %v", spec, err)
	}
	result := make([]string, len(nums))
	for i, n := range nums {
		result[i] = prefix + strconv.Itoa(n)
	}
	return result, nil
}

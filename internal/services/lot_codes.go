package services

import "strings"

// ParseLotCodes splits comma-separated lot codes as typed by dispatchers.
//
// Codes are trimmed and upper-cased, empty entries dropped and repeats removed
// (first occurrence kept). Codes for which known returns false are reported separately.
func ParseLotCodes(input string, known func(string) bool) (valid, unknown []string) {
	valid = []string{}
	unknown = []string{}
	seen := make(map[string]struct{})

	for _, raw := range strings.Split(input, ",") {
		code := strings.ToUpper(strings.TrimSpace(raw))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}

		if known != nil && !known(code) {
			unknown = append(unknown, code)
			continue
		}
		valid = append(valid, code)
	}

	return valid, unknown
}

// DedupeLotIDs removes repeated ids, keeping the first occurrence.
func DedupeLotIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

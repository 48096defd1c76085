// Package textutil holds small helpers for user-supplied string lists.
package textutil

import "strings"

// Dedupe trims each value and drops empties and repeats, keeping the first
// occurrence of each.
func Dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SplitList splits a comma separated value such as KAFKA_BROKERS.
//
//	SplitList(" a:9092, b:9092,,a:9092") // []string{"a:9092", "b:9092"}
func SplitList(v string) []string {
	return Dedupe(strings.Split(v, ","))
}

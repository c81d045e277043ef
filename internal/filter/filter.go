// Package filter decides which tables of a database are synced.
package filter

import "github.com/danwakefield/fnmatch"

// Matches reports whether schema.table passes the include/exclude patterns.
//
// Patterns are shell globs matched against "schema.table". When include
// patterns are given the key must match at least one of them; a key matching
// any exclude pattern is rejected even if it was included.
func Matches(schema, table string, include, exclude []string) bool {
	key := schema + "." + table

	if len(include) > 0 && !matchAny(key, include) {
		return false
	}
	if len(exclude) > 0 && matchAny(key, exclude) {
		return false
	}
	return true
}

func matchAny(key string, patterns []string) bool {
	for _, p := range patterns {
		if fnmatch.Match(p, key, 0) {
			return true
		}
	}
	return false
}

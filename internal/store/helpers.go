package store

import "strings"

// qualify prefixes each column in a comma-separated list with a table alias,
// for queries that join and need unambiguous column references.
func qualify(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

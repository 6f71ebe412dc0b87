package hostprobe

import (
	"fmt"
	"strings"
)

// featureNameFilter builds the WHERE clause selecting optional features by
// name. No names selects every feature.
func featureNameFilter(names []string) string {
	if len(names) == 0 {
		return ""
	}
	conds := make([]string, 0, len(names))
	for _, n := range names {
		conds = append(conds, fmt.Sprintf("Name = %s", wqlQuote(n)))
	}
	return "WHERE " + strings.Join(conds, " OR ")
}

// wqlQuote 将单引号加倍后用单引号包裹
func wqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

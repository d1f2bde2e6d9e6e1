package rollupcache

import (
	"fmt"
	"sort"
	"strings"
)

// BuildKey serializes an endpoint identity plus its active filters into a
// deterministic cache key. Filter order on the call site never changes the
// key; empty filter values are omitted.
func BuildKey(endpoint string, filters map[string]string) string {
	parts := make([]string, 0, len(filters))
	for k, v := range filters {
		if v == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(parts)

	if len(parts) == 0 {
		return "rollup:" + endpoint
	}
	return "rollup:" + endpoint + ":" + strings.Join(parts, "&")
}

package cli

import (
	"fmt"
	"strings"
)

// parseLabels turns repeated "key=value" flag values into a map.
func parseLabels(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("label %q must be in key=value form", p)
		}
		out[key] = value
	}
	return out, nil
}

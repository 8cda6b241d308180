package postgres

import (
	"sort"
	"strings"

	"github.com/orchestrator-core/controlplane/internal/models"
)

// labelSlice renders a Labels map into the "key:value" strings the
// text[] columns store, sorted for a stable diff-free representation.
func labelSlice(labels models.Labels) []string {
	out := make([]string, 0, len(labels))
	for k, v := range labels {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}

// labelMap parses "key:value" strings back into a Labels map.
func labelMap(pairs []string) models.Labels {
	out := make(models.Labels, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, ":")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

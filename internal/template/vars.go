package template

import (
	"strings"

	"github.com/orchestrator-core/controlplane/internal/models"
)

// KV is one entry of a rendered key/value list, exposed to templates via
// {{range .some_list}}{{.Key}}={{.Value}}{{end}}, the "semantic equivalent
// of for each kv in labels" required by the renderer.
type KV struct {
	Key   string
	Value string
}

// Binding is the fixed part of a template's variable namespace: the
// organization/team/workload/deployment/host/ordinal fields every render
// carries regardless of Config.
type Binding struct {
	Organization string
	Team         string
	Workload     string
	Deployment   string
	Host         string
	Ordinal      int
}

// Namespace flattens Binding and the effective Config map into the single
// root passed to text/template, so a placeholder is just {{field}} rather
// than {{.Fixed.field}} or {{.Config.field}}.
func Namespace(b Binding, effective map[string]models.Config) map[string]any {
	ns := map[string]any{
		"organization": b.Organization,
		"team":         b.Team,
		"workload":     b.Workload,
		"deployment":   b.Deployment,
		"host":         b.Host,
		"ordinal":      b.Ordinal,
	}
	for key, c := range effective {
		ns[key] = renderValue(c)
	}
	return ns
}

// renderValue interprets a Config's raw string Value according to its
// ValueType. KeyValue is a single "k=v" pair; KeyValueList is
// comma-separated "k=v" pairs, exposed as a []KV in the order the pairs
// appear in Value so templates can range over it; empty entries are
// skipped.
func renderValue(c models.Config) any {
	switch c.ValueType {
	case models.ValueTypeKeyValue:
		k, v, _ := strings.Cut(c.Value, "=")
		return KV{Key: k, Value: v}
	case models.ValueTypeKeyValueList:
		var out []KV
		for _, pair := range strings.Split(c.Value, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			k, v, _ := strings.Cut(pair, "=")
			out = append(out, KV{Key: k, Value: v})
		}
		return out
	default:
		return c.Value
	}
}

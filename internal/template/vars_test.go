package template

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orchestrator-core/controlplane/internal/models"
)

func TestNamespaceFlattensBindingAndConfig(t *testing.T) {
	b := Binding{
		Organization: "acme",
		Team:         "platform",
		Workload:     "api",
		Deployment:   "api-prod",
		Host:         "h1",
		Ordinal:      3,
	}
	effective := map[string]models.Config{
		"replicas": {Key: "replicas", Value: "5", ValueType: models.ValueTypeString},
	}

	ns := Namespace(b, effective)

	assert.Equal(t, "acme", ns["organization"])
	assert.Equal(t, "platform", ns["team"])
	assert.Equal(t, "api", ns["workload"])
	assert.Equal(t, "api-prod", ns["deployment"])
	assert.Equal(t, "h1", ns["host"])
	assert.Equal(t, 3, ns["ordinal"])
	assert.Equal(t, "5", ns["replicas"])
}

func TestRenderValueString(t *testing.T) {
	c := models.Config{Value: "hello", ValueType: models.ValueTypeString}
	assert.Equal(t, "hello", renderValue(c))
}

func TestRenderValueKeyValue(t *testing.T) {
	c := models.Config{Value: "region=eastus2", ValueType: models.ValueTypeKeyValue}
	assert.Equal(t, KV{Key: "region", Value: "eastus2"}, renderValue(c))
}

func TestRenderValueKeyValueList(t *testing.T) {
	c := models.Config{Value: "a=1, b=2,c=3", ValueType: models.ValueTypeKeyValueList}
	got := renderValue(c)
	assert.Equal(t, []KV{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "c", Value: "3"}}, got)
}

func TestRenderValueKeyValueListSkipsEmptyEntries(t *testing.T) {
	c := models.Config{Value: "a=1,,b=2", ValueType: models.ValueTypeKeyValueList}
	got := renderValue(c)
	assert.Equal(t, []KV{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}, got)
}

package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/models"
)

func writeFile(t *testing.T, dir, rel, contents string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))
}

func TestRenderDirSubstitutesFlattenedVariables(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "deployment.yaml", "name: {{.deployment}}\nhost: {{.host}}\nreplicas: {{.replicas}}\n")

	files, err := renderDir(dir, Binding{Deployment: "api-prod", Host: "h1"}, map[string]models.Config{
		"replicas": {Key: "replicas", Value: "5", ValueType: models.ValueTypeString},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "deployment.yaml", files[0].RelativePath)
	assert.Equal(t, "name: api-prod\nhost: h1\nreplicas: 5\n", string(files[0].Bytes))
}

func TestRenderDirMissingVariableFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "deployment.yaml", "name: {{.deployment}}\nregion: {{.region}}\n")

	_, err := renderDir(dir, Binding{Deployment: "api-prod"}, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "MissingVariable")
}

func TestRenderDirOrdersFilesByRelativePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "b")
	writeFile(t, dir, "a.yaml", "a")
	writeFile(t, dir, "sub/c.yaml", "c")

	files, err := renderDir(dir, Binding{}, nil)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []string{"a.yaml", "b.yaml", filepath.Join("sub", "c.yaml")}, []string{
		files[0].RelativePath, files[1].RelativePath, files[2].RelativePath,
	})
}

func TestRenderDirOptionalPlaceholderSkipsMissingVariable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "deployment.yaml", "name: {{.deployment}}\nregion: {{optional \"region\"}}\n")

	files, err := renderDir(dir, Binding{Deployment: "api-prod"}, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "name: api-prod\nregion: \n", string(files[0].Bytes))
}

func TestRenderDirOptionalPlaceholderUsesBindingWhenPresent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "deployment.yaml", "region: {{optional \"region\"}}\n")

	files, err := renderDir(dir, Binding{}, map[string]models.Config{
		"region": {Key: "region", Value: "eastus2", ValueType: models.ValueTypeString},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "region: eastus2\n", string(files[0].Bytes))
}

func TestRenderDirKeyValueListInTemplate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "labels.yaml", "{{range .labels}}{{.Key}}={{.Value}}\n{{end}}")

	files, err := renderDir(dir, Binding{}, map[string]models.Config{
		"labels": {Key: "labels", Value: "region=eastus2,tier=web", ValueType: models.ValueTypeKeyValueList},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "region=eastus2\ntier=web\n", string(files[0].Bytes))
}

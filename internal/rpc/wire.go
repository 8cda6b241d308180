package rpc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orchestrator-core/controlplane/internal/models"
)

func formatInt32(n int32) string { return strconv.FormatInt(int64(n), 10) }

func parseInt32(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("hostCount %q is neither %q nor an integer", s, hostCountAllWire)
	}
	return int32(n), nil
}

func valueTypeToWire(v models.ValueType) string {
	switch v {
	case models.ValueTypeKeyValue:
		return "keyvalue"
	case models.ValueTypeKeyValueList:
		return "keyvaluelist"
	default:
		return "string"
	}
}

func valueTypeFromWire(s string) models.ValueType {
	switch s {
	case "keyvalue":
		return models.ValueTypeKeyValue
	case "keyvaluelist":
		return models.ValueTypeKeyValueList
	default:
		return models.ValueTypeString
	}
}

// ParseOwningModel parses the "kind:id" wire form (or the literal "global")
// produced by models.Config.OwningModel back into its parts.
func ParseOwningModel(s string) (models.ModelKind, string, error) {
	if s == "" || s == "global" {
		return models.ModelWorkspace, "", nil
	}
	kindStr, id, ok := strings.Cut(s, ":")
	if !ok {
		return 0, "", fmt.Errorf("owningModel %q must be \"global\" or \"<kind>:<id>\"", s)
	}
	switch kindStr {
	case "workspace":
		return models.ModelWorkspace, id, nil
	case "workload":
		return models.ModelWorkload, id, nil
	case "deployment":
		return models.ModelDeployment, id, nil
	default:
		return 0, "", fmt.Errorf("owningModel kind %q is not one of workspace, workload, deployment", kindStr)
	}
}

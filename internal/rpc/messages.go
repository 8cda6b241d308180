// Package rpc defines the wire message shapes of the model-service HTTP
// API — one Message type per entity plus Event — translated to and from
// internal/models by internal/rpc/server and internal/rpc/client.
package rpc

import "github.com/orchestrator-core/controlplane/internal/models"

// WorkspaceMessage is the wire form of a Workspace (called "team" in the
// CLI and Config inheritance chain).
type WorkspaceMessage struct {
	ID string `json:"id"`
}

func WorkspaceToMessage(w models.Workspace) WorkspaceMessage {
	return WorkspaceMessage{ID: w.ID}
}

func WorkspaceFromMessage(m WorkspaceMessage) models.Workspace {
	return models.Workspace{ID: m.ID}
}

// TemplateMessage is the wire form of a Template.
type TemplateMessage struct {
	ID         string `json:"id,omitempty"`
	Repository string `json:"repository"`
	GitRef     string `json:"gitRef"`
	Path       string `json:"path"`
}

func TemplateToMessage(t models.Template) TemplateMessage {
	return TemplateMessage{ID: t.ID, Repository: t.Repository, GitRef: t.GitRef, Path: t.Path}
}

func TemplateFromMessage(m TemplateMessage) models.Template {
	return models.Template{ID: m.ID, Repository: m.Repository, GitRef: m.GitRef, Path: m.Path}
}

// WorkloadMessage is the wire form of a Workload.
type WorkloadMessage struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	TeamID     string `json:"teamId"`
	TemplateID string `json:"templateId"`
}

func WorkloadToMessage(w models.Workload) WorkloadMessage {
	return WorkloadMessage{ID: w.ID, Name: w.Name, TeamID: w.TeamID, TemplateID: w.TemplateID}
}

func WorkloadFromMessage(m WorkloadMessage) models.Workload {
	return models.Workload{ID: m.ID, Name: m.Name, TeamID: m.TeamID, TemplateID: m.TemplateID}
}

// TargetMessage is the wire form of a Target.
type TargetMessage struct {
	ID     string            `json:"id,omitempty"`
	Labels map[string]string `json:"labels"`
}

func TargetToMessage(t models.Target) TargetMessage {
	return TargetMessage{ID: t.ID, Labels: map[string]string(t.Labels)}
}

func TargetFromMessage(m TargetMessage) models.Target {
	return models.Target{ID: m.ID, Labels: models.Labels(m.Labels)}
}

// HostMessage is the wire form of a Host.
type HostMessage struct {
	ID             string            `json:"id,omitempty"`
	Labels         map[string]string `json:"labels"`
	CPUCapacity    *int32            `json:"cpuCapacity,omitempty"`
	MemoryCapacity *int64            `json:"memoryCapacity,omitempty"`
}

func HostToMessage(h models.Host) HostMessage {
	return HostMessage{ID: h.ID, Labels: map[string]string(h.Labels), CPUCapacity: h.CPUCapacity, MemoryCapacity: h.MemoryCapacity}
}

func HostFromMessage(m HostMessage) models.Host {
	return models.Host{ID: m.ID, Labels: models.Labels(m.Labels), CPUCapacity: m.CPUCapacity, MemoryCapacity: m.MemoryCapacity}
}

// DeploymentMessage is the wire form of a Deployment. host_count is a
// string on the wire so it can carry the "all" sentinel without a
// negative-number encoding trick leaking into the API surface.
type DeploymentMessage struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	WorkloadID string `json:"workloadId"`
	TargetID   string `json:"targetId"`
	TemplateID string `json:"templateId,omitempty"`
	HostCount  string `json:"hostCount"`
}

const hostCountAllWire = "all"

func DeploymentToMessage(d models.Deployment) DeploymentMessage {
	hc := hostCountAllWire
	if !d.IsAll() {
		hc = formatInt32(d.HostCount)
	}
	return DeploymentMessage{
		ID: d.ID, Name: d.Name, WorkloadID: d.WorkloadID, TargetID: d.TargetID,
		TemplateID: d.TemplateID, HostCount: hc,
	}
}

func DeploymentFromMessage(m DeploymentMessage) (models.Deployment, error) {
	count := models.HostCountAll
	if m.HostCount != hostCountAllWire {
		parsed, err := parseInt32(m.HostCount)
		if err != nil {
			return models.Deployment{}, err
		}
		count = parsed
	}
	return models.Deployment{
		ID: m.ID, Name: m.Name, WorkloadID: m.WorkloadID, TargetID: m.TargetID,
		TemplateID: m.TemplateID, HostCount: count,
	}, nil
}

// AssignmentMessage is the wire form of an Assignment (read-only: never
// accepted as request input, only ever returned by Get/List).
type AssignmentMessage struct {
	ID           string `json:"id"`
	HostID       string `json:"hostId"`
	DeploymentID string `json:"deploymentId"`
}

func AssignmentToMessage(a models.Assignment) AssignmentMessage {
	return AssignmentMessage{ID: a.ID, HostID: a.HostID, DeploymentID: a.DeploymentID}
}

// ConfigMessage is the wire form of a Config.
type ConfigMessage struct {
	ID          string `json:"id,omitempty"`
	Key         string `json:"key"`
	Value       string `json:"value"`
	OwningModel string `json:"owningModel"`
	ValueType   string `json:"valueType"`
}

func ConfigToMessage(c models.Config) ConfigMessage {
	return ConfigMessage{ID: c.ID, Key: c.Key, Value: c.Value, OwningModel: c.OwningModel(), ValueType: valueTypeToWire(c.ValueType)}
}

func ConfigFromMessage(m ConfigMessage) (models.Config, error) {
	kind, id, err := ParseOwningModel(m.OwningModel)
	if err != nil {
		return models.Config{}, err
	}
	return models.Config{
		ID: m.ID, Key: m.Key, Value: m.Value,
		OwningKind: kind, OwningID: id,
		ValueType: valueTypeFromWire(m.ValueType),
	}, nil
}

// EventMessage is the wire form of an Event.
type EventMessage struct {
	ID                      string `json:"id"`
	Timestamp               string `json:"timestamp"`
	OperationID             string `json:"operationId"`
	EventType               string `json:"eventType"`
	ModelType               string `json:"modelType"`
	SerializedPreviousModel []byte `json:"serializedPreviousModel,omitempty"`
	SerializedCurrentModel  []byte `json:"serializedCurrentModel,omitempty"`
}

func EventToMessage(e models.Event) EventMessage {
	return EventMessage{
		ID:                      e.ID,
		Timestamp:               e.Timestamp.Format(rfc3339Milli),
		OperationID:             e.OperationID,
		EventType:               e.EventType.String(),
		ModelType:               e.ModelType.String(),
		SerializedPreviousModel: e.SerializedPreviousModel,
		SerializedCurrentModel:  e.SerializedCurrentModel,
	}
}

const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"

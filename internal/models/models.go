// Package models defines the seven user-visible entities and the Event
// envelope described in the data model. Types here are persistence- and
// transport-agnostic; the store and rpc packages translate to and from
// their own row/wire shapes.
package models

import "time"

// Labels is a set of "key:value" strings, used by both Target (as a
// required-subset matcher) and Host (as the set a Target is matched
// against).
type Labels map[string]string

// HasSubset reports whether every key:value pair in required is present in
// l, i.e. whether l matches a Target carrying required as its labels.
func (l Labels) HasSubset(required Labels) bool {
	for k, v := range required {
		if lv, ok := l[k]; !ok || lv != v {
			return false
		}
	}
	return true
}

// Workspace is a namespace that owns Workloads; the CLI and Config
// inheritance chain call this a "team", but it's the same entity.
type Workspace struct {
	ID string
}

// Workload is a deployable application identity, independent of where it runs.
type Workload struct {
	ID         string
	Name       string
	TeamID     string
	TemplateID string
}

// Template is a parameterized manifest bundle held in Git. Immutable after
// creation except by a full update that reissues an Updated event.
type Template struct {
	ID         string
	Repository string
	GitRef     string
	Path       string
}

// Target is a required-subset label matcher that selects Hosts.
type Target struct {
	ID     string
	Labels Labels
}

// Matches reports whether host satisfies this Target (T.Labels ⊆ H.Labels).
func (t Target) Matches(host Host) bool {
	return host.Labels.HasSubset(t.Labels)
}

// Host is a machine or cluster that eventually applies rendered manifests.
type Host struct {
	ID              string
	Labels          Labels
	CPUCapacity     *int32 // informational only; never used to schedule work.
	MemoryCapacity  *int64 // informational only; never used to schedule work.
}

// HostCountAll is the sentinel host_count meaning "every matching Host".
// It is never round-tripped as a literal integer on the wire (see
// rpc.DeploymentMessage.HostCount, which carries the literal "all" string
// instead); it exists purely as the in-process representation of the ALL
// case so reconciler code tests a single boolean instead of repeating a
// magic-number comparison.
const HostCountAll int32 = -1

// Deployment binds one Workload to one Target with a replica count.
type Deployment struct {
	ID         string
	Name       string
	WorkloadID string
	TargetID   string
	TemplateID string // optional override; empty means inherit Workload.TemplateID.
	HostCount  int32  // non-negative, or HostCountAll.
}

// IsAll reports whether this Deployment wants every eligible Host.
func (d Deployment) IsAll() bool { return d.HostCount == HostCountAll }

// EffectiveTemplateID returns d.TemplateID if set, else the Workload's.
func (d Deployment) EffectiveTemplateID(workload Workload) string {
	if d.TemplateID != "" {
		return d.TemplateID
	}
	return workload.TemplateID
}

// Assignment is a derived record: Deployment D is placed on Host H. Never
// written directly by users, only by the reconciler.
type Assignment struct {
	ID           string
	DeploymentID string
	HostID       string
}

// MakeAssignmentID deterministically derives an Assignment id from the pair
// it represents, so repeated reconciliation passes are naturally idempotent.
func MakeAssignmentID(deploymentID, hostID string) string {
	return deploymentID + "/" + hostID
}

// ValueType is the semantic type of a Config's value.
type ValueType int

const (
	ValueTypeString ValueType = iota
	ValueTypeKeyValue
	ValueTypeKeyValueList
)

// ModelKind identifies the kind half of a Config's owning_model reference
// and an Event's model_type.
type ModelKind int

const (
	ModelAssignment ModelKind = iota
	ModelDeployment
	ModelHost
	ModelTarget
	ModelTemplate
	ModelWorkload
	ModelWorkspace
	ModelConfig
)

func (m ModelKind) String() string {
	switch m {
	case ModelAssignment:
		return "assignment"
	case ModelDeployment:
		return "deployment"
	case ModelHost:
		return "host"
	case ModelTarget:
		return "target"
	case ModelTemplate:
		return "template"
	case ModelWorkload:
		return "workload"
	case ModelWorkspace:
		return "workspace"
	case ModelConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Config is a key/value scoped to a model, inherited along
// Deployment -> Workload -> Team -> Global.
type Config struct {
	ID          string
	Key         string
	Value       string
	OwningKind  ModelKind
	OwningID    string // empty for the Global scope.
	ValueType   ValueType
}

// OwningModel renders the "kind:id" (or "global") reference used on the
// wire to identify what a Config entry is scoped to.
func (c Config) OwningModel() string {
	if c.OwningID == "" {
		return "global"
	}
	return c.OwningKind.String() + ":" + c.OwningID
}

// EventType distinguishes the three mutation kinds.
type EventType int

const (
	Created EventType = iota
	Updated
	Deleted
)

func (t EventType) String() string {
	switch t {
	case Created:
		return "Created"
	case Updated:
		return "Updated"
	case Deleted:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// Event is the envelope carried by the event stream for every mutation.
type Event struct {
	ID                       string
	Timestamp                time.Time
	OperationID              string
	EventType                EventType
	ModelType                ModelKind
	SerializedPreviousModel  []byte // empty for Created.
	SerializedCurrentModel   []byte // empty for Deleted.
}

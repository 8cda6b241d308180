package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/rpc"
	"github.com/orchestrator-core/controlplane/internal/service"
)

// RegisterAssignments wires only the read surface of AssignmentService:
// Assignments are reconciler-derived and never accepted as API input.
func RegisterAssignments(api huma.API, basePath string, svc *service.AssignmentService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-assignment",
		Method:      http.MethodGet,
		Path:        basePath + "/assignments/{id}",
		Summary:     "Get an assignment by id",
		Tags:        []string{"assignments"},
	}, func(ctx context.Context, input *IDInput) (*struct{ Body rpc.AssignmentMessage }, error) {
		a, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &struct{ Body rpc.AssignmentMessage }{Body: rpc.AssignmentToMessage(a)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-assignments",
		Method:      http.MethodGet,
		Path:        basePath + "/assignments",
		Summary:     "List assignments, optionally filtered by deployment or host",
		Tags:        []string{"assignments"},
	}, func(ctx context.Context, input *struct {
		DeploymentID string `query:"deploymentId"`
		HostID       string `query:"hostId"`
	}) (*struct{ Body []rpc.AssignmentMessage }, error) {
		var (
			list []models.Assignment
			err  error
		)
		switch {
		case input.DeploymentID != "":
			list, err = svc.ByDeployment(ctx, input.DeploymentID)
		case input.HostID != "":
			list, err = svc.ByHost(ctx, input.HostID)
		default:
			list, err = svc.List(ctx)
		}
		if err != nil {
			return nil, mapErr(err)
		}
		out := make([]rpc.AssignmentMessage, len(list))
		for i, a := range list {
			out[i] = rpc.AssignmentToMessage(a)
		}
		return &struct{ Body []rpc.AssignmentMessage }{Body: out}, nil
	})
}

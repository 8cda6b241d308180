package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/rpc"
	"github.com/orchestrator-core/controlplane/internal/service"
)

func RegisterWorkloads(api huma.API, basePath string, svc *service.WorkloadService) {
	huma.Register(api, huma.Operation{
		OperationID: "upsert-workload",
		Method:      http.MethodPut,
		Path:        basePath + "/workloads",
		Summary:     "Create or update a workload",
		Tags:        []string{"workloads"},
	}, func(ctx context.Context, input *struct {
		Body rpc.WorkloadMessage
	}) (*OperationOutput, error) {
		_, opID, err := svc.Upsert(ctx, rpc.WorkloadFromMessage(input.Body))
		if err != nil {
			return nil, mapErr(err)
		}
		out := &OperationOutput{}
		out.Body.OperationID = opID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-workload",
		Method:      http.MethodDelete,
		Path:        basePath + "/workloads/{id}",
		Summary:     "Delete a workload",
		Tags:        []string{"workloads"},
	}, func(ctx context.Context, input *IDInput) (*OperationOutput, error) {
		opID, err := svc.Delete(ctx, input.ID)
		if err != nil {
			return nil, mapErr(err)
		}
		out := &OperationOutput{}
		out.Body.OperationID = opID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-workload",
		Method:      http.MethodGet,
		Path:        basePath + "/workloads/{id}",
		Summary:     "Get a workload by id",
		Tags:        []string{"workloads"},
	}, func(ctx context.Context, input *IDInput) (*struct{ Body rpc.WorkloadMessage }, error) {
		wl, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &struct{ Body rpc.WorkloadMessage }{Body: rpc.WorkloadToMessage(wl)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-workloads",
		Method:      http.MethodGet,
		Path:        basePath + "/workloads",
		Summary:     "List workloads, optionally filtered by team",
		Tags:        []string{"workloads"},
	}, func(ctx context.Context, input *struct {
		TeamID string `query:"teamId"`
	}) (*struct{ Body []rpc.WorkloadMessage }, error) {
		var (
			list []models.Workload
			err  error
		)
		if input.TeamID != "" {
			list, err = svc.ByTeam(ctx, input.TeamID)
		} else {
			list, err = svc.List(ctx)
		}
		if err != nil {
			return nil, mapErr(err)
		}
		out := make([]rpc.WorkloadMessage, len(list))
		for i, wl := range list {
			out[i] = rpc.WorkloadToMessage(wl)
		}
		return &struct{ Body []rpc.WorkloadMessage }{Body: out}, nil
	})
}

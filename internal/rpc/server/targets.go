package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/orchestrator-core/controlplane/internal/rpc"
	"github.com/orchestrator-core/controlplane/internal/service"
)

func RegisterTargets(api huma.API, basePath string, svc *service.TargetService) {
	huma.Register(api, huma.Operation{
		OperationID: "upsert-target",
		Method:      http.MethodPut,
		Path:        basePath + "/targets",
		Summary:     "Create or update a target",
		Tags:        []string{"targets"},
	}, func(ctx context.Context, input *struct {
		Body rpc.TargetMessage
	}) (*OperationOutput, error) {
		_, opID, err := svc.Upsert(ctx, rpc.TargetFromMessage(input.Body))
		if err != nil {
			return nil, mapErr(err)
		}
		out := &OperationOutput{}
		out.Body.OperationID = opID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-target",
		Method:      http.MethodDelete,
		Path:        basePath + "/targets/{id}",
		Summary:     "Delete a target",
		Tags:        []string{"targets"},
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
		OperationID: "get-target",
		Method:      http.MethodGet,
		Path:        basePath + "/targets/{id}",
		Summary:     "Get a target by id",
		Tags:        []string{"targets"},
	}, func(ctx context.Context, input *IDInput) (*struct{ Body rpc.TargetMessage }, error) {
		t, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &struct{ Body rpc.TargetMessage }{Body: rpc.TargetToMessage(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-targets",
		Method:      http.MethodGet,
		Path:        basePath + "/targets",
		Summary:     "List targets",
		Tags:        []string{"targets"},
	}, func(ctx context.Context, input *struct{}) (*struct{ Body []rpc.TargetMessage }, error) {
		targets, err := svc.List(ctx)
		if err != nil {
			return nil, mapErr(err)
		}
		out := make([]rpc.TargetMessage, len(targets))
		for i, t := range targets {
			out[i] = rpc.TargetToMessage(t)
		}
		return &struct{ Body []rpc.TargetMessage }{Body: out}, nil
	})
}

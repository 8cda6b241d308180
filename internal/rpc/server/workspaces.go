package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/orchestrator-core/controlplane/internal/rpc"
	"github.com/orchestrator-core/controlplane/internal/service"
)

// RegisterWorkspaces wires WorkspaceService's create/delete/get/list onto
// basePath+"/workspaces".
func RegisterWorkspaces(api huma.API, basePath string, svc *service.WorkspaceService) {
	huma.Register(api, huma.Operation{
		OperationID: "upsert-workspace",
		Method:      http.MethodPut,
		Path:        basePath + "/workspaces",
		Summary:     "Create or update a workspace",
		Tags:        []string{"workspaces"},
	}, func(ctx context.Context, input *struct {
		Body rpc.WorkspaceMessage
	}) (*OperationOutput, error) {
		_, opID, err := svc.Upsert(ctx, rpc.WorkspaceFromMessage(input.Body))
		if err != nil {
			return nil, mapErr(err)
		}
		out := &OperationOutput{}
		out.Body.OperationID = opID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-workspace",
		Method:      http.MethodDelete,
		Path:        basePath + "/workspaces/{id}",
		Summary:     "Delete a workspace",
		Tags:        []string{"workspaces"},
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
		OperationID: "get-workspace",
		Method:      http.MethodGet,
		Path:        basePath + "/workspaces/{id}",
		Summary:     "Get a workspace by id",
		Tags:        []string{"workspaces"},
	}, func(ctx context.Context, input *IDInput) (*struct{ Body rpc.WorkspaceMessage }, error) {
		w, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &struct{ Body rpc.WorkspaceMessage }{Body: rpc.WorkspaceToMessage(w)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-workspaces",
		Method:      http.MethodGet,
		Path:        basePath + "/workspaces",
		Summary:     "List workspaces",
		Tags:        []string{"workspaces"},
	}, func(ctx context.Context, input *struct{}) (*struct{ Body []rpc.WorkspaceMessage }, error) {
		workspaces, err := svc.List(ctx)
		if err != nil {
			return nil, mapErr(err)
		}
		out := make([]rpc.WorkspaceMessage, len(workspaces))
		for i, w := range workspaces {
			out[i] = rpc.WorkspaceToMessage(w)
		}
		return &struct{ Body []rpc.WorkspaceMessage }{Body: out}, nil
	})
}

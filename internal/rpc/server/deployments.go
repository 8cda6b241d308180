package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/rpc"
	"github.com/orchestrator-core/controlplane/internal/service"
)

func RegisterDeployments(api huma.API, basePath string, svc *service.DeploymentService) {
	huma.Register(api, huma.Operation{
		OperationID: "upsert-deployment",
		Method:      http.MethodPut,
		Path:        basePath + "/deployments",
		Summary:     "Create or update a deployment",
		Tags:        []string{"deployments"},
	}, func(ctx context.Context, input *struct {
		Body rpc.DeploymentMessage
	}) (*OperationOutput, error) {
		d, err := rpc.DeploymentFromMessage(input.Body)
		if err != nil {
			return nil, mapErr(err)
		}
		_, opID, err := svc.Upsert(ctx, d)
		if err != nil {
			return nil, mapErr(err)
		}
		out := &OperationOutput{}
		out.Body.OperationID = opID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-deployment",
		Method:      http.MethodDelete,
		Path:        basePath + "/deployments/{id}",
		Summary:     "Delete a deployment",
		Tags:        []string{"deployments"},
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
		OperationID: "get-deployment",
		Method:      http.MethodGet,
		Path:        basePath + "/deployments/{id}",
		Summary:     "Get a deployment by id",
		Tags:        []string{"deployments"},
	}, func(ctx context.Context, input *IDInput) (*struct{ Body rpc.DeploymentMessage }, error) {
		d, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &struct{ Body rpc.DeploymentMessage }{Body: rpc.DeploymentToMessage(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-deployments",
		Method:      http.MethodGet,
		Path:        basePath + "/deployments",
		Summary:     "List deployments, optionally filtered by workload, target, or template",
		Tags:        []string{"deployments"},
	}, func(ctx context.Context, input *struct {
		WorkloadID string `query:"workloadId"`
		TargetID   string `query:"targetId"`
		TemplateID string `query:"templateId"`
	}) (*struct{ Body []rpc.DeploymentMessage }, error) {
		var (
			list []models.Deployment
			err  error
		)
		switch {
		case input.WorkloadID != "":
			list, err = svc.ByWorkload(ctx, input.WorkloadID)
		case input.TargetID != "":
			list, err = svc.ByTarget(ctx, input.TargetID)
		case input.TemplateID != "":
			list, err = svc.ByTemplate(ctx, input.TemplateID)
		default:
			list, err = svc.List(ctx)
		}
		if err != nil {
			return nil, mapErr(err)
		}
		out := make([]rpc.DeploymentMessage, len(list))
		for i, d := range list {
			out[i] = rpc.DeploymentToMessage(d)
		}
		return &struct{ Body []rpc.DeploymentMessage }{Body: out}, nil
	})
}

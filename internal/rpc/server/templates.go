package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/orchestrator-core/controlplane/internal/rpc"
	"github.com/orchestrator-core/controlplane/internal/service"
)

func RegisterTemplates(api huma.API, basePath string, svc *service.TemplateService) {
	huma.Register(api, huma.Operation{
		OperationID: "upsert-template",
		Method:      http.MethodPut,
		Path:        basePath + "/templates",
		Summary:     "Create or update a template",
		Tags:        []string{"templates"},
	}, func(ctx context.Context, input *struct {
		Body rpc.TemplateMessage
	}) (*OperationOutput, error) {
		_, opID, err := svc.Upsert(ctx, rpc.TemplateFromMessage(input.Body))
		if err != nil {
			return nil, mapErr(err)
		}
		out := &OperationOutput{}
		out.Body.OperationID = opID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-template",
		Method:      http.MethodDelete,
		Path:        basePath + "/templates/{id}",
		Summary:     "Delete a template",
		Tags:        []string{"templates"},
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
		OperationID: "get-template",
		Method:      http.MethodGet,
		Path:        basePath + "/templates/{id}",
		Summary:     "Get a template by id",
		Tags:        []string{"templates"},
	}, func(ctx context.Context, input *IDInput) (*struct{ Body rpc.TemplateMessage }, error) {
		t, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &struct{ Body rpc.TemplateMessage }{Body: rpc.TemplateToMessage(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-templates",
		Method:      http.MethodGet,
		Path:        basePath + "/templates",
		Summary:     "List templates",
		Tags:        []string{"templates"},
	}, func(ctx context.Context, input *struct{}) (*struct{ Body []rpc.TemplateMessage }, error) {
		templates, err := svc.List(ctx)
		if err != nil {
			return nil, mapErr(err)
		}
		out := make([]rpc.TemplateMessage, len(templates))
		for i, t := range templates {
			out[i] = rpc.TemplateToMessage(t)
		}
		return &struct{ Body []rpc.TemplateMessage }{Body: out}, nil
	})
}

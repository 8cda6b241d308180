package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/orchestrator-core/controlplane/internal/models"
	"github.com/orchestrator-core/controlplane/internal/rpc"
	"github.com/orchestrator-core/controlplane/internal/service"
)

func RegisterConfigs(api huma.API, basePath string, svc *service.ConfigService) {
	huma.Register(api, huma.Operation{
		OperationID: "upsert-config",
		Method:      http.MethodPut,
		Path:        basePath + "/configs",
		Summary:     "Create or update a config entry",
		Tags:        []string{"configs"},
	}, func(ctx context.Context, input *struct {
		Body rpc.ConfigMessage
	}) (*OperationOutput, error) {
		c, err := rpc.ConfigFromMessage(input.Body)
		if err != nil {
			return nil, mapErr(err)
		}
		_, opID, err := svc.Upsert(ctx, c)
		if err != nil {
			return nil, mapErr(err)
		}
		out := &OperationOutput{}
		out.Body.OperationID = opID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-config",
		Method:      http.MethodDelete,
		Path:        basePath + "/configs/{id}",
		Summary:     "Delete a config entry",
		Tags:        []string{"configs"},
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
		OperationID: "get-config",
		Method:      http.MethodGet,
		Path:        basePath + "/configs/{id}",
		Summary:     "Get a config entry by id",
		Tags:        []string{"configs"},
	}, func(ctx context.Context, input *IDInput) (*struct{ Body rpc.ConfigMessage }, error) {
		c, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &struct{ Body rpc.ConfigMessage }{Body: rpc.ConfigToMessage(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-configs",
		Method:      http.MethodGet,
		Path:        basePath + "/configs",
		Summary:     "List configs, optionally filtered by owning model (\"global\" or \"<kind>:<id>\")",
		Tags:        []string{"configs"},
	}, func(ctx context.Context, input *struct {
		OwningModel string `query:"owningModel"`
	}) (*struct{ Body []rpc.ConfigMessage }, error) {
		var (
			list []models.Config
			err  error
		)
		if input.OwningModel != "" {
			kind, id, perr := rpc.ParseOwningModel(input.OwningModel)
			if perr != nil {
				return nil, huma.Error400BadRequest(perr.Error())
			}
			list, err = svc.ByOwningModel(ctx, kind, id)
		} else {
			list, err = svc.List(ctx)
		}
		if err != nil {
			return nil, mapErr(err)
		}
		out := make([]rpc.ConfigMessage, len(list))
		for i, c := range list {
			out[i] = rpc.ConfigToMessage(c)
		}
		return &struct{ Body []rpc.ConfigMessage }{Body: out}, nil
	})
}

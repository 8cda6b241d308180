package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/orchestrator-core/controlplane/internal/rpc"
	"github.com/orchestrator-core/controlplane/internal/service"
)

func RegisterHosts(api huma.API, basePath string, svc *service.HostService) {
	huma.Register(api, huma.Operation{
		OperationID: "upsert-host",
		Method:      http.MethodPut,
		Path:        basePath + "/hosts",
		Summary:     "Create or update a host",
		Tags:        []string{"hosts"},
	}, func(ctx context.Context, input *struct {
		Body rpc.HostMessage
	}) (*OperationOutput, error) {
		_, opID, err := svc.Upsert(ctx, rpc.HostFromMessage(input.Body))
		if err != nil {
			return nil, mapErr(err)
		}
		out := &OperationOutput{}
		out.Body.OperationID = opID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-host",
		Method:      http.MethodDelete,
		Path:        basePath + "/hosts/{id}",
		Summary:     "Delete a host",
		Tags:        []string{"hosts"},
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
		OperationID: "get-host",
		Method:      http.MethodGet,
		Path:        basePath + "/hosts/{id}",
		Summary:     "Get a host by id",
		Tags:        []string{"hosts"},
	}, func(ctx context.Context, input *IDInput) (*struct{ Body rpc.HostMessage }, error) {
		h, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &struct{ Body rpc.HostMessage }{Body: rpc.HostToMessage(h)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-hosts",
		Method:      http.MethodGet,
		Path:        basePath + "/hosts",
		Summary:     "List hosts",
		Tags:        []string{"hosts"},
	}, func(ctx context.Context, input *struct{}) (*struct{ Body []rpc.HostMessage }, error) {
		hosts, err := svc.List(ctx)
		if err != nil {
			return nil, mapErr(err)
		}
		out := make([]rpc.HostMessage, len(hosts))
		for i, h := range hosts {
			out[i] = rpc.HostToMessage(h)
		}
		return &struct{ Body []rpc.HostMessage }{Body: out}, nil
	})
}
